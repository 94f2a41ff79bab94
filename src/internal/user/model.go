package user

import "polling-svc/src/internal/account"

type Stats struct {
	Total          int64 `json:"total"`
	Enabled        int64 `json:"enabled"`
	Disabled       int64 `json:"disabled"`
	SystemManagers int64 `json:"systemManagers"`
	WebsiteUsers   int64 `json:"websiteUsers"`
	PollingUsers   int64 `json:"pollingUsers"`
	NewThisMonth   int64 `json:"newThisMonth"`
}

// Status filter values
const (
	StatusEnabled  = "enabled"
	StatusDisabled = "disabled"
)

// ListUsersRequest represents request for listing users
type ListUsersRequest struct {
	Page     int    `json:"page" form:"page"`
	Limit    int    `json:"limit" form:"limit"`
	UserType string `json:"userType" form:"userType"`
	Status   string `json:"status" form:"status"`
	Search   string `json:"search" form:"search"`
}

type ListUsersResponse struct {
	Users      []*account.Profile `json:"users"`
	TotalCount int64              `json:"totalCount"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"totalPages"`
}
