package navigation

import (
	"context"
	"polling-svc/src/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Authenticator resolves an access token into the user behind it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Principal, error)
}

type Loader interface {
	Load(ctx context.Context, token string) (*models.Principal, error)
}

// UserResource fetches the user for a session token. Concurrent loads of the
// same token share one call; a failed load is returned to its waiters only.
type UserResource struct {
	auth  Authenticator
	group singleflight.Group
}

func NewUserResource(auth Authenticator) *UserResource {
	return &UserResource{auth: auth}
}

func (r *UserResource) Load(ctx context.Context, token string) (*models.Principal, error) {
	if token == "" {
		return nil, models.ErrNotAuthenticated
	}

	ch := r.group.DoChan(token, func() (interface{}, error) {
		return r.auth.Authenticate(context.WithoutCancel(ctx), token)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			logrus.WithError(res.Err).Debug("User resource load failed")
			return nil, res.Err
		}
		if res.Shared {
			logrus.Debug("User resource load shared with in-flight request")
		}
		return res.Val.(*models.Principal), nil
	}
}
