package middleware

import (
	"context"
	"errors"
	"net/http"
	"polling-svc/src/internal/cache"
	"polling-svc/src/internal/models"
	"polling-svc/src/internal/session"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const TokenTypeAccess = "access"

// Claims represents JWT token claims
type Claims struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"tokenType"`
	jwt.RegisteredClaims
}

// UserLookup reads the current user type and enabled flag behind a session.
type UserLookup interface {
	LookupAccess(ctx context.Context, userID string) (*models.UserAccess, error)
}

// AuthMiddleware handles authentication and authorization
type AuthMiddleware struct {
	jwtSecret    string
	tokenCookie  string
	cacheService cache.Service
	sessionRepo  session.Repository
	users        UserLookup
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtSecret, tokenCookie string, cacheService cache.Service, sessionRepo session.Repository, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:    jwtSecret,
		tokenCookie:  tokenCookie,
		cacheService: cacheService,
		sessionRepo:  sessionRepo,
		users:        users,
	}
}

// RequireAuth validates JWT token and session
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.ExtractToken(c)
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization token is required")
			return
		}

		principal, err := m.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidToken), errors.Is(err, models.ErrTokenExpired):
				logrus.WithError(err).Warn("JWT token validation failed")
				abortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			case errors.Is(err, models.ErrSessionExpired), errors.Is(err, models.ErrSessionNotFound):
				abortWithError(c, http.StatusUnauthorized, "Session expired - please login again")
			case errors.Is(err, models.ErrUserDisabled):
				abortWithError(c, http.StatusUnauthorized, "Account is disabled")
			default:
				logrus.WithError(err).Error("Session validation failed")
				abortWithError(c, http.StatusInternalServerError, "Session validation error")
			}
			return
		}

		c.Request = c.Request.WithContext(models.WithPrincipal(c.Request.Context(), principal))

		logrus.WithFields(logrus.Fields{
			"user_id":    principal.UserID,
			"session_id": principal.SessionID,
			"user_role":  principal.Role,
		}).Debug("User authenticated successfully")

		c.Next()
	}
}

// RequireSystemManager checks if user has System Manager privileges
func (m *AuthMiddleware) RequireSystemManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := models.PrincipalFromContext(c.Request.Context())
		if !ok {
			logrus.Error("Principal not found in context - ensure RequireAuth middleware runs first")
			abortWithError(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		if !principal.IsSystemManager() {
			logrus.WithFields(logrus.Fields{
				"user_id":   principal.UserID,
				"user_role": principal.Role,
			}).Warn("User attempted to access manager endpoint without privileges")

			abortWithError(c, http.StatusForbidden, "Access forbidden - System Manager privileges required")
			return
		}

		c.Next()
	}
}

// Authenticate resolves a raw access token into the request's principal.
func (m *AuthMiddleware) Authenticate(ctx context.Context, token string) (*models.Principal, error) {
	claims, err := m.validateJWTToken(token)
	if err != nil {
		return nil, err
	}

	isValidSession, err := m.validateSession(ctx, claims.SessionID, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !isValidSession {
		logrus.WithField("session_id", claims.SessionID).Warn("Session is invalid or expired")
		return nil, models.ErrSessionExpired
	}

	access, err := m.users.LookupAccess(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrSessionExpired
		}
		return nil, err
	}
	if !access.Enabled {
		logrus.WithField("user_id", claims.UserID).Warn("Disabled user presented a valid session")
		return nil, models.ErrUserDisabled
	}

	// The user record wins over the role claim issued at login.
	if access.UserType != claims.Role {
		logrus.WithFields(logrus.Fields{
			"user_id":    claims.UserID,
			"token_role": claims.Role,
			"user_role":  access.UserType,
		}).Debug("User type changed since login")
	}

	return &models.Principal{
		UserID:    claims.UserID,
		SessionID: claims.SessionID,
		Email:     claims.Email,
		Role:      access.UserType,
	}, nil
}

// ExtractToken reads the token from the Authorization header, falling back to the session cookie.
func (m *AuthMiddleware) ExtractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			logrus.Debug("Invalid authorization header format")
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	if m.tokenCookie == "" {
		return ""
	}
	token, err := c.Cookie(m.tokenCookie)
	if err != nil {
		return ""
	}
	return token
}

// validateJWTToken parses and validates JWT token (checks signature and expiration)
func (m *AuthMiddleware) validateJWTToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(m.jwtSecret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrTokenExpired
		}
		return nil, models.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, models.ErrInvalidToken
	}

	if claims.TokenType != TokenTypeAccess {
		return nil, models.ErrInvalidToken
	}

	return claims, nil
}

// validateSession checks session validity in Redis first, then MongoDB fallback
func (m *AuthMiddleware) validateSession(ctx context.Context, sessionID, userID string) (bool, error) {
	key := cache.SessionKey(userID, sessionID)
	cached, err := m.cacheService.GetActiveSession(ctx, key)
	if err == nil && cached != nil && cached.IsValidAt(time.Now()) {
		logrus.WithField("session_id", sessionID).Debug("Session from cache")
		m.cacheService.UpdateSessionActivity(ctx, key)
		return true, nil
	}

	s, err := m.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}

	if s.UserID != userID {
		logrus.WithField("session_id", sessionID).Warn("Session does not belong to token subject")
		return false, nil
	}

	if !s.IsValidAt(time.Now()) {
		logrus.WithFields(logrus.Fields{
			"session_id": sessionID,
			"is_active":  s.IsActive,
			"logged_out": s.LogoutAt != nil,
		}).Warn("Session is inactive, logged out or expired")
		return false, nil
	}

	s.LastActiveAt = time.Now()
	m.sessionRepo.UpdateActivity(ctx, sessionID)
	m.cacheService.CacheActiveSession(ctx, s)

	logrus.WithField("session_id", sessionID).Debug("Session validated from MongoDB")
	return true, nil
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}
