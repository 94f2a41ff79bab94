package navigation

import (
	"context"
	"polling-svc/src/internal/models"

	"github.com/sirupsen/logrus"
)

// State is the authentication state a single navigation is evaluated with.
type State struct {
	LoggedIn bool
	Token    string
}

type Decision struct {
	Allow      bool
	RedirectTo string
	Principal  *models.Principal
}

type Guard struct {
	loader Loader
}

func NewGuard(loader Loader) *Guard {
	return &Guard{loader: loader}
}

// Decide evaluates a navigation to target. The cached flag is reconciled with
// the loader and a failed load counts as logged out for this call only.
func (g *Guard) Decide(ctx context.Context, target string, state State) Decision {
	loggedIn := state.LoggedIn

	principal, err := g.loader.Load(ctx, state.Token)
	if err != nil {
		loggedIn = false
		principal = nil
	}

	switch {
	case target == ViewLogin && loggedIn:
		return Decision{RedirectTo: ViewHome, Principal: principal}
	case target != ViewLogin && !loggedIn:
		logrus.WithFields(logrus.Fields{
			"target":      target,
			"cached_flag": state.LoggedIn,
		}).Debug("Navigation requires login")
		return Decision{RedirectTo: ViewLogin}
	default:
		return Decision{Allow: true, Principal: principal}
	}
}
