package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"Kinolog/services"
)

const (
	RoleAdmin       = "admin"
	RoleContributor = "contributor"
	RoleNone        = "none"
)

// Identity is the resolved caller: a role plus, for contributors, their
// account id. The workflow services consume this and nothing else about the
// session.
type Identity struct {
	Role          string
	Username      string
	ContributorID int
}

type ctxKey struct{}

func IdentityFrom(ctx context.Context) Identity {
	if id, ok := ctx.Value(ctxKey{}).(Identity); ok {
		return id
	}
	return Identity{Role: RoleNone}
}

type Auth struct {
	sessions *services.Sessions
	auth     *services.Auth
}

func NewAuth(sessions *services.Sessions, auth *services.Auth) *Auth {
	return &Auth{sessions: sessions, auth: auth}
}

// Resolve inspects the session cookie and re-verifies the account still
// exists (and, for contributors, is still active). Absent or invalid
// sessions resolve to no role.
func (a *Auth) Resolve(r *http.Request) Identity {
	session, err := a.sessions.Get(r)
	if err != nil {
		return Identity{Role: RoleNone}
	}

	role, _ := session.Values["role"].(string)
	switch role {
	case RoleAdmin:
		userID, ok := toInt64(session.Values["user_id"])
		if !ok {
			return Identity{Role: RoleNone}
		}
		user, err := a.auth.GetUserByID(r.Context(), userID)
		if err != nil || !user.IsAdmin {
			return Identity{Role: RoleNone}
		}
		return Identity{Role: RoleAdmin, Username: user.Username}
	case RoleContributor:
		id, ok := toInt64(session.Values["contributor_id"])
		if !ok {
			return Identity{Role: RoleNone}
		}
		c, err := a.auth.GetContributorByID(r.Context(), int(id))
		if err != nil || !c.Active {
			return Identity{Role: RoleNone}
		}
		return Identity{Role: RoleContributor, Username: c.Username, ContributorID: c.ID}
	default:
		return Identity{Role: RoleNone}
	}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

// WithIdentity resolves the caller once and stores it on the request
// context for the handlers downstream.
func (a *Auth) WithIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := a.Resolve(r)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// RequireContributor admits contributors and admins.
func (a *Auth) RequireContributor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFrom(r.Context())
		if id.Role != RoleContributor && id.Role != RoleAdmin {
			slog.Warn("Unauthorized request", "path", r.URL.Path)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin admits admins only.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFrom(r.Context())
		if id.Role == RoleNone {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if id.Role != RoleAdmin {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
