package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-session/session/v3"
	"go.uber.org/zap"

	"github.com/nexauth/nexauth/models"
)

// principalKey is the gin context key the middleware stores the resolved
// principal under.
const principalKey = "authenticated_principal"

// Authenticator resolves the current authenticated principal from a request.
// The end-user login protocol itself lives outside this core; this interface
// is the seam to it.
type Authenticator interface {
	Principal(w http.ResponseWriter, r *http.Request) (*models.AuthenticatedPrincipal, error)
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(w http.ResponseWriter, r *http.Request) (*models.AuthenticatedPrincipal, error)

func (f AuthenticatorFunc) Principal(w http.ResponseWriter, r *http.Request) (*models.AuthenticatedPrincipal, error) {
	return f(w, r)
}

// SessionAuthenticator reads the principal id the external login flow placed
// in the server-side session.
type SessionAuthenticator struct {
	// Key is the session key holding the principal id.
	Key string
}

func NewSessionAuthenticator() *SessionAuthenticator {
	return &SessionAuthenticator{Key: "principal_id"}
}

func (a *SessionAuthenticator) Principal(w http.ResponseWriter, r *http.Request) (*models.AuthenticatedPrincipal, error) {
	st, err := session.Start(r.Context(), w, r)
	if err != nil {
		return nil, err
	}
	v, ok := st.Get(a.Key)
	if !ok {
		return nil, nil
	}
	id, _ := v.(string)
	if id == "" {
		return nil, nil
	}
	return &models.AuthenticatedPrincipal{ID: id}, nil
}

// RequirePrincipal gates the management API: unauthenticated requests get a
// 401 envelope, authenticated ones proceed with the principal in context.
func (s *Server) RequirePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := s.Auth.Principal(c.Writer, c.Request)
		if err != nil {
			s.Log.Error("resolve principal", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Something went wrong. Please try again."})
			return
		}
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required."})
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// currentPrincipal returns the principal stored by RequirePrincipal.
func currentPrincipal(c *gin.Context) *models.AuthenticatedPrincipal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(*models.AuthenticatedPrincipal); ok {
			return p
		}
	}
	return nil
}
