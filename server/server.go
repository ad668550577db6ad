package server

import (
	"go.uber.org/zap"

	"github.com/nexauth/nexauth/manage"
	"github.com/nexauth/nexauth/registry"
)

// Server wires the protocol and management surfaces over one engine.
type Server struct {
	Manager  *manage.Manager
	Registry *registry.Service
	Auth     Authenticator
	Log      *zap.Logger
}

func NewServer(mgr *manage.Manager, reg *registry.Service, auth Authenticator, log *zap.Logger) *Server {
	if auth == nil {
		auth = NewSessionAuthenticator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		Manager:  mgr,
		Registry: reg,
		Auth:     auth,
		Log:      log,
	}
}
