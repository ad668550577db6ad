package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nexauth/nexauth/dto"
	"github.com/nexauth/nexauth/registry"
)

func (s *Server) HandleCreateApp(c *gin.Context) {
	var req dto.CreateAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, registry.Response{Success: false, Message: "Invalid request body."})
		return
	}
	s.envelope(c, s.Registry.CreateApp(c.Request.Context(), currentPrincipal(c), req))
}

func (s *Server) HandleListApps(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	s.envelope(c, s.Registry.ListApps(c.Request.Context(), currentPrincipal(c), limit, offset))
}

func (s *Server) HandleCountApps(c *gin.Context) {
	s.envelope(c, s.Registry.CountApps(c.Request.Context(), currentPrincipal(c)))
}

func (s *Server) HandleGetApp(c *gin.Context) {
	s.envelope(c, s.Registry.GetApp(c.Request.Context(), currentPrincipal(c), c.Param("id")))
}

func (s *Server) HandleUpdateApp(c *gin.Context) {
	var req dto.UpdateAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, registry.Response{Success: false, Message: "Invalid request body."})
		return
	}
	s.envelope(c, s.Registry.UpdateApp(c.Request.Context(), currentPrincipal(c), c.Param("id"), req))
}

func (s *Server) HandleDeleteApp(c *gin.Context) {
	s.envelope(c, s.Registry.DeleteApp(c.Request.Context(), currentPrincipal(c), c.Param("id")))
}

func (s *Server) HandleRotateSecret(c *gin.Context) {
	s.envelope(c, s.Registry.RotateSecret(c.Request.Context(), currentPrincipal(c), c.Param("id")))
}

func (s *Server) HandleListSecrets(c *gin.Context) {
	s.envelope(c, s.Registry.ListSecrets(c.Request.Context(), currentPrincipal(c), c.Param("id")))
}

func (s *Server) HandleRevokeSecret(c *gin.Context) {
	s.envelope(c, s.Registry.RevokeSecret(c.Request.Context(), currentPrincipal(c), c.Param("id"), c.Param("secretId")))
}

func (s *Server) HandleListConnectedUsers(c *gin.Context) {
	s.envelope(c, s.Registry.ListConnectedUsers(c.Request.Context(), currentPrincipal(c), c.Param("id")))
}

// envelope writes a registry response. Authorization and lookup failures
// travel inside the body, not the status line.
func (s *Server) envelope(c *gin.Context, resp registry.Response) {
	c.JSON(http.StatusOK, resp)
}
