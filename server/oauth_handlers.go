package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nexauth/nexauth/errors"
)

// tokenRequest is the token-endpoint payload, accepted as either a URL
// encoded form or a JSON body.
type tokenRequest struct {
	GrantType    string `form:"grant_type" json:"grant_type"`
	ClientID     string `form:"client_id" json:"client_id"`
	ClientSecret string `form:"client_secret" json:"client_secret"`
	Code         string `form:"code" json:"code"`
	RefreshToken string `form:"refresh_token" json:"refresh_token"`

	// Revocation parameters per RFC 7009. The hint is accepted and ignored:
	// only refresh tokens are revocable.
	Token         string `form:"token" json:"token"`
	TokenTypeHint string `form:"token_type_hint" json:"token_type_hint"`
}

// HandleAuthorizeRequest validates the authorization request, bounces
// unauthenticated users to the login flow and redirects back with a fresh
// code on success.
func (s *Server) HandleAuthorizeRequest(c *gin.Context) {
	clientID := c.Query("client_id")
	redirectURI := c.Query("redirect_uri")
	responseType := c.Query("response_type")
	state := c.Query("state")

	if clientID == "" || redirectURI == "" {
		s.protocolError(c, errors.ErrInvalidRequest)
		return
	}
	if responseType != "code" {
		s.protocolError(c, errors.ErrUnsupportedResponseType)
		return
	}

	app, err := s.Manager.LookupClient(c.Request.Context(), clientID)
	if err != nil {
		s.protocolError(c, err)
		return
	}
	if !app.RedirectURIs.Contains(redirectURI) {
		s.protocolError(c, errors.ErrInvalidRedirectURI)
		return
	}

	principal, err := s.Auth.Principal(c.Writer, c.Request)
	if err != nil {
		s.Log.Error("resolve principal", zap.Error(err))
		s.protocolError(c, errors.ErrServerError)
		return
	}
	if principal == nil {
		c.Redirect(http.StatusFound, s.loginRedirect(c.Request))
		return
	}

	code, err := s.Manager.Authorize(c.Request.Context(), principal, app)
	if err != nil {
		s.protocolError(c, err)
		return
	}

	target, err := url.Parse(redirectURI)
	if err != nil {
		s.protocolError(c, errors.ErrInvalidRedirectURI)
		return
	}
	q := target.Query()
	q.Set("code", code)
	if state != "" {
		q.Set("state", state)
	}
	target.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, target.String())
}

// HandleTokenRequest dispatches the supported grants.
func (s *Server) HandleTokenRequest(c *gin.Context) {
	req, err := bindTokenRequest(c)
	if err != nil {
		s.protocolError(c, err)
		return
	}

	var resp interface{}
	switch req.GrantType {
	case "authorization_code":
		if req.ClientID == "" || req.ClientSecret == "" || req.Code == "" {
			err = errors.ErrInvalidRequest
			break
		}
		resp, err = s.Manager.ExchangeCode(c.Request.Context(), req.ClientID, req.ClientSecret, req.Code)
	case "refresh_token":
		if req.RefreshToken == "" {
			err = errors.ErrInvalidRequest
			break
		}
		resp, err = s.Manager.Refresh(c.Request.Context(), req.RefreshToken)
	default:
		err = errors.ErrUnsupportedGrantType
	}
	if err != nil {
		s.protocolError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleRevocationRequest revokes a refresh token on behalf of its owner.
func (s *Server) HandleRevocationRequest(c *gin.Context) {
	principal, err := s.Auth.Principal(c.Writer, c.Request)
	if err != nil {
		s.Log.Error("resolve principal", zap.Error(err))
		s.protocolError(c, errors.ErrServerError)
		return
	}
	if principal == nil {
		writeProtocolError(c, http.StatusUnauthorized, errors.ErrInvalidClient)
		return
	}

	req, err := bindTokenRequest(c)
	if err != nil {
		s.protocolError(c, errors.ErrInvalidRequest)
		return
	}
	token := req.Token
	if token == "" {
		token = req.RefreshToken
	}
	if token == "" {
		s.protocolError(c, errors.ErrInvalidRequest)
		return
	}
	if err := s.Manager.RevokeToken(c.Request.Context(), principal, token); err != nil {
		s.protocolError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// HandleUserInfoRequest serves the profile claims behind a bearer token.
func (s *Server) HandleUserInfoRequest(c *gin.Context) {
	bearer, ok := bearerToken(c.Request)
	if !ok {
		s.protocolError(c, errors.ErrInvalidAccessToken)
		return
	}
	info, err := s.Manager.UserInfo(c.Request.Context(), bearer)
	if err != nil {
		s.protocolError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// loginRedirect builds the external login URL carrying the full original
// authorize request so the flow can resume after sign-in.
func (s *Server) loginRedirect(r *http.Request) string {
	cfg := s.Manager.Config
	sep := "?"
	if strings.Contains(cfg.LoginURL, "?") {
		sep = "&"
	}
	return cfg.LoginURL + sep + "callback_url=" + url.QueryEscape(r.URL.String())
}

// protocolError writes the RFC 6749 error body for a known error value and
// falls back to server_error for anything unexpected.
func (s *Server) protocolError(c *gin.Context, err error) {
	status := errors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		s.Log.Error("protocol error", zap.Error(err), zap.String("path", c.Request.URL.Path))
		err = errors.ErrServerError
	}
	writeProtocolError(c, status, err)
}

func writeProtocolError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{
		"error":             err.Error(),
		"error_description": errors.Description(err),
	})
}

func bindTokenRequest(c *gin.Context) (*tokenRequest, error) {
	var req tokenRequest
	ct := c.ContentType()
	switch {
	case ct == gin.MIMEJSON:
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, errors.ErrInvalidRequest
		}
	case ct == gin.MIMEPOSTForm || ct == "":
		if err := c.ShouldBind(&req); err != nil {
			return nil, errors.ErrInvalidRequest
		}
	default:
		return nil, errors.ErrInvalidRequest
	}
	return &req, nil
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	return auth[len(prefix):], true
}
