// Package errors defines the OAuth 2.0 protocol error taxonomy: error
// values whose messages are the wire-level error codes, plus the
// human-readable descriptions and HTTP status codes for each.
package errors

import (
	"errors"
	"net/http"
)

// New returns an error that formats as the given text.
var New = errors.New

// Is reports whether any error in err's chain matches target.
var Is = errors.Is

// Protocol errors. The message is the `error` field of the response body.
var (
	ErrInvalidRequest          = errors.New("invalid_request")
	ErrInvalidClient           = errors.New("invalid_client")
	ErrInvalidGrant            = errors.New("invalid_grant")
	ErrUnauthorizedClient      = errors.New("unauthorized_client")
	ErrUnsupportedGrantType    = errors.New("unsupported_grant_type")
	ErrUnsupportedResponseType = errors.New("unsupported_response_type")
	ErrInvalidRedirectURI      = errors.New("invalid_request")
	ErrAccessDenied            = errors.New("access_denied")
	ErrInvalidAccessToken      = errors.New("invalid_token")
	ErrServerError             = errors.New("server_error")
)

// Descriptions error description
var Descriptions = map[error]string{
	ErrInvalidRequest:          "The request is missing a required parameter or is otherwise malformed",
	ErrInvalidClient:           "Client authentication failed",
	ErrInvalidGrant:            "The provided authorization grant is invalid, expired or revoked",
	ErrUnauthorizedClient:      "The client is not authorized to request a token using this method",
	ErrUnsupportedGrantType:    "The authorization grant type is not supported by the authorization server",
	ErrUnsupportedResponseType: "Only 'code' response type is supported",
	ErrInvalidRedirectURI:      "redirect_uri is not registered for this client",
	ErrAccessDenied:            "The resource owner or authorization server denied the request",
	ErrInvalidAccessToken:      "Invalid or expired access token",
	ErrServerError:             "An internal error occurred",
}

// StatusCodes response error HTTP status code
var StatusCodes = map[error]int{
	ErrInvalidRequest:          http.StatusBadRequest,
	ErrInvalidClient:           http.StatusBadRequest,
	ErrInvalidGrant:            http.StatusBadRequest,
	ErrUnauthorizedClient:      http.StatusUnauthorized,
	ErrUnsupportedGrantType:    http.StatusBadRequest,
	ErrUnsupportedResponseType: http.StatusBadRequest,
	ErrInvalidRedirectURI:      http.StatusBadRequest,
	ErrAccessDenied:            http.StatusForbidden,
	ErrInvalidAccessToken:      http.StatusUnauthorized,
	ErrServerError:             http.StatusInternalServerError,
}

// Description returns the registered description for err, falling back to the
// server_error text for unknown errors.
func Description(err error) string {
	if d, ok := Descriptions[err]; ok {
		return d
	}
	return Descriptions[ErrServerError]
}

// StatusCode returns the registered HTTP status for err, defaulting to 500.
func StatusCode(err error) int {
	if c, ok := StatusCodes[err]; ok {
		return c
	}
	return http.StatusInternalServerError
}
