// Package manage drives the authorization and token-exchange protocol:
// issuing authorization codes, exchanging them for signed access tokens,
// rotating refresh tokens and revoking them.
package manage

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nexauth/nexauth/dto"
	"github.com/nexauth/nexauth/errors"
	"github.com/nexauth/nexauth/generates"
	"github.com/nexauth/nexauth/models"
	"github.com/nexauth/nexauth/store"
)

// Config carries the protocol parameters sourced from deployment
// configuration.
type Config struct {
	// Issuer is the `iss` claim of minted access tokens.
	Issuer string
	// LoginURL is where unauthenticated authorize requests are sent.
	LoginURL string
	// AccessTokenTTL is the access-token validity window.
	AccessTokenTTL time.Duration
}

// TokenResponse is the token-endpoint success body.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Manager owns the protocol state machine over the shared datastore.
type Manager struct {
	DB            *gorm.DB
	Apps          *store.AppStore
	Secrets       *store.SecretStore
	Codes         *store.CodeStore
	RefreshTokens *store.RefreshTokenStore
	Users         *store.UserStore
	JWT           *generates.JWTAccess
	Config        Config
	Log           *zap.Logger
}

func NewManager(db *gorm.DB, jwtAccess *generates.JWTAccess, cfg Config, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = time.Hour
	}
	return &Manager{
		DB:            db,
		Apps:          store.NewAppStore(db),
		Secrets:       store.NewSecretStore(db),
		Codes:         store.NewCodeStore(db),
		RefreshTokens: store.NewRefreshTokenStore(db),
		Users:         store.NewUserStore(db),
		JWT:           jwtAccess,
		Config:        cfg,
		Log:           log,
	}
}

// LookupClient resolves an app by its public client identifier.
func (m *Manager) LookupClient(ctx context.Context, clientID string) (*models.ClientApp, error) {
	app, err := m.Apps.GetByClientID(ctx, clientID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrInvalidClient
		}
		return nil, err
	}
	return app, nil
}

// Authorize mints an authorization code binding the app to the authenticated
// principal and records the connection. Request validation (redirect_uri,
// response_type) happens before this is called.
func (m *Manager) Authorize(ctx context.Context, p *models.AuthenticatedPrincipal, app *models.ClientApp) (string, error) {
	code, err := m.Codes.Issue(ctx, app.ID, p.ID)
	if err != nil {
		return "", err
	}
	// Connection bookkeeping only; a failure here must not void the code.
	if err := m.Users.ConnectToApp(ctx, app.ID, p.ID); err != nil {
		m.Log.Warn("record app connection", zap.Error(err), zap.String("app_id", app.ID))
	}
	return code.Code, nil
}

// ExchangeCode runs the authorization_code grant: active secret verified by
// recomputation, code redeemed single-use, access token always minted and a
// refresh token only when the app holds offline_access. Secret and code
// failures are deliberately indistinguishable.
func (m *Manager) ExchangeCode(ctx context.Context, clientID, clientSecret, code string) (*TokenResponse, error) {
	app, err := m.LookupClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if _, err := m.Secrets.FindActive(ctx, app.ID, clientSecret); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrInvalidGrant
		}
		return nil, err
	}

	offline := app.Scopes.Contains(models.ScopeOfflineAccess)
	var userID, refreshPlaintext string
	err = m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		redeemed, err := store.NewCodeStore(tx).Redeem(ctx, code, app.ID)
		if err != nil {
			return err
		}
		userID = redeemed.UserID
		if offline {
			refreshPlaintext, _, err = store.NewRefreshTokenStore(tx).Issue(ctx, app.ID, redeemed.UserID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrInvalidGrant
		}
		return nil, err
	}

	access, err := m.signAccessToken(app, userID)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int64(m.Config.AccessTokenTTL.Seconds()),
		RefreshToken: refreshPlaintext,
	}, nil
}

// Refresh runs the refresh_token grant: the stored row is found by digest,
// must be active, and is rotated — the new token is issued and the old one
// revoked atomically, so the presented token is dead after this returns.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	row, err := m.RefreshTokens.Find(ctx, refreshToken)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrInvalidGrant
		}
		return nil, err
	}
	if row.StateAt(time.Now().UTC()) != models.CredentialActive {
		return nil, errors.ErrInvalidGrant
	}
	app, err := m.Apps.GetByID(ctx, row.AppID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrInvalidGrant
		}
		return nil, err
	}

	access, err := m.signAccessToken(app, row.UserID)
	if err != nil {
		return nil, err
	}
	newPlaintext, _, err := m.RefreshTokens.Rotate(ctx, row)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			// Lost the rotation race; the concurrent winner holds the
			// replacement.
			return nil, errors.ErrInvalidGrant
		}
		return nil, err
	}
	return &TokenResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int64(m.Config.AccessTokenTTL.Seconds()),
		RefreshToken: newPlaintext,
	}, nil
}

// RevokeToken revokes a refresh token presented by its owner. The lookup is
// scoped to the principal's id, so the correct value alone is not enough to
// revoke someone else's token.
func (m *Manager) RevokeToken(ctx context.Context, p *models.AuthenticatedPrincipal, token string) error {
	if err := m.RefreshTokens.RevokeForUser(ctx, token, p.ID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrInvalidGrant
		}
		return err
	}
	return nil
}

// UserInfo maps a verified bearer token to public profile claims. Signature,
// explicit expiry and principal existence are all checked; every failure is
// the same invalid_token.
func (m *Manager) UserInfo(ctx context.Context, bearer string) (*dto.UserInfoResponse, error) {
	claims, err := m.JWT.Verify(bearer)
	if err != nil {
		return nil, errors.ErrInvalidAccessToken
	}
	if claims.ExpiredAt(time.Now()) {
		return nil, errors.ErrInvalidAccessToken
	}
	user, err := m.Users.GetByID(ctx, claims.Sub)
	if err != nil {
		return nil, errors.ErrInvalidAccessToken
	}
	info := dto.FromUser(user)
	return &info, nil
}

func (m *Manager) signAccessToken(app *models.ClientApp, userID string) (string, error) {
	claims := generates.NewClaims(m.Config.Issuer, app, userID, m.Config.AccessTokenTTL)
	access, err := m.JWT.Sign(claims)
	if err != nil {
		m.Log.Error("sign access token", zap.Error(err), zap.String("client_id", app.ClientID))
		return "", errors.ErrServerError
	}
	return access, nil
}
