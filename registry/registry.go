// Package registry implements the client-application registry: permission-
// gated CRUD over registered OAuth apps and rotation of their secrets.
package registry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nexauth/nexauth/dto"
	"github.com/nexauth/nexauth/models"
	"github.com/nexauth/nexauth/permission"
	"github.com/nexauth/nexauth/secrets"
	"github.com/nexauth/nexauth/store"
)

// secretLength is the size of a plaintext client secret.
const secretLength = 32

const (
	msgCreateFailed      = "Failed to create OAuth app."
	msgAppNotFound       = "App not found."
	msgNoUpdatePerm      = "You do not have permission to update this app."
	msgNoViewPerm        = "You do not have permission to view this app."
	msgNoDeletePerm      = "You do not have permission to delete this app."
	msgNoRevokePerm      = "You do not have permission to revoke this client secret."
	msgNoViewUsersPerm   = "You do not have permission to view this app's users."
	msgNoViewSecretsPerm = "You do not have permission to view this app's secrets."
	msgServerError       = "Something went wrong. Please try again."
)

// Service is the management surface over registered client applications.
type Service struct {
	DB    *gorm.DB
	Perms *permission.Service
	Log   *zap.Logger
}

func NewService(db *gorm.DB, perms *permission.Service, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{DB: db, Perms: perms, Log: log}
}

func (s *Service) apps() *store.AppStore            { return store.NewAppStore(s.DB) }
func (s *Service) secretsStore() *store.SecretStore { return store.NewSecretStore(s.DB) }

// CreateApp registers a client application and its initial secret, and grants
// the creator ownership of both. The whole sequence is one transaction: any
// failure rolls back and reports a single creation failure.
func (s *Service) CreateApp(ctx context.Context, p *models.AuthenticatedPrincipal, req dto.CreateAppRequest) Response {
	plaintext := secrets.RandString(secretLength)
	hashed, err := secrets.Hash(plaintext)
	if err != nil {
		s.Log.Error("hash initial client secret", zap.Error(err))
		return fail(msgCreateFailed)
	}

	app := &models.ClientApp{
		UserID:       p.ID,
		Name:         req.Name,
		Description:  req.Description,
		URL:          req.URL,
		LogoURL:      req.LogoURL,
		SupportEmail: req.SupportEmail,
		Scopes:       models.ScopeList(req.Scopes),
		RedirectURIs: models.StringList(req.RedirectURIs),
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := store.NewAppStore(tx).Create(ctx, app); err != nil {
			return err
		}
		secret := &models.ClientSecret{AppID: app.ID, HashedSecret: hashed}
		if err := store.NewSecretStore(tx).Create(ctx, secret); err != nil {
			return err
		}
		txPerms := s.Perms.WithTx(tx)
		if _, err := txPerms.CreatePermission(ctx, p.ID, permission.AppAll, app.ID); err != nil {
			return err
		}
		if _, err := txPerms.CreatePermission(ctx, p.ID, permission.SecretAll, secret.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		s.Log.Error("create OAuth app", zap.Error(err), zap.String("user_id", p.ID))
		return fail(msgCreateFailed)
	}
	return ok(dto.CreateAppResponse{App: app, ClientSecret: plaintext})
}

// UpdateApp applies a partial settings update, gated on app:all or
// app:update.
func (s *Service) UpdateApp(ctx context.Context, p *models.AuthenticatedPrincipal, appID string, req dto.UpdateAppRequest) Response {
	allowed, err := s.Perms.IsAllowed(ctx, p.ID, []permission.Identifier{permission.AppAll, permission.AppUpdate}, appID)
	if err != nil {
		s.Log.Error("permission check", zap.Error(err))
		return fail(msgServerError)
	}
	if !allowed {
		return fail(msgNoUpdatePerm)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}
	if req.SupportEmail != nil {
		updates["support_email"] = *req.SupportEmail
	}
	if req.Scopes != nil {
		updates["scopes"] = models.ScopeList(*req.Scopes)
	}
	if req.RedirectURIs != nil {
		updates["redirect_uris"] = models.StringList(*req.RedirectURIs)
	}

	app, err := s.apps().Update(ctx, appID, updates)
	if err != nil {
		if errIsNotFound(err) {
			return fail(msgAppNotFound)
		}
		s.Log.Error("update OAuth app", zap.Error(err), zap.String("app_id", appID))
		return fail(msgServerError)
	}
	return ok(app)
}

// RotateSecret mints an additional client secret for the app and grants the
// caller ownership of it. Existing secrets stay active until separately
// revoked, so rotation needs no downtime.
func (s *Service) RotateSecret(ctx context.Context, p *models.AuthenticatedPrincipal, appID string) Response {
	allowed, err := s.Perms.IsAllowed(ctx, p.ID, []permission.Identifier{permission.AppAll, permission.AppUpdate}, appID)
	if err != nil {
		s.Log.Error("permission check", zap.Error(err))
		return fail(msgServerError)
	}
	if !allowed {
		return fail(msgNoUpdatePerm)
	}
	if _, err := s.apps().GetByID(ctx, appID); err != nil {
		if errIsNotFound(err) {
			return fail(msgAppNotFound)
		}
		s.Log.Error("load OAuth app", zap.Error(err), zap.String("app_id", appID))
		return fail(msgServerError)
	}

	plaintext := secrets.RandString(secretLength)
	hashed, err := secrets.Hash(plaintext)
	if err != nil {
		s.Log.Error("hash rotated client secret", zap.Error(err))
		return fail(msgServerError)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		secret := &models.ClientSecret{AppID: appID, HashedSecret: hashed}
		if err := store.NewSecretStore(tx).Create(ctx, secret); err != nil {
			return err
		}
		_, err := s.Perms.WithTx(tx).CreatePermission(ctx, p.ID, permission.SecretAll, secret.ID)
		return err
	})
	if err != nil {
		s.Log.Error("rotate client secret", zap.Error(err), zap.String("app_id", appID))
		return fail(msgServerError)
	}
	return ok(dto.RotateSecretResponse{ClientSecret: plaintext})
}

// RevokeSecret soft-revokes a secret. The caller must hold permission on
// both the app and the specific secret.
func (s *Service) RevokeSecret(ctx context.Context, p *models.AuthenticatedPrincipal, appID, secretID string) Response {
	appOK, err := s.Perms.IsAllowed(ctx, p.ID, []permission.Identifier{permission.AppAll, permission.AppUpdate}, appID)
	if err != nil {
		s.Log.Error("permission check", zap.Error(err))
		return fail(msgServerError)
	}
	secretOK, err := s.Perms.IsAllowed(ctx, p.ID, []permission.Identifier{permission.SecretAll, permission.SecretDelete}, secretID)
	if err != nil {
		s.Log.Error("permission check", zap.Error(err))
		return fail(msgServerError)
	}
	if !appOK || !secretOK {
		return fail(msgNoRevokePerm)
	}
	if err := s.secretsStore().Revoke(ctx, secretID); err != nil {
		s.Log.Error("revoke client secret", zap.Error(err), zap.String("secret_id", secretID))
		return fail(msgServerError)
	}
	return okMsg(nil, "Client secret revoked successfully.")
}

// GetApp returns a single app, gated on app:all.
func (s *Service) GetApp(ctx context.Context, p *models.AuthenticatedPrincipal, appID string) Response {
	allowed, err := s.Perms.IsAllowed(ctx, p.ID, []permission.Identifier{permission.AppAll}, appID)
	if err != nil {
		s.Log.Error("permission check", zap.Error(err))
		return fail(msgServerError)
	}
	if !allowed {
		return fail(msgNoViewPerm)
	}
	app, err := s.apps().GetByID(ctx, appID)
	if err != nil {
		if errIsNotFound(err) {
			return fail(msgAppNotFound)
		}
		s.Log.Error("load OAuth app", zap.Error(err), zap.String("app_id", appID))
		return fail(msgServerError)
	}
	return ok(app)
}

// ListApps returns the caller's own apps, paginated. Owner scoping is the
// authorization here; no permission rows are consulted.
func (s *Service) ListApps(ctx context.Context, p *models.AuthenticatedPrincipal, limit, offset int) Response {
	apps, err := s.apps().ListByOwner(ctx, p.ID, limit, offset)
	if err != nil {
		s.Log.Error("list OAuth apps", zap.Error(err), zap.String("user_id", p.ID))
		return fail(msgServerError)
	}
	return ok(apps)
}

// CountApps returns how many apps the caller owns.
func (s *Service) CountApps(ctx context.Context, p *models.AuthenticatedPrincipal) Response {
	n, err := s.apps().CountByOwner(ctx, p.ID)
	if err != nil {
		s.Log.Error("count OAuth apps", zap.Error(err), zap.String("user_id", p.ID))
		return fail(msgServerError)
	}
	return ok(n)
}

// DeleteApp removes an app and cascades to its secrets, codes, refresh
// tokens and app-user links. Gated on app:all.
func (s *Service) DeleteApp(ctx context.Context, p *models.AuthenticatedPrincipal, appID string) Response {
	allowed, err := s.Perms.IsAllowed(ctx, p.ID, []permission.Identifier{permission.AppAll}, appID)
	if err != nil {
		s.Log.Error("permission check", zap.Error(err))
		return fail(msgServerError)
	}
	if !allowed {
		return fail(msgNoDeletePerm)
	}
	if err := s.apps().Delete(ctx, appID); err != nil {
		if errIsNotFound(err) {
			return fail(msgAppNotFound)
		}
		s.Log.Error("delete OAuth app", zap.Error(err), zap.String("app_id", appID))
		return fail(msgServerError)
	}
	return okMsg(nil, "App deleted successfully.")
}

// ListConnectedUsers returns the principals who have authorized the app.
// Gated on app:all.
func (s *Service) ListConnectedUsers(ctx context.Context, p *models.AuthenticatedPrincipal, appID string) Response {
	allowed, err := s.Perms.IsAllowed(ctx, p.ID, []permission.Identifier{permission.AppAll}, appID)
	if err != nil {
		s.Log.Error("permission check", zap.Error(err))
		return fail(msgServerError)
	}
	if !allowed {
		return fail(msgNoViewUsersPerm)
	}
	users, err := s.apps().ListConnectedUsers(ctx, appID)
	if err != nil {
		s.Log.Error("list connected users", zap.Error(err), zap.String("app_id", appID))
		return fail(msgServerError)
	}
	return ok(users)
}

// ListSecrets returns secret metadata for the app, gated on app:all. The
// hashed values never leave the store layer's row type; callers get the
// metadata view only.
func (s *Service) ListSecrets(ctx context.Context, p *models.AuthenticatedPrincipal, appID string) Response {
	allowed, err := s.Perms.IsAllowed(ctx, p.ID, []permission.Identifier{permission.AppAll}, appID)
	if err != nil {
		s.Log.Error("permission check", zap.Error(err))
		return fail(msgServerError)
	}
	if !allowed {
		return fail(msgNoViewSecretsPerm)
	}
	list, err := s.secretsStore().ListByApp(ctx, appID)
	if err != nil {
		s.Log.Error("list client secrets", zap.Error(err), zap.String("app_id", appID))
		return fail(msgServerError)
	}
	return ok(dto.FromSecrets(list, time.Now().UTC()))
}

func errIsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
