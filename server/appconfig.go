package server

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// AppConfig defines application configuration loaded from files and
// environment.
type AppConfig struct {
	Env      string         `koanf:"env"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	OAuth    OAuthConfig    `koanf:"oauth"`
	JWT      JWTConfig      `koanf:"jwt"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type DatabaseConfig struct {
	DSN string `koanf:"dsn"`
}

type OAuthConfig struct {
	// Issuer is the public base URL of this server, used as the access
	// token `iss` claim and in discovery metadata.
	Issuer string `koanf:"issuer"`
	// LoginURL is the external login page unauthenticated authorize
	// requests are redirected to.
	LoginURL string `koanf:"login_url"`
	// AccessTokenExpiresMinutes is the access-token validity window.
	AccessTokenExpiresMinutes int `koanf:"access_token_expires_minutes"`
}

type JWTConfig struct {
	// PrivateKey / PublicKey hold base64-wrapped PEM key material, the
	// same shape `openssl ... | base64 -w 0` produces.
	PrivateKey string `koanf:"private_key"`
	PublicKey  string `koanf:"public_key"`
	KeyID      string `koanf:"key_id"`
}

var (
	cfgOnce sync.Once
	cfgInst *AppConfig
)

// GetConfig loads and returns the singleton AppConfig. Loading order:
// 1) config/config.yaml (optional)
// 2) config/config.<APP_ENV>.yaml (optional), APP_ENV defaults to "local"
// 3) Environment variables with prefix NEXAUTH_ mapped using __ as nested
// separator, e.g. NEXAUTH_DATABASE__DSN, NEXAUTH_OAUTH__ISSUER
func GetConfig() *AppConfig {
	cfgOnce.Do(func() {
		cfgInst = loadConfig()
	})
	return cfgInst
}

func loadConfig() *AppConfig {
	k := koanf.New(".")
	configDir := os.Getenv("CONFIG_DIR")
	if configDir == "" {
		configDir = "config"
	}
	// Whether to load files (default: disabled to keep tests isolated)
	loadFiles := strings.EqualFold(os.Getenv("APP_CONFIG_FILES"), "1") || strings.EqualFold(os.Getenv("APP_CONFIG_FILES"), "true")
	if loadFiles {
		base := filepath.Join(configDir, "config.yaml")
		if _, err := os.Stat(base); err == nil {
			if err := k.Load(file.Provider(base), yaml.Parser()); err != nil {
				log.Printf("config: failed loading base: %v", err)
			}
		}
	}
	envName := os.Getenv("APP_ENV")
	if envName == "" {
		envName = "local"
	}
	if loadFiles {
		envFile := filepath.Join(configDir, "config."+envName+".yaml")
		if _, err := os.Stat(envFile); err == nil {
			if err := k.Load(file.Provider(envFile), yaml.Parser()); err != nil {
				log.Printf("config: failed loading env file: %v", err)
			}
		}
	}
	// NEXAUTH_DATABASE__DSN -> database.dsn
	_ = k.Load(env.Provider("NEXAUTH_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "NEXAUTH_")), "__", ".")
	}), nil)

	var c AppConfig
	if err := k.Unmarshal("", &c); err != nil {
		log.Printf("config: unmarshal error: %v", err)
	}
	if c.Env == "" {
		c.Env = envName
	}
	return &c
}

// Addr returns the listen address, defaulting to :9096.
func (c *AppConfig) Addr() string {
	if c != nil && strings.TrimSpace(c.Server.Addr) != "" {
		return strings.TrimSpace(c.Server.Addr)
	}
	return ":9096"
}

// DSN returns the effective datastore DSN (config first, then env).
func (c *AppConfig) DSN() string {
	if c != nil && c.Database.DSN != "" {
		return strings.TrimSpace(c.Database.DSN)
	}
	return strings.TrimSpace(os.Getenv("DATABASE_DSN"))
}

// Issuer returns the configured issuer URL with a localhost default.
func (c *AppConfig) Issuer() string {
	if c != nil && strings.TrimSpace(c.OAuth.Issuer) != "" {
		return strings.TrimRight(strings.TrimSpace(c.OAuth.Issuer), "/")
	}
	return "http://localhost:9096"
}

// LoginURL returns the external login page, defaulting to issuer + /signin.
func (c *AppConfig) LoginURL() string {
	if c != nil && strings.TrimSpace(c.OAuth.LoginURL) != "" {
		return strings.TrimSpace(c.OAuth.LoginURL)
	}
	return c.Issuer() + "/signin"
}

// AccessTokenTTL returns the access-token lifetime, defaulting to one hour.
func (c *AppConfig) AccessTokenTTL() time.Duration {
	if c != nil && c.OAuth.AccessTokenExpiresMinutes > 0 {
		return time.Duration(c.OAuth.AccessTokenExpiresMinutes) * time.Minute
	}
	return time.Hour
}

// DecodeJWTKeys base64-decodes the configured PEM key pair.
func (c *AppConfig) DecodeJWTKeys() (privatePEM, publicPEM []byte, err error) {
	if c == nil || c.JWT.PrivateKey == "" || c.JWT.PublicKey == "" {
		return nil, nil, fmt.Errorf("jwt key material not configured")
	}
	priv, err := base64.StdEncoding.DecodeString(strings.TrimSpace(c.JWT.PrivateKey))
	if err != nil {
		return nil, nil, fmt.Errorf("decode jwt private key: %w", err)
	}
	pub, err := base64.StdEncoding.DecodeString(strings.TrimSpace(c.JWT.PublicKey))
	if err != nil {
		return nil, nil, fmt.Errorf("decode jwt public key: %w", err)
	}
	return priv, pub, nil
}
