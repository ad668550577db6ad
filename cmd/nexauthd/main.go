package main

import (
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nexauth/nexauth/generates"
	"github.com/nexauth/nexauth/manage"
	"github.com/nexauth/nexauth/migrate"
	"github.com/nexauth/nexauth/permission"
	"github.com/nexauth/nexauth/registry"
	"github.com/nexauth/nexauth/server"
)

func main() {
	cfg := server.GetConfig()

	logger := newLogger(cfg.Env)
	defer logger.Sync()

	if err := migrate.RunFromEnv(); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}

	privPEM, pubPEM, err := cfg.DecodeJWTKeys()
	if err != nil {
		logger.Fatal("decode jwt keys", zap.Error(err))
	}
	jwtAccess, err := generates.NewJWTAccess(cfg.JWT.KeyID, privPEM, pubPEM)
	if err != nil {
		logger.Fatal("load jwt keys", zap.Error(err))
	}

	mgr := manage.NewManager(db, jwtAccess, manage.Config{
		Issuer:         cfg.Issuer(),
		LoginURL:       cfg.LoginURL(),
		AccessTokenTTL: cfg.AccessTokenTTL(),
	}, logger)
	reg := registry.NewService(db, permission.NewService(db), logger)
	srv := server.NewServer(mgr, reg, nil, logger)

	engine := server.NewGinEngine(srv)
	logger.Info("listening", zap.String("addr", cfg.Addr()))
	if err := engine.Run(cfg.Addr()); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}

func newLogger(env string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	return logger
}
