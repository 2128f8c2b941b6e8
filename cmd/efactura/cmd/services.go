package cmd

import (
	"github.com/rezonia/efactura/internal/auth"
	"github.com/rezonia/efactura/internal/client"
	"github.com/rezonia/efactura/internal/config"

	"go.uber.org/zap"
)

// services bundles the wired-up library pieces every subcommand needs.
type services struct {
	cfg   *config.Config
	store *fileStore
	auth  *auth.Service
	api   *client.Client
	log   *zap.Logger
}

func newServices() (*services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger()
	if err != nil {
		return nil, err
	}
	store, err := newFileStore(tokenFile)
	if err != nil {
		return nil, err
	}
	authService := auth.NewService(cfg, store, auth.WithLogger(log))
	apiClient := client.NewClient(cfg, authService, client.WithLogger(log))
	return &services{
		cfg:   cfg,
		store: store,
		auth:  authService,
		api:   apiClient,
		log:   log,
	}, nil
}
