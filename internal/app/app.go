// Package app initializes and runs the contacts service.
// It configures logging, storage, the avatar store, the mail gateway
// and routing, and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patric-chuzhbe/contactsapi/internal/auth"
	"github.com/patric-chuzhbe/contactsapi/internal/avatar"
	"github.com/patric-chuzhbe/contactsapi/internal/config"
	"github.com/patric-chuzhbe/contactsapi/internal/db/jsondb"
	"github.com/patric-chuzhbe/contactsapi/internal/db/memorystorage"
	"github.com/patric-chuzhbe/contactsapi/internal/db/mongodb"
	"github.com/patric-chuzhbe/contactsapi/internal/db/postgresdb"
	"github.com/patric-chuzhbe/contactsapi/internal/db/storage"
	"github.com/patric-chuzhbe/contactsapi/internal/filestore/diskstore"
	"github.com/patric-chuzhbe/contactsapi/internal/filestore/s3store"
	"github.com/patric-chuzhbe/contactsapi/internal/ipchecker"
	"github.com/patric-chuzhbe/contactsapi/internal/logger"
	"github.com/patric-chuzhbe/contactsapi/internal/mailer"
	"github.com/patric-chuzhbe/contactsapi/internal/models"
	"github.com/patric-chuzhbe/contactsapi/internal/router"
	"github.com/patric-chuzhbe/contactsapi/internal/service"
	"github.com/patric-chuzhbe/contactsapi/internal/validation"
)

const shutdownTimeout = 10 * time.Second

type avatarStore interface {
	Save(ctx context.Context, name string, content io.Reader, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

type mailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// App encapsulates the configuration, HTTP handler and storage backend
// needed to run the contacts service.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	httpHandler http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - selecting and setting up storage
// - selecting the avatar store and the mail gateway
// - setting up the router and middleware
func New(optionsProto ...config.InitOption) (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New(optionsProto...)
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	app.db, err = getStorageByType(ctx, app.cfg)
	if err != nil {
		return nil, err
	}

	avatars, err := getAvatarStore(ctx, app.cfg)
	if err != nil {
		return nil, errors.Join(err, app.db.Close())
	}

	checker, err := ipchecker.New(app.cfg.TrustedCIDR)
	if err != nil {
		return nil, errors.Join(err, app.db.Close())
	}

	validator, err := validation.New()
	if err != nil {
		return nil, errors.Join(err, app.db.Close())
	}

	theAuth := auth.New(
		app.db,
		[]byte(app.cfg.JWTSecret),
		app.cfg.TokenTTL,
		auth.WithErrorWriter(router.WriteUserError),
	)

	app.httpHandler = router.New(
		service.NewContactService(app.db, validator),
		service.NewUserService(
			app.db,
			theAuth,
			getMailer(app.cfg),
			avatar.New(avatars, app.cfg.TmpDir),
			validator,
			app.cfg.PublicURL,
		),
		service.NewHealthService(app.db),
		avatars,
		theAuth,
		checker,
		router.WithCORSOrigins(app.cfg.CORSOrigins),
	)

	return app, nil
}

// Handler exposes the HTTP handler, mostly for tests.
func (a *App) Handler() http.Handler {
	return a.httpHandler
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Closing storage and exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return errors.Join(fmt.Errorf("server error: %w", err), a.db.Close())
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() error {
	return logger.Sync()
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.MongoURI != "" {
		return models.StorageTypeMongo
	}

	if cfg.DatabaseDSN != "" {
		return models.StorageTypePostgresql
	}

	if cfg.DBFileName != "" {
		return models.StorageTypeFile
	}

	return models.StorageTypeMemory
}

func getStorageByType(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch getAvailableStorageType(cfg) {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypeMongo:
		logger.Log.Infow("using MongoDB storage", "database", cfg.MongoDatabase)
		return mongodb.New(
			ctx,
			cfg.MongoURI,
			cfg.MongoDatabase,
			cfg.DBConnectionTimeout,
		)

	case models.StorageTypePostgresql:
		logger.Log.Infoln("using PostgreSQL storage")
		return postgresdb.New(
			ctx,
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			cfg.MigrationsDir,
		)

	case models.StorageTypeFile:
		logger.Log.Infow("using JSON file storage", "file", cfg.DBFileName)
		return jsondb.New(cfg.DBFileName)
	}

	logger.Log.Infoln("using in-memory storage, data is lost on restart")
	return memorystorage.New()
}

func getAvatarStore(ctx context.Context, cfg *config.Config) (avatarStore, error) {
	if cfg.S3Bucket != "" {
		logger.Log.Infow("avatars are stored in S3", "bucket", cfg.S3Bucket)
		return s3store.New(ctx, s3store.Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}

	logger.Log.Infow("avatars are stored on disk", "dir", cfg.AvatarsDir)
	return diskstore.New(cfg.AvatarsDir)
}

func getMailer(cfg *config.Config) mailSender {
	if cfg.MailgunAPIKey == "" {
		logger.Log.Warnln("MAILGUN_API_KEY is not set, verification emails are only logged")
		return mailer.NewLogMailer()
	}

	return mailer.NewMailgun(cfg.MailgunBaseURL, cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailFrom)
}
