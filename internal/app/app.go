package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/labstack/echo/v4"
	nats "github.com/nats-io/nats.go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/xirothedev/facebook-clone-backend/config"
	httpadapter "github.com/xirothedev/facebook-clone-backend/internal/adapters/http"
	apiv1 "github.com/xirothedev/facebook-clone-backend/internal/adapters/http/api/v1"
	"github.com/xirothedev/facebook-clone-backend/internal/adapters/http/api/v1/handlers"
	authmw "github.com/xirothedev/facebook-clone-backend/internal/adapters/http/middleware"
	natsadapter "github.com/xirothedev/facebook-clone-backend/internal/adapters/nats"
	repo "github.com/xirothedev/facebook-clone-backend/internal/adapters/postgres"
	"github.com/xirothedev/facebook-clone-backend/internal/adapters/smtp"
	"github.com/xirothedev/facebook-clone-backend/internal/adapters/storage"
	"github.com/xirothedev/facebook-clone-backend/internal/domain"
	"github.com/xirothedev/facebook-clone-backend/internal/password"
	"github.com/xirothedev/facebook-clone-backend/internal/usecase"
	pkglog "github.com/xirothedev/facebook-clone-backend/pkg/log"
)

type App struct {
	cfg      *config.Config
	logger   pkglog.Logger
	db       *gorm.DB
	natsConn *nats.Conn
	echo     *echo.Echo
}

func New(ctx context.Context) (*App, error) {
	cfg := config.MustLoad()
	log := pkglog.New(cfg.AppEnv, cfg.AppName)

	db, err := connectDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Email{},
		&domain.Session{},
		&domain.Code{},
		&domain.Post{},
		&domain.Comment{},
		&domain.Reaction{},
		&domain.Friendship{},
	); err != nil {
		return nil, err
	}

	nc, err := connectNATS(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("nats unavailable, events disabled")
	}

	store := repo.NewStore(db)
	hasher, err := password.NewHasher(password.Params{
		MemoryKB:    cfg.ArgonMemoryKB,
		Time:        cfg.ArgonTime,
		Parallelism: cfg.ArgonParallelism,
		SaltLength:  cfg.ArgonSaltLength,
		KeyLength:   cfg.ArgonKeyLength,
	})
	if err != nil {
		return nil, err
	}
	signer, err := usecase.NewJWTSigner(cfg)
	if err != nil {
		return nil, err
	}
	issuer := usecase.NewTokenIssuer(cfg, signer, store.Sessions())
	validator := usecase.NewTokenValidator(signer, store)
	mailer := smtp.NewMailer(cfg)
	mediaStore, err := storage.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var events usecase.EventPublisher
	if nc != nil {
		events = natsadapter.NewPublisher(nc, cfg.NATSUserEventSubject, cfg.NATSPostEventSubject)
		verifyHandler := natsadapter.NewVerifyHandler(signer, validator)
		_ = verifyHandler.Subscribe(nc, cfg.NATSVerifySubject, cfg.AppName)
	}

	authService := usecase.NewAuthService(cfg, log, store, hasher, issuer, signer, mailer, events)
	socialService := usecase.NewSocialService(log, store, mediaStore, events)

	authHandler := handlers.NewAuthHandler(authService)
	socialHandler := handlers.NewSocialHandler(socialService)
	authMW := authmw.NewAuthMiddleware(validator)
	router := httpadapter.NewRouter(cfg, apiv1.NewRouter(authHandler, socialHandler, authMW.Handler))

	e := echo.New()
	router.Setup(e)

	return &App{cfg: cfg, logger: log, db: db, natsConn: nc, echo: e}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.echo.Shutdown(shutdownCtx)
	}()
	go func() {
		errCh <- a.echo.Start(fmt.Sprintf("%s:%s", a.cfg.HTTPHost, a.cfg.HTTPPort))
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) Close() {
	if a.natsConn != nil {
		_ = a.natsConn.Drain()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func connectDB(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	var db *gorm.DB
	op := func() error {
		var err error
		db, err = gorm.Open(postgres.Open(buildDSN(cfg)), &gorm.Config{
			Logger:         loggerForGorm(cfg),
			NamingStrategy: schema.NamingStrategy{SingularTable: false},
		})
		return err
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return db, nil
}

func connectNATS(ctx context.Context, cfg *config.Config) (*nats.Conn, error) {
	var nc *nats.Conn
	op := func() error {
		var err error
		nc, err = nats.Connect(cfg.NATSURL)
		return err
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 3 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return nc, nil
}

func buildDSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s", cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

func loggerForGorm(cfg *config.Config) logger.Interface {
	level := logger.Silent
	switch cfg.AppEnv {
	case "local":
		level = logger.Info
	default:
		level = logger.Warn
	}
	return logger.Default.LogMode(level)
}
