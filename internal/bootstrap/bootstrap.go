package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/collegeerp/internal/app/controllers"
	appMigrations "github.com/yigit/collegeerp/internal/app/migrations"
	appRepos "github.com/yigit/collegeerp/internal/app/repositories"
	appRoutes "github.com/yigit/collegeerp/internal/app/routes"
	appServices "github.com/yigit/collegeerp/internal/app/services"
	"github.com/yigit/collegeerp/internal/config"
	"github.com/yigit/collegeerp/internal/db"
	appMiddleware "github.com/yigit/collegeerp/internal/middleware"
	"github.com/yigit/collegeerp/internal/pkg/email"
	"github.com/yigit/collegeerp/internal/pkg/helpers"
	"github.com/yigit/collegeerp/internal/pkg/idgen"
	"github.com/yigit/collegeerp/internal/pkg/logger"
	"github.com/yigit/collegeerp/internal/seed"
	"github.com/yigit/collegeerp/internal/store"
	"github.com/yigit/collegeerp/internal/store/csvbackend"
	"github.com/yigit/collegeerp/internal/store/pgbackend"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store       *store.Store
	Repos       *appRepos.Repositories
	Services    *appServices.Services
	Controllers appRoutes.Controllers
	Logger      zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupBackend opens the durable backend named by store.backend. For
// postgres the connection is established and migrations are applied first.
func SetupBackend(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (store.Backend, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		lgr.Warn().Msg("Using in-memory store, data is lost on restart")
		return store.NewMemoryBackend(nil), nil

	case config.BackendCSV:
		lgr.Info().Str("dir", cfg.Store.DataDir).Msg("Using CSV store")
		return csvbackend.New(cfg.Store.DataDir, lgr)

	case config.BackendPostgres:
		lgr.Info().Msg("Establishing database connection...")
		database, err := db.NewPostgresDB(cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, err
		}
		lgr.Info().Msg("Database connection successfully established.")

		lgr.Info().Msg("Running database migrations...")
		if err := appMigrations.NewMigrator(database.Pool, lgr).Migrate(ctx); err != nil {
			database.Close()
			lgr.Error().Err(err).Msg("Database migration error")
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")
		return pgbackend.New(database, lgr), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// OpenStore loads every table from the configured backend.
func OpenStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*store.Store, error) {
	backend, err := SetupBackend(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, backend, store.Schema, store.Options{
		LockTimeout: cfg.LockTimeout(),
		TxTimeout:   cfg.TxTimeout(),
		Retries:     3,
		Logger:      logger.Component("store"),
	})
	if err != nil {
		_ = backend.Close()
		lgr.Error().Err(err).Msg("Failed to load store")
		return nil, err
	}
	lgr.Info().Str("backend", cfg.Store.Backend).Msg("Store loaded")
	return st, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, st *store.Store, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Store: st, Logger: lgr}

	deps.Repos = appRepos.NewRepositories(idgen.UUIDGenerator{}, helpers.SystemClock)
	mailer := email.NewSMTPSender(email.SMTPConfig{
		Host:      cfg.Email.Host,
		Port:      cfg.Email.Port,
		Username:  cfg.Email.Username,
		Password:  cfg.Email.Password,
		FromName:  cfg.Email.FromName,
		FromEmail: cfg.Email.FromEmail,
		UseTLS:    cfg.Email.UseTLS,
	}, lgr)
	deps.Services = appServices.NewServices(st, deps.Repos, appServices.Options{
		Currency: cfg.Fees.Currency,
		Mailer:   mailer,
	}, lgr)

	svc := deps.Services
	deps.Controllers = appRoutes.Controllers{
		Admission:    appControllers.NewAdmissionController(svc.Admissions),
		Student:      appControllers.NewStudentController(svc.Students, svc.Hostel, svc.Fees, svc.Exams),
		Course:       appControllers.NewCourseController(svc.Courses),
		Hostel:       appControllers.NewHostelController(svc.Hostel),
		Fee:          appControllers.NewFeeController(svc.Fees),
		Exam:         appControllers.NewExamController(svc.Exams),
		Notification: appControllers.NewNotificationController(svc.Notifications),
		Audit:        appControllers.NewAuditController(svc.Audit),
	}
	return deps
}

// SeedData creates the sample records when store.seed is enabled.
func SeedData(ctx context.Context, cfg *config.Config, deps *Dependencies) {
	if !cfg.Store.Seed {
		return
	}
	if err := seed.CreateDefaultData(ctx, deps.Services, deps.Logger); err != nil {
		// Log the error but don't fail the startup
		deps.Logger.Error().Err(err).Msg("Failed to create sample data, proceeding anyway...")
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(appMiddleware.RequestLogger(lgr), appMiddleware.Recovery(lgr))

	appRoutes.SetupRouter(router, deps.Controllers)
	return router
}
