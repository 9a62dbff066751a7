package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/adityahw/koperasi-backoffice/internal/application/dispatcher"
	"github.com/adityahw/koperasi-backoffice/internal/application/service"
	"github.com/adityahw/koperasi-backoffice/internal/config"
	"github.com/adityahw/koperasi-backoffice/internal/domain/finance"
	"github.com/adityahw/koperasi-backoffice/internal/domain/workflow"
	"github.com/adityahw/koperasi-backoffice/internal/infrastructure/persistence/repository"
	"github.com/adityahw/koperasi-backoffice/internal/infrastructure/persistence/sqlite"
	httpadapter "github.com/adityahw/koperasi-backoffice/internal/interfaces/http"
	"github.com/adityahw/koperasi-backoffice/pkg/database"
	"github.com/adityahw/koperasi-backoffice/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Koperasi Back-Office",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	sqlDB, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer sqlDB.Close()

	// Run migrations
	migrator := database.NewMigrator(sqlDB, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	db := sqlite.NewDB(sqlDB, logger)

	// Initialize repositories
	appRepo := repository.NewApplicationRepository(db, logger)
	recordRepo := repository.NewApprovalRecordRepository(db, logger)
	disbRepo := repository.NewDisbursementRepository(db, logger)
	authRepo := repository.NewAuthorizationRepository(db, logger)
	memberRepo := repository.NewMemberRepository(db, logger)

	// Initialize domain components from workflow configuration
	resolver := workflow.NewResolver(cfg.Workflow.SupervisorThreshold())
	calculator := finance.NewCalculator(cfg.Workflow.FinanceConfig())

	sugar := utils.NewSugarAdapter(logger)

	// Initialize event dispatcher and subscribers
	eventDispatcher := dispatcher.NewDispatcher(dispatcher.WithLogger(sugar))
	defer eventDispatcher.Close()

	notifications := service.NewNotificationService(sugar)
	notifications.Register(eventDispatcher)

	// Initialize the workflow engine
	appService := service.NewApplicationService(
		appRepo,
		recordRepo,
		disbRepo,
		authRepo,
		memberRepo,
		db,
		resolver,
		calculator,
		cfg.Workflow.Policy(),
		eventDispatcher,
		sugar,
	)

	// Initialize HTTP server
	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, appService, sugar)

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server exited with error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
