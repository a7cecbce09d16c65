package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/softball-tournament/brackets"
	"github.com/Dosada05/softball-tournament/config"
	"github.com/Dosada05/softball-tournament/db"
	"github.com/Dosada05/softball-tournament/handlers"
	"github.com/Dosada05/softball-tournament/logger"
	"github.com/Dosada05/softball-tournament/repositories"
	"github.com/Dosada05/softball-tournament/routes"
	"github.com/Dosada05/softball-tournament/services"
	"github.com/Dosada05/softball-tournament/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info().Int("port", cfg.ServerPort).Str("seed_policy", cfg.SeedPolicy).Msg("configuration loaded")

	seedPolicy, err := brackets.ParseSeedPolicy(cfg.SeedPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid championship seed policy")
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database connection")
		} else {
			log.Info().Msg("database connection closed")
		}
	}()

	if err := db.Migrate(dbConn, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	wsHub := brackets.NewHub(log)
	go wsHub.Run(ctx)
	log.Info().Msg("WebSocket hub started")

	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	statRepo := repositories.NewPostgresStatRepository(dbConn)

	notifier := services.NewHubNotifier(wsHub, log)
	tournamentService := services.NewTournamentService(
		teamRepo,
		gameRepo,
		statRepo,
		notifier,
		wsHub,
		services.TournamentOptions{
			Debounce:       cfg.WriteBackDebounce,
			PersistTimeout: cfg.PersistTimeout,
			SeedPolicy:     seedPolicy,
			Days:           cfg.TournamentDays,
		},
		log,
	)

	loadCtx, cancelLoad := context.WithTimeout(ctx, 30*time.Second)
	err = tournamentService.Load(loadCtx)
	cancelLoad()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load tournament")
	}

	var uploader storage.FileUploader
	if cfg.ExportEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
			KeyPrefix:       cfg.R2KeyPrefix,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Cloudflare R2 uploader")
		}
		log.Info().Str("bucket", cfg.R2BucketName).Msg("Cloudflare R2 uploader initialized")
	} else {
		log.Info().Msg("snapshot export disabled, R2 settings incomplete")
	}
	exportService := services.NewExportService(tournamentService, uploader, log)

	router := routes.SetupRoutes(routes.Handlers{
		Team:       handlers.NewTeamHandler(tournamentService),
		Game:       handlers.NewGameHandler(tournamentService),
		Tournament: handlers.NewTournamentHandler(tournamentService, exportService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub),
	}, cfg.CORSAllowedOrigins, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     stdlog.New(log, "", 0),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("address", server.Addr).Msg("starting server")
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		if closeErr := server.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to force close server")
		}
	}

	// Pending game writes go out before the database handle closes.
	if err := tournamentService.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to flush pending game writes")
	}
	stop()
	log.Info().Msg("application exited")
}
