package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fendylo/study-snap/internal/account"
	"github.com/fendylo/study-snap/internal/analytics"
	"github.com/fendylo/study-snap/internal/bootstrap"
	"github.com/fendylo/study-snap/internal/config"
	"github.com/fendylo/study-snap/internal/database"
	"github.com/fendylo/study-snap/internal/docstore"
	"github.com/fendylo/study-snap/internal/inference/groq"
	"github.com/fendylo/study-snap/internal/localstore"
	"github.com/fendylo/study-snap/internal/media/cloudinary"
	"github.com/fendylo/study-snap/internal/note"
	"github.com/fendylo/study-snap/internal/quiz"
	"github.com/fendylo/study-snap/internal/server"
)

var configFile string

func main() {
	var debugMode bool
	rootCommand := cobra.Command{
		Use:           "studysnap-server",
		Short:         "Run the StudySnap HTTP API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	if err := rootCommand.Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
	os.Exit(0)
}

// setupLogger configures the default logger based on debug mode
func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})),
	)
}

func runServer(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	app := bootstrap.New()

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("database.Open() > %w", err)
	}
	app.AddShutdownHook(func(ctx context.Context) error {
		return db.Close()
	})

	store := docstore.NewStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("store.EnsureSchema() > %w", err)
	}

	local, err := localstore.NewStore(cfg.Session.CacheDirectory)
	if err != nil {
		return fmt.Errorf("localstore.NewStore() > %w", err)
	}

	groqClient := groq.NewClient(cfg.Groq)
	app.AddShutdownHook(func(ctx context.Context) error {
		return groqClient.Close()
	})

	uploader := cloudinary.NewUploader(cfg.Cloudinary)
	app.AddShutdownHook(func(ctx context.Context) error {
		return uploader.Close()
	})

	tokens := account.NewTokenManager(cfg.Session.SigningKey, time.Duration(cfg.Session.TokenTTLHours)*time.Hour)
	logger := slog.Default()

	router := server.NewRouter(server.RouterConfig{
		Logger:           logger,
		AuthMiddleware:   server.NewAuthMiddleware(tokens),
		AccountHandler:   server.NewAccountHandler(logger, account.NewService(store, local), tokens),
		NoteHandler:      server.NewNoteHandler(logger, note.NewService(store, uploader, groqClient), quiz.NewGenerator(store, groqClient, cfg.Quiz)),
		QuizHandler:      server.NewQuizHandler(logger, quiz.NewService(store), quiz.NewGrader(store)),
		AnalyticsHandler: server.NewAnalyticsHandler(logger, analytics.NewService(store, groqClient)),
		AllowedOrigins:   cfg.Server.CORS.AllowedOrigins,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	app.AddShutdownHook(func(ctx context.Context) error {
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return app.Run(ctx, func(ctx context.Context) error {
		logger.Info("starting server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("httpServer.ListenAndServe() > %w", err)
		}
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
