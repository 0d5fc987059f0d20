package main

import (
	"context"
	"fmt"
	"learnfront/apiclient"
	"learnfront/catalog"
	"learnfront/config"
	"learnfront/database"
	"learnfront/enrollment"
	"learnfront/middleware"
	"learnfront/routers"
	"learnfront/services"
	"learnfront/session"
	"learnfront/utils"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learnfront",
		Short: "Web front end server for the learning platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	})

	sessions := &cobra.Command{
		Use:   "sessions",
		Short: "Manage persisted sessions",
	}
	sessions.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete expired session rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return pruneSessions(cmd)
		},
	})
	cmd.AddCommand(sessions)

	return cmd
}

func setup() (*config.Config, *utils.Logger, *database.SessionRepo, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	log, err := utils.NewLogger(cfg.LogMode)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build logger: %w", err)
	}

	db, err := database.ConnectDb(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, database.NewSessionRepo(db), nil
}

func pruneSessions(cmd *cobra.Command) error {
	_, log, repo, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	n, err := repo.PruneExpired(time.Now().UTC())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pruned %d expired sessions\n", n)
	return nil
}

func serve() error {
	cfg, log, repo, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	client := apiclient.New(apiclient.Options{
		BaseURL:    cfg.APIBaseURL,
		AuthScheme: cfg.APIAuthScheme,
		Timeout:    cfg.APITimeout,
		RetryCount: cfg.APIRetryCount,
		Logger:     log,
	})

	manager := session.NewManager(client, repo, session.ManagerOptions{
		TTL:    cfg.SessionTTL,
		Logger: log,
		Workspace: session.WorkspaceOptions{
			PollInterval:    cfg.ModulePollInterval,
			NotificationTTL: cfg.NotificationTTL,
			IdleTimeout:     cfg.ViewIdleTimeout,
		},
	})
	defer manager.Close()

	if _, err := manager.Rehydrate(); err != nil {
		log.Warn("sessions not rehydrated", "error", err)
	}
	if err := manager.StartJanitor(time.Minute); err != nil {
		return err
	}

	svc := services.Init(&services.Services{
		Sessions:   manager,
		Catalog:    catalog.New(client),
		Enrollment: enrollment.NewFlow(client),
		Logger:     log,
		MediaBase:  cfg.MediaBaseURL,
	})

	var limiter *middleware.RateLimiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn("redis unreachable, enroll rate limit fails open", "addr", cfg.RedisAddr, "error", err)
		}
		limiter = middleware.NewRateLimiter(rdb)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: utils.MaxUploadBytes + 1<<20,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	routers.SetupRoutes(app, svc, limiter, cfg.EnrollRateLimit)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
		<-quit
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	log.Info("server is running", "port", cfg.Port, "api_base_url", cfg.APIBaseURL)
	return app.Listen(":" + cfg.Port)
}
