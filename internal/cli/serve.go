package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"banksantri/internal/handler"
	"banksantri/internal/infrastructure/cache"
	"banksantri/internal/infrastructure/database"
	"banksantri/internal/infrastructure/mq"
	"banksantri/internal/job"
	"banksantri/internal/service"
	"banksantri/pkg/idgen"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("migrate", false, "Run schema migration and seed before serving")
	serveCmd.Flags().Int64("worker-id", 1, "Snowflake worker id for reference numbers (0-1023)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and background jobs",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	autoMigrate, _ := cmd.Flags().GetBool("migrate")
	workerID, _ := cmd.Flags().GetInt64("worker-id")

	cfg, db, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()
	log := zap.L()

	if err := idgen.Init(workerID); err != nil {
		return err
	}

	if autoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
		if _, err := database.SeedTransactionTypes(db); err != nil {
			return err
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.InitRedis(&cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		log.Info("redis connected, account locks enabled", zap.String("host", cfg.Redis.Host))
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if cfg.Kafka.Enabled {
		producer, err := mq.InitKafka(&cfg.Kafka)
		if err != nil {
			return err
		}
		defer producer.Close()

		outboxSender := job.NewOutboxSender(db, producer, cfg.Business.OutboxMaxRetry)
		go outboxSender.Start(ctx)
		log.Info("kafka connected, outbox relay enabled", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	reconcileJob := job.NewReconcileJob(service.NewReconcileService(db), cfg.Business.ReconcileInterval)
	go reconcileJob.Start(ctx)

	router := handler.SetupRouter(db, redisClient, cfg)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serveErr:
		log.Error("http server failed", zap.Error(err))
		return err
	}

	// stop background jobs before draining requests
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown", zap.Error(err))
		return err
	}

	log.Info("server stopped")
	return nil
}
