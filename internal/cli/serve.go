package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"venuedash/internal/infra/broker/kafka"
	"venuedash/internal/infra/config"
	ginserver "venuedash/internal/infra/http/gin"
	"venuedash/internal/infra/inbox"
	"venuedash/internal/infra/obs"
	infraoutbox "venuedash/internal/infra/outbox"
)

const (
	bookingSyncConsumer = "booking-sync"
	shutdownTimeout     = 5 * time.Second
)

func NewServeCmd() *cobra.Command {
	var addr, driver string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			if driver != "" {
				cfg.StorageDriver = driver
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return serve(cmd.Context(), cfg, obs.NewLogger(cfg.Env))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	cmd.Flags().StringVar(&driver, "storage", "", "storage driver: memory, mongo or remote (overrides STORAGE_DRIVER)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	infra, err := openInfrastructure(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := infra.Close(closeCtx); err != nil {
			logger.Error("infrastructure close failed", "error", err)
		}
	}()

	app := buildApplication(infra.deps)
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: infra.checks}, app.handlers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 3)
	running := 0

	if cfg.OutboxRelay() {
		worker, closeProducer, err := newOutboxWorker(cfg, infra.outboxStore, logger)
		if err != nil {
			return err
		}
		defer closeProducer()
		running++
		go func() {
			logger.Info("outbox relay starting", "brokers", cfg.KafkaBrokers)
			errCh <- worker.Run(ctx)
		}()
	}

	if cfg.BookingSyncEnabled() {
		consumer, topic, err := newBookingSyncConsumer(ctx, cfg, infra, app, logger)
		if err != nil {
			return err
		}
		defer consumer.Close()
		running++
		go func() {
			logger.Info("booking sync starting", "topic", topic, "group", cfg.KafkaConsumerGroup)
			errCh <- consumer.Run(ctx, []string{topic})
		}()
	}

	running++
	go func() {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "driver", cfg.StorageDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
			return
		}
		errCh <- nil
	}()

	var firstErr error
	select {
	case <-ctx.Done():
	case firstErr = <-errCh:
		running--
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	for ; running > 0; running-- {
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) && firstErr == nil {
			firstErr = err
		}
	}
	if errors.Is(firstErr, context.Canceled) {
		firstErr = nil
	}
	logger.Info("HTTP server stopped")
	return firstErr
}

func newOutboxWorker(cfg config.Config, store *infraoutbox.Store, logger *slog.Logger) (*infraoutbox.Worker, func(), error) {
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, kafka.NewConfig("venuedash-outbox"))
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	worker := &infraoutbox.Worker{
		Store:       store,
		Producer:    producer,
		Logger:      logger,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		ID:          "outbox-" + uuid.NewString(),
		Backoff:     cfg.RetryBackoff,
	}
	closeProducer := func() {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka producer close failed", "error", err)
		}
	}
	return worker, closeProducer, nil
}

func newBookingSyncConsumer(ctx context.Context, cfg config.Config, infra *infrastructure, app application, logger *slog.Logger) (*kafka.Consumer, string, error) {
	if infra.mongo == nil {
		return nil, "", errors.New("booking sync needs the mongo driver")
	}
	box, err := inbox.NewStore(ctx, infra.mongo.DB, bookingSyncConsumer)
	if err != nil {
		return nil, "", fmt.Errorf("inbox: %w", err)
	}
	handler := &kafka.BookingConfirmedHandler{Bus: app.commands, Inbox: box, Logger: logger}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, kafka.NewConfig("venuedash-booking-sync"), handler, logger)
	if err != nil {
		return nil, "", fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, cfg.KafkaTopicPrefix + "booking.events.v1", nil
}
