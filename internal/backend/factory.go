// Package backend assembles the ledger service from its storage and event
// publisher according to configuration.
package backend

import (
	"context"
	"errors"
	"fmt"

	"ledger/internal/amqp"
	"ledger/internal/events/kafka"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/storage"
)

// CleanupFunc releases resources opened by the factory
type CleanupFunc func() error

// Result contains the assembled service and its dependencies
type Result struct {
	Service *services.TransactionService
	Store   *storage.Repository
	Cleanup CleanupFunc
}

type closer interface {
	Close() error
}

// Factory builds backends from configuration
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{logger: logger}
}

// Create opens the repository, connects the configured event publisher and
// wires both into a TransactionService. A publisher that cannot connect is
// logged and skipped; a repository that cannot open is fatal.
func (f *Factory) Create(ctx context.Context, cfg Config) (*Result, error) {
	if !cfg.Events.IsValid() {
		return nil, fmt.Errorf("invalid events backend: %s", cfg.Events)
	}

	repo, err := storage.NewRepository(ctx, cfg.DatabaseClient, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repository: %w", err)
	}

	publisher, pubCloser := f.createPublisher(cfg)

	svc := services.NewTransactionService(repo, publisher, f.logger)

	f.logger.Info("Initialized ledger backend",
		log.FieldDialect, repo.Dialect(),
		"events", cfg.Events.String(),
		"events_enabled", publisher != nil)

	return &Result{
		Service: svc,
		Store:   repo,
		Cleanup: func() error {
			var errs []error
			if pubCloser != nil {
				if err := pubCloser.Close(); err != nil {
					errs = append(errs, fmt.Errorf("events: %w", err))
				}
			}
			if err := repo.Close(); err != nil {
				errs = append(errs, fmt.Errorf("storage: %w", err))
			}
			return errors.Join(errs...)
		},
	}, nil
}

func (f *Factory) createPublisher(cfg Config) (services.EventPublisher, closer) {
	logger := f.logger.WithComponent(log.ComponentEvents)

	switch cfg.Events {
	case AMQPEvents:
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err.Error())
			return nil, nil
		}
		logger.Info("Initialized AMQP client",
			"exchange", cfg.AMQPExchange,
			"queue", cfg.AMQPQueue)
		return client, client

	case KafkaEvents:
		// kafka-go connects lazily on first write
		p := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("Initialized Kafka publisher",
			"brokers", cfg.KafkaBrokers,
			"topic", cfg.KafkaTopic)
		return p, p

	default:
		return nil, nil
	}
}
