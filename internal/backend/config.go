package backend

import (
	"fmt"

	"ledger/internal/config"
)

// EventsType selects where transaction.created events go.
type EventsType string

const (
	NoEvents    EventsType = config.EventsNone
	AMQPEvents  EventsType = config.EventsAMQP
	KafkaEvents EventsType = config.EventsKafka
)

// String implements fmt.Stringer
func (et EventsType) String() string {
	return string(et)
}

// IsValid returns true if the events type is known
func (et EventsType) IsValid() bool {
	switch et {
	case NoEvents, AMQPEvents, KafkaEvents:
		return true
	default:
		return false
	}
}

// Config holds what the factory needs to assemble the ledger backend
type Config struct {
	DatabaseClient string
	DatabaseURL    string

	Events       EventsType
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	KafkaBrokers []string
	KafkaTopic   string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	events := EventsType(appConfig.EventsBackend)
	if !events.IsValid() {
		return Config{}, fmt.Errorf("invalid events backend in config: %s", appConfig.EventsBackend)
	}

	return Config{
		DatabaseClient: appConfig.DatabaseClient,
		DatabaseURL:    appConfig.DatabaseURL,

		Events:       events,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
		KafkaBrokers: appConfig.KafkaBrokers,
		KafkaTopic:   appConfig.KafkaTopic,
	}, nil
}
