package main

import (
	"context"

	"gymdesk/internal/sheetstore/handler"
	"gymdesk/internal/sheetstore/repository"
	"gymdesk/internal/sheetstore/service"
	"gymdesk/pkg/app"
	"gymdesk/pkg/config"
	"gymdesk/pkg/kafka"
	kafka_config "gymdesk/pkg/kafka/config"
	kafka_middleware "gymdesk/pkg/kafka/middleware"
	"gymdesk/pkg/validation"
)

func main() {
	cfg := config.Load(config.ServiceSheetStore)
	cfg.SetMongo()
	cfg.Log.Info("Starting sheet store")

	application := app.NewApplication(cfg)

	var events service.EventPublisher
	if producer := initProducer(cfg); producer != nil {
		events = producer
		application.OnShutdown(func(ctx context.Context) {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		})
	}

	repo := repository.NewMongoSheetRepository(cfg)
	sheetService := service.NewSheetService(repo, validation.New(cfg.Log), events, cfg)
	sheetHandler := handler.NewSheetHandler(sheetService, cfg.Log)
	cfg.Log.Info("Sheet service initialized")

	application.SetApp(sheetHandler, nil, &app.ReadyCheck{
		Name: "mongo",
		Check: func(ctx context.Context) (string, error) {
			if err := cfg.Client.Mongo.Ping(ctx, nil); err != nil {
				return "", err
			}
			return "ok", nil
		},
	})
	application.OnShutdown(func(ctx context.Context) {
		cfg.GracefulShutdown()
	})
	application.Run()
}

// initProducer returns nil when Kafka is disabled. A misconfigured broker
// is fatal: silently dropping events is worse than not starting.
func initProducer(cfg *config.Config) *kafka.Producer {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, action events will not be published")
		return nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaActionsTopic, cfg.KafkaActionsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware())

	cfg.Log.Info("Kafka producer ready", "topic", cfg.KafkaActionsTopic, "dlq_topic", cfg.KafkaActionsDLQTopic)
	return producer
}
