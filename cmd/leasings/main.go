package main

import (
	"plotlease/internal/leasings/events"
	"plotlease/internal/leasings/handler"
	"plotlease/internal/leasings/repository"
	"plotlease/internal/leasings/service"
	"plotlease/internal/leasings/validator"
	plotsrepo "plotlease/internal/plots/repository"
	"plotlease/pkg/app"
	"plotlease/pkg/config"
	"plotlease/pkg/kafka"
	kafka_config "plotlease/pkg/kafka/config"
	kafka_middleware "plotlease/pkg/kafka/middleware"
)

const ServiceName = "leasings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Leasings service")
	leasingHandler, cleanup := initServices(cfg)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, leasingHandler)
	serverApp.OnShutdown(cleanup)
	serverApp.OnShutdown(cfg.GracefulShutdown)
	serverApp.Run()
}

func initServices(cfg *config.Config) (*handler.LeasingHandler, func()) {
	leasingRepo := repository.NewMongoLeasingRepository(cfg)
	guardRepo := repository.NewReservationGuardRepository(cfg)
	plotRepo := plotsrepo.NewMongoPlotRepository(cfg)

	resolver := service.NewOverlapResolver(leasingRepo)
	leasingValidator := validator.NewLeasingValidator(resolver, cfg.Clock, cfg.LeadTimeDays, cfg.Log)
	publisher, cleanup := initPublisher(cfg)

	leasingService := service.NewLeasingService(
		leasingRepo,
		guardRepo,
		plotRepo,
		resolver,
		leasingValidator,
		publisher,
		cfg,
	)
	availabilityService := service.NewAvailabilityService(leasingRepo, cfg)

	cfg.Log.Info("Leasing service initialized", "database", cfg.MongoDatabaseName)
	return handler.NewLeasingHandler(leasingService, availabilityService, cfg.Log), cleanup
}

func initPublisher(cfg *config.Config) (events.Publisher, func()) {
	kafkaCfg := kafka_config.Load()
	if !kafkaCfg.Enabled() {
		cfg.Log.Info("Kafka brokers not configured, event publishing disabled")
		return events.NewNoopPublisher(), func() {}
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.LeasingEventsTopic, cfg.LeasingEventsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	return events.NewKafkaPublisher(producer, cfg.Log), func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Warn("Failed to close Kafka producer", "error", err)
		}
	}
}
