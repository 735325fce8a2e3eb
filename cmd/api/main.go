package main

import (
	bookinghandler "pgstay/internal/bookings/handler"
	bookingrepo "pgstay/internal/bookings/repository"
	bookingservice "pgstay/internal/bookings/service"
	bookingvalidator "pgstay/internal/bookings/validator"
	"pgstay/internal/events"
	propertyhandler "pgstay/internal/properties/handler"
	propertyrepo "pgstay/internal/properties/repository"
	propertyservice "pgstay/internal/properties/service"
	propertyvalidator "pgstay/internal/properties/validator"
	"pgstay/pkg/app"
	"pgstay/pkg/cache"
	"pgstay/pkg/config"
	"pgstay/pkg/kafka"
	kafkaconfig "pgstay/pkg/kafka/config"
	kafkamiddleware "pgstay/pkg/kafka/middleware"
)

const ServiceName = "pgstay-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting pgstay API")

	serverApp := app.NewApplication()

	publisher := initPublisher(cfg, serverApp)
	availabilityCache := cache.New(cfg.Client.Redis, cfg.AvailabilityTTL)

	propertyRepo := propertyrepo.NewMongoPropertyRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingrepo.NewMongoTransitionLockRepository(cfg)

	propertySvc := propertyservice.NewPropertyService(
		cfg,
		propertyRepo,
		bookingRepo,
		propertyvalidator.NewPropertyValidator(cfg.Log),
		availabilityCache,
	)
	bookingSvc := bookingservice.NewBookingService(
		cfg,
		bookingRepo,
		lockRepo,
		propertyRepo,
		bookingvalidator.NewBookingValidator(cfg.Log),
		availabilityCache,
		publisher,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	serverApp.SetApp(cfg,
		propertyhandler.NewPropertyHandler(cfg, propertySvc),
		bookinghandler.NewBookingHandler(cfg, bookingSvc),
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Event publishing disabled")
		return events.NewNopPublisher()
	}

	producer, err := kafka.NewProducer(kafkaconfig.Load(), cfg.EventsTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafkamiddleware.MetricsProducerMiddleware())
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))

	publisher := events.NewKafkaPublisher(producer, ServiceName, cfg.Log)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})

	cfg.Log.Info("Event publishing enabled", "topic", cfg.EventsTopic)
	return publisher
}
