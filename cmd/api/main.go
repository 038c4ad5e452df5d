package main

import (
	availabilityhandler "reservo/internal/availability/handler"
	availabilityservice "reservo/internal/availability/service"
	availabilityvalidator "reservo/internal/availability/validator"
	bookinghandler "reservo/internal/bookings/handler"
	bookingrepo "reservo/internal/bookings/repository"
	bookingservice "reservo/internal/bookings/service"
	bookingvalidator "reservo/internal/bookings/validator"
	catalogrepo "reservo/internal/catalog/repository"
	paymenthandler "reservo/internal/payments/handler"
	paymentrepo "reservo/internal/payments/repository"
	paymentservice "reservo/internal/payments/service"
	"reservo/pkg/app"
	"reservo/pkg/config"
	"reservo/pkg/kafka"
	kafka_config "reservo/pkg/kafka/config"
)

const ServiceName = "api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting API service")

	events := initEvents(cfg)
	availability, bookings, payments := initServices(cfg, events)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		paymenthandler.NewWebhookHandler(payments, cfg.Log),
		availabilityhandler.NewSlotHandler(availability, cfg.Log),
		bookinghandler.NewBookingHandler(bookings, cfg.Log),
	)
	serverApp.Run()
}

// initEvents returns a nil Publisher when Kafka is unreachable or not
// configured. Services nil-check before publishing, so the API keeps
// serving without the event stream.
func initEvents(cfg *config.Config) kafka.Publisher {
	kafkaCfg := kafka_config.Load()
	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.EventsTopic, kafkaCfg.DLQTopic)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, events disabled", "error", err)
		return nil
	}
	cfg.Log.Info("Kafka producer initialized", "topic", kafkaCfg.EventsTopic)
	return producer
}

func initServices(cfg *config.Config, events kafka.Publisher) (
	availabilityservice.AvailabilityService,
	bookingservice.BookingService,
	paymentservice.PaymentService,
) {
	businessRepo := catalogrepo.NewMongoBusinessRepository(cfg)
	serviceRepo := catalogrepo.NewMongoServiceRepository(cfg)
	staffRepo := catalogrepo.NewMongoStaffRepository(cfg)
	scheduleRepo := catalogrepo.NewMongoScheduleRepository(cfg)

	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingrepo.NewSlotLockRepository(cfg)
	transactionRepo := paymentrepo.NewMongoTransactionRepository(cfg)

	availability := availabilityservice.NewAvailabilityService(
		businessRepo,
		serviceRepo,
		scheduleRepo,
		bookingRepo,
		availabilityvalidator.NewSlotQueryValidator(cfg.Log),
		cfg,
	)

	bookings := bookingservice.NewBookingService(
		bookingRepo,
		lockRepo,
		serviceRepo,
		staffRepo,
		bookingvalidator.NewBookingValidator(cfg.Log),
		events,
		cfg,
	)

	payments := paymentservice.NewPaymentService(
		transactionRepo,
		bookingRepo,
		events,
		cfg,
	)

	cfg.Log.Info("Domain services initialized", "database", cfg.MongoDatabaseName)
	return availability, bookings, payments
}
