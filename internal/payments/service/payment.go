package service

import (
	"context"
	"errors"
	bookingserrors "reservo/internal/bookings/errors"
	bookingrepo "reservo/internal/bookings/repository"
	paymentserrors "reservo/internal/payments/errors"
	"reservo/internal/payments/repository"
	"reservo/pkg/config"
	apperrors "reservo/pkg/errors"
	"reservo/pkg/kafka"
	"reservo/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WebhookEvent is the provider's notification envelope.
type WebhookEvent struct {
	Event  string `json:"event"`
	Object struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Amount struct {
			Value    string `json:"value"`
			Currency string `json:"currency"`
		} `json:"amount"`
		Metadata struct {
			BookingID string `json:"booking_id"`
		} `json:"metadata"`
	} `json:"object"`
}

// Ack is the webhook acknowledgement. Idempotent flags a duplicate delivery,
// Ignored flags an unrecognized provider status; both are success outcomes.
type Ack struct {
	OK         bool `json:"ok"`
	Idempotent bool `json:"idempotent,omitempty"`
	Ignored    bool `json:"ignored,omitempty"`
}

type PaymentService interface {
	Process(ctx context.Context, event *WebhookEvent) (*Ack, error)
}

type paymentService struct {
	transactions repository.TransactionRepository
	bookings     bookingrepo.BookingRepository
	events       kafka.Publisher
	cfg          *config.Config
}

func NewPaymentService(
	transactions repository.TransactionRepository,
	bookings bookingrepo.BookingRepository,
	events kafka.Publisher,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		transactions: transactions,
		bookings:     bookings,
		events:       events,
		cfg:          cfg,
	}
}

// PaymentProcessedEvent is the payload published after a committed transition.
type PaymentProcessedEvent struct {
	BookingID     string `json:"booking_id"`
	PaymentID     string `json:"payment_id"`
	BookingStatus string `json:"booking_status"`
	Ledger        string `json:"ledger"`
	Amount        string `json:"amount"`
}

// errDuplicateDelivery aborts the processing transaction when the provider
// payment id has already been recorded, so the status update rolls back too.
var errDuplicateDelivery = errors.New("duplicate payment delivery")

func (s *paymentService) Process(ctx context.Context, event *WebhookEvent) (*Ack, error) {
	paymentID := event.Object.ID
	bookingID := event.Object.Metadata.BookingID

	if paymentID == "" || bookingID == "" {
		return nil, apperrors.InvalidInput("Invalid payment payload")
	}

	amount, err := primitive.ParseDecimal128(event.Object.Amount.Value)
	if err != nil {
		return nil, apperrors.InvalidInput("Malformed payment amount")
	}

	transition, recognized := transitionFor(event.Object.Status)
	if !recognized {
		s.cfg.Log.Info("Ignoring payment event with unrecognized status",
			"payment_id", paymentID,
			"status", event.Object.Status,
		)
		return &Ack{OK: true, Ignored: true}, nil
	}

	err = s.bookings.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := s.transactions.FindByExternalPaymentID(sessCtx, paymentID); err == nil {
			return errDuplicateDelivery
		} else if !errors.Is(err, paymentserrors.ErrNotFound) {
			return apperrors.Internal("Failed to check for duplicate payment", err)
		}

		booking, err := s.bookings.FindByID(sessCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", bookingID)
			}
			if errors.Is(err, bookingserrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid booking ID format")
			}
			return apperrors.Internal("Failed to load booking", err)
		}

		if err := s.bookings.UpdateStatus(sessCtx, booking.ID, transition.status); err != nil {
			return apperrors.Internal("Failed to update booking status", err)
		}

		tx := &model.Transaction{
			BookingID:         booking.ID,
			Amount:            amount,
			Type:              transition.ledger,
			PaymentMethod:     model.MethodYookassa,
			ExternalPaymentID: paymentID,
		}
		if err := s.transactions.Create(sessCtx, tx); err != nil {
			// The unique index catches the race where two copies of the same
			// delivery pass the lookup concurrently; the loser rolls back.
			if mongo.IsDuplicateKeyError(err) {
				return errDuplicateDelivery
			}
			return apperrors.Internal("Failed to record ledger entry", err)
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, errDuplicateDelivery) {
			s.cfg.Log.Info("Duplicate payment delivery acknowledged", "payment_id", paymentID)
			return &Ack{OK: true, Idempotent: true}, nil
		}
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Payment processing transaction failed", "payment_id", paymentID, "error", err)
		return nil, apperrors.Internal("Failed to process payment event", err)
	}

	s.cfg.Log.Info("Payment event processed",
		"payment_id", paymentID,
		"booking_id", bookingID,
		"booking_status", transition.status,
		"ledger", transition.ledger,
	)

	s.publishProcessed(ctx, bookingID, paymentID, transition, event.Object.Amount.Value)

	return &Ack{OK: true}, nil
}

func (s *paymentService) publishProcessed(ctx context.Context, bookingID, paymentID string, transition paymentTransition, amount string) {
	if s.events == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(bookingID).
		WithEventType(kafka.EventPaymentProcessed).
		WithSource("payments").
		WithValue(PaymentProcessedEvent{
			BookingID:     bookingID,
			PaymentID:     paymentID,
			BookingStatus: string(transition.status),
			Ledger:        string(transition.ledger),
			Amount:        amount,
		}).
		Build()

	if err := s.events.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish payment.processed event", "booking_id", bookingID, "error", err)
	}
}
