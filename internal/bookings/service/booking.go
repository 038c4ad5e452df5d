package service

import (
	"context"
	"errors"
	"fmt"
	catalogerrors "reservo/internal/catalog/errors"
	catalogrepo "reservo/internal/catalog/repository"
	bookingserrors "reservo/internal/bookings/errors"
	"reservo/internal/bookings/repository"
	"reservo/internal/bookings/validator"
	"reservo/pkg/config"
	apperrors "reservo/pkg/errors"
	"reservo/pkg/kafka"
	"reservo/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	services  catalogrepo.ServiceRepository
	staff     catalogrepo.StaffRepository
	validator *validator.BookingValidator
	events    kafka.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	services catalogrepo.ServiceRepository,
	staff catalogrepo.StaffRepository,
	bookingValidator *validator.BookingValidator,
	events kafka.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		services:  services,
		staff:     staff,
		validator: bookingValidator,
		events:    events,
		cfg:       cfg,
	}
}

// BookingCreatedEvent is the payload published after a successful creation.
type BookingCreatedEvent struct {
	BookingID  string    `json:"booking_id"`
	BusinessID string    `json:"business_id"`
	ServiceID  string    `json:"service_id"`
	StaffID    string    `json:"staff_id"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
	Status     string    `json:"status"`
}

func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking request validation failed", "error", err)
		return nil, apperrors.Validation("Invalid booking request", map[string]any{"error": err.Error()})
	}

	svc, err := s.services.FindActiveForBusiness(ctx, req.ServiceID, req.BusinessID)
	if err != nil {
		return nil, translateCatalogErr(err, "Service", req.ServiceID)
	}

	if _, err := s.staff.FindActiveForBusiness(ctx, req.StaffID, req.BusinessID); err != nil {
		return nil, translateCatalogErr(err, "Staff", req.StaffID)
	}

	booking := s.assemble(req, svc)
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	// Acquire advisory locks to serialize creation attempts for this staff
	// member across every day the interval touches
	lockIDs, err := s.acquireSlotLocks(ctx, booking.StaffID, booking.StartAt, booking.EndAt)
	if err != nil {
		return nil, err
	}
	defer s.releaseSlotLocks(ctx, lockIDs)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoConflict(sessCtx, booking); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"business_id", booking.BusinessID,
		"staff_id", booking.StaffID,
		"start_at", booking.StartAt,
		"end_at", booking.EndAt,
	)

	s.publishCreated(ctx, booking)

	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

// --- Helpers ---

func (s *bookingService) assemble(req *model.BookingRequest, svc *model.Service) *model.Booking {
	source := req.Source
	if source == "" {
		source = model.SourceTelegram
	}

	return &model.Booking{
		BusinessID: req.BusinessID,
		ServiceID:  req.ServiceID,
		StaffID:    req.StaffID,
		ClientID:   req.ClientID,
		StartAt:    req.StartAt,
		EndAt:      req.StartAt.Add(time.Duration(svc.DurationMinutes) * time.Minute),
		Status:     model.StatusPending,
		Source:     source,
		Notes:      req.Notes,
		TotalPrice: svc.Price,
	}
}

// verifyNoConflict re-checks the target interval against all bookings that
// block creation, inside the same transaction as the insert. The advisory
// day locks serialize concurrent attempts for this staff member, so the check
// cannot interleave with another insert whose interval could overlap.
func (s *bookingService) verifyNoConflict(ctx context.Context, booking *model.Booking) error {
	existing, err := s.repo.FindBlockingForStaff(ctx, booking.StaffID, booking.StartAt, booking.EndAt, model.CreationBlockingStatuses)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	for _, b := range existing {
		if overlaps(b.StartAt, b.EndAt, booking.StartAt, booking.EndAt) {
			return apperrors.Conflict(fmt.Sprintf(
				"Booking time overlaps with existing booking (%s - %s)",
				b.StartAt.Format(time.RFC3339),
				b.EndAt.Format(time.RFC3339),
			))
		}
	}
	return nil
}

func overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && end1.After(start2)
}

// acquireSlotLocks creates one advisory lock per calendar day the interval
// touches, keyed by staff member. Any two overlapping intervals for the same
// staff member share at least one day, so concurrent creation attempts always
// contend on a common lock even when their start instants differ. Returns the
// held lock IDs, or a conflict error with nothing held.
func (s *bookingService) acquireSlotLocks(ctx context.Context, staffID string, startAt, endAt time.Time) ([]string, error) {
	lockIDs := make([]string, 0, 2)
	for _, day := range lockDays(startAt, endAt) {
		lock := &model.SlotLock{
			ID:        fmt.Sprintf("slot_lock_%s_%s", staffID, day),
			ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
		}

		if _, err := s.lockRepo.Create(ctx, lock); err != nil {
			s.releaseSlotLocks(ctx, lockIDs)
			if mongo.IsDuplicateKeyError(err) {
				return nil, apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
			}
			return nil, apperrors.Internal("Failed to acquire slot lock", err)
		}
		lockIDs = append(lockIDs, lock.ID)
	}

	return lockIDs, nil
}

// lockDays returns the UTC calendar days covered by the half-open interval
// [start, end), in order. One day for a same-day booking, two when it crosses
// midnight.
func lockDays(start, end time.Time) []string {
	days := []string{start.UTC().Format("2006-01-02")}
	if last := end.Add(-time.Nanosecond).UTC().Format("2006-01-02"); last != days[0] {
		days = append(days, last)
	}
	return days
}

// releaseSlotLocks removes the held advisory locks
func (s *bookingService) releaseSlotLocks(ctx context.Context, lockIDs []string) {
	for _, lockID := range lockIDs {
		if err := s.lockRepo.Delete(ctx, lockID); err != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", err)
		}
	}
}

func (s *bookingService) publishCreated(ctx context.Context, booking *model.Booking) {
	if s.events == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(booking.StaffID).
		WithEventType(kafka.EventBookingCreated).
		WithSource("bookings").
		WithValue(BookingCreatedEvent{
			BookingID:  booking.ID,
			BusinessID: booking.BusinessID,
			ServiceID:  booking.ServiceID,
			StaffID:    booking.StaffID,
			StartAt:    booking.StartAt,
			EndAt:      booking.EndAt,
			Status:     string(booking.Status),
		}).
		Build()

	if err := s.events.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish booking.created event", "booking_id", booking.ID, "error", err)
	}
}

func translateCatalogErr(err error, resource, id string) error {
	if errors.Is(err, catalogerrors.ErrNotFound) {
		return apperrors.NotFoundWithID(resource, id)
	}
	if errors.Is(err, catalogerrors.ErrInvalidID) {
		return apperrors.InvalidInput(fmt.Sprintf("Invalid %s ID format", resource))
	}
	return apperrors.Internal(fmt.Sprintf("Failed to resolve %s", resource), err)
}
