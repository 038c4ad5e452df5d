package service

import (
	"context"
	"errors"
	catalogerrors "reservo/internal/catalog/errors"
	catalogrepo "reservo/internal/catalog/repository"
	"reservo/internal/availability/validator"
	"reservo/pkg/config"
	apperrors "reservo/pkg/errors"
	"reservo/pkg/model"
	"time"
)

const localLayout = "2006-01-02 15:04"

// BookingFinder is the slice of the bookings repository the availability
// computation needs.
type BookingFinder interface {
	FindBlockingForStaff(ctx context.Context, staffID string, start, end time.Time, statuses []model.BookingStatus) ([]*model.Booking, error)
}

type AvailabilityService interface {
	// FreeSlots returns the bookable candidate intervals for one staff member
	// on one day, ascending within each work range, each exactly the service
	// duration long and strictly in the future. Unknown business, service or
	// staff yields an empty list, not an error.
	FreeSlots(ctx context.Context, q *model.SlotQuery) ([]model.Slot, error)
}

type availabilityService struct {
	businesses catalogrepo.BusinessRepository
	services   catalogrepo.ServiceRepository
	schedules  catalogrepo.ScheduleRepository
	bookings   BookingFinder
	validator  *validator.SlotQueryValidator
	cfg        *config.Config
	now        func() time.Time
}

func NewAvailabilityService(
	businesses catalogrepo.BusinessRepository,
	services catalogrepo.ServiceRepository,
	schedules catalogrepo.ScheduleRepository,
	bookings BookingFinder,
	queryValidator *validator.SlotQueryValidator,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		businesses: businesses,
		services:   services,
		schedules:  schedules,
		bookings:   bookings,
		validator:  queryValidator,
		cfg:        cfg,
		now:        time.Now,
	}
}

type timeRange struct {
	start time.Time
	end   time.Time
}

func (s *availabilityService) FreeSlots(ctx context.Context, q *model.SlotQuery) ([]model.Slot, error) {
	if q.StepMinutes == 0 {
		q.StepMinutes = s.cfg.SlotStepMinutes
	}
	if err := s.validator.Validate(q); err != nil {
		s.cfg.Log.Warn("Slot query validation failed", "error", err)
		return nil, apperrors.InvalidInput(err.Error())
	}

	slots := make([]model.Slot, 0)

	business, err := s.businesses.FindByID(ctx, q.BusinessID)
	if err != nil {
		if isCatalogMiss(err) {
			return slots, nil
		}
		return nil, apperrors.Internal("Failed to resolve business", err)
	}

	loc, err := time.LoadLocation(business.Timezone)
	if err != nil {
		return nil, apperrors.Internal("Invalid business timezone", err)
	}

	svc, err := s.services.FindActiveForBusiness(ctx, q.ServiceID, q.BusinessID)
	if err != nil {
		if isCatalogMiss(err) {
			return slots, nil
		}
		return nil, apperrors.Internal("Failed to resolve service", err)
	}

	entries, err := s.schedules.FindByStaffAndDay(ctx, q.StaffID, q.Day)
	if err != nil {
		return nil, apperrors.Internal("Failed to load schedule", err)
	}

	workRanges, breakRanges, err := buildDayRanges(entries, q.Day, loc)
	if err != nil {
		return nil, apperrors.Internal("Malformed schedule entry", err)
	}
	if len(workRanges) == 0 {
		return slots, nil
	}

	blocked, err := s.blockedRanges(ctx, q.StaffID, workRanges, breakRanges)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(svc.DurationMinutes) * time.Minute
	step := time.Duration(q.StepMinutes) * time.Minute
	now := s.now()

	for _, work := range workRanges {
		for cursor := work.start; !cursor.Add(duration).After(work.end); cursor = cursor.Add(step) {
			candidate := timeRange{start: cursor, end: cursor.Add(duration)}
			if !candidate.start.After(now) {
				continue
			}
			if intersectsAny(candidate, blocked) {
				continue
			}
			slots = append(slots, model.Slot{StartAt: candidate.start, EndAt: candidate.end})
		}
	}

	return slots, nil
}

// buildDayRanges turns the day's schedule entries into zoned work and break
// ranges. Any day_off entry closes the whole day regardless of what else is
// present; a day with no entries is closed, not open.
func buildDayRanges(entries []*model.ScheduleEntry, day string, loc *time.Location) (work, breaks []timeRange, err error) {
	for _, entry := range entries {
		if entry.Type == model.ScheduleDayOff {
			return nil, nil, nil
		}
	}

	for _, entry := range entries {
		start, err := time.ParseInLocation(localLayout, day+" "+entry.StartTime, loc)
		if err != nil {
			return nil, nil, err
		}
		end, err := time.ParseInLocation(localLayout, day+" "+entry.EndTime, loc)
		if err != nil {
			return nil, nil, err
		}

		r := timeRange{start: start, end: end}
		switch entry.Type {
		case model.ScheduleWork:
			work = append(work, r)
		case model.ScheduleBreak:
			breaks = append(breaks, r)
		}
	}

	return work, breaks, nil
}

// blockedRanges collects the break ranges and the staff member's blocking
// bookings that intersect the day's overall span.
func (s *availabilityService) blockedRanges(ctx context.Context, staffID string, workRanges, breakRanges []timeRange) ([]timeRange, error) {
	dayStart := workRanges[0].start
	dayEnd := workRanges[0].end
	for _, r := range workRanges[1:] {
		if r.start.Before(dayStart) {
			dayStart = r.start
		}
		if r.end.After(dayEnd) {
			dayEnd = r.end
		}
	}

	bookings, err := s.bookings.FindBlockingForStaff(ctx, staffID, dayStart, dayEnd, model.AvailabilityBlockingStatuses)
	if err != nil {
		return nil, apperrors.Internal("Failed to load blocking bookings", err)
	}

	blocked := make([]timeRange, 0, len(bookings)+len(breakRanges))
	for _, b := range bookings {
		blocked = append(blocked, timeRange{start: b.StartAt, end: b.EndAt})
	}
	blocked = append(blocked, breakRanges...)

	return blocked, nil
}

func intersectsAny(candidate timeRange, blocked []timeRange) bool {
	for _, b := range blocked {
		if overlaps(candidate.start, candidate.end, b.start, b.end) {
			return true
		}
	}
	return false
}

// overlaps reports whether the half-open intervals [start1, end1) and
// [start2, end2) intersect. Touching endpoints do not count.
func overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}

func isCatalogMiss(err error) bool {
	return errors.Is(err, catalogerrors.ErrNotFound) || errors.Is(err, catalogerrors.ErrInvalidID)
}
