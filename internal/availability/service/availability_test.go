package service

import (
	"context"
	"testing"
	"time"

	catalogerrors "reservo/internal/catalog/errors"
	"reservo/internal/availability/validator"
	"reservo/pkg/config"
	apperrors "reservo/pkg/errors"
	"reservo/pkg/logger"
	"reservo/pkg/model"
)

const (
	testBusinessID = "64f1b2c3d4e5f6a7b8c9d0e1"
	testServiceID  = "64f1b2c3d4e5f6a7b8c9d0e2"
	testStaffID    = "64f1b2c3d4e5f6a7b8c9d0e3"
	testDay        = "2025-07-15"
)

// Mock repositories for testing
type mockBusinessRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Business, error)
}

func (m *mockBusinessRepository) FindByID(ctx context.Context, id string) (*model.Business, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Business{ID: id, Timezone: "Europe/Moscow"}, nil
}

type mockServiceRepository struct {
	findActiveFunc func(ctx context.Context, serviceID, businessID string) (*model.Service, error)
}

func (m *mockServiceRepository) FindActiveForBusiness(ctx context.Context, serviceID, businessID string) (*model.Service, error) {
	if m.findActiveFunc != nil {
		return m.findActiveFunc(ctx, serviceID, businessID)
	}
	return &model.Service{ID: serviceID, BusinessID: businessID, DurationMinutes: 60}, nil
}

type mockScheduleRepository struct {
	findByStaffAndDayFunc func(ctx context.Context, staffID, day string) ([]*model.ScheduleEntry, error)
}

func (m *mockScheduleRepository) FindByStaffAndDay(ctx context.Context, staffID, day string) ([]*model.ScheduleEntry, error) {
	if m.findByStaffAndDayFunc != nil {
		return m.findByStaffAndDayFunc(ctx, staffID, day)
	}
	return []*model.ScheduleEntry{}, nil
}

type mockBookingFinder struct {
	findBlockingFunc func(ctx context.Context, staffID string, start, end time.Time, statuses []model.BookingStatus) ([]*model.Booking, error)
}

func (m *mockBookingFinder) FindBlockingForStaff(ctx context.Context, staffID string, start, end time.Time, statuses []model.BookingStatus) ([]*model.Booking, error) {
	if m.findBlockingFunc != nil {
		return m.findBlockingFunc(ctx, staffID, start, end, statuses)
	}
	return []*model.Booking{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		SlotStepMinutes: 15,
	}
}

func newTestService(
	cfg *config.Config,
	businesses *mockBusinessRepository,
	services *mockServiceRepository,
	schedules *mockScheduleRepository,
	bookings *mockBookingFinder,
	now time.Time,
) *availabilityService {
	return &availabilityService{
		businesses: businesses,
		services:   services,
		schedules:  schedules,
		bookings:   bookings,
		validator:  validator.NewSlotQueryValidator(cfg.Log),
		cfg:        cfg,
		now:        func() time.Time { return now },
	}
}

func moscow(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	return loc
}

func baseQuery() *model.SlotQuery {
	return &model.SlotQuery{
		BusinessID:  testBusinessID,
		ServiceID:   testServiceID,
		StaffID:     testStaffID,
		Day:         testDay,
		StepMinutes: 15,
	}
}

func workDayEntries() []*model.ScheduleEntry {
	return []*model.ScheduleEntry{
		{StaffID: testStaffID, Type: model.ScheduleWork, Day: testDay, StartTime: "09:00", EndTime: "17:00"},
		{StaffID: testStaffID, Type: model.ScheduleBreak, Day: testDay, StartTime: "12:00", EndTime: "13:00"},
	}
}

func TestFreeSlots_FullWorkedDay(t *testing.T) {
	loc := moscow(t)
	cfg := testConfig()

	// Existing confirmed booking 10:00 to 11:00 local time.
	booked := &model.Booking{
		StaffID: testStaffID,
		Status:  model.StatusConfirmed,
		StartAt: time.Date(2025, 7, 15, 10, 0, 0, 0, loc),
		EndAt:   time.Date(2025, 7, 15, 11, 0, 0, 0, loc),
	}

	schedules := &mockScheduleRepository{
		findByStaffAndDayFunc: func(ctx context.Context, staffID, day string) ([]*model.ScheduleEntry, error) {
			return workDayEntries(), nil
		},
	}
	bookings := &mockBookingFinder{
		findBlockingFunc: func(ctx context.Context, staffID string, start, end time.Time, statuses []model.BookingStatus) ([]*model.Booking, error) {
			if len(statuses) != len(model.AvailabilityBlockingStatuses) {
				t.Errorf("expected availability blocking statuses, got %v", statuses)
			}
			return []*model.Booking{booked}, nil
		},
	}

	now := time.Date(2025, 7, 14, 12, 0, 0, 0, loc)
	svc := newTestService(cfg, &mockBusinessRepository{}, &mockServiceRepository{}, schedules, bookings, now)

	slots, err := svc.FreeSlots(context.Background(), baseQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 09:00 ends exactly when the booking starts, 11:00 ends exactly when the
	// break starts, then 13:00 through 16:00 every 15 minutes.
	want := []string{"09:00", "11:00"}
	for h := 13; h <= 15; h++ {
		for m := 0; m < 60; m += 15 {
			want = append(want, time.Date(2025, 7, 15, h, m, 0, 0, loc).Format("15:04"))
		}
	}
	want = append(want, "16:00")

	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d: %v", len(want), len(slots), slotStarts(slots, loc))
	}

	for i, s := range slots {
		got := s.StartAt.In(loc).Format("15:04")
		if got != want[i] {
			t.Errorf("slot %d: expected start %s, got %s", i, want[i], got)
		}
		if d := s.EndAt.Sub(s.StartAt); d != time.Hour {
			t.Errorf("slot %d: expected 1h duration, got %s", i, d)
		}
	}
}

func slotStarts(slots []model.Slot, loc *time.Location) []string {
	starts := make([]string, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.StartAt.In(loc).Format("15:04"))
	}
	return starts
}

func TestFreeSlots_DayOffOverridesWork(t *testing.T) {
	loc := moscow(t)
	cfg := testConfig()

	schedules := &mockScheduleRepository{
		findByStaffAndDayFunc: func(ctx context.Context, staffID, day string) ([]*model.ScheduleEntry, error) {
			return []*model.ScheduleEntry{
				{StaffID: testStaffID, Type: model.ScheduleWork, Day: testDay, StartTime: "09:00", EndTime: "17:00"},
				{StaffID: testStaffID, Type: model.ScheduleDayOff, Day: testDay, StartTime: "00:00", EndTime: "23:59"},
			}, nil
		},
	}

	now := time.Date(2025, 7, 14, 12, 0, 0, 0, loc)
	svc := newTestService(cfg, &mockBusinessRepository{}, &mockServiceRepository{}, schedules, &mockBookingFinder{}, now)

	slots, err := svc.FreeSlots(context.Background(), baseQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots on a day off, got %d", len(slots))
	}
}

func TestFreeSlots_NoEntriesMeansClosed(t *testing.T) {
	loc := moscow(t)
	cfg := testConfig()

	now := time.Date(2025, 7, 14, 12, 0, 0, 0, loc)
	svc := newTestService(cfg, &mockBusinessRepository{}, &mockServiceRepository{}, &mockScheduleRepository{}, &mockBookingFinder{}, now)

	slots, err := svc.FreeSlots(context.Background(), baseQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots without schedule entries, got %d", len(slots))
	}
}

func TestFreeSlots_PastSlotsFiltered(t *testing.T) {
	loc := moscow(t)
	cfg := testConfig()

	schedules := &mockScheduleRepository{
		findByStaffAndDayFunc: func(ctx context.Context, staffID, day string) ([]*model.ScheduleEntry, error) {
			return workDayEntries(), nil
		},
	}

	// Query at exactly 13:00: the candidate starting at that instant is not
	// strictly in the future and must be dropped.
	now := time.Date(2025, 7, 15, 13, 0, 0, 0, loc)
	svc := newTestService(cfg, &mockBusinessRepository{}, &mockServiceRepository{}, schedules, &mockBookingFinder{}, now)

	slots, err := svc.FreeSlots(context.Background(), baseQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected remaining afternoon slots")
	}
	if got := slots[0].StartAt.In(loc).Format("15:04"); got != "13:15" {
		t.Errorf("expected first slot 13:15, got %s", got)
	}
	for i, s := range slots {
		if !s.StartAt.After(now) {
			t.Errorf("slot %d starts at %s, not strictly after now", i, s.StartAt)
		}
	}
}

func TestFreeSlots_UnknownBusinessYieldsEmpty(t *testing.T) {
	loc := moscow(t)
	cfg := testConfig()

	businesses := &mockBusinessRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Business, error) {
			return nil, catalogerrors.ErrNotFound
		},
	}

	now := time.Date(2025, 7, 14, 12, 0, 0, 0, loc)
	svc := newTestService(cfg, businesses, &mockServiceRepository{}, &mockScheduleRepository{}, &mockBookingFinder{}, now)

	slots, err := svc.FreeSlots(context.Background(), baseQuery())
	if err != nil {
		t.Fatalf("expected empty result, got error: %v", err)
	}
	if slots == nil || len(slots) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", slots)
	}
}

func TestFreeSlots_UnknownServiceYieldsEmpty(t *testing.T) {
	loc := moscow(t)
	cfg := testConfig()

	services := &mockServiceRepository{
		findActiveFunc: func(ctx context.Context, serviceID, businessID string) (*model.Service, error) {
			return nil, catalogerrors.ErrNotFound
		},
	}

	now := time.Date(2025, 7, 14, 12, 0, 0, 0, loc)
	svc := newTestService(cfg, &mockBusinessRepository{}, services, &mockScheduleRepository{}, &mockBookingFinder{}, now)

	slots, err := svc.FreeSlots(context.Background(), baseQuery())
	if err != nil {
		t.Fatalf("expected empty result, got error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots for unknown service, got %d", len(slots))
	}
}

func TestFreeSlots_StepOutOfRange(t *testing.T) {
	loc := moscow(t)
	cfg := testConfig()

	now := time.Date(2025, 7, 14, 12, 0, 0, 0, loc)
	svc := newTestService(cfg, &mockBusinessRepository{}, &mockServiceRepository{}, &mockScheduleRepository{}, &mockBookingFinder{}, now)

	q := baseQuery()
	q.StepMinutes = 3

	_, err := svc.FreeSlots(context.Background(), q)
	if err == nil {
		t.Fatal("expected validation error for out-of-range step")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidInput, appErr.Code)
	}
}

func TestFreeSlots_DefaultStepFromConfig(t *testing.T) {
	loc := moscow(t)
	cfg := testConfig()
	cfg.SlotStepMinutes = 30

	services := &mockServiceRepository{
		findActiveFunc: func(ctx context.Context, serviceID, businessID string) (*model.Service, error) {
			return &model.Service{ID: serviceID, BusinessID: businessID, DurationMinutes: 30}, nil
		},
	}
	schedules := &mockScheduleRepository{
		findByStaffAndDayFunc: func(ctx context.Context, staffID, day string) ([]*model.ScheduleEntry, error) {
			return []*model.ScheduleEntry{
				{StaffID: testStaffID, Type: model.ScheduleWork, Day: testDay, StartTime: "09:00", EndTime: "11:00"},
			}, nil
		},
	}

	now := time.Date(2025, 7, 14, 12, 0, 0, 0, loc)
	svc := newTestService(cfg, &mockBusinessRepository{}, services, schedules, &mockBookingFinder{}, now)

	q := baseQuery()
	q.StepMinutes = 0

	slots, err := svc.FreeSlots(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"09:00", "09:30", "10:00", "10:30"}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d: %v", len(want), len(slots), slotStarts(slots, loc))
	}
	for i, s := range slots {
		if got := s.StartAt.In(loc).Format("15:04"); got != want[i] {
			t.Errorf("slot %d: expected %s, got %s", i, want[i], got)
		}
	}
}

func TestOverlaps_HalfOpen(t *testing.T) {
	base := time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)
	at := func(minutes int) time.Time { return base.Add(time.Duration(minutes) * time.Minute) }

	tests := []struct {
		name                           string
		start1, end1, start2, end2     time.Time
		want                           bool
	}{
		{"identical", at(0), at(60), at(0), at(60), true},
		{"partial overlap", at(0), at(60), at(30), at(90), true},
		{"contained", at(0), at(60), at(15), at(45), true},
		{"touching end to start", at(0), at(60), at(60), at(120), false},
		{"touching start to end", at(60), at(120), at(0), at(60), false},
		{"disjoint", at(0), at(30), at(60), at(90), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := overlaps(tt.start1, tt.end1, tt.start2, tt.end2); got != tt.want {
				t.Errorf("overlaps(%v) = %v, want %v", tt.name, got, tt.want)
			}
			if got := overlaps(tt.start2, tt.end2, tt.start1, tt.end1); got != tt.want {
				t.Errorf("overlaps reversed (%v) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
