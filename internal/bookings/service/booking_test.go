package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	catalogerrors "reservo/internal/catalog/errors"
	mongotx "reservo/pkg/db/mongo"
	"reservo/internal/bookings/validator"
	"reservo/pkg/config"
	apperrors "reservo/pkg/errors"
	"reservo/pkg/logger"
	"reservo/pkg/model"
)

const (
	testBusinessID = "64f1b2c3d4e5f6a7b8c9d0e1"
	testServiceID  = "64f1b2c3d4e5f6a7b8c9d0e2"
	testStaffID    = "64f1b2c3d4e5f6a7b8c9d0e3"
	testBookingID  = "64f1b2c3d4e5f6a7b8c9d0e4"
)

// Mock repositories for testing
type mockBookingRepository struct {
	mu       sync.Mutex
	stored   []*model.Booking
	findByID func(ctx context.Context, id string) (*model.Booking, error)
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking.ID = testBookingID
	booking.CreatedAt = time.Now()
	copied := *booking
	m.stored = append(m.stored, &copied)
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByID != nil {
		return m.findByID(ctx, id)
	}
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingRepository) FindBlockingForStaff(ctx context.Context, staffID string, start, end time.Time, statuses []model.BookingStatus) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := make([]*model.Booking, 0)
	for _, b := range m.stored {
		if b.StaffID != staffID {
			continue
		}
		if b.StartAt.Before(end) && b.EndAt.After(start) {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error {
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

// mockSlotLockRepository reproduces the unique-key semantics of the lock
// collection with an in-memory map.
type mockSlotLockRepository struct {
	mu    sync.Mutex
	locks map[string]bool
}

func newMockSlotLockRepository() *mockSlotLockRepository {
	return &mockSlotLockRepository{locks: make(map[string]bool)}
}

func (m *mockSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[lock.ID] {
		return nil, mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	}
	m.locks[lock.ID] = true
	return lock, nil
}

func (m *mockSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, lockID)
	return nil
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

type mockStaffRepository struct {
	findActiveFunc func(ctx context.Context, staffID, businessID string) (*model.Staff, error)
}

func (m *mockStaffRepository) FindActiveForBusiness(ctx context.Context, staffID, businessID string) (*model.Staff, error) {
	if m.findActiveFunc != nil {
		return m.findActiveFunc(ctx, staffID, businessID)
	}
	return &model.Staff{ID: staffID, BusinessID: businessID}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		SlotLockTTL: 10 * time.Second,
	}
}

func newTestService(cfg *config.Config, repo *mockBookingRepository, locks *mockSlotLockRepository, services *mockServiceRepository, staff *mockStaffRepository) BookingService {
	return NewBookingService(repo, locks, services, staff, validator.NewBookingValidator(cfg.Log), nil, cfg)
}

func baseRequest(start time.Time) *model.BookingRequest {
	return &model.BookingRequest{
		BusinessID: testBusinessID,
		ServiceID:  testServiceID,
		StaffID:    testStaffID,
		StartAt:    start,
	}
}

func TestCreate_Success(t *testing.T) {
	cfg := testConfig()
	repo := &mockBookingRepository{}
	locks := newMockSlotLockRepository()
	svc := newTestService(cfg, repo, locks, &mockServiceRepository{}, &mockStaffRepository{})

	start := time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)
	booking, err := svc.Create(context.Background(), baseRequest(start))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.ID == "" {
		t.Error("expected booking ID to be assigned")
	}
	if booking.Status != model.StatusPending {
		t.Errorf("expected status pending, got %s", booking.Status)
	}
	if booking.Source != model.SourceTelegram {
		t.Errorf("expected default source telegram, got %s", booking.Source)
	}
	if want := start.Add(time.Hour); !booking.EndAt.Equal(want) {
		t.Errorf("expected end at %s, got %s", want, booking.EndAt)
	}

	locks.mu.Lock()
	held := len(locks.locks)
	locks.mu.Unlock()
	if held != 0 {
		t.Errorf("expected slot lock to be released, %d still held", held)
	}
}

func TestCreate_OverlapConflict(t *testing.T) {
	cfg := testConfig()
	repo := &mockBookingRepository{}
	locks := newMockSlotLockRepository()
	svc := newTestService(cfg, repo, locks, &mockServiceRepository{}, &mockStaffRepository{})

	start := time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)
	repo.stored = append(repo.stored, &model.Booking{
		ID:      "64f1b2c3d4e5f6a7b8c9d0ff",
		StaffID: testStaffID,
		Status:  model.StatusConfirmed,
		StartAt: start.Add(30 * time.Minute),
		EndAt:   start.Add(90 * time.Minute),
	})

	_, err := svc.Create(context.Background(), baseRequest(start))
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, code)
	}
	if len(repo.stored) != 1 {
		t.Errorf("expected no new booking stored, got %d total", len(repo.stored))
	}
}

func TestCreate_AdjacentBookingAllowed(t *testing.T) {
	cfg := testConfig()
	repo := &mockBookingRepository{}
	locks := newMockSlotLockRepository()
	svc := newTestService(cfg, repo, locks, &mockServiceRepository{}, &mockStaffRepository{})

	start := time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)

	// Existing booking ends exactly where the new one starts.
	repo.stored = append(repo.stored, &model.Booking{
		ID:      "64f1b2c3d4e5f6a7b8c9d0ff",
		StaffID: testStaffID,
		Status:  model.StatusConfirmed,
		StartAt: start.Add(-time.Hour),
		EndAt:   start,
	})

	booking, err := svc.Create(context.Background(), baseRequest(start))
	if err != nil {
		t.Fatalf("touching endpoints must not conflict: %v", err)
	}
	if booking == nil {
		t.Fatal("expected a booking")
	}
}

func TestCreate_ConcurrentSameSlot(t *testing.T) {
	cfg := testConfig()
	repo := &mockBookingRepository{}
	locks := newMockSlotLockRepository()
	svc := newTestService(cfg, repo, locks, &mockServiceRepository{}, &mockStaffRepository{})

	start := time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Create(context.Background(), baseRequest(start))
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case apperrors.AsAppError(err).Code == apperrors.CodeConflict:
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if successes != 1 || conflicts != 1 {
		t.Errorf("expected exactly one success and one conflict, got %d successes, %d conflicts", successes, conflicts)
	}
	if len(repo.stored) != 1 {
		t.Errorf("expected exactly one stored booking, got %d", len(repo.stored))
	}
}

// isolatedBookingRepository mimics the store's transaction isolation: reads
// inside a transaction see only bookings committed before it began, and
// inserts become visible to other readers only on commit.
type isolatedBookingRepository struct {
	mu        sync.Mutex
	committed []*model.Booking
	nextID    int
}

type isolatedTxKey struct{}

type isolatedTxState struct {
	readSet []*model.Booking
	pending []*model.Booking
}

func (m *isolatedBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.mu.Lock()
	state := &isolatedTxState{readSet: append([]*model.Booking(nil), m.committed...)}
	m.mu.Unlock()

	sessCtx := mongo.NewSessionContext(context.WithValue(ctx, isolatedTxKey{}, state), nil)
	if err := fn(sessCtx); err != nil {
		return err
	}

	m.mu.Lock()
	m.committed = append(m.committed, state.pending...)
	m.mu.Unlock()
	return nil
}

func (m *isolatedBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	m.mu.Lock()
	m.nextID++
	booking.ID = fmt.Sprintf("64f1b2c3d4e5f6a7b8c9d%03d", m.nextID)
	m.mu.Unlock()
	booking.CreatedAt = time.Now()

	state, ok := ctx.Value(isolatedTxKey{}).(*isolatedTxState)
	if !ok {
		return fmt.Errorf("create outside transaction")
	}
	copied := *booking
	state.pending = append(state.pending, &copied)
	return nil
}

func (m *isolatedBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return &model.Booking{ID: id}, nil
}

func (m *isolatedBookingRepository) FindBlockingForStaff(ctx context.Context, staffID string, start, end time.Time, statuses []model.BookingStatus) ([]*model.Booking, error) {
	var visible []*model.Booking
	if state, ok := ctx.Value(isolatedTxKey{}).(*isolatedTxState); ok {
		visible = state.readSet
	} else {
		m.mu.Lock()
		visible = append([]*model.Booking(nil), m.committed...)
		m.mu.Unlock()
	}

	matched := make([]*model.Booking, 0)
	for _, b := range visible {
		if b.StaffID != staffID {
			continue
		}
		if b.StartAt.Before(end) && b.EndAt.After(start) {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

func (m *isolatedBookingRepository) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error {
	return nil
}

func TestCreate_ConcurrentOverlappingStarts(t *testing.T) {
	cfg := testConfig()
	repo := &isolatedBookingRepository{}
	locks := newMockSlotLockRepository()
	svc := NewBookingService(repo, locks, &mockServiceRepository{}, &mockStaffRepository{}, validator.NewBookingValidator(cfg.Log), nil, cfg)

	// Two overlapping hour-long intervals with different start instants. The
	// transactional re-check alone cannot see the other attempt's uncommitted
	// insert, so exclusion has to come from the per-day advisory lock.
	starts := []time.Time{
		time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 15, 10, 30, 0, 0, time.UTC),
	}

	var wg sync.WaitGroup
	results := make([]error, len(starts))
	for i, start := range starts {
		wg.Add(1)
		go func(i int, start time.Time) {
			defer wg.Done()
			_, results[i] = svc.Create(context.Background(), baseRequest(start))
		}(i, start)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case apperrors.AsAppError(err).Code == apperrors.CodeConflict:
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if successes != 1 || conflicts != 1 {
		t.Errorf("expected exactly one success and one conflict, got %d successes, %d conflicts", successes, conflicts)
	}

	repo.mu.Lock()
	stored := len(repo.committed)
	repo.mu.Unlock()
	if stored != 1 {
		t.Errorf("expected exactly one committed booking, got %d", stored)
	}
}

func TestCreate_CrossMidnightIntervalLocksBothDays(t *testing.T) {
	cfg := testConfig()
	repo := &mockBookingRepository{}
	locks := newMockSlotLockRepository()
	svc := newTestService(cfg, repo, locks, &mockServiceRepository{}, &mockStaffRepository{})

	// Hold the lock for the day the interval spills into; the creation must
	// contend on it even though it starts the day before.
	if _, err := locks.Create(context.Background(), &model.SlotLock{
		ID:        "slot_lock_" + testStaffID + "_2025-07-16",
		ExpiresAt: time.Now().Add(time.Minute),
	}); err != nil {
		t.Fatalf("failed to seed lock: %v", err)
	}

	start := time.Date(2025, 7, 15, 23, 30, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), baseRequest(start))
	if err == nil {
		t.Fatal("expected conflict against the held next-day lock")
	}
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, code)
	}

	// The first day's lock must not stay held after the failed attempt.
	locks.mu.Lock()
	held := len(locks.locks)
	locks.mu.Unlock()
	if held != 1 {
		t.Errorf("expected only the seeded lock to remain, %d held", held)
	}
}

func TestCreate_UnknownService(t *testing.T) {
	cfg := testConfig()
	services := &mockServiceRepository{
		findActiveFunc: func(ctx context.Context, serviceID, businessID string) (*model.Service, error) {
			return nil, catalogerrors.ErrNotFound
		},
	}
	svc := newTestService(cfg, &mockBookingRepository{}, newMockSlotLockRepository(), services, &mockStaffRepository{})

	_, err := svc.Create(context.Background(), baseRequest(time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)))
	if err == nil {
		t.Fatal("expected not found error")
	}
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, code)
	}
}

func TestCreate_UnknownStaff(t *testing.T) {
	cfg := testConfig()
	staff := &mockStaffRepository{
		findActiveFunc: func(ctx context.Context, staffID, businessID string) (*model.Staff, error) {
			return nil, catalogerrors.ErrNotFound
		},
	}
	svc := newTestService(cfg, &mockBookingRepository{}, newMockSlotLockRepository(), &mockServiceRepository{}, staff)

	_, err := svc.Create(context.Background(), baseRequest(time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)))
	if err == nil {
		t.Fatal("expected not found error")
	}
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, code)
	}
}

func TestCreate_MissingStartAt(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(cfg, &mockBookingRepository{}, newMockSlotLockRepository(), &mockServiceRepository{}, &mockStaffRepository{})

	req := baseRequest(time.Time{})
	_, err := svc.Create(context.Background(), req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeValidation {
		t.Errorf("expected code %s, got %s", apperrors.CodeValidation, code)
	}
}

func TestGetByID_EmptyID(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(cfg, &mockBookingRepository{}, newMockSlotLockRepository(), &mockServiceRepository{}, &mockStaffRepository{})

	_, err := svc.GetByID(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for empty ID")
	}
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeInvalidInput {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidInput, code)
	}
}
