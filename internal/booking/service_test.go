package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"appointd/internal/domain"
	"appointd/internal/events"
	"appointd/internal/models"
	"appointd/internal/slots"
	"appointd/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps bookings in memory and can be forced down.
type fakeStore struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
	down     bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{bookings: make(map[string]*models.Booking)}
}

func (f *fakeStore) IsConnected() bool { return !f.down }
func (f *fakeStore) Connect(ctx context.Context, maxRetries int, initialDelay time.Duration) bool {
	return !f.down
}
func (f *fakeStore) Ping(ctx context.Context) error {
	if f.down {
		return store.ErrNotConnected
	}
	return nil
}
func (f *fakeStore) Status(ctx context.Context) string {
	if f.down {
		return "not_connected"
	}
	return "connected"
}

func (f *fakeStore) InsertBooking(ctx context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return store.ErrNotConnected
	}
	clone := *b
	f.bookings[b.ID] = &clone
	return nil
}

func (f *fakeStore) FindBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, store.ErrNotConnected
	}
	b, ok := f.bookings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (f *fakeStore) LiveBookingAt(ctx context.Context, date, timeStr string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return false, store.ErrNotConnected
	}
	for _, b := range f.bookings {
		if b.Appointment.Date == date && b.Appointment.Time == timeStr && b.Live() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) LiveTimesForDate(ctx context.Context, date string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, store.ErrNotConnected
	}
	var times []string
	for _, b := range f.bookings {
		if b.Appointment.Date == date && b.Live() {
			times = append(times, b.Appointment.Time)
		}
	}
	return times, nil
}

func (f *fakeStore) CancelBooking(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return store.ErrNotConnected
	}
	b, ok := f.bookings[id]
	if !ok || b.Status == models.StatusCancelled || b.Status == models.StatusCompleted {
		return store.ErrAlreadyCancelled
	}
	b.Status = models.StatusCancelled
	b.CancelledAt = &at
	b.UpdatedAt = at
	return nil
}

func (f *fakeStore) SetBookingNotified(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return store.ErrNotFound
	}
	b.Notified = true
	return nil
}

func (f *fakeStore) ListBookingsBetween(ctx context.Context, from, to string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, store.ErrNotConnected
	}
	var out []models.Booking
	for _, b := range f.bookings {
		if (from == "" || b.Appointment.Date >= from) && (to == "" || b.Appointment.Date <= to) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertTravelBooking(ctx context.Context, tb *models.TravelBooking) error {
	return errors.New("not implemented")
}
func (f *fakeStore) FindTravelBookingByID(ctx context.Context, id string) (*models.TravelBooking, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeStore) CancelTravelBooking(ctx context.Context, id string, at time.Time) error {
	return errors.New("not implemented")
}
func (f *fakeStore) SetTravelNotified(ctx context.Context, id string) error {
	return errors.New("not implemented")
}
func (f *fakeStore) ListTravelBookings(ctx context.Context) ([]models.TravelBooking, error) {
	return nil, errors.New("not implemented")
}

type recordingCache struct {
	mu          sync.Mutex
	data        map[string][]string
	invalidated []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{data: make(map[string][]string)}
}

func (c *recordingCache) GetBookedTimes(ctx context.Context, date string) ([]string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	times, ok := c.data[date]
	return times, ok, nil
}

func (c *recordingCache) SetBookedTimes(ctx context.Context, date string, times []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[date] = times
	return nil
}

func (c *recordingCache) Invalidate(ctx context.Context, date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, date)
	c.invalidated = append(c.invalidated, date)
	return nil
}

func newTestService(t *testing.T, st *fakeStore, cache *recordingCache, bus *events.Bus) *Service {
	t.Helper()
	logger := zerolog.Nop()
	svc, err := NewService(st, adaptCache(cache), bus, "UTC", &logger)
	require.NoError(t, err)
	return svc
}

// adaptCache keeps a typed nil from leaking into the interface.
func adaptCache(c *recordingCache) domain.SlotCache {
	if c == nil {
		return nil
	}
	return c
}

func newBooking(date, timeStr string) *models.Booking {
	return &models.Booking{
		Customer: models.CustomerInfo{
			Name:  "Alice Umutoni",
			Email: "alice@example.com",
			Phone: "+250788000000",
		},
		Appointment: models.AppointmentInfo{
			Date:            date,
			Time:            timeStr,
			AppointmentType: models.AppointmentInPerson,
			ServiceType:     "visa_consultation",
			Duration:        30,
		},
	}
}

func TestCreateBooking(t *testing.T) {
	st := newFakeStore()
	bus := events.NewBus()
	var published []string
	var mu sync.Mutex
	bus.Subscribe(events.EventBookingCreated, func(e *events.Event) error {
		mu.Lock()
		published = append(published, e.Type)
		mu.Unlock()
		return nil
	})

	svc := newTestService(t, st, nil, bus)

	b := newBooking("2026-03-02", "09:30")
	require.NoError(t, svc.Create(context.Background(), b))

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, models.StatusPending, b.Status)
	assert.False(t, b.Notified)
	assert.False(t, b.CreatedAt.IsZero())

	stored, err := st.FindBookingByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:30", stored.Appointment.Time)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(published) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestCreateRejectsConflict(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(t, st, nil, events.NewBus())
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, newBooking("2026-03-02", "09:30")))

	err := svc.Create(ctx, newBooking("2026-03-02", "09:30"))
	assert.ErrorIs(t, err, store.ErrSlotTaken)
}

func TestCreateAllowsSlotAfterCancel(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(t, st, nil, events.NewBus())
	ctx := context.Background()

	first := newBooking("2026-03-02", "09:30")
	require.NoError(t, svc.Create(ctx, first))

	_, err := svc.Cancel(ctx, first.ID)
	require.NoError(t, err)

	assert.NoError(t, svc.Create(ctx, newBooking("2026-03-02", "09:30")))
}

func TestCreateFailsWhenStoreDown(t *testing.T) {
	st := newFakeStore()
	st.down = true
	svc := newTestService(t, st, nil, events.NewBus())

	err := svc.Create(context.Background(), newBooking("2026-03-02", "09:30"))
	assert.ErrorIs(t, err, store.ErrNotConnected)
}

func TestCancel(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(t, st, nil, events.NewBus())
	ctx := context.Background()

	b := newBooking("2026-03-02", "10:00")
	require.NoError(t, svc.Create(ctx, b))

	t.Run("Succeeds", func(t *testing.T) {
		cancelled, err := svc.Cancel(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, cancelled.Status)
		require.NotNil(t, cancelled.CancelledAt)
	})

	t.Run("SecondCancelReportsAlreadyCancelled", func(t *testing.T) {
		_, err := svc.Cancel(ctx, b.ID)
		assert.ErrorIs(t, err, store.ErrAlreadyCancelled)
	})

	t.Run("UnknownIDReportsNotFound", func(t *testing.T) {
		_, err := svc.Cancel(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestAvailableSlots(t *testing.T) {
	ctx := context.Background()

	t.Run("SubtractsBookedTimes", func(t *testing.T) {
		st := newFakeStore()
		svc := newTestService(t, st, nil, events.NewBus())
		require.NoError(t, svc.Create(ctx, newBooking("2026-03-02", "09:00")))
		require.NoError(t, svc.Create(ctx, newBooking("2026-03-02", "14:30")))

		report, err := svc.AvailableSlots(ctx, "2026-03-02", "visa_consultation", "in_person")
		require.NoError(t, err)
		assert.Equal(t, slots.GridSize, report.TotalSlots)
		assert.Equal(t, 2, report.BookedSlots)
		assert.Equal(t, slots.GridSize-2, report.AvailableCount)
		assert.NotContains(t, report.AvailableSlots, "09:00")
		assert.NotContains(t, report.AvailableSlots, "14:30")
		assert.False(t, report.Degraded)
	})

	t.Run("DegradesToFullGridWhenStoreDown", func(t *testing.T) {
		st := newFakeStore()
		st.down = true
		svc := newTestService(t, st, nil, events.NewBus())

		report, err := svc.AvailableSlots(ctx, "2026-03-02", "visa_consultation", "in_person")
		require.NoError(t, err)
		assert.True(t, report.Degraded)
		assert.Equal(t, slots.GridSize, report.AvailableCount)
		assert.Len(t, report.AvailableSlots, slots.GridSize)
	})

	t.Run("UsesCacheOnHit", func(t *testing.T) {
		st := newFakeStore()
		st.down = true // cache hit must not touch the store
		cache := newRecordingCache()
		require.NoError(t, cache.SetBookedTimes(ctx, "2026-03-02", []string{"09:00"}))
		svc := newTestService(t, st, cache, events.NewBus())

		report, err := svc.AvailableSlots(ctx, "2026-03-02", "visa_consultation", "in_person")
		require.NoError(t, err)
		assert.False(t, report.Degraded)
		assert.Equal(t, 1, report.BookedSlots)
	})

	t.Run("PopulatesCacheOnMiss", func(t *testing.T) {
		st := newFakeStore()
		cache := newRecordingCache()
		svc := newTestService(t, st, cache, events.NewBus())
		require.NoError(t, svc.Create(ctx, newBooking("2026-03-03", "11:00")))

		_, err := svc.AvailableSlots(ctx, "2026-03-03", "visa_consultation", "in_person")
		require.NoError(t, err)

		times, ok, _ := cache.GetBookedTimes(ctx, "2026-03-03")
		require.True(t, ok)
		assert.Equal(t, []string{"11:00"}, times)
	})
}

func TestCreateAndCancelInvalidateCache(t *testing.T) {
	st := newFakeStore()
	cache := newRecordingCache()
	svc := newTestService(t, st, cache, events.NewBus())
	ctx := context.Background()

	b := newBooking("2026-03-02", "09:30")
	require.NoError(t, svc.Create(ctx, b))
	assert.Contains(t, cache.invalidated, "2026-03-02")

	cache.invalidated = nil
	_, err := svc.Cancel(ctx, b.ID)
	require.NoError(t, err)
	assert.Contains(t, cache.invalidated, "2026-03-02")
}
