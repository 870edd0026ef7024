package tests

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"tripbuddy/internal/domain"
	"tripbuddy/internal/redis"
	"tripbuddy/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters for verification
	CreateCallCount          int32
	SetVerificationCallCount int32

	// Error injection
	CreateError          error
	SetVerificationError error
	IncrementError       error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return repository.ErrDuplicateUsername
		}
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
		if user.Phone != "" && u.Phone == user.Phone {
			return repository.ErrDuplicatePhone
		}
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.VerifyToken != "" && u.VerifyToken == token {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) SetVerification(ctx context.Context, id string, verified bool, token string, expiresAt time.Time) error {
	atomic.AddInt32(&m.SetVerificationCallCount, 1)
	if m.SetVerificationError != nil {
		return m.SetVerificationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Verified = verified
	user.VerifyToken = token
	user.TokenExpiresAt = expiresAt
	return nil
}

func (m *MockUserRepository) SetCapabilities(ctx context.Context, id string, canOffer, canFind bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.CanOfferRides = canOffer
	user.CanFindRides = canFind
	return nil
}

func (m *MockUserRepository) RecordLogin(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.LastLoginAt = at
	return nil
}

func (m *MockUserRepository) IncrementRidesTaken(ctx context.Context, id string, seats int) error {
	if m.IncrementError != nil {
		return m.IncrementError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.RidesTaken += seats
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// GetUser returns the stored user for test assertions.
func (m *MockUserRepository) GetUser(id string) *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[id]
}

// CountUsers returns the number of users.
func (m *MockUserRepository) CountUsers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository. Its
// DecrementSeats is a compare-and-swap like the SQL it stands in for: the
// update happens only when enough seats remain.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount         int32
	DecrementSeatsCallCount int32

	// Error injection
	CreateError         error
	DecrementSeatsError error
	SearchError         error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) Search(ctx context.Context, q repository.RideSearch) ([]*domain.Ride, error) {
	if m.SearchError != nil {
		return nil, m.SearchError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0)
	for _, r := range m.rides {
		if r.Status != domain.RideStatusActive || r.Seats <= 0 {
			continue
		}
		if r.CreatorID == q.ViewerID {
			continue
		}
		if q.From != "" && !strings.Contains(strings.ToLower(r.StartLocation), strings.ToLower(q.From)) {
			continue
		}
		if q.To != "" && !strings.Contains(strings.ToLower(r.EndLocation), strings.ToLower(q.To)) {
			continue
		}
		copy := *r
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

func (m *MockRideRepository) DecrementSeats(ctx context.Context, id string, seats int) error {
	atomic.AddInt32(&m.DecrementSeatsCallCount, 1)
	if m.DecrementSeatsError != nil {
		return m.DecrementSeatsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return repository.ErrNotFound
	}
	if ride.Seats < seats {
		return repository.ErrInsufficientSeats
	}
	ride.Seats -= seats
	return nil
}

func (m *MockRideRepository) DeleteByCreator(ctx context.Context, creatorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.rides {
		if r.CreatorID == creatorID {
			delete(m.rides, id)
		}
	}
	return nil
}

// GetRide returns the ride by ID for test assertions.
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

// CountRides returns the number of rides.
func (m *MockRideRepository) CountRides() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rides)
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository. It
// keeps a reference to the ride repository so DeleteByRideCreator can
// resolve ride ownership the way the SQL subquery does.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings []*domain.Booking
	rides    *MockRideRepository

	// Counters
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository(rides *MockRideRepository) *MockBookingRepository {
	return &MockBookingRepository{
		bookings: make([]*domain.Booking, 0),
		rides:    rides,
	}
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *booking
	m.bookings = append(m.bookings, &copy)
	return nil
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Booking, 0)
	for _, b := range m.bookings {
		if b.UserID == userID {
			copy := *b
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockBookingRepository) SumSeatsByRide(ctx context.Context, rideID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, b := range m.bookings {
		if b.RideID == rideID {
			total += b.SeatsBooked
		}
	}
	return total, nil
}

func (m *MockBookingRepository) DeleteByUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.bookings[:0]
	for _, b := range m.bookings {
		if b.UserID != userID {
			kept = append(kept, b)
		}
	}
	m.bookings = kept
	return nil
}

func (m *MockBookingRepository) DeleteByRideCreator(ctx context.Context, creatorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.bookings[:0]
	for _, b := range m.bookings {
		ride := m.rides.GetRide(b.RideID)
		if ride == nil || ride.CreatorID != creatorID {
			kept = append(kept, b)
		}
	}
	m.bookings = kept
	return nil
}

// CountBookings returns the number of bookings.
func (m *MockBookingRepository) CountBookings() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION REPOSITORY
// ──────────────────────────────────────────────

// MockNotificationRepository is a mock implementation of NotificationRepository.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications []*domain.Notification

	// Counters
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockNotificationRepository creates a new mock notification repository.
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		notifications: make([]*domain.Notification, 0),
	}
}

// AddNotification adds a notification to the mock repository.
func (m *MockNotificationRepository) AddNotification(n *domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *n
	m.notifications = append(m.notifications, &copy)
	return nil
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, n := range m.notifications {
		if n.ID == id {
			copy := *n
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Notification, 0)
	for _, n := range m.notifications {
		if n.UserID == userID {
			copy := *n
			result = append(result, &copy)
		}
	}
	// Unread first, then newest first within each read state.
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Read != result[j].Read {
			return !result[i].Read
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func (m *MockNotificationRepository) DeleteByUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.notifications[:0]
	for _, n := range m.notifications {
		if n.UserID != userID && n.SenderID != userID {
			kept = append(kept, n)
		}
	}
	m.notifications = kept
	return nil
}

// GetNotification returns the notification by ID for test assertions.
func (m *MockNotificationRepository) GetNotification(id string) *domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, n := range m.notifications {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// CountNotifications returns the number of stored notifications.
func (m *MockNotificationRepository) CountNotifications() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.notifications)
}

// CountForUser returns the number of notifications addressed to a user.
func (m *MockNotificationRepository) CountForUser(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID {
			count++
		}
	}
	return count
}

// ──────────────────────────────────────────────
// MOCK STORE / TRANSACTION
// ──────────────────────────────────────────────

// MockStore bundles the mock repositories behind the Store interface. Its
// transactions snapshot all state on begin and restore it on rollback, so
// tests can assert that a failed multi-step operation leaves nothing behind.
type MockStore struct {
	UserRepo         *MockUserRepository
	RideRepo         *MockRideRepository
	BookingRepo      *MockBookingRepository
	NotificationRepo *MockNotificationRepository

	// Error injection
	BeginTxError error
	CommitError  error

	// Counters
	BeginTxCallCount  int32
	CommitCallCount   int32
	RollbackCallCount int32
}

// NewMockStore creates a store wired with fresh mock repositories.
func NewMockStore() *MockStore {
	rides := NewMockRideRepository()
	return &MockStore{
		UserRepo:         NewMockUserRepository(),
		RideRepo:         rides,
		BookingRepo:      NewMockBookingRepository(rides),
		NotificationRepo: NewMockNotificationRepository(),
	}
}

func (s *MockStore) Users() repository.UserRepository                 { return s.UserRepo }
func (s *MockStore) Rides() repository.RideRepository                 { return s.RideRepo }
func (s *MockStore) Bookings() repository.BookingRepository           { return s.BookingRepo }
func (s *MockStore) Notifications() repository.NotificationRepository { return s.NotificationRepo }

func (s *MockStore) BeginTx(ctx context.Context) (repository.Tx, error) {
	atomic.AddInt32(&s.BeginTxCallCount, 1)
	if s.BeginTxError != nil {
		return nil, s.BeginTxError
	}
	return &mockTx{store: s, snap: s.snapshot()}, nil
}

// storeSnapshot captures all repository state for rollback.
type storeSnapshot struct {
	users         map[string]*domain.User
	rides         map[string]*domain.Ride
	bookings      []*domain.Booking
	notifications []*domain.Notification
}

func (s *MockStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		users: make(map[string]*domain.User),
		rides: make(map[string]*domain.Ride),
	}

	s.UserRepo.mu.RLock()
	for id, u := range s.UserRepo.users {
		copy := *u
		snap.users[id] = &copy
	}
	s.UserRepo.mu.RUnlock()

	s.RideRepo.mu.RLock()
	for id, r := range s.RideRepo.rides {
		copy := *r
		snap.rides[id] = &copy
	}
	s.RideRepo.mu.RUnlock()

	s.BookingRepo.mu.RLock()
	for _, b := range s.BookingRepo.bookings {
		copy := *b
		snap.bookings = append(snap.bookings, &copy)
	}
	s.BookingRepo.mu.RUnlock()

	s.NotificationRepo.mu.RLock()
	for _, n := range s.NotificationRepo.notifications {
		copy := *n
		snap.notifications = append(snap.notifications, &copy)
	}
	s.NotificationRepo.mu.RUnlock()

	return snap
}

func (s *MockStore) restore(snap storeSnapshot) {
	s.UserRepo.mu.Lock()
	s.UserRepo.users = snap.users
	s.UserRepo.mu.Unlock()

	s.RideRepo.mu.Lock()
	s.RideRepo.rides = snap.rides
	s.RideRepo.mu.Unlock()

	s.BookingRepo.mu.Lock()
	s.BookingRepo.bookings = snap.bookings
	if s.BookingRepo.bookings == nil {
		s.BookingRepo.bookings = make([]*domain.Booking, 0)
	}
	s.BookingRepo.mu.Unlock()

	s.NotificationRepo.mu.Lock()
	s.NotificationRepo.notifications = snap.notifications
	if s.NotificationRepo.notifications == nil {
		s.NotificationRepo.notifications = make([]*domain.Notification, 0)
	}
	s.NotificationRepo.mu.Unlock()
}

// mockTx writes through to the live repositories. Rollback puts back the
// snapshot taken at BeginTx.
type mockTx struct {
	store *MockStore
	snap  storeSnapshot
	done  bool
}

func (t *mockTx) Users() repository.UserRepository                 { return t.store.UserRepo }
func (t *mockTx) Rides() repository.RideRepository                 { return t.store.RideRepo }
func (t *mockTx) Bookings() repository.BookingRepository           { return t.store.BookingRepo }
func (t *mockTx) Notifications() repository.NotificationRepository { return t.store.NotificationRepo }

func (t *mockTx) Commit() error {
	atomic.AddInt32(&t.store.CommitCallCount, 1)
	if t.store.CommitError != nil {
		// A failed commit leaves nothing applied.
		t.store.restore(t.snap)
		t.done = true
		return t.store.CommitError
	}
	t.done = true
	return nil
}

func (t *mockTx) Rollback() error {
	if t.done {
		return errors.New("mock: transaction already finished")
	}
	atomic.AddInt32(&t.store.RollbackCallCount, 1)
	t.store.restore(t.snap)
	t.done = true
	return nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:ride:" + rideID
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseRideLock(ctx context.Context, rideID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:ride:"+rideID)
	return nil
}

// IsLocked checks whether a ride is locked (for test assertions).
func (m *MockLockStore) IsLocked(rideID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:ride:"+rideID]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK CACHE STORE
// ──────────────────────────────────────────────

// MockCacheStore is a mock implementation of CacheStoreInterface.
type MockCacheStore struct {
	mu      sync.RWMutex
	entries map[string][]redis.CachedRide

	// Counters
	GetCallCount        int32
	SetCallCount        int32
	InvalidateCallCount int32

	// Error injection
	GetError error
	SetError error
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		entries: make(map[string][]redis.CachedRide),
	}
}

func (m *MockCacheStore) GetSearch(ctx context.Context, key string) ([]redis.CachedRide, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rides, ok := m.entries[key]
	if !ok {
		return nil, nil // Cache miss.
	}
	return rides, nil
}

func (m *MockCacheStore) SetSearch(ctx context.Context, key string, rides []redis.CachedRide) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = rides
	return nil
}

func (m *MockCacheStore) InvalidateSearches(ctx context.Context) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string][]redis.CachedRide)
	return nil
}

// HasEntry checks whether a cache key is populated.
func (m *MockCacheStore) HasEntry(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[key]
	return ok
}

// ──────────────────────────────────────────────
// MOCK PUBLISHER
// ──────────────────────────────────────────────

// PublishedMessage records one push to a user's live channel.
type PublishedMessage struct {
	UserID  string
	Payload map[string]any
}

// MockPublisher is a mock implementation of PublisherInterface.
type MockPublisher struct {
	mu       sync.Mutex
	messages []PublishedMessage

	// Counters
	PublishCallCount int32

	// Error injection
	PublishError error
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		messages: make([]PublishedMessage, 0),
	}
}

func (m *MockPublisher) Publish(ctx context.Context, userID string, payload map[string]any) error {
	atomic.AddInt32(&m.PublishCallCount, 1)
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, PublishedMessage{UserID: userID, Payload: payload})
	return nil
}

// MessagesFor returns the pushes addressed to a user.
func (m *MockPublisher) MessagesFor(userID string) []PublishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]PublishedMessage, 0)
	for _, msg := range m.messages {
		if msg.UserID == userID {
			result = append(result, msg)
		}
	}
	return result
}

// CountMessages returns the number of published messages.
func (m *MockPublisher) CountMessages() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// ──────────────────────────────────────────────
// MOCK MAILER
// ──────────────────────────────────────────────

// SentMail records one outbound message.
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// MockMailer is a mock implementation of service.Mailer.
type MockMailer struct {
	mu   sync.Mutex
	sent []SentMail

	// Counters
	SendCallCount int32

	// Error injection
	SendError error
}

// NewMockMailer creates a new mock mailer.
func NewMockMailer() *MockMailer {
	return &MockMailer{
		sent: make([]SentMail, 0),
	}
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	atomic.AddInt32(&m.SendCallCount, 1)
	if m.SendError != nil {
		return m.SendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}

// SentTo returns the messages delivered to an address.
func (m *MockMailer) SentTo(address string) []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]SentMail, 0)
	for _, mail := range m.sent {
		if mail.To == address {
			result = append(result, mail)
		}
	}
	return result
}

// LastMail returns the most recently sent message, or nil.
func (m *MockMailer) LastMail() *SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return nil
	}
	return &m.sent[len(m.sent)-1]
}

// CountSent returns the number of sent messages.
func (m *MockMailer) CountSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBFailure = errors.New("mock: database failure")
	ErrMockPushDown  = errors.New("mock: push channel down")
	ErrMockMailDown  = errors.New("mock: mail relay down")
)
