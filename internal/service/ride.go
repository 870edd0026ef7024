package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tripbuddy/internal/domain"
	"tripbuddy/internal/redis"
	"tripbuddy/internal/repository"
)

// RideService handles posting and browsing ride offers.
type RideService struct {
	store    repository.Store
	cache    redis.CacheStoreInterface
	notifier *NotificationService
	now      func() time.Time
}

// NewRideService creates a new RideService. cache may be nil to disable
// search caching.
func NewRideService(store repository.Store, cache redis.CacheStoreInterface, notifier *NotificationService) *RideService {
	return &RideService{
		store:    store,
		cache:    cache,
		notifier: notifier,
		now:      time.Now,
	}
}

// PostRideRequest contains the parameters for posting a ride.
type PostRideRequest struct {
	CreatorID     string
	StartLocation string
	EndLocation   string
	Price         float64
	Seats         int
	Date          string // YYYY-MM-DD
	Time          string // free text, e.g. "07:30" or "early morning"
	Description   string
}

// Post creates a ride offer. The creator must have activated ride offering;
// seats become the mutable remaining capacity from the first booking on.
func (s *RideService) Post(ctx context.Context, req PostRideRequest) (*domain.Ride, error) {
	if req.StartLocation == "" || req.EndLocation == "" {
		return nil, ErrInvalidLocation
	}
	if req.Seats < 1 {
		return nil, ErrInvalidSeats
	}
	if req.Price < 0 {
		return nil, ErrInvalidPrice
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	creator, err := s.store.Users().GetByID(ctx, req.CreatorID)
	if err != nil {
		return nil, err
	}
	if !creator.CanOfferRides {
		return nil, ErrOfferingNotActivated
	}

	ride := &domain.Ride{
		ID:            uuid.New().String(),
		CreatorID:     creator.ID,
		StartLocation: req.StartLocation,
		EndLocation:   req.EndLocation,
		Price:         req.Price,
		Seats:         req.Seats,
		SeatsPosted:   req.Seats,
		Date:          date,
		Time:          req.Time,
		Description:   req.Description,
		Status:        domain.RideStatusActive,
		CreatedAt:     s.now(),
	}

	if err := s.store.Rides().Create(ctx, ride); err != nil {
		return nil, err
	}

	s.invalidateSearchCache(ctx)

	s.notifier.notifyBestEffort(ctx, NotifyRequest{
		RecipientID: creator.ID,
		Message: fmt.Sprintf("Your ride from %s to %s on %s is live with %d seat(s).",
			ride.StartLocation, ride.EndLocation, ride.Date.Format("2006-01-02"), ride.Seats),
		Type:   domain.NotificationRidePosted,
		RideID: ride.ID,
	})

	return ride, nil
}

// Search returns active rides with remaining seats, excluding the viewer's
// own rides, optionally filtered by start and end location substrings.
// Results are cached briefly per viewer and filter combination.
func (s *RideService) Search(ctx context.Context, viewerID, from, to string) ([]*domain.Ride, error) {
	viewer, err := s.store.Users().GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if !viewer.CanFindRides {
		return nil, ErrFindingNotActivated
	}

	cacheKey := redis.SearchKey(viewerID, from, to)
	if s.cache != nil {
		if cached, err := s.cache.GetSearch(ctx, cacheKey); err == nil && cached != nil {
			return fromCached(cached), nil
		}
	}

	rides, err := s.store.Rides().Search(ctx, repository.RideSearch{
		ViewerID: viewerID,
		From:     from,
		To:       to,
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetSearch(ctx, cacheKey, toCached(rides)); err != nil {
			logrus.WithError(err).Debug("ride search cache write failed")
		}
	}

	return rides, nil
}

// Get retrieves a ride by ID.
func (s *RideService) Get(ctx context.Context, id string) (*domain.Ride, error) {
	return s.store.Rides().GetByID(ctx, id)
}

func (s *RideService) invalidateSearchCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSearches(ctx); err != nil {
		logrus.WithError(err).Debug("ride search cache invalidation failed")
	}
}

func toCached(rides []*domain.Ride) []redis.CachedRide {
	cached := make([]redis.CachedRide, 0, len(rides))
	for _, r := range rides {
		cached = append(cached, redis.CachedRide{
			ID:            r.ID,
			CreatorID:     r.CreatorID,
			StartLocation: r.StartLocation,
			EndLocation:   r.EndLocation,
			Price:         r.Price,
			Seats:         r.Seats,
			SeatsPosted:   r.SeatsPosted,
			Date:          r.Date.Format("2006-01-02"),
			Time:          r.Time,
			Description:   r.Description,
			CreatedAt:     r.CreatedAt,
		})
	}
	return cached
}

func fromCached(cached []redis.CachedRide) []*domain.Ride {
	rides := make([]*domain.Ride, 0, len(cached))
	for _, c := range cached {
		date, _ := time.Parse("2006-01-02", c.Date)
		rides = append(rides, &domain.Ride{
			ID:            c.ID,
			CreatorID:     c.CreatorID,
			StartLocation: c.StartLocation,
			EndLocation:   c.EndLocation,
			Price:         c.Price,
			Seats:         c.Seats,
			SeatsPosted:   c.SeatsPosted,
			Date:          date,
			Time:          c.Time,
			Description:   c.Description,
			Status:        domain.RideStatusActive,
			CreatedAt:     c.CreatedAt,
		})
	}
	return rides
}
