package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chachabrian/tripguard-backend/internal/database"
	"github.com/chachabrian/tripguard-backend/internal/models"
)

var _ database.Store = (*Store)(nil)

// Store is an in-memory database.Store with the same conditional-update
// semantics as the gorm implementation.
type Store struct {
	mu         sync.Mutex
	users      map[uint]*models.User
	trips      map[uint]*models.Trip
	companions []models.TripCompanion
	feedbacks  []models.Feedback
	nextID     uint

	// Err, when set, is returned by every call.
	Err error
}

func NewStore() *Store {
	return &Store{
		users: make(map[uint]*models.User),
		trips: make(map[uint]*models.Trip),
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email || u.PhoneNo == user.PhoneNo {
			return database.ErrDuplicate
		}
	}
	now := time.Now()
	user.ID = s.id()
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *Store) findUser(match func(*models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *Store) userByUsername(username string) *models.User {
	for _, u := range s.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (s *Store) userByEmail(email string) *models.User {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.ID == id })
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Username == username })
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Email == email })
}

func (s *Store) GetUserByPhone(_ context.Context, phone string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.PhoneNo == phone })
}

func (s *Store) CompanionTripIDs(_ context.Context, username string) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	ids := []uint{}
	for _, c := range s.companions {
		if c.Username == username && c.Active {
			ids = append(ids, c.TripID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) SetVerificationOTP(_ context.Context, email, otp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u := s.userByEmail(email)
	if u == nil {
		return database.ErrNotFound
	}
	u.VerificationOTP = otp
	return nil
}

func (s *Store) VerifyUser(_ context.Context, email, otp, nextOTP string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u := s.userByEmail(email)
	if u == nil || u.VerificationOTP != otp {
		return database.ErrInvalidOTP
	}
	u.IsVerified = true
	u.VerificationOTP = nextOTP
	return nil
}

func (s *Store) ResetPassword(_ context.Context, email, otp, passwordHash, nextOTP string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u := s.userByEmail(email)
	if u == nil || u.VerificationOTP != otp {
		return database.ErrInvalidOTP
	}
	u.PasswordHash = passwordHash
	u.VerificationOTP = nextOTP
	return nil
}

func (s *Store) UpdatePassword(_ context.Context, userID uint, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.users[userID]
	if !ok {
		return database.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *Store) SetDeviceToken(_ context.Context, userID uint, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.users[userID]
	if !ok {
		return database.ErrNotFound
	}
	u.DeviceToken = token
	return nil
}

func (s *Store) StartTrip(_ context.Context, trip *models.Trip, companions []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	owner := s.userByUsername(trip.Username)
	if owner == nil || owner.IsTraveler {
		return database.ErrAlreadyTraveling
	}
	linked := make([]*models.User, 0, len(companions))
	for _, name := range companions {
		u := s.userByUsername(name)
		if u == nil {
			return &database.CompanionNotFoundError{Username: name}
		}
		linked = append(linked, u)
	}

	now := time.Now()
	trip.ID = s.id()
	trip.CreatedAt, trip.UpdatedAt = now, now
	if trip.Status == "" {
		trip.Status = models.TripStatusOngoing
	}
	trip.Companions = make([]models.TripCompanion, 0, len(companions))
	for _, name := range companions {
		link := models.TripCompanion{ID: s.id(), TripID: trip.ID, Username: name, Active: true, CreatedAt: now}
		trip.Companions = append(trip.Companions, link)
		s.companions = append(s.companions, link)
	}

	owner.IsTraveler = true
	for _, u := range linked {
		u.IsTravelerCompanion = true
	}
	stored := *trip
	stored.Companions = nil
	stored.Feedbacks = nil
	s.trips[trip.ID] = &stored
	return nil
}

// hydrate returns a copy of the stored trip with its links and feedback.
func (s *Store) hydrate(t *models.Trip) models.Trip {
	cp := *t
	cp.Companions = []models.TripCompanion{}
	for _, c := range s.companions {
		if c.TripID == t.ID {
			cp.Companions = append(cp.Companions, c)
		}
	}
	cp.Feedbacks = []models.Feedback{}
	for _, f := range s.feedbacks {
		if f.TripID == t.ID {
			cp.Feedbacks = append(cp.Feedbacks, f)
		}
	}
	return cp
}

func (s *Store) GetTrip(_ context.Context, id uint) (*models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	t, ok := s.trips[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	trip := s.hydrate(t)
	return &trip, nil
}

func (s *Store) listTrips(match func(*models.Trip) bool) ([]models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	trips := []models.Trip{}
	for _, t := range s.trips {
		if match(t) {
			trips = append(trips, s.hydrate(t))
		}
	}
	sort.Slice(trips, func(i, j int) bool { return trips[i].ID < trips[j].ID })
	return trips, nil
}

func (s *Store) ListTrips(_ context.Context) ([]models.Trip, error) {
	return s.listTrips(func(*models.Trip) bool { return true })
}

func (s *Store) ListTripsByUser(_ context.Context, username string) ([]models.Trip, error) {
	return s.listTrips(func(t *models.Trip) bool { return t.Username == username })
}

func (s *Store) UpdateTripLocation(_ context.Context, id uint, current models.Coordinates) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	t, ok := s.trips[id]
	if !ok || !t.IsOngoing() {
		return database.ErrNoOngoingTrip
	}
	t.Current = current
	t.UpdatedAt = time.Now()
	return nil
}

func (s *Store) CompleteTrip(_ context.Context, id uint, otp string) (*models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	t, ok := s.trips[id]
	if !ok || !t.IsOngoing() {
		return nil, database.ErrNoOngoingTrip
	}
	if t.TripOTP != otp {
		return nil, database.ErrInvalidOTP
	}

	t.Status = models.TripStatusCompleted
	t.UpdatedAt = time.Now()
	if owner := s.userByUsername(t.Username); owner != nil {
		owner.IsTraveler = false
	}

	released := map[string]bool{}
	for i := range s.companions {
		if s.companions[i].TripID == id {
			s.companions[i].Active = false
			released[s.companions[i].Username] = true
		}
	}
	for _, c := range s.companions {
		if c.Active {
			delete(released, c.Username)
		}
	}
	for name := range released {
		if u := s.userByUsername(name); u != nil {
			u.IsTravelerCompanion = false
		}
	}

	trip := s.hydrate(t)
	return &trip, nil
}

func (s *Store) AddFeedback(_ context.Context, feedback *models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.trips[feedback.TripID]; !ok {
		return database.ErrNotFound
	}
	feedback.ID = s.id()
	feedback.CreatedAt = time.Now()
	s.feedbacks = append(s.feedbacks, *feedback)
	return nil
}

func (s *Store) ListFeedbacks(_ context.Context) ([]models.Feedback, error) {
	return s.filterFeedbacks(func(models.Feedback) bool { return true })
}

func (s *Store) ListFeedbacksByUser(_ context.Context, username string) ([]models.Feedback, error) {
	return s.filterFeedbacks(func(f models.Feedback) bool { return f.Username == username })
}

func (s *Store) filterFeedbacks(match func(models.Feedback) bool) ([]models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.Feedback{}
	for _, f := range s.feedbacks {
		if match(f) {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TripID < out[j].TripID })
	return out, nil
}
