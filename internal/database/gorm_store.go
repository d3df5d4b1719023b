package database

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/chachabrian/tripguard-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store through gorm. Production runs on PostgreSQL.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", translate(err))
	}
	return nil
}

func (s *GormStore) getUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "username = ?", username)
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

func (s *GormStore) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	return s.getUser(ctx, "phone_no = ?", phone)
}

func (s *GormStore) CompanionTripIDs(ctx context.Context, username string) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.TripCompanion{}).
		Where("username = ? AND active = ?", username, true).
		Order("trip_id").
		Pluck("trip_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("companion trips: %w", err)
	}
	return ids, nil
}

func (s *GormStore) SetVerificationOTP(ctx context.Context, email, otp string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Update("otp", otp)
	if result.Error != nil {
		return fmt.Errorf("set otp: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) VerifyUser(ctx context.Context, email, otp, nextOTP string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND otp = ?", email, otp).
		Updates(map[string]interface{}{"is_verified": true, "otp": nextOTP})
	if result.Error != nil {
		return fmt.Errorf("verify user: %w", result.Error)
	}
	if result.RowsAffected != 1 {
		return ErrInvalidOTP
	}
	return nil
}

func (s *GormStore) ResetPassword(ctx context.Context, email, otp, passwordHash, nextOTP string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND otp = ?", email, otp).
		Updates(map[string]interface{}{"password_hash": passwordHash, "otp": nextOTP})
	if result.Error != nil {
		return fmt.Errorf("reset password: %w", result.Error)
	}
	if result.RowsAffected != 1 {
		return ErrInvalidOTP
	}
	return nil
}

func (s *GormStore) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return fmt.Errorf("update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) SetDeviceToken(ctx context.Context, userID uint, token string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("device_token", token)
	if result.Error != nil {
		return fmt.Errorf("set device token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) StartTrip(ctx context.Context, trip *models.Trip, companions []string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claimed := tx.Model(&models.User{}).
			Where("username = ? AND is_traveler = ?", trip.Username, false).
			Update("is_traveler", true)
		if claimed.Error != nil {
			return claimed.Error
		}
		if claimed.RowsAffected != 1 {
			return ErrAlreadyTraveling
		}

		if len(companions) > 0 {
			var found []string
			if err := tx.Model(&models.User{}).
				Where("username IN ?", companions).
				Pluck("username", &found).Error; err != nil {
				return err
			}
			if missing := firstMissing(companions, found); missing != "" {
				return &CompanionNotFoundError{Username: missing}
			}
		}

		trip.Companions = make([]models.TripCompanion, 0, len(companions))
		for _, name := range companions {
			trip.Companions = append(trip.Companions, models.TripCompanion{Username: name, Active: true})
		}
		if err := tx.Create(trip).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyTraveling
			}
			return err
		}

		if len(companions) > 0 {
			if err := tx.Model(&models.User{}).
				Where("username IN ?", companions).
				Update("is_traveler_companion", true).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var notFound *CompanionNotFoundError
		if errors.Is(err, ErrAlreadyTraveling) || errors.As(err, &notFound) {
			return err
		}
		return fmt.Errorf("start trip: %w", err)
	}
	return nil
}

func firstMissing(want, have []string) string {
	seen := make(map[string]struct{}, len(have))
	for _, h := range have {
		seen[h] = struct{}{}
	}
	for _, w := range want {
		if _, ok := seen[w]; !ok {
			return w
		}
	}
	return ""
}

func (s *GormStore) GetTrip(ctx context.Context, id uint) (*models.Trip, error) {
	var trip models.Trip
	err := s.db.WithContext(ctx).
		Preload("Companions", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Feedbacks", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&trip, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &trip, nil
}

func (s *GormStore) listTrips(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]models.Trip, error) {
	var trips []models.Trip
	err := s.db.WithContext(ctx).
		Scopes(scope).
		Preload("Companions", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Feedbacks", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("id").
		Find(&trips).Error
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	return trips, nil
}

func (s *GormStore) ListTrips(ctx context.Context) ([]models.Trip, error) {
	return s.listTrips(ctx, func(db *gorm.DB) *gorm.DB { return db })
}

func (s *GormStore) ListTripsByUser(ctx context.Context, username string) ([]models.Trip, error) {
	return s.listTrips(ctx, func(db *gorm.DB) *gorm.DB { return db.Where("username = ?", username) })
}

func (s *GormStore) UpdateTripLocation(ctx context.Context, id uint, current models.Coordinates) error {
	result := s.db.WithContext(ctx).Model(&models.Trip{}).
		Where("id = ? AND status = ?", id, models.TripStatusOngoing).
		Updates(map[string]interface{}{
			"current_latitude":  current.Latitude,
			"current_longitude": current.Longitude,
		})
	if result.Error != nil {
		return fmt.Errorf("update trip location: %w", result.Error)
	}
	if result.RowsAffected != 1 {
		return ErrNoOngoingTrip
	}
	return nil
}

func (s *GormStore) CompleteTrip(ctx context.Context, id uint, otp string) (*models.Trip, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trip models.Trip
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&trip, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoOngoingTrip
			}
			return err
		}
		if !trip.IsOngoing() {
			return ErrNoOngoingTrip
		}
		if subtle.ConstantTimeCompare([]byte(trip.TripOTP), []byte(otp)) != 1 {
			return ErrInvalidOTP
		}

		completed := tx.Model(&models.Trip{}).
			Where("id = ? AND status = ?", id, models.TripStatusOngoing).
			Update("status", models.TripStatusCompleted)
		if completed.Error != nil {
			return completed.Error
		}
		if completed.RowsAffected != 1 {
			return ErrNoOngoingTrip
		}

		if err := tx.Model(&models.User{}).
			Where("username = ?", trip.Username).
			Update("is_traveler", false).Error; err != nil {
			return err
		}

		var companions []string
		if err := tx.Model(&models.TripCompanion{}).
			Where("trip_id = ?", id).
			Pluck("username", &companions).Error; err != nil {
			return err
		}
		if len(companions) == 0 {
			return nil
		}

		if err := tx.Model(&models.TripCompanion{}).
			Where("trip_id = ?", id).
			Update("active", false).Error; err != nil {
			return err
		}

		return tx.Exec(`UPDATE users SET is_traveler_companion = false
			WHERE username IN ? AND NOT EXISTS (
				SELECT 1 FROM trip_companions tc
				WHERE tc.username = users.username AND tc.active = true
			)`, companions).Error
	})
	if err != nil {
		if errors.Is(err, ErrNoOngoingTrip) || errors.Is(err, ErrInvalidOTP) {
			return nil, err
		}
		return nil, fmt.Errorf("complete trip: %w", err)
	}
	return s.GetTrip(ctx, id)
}

func (s *GormStore) AddFeedback(ctx context.Context, feedback *models.Feedback) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Trip{}, feedback.TripID).Error; err != nil {
			return translate(err)
		}
		return tx.Create(feedback).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("add feedback: %w", err)
	}
	return nil
}

func (s *GormStore) ListFeedbacks(ctx context.Context) ([]models.Feedback, error) {
	var feedbacks []models.Feedback
	if err := s.db.WithContext(ctx).Order("trip_id, id").Find(&feedbacks).Error; err != nil {
		return nil, fmt.Errorf("list feedbacks: %w", err)
	}
	return feedbacks, nil
}

func (s *GormStore) ListFeedbacksByUser(ctx context.Context, username string) ([]models.Feedback, error) {
	var feedbacks []models.Feedback
	err := s.db.WithContext(ctx).
		Where("username = ?", username).
		Order("trip_id, id").
		Find(&feedbacks).Error
	if err != nil {
		return nil, fmt.Errorf("list feedbacks: %w", err)
	}
	return feedbacks, nil
}
