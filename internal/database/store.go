package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/chachabrian/tripguard-backend/internal/models"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("record already exists")
	ErrAlreadyTraveling = errors.New("user already has an ongoing trip")
	ErrNoOngoingTrip    = errors.New("ongoing trip not found")
	ErrInvalidOTP       = errors.New("invalid otp")
)

// CompanionNotFoundError is returned by StartTrip when a listed companion
// has no account.
type CompanionNotFoundError struct {
	Username string
}

func (e *CompanionNotFoundError) Error() string {
	return fmt.Sprintf("travel companion %s doesn't exist", e.Username)
}

// Store is the persistence boundary used by handlers and middleware.
// GormStore backs it in production; internal/mock provides an in-memory
// implementation for tests.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	// CompanionTripIDs lists the trips username is an active companion for.
	CompanionTripIDs(ctx context.Context, username string) ([]uint, error)

	SetVerificationOTP(ctx context.Context, email, otp string) error
	// VerifyUser marks the account verified and rotates its code, provided
	// the stored code still equals otp. Otherwise ErrInvalidOTP.
	VerifyUser(ctx context.Context, email, otp, nextOTP string) error
	// ResetPassword swaps the password hash and rotates the code under the
	// same condition as VerifyUser.
	ResetPassword(ctx context.Context, email, otp, passwordHash, nextOTP string) error
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
	SetDeviceToken(ctx context.Context, userID uint, token string) error

	// StartTrip atomically flags the owner as traveling, persists the trip
	// with its companion links and flags the companions.
	StartTrip(ctx context.Context, trip *models.Trip, companions []string) error
	GetTrip(ctx context.Context, id uint) (*models.Trip, error)
	ListTrips(ctx context.Context) ([]models.Trip, error)
	ListTripsByUser(ctx context.Context, username string) ([]models.Trip, error)
	UpdateTripLocation(ctx context.Context, id uint, current models.Coordinates) error
	// CompleteTrip checks the completion code and, in one transaction,
	// completes the trip and releases the owner and companions.
	CompleteTrip(ctx context.Context, id uint, otp string) (*models.Trip, error)

	AddFeedback(ctx context.Context, feedback *models.Feedback) error
	ListFeedbacks(ctx context.Context) ([]models.Feedback, error)
	ListFeedbacksByUser(ctx context.Context, username string) ([]models.Feedback, error)
}
