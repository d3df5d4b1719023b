package handlers

import (
	"context"
	"time"

	"github.com/chachabrian/tripguard-backend/internal/database"
	"github.com/chachabrian/tripguard-backend/internal/models"
	"github.com/chachabrian/tripguard-backend/internal/services"
)

// LocationCache is the live-position cache consulted by the trip handlers.
// services.TripCache implements it.
type LocationCache interface {
	SetTripLocation(ctx context.Context, tripID uint, loc models.Coordinates) error
	GetTripLocation(ctx context.Context, tripID uint) (models.Coordinates, error)
	ClearTripLocation(ctx context.Context, tripID uint) error
	PublishTripUpdate(ctx context.Context, event services.TripEvent) error
}

// Deps carries everything the handlers need.
type Deps struct {
	Store     database.Store
	Notifier  *services.Notifier
	Locations LocationCache // optional
	Hub       *services.Hub // optional
	Reports   services.ReportStorage

	JWTSecret  string
	TokenTTL   time.Duration
	BaseURL    string
	GeofenceKm float64
	// PasswordCost is the bcrypt cost; 0 means bcrypt.DefaultCost.
	PasswordCost int
}

func (d *Deps) tripLink(tripID uint) string {
	return d.BaseURL + "/api/trips/viewTrip/" + uintToString(tripID)
}
