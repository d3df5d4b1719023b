package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/chachabrian/tripguard-backend/internal/database"
	"github.com/chachabrian/tripguard-backend/internal/middleware"
	"github.com/chachabrian/tripguard-backend/internal/models"
	"github.com/chachabrian/tripguard-backend/internal/services"
	"github.com/chachabrian/tripguard-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

type CreateTripInput struct {
	TravelerCompanions   []string `json:"travelerCompanions"`
	SourceLatitude       *float64 `json:"sourceLatitude" binding:"required,gte=-90,lte=90"`
	SourceLongitude      *float64 `json:"sourceLongitude" binding:"required,gte=-180,lte=180"`
	DestinationLatitude  *float64 `json:"destinationLatitude" binding:"required,gte=-90,lte=90"`
	DestinationLongitude *float64 `json:"destinationLongitude" binding:"required,gte=-180,lte=180"`
}

type UpdateLocationInput struct {
	CurrentLatitude  *float64 `json:"currentLatitude" binding:"required,gte=-90,lte=90"`
	CurrentLongitude *float64 `json:"currentLongitude" binding:"required,gte=-180,lte=180"`
}

type CompleteTripInput struct {
	TripOTP string `json:"tripOTP" binding:"required"`
}

type FeedbackInput struct {
	Feedback string `json:"feedback" binding:"required"`
}

// LocationUpdate is the payload of location events.
type LocationUpdate struct {
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	RemainingDistanceKm float64 `json:"remainingDistanceKm"`
}

// normalizeCompanions trims names, drops blanks and duplicates, keeping order.
func normalizeCompanions(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// publish pushes a trip event to live-feed subscribers and Redis.
func (d *Deps) publish(ctx context.Context, event services.TripEvent) {
	if d.Hub != nil {
		d.Hub.BroadcastToTrip(event.TripID, event)
	}
	if d.Locations != nil {
		if err := d.Locations.PublishTripUpdate(ctx, event); err != nil {
			log.Printf("Error publishing %s for trip %d: %v", event.Type, event.TripID, err)
		}
	}
}

// notifyCompanions messages every companion of the trip. Failures are logged.
func (d *Deps) notifyCompanions(ctx context.Context, trip *models.Trip, title, body string) {
	data := map[string]string{"tripId": uintToString(trip.ID)}
	for _, name := range trip.CompanionUsernames() {
		companion, err := d.Store.GetUserByUsername(ctx, name)
		if err != nil {
			log.Printf("Could not notify companion %s of trip %d: %v", name, trip.ID, err)
			continue
		}
		d.Notifier.NotifyUser(ctx, companion, title, body, data)
	}
}

// CreateTrip starts a trip for the caller and shares it with the companions.
func CreateTrip(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateTripInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		id, _ := middleware.IdentityFrom(c)
		ctx := c.Request.Context()

		companions := normalizeCompanions(input.TravelerCompanions)
		for _, name := range companions {
			if name == id.Username {
				utils.Fail(c, http.StatusBadRequest, "You cannot add yourself as a travel companion")
				return
			}
		}

		user, err := d.Store.GetUserByID(ctx, id.UserID)
		if err != nil {
			log.Printf("Error creating trip: %v", err)
			utils.InternalError(c)
			return
		}
		if user.IsTraveler {
			utils.Fail(c, http.StatusBadRequest, "You already have an ongoing trip")
			return
		}

		otp, err := utils.GenerateOTP()
		if err != nil {
			log.Printf("Error creating trip: %v", err)
			utils.InternalError(c)
			return
		}

		source := models.Coordinates{Latitude: *input.SourceLatitude, Longitude: *input.SourceLongitude}
		trip := &models.Trip{
			Username:          id.Username,
			DriverName:        models.DefaultDriverName,
			DriverPhoneNumber: models.DefaultDriverPhoneNumber,
			CabNumber:         models.DefaultCabNumber,
			Status:            models.TripStatusOngoing,
			TripOTP:           otp,
			Source:            source,
			Destination:       models.Coordinates{Latitude: *input.DestinationLatitude, Longitude: *input.DestinationLongitude},
			Current:           source,
		}

		if err := d.Store.StartTrip(ctx, trip, companions); err != nil {
			var missing *database.CompanionNotFoundError
			switch {
			case errors.Is(err, database.ErrAlreadyTraveling):
				utils.Fail(c, http.StatusBadRequest, "You already have an ongoing trip")
			case errors.As(err, &missing):
				utils.Fail(c, http.StatusBadRequest, fmt.Sprintf("Travel companion %s doesn't exist.", missing.Username))
			default:
				log.Printf("Error creating trip: %v", err)
				utils.InternalError(c)
			}
			return
		}

		link := d.tripLink(trip.ID)
		if d.Locations != nil {
			if err := d.Locations.SetTripLocation(ctx, trip.ID, trip.Current); err != nil {
				log.Printf("Error caching location of trip %d: %v", trip.ID, err)
			}
		}
		if len(companions) > 0 {
			d.notifyCompanions(ctx, trip, "Trip started",
				fmt.Sprintf("Your friend %s has started a trip with us. View details: %s", id.Username, link))
			log.Printf("Details of trip ID %d shared with travel companions.", trip.ID)
		}

		log.Printf("Trip for %s with trip ID %d created successfully.", id.Username, trip.ID)
		utils.Success(c, http.StatusCreated, "Trip created successfully", gin.H{
			"tripId":   trip.ID,
			"tripLink": link,
		})
	}
}

// ViewTrip shows an ongoing trip to its owner or companions.
func ViewTrip(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		trip, _ := middleware.TripFrom(c)
		if !trip.IsOngoing() {
			utils.Fail(c, http.StatusBadRequest, "This link has expired because the trip is completed")
			return
		}

		details := trip.Details()
		if d.Locations != nil {
			loc, err := d.Locations.GetTripLocation(c.Request.Context(), trip.ID)
			switch {
			case err == nil:
				details.CurrentLatitude = loc.Latitude
				details.CurrentLongitude = loc.Longitude
			case !errors.Is(err, services.ErrCacheMiss):
				log.Printf("Error reading cached location of trip %d: %v", trip.ID, err)
			}
		}

		utils.Success(c, http.StatusOK, "Trip details retrieved successfully", details)
	}
}

// ViewAllTrips lists the caller's trips.
func ViewAllTrips(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := middleware.IdentityFrom(c)

		trips, err := d.Store.ListTripsByUser(c.Request.Context(), id.Username)
		if err != nil {
			log.Printf("Error retrieving trips: %v", err)
			utils.InternalError(c)
			return
		}

		views := make([]models.TripDetails, 0, len(trips))
		for i := range trips {
			views = append(views, trips[i].Details())
		}
		utils.Success(c, http.StatusOK, "Trips retrieved successfully", gin.H{"trips": views})
	}
}

// UpdateLiveCoordinates records the traveler's position and alerts the
// companions once the destination is inside the geofence.
func UpdateLiveCoordinates(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateLocationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		id, _ := middleware.IdentityFrom(c)
		trip, _ := middleware.TripFrom(c)
		ctx := c.Request.Context()

		if !trip.IsOngoing() {
			utils.Fail(c, http.StatusNotFound, "Ongoing trip not found for user")
			return
		}

		current := models.Coordinates{Latitude: *input.CurrentLatitude, Longitude: *input.CurrentLongitude}
		if err := d.Store.UpdateTripLocation(ctx, trip.ID, current); err != nil {
			if errors.Is(err, database.ErrNoOngoingTrip) {
				utils.Fail(c, http.StatusNotFound, "Ongoing trip not found for user")
				return
			}
			log.Printf("Error updating live coordinates: %v", err)
			utils.InternalError(c)
			return
		}
		trip.Current = current

		remaining := utils.HaversineDistance(current.Latitude, current.Longitude,
			trip.Destination.Latitude, trip.Destination.Longitude)

		if d.Locations != nil {
			if err := d.Locations.SetTripLocation(ctx, trip.ID, current); err != nil {
				log.Printf("Error caching location of trip %d: %v", trip.ID, err)
				// A stale entry would shadow the row just written.
				if err := d.Locations.ClearTripLocation(ctx, trip.ID); err != nil {
					log.Printf("Error clearing cached location of trip %d: %v", trip.ID, err)
				}
			}
		}
		d.publish(ctx, services.NewTripEvent(services.EventLocationUpdate, trip.ID, LocationUpdate{
			Latitude:            current.Latitude,
			Longitude:           current.Longitude,
			RemainingDistanceKm: remaining,
		}))

		if utils.IsWithinGeofence(remaining, d.GeofenceKm) {
			meters := utils.KmToMeters(remaining)
			d.notifyCompanions(ctx, trip, "Almost there",
				fmt.Sprintf("%s is about to reach destination location and is only %d meters away.", id.Username, meters))
			d.publish(ctx, services.NewTripEvent(services.EventGeofence, trip.ID, gin.H{"remainingMeters": meters}))
		}

		log.Printf("Updated live coordinates successfully for trip ID %d", trip.ID)
		utils.Success(c, http.StatusOK, "Current location updated successfully", trip.Details())
	}
}

// GetTripCompletionOTP sends the completion code to the traveler and returns it.
func GetTripCompletionOTP(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := middleware.IdentityFrom(c)
		trip, _ := middleware.TripFrom(c)

		if !trip.IsOngoing() {
			utils.Fail(c, http.StatusBadRequest, "This trip is already completed")
			return
		}

		user, err := d.Store.GetUserByID(c.Request.Context(), id.UserID)
		if err != nil {
			log.Printf("Error fetching trip completion OTP: %v", err)
			utils.InternalError(c)
			return
		}
		d.Notifier.Message(user.PhoneNo, fmt.Sprintf("Your OTP for trip with trip ID %d is %s.", trip.ID, trip.TripOTP))

		utils.Success(c, http.StatusOK, "Successfully fetched trip completion OTP", gin.H{"tripOTP": trip.TripOTP})
	}
}

// CompleteTrip ends the trip when the completion code matches.
func CompleteTrip(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CompleteTripInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		id, _ := middleware.IdentityFrom(c)
		trip, _ := middleware.TripFrom(c)
		ctx := c.Request.Context()

		completed, err := d.Store.CompleteTrip(ctx, trip.ID, strings.TrimSpace(input.TripOTP))
		switch {
		case errors.Is(err, database.ErrNoOngoingTrip):
			utils.Fail(c, http.StatusNotFound, "Ongoing trip not found for user")
			return
		case errors.Is(err, database.ErrInvalidOTP):
			log.Printf("Invalid OTP for trip ID %d", trip.ID)
			utils.Fail(c, http.StatusUnauthorized, "Invalid OTP")
			return
		case err != nil:
			log.Printf("Error completing trip: %v", err)
			utils.InternalError(c)
			return
		}

		if d.Locations != nil {
			if err := d.Locations.ClearTripLocation(ctx, completed.ID); err != nil {
				log.Printf("Error clearing cached location of trip %d: %v", completed.ID, err)
			}
		}
		d.notifyCompanions(ctx, completed, "Trip completed",
			fmt.Sprintf("Trip for %s has completed successfully. Thank you for riding with us.", id.Username))
		d.publish(ctx, services.NewTripEvent(services.EventTripCompleted, completed.ID, nil))

		log.Printf("Trip with %s completed successfully.", id.Username)
		utils.Success(c, http.StatusOK, "Trip completed successfully", completed.AdminView())
	}
}

// AddFeedbackToTrip appends the caller's feedback to the trip.
func AddFeedbackToTrip(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input FeedbackInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		text := strings.TrimSpace(input.Feedback)
		if text == "" {
			utils.Fail(c, http.StatusBadRequest, "feedback is required")
			return
		}
		id, _ := middleware.IdentityFrom(c)
		trip, _ := middleware.TripFrom(c)
		ctx := c.Request.Context()

		feedback := models.Feedback{TripID: trip.ID, Username: id.Username, Text: text}
		if err := d.Store.AddFeedback(ctx, &feedback); err != nil {
			log.Printf("Error adding feedback to trip: %v", err)
			utils.InternalError(c)
			return
		}

		updated, err := d.Store.GetTrip(ctx, trip.ID)
		if err != nil {
			log.Printf("Error adding feedback to trip: %v", err)
			utils.InternalError(c)
			return
		}
		d.publish(ctx, services.NewTripEvent(services.EventFeedbackAdded, trip.ID, feedback))

		log.Printf("Feedback added successfully to trip with trip ID %d by %s.", trip.ID, id.Username)
		utils.Success(c, http.StatusOK, "Feedback added successfully", updated.AdminView())
	}
}
