package middleware

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/chachabrian/tripguard-backend/internal/database"
	"github.com/chachabrian/tripguard-backend/internal/models"
	"github.com/chachabrian/tripguard-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

const tripKey = "trip"

// TripFrom returns the trip loaded by ValidateTrip.
func TripFrom(c *gin.Context) (*models.Trip, bool) {
	v, ok := c.Get(tripKey)
	if !ok {
		return nil, false
	}
	trip, ok := v.(*models.Trip)
	return trip, ok
}

// ValidateTrip loads the trip named by :tripId.
func ValidateTrip(store database.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("tripId"), 10, 64)
		if err != nil || id == 0 {
			utils.Abort(c, http.StatusNotFound, "Trip not found")
			return
		}

		trip, err := store.GetTrip(c.Request.Context(), uint(id))
		if errors.Is(err, database.ErrNotFound) {
			utils.Abort(c, http.StatusNotFound, "Trip not found")
			return
		}
		if err != nil {
			log.Printf("Error loading trip %d: %v", id, err)
			utils.Abort(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		c.Set(tripKey, trip)
		c.Next()
	}
}

// AuthorizeUser admits the trip owner and its companions.
func AuthorizeUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, idOK := IdentityFrom(c)
		trip, tripOK := TripFrom(c)
		if !idOK || !tripOK {
			utils.Abort(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if trip.Username != id.Username && !trip.HasCompanion(id.Username) {
			utils.Abort(c, http.StatusForbidden, "You are not authorized to perform this action")
			return
		}
		c.Next()
	}
}

// AuthorizeTraveler admits only the trip owner.
func AuthorizeTraveler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, idOK := IdentityFrom(c)
		trip, tripOK := TripFrom(c)
		if !idOK || !tripOK {
			utils.Abort(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if trip.Username != id.Username {
			utils.Abort(c, http.StatusForbidden, "You are not authorized to perform this action")
			return
		}
		c.Next()
	}
}
