package handlers

import (
	"net/http"

	"github.com/chachabrian/tripguard-backend/internal/middleware"
	"github.com/chachabrian/tripguard-backend/internal/services"
	"github.com/chachabrian/tripguard-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

// LiveTrip upgrades to a WebSocket that streams the trip's events.
func LiveTrip(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := middleware.IdentityFrom(c)
		trip, _ := middleware.TripFrom(c)

		if d.Hub == nil {
			utils.Fail(c, http.StatusServiceUnavailable, "Live updates are unavailable")
			return
		}
		if !trip.IsOngoing() {
			utils.Fail(c, http.StatusBadRequest, "This link has expired because the trip is completed")
			return
		}

		services.ServeTrip(d.Hub, c.Writer, c.Request, trip.ID, id.Username)
	}
}
