package handlers

import (
	"log"
	"net/http"

	"github.com/chachabrian/tripguard-backend/internal/middleware"
	"github.com/chachabrian/tripguard-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

type DeviceTokenInput struct {
	Token string `json:"token" binding:"required"`
}

func GetProfile(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := middleware.IdentityFrom(c)
		ctx := c.Request.Context()

		user, err := d.Store.GetUserByID(ctx, id.UserID)
		if err != nil {
			log.Printf("Error loading profile for %s: %v", id.Username, err)
			utils.InternalError(c)
			return
		}

		companionFor, err := d.Store.CompanionTripIDs(ctx, user.Username)
		if err != nil {
			log.Printf("Error loading profile for %s: %v", id.Username, err)
			utils.InternalError(c)
			return
		}

		utils.Success(c, http.StatusOK, "Profile retrieved successfully", user.Profile(companionFor))
	}
}

// RegisterDeviceToken stores the caller's FCM token for push notifications.
func RegisterDeviceToken(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input DeviceTokenInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		id, _ := middleware.IdentityFrom(c)

		if err := d.Store.SetDeviceToken(c.Request.Context(), id.UserID, input.Token); err != nil {
			log.Printf("Error saving device token for %s: %v", id.Username, err)
			utils.InternalError(c)
			return
		}

		utils.Success(c, http.StatusOK, "Device token registered successfully", nil)
	}
}
