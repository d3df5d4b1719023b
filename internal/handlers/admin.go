package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/chachabrian/tripguard-backend/internal/database"
	"github.com/chachabrian/tripguard-backend/internal/middleware"
	"github.com/chachabrian/tripguard-backend/internal/models"
	"github.com/chachabrian/tripguard-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UsernameInput struct {
	Username string `json:"username" binding:"required"`
}

func adminViews(trips []models.Trip) []models.AdminTripView {
	views := make([]models.AdminTripView, 0, len(trips))
	for i := range trips {
		views = append(views, trips[i].AdminView())
	}
	return views
}

func AdminViewAllTrips(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		trips, err := d.Store.ListTrips(c.Request.Context())
		if err != nil {
			log.Printf("Error retrieving trips: %v", err)
			utils.InternalError(c)
			return
		}
		utils.Success(c, http.StatusOK, "Trips retrieved successfully", adminViews(trips))
	}
}

func AdminViewAllTripsOfUser(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UsernameInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		ctx := c.Request.Context()

		if _, err := d.Store.GetUserByUsername(ctx, input.Username); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				utils.Fail(c, http.StatusBadRequest, "There is no user with such username")
				return
			}
			log.Printf("Error retrieving trips: %v", err)
			utils.InternalError(c)
			return
		}

		trips, err := d.Store.ListTripsByUser(ctx, input.Username)
		if err != nil {
			log.Printf("Error retrieving trips: %v", err)
			utils.InternalError(c)
			return
		}
		utils.Success(c, http.StatusOK, fmt.Sprintf("Trips for %s retrieved successfully", input.Username), adminViews(trips))
	}
}

func AdminViewAllFeedbacks(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		feedbacks, err := d.Store.ListFeedbacks(c.Request.Context())
		if err != nil {
			log.Printf("Error retrieving all feedbacks: %v", err)
			utils.InternalError(c)
			return
		}
		log.Println("All feedbacks retrieved successfully")
		utils.Success(c, http.StatusOK, "All feedbacks retrieved successfully", feedbacks)
	}
}

func AdminViewFeedbackForUser(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UsernameInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		ctx := c.Request.Context()

		if _, err := d.Store.GetUserByUsername(ctx, input.Username); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				utils.Fail(c, http.StatusBadRequest, "There is no user with such username")
				return
			}
			log.Printf("Error retrieving feedback: %v", err)
			utils.InternalError(c)
			return
		}

		feedbacks, err := d.Store.ListFeedbacksByUser(ctx, input.Username)
		if err != nil {
			log.Printf("Error retrieving feedback: %v", err)
			utils.InternalError(c)
			return
		}
		log.Printf("Feedbacks of %s retrieved successfully", input.Username)
		utils.Success(c, http.StatusOK, "Feedback retrieved successfully", feedbacks)
	}
}

func AdminViewFeedbackForTrip() gin.HandlerFunc {
	return func(c *gin.Context) {
		trip, _ := middleware.TripFrom(c)
		feedbacks := trip.Feedbacks
		if feedbacks == nil {
			feedbacks = []models.Feedback{}
		}
		log.Printf("Feedbacks for trip Id %d retrieved successfully", trip.ID)
		utils.Success(c, http.StatusOK, "Feedback for trip retrieved successfully", feedbacks)
	}
}

// FeedbackReport is the exported document.
type FeedbackReport struct {
	GeneratedAt time.Time         `json:"generatedAt"`
	GeneratedBy string            `json:"generatedBy"`
	Count       int               `json:"count"`
	Feedbacks   []models.Feedback `json:"feedbacks"`
}

// AdminExportFeedbacks writes every feedback to report storage.
func AdminExportFeedbacks(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := middleware.IdentityFrom(c)
		ctx := c.Request.Context()

		feedbacks, err := d.Store.ListFeedbacks(ctx)
		if err != nil {
			log.Printf("Error exporting feedbacks: %v", err)
			utils.InternalError(c)
			return
		}

		now := time.Now().UTC()
		body, err := json.MarshalIndent(FeedbackReport{
			GeneratedAt: now,
			GeneratedBy: id.Username,
			Count:       len(feedbacks),
			Feedbacks:   feedbacks,
		}, "", "  ")
		if err != nil {
			log.Printf("Error exporting feedbacks: %v", err)
			utils.InternalError(c)
			return
		}

		key := fmt.Sprintf("reports/feedbacks-%s-%s.json", now.Format("20060102T150405"), uuid.NewString())
		url, err := d.Reports.Upload(ctx, key, body, "application/json")
		if err != nil {
			log.Printf("Error exporting feedbacks: %v", err)
			utils.InternalError(c)
			return
		}

		log.Printf("Exported %d feedbacks to %s", len(feedbacks), url)
		utils.Success(c, http.StatusOK, "Feedbacks exported successfully", gin.H{
			"url":   url,
			"count": len(feedbacks),
		})
	}
}
