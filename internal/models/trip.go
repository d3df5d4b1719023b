package models

import (
	"time"

	"gorm.io/gorm"
)

type TripStatus string

const (
	TripStatusOngoing   TripStatus = "ongoing"
	TripStatusCompleted TripStatus = "completed"
)

// Placeholder driver assigned to every trip until real dispatch exists.
const (
	DefaultDriverName        = "Raj Yadav"
	DefaultDriverPhoneNumber = "9997186212"
	DefaultCabNumber         = "UP14 AC 5697"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude" gorm:"column:latitude"`
	Longitude float64 `json:"longitude" gorm:"column:longitude"`
}

type Trip struct {
	gorm.Model
	Username          string          `json:"username" gorm:"column:username;not null;index"`
	DriverName        string          `json:"driverName" gorm:"column:driver_name;not null"`
	DriverPhoneNumber string          `json:"driverPhoneNumber" gorm:"column:driver_phone_number;not null"`
	CabNumber         string          `json:"cabNumber" gorm:"column:cab_number;not null"`
	Status            TripStatus      `json:"status" gorm:"column:status;type:text;not null;default:ongoing"`
	TripOTP           string          `json:"-" gorm:"column:trip_otp;not null"`
	Source            Coordinates     `json:"source" gorm:"embedded;embeddedPrefix:source_"`
	Destination       Coordinates     `json:"destination" gorm:"embedded;embeddedPrefix:destination_"`
	Current           Coordinates     `json:"current" gorm:"embedded;embeddedPrefix:current_"`
	Companions        []TripCompanion `json:"companions" gorm:"foreignKey:TripID"`
	Feedbacks         []Feedback      `json:"feedbacks" gorm:"foreignKey:TripID"`
}

// TripCompanion links a companion user to a trip. Active links drive the
// user's travelerCompanionFor list; completion deactivates them.
type TripCompanion struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	TripID    uint      `json:"tripId" gorm:"column:trip_id;not null;index"`
	Username  string    `json:"username" gorm:"column:username;not null;index"`
	Active    bool      `json:"active" gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `json:"createdAt"`
}

// Feedback is a free-text entry appended to a trip.
type Feedback struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	TripID    uint      `json:"tripId" gorm:"column:trip_id;not null;index"`
	Username  string    `json:"username" gorm:"column:username;not null;index"`
	Text      string    `json:"feedback" gorm:"column:feedback;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Trip) TableName() string {
	return "trips"
}

func (TripCompanion) TableName() string {
	return "trip_companions"
}

func (Feedback) TableName() string {
	return "feedbacks"
}

// CompanionUsernames returns the usernames of every companion linked to the trip.
func (t *Trip) CompanionUsernames() []string {
	names := make([]string, 0, len(t.Companions))
	for _, c := range t.Companions {
		names = append(names, c.Username)
	}
	return names
}

// HasCompanion reports whether username is linked to the trip as a companion.
func (t *Trip) HasCompanion(username string) bool {
	for _, c := range t.Companions {
		if c.Username == username {
			return true
		}
	}
	return false
}

func (t *Trip) IsOngoing() bool {
	return t.Status == TripStatusOngoing
}

// TripDetails is the public view served by viewTrip and the trip listings.
type TripDetails struct {
	ID                   uint       `json:"id"`
	Username             string     `json:"username"`
	DriverName           string     `json:"driverName"`
	DriverPhoneNumber    string     `json:"driverPhoneNumber"`
	CabNumber            string     `json:"cabNumber"`
	TravelerCompanions   []string   `json:"travelerCompanions"`
	Status               TripStatus `json:"status"`
	SourceLatitude       float64    `json:"sourceLatitude"`
	SourceLongitude      float64    `json:"sourceLongitude"`
	DestinationLatitude  float64    `json:"destinationLatitude"`
	DestinationLongitude float64    `json:"destinationLongitude"`
	CurrentLatitude      float64    `json:"currentLatitude"`
	CurrentLongitude     float64    `json:"currentLongitude"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func (t *Trip) Details() TripDetails {
	return TripDetails{
		ID:                   t.ID,
		Username:             t.Username,
		DriverName:           t.DriverName,
		DriverPhoneNumber:    t.DriverPhoneNumber,
		CabNumber:            t.CabNumber,
		TravelerCompanions:   t.CompanionUsernames(),
		Status:               t.Status,
		SourceLatitude:       t.Source.Latitude,
		SourceLongitude:      t.Source.Longitude,
		DestinationLatitude:  t.Destination.Latitude,
		DestinationLongitude: t.Destination.Longitude,
		CurrentLatitude:      t.Current.Latitude,
		CurrentLongitude:     t.Current.Longitude,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

// AdminTripView adds the feedback entries to the public view.
type AdminTripView struct {
	TripDetails
	Feedbacks []Feedback `json:"feedbacks"`
}

func (t *Trip) AdminView() AdminTripView {
	feedbacks := t.Feedbacks
	if feedbacks == nil {
		feedbacks = []Feedback{}
	}
	return AdminTripView{TripDetails: t.Details(), Feedbacks: feedbacks}
}
