package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model                 // This embeds ID, CreatedAt, UpdatedAt, and DeletedAt
	Username            string `json:"username" gorm:"column:username;uniqueIndex;not null"`
	PhoneNo             string `json:"phoneNo" gorm:"column:phone_no;uniqueIndex;not null"`
	Email               string `json:"email" gorm:"column:email;uniqueIndex;not null"`
	PasswordHash        string `json:"-" gorm:"column:password_hash;not null"`
	IsAdmin             bool   `json:"isAdmin" gorm:"column:is_admin;default:false"`
	IsTraveler          bool   `json:"isTraveler" gorm:"column:is_traveler;default:false"`
	IsTravelerCompanion bool   `json:"isTravelerCompanion" gorm:"column:is_traveler_companion;default:false"`
	VerificationOTP     string `json:"-" gorm:"column:otp"`
	IsVerified          bool   `json:"isVerified" gorm:"column:is_verified;default:false"`
	DeviceToken         string `json:"-" gorm:"column:device_token"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// SetPassword hashes password with the given bcrypt cost and stores it.
func (u *User) SetPassword(password string, cost int) error {
	hash, err := HashPassword(password, cost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// HashPassword returns the bcrypt hash of password. A cost of 0 uses bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Profile is the caller-facing view of a user.
type Profile struct {
	ID                   uint   `json:"id"`
	Username             string `json:"username"`
	PhoneNo              string `json:"phoneNo"`
	Email                string `json:"email"`
	IsAdmin              bool   `json:"isAdmin"`
	IsTraveler           bool   `json:"isTraveler"`
	IsTravelerCompanion  bool   `json:"isTravelerCompanion"`
	TravelerCompanionFor []uint `json:"travelerCompanionFor"`
	IsVerified           bool   `json:"isVerified"`
}

func (u *User) Profile(companionFor []uint) Profile {
	if companionFor == nil {
		companionFor = []uint{}
	}
	return Profile{
		ID:                   u.ID,
		Username:             u.Username,
		PhoneNo:              u.PhoneNo,
		Email:                u.Email,
		IsAdmin:              u.IsAdmin,
		IsTraveler:           u.IsTraveler,
		IsTravelerCompanion:  u.IsTravelerCompanion,
		TravelerCompanionFor: companionFor,
		IsVerified:           u.IsVerified,
	}
}
