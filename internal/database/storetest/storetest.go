// Package storetest holds behaviour every database.Store must share.
package storetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/chachabrian/tripguard-backend/internal/database"
	"github.com/chachabrian/tripguard-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store for one test case.
type Factory func(t *testing.T) database.Store

// Run exercises the Store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tt := []struct {
		name string
		run  func(t *testing.T, s database.Store)
	}{
		{"CreateUserDuplicate", testCreateUserDuplicate},
		{"StartTrip", testStartTrip},
		{"StartTripUnknownCompanion", testStartTripUnknownCompanion},
		{"CompleteTripReleasesCompanions", testCompleteTripReleasesCompanions},
		{"UpdateTripLocation", testUpdateTripLocation},
		{"VerifyAndReset", testVerifyAndReset},
		{"Feedbacks", testFeedbacks},
	}
	for _, test := range tt {
		t.Run(test.name, func(t *testing.T) {
			test.run(t, newStore(t))
		})
	}
}

func seedUsers(t *testing.T, s database.Store, names ...string) {
	t.Helper()
	for i, name := range names {
		err := s.CreateUser(context.Background(), &models.User{
			Username:   name,
			Email:      name + "@example.com",
			PhoneNo:    fmt.Sprintf("90000000%02d", i),
			IsVerified: true,
		})
		require.NoError(t, err)
	}
}

func newTrip(owner string) *models.Trip {
	return &models.Trip{
		Username: owner,
		Status:   models.TripStatusOngoing,
		TripOTP:  "123456",
	}
}

func mustUser(t *testing.T, s database.Store, username string) *models.User {
	t.Helper()
	u, err := s.GetUserByUsername(context.Background(), username)
	require.NoError(t, err)
	return u
}

func testCreateUserDuplicate(t *testing.T, s database.Store) {
	seedUsers(t, s, "alice")

	err := s.CreateUser(context.Background(), &models.User{Username: "alice", Email: "other@example.com", PhoneNo: "1"})
	assert.ErrorIs(t, err, database.ErrDuplicate)

	_, err = s.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func testStartTrip(t *testing.T, s database.Store) {
	ctx := context.Background()
	seedUsers(t, s, "alice", "bob")

	trip := newTrip("alice")
	require.NoError(t, s.StartTrip(ctx, trip, []string{"bob"}))
	require.NotZero(t, trip.ID)

	assert.True(t, mustUser(t, s, "alice").IsTraveler)
	assert.True(t, mustUser(t, s, "bob").IsTravelerCompanion)

	ids, err := s.CompanionTripIDs(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []uint{trip.ID}, ids)

	stored, err := s.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, stored.CompanionUsernames())

	err = s.StartTrip(ctx, newTrip("alice"), nil)
	assert.ErrorIs(t, err, database.ErrAlreadyTraveling)

	trips, err := s.ListTripsByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, trips, 1)
}

func testStartTripUnknownCompanion(t *testing.T, s database.Store) {
	ctx := context.Background()
	seedUsers(t, s, "alice", "bob")

	err := s.StartTrip(ctx, newTrip("alice"), []string{"bob", "ghost"})
	var missing *database.CompanionNotFoundError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "ghost", missing.Username)

	trips, err := s.ListTrips(ctx)
	require.NoError(t, err)
	assert.Empty(t, trips)
	assert.False(t, mustUser(t, s, "alice").IsTraveler)
	assert.False(t, mustUser(t, s, "bob").IsTravelerCompanion)

	require.NoError(t, s.StartTrip(ctx, newTrip("alice"), []string{"bob"}))
}

func testCompleteTripReleasesCompanions(t *testing.T, s database.Store) {
	ctx := context.Background()
	seedUsers(t, s, "alice", "bob", "carol")

	first := newTrip("alice")
	require.NoError(t, s.StartTrip(ctx, first, []string{"carol"}))
	second := newTrip("bob")
	require.NoError(t, s.StartTrip(ctx, second, []string{"carol"}))

	_, err := s.CompleteTrip(ctx, first.ID, "000000")
	assert.ErrorIs(t, err, database.ErrInvalidOTP)
	stored, err := s.GetTrip(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsOngoing())

	done, err := s.CompleteTrip(ctx, first.ID, "123456")
	require.NoError(t, err)
	assert.Equal(t, models.TripStatusCompleted, done.Status)

	assert.False(t, mustUser(t, s, "alice").IsTraveler)
	assert.True(t, mustUser(t, s, "carol").IsTravelerCompanion, "still a companion on bob's trip")

	ids, err := s.CompanionTripIDs(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, []uint{second.ID}, ids)

	_, err = s.CompleteTrip(ctx, second.ID, "123456")
	require.NoError(t, err)
	assert.False(t, mustUser(t, s, "carol").IsTravelerCompanion)

	_, err = s.CompleteTrip(ctx, second.ID, "123456")
	assert.ErrorIs(t, err, database.ErrNoOngoingTrip)
	_, err = s.CompleteTrip(ctx, 4242, "123456")
	assert.ErrorIs(t, err, database.ErrNoOngoingTrip)

	// Completion frees the owner for a new trip.
	require.NoError(t, s.StartTrip(ctx, newTrip("alice"), nil))
}

func testUpdateTripLocation(t *testing.T, s database.Store) {
	ctx := context.Background()
	seedUsers(t, s, "alice")

	trip := newTrip("alice")
	require.NoError(t, s.StartTrip(ctx, trip, nil))

	current := models.Coordinates{Latitude: 28.54, Longitude: 77.39}
	require.NoError(t, s.UpdateTripLocation(ctx, trip.ID, current))
	stored, err := s.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, current, stored.Current)

	_, err = s.CompleteTrip(ctx, trip.ID, "123456")
	require.NoError(t, err)
	assert.ErrorIs(t, s.UpdateTripLocation(ctx, trip.ID, current), database.ErrNoOngoingTrip)
}

func testVerifyAndReset(t *testing.T, s database.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &models.User{
		Username: "alice", Email: "alice@example.com", PhoneNo: "9000000000", VerificationOTP: "111111",
	}))

	assert.ErrorIs(t, s.VerifyUser(ctx, "alice@example.com", "222222", "333333"), database.ErrInvalidOTP)
	require.NoError(t, s.VerifyUser(ctx, "alice@example.com", "111111", "333333"))

	alice, err := s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, alice.IsVerified)
	assert.Equal(t, "333333", alice.VerificationOTP)

	assert.ErrorIs(t, s.ResetPassword(ctx, "alice@example.com", "111111", "hash", "444444"), database.ErrInvalidOTP)
	require.NoError(t, s.ResetPassword(ctx, "alice@example.com", "333333", "hash", "444444"))
	alice, err = s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", alice.PasswordHash)

	assert.ErrorIs(t, s.SetVerificationOTP(ctx, "ghost@example.com", "1"), database.ErrNotFound)
}

func testFeedbacks(t *testing.T, s database.Store) {
	ctx := context.Background()
	seedUsers(t, s, "alice", "bob")

	trip := newTrip("alice")
	require.NoError(t, s.StartTrip(ctx, trip, []string{"bob"}))
	require.NoError(t, s.AddFeedback(ctx, &models.Feedback{TripID: trip.ID, Username: "alice", Text: "smooth"}))
	require.NoError(t, s.AddFeedback(ctx, &models.Feedback{TripID: trip.ID, Username: "bob", Text: "late"}))
	assert.ErrorIs(t, s.AddFeedback(ctx, &models.Feedback{TripID: 999, Username: "bob", Text: "x"}), database.ErrNotFound)

	all, err := s.ListFeedbacks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bobs, err := s.ListFeedbacksByUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, "late", bobs[0].Text)

	stored, err := s.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Feedbacks, 2)
}
