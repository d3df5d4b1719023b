package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chachabrian/tripguard-backend/internal/handlers"
	"github.com/chachabrian/tripguard-backend/internal/mock"
	"github.com/chachabrian/tripguard-backend/internal/models"
	"github.com/chachabrian/tripguard-backend/internal/routes"
	"github.com/chachabrian/tripguard-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

const (
	password    = "Secret123"
	delhiLat    = 28.7041
	delhiLng    = 77.1025
	noidaLat    = 28.5355
	noidaLng    = 77.3910
	nearNoidaLa = 28.5400
	nearNoidaLn = 77.3900
)

type recordingMailer struct {
	mu   sync.Mutex
	otps map[string]string
}

func (m *recordingMailer) record(email, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otps[email] = otp
	return nil
}

func (m *recordingMailer) SendVerificationOTP(email, otp string) error  { return m.record(email, otp) }
func (m *recordingMailer) SendPasswordResetOTP(email, otp string) error { return m.record(email, otp) }

func (m *recordingMailer) last(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.otps[email]
}

type recordingMessenger struct {
	mu   sync.Mutex
	sent map[string][]string
}

func (m *recordingMessenger) Send(phone, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[phone] = append(m.sent[phone], body)
	return nil
}

func (m *recordingMessenger) to(phone string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent[phone]...)
}

type memoryCache struct {
	mu     sync.Mutex
	locs   map[uint]models.Coordinates
	events []services.TripEvent
	setErr error
}

func (c *memoryCache) SetTripLocation(_ context.Context, id uint, loc models.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.locs[id] = loc
	return nil
}

func (c *memoryCache) failWrites(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setErr = err
}

func (c *memoryCache) GetTripLocation(_ context.Context, id uint) (models.Coordinates, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	loc, ok := c.locs[id]
	if !ok {
		return models.Coordinates{}, services.ErrCacheMiss
	}
	return loc, nil
}

func (c *memoryCache) ClearTripLocation(_ context.Context, id uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.locs, id)
	return nil
}

func (c *memoryCache) PublishTripUpdate(_ context.Context, event services.TripEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

type envelope struct {
	Message string          `json:"message"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type HandlersSuite struct {
	suite.Suite
	store     *mock.Store
	mailer    *recordingMailer
	messenger *recordingMessenger
	cache     *memoryCache
	reportDir string
	router    *gin.Engine
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}

func (s *HandlersSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.store = mock.NewStore()
	s.mailer = &recordingMailer{otps: map[string]string{}}
	s.messenger = &recordingMessenger{sent: map[string][]string{}}
	s.cache = &memoryCache{locs: map[uint]models.Coordinates{}}
	s.reportDir = s.T().TempDir()

	reports, err := services.NewLocalStorage(s.reportDir)
	s.Require().NoError(err)

	s.router = routes.SetupRouter(&handlers.Deps{
		Store:        s.store,
		Notifier:     services.NewNotifier(s.mailer, s.messenger, nil),
		Locations:    s.cache,
		Reports:      reports,
		JWTSecret:    "test-secret",
		TokenTTL:     time.Hour,
		BaseURL:      "http://trips.test",
		GeofenceKm:   1,
		PasswordCost: bcrypt.MinCost,
	})
}

func (s *HandlersSuite) do(method, path, token string, body interface{}) (int, envelope) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (s *HandlersSuite) register(name, phone string) {
	code, env := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": name,
		"email":    name + "@example.com",
		"password": password,
		"phoneNo":  phone,
	})
	s.Require().Equal(http.StatusCreated, code, env.Message)
}

func (s *HandlersSuite) verify(name string) {
	email := name + "@example.com"
	code, env := s.do(http.MethodPost, "/api/auth/verify", "", gin.H{
		"email":           email,
		"verificationOTP": s.mailer.last(email),
	})
	s.Require().Equal(http.StatusOK, code, env.Message)
}

func (s *HandlersSuite) login(name string) string {
	code, env := s.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    name + "@example.com",
		"password": password,
	})
	s.Require().Equal(http.StatusOK, code, env.Message)
	var data struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	return data.Token
}

// signUp registers, verifies and logs a user in.
func (s *HandlersSuite) signUp(name, phone string) string {
	s.register(name, phone)
	s.verify(name)
	return s.login(name)
}

func (s *HandlersSuite) createTrip(token string, companions ...string) uint {
	code, env := s.do(http.MethodPost, "/api/trips/createTrip", token, gin.H{
		"travelerCompanions":   companions,
		"sourceLatitude":       delhiLat,
		"sourceLongitude":      delhiLng,
		"destinationLatitude":  noidaLat,
		"destinationLongitude": noidaLng,
	})
	s.Require().Equal(http.StatusCreated, code, env.Message)
	var data struct {
		TripID   uint   `json:"tripId"`
		TripLink string `json:"tripLink"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.Equal(fmt.Sprintf("http://trips.test/api/trips/viewTrip/%d", data.TripID), data.TripLink)
	return data.TripID
}

func (s *HandlersSuite) TestRegister_Duplicates() {
	s.register("alice", "9876543210")

	code, env := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "email": "other@example.com", "password": password, "phoneNo": "9876543211",
	})
	s.Equal(http.StatusBadRequest, code)
	s.False(env.Success)

	code, _ = s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "other", "email": "other@example.com", "password": password, "phoneNo": "9876543210",
	})
	s.Equal(http.StatusBadRequest, code)

	// Unverified email: the code is re-sent.
	first := s.mailer.last("alice@example.com")
	code, _ = s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice2", "email": "alice@example.com", "password": password, "phoneNo": "9876543219",
	})
	s.Equal(http.StatusOK, code)
	s.Equal(first, s.mailer.last("alice@example.com"))

	s.verify("alice")
	code, _ = s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice3", "email": "alice@example.com", "password": password, "phoneNo": "9876543218",
	})
	s.Equal(http.StatusBadRequest, code)
}

func (s *HandlersSuite) TestRegister_Validation() {
	tt := []struct {
		name string
		body gin.H
	}{
		{"Weak password", gin.H{"username": "a", "email": "a@example.com", "password": "abc", "phoneNo": "9876543210"}},
		{"Bad email", gin.H{"username": "a", "email": "nope", "password": password, "phoneNo": "9876543210"}},
		{"Bad phone", gin.H{"username": "a", "email": "a@example.com", "password": password, "phoneNo": "12ab"}},
		{"Missing username", gin.H{"email": "a@example.com", "password": password, "phoneNo": "9876543210"}},
	}
	for _, test := range tt {
		s.Run(test.name, func() {
			code, env := s.do(http.MethodPost, "/api/auth/register", "", test.body)
			s.Equal(http.StatusBadRequest, code)
			s.False(env.Success)
		})
	}
}

func (s *HandlersSuite) TestVerifyAndLogin() {
	s.register("alice", "9876543210")

	code, env := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": password})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("Account not verified. Verify the account to log in.", env.Message)

	code, env = s.do(http.MethodPost, "/api/auth/verify", "", gin.H{"email": "alice@example.com", "verificationOTP": "000000x"})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("Invalid OTP. Please enter correct OTP", env.Message)

	s.verify("alice")
	code, env = s.do(http.MethodPost, "/api/auth/verify", "", gin.H{"email": "alice@example.com", "verificationOTP": "anything"})
	s.Equal(http.StatusOK, code)
	s.Equal("Account already verified", env.Message)

	code, env = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "Wrong123"})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("Incorrect Password", env.Message)

	code, _ = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ghost@example.com", "password": password})
	s.Equal(http.StatusBadRequest, code)

	s.NotEmpty(s.login("alice"))
}

func (s *HandlersSuite) TestPasswordReset() {
	s.signUp("alice", "9876543210")

	code, _ := s.do(http.MethodPost, "/api/auth/forgetPassword", "", gin.H{"email": "alice@example.com"})
	s.Require().Equal(http.StatusOK, code)
	otp := s.mailer.last("alice@example.com")

	code, _ = s.do(http.MethodPost, "/api/auth/resetPassword", "", gin.H{
		"email": "alice@example.com", "verificationOTP": otp, "newPassword": "Newpass1", "verifyNewPassword": "Newpass2",
	})
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/api/auth/resetPassword", "", gin.H{
		"email": "alice@example.com", "verificationOTP": "bad", "newPassword": "Newpass1", "verifyNewPassword": "Newpass1",
	})
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/api/auth/resetPassword", "", gin.H{
		"email": "alice@example.com", "verificationOTP": otp, "newPassword": "Newpass1", "verifyNewPassword": "Newpass1",
	})
	s.Require().Equal(http.StatusOK, code)

	code, _ = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "Newpass1"})
	s.Equal(http.StatusOK, code)
}

func (s *HandlersSuite) TestUpdatePassword() {
	token := s.signUp("alice", "9876543210")

	code, _ := s.do(http.MethodPost, "/api/auth/updatePassword", token, gin.H{"newPassword": "Another1", "verifyNewPassword": "Another1"})
	s.Require().Equal(http.StatusOK, code)

	code, _ = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "Another1"})
	s.Equal(http.StatusOK, code)
}

func (s *HandlersSuite) TestCreateTrip_Rejections() {
	alice := s.signUp("alice", "9876543210")
	s.signUp("bob", "9876543211")

	body := gin.H{
		"travelerCompanions":   []string{"bob", "ghost"},
		"sourceLatitude":       delhiLat,
		"sourceLongitude":      delhiLng,
		"destinationLatitude":  noidaLat,
		"destinationLongitude": noidaLng,
	}
	code, env := s.do(http.MethodPost, "/api/trips/createTrip", alice, body)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("Travel companion ghost doesn't exist.", env.Message)

	trips, err := s.store.ListTrips(context.Background())
	s.Require().NoError(err)
	s.Empty(trips)
	bob, _ := s.store.GetUserByUsername(context.Background(), "bob")
	s.False(bob.IsTravelerCompanion)

	body["travelerCompanions"] = []string{"alice"}
	code, _ = s.do(http.MethodPost, "/api/trips/createTrip", alice, body)
	s.Equal(http.StatusBadRequest, code)

	delete(body, "sourceLatitude")
	body["travelerCompanions"] = []string{}
	code, _ = s.do(http.MethodPost, "/api/trips/createTrip", alice, body)
	s.Equal(http.StatusBadRequest, code)

	s.createTrip(alice, "bob")
	code, env = s.do(http.MethodPost, "/api/trips/createTrip", alice, gin.H{
		"sourceLatitude": delhiLat, "sourceLongitude": delhiLng,
		"destinationLatitude": noidaLat, "destinationLongitude": noidaLng,
	})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("You already have an ongoing trip", env.Message)
}

func (s *HandlersSuite) TestTripLifecycle() {
	alice := s.signUp("alice", "9876543210")
	bob := s.signUp("bob", "9876543211")
	carol := s.signUp("carol", "9876543212")
	s.signUp("dave", "9876543213")
	companionPhones := []string{"9876543211", "9876543213"}

	tripID := s.createTrip(alice, "bob", "dave")
	for _, phone := range companionPhones {
		s.Require().Len(s.messenger.to(phone), 1, phone)
		s.Contains(s.messenger.to(phone)[0], "Your friend alice has started a trip with us.")
	}

	tripPath := fmt.Sprintf("/api/trips/viewTrip/%d", tripID)
	code, _ := s.do(http.MethodGet, tripPath, bob, nil)
	s.Equal(http.StatusOK, code)
	code, _ = s.do(http.MethodGet, tripPath, carol, nil)
	s.Equal(http.StatusForbidden, code)

	code, env := s.do(http.MethodGet, "/api/auth/profile", bob, nil)
	s.Require().Equal(http.StatusOK, code)
	var profile models.Profile
	s.Require().NoError(json.Unmarshal(env.Data, &profile))
	s.True(profile.IsTravelerCompanion)
	s.Equal([]uint{tripID}, profile.TravelerCompanionFor)

	// Far from the destination: no geofence alert.
	code, _ = s.do(http.MethodPost, fmt.Sprintf("/api/trips/updateLiveCoordinates/%d", tripID), alice, gin.H{
		"currentLatitude": 28.6, "currentLongitude": 77.2,
	})
	s.Require().Equal(http.StatusOK, code)
	s.Len(s.messenger.to("9876543211"), 1)

	code, _ = s.do(http.MethodPost, fmt.Sprintf("/api/trips/updateLiveCoordinates/%d", tripID), bob, gin.H{
		"currentLatitude": 28.6, "currentLongitude": 77.2,
	})
	s.Equal(http.StatusForbidden, code)

	code, _ = s.do(http.MethodPost, fmt.Sprintf("/api/trips/updateLiveCoordinates/%d", tripID), alice, gin.H{
		"currentLatitude": nearNoidaLa, "currentLongitude": nearNoidaLn,
	})
	s.Require().Equal(http.StatusOK, code)
	for _, phone := range companionPhones {
		msgs := s.messenger.to(phone)
		s.Require().Len(msgs, 2, phone)
		s.Equal("alice is about to reach destination location and is only 510 meters away.", msgs[1])
	}

	code, env = s.do(http.MethodGet, tripPath, bob, nil)
	s.Require().Equal(http.StatusOK, code)
	var details models.TripDetails
	s.Require().NoError(json.Unmarshal(env.Data, &details))
	s.Equal(nearNoidaLa, details.CurrentLatitude)
	s.Equal([]string{"bob", "dave"}, details.TravelerCompanions)

	code, env = s.do(http.MethodGet, fmt.Sprintf("/api/trips/getTripCompletionOTP/%d", tripID), alice, nil)
	s.Require().Equal(http.StatusOK, code)
	var otp struct {
		TripOTP string `json:"tripOTP"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &otp))
	s.Len(otp.TripOTP, 6)
	s.Contains(s.messenger.to("9876543210")[0], otp.TripOTP)

	completePath := fmt.Sprintf("/api/trips/completeTrip/%d", tripID)
	code, env = s.do(http.MethodPost, completePath, alice, gin.H{"tripOTP": "bad-otp"})
	s.Equal(http.StatusUnauthorized, code)
	s.Equal("Invalid OTP", env.Message)
	trip, _ := s.store.GetTrip(context.Background(), tripID)
	s.True(trip.IsOngoing())

	code, _ = s.do(http.MethodPost, completePath, alice, gin.H{"tripOTP": otp.TripOTP})
	s.Require().Equal(http.StatusOK, code)
	for _, phone := range companionPhones {
		msgs := s.messenger.to(phone)
		s.Equal("Trip for alice has completed successfully. Thank you for riding with us.", msgs[len(msgs)-1])
	}

	code, _ = s.do(http.MethodPost, completePath, alice, gin.H{"tripOTP": otp.TripOTP})
	s.Equal(http.StatusNotFound, code)

	code, env = s.do(http.MethodGet, tripPath, bob, nil)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("This link has expired because the trip is completed", env.Message)

	aliceUser, _ := s.store.GetUserByUsername(context.Background(), "alice")
	bobUser, _ := s.store.GetUserByUsername(context.Background(), "bob")
	s.False(aliceUser.IsTraveler)
	s.False(bobUser.IsTravelerCompanion)

	_, err := s.cache.GetTripLocation(context.Background(), tripID)
	s.ErrorIs(err, services.ErrCacheMiss)

	var types []string
	for _, e := range s.cache.events {
		types = append(types, e.Type)
	}
	s.Contains(types, services.EventGeofence)
	s.Contains(types, services.EventTripCompleted)

	// A new trip can start once the first is completed.
	s.createTrip(alice)
}

func (s *HandlersSuite) TestFeedbackAndAdmin() {
	alice := s.signUp("alice", "9876543210")
	bob := s.signUp("bob", "9876543211")
	code, _ := s.do(http.MethodPost, "/api/auth/registerAdmin", "", gin.H{
		"username": "admin", "email": "admin@example.com", "password": password, "phoneNo": "9876543298",
	})
	s.Require().Equal(http.StatusCreated, code)
	s.verify("admin")
	admin := s.login("admin")

	tripID := s.createTrip(alice, "bob")
	feedbackPath := fmt.Sprintf("/api/trips/addFeedbackToTrip/%d", tripID)
	code, _ = s.do(http.MethodPost, feedbackPath, alice, gin.H{"feedback": "Smooth ride"})
	s.Require().Equal(http.StatusOK, code)
	code, _ = s.do(http.MethodPost, feedbackPath, bob, gin.H{"feedback": "Driver was late"})
	s.Require().Equal(http.StatusOK, code)
	code, _ = s.do(http.MethodPost, feedbackPath, bob, gin.H{"feedback": "   "})
	s.Equal(http.StatusBadRequest, code)

	code, env := s.do(http.MethodGet, "/api/admin/viewAllTrips", alice, nil)
	s.Equal(http.StatusUnauthorized, code)
	s.Equal("You don't have the required permissions.", env.Message)

	code, env = s.do(http.MethodGet, "/api/admin/viewAllTrips", admin, nil)
	s.Require().Equal(http.StatusOK, code)
	var views []models.AdminTripView
	s.Require().NoError(json.Unmarshal(env.Data, &views))
	s.Require().Len(views, 1)
	s.Len(views[0].Feedbacks, 2)

	code, env = s.do(http.MethodPost, "/api/admin/viewAllTripsOfUser", admin, gin.H{"username": "nobody"})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("There is no user with such username", env.Message)

	code, env = s.do(http.MethodPost, "/api/admin/viewFeedbackForUser", admin, gin.H{"username": "bob"})
	s.Require().Equal(http.StatusOK, code)
	var feedbacks []models.Feedback
	s.Require().NoError(json.Unmarshal(env.Data, &feedbacks))
	s.Require().Len(feedbacks, 1)
	s.Equal("Driver was late", feedbacks[0].Text)

	code, env = s.do(http.MethodGet, fmt.Sprintf("/api/admin/viewFeedbackForTrip/%d", tripID), admin, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Require().NoError(json.Unmarshal(env.Data, &feedbacks))
	s.Len(feedbacks, 2)

	code, env = s.do(http.MethodGet, "/api/admin/viewAllFeedbacks", admin, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Require().NoError(json.Unmarshal(env.Data, &feedbacks))
	s.Len(feedbacks, 2)

	code, env = s.do(http.MethodPost, "/api/admin/exportFeedbacks", admin, nil)
	s.Require().Equal(http.StatusOK, code)
	var export struct {
		URL   string `json:"url"`
		Count int    `json:"count"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &export))
	s.Equal(2, export.Count)
	s.True(strings.HasPrefix(export.URL, "file://"+s.reportDir))

	raw, err := os.ReadFile(strings.TrimPrefix(export.URL, "file://"))
	s.Require().NoError(err)
	var report handlers.FeedbackReport
	s.Require().NoError(json.Unmarshal(raw, &report))
	s.Equal("admin", report.GeneratedBy)
	s.Len(report.Feedbacks, 2)
}

func (s *HandlersSuite) TestAuthRequired() {
	code, env := s.do(http.MethodGet, "/api/trips/viewAllTrips", "", nil)
	s.Equal(http.StatusForbidden, code)
	s.Equal("Login is required.", env.Message)

	s.register("alice", "9876543210")
	u, err := s.store.GetUserByUsername(context.Background(), "alice")
	s.Require().NoError(err)
	s.Require().False(u.IsVerified)

	code, _ = s.do(http.MethodGet, "/api/trips/viewAllTrips", "not-a-token", nil)
	s.Equal(http.StatusForbidden, code)
}

func (s *HandlersSuite) TestLiveTripUnavailableWithoutHub() {
	alice := s.signUp("alice", "9876543210")
	tripID := s.createTrip(alice)

	code, _ := s.do(http.MethodGet, fmt.Sprintf("/api/trips/live/%d", tripID), alice, nil)
	s.Equal(http.StatusServiceUnavailable, code)
}

func (s *HandlersSuite) TestViewAllTrips() {
	alice := s.signUp("alice", "9876543210")
	bob := s.signUp("bob", "9876543211")

	first := s.createTrip(alice, "bob")
	code, _ := s.do(http.MethodPost, fmt.Sprintf("/api/trips/addFeedbackToTrip/%d", first), alice, gin.H{"feedback": "Smooth ride"})
	s.Require().Equal(http.StatusOK, code)
	trip, err := s.store.GetTrip(context.Background(), first)
	s.Require().NoError(err)
	code, _ = s.do(http.MethodPost, fmt.Sprintf("/api/trips/completeTrip/%d", first), alice, gin.H{"tripOTP": trip.TripOTP})
	s.Require().Equal(http.StatusOK, code)
	second := s.createTrip(alice)

	code, env := s.do(http.MethodGet, "/api/trips/viewAllTrips", alice, nil)
	s.Require().Equal(http.StatusOK, code)
	var raw struct {
		Trips []map[string]json.RawMessage `json:"trips"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &raw))
	s.Require().Len(raw.Trips, 2)
	for _, entry := range raw.Trips {
		s.NotContains(entry, "tripOTP")
		s.NotContains(entry, "feedbacks")
	}

	var listed struct {
		Trips []models.TripDetails `json:"trips"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &listed))
	s.Equal(first, listed.Trips[0].ID)
	s.Equal(models.TripStatusCompleted, listed.Trips[0].Status)
	s.Equal([]string{"bob"}, listed.Trips[0].TravelerCompanions)
	s.Equal(second, listed.Trips[1].ID)
	s.Equal(models.TripStatusOngoing, listed.Trips[1].Status)

	code, env = s.do(http.MethodGet, "/api/trips/viewAllTrips", bob, nil)
	s.Require().Equal(http.StatusOK, code)
	s.JSONEq(`{"trips":[]}`, string(env.Data))
}

func (s *HandlersSuite) TestUpdateLiveCoordinates_CacheWriteFailure() {
	alice := s.signUp("alice", "9876543210")
	tripID := s.createTrip(alice)
	_, err := s.cache.GetTripLocation(context.Background(), tripID)
	s.Require().NoError(err, "creation caches the source")

	s.cache.failWrites(errors.New("redis unavailable"))
	code, _ := s.do(http.MethodPost, fmt.Sprintf("/api/trips/updateLiveCoordinates/%d", tripID), alice, gin.H{
		"currentLatitude": 28.6, "currentLongitude": 77.2,
	})
	s.Require().Equal(http.StatusOK, code)

	_, err = s.cache.GetTripLocation(context.Background(), tripID)
	s.ErrorIs(err, services.ErrCacheMiss)

	code, env := s.do(http.MethodGet, fmt.Sprintf("/api/trips/viewTrip/%d", tripID), alice, nil)
	s.Require().Equal(http.StatusOK, code)
	var details models.TripDetails
	s.Require().NoError(json.Unmarshal(env.Data, &details))
	s.Equal(28.6, details.CurrentLatitude)
	s.Equal(77.2, details.CurrentLongitude)
}
