package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/chachabrian/tripguard-backend/internal/database"
	"github.com/chachabrian/tripguard-backend/internal/database/storetest"
	"github.com/chachabrian/tripguard-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(*testing.T) database.Store { return NewStore() })
}

func TestStore_Err(t *testing.T) {
	s := NewStore()
	s.Err = errors.New("connection refused")

	assert.ErrorIs(t, s.CreateUser(context.Background(), &models.User{Username: "alice"}), s.Err)
	_, err := s.GetTrip(context.Background(), 1)
	assert.ErrorIs(t, err, s.Err)
	_, err = s.ListFeedbacks(context.Background())
	assert.ErrorIs(t, err, s.Err)
}
