package services

import (
	"context"
	"testing"
	"time"

	"hostelswap_server/models"
	"hostelswap_server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(users *fakeUserStore) *AuthService {
	return &AuthService{
		Users:  users,
		Tokens: NewTokenService("test-secret", time.Hour),
		Now:    fixedClock,
		Cost:   bcrypt.MinCost,
	}
}

func TestRegister_CreatesUserAndToken(t *testing.T) {
	users := newFakeUserStore()
	svc := newAuthService(users)

	result, err := svc.Register(context.Background(), RegisterInput{
		Name:        " Asha ",
		Email:       "Asha@Hostel.EDU",
		Password:    "secret123",
		Gender:      models.GenderFemale,
		CurrentRoom: &roomA,
	})
	require.NoError(t, err)

	assert.Equal(t, "asha@hostel.edu", result.User.Email)
	assert.Equal(t, "Asha", result.User.Name)
	assert.Equal(t, "Ganga", result.User.Hostel)
	assert.NotEqual(t, "secret123", result.User.PasswordHash)

	userID, err := svc.Tokens.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.UserID, userID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := newFakeUserStore(models.User{UserID: "u1", Email: "asha@hostel.edu", IsActive: true})
	svc := newAuthService(users)

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Asha", Email: "ASHA@hostel.edu", Password: "secret123", Gender: models.GenderFemale})

	assertKind(t, err, utils.KindConflict)
}

func TestLogin(t *testing.T) {
	users := newFakeUserStore()
	svc := newAuthService(users)
	registered, err := svc.Register(context.Background(), RegisterInput{Name: "Asha", Email: "asha@hostel.edu", Password: "secret123", Gender: models.GenderFemale})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), LoginInput{Email: "ASHA@hostel.edu", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.UserID, result.User.UserID)

	_, err = svc.Login(context.Background(), LoginInput{Email: "asha@hostel.edu", Password: "wrong"})
	assertKind(t, err, utils.KindUnauthorized)

	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@hostel.edu", Password: "secret123"})
	assertKind(t, err, utils.KindUnauthorized)
}
