package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"hostelswap_server/models"
	"hostelswap_server/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the payload of POST /api/auth/register
type RegisterInput struct {
	Name        string              `json:"name" validate:"required,min=2,max=80"`
	Email       string              `json:"email" validate:"required,email"`
	Password    string              `json:"password" validate:"required,min=6,max=72"`
	Gender      string              `json:"gender" validate:"required,oneof=male female other"`
	Phone       string              `json:"phone" validate:"omitempty,max=20"`
	Year        int                 `json:"year" validate:"omitempty,min=1,max=10"`
	Hostel      string              `json:"hostel" validate:"omitempty,max=80"`
	CurrentRoom *models.RoomDetails `json:"currentRoom"`
}

// LoginInput is the payload of POST /api/auth/login
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService registers users and exchanges credentials for tokens
type AuthService struct {
	Users  UserStore
	Tokens *TokenService
	Now    func() time.Time
	Cost   int
}

func (s *AuthService) hashCost() int {
	if s.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return s.Cost
}

// Register creates a user; the email must not be taken
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, utils.NewConflictError("email is already registered")
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost())
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := models.Timestamp(s.Now())
	user := &models.User{
		UserID:       uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(hashed),
		Gender:       input.Gender,
		Phone:        input.Phone,
		Year:         input.Year,
		Hostel:       input.Hostel,
		CurrentRoom:  input.CurrentRoom,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if user.Hostel == "" && user.CurrentRoom != nil {
		user.Hostel = user.CurrentRoom.Hostel
	}

	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return nil, utils.NewConflictError("user already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.Tokens.GenerateToken(user.UserID)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Registered user %s", user.UserID)
	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials; every failure looks the same to the caller
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	invalid := utils.NewUnauthorizedError("invalid email or password")

	user, err := s.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if isNotFound(err) {
			return nil, invalid
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if !user.IsActive {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, invalid
	}

	token, err := s.Tokens.GenerateToken(user.UserID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
