package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/c14220110/findmyclinic-backend/internal/models"
	"github.com/c14220110/findmyclinic-backend/pkg/storage"
	"github.com/c14220110/findmyclinic-backend/pkg/utils"
)

type AuthService struct {
	Store      storage.Storage
	Secret     []byte
	SessionTTL time.Duration
	BcryptCost int
	Revoked    *utils.RevocationList
	Logger     zerolog.Logger

	now func() time.Time
}

type AuthConfig struct {
	Secret     []byte
	SessionTTL time.Duration
	BcryptCost int
	Revoked    *utils.RevocationList
}

func NewAuthService(store storage.Storage, cfg AuthConfig, logger zerolog.Logger) *AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Revoked == nil {
		cfg.Revoked = utils.NewRevocationList()
	}
	return &AuthService{
		Store:      store,
		Secret:     cfg.Secret,
		SessionTTL: cfg.SessionTTL,
		BcryptCost: cfg.BcryptCost,
		Revoked:    cfg.Revoked,
		Logger:     logger,
		now:        time.Now,
	}
}

// Session is the outcome of a successful signup or login.
type Session struct {
	User        models.User
	UserType    string
	ClinicStaff *models.ClinicStaff
	Token       string
	ExpiresAt   time.Time
}

// Signup creates an account and signs a session for it.
func (s *AuthService) Signup(ctx context.Context, username, password, userType string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if userType == "" {
		userType = models.UserTypePatient
	}
	if userType != models.UserTypePatient && userType != models.UserTypeStaff {
		return Session{}, fmt.Errorf("%w: unknown user type %q", ErrValidation, userType)
	}

	if _, err := s.Store.GetUserByUsername(ctx, username); err == nil {
		return Session{}, ErrUsernameTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.BcryptCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.Store.CreateUser(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return Session{}, ErrUsernameTaken
		}
		return Session{}, err
	}

	session, err := s.issue(user, userType, nil)
	if err != nil {
		return Session{}, err
	}
	s.Logger.Info().Str("userId", user.ID).Str("userType", userType).Msg("user signed up")
	return session, nil
}

// Login verifies the password. The user type is staff whenever a clinic
// staff record exists for the account.
func (s *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	user, err := s.Store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	userType := models.UserTypePatient
	var staff *models.ClinicStaff
	record, err := s.Store.GetClinicStaffByUserID(ctx, user.ID)
	switch {
	case err == nil:
		userType = models.UserTypeStaff
		staff = &record
	case !errors.Is(err, storage.ErrNotFound):
		return Session{}, err
	}

	return s.issue(user, userType, staff)
}

func (s *AuthService) issue(user models.User, userType string, staff *models.ClinicStaff) (Session, error) {
	exp := s.now().Add(s.SessionTTL)
	token, _, err := utils.GenerateJWTToken(s.Secret, user.ID, userType, exp)
	if err != nil {
		return Session{}, fmt.Errorf("sign session: %w", err)
	}
	return Session{User: user, UserType: userType, ClinicStaff: staff, Token: token, ExpiresAt: exp}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(claims *utils.Claims) {
	if claims == nil || claims.ID == "" {
		return
	}
	until := s.now().Add(s.SessionTTL)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	s.Revoked.Revoke(claims.ID, until)
	s.Logger.Debug().Str("userId", claims.UserID).Msg("session revoked")
}
