package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/utils"
)

type adminUserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Create(ctx context.Context, user *models.AdminUser) error
	UpdateLastLogin(ctx context.Context, id int) error
}

// LoginResult is returned on a successful admin login.
type LoginResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	Admin     *models.AdminUser `json:"admin"`
}

type AdminAuthService struct {
	adminRepo adminUserStore
	jwt       *utils.JWTManager
}

func NewAdminAuthService(adminRepo adminUserStore, jwt *utils.JWTManager) *AdminAuthService {
	return &AdminAuthService{adminRepo: adminRepo, jwt: jwt}
}

func (s *AdminAuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	log.Debug().Str("email", email).Msg("Login attempt")

	user, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, utils.ErrUserNotFound) {
			return nil, err
		}
		log.Warn().Str("email", email).Msg("Login for unknown admin")
		return nil, utils.ErrInvalidCredentials
	}

	if !user.IsActive {
		log.Warn().Str("email", email).Msg("Account is inactive")
		return nil, utils.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Password verification failed")
		return nil, utils.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateJWT(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.adminRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Warn().Err(err).Int("user_id", user.ID).Msg("Failed to record last login")
	}

	log.Info().Str("email", email).Msg("Login successful")
	return &LoginResult{Token: token, ExpiresAt: time.Now().Add(s.jwt.TTL()), Admin: user}, nil
}

func (s *AdminAuthService) CreateAdmin(ctx context.Context, email, password, name string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.AdminUser{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		IsActive:     true,
	}

	return s.adminRepo.Create(ctx, user)
}

// EnsureAdmin creates the bootstrap admin when the account does not exist yet.
func (s *AdminAuthService) EnsureAdmin(ctx context.Context, email, password, name string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.adminRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, utils.ErrUserNotFound) {
		return err
	}
	if err := s.CreateAdmin(ctx, email, password, name); err != nil {
		return err
	}
	log.Info().Str("email", email).Msg("Bootstrap admin created")
	return nil
}
