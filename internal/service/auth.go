package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/homegame/chipledger/internal/auth"
	"github.com/homegame/chipledger/internal/domain"
	"github.com/homegame/chipledger/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles operator registration and login.
type AuthService struct {
	pool   *pgxpool.Pool
	admins repository.AdminUserRepository
	jwtMgr *auth.JWTManager
}

// NewAuthService creates an AuthService.
func NewAuthService(pool *pgxpool.Pool, admins repository.AdminUserRepository, jwtMgr *auth.JWTManager) *AuthService {
	return &AuthService{pool: pool, admins: admins, jwtMgr: jwtMgr}
}

// LoginResult holds a signed token and its subject.
type LoginResult struct {
	Token string    `json:"token"`
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// RegisterAdmin creates an operator account.
func (s *AuthService) RegisterAdmin(ctx context.Context, email, password string) (*LoginResult, error) {
	if err := domain.ValidateEmail(email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if len(password) < 8 {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}

	existing, err := s.admins.FindByEmail(ctx, s.pool, email)
	if err != nil {
		return nil, domain.ErrInternal("find admin user", err)
	}
	if existing != nil {
		return nil, domain.ErrValidation("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	user := &domain.AdminUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.admins.Create(ctx, s.pool, user); err != nil {
		return nil, domain.ErrInternal("create admin user", err)
	}

	return s.issueToken(user)
}

// Login verifies operator credentials and returns a signed admin token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.admins.FindByEmail(ctx, s.pool, email)
	if err != nil {
		return nil, domain.ErrInternal("find admin user", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *domain.AdminUser) (*LoginResult, error) {
	token, err := s.jwtMgr.GenerateToken(auth.RealmAdmin, user.ID, user.Email, "operator")
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}
	return &LoginResult{Token: token, ID: user.ID, Email: user.Email}, nil
}
