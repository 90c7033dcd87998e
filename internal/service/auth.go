package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nvoss/agent-chat/internal/domain"
	"github.com/nvoss/agent-chat/internal/security"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo   domain.UserRepository
	jwtManager *security.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo domain.UserRepository, jwtManager *security.JWTManager) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// Register creates a new user account and returns it with a session token
func (s *AuthService) Register(ctx context.Context, input domain.UserCreate) (*domain.User, string, error) {
	email := normalizeEmail(input.Email)

	// Check if email already exists
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, "", domain.ErrEmailTaken
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	// Create user. The unique email index backstops the check above under
	// concurrent sign-ups; the repository reports that as ErrEmailTaken.
	user := &domain.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		FullName:     strings.TrimSpace(input.FullName),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.jwtManager.GenerateToken(user.ID.Hex(), user.FullName, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and returns it with a session token. Unknown
// email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, input domain.UserLogin) (*domain.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateToken(user.ID.Hex(), user.FullName, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
