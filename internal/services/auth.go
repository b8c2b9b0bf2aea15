package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/biblio-app/biblio/internal/apperr"
	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/repository"
)

// AuthService handles registration, login and token validation. Revoked
// tokens are tracked in redis until they expire on their own.
type AuthService struct {
	store        Store
	secret       []byte
	tokenExpiry  time.Duration
	redisClient  *redis.Client
	logger       *slog.Logger
	storeTimeout time.Duration
}

func NewAuthService(store Store, secret string, tokenExpiry time.Duration, redisClient *redis.Client, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:        store,
		secret:       []byte(secret),
		tokenExpiry:  tokenExpiry,
		redisClient:  redisClient,
		logger:       logger,
		storeTimeout: 5 * time.Second,
	}
}

// Register creates a member account with self-service defaults
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, apperr.CodeInternal, "hash password")
	}

	user, err := s.store.CreateUser(ctx, repository.CreateUserParams{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleMember,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperr.Wrap(err, apperr.KindConstraint, apperr.CodeConstraintViolation, "email already registered")
		}
		return nil, apperr.FromStore(err, "create user")
	}

	s.logger.Info("member registered", "user_id", user.ID, "email", user.Email)
	return s.issueToken(&user)
}

// Login verifies credentials and issues a token
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.Validation("invalid email or password", nil)
		}
		return nil, apperr.FromStore(err, "get user")
	}
	if !user.IsActive {
		return nil, apperr.BusinessRule(apperr.CodeUserInactive, "account is deactivated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.Validation("invalid email or password", nil)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return s.issueToken(&user)
}

// Logout revokes the presented token for its remaining lifetime
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.ValidateToken(ctx, tokenString)
	if err != nil {
		return err
	}

	ttl := s.tokenExpiry
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 || s.redisClient == nil {
		return nil
	}
	if err := s.redisClient.Set(ctx, blacklistKey(tokenString), "1", ttl).Err(); err != nil {
		return apperr.Wrap(err, apperr.KindInternal, apperr.CodeInternal, "revoke token")
	}
	return nil
}

// ValidateToken parses and checks a token, including the revocation list
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindValidation, apperr.CodeValidation, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, apperr.Validation("invalid token", nil)
	}

	if s.redisClient != nil {
		revoked, err := s.redisClient.Exists(ctx, blacklistKey(tokenString)).Result()
		if err != nil {
			s.logger.Error("failed to check token revocation", "error", err)
		} else if revoked > 0 {
			return nil, apperr.Validation("token has been revoked", nil)
		}
	}

	return claims, nil
}

func (s *AuthService) issueToken(user *models.User) (*models.AuthResponse, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenExpiry)

	claims := &models.JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "biblio",
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, apperr.CodeInternal, "sign token")
	}

	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func blacklistKey(token string) string {
	return "auth:blacklist:" + token
}
