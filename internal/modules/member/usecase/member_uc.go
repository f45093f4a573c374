// Package usecase implements member registration and authentication.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/member/domain"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/member/repository"
	"github.com/jiyoung145900-png/daisy-vip/pkg/logger"
)

// ErrInvalidCredentials is returned for a bad username/password pair
var ErrInvalidCredentials = errors.New("invalid username or password")

// MemberUseCase handles registration, login and token validation
type MemberUseCase struct {
	members         *repository.MemberRepository
	jwtSecret       []byte
	tokenDuration   time.Duration
	startingBalance int64
}

// NewMemberUseCase creates a new member use case
func NewMemberUseCase(members *repository.MemberRepository, jwtSecret string, tokenDuration time.Duration, startingBalance int64) *MemberUseCase {
	return &MemberUseCase{
		members:         members,
		jwtSecret:       []byte(jwtSecret),
		tokenDuration:   tokenDuration,
		startingBalance: startingBalance,
	}
}

type memberClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Register registers a new member
func (uc *MemberUseCase) Register(ctx context.Context, username, password, nickname string) (int64, error) {
	if username == "" || password == "" {
		return 0, fmt.Errorf("username and password are required")
	}
	if len(password) < 6 {
		return 0, fmt.Errorf("password must be at least 6 characters")
	}

	exists, err := uc.members.UsernameExists(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return 0, fmt.Errorf("username already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	member := &domain.Member{
		Username:     username,
		PasswordHash: string(hashedPassword),
		Nickname:     nickname,
		Balance:      uc.startingBalance,
		Status:       domain.StatusActive,
	}
	if err := uc.members.Create(ctx, member); err != nil {
		return 0, err
	}

	logger.Info(ctx).
		Int64("user_id", member.UserID).
		Str("username", username).
		Msg("Member registered")

	return member.UserID, nil
}

// Login verifies credentials and issues a JWT
func (uc *MemberUseCase) Login(ctx context.Context, username, password string) (int64, string, time.Time, error) {
	member, err := uc.members.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, "", time.Time{}, ErrInvalidCredentials
		}
		return 0, "", time.Time{}, err
	}

	if !member.IsActive() {
		return 0, "", time.Time{}, fmt.Errorf("account suspended")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return 0, "", time.Time{}, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(uc.tokenDuration)
	claims := memberClaims{
		UserID:   member.UserID,
		Username: member.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.jwtSecret)
	if err != nil {
		return 0, "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	if err := uc.members.TouchLastLogin(ctx, member.UserID); err != nil {
		logger.Warn(ctx).Err(err).Int64("user_id", member.UserID).Msg("Failed to stamp last login")
	}

	return member.UserID, token, expiresAt, nil
}

// ValidateToken parses and verifies a JWT, returning the member identity
func (uc *MemberUseCase) ValidateToken(ctx context.Context, tokenString string) (int64, string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &memberClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return uc.jwtSecret, nil
	})
	if err != nil {
		return 0, "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*memberClaims)
	if !ok || !token.Valid {
		return 0, "", fmt.Errorf("invalid token claims")
	}
	return claims.UserID, claims.Username, nil
}

// GetMember returns a member by id
func (uc *MemberUseCase) GetMember(ctx context.Context, userID int64) (*domain.Member, error) {
	return uc.members.GetByID(ctx, userID)
}
