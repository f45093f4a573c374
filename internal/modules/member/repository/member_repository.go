package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/member/domain"
)

// ErrNotFound is returned when no member matches the query
var ErrNotFound = errors.New("member not found")

// MemberRepository handles member persistence
type MemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Create creates a new member
func (r *MemberRepository) Create(ctx context.Context, member *domain.Member) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

// GetByID retrieves a member by ID
func (r *MemberRepository) GetByID(ctx context.Context, userID int64) (*domain.Member, error) {
	var member domain.Member
	if err := r.db.WithContext(ctx).First(&member, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &member, nil
}

// GetByUsername retrieves a member by username
func (r *MemberRepository) GetByUsername(ctx context.Context, username string) (*domain.Member, error) {
	var member domain.Member
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &member, nil
}

// UsernameExists checks whether the username is taken
func (r *MemberRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

// TouchLastLogin stamps the member's last login time
func (r *MemberRepository) TouchLastLogin(ctx context.Context, userID int64) error {
	now := time.Now()
	err := r.db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("user_id = ?", userID).
		Update("last_login_at", now).Error
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
