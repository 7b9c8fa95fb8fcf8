package repository

import (
	"context"
	"time"

	"reservehub/internal/domain"

	"gorm.io/gorm"
)

// UserTokenRepository provides DB access for emailed single-use tokens.
type UserTokenRepository struct {
	db *gorm.DB
}

func NewUserTokenRepository(db *gorm.DB) *UserTokenRepository {
	return &UserTokenRepository{db: db}
}

func (r *UserTokenRepository) Create(ctx context.Context, t *domain.UserToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// GetActive returns an unused, unexpired token of the given purpose.
func (r *UserTokenRepository) GetActive(ctx context.Context, purpose domain.TokenPurpose, hash string) (*domain.UserToken, error) {
	var t domain.UserToken
	err := r.db.WithContext(ctx).
		Where("token_hash = ? AND purpose = ? AND used_at IS NULL AND expires_at > ?", hash, purpose, time.Now().UTC()).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkUsed flips used_at once; a second call reports ErrRecordNotFound.
func (r *UserTokenRepository) MarkUsed(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Model(&domain.UserToken{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", time.Now().UTC())
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// InvalidateForUser marks every outstanding token of a purpose as used.
func (r *UserTokenRepository) InvalidateForUser(ctx context.Context, userID int64, purpose domain.TokenPurpose) error {
	return r.db.WithContext(ctx).Model(&domain.UserToken{}).
		Where("user_id = ? AND purpose = ? AND used_at IS NULL", userID, purpose).
		Update("used_at", time.Now().UTC()).Error
}

func (r *UserTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).
		Where("expires_at < ? OR used_at IS NOT NULL", now).
		Delete(&domain.UserToken{})
	return tx.RowsAffected, tx.Error
}
