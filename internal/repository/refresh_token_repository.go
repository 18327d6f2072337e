package repository

import (
	"context"
	"time"

	"therapy-booking-server/internal/models"

	"gorm.io/gorm"
)

type refreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, t *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *refreshTokenRepository) FindUsable(ctx context.Context, token, userID string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	err := r.db.WithContext(ctx).
		Where("token = ? AND user_id = ? AND is_revoked = ? AND expires_at > ?", token, userID, false, time.Now()).
		First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *refreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ? AND is_revoked = ?", token, false).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *refreshTokenRepository) Save(ctx context.Context, t *models.RefreshToken) error {
	return r.db.WithContext(ctx).Save(t).Error
}
