package repository

import (
	"context"

	"therapy-booking-server/internal/models"

	"gorm.io/gorm"
)

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, m *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *chatRepository) ListByAppointment(ctx context.Context, appointmentID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("sent_at asc, id asc").
		Find(&messages).Error
	return messages, err
}
