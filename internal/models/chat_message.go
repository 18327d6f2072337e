package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatMessage is an immutable message posted in an appointment's chat.
type ChatMessage struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AppointmentID string    `gorm:"size:36;index;not null" json:"appointmentId"`
	SenderID      string    `gorm:"size:36;index;not null" json:"senderId"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	SentAt        time.Time `gorm:"index" json:"sentAt"`

	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
	Sender      User        `gorm:"foreignKey:SenderID" json:"-"`
}

// BeforeCreate assigns the id and send time when the caller left them empty.
func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}
	return nil
}
