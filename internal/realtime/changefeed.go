package realtime

import (
	"context"

	"therapy-booking-server/internal/logger"
	"therapy-booking-server/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const chatTable = "chat_messages"

// ChatTopic is the topic carrying inserts for one appointment's chat.
func ChatTopic(appointmentID string) string {
	return chatTable + ":" + appointmentID
}

// RegisterChangeFeed hooks gorm so that every committed chat message insert
// is published to pub.
func RegisterChangeFeed(db *gorm.DB, pub Publisher) error {
	return db.Callback().Create().
		After("gorm:commit_or_rollback_transaction").
		Register("realtime:chat_insert", func(tx *gorm.DB) {
			if tx.Error != nil || tx.Statement.Schema == nil || tx.Statement.Schema.Table != chatTable {
				return
			}
			for _, ev := range chatInsertEvents(tx.Statement.Dest) {
				ctx := tx.Statement.Context
				if ctx == nil {
					ctx = context.Background()
				}
				if err := pub.Publish(ctx, ev); err != nil {
					logger.Log.Warn("chat change feed publish failed", zap.String("topic", ev.Topic), zap.Error(err))
				}
			}
		})
}

func chatInsertEvents(dest interface{}) []Event {
	var rows []*models.ChatMessage
	switch v := dest.(type) {
	case *models.ChatMessage:
		rows = append(rows, v)
	case []models.ChatMessage:
		for i := range v {
			rows = append(rows, &v[i])
		}
	case *[]models.ChatMessage:
		for i := range *v {
			rows = append(rows, &(*v)[i])
		}
	}

	events := make([]Event, 0, len(rows))
	for _, m := range rows {
		if m.AppointmentID == "" {
			continue
		}
		events = append(events, Event{
			Type:     EventInsert,
			Topic:    ChatTopic(m.AppointmentID),
			Table:    chatTable,
			RecordID: m.ID,
			At:       m.SentAt,
		})
	}
	return events
}
