package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"therapy-booking-server/internal/apperrors"
	"therapy-booking-server/internal/logger"
	"therapy-booking-server/internal/models"
	"therapy-booking-server/internal/policy"
	"therapy-booking-server/internal/realtime"
	"therapy-booking-server/internal/repository"

	"go.uber.org/zap"
)

const maxMessageLength = 4000

// MessageView is a chat message with its sender's display name.
type MessageView struct {
	models.ChatMessage
	SenderName string `json:"senderName"`
}

type ChatService struct {
	appointments repository.AppointmentRepository
	messages     repository.ChatRepository
	users        repository.UserRepository
	feed         realtime.Subscriber
}

func NewChatService(appts repository.AppointmentRepository, messages repository.ChatRepository, users repository.UserRepository, feed realtime.Subscriber) *ChatService {
	return &ChatService{appointments: appts, messages: messages, users: users, feed: feed}
}

func (s *ChatService) authorize(ctx context.Context, actor policy.Actor, appointmentID string) (*models.Appointment, error) {
	if err := policy.Authenticated(actor); err != nil {
		return nil, err
	}
	appt, err := s.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, lookupError(err, "appointment", appointmentID)
	}
	if err := policy.CanUseChat(actor, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// List returns the appointment's messages oldest first.
func (s *ChatService) List(ctx context.Context, actor policy.Actor, appointmentID string) ([]MessageView, error) {
	if _, err := s.authorize(ctx, actor, appointmentID); err != nil {
		return nil, err
	}
	return s.read(ctx, appointmentID)
}

func (s *ChatService) read(ctx context.Context, appointmentID string) ([]MessageView, error) {
	msgs, err := s.messages.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, apperrors.Persistence("list chat messages", err)
	}

	senders := make([]string, 0, len(msgs))
	for _, m := range msgs {
		senders = append(senders, m.SenderID)
	}
	names, err := resolveNames(ctx, s.users, senders)
	if err != nil {
		return nil, err
	}

	views := make([]MessageView, len(msgs))
	for i, m := range msgs {
		views[i] = MessageView{ChatMessage: m, SenderName: names[m.SenderID]}
	}
	return views, nil
}

// Send appends a message from actor. The appointment must be confirmed.
func (s *ChatService) Send(ctx context.Context, actor policy.Actor, appointmentID, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("message", "is required")
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return nil, apperrors.Validation("message", "is too long")
	}

	appt, err := s.authorize(ctx, actor, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Status != models.StatusConfirmed {
		return nil, apperrors.Validation("appointmentId", "chat is only available for confirmed appointments")
	}

	msg := &models.ChatMessage{
		AppointmentID: appointmentID,
		SenderID:      actor.UserID,
		Message:       text,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.Persistence("create chat message", err)
	}
	return msg, nil
}

// Watch streams the full message list: once immediately, then again after
// every insert notification for the appointment. The channel is closed and
// the subscription released when ctx ends.
func (s *ChatService) Watch(ctx context.Context, actor policy.Actor, appointmentID string) (<-chan []MessageView, error) {
	if _, err := s.authorize(ctx, actor, appointmentID); err != nil {
		return nil, err
	}

	sub := s.feed.Subscribe(realtime.ChatTopic(appointmentID))
	out := make(chan []MessageView, 1)

	go func() {
		defer close(out)
		defer sub.Close()

		emit := func() bool {
			views, err := s.read(ctx, appointmentID)
			if err != nil {
				if ctx.Err() == nil {
					logger.Log.Warn("chat refetch failed",
						zap.String("appointment_id", appointmentID), zap.Error(err))
				}
				return ctx.Err() == nil
			}
			select {
			case out <- views:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				if ev.Type != realtime.EventInsert {
					continue
				}
				if !emit() {
					return
				}
			}
		}
	}()
	return out, nil
}
