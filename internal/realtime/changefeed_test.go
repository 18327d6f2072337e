package realtime

import (
	"testing"
	"time"

	"therapy-booking-server/internal/models"

	"gorm.io/gorm"
)

func openFeedDB(t *testing.T, hub *Hub) *gorm.DB {
	t.Helper()
	db, err := models.Open(models.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:?_pragma=foreign_keys(1)"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := RegisterChangeFeed(db, hub); err != nil {
		t.Fatalf("RegisterChangeFeed: %v", err)
	}
	return db
}

func TestChangeFeed_PublishesCommittedChatInserts(t *testing.T) {
	hub := NewHub(8)
	db := openFeedDB(t, hub)

	pat := &models.User{Email: "pat@example.com", Role: models.RoleUser}
	doc := &models.User{Email: "doc@example.com", Role: models.RoleDoctor}
	for _, u := range []*models.User{pat, doc} {
		if err := db.Create(u).Error; err != nil {
			t.Fatal(err)
		}
	}
	appt := &models.Appointment{PatientID: pat.ID, DoctorID: doc.ID, AppointmentDate: "2025-03-12", AppointmentTime: "10:00", Duration: 60, TotalAmount: 6000}
	if err := db.Create(appt).Error; err != nil {
		t.Fatal(err)
	}

	sub := hub.Subscribe(ChatTopic(appt.ID))
	defer sub.Close()

	base := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	var ids []string
	for i, sender := range []string{doc.ID, pat.ID, pat.ID} {
		m := &models.ChatMessage{AppointmentID: appt.ID, SenderID: sender, Message: "hi", SentAt: base.Add(time.Duration(-i) * time.Minute)}
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("create message: %v", err)
		}
		ids = append(ids, m.ID)
	}

	for _, id := range ids {
		ev := receive(t, sub)
		if ev.Type != EventInsert || ev.Topic != "chat_messages:"+appt.ID || ev.Table != "chat_messages" || ev.RecordID != id {
			t.Fatalf("unexpected event %+v", ev)
		}
	}

	// A rejected insert is rolled back and must not notify.
	orphan := &models.ChatMessage{AppointmentID: appt.ID, SenderID: "no-such-user", Message: "lost"}
	if err := db.Create(orphan).Error; err == nil {
		t.Fatal("expected foreign key failure")
	}
	select {
	case ev := <-sub.C:
		t.Fatalf("rolled back insert published %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
