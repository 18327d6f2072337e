// Package memrepo provides in-memory repositories for tests. They follow the
// contracts of package repository, including ErrNotFound on missing rows,
// and are safe for concurrent use.
package memrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"therapy-booking-server/internal/models"
	"therapy-booking-server/internal/repository"

	"github.com/google/uuid"
)

var (
	_ repository.UserRepository         = (*Users)(nil)
	_ repository.DoctorRepository       = (*Doctors)(nil)
	_ repository.AppointmentRepository  = (*Appointments)(nil)
	_ repository.ChatRepository         = (*Chat)(nil)
	_ repository.RefreshTokenRepository = (*RefreshTokens)(nil)
)

// New returns a repository set backed by fresh in-memory stores.
func New() (*repository.Repositories, *Store) {
	s := &Store{
		Users:         &Users{rows: make(map[string]*models.User)},
		Appointments:  &Appointments{rows: make(map[string]*models.Appointment)},
		Chat:          &Chat{},
		RefreshTokens: &RefreshTokens{rows: make(map[string]*models.RefreshToken)},
	}
	s.Doctors = &Doctors{rows: make(map[string]*models.Doctor), users: s.Users}
	s.Users.store = s
	return &repository.Repositories{
		Users:         s.Users,
		Doctors:       s.Doctors,
		Appointments:  s.Appointments,
		Chat:          s.Chat,
		RefreshTokens: s.RefreshTokens,
	}, s
}

// Store exposes the concrete stores behind a repository set.
type Store struct {
	Users         *Users
	Doctors       *Doctors
	Appointments  *Appointments
	Chat          *Chat
	RefreshTokens *RefreshTokens
}

func (s *Store) referenced(userID string) bool {
	return s.Doctors.Get(userID) != nil || s.Appointments.involves(userID) || s.Chat.sentBy(userID)
}

// Users implements repository.UserRepository.
type Users struct {
	mu    sync.Mutex
	rows  map[string]*models.User
	store *Store
}

// Put stores u as is.
func (m *Users) Put(u *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.rows[u.ID] = &cp
}

func (m *Users) Create(_ context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.Put(u)
	return nil
}

func (m *Users) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *Users) FindByIDs(_ context.Context, ids []string) (map[string]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]models.User, len(ids))
	for _, id := range ids {
		if u, ok := m.rows[id]; ok {
			out[id] = *u
		}
	}
	return out, nil
}

func (m *Users) List(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.rows))
	for _, u := range m.rows {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Users) Update(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	m.rows[u.ID] = &cp
	return nil
}

// Delete mirrors the gorm repository: referenced profiles are refused with
// ErrInUse and the user's refresh tokens go with the profile.
func (m *Users) Delete(_ context.Context, id string) error {
	if !m.Exists(id) {
		return repository.ErrNotFound
	}
	if m.store.referenced(id) {
		return repository.ErrInUse
	}
	m.store.RefreshTokens.deleteForUser(id)

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *Users) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

// Exists reports whether a profile with id is stored.
func (m *Users) Exists(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[id]
	return ok
}

// Doctors implements repository.DoctorRepository.
type Doctors struct {
	mu    sync.Mutex
	rows  map[string]*models.Doctor
	users *Users

	// FindErr, when set, is returned by FindByUserID.
	FindErr error
}

// Put stores d keyed by its user id.
func (m *Doctors) Put(d *models.Doctor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	cp := *d
	m.rows[d.UserID] = &cp
}

func (m *Doctors) Register(ctx context.Context, u *models.User, d *models.Doctor) error {
	if err := m.users.Create(ctx, u); err != nil {
		return err
	}
	d.UserID = u.ID
	m.Put(d)
	return nil
}

func (m *Doctors) FindByUserID(_ context.Context, userID string) (*models.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	d, ok := m.rows[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *Doctors) List(_ context.Context, status models.DoctorStatus) ([]models.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Doctor
	for _, d := range m.rows {
		if status == "" || d.Status == status {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *Doctors) UpdateStatus(_ context.Context, userID string, status models.DoctorStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[userID]
	if !ok {
		return repository.ErrNotFound
	}
	d.Status = status
	return nil
}

func (m *Doctors) CountByStatus(_ context.Context) (map[models.DoctorStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[models.DoctorStatus]int64)
	for _, d := range m.rows {
		out[d.Status]++
	}
	return out, nil
}

// Get returns the stored doctor for userID, or nil.
func (m *Doctors) Get(userID string) *models.Doctor {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.rows[userID]; ok {
		cp := *d
		return &cp
	}
	return nil
}

// Appointments implements repository.AppointmentRepository. List orders by
// date then time, keeping insertion order for ties.
type Appointments struct {
	mu    sync.Mutex
	rows  map[string]*models.Appointment
	order []string

	// CreateErr and UpdateErr, when set, fail the matching operations.
	CreateErr error
	UpdateErr error
}

// Put stores a as is.
func (m *Appointments) Put(a *models.Appointment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[a.ID]; !ok {
		m.order = append(m.order, a.ID)
	}
	cp := *a
	m.rows[a.ID] = &cp
}

func (m *Appointments) Create(_ context.Context, a *models.Appointment) error {
	m.mu.Lock()
	err := m.CreateErr
	m.mu.Unlock()
	if err != nil {
		return err
	}
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.Put(a)
	return nil
}

func (m *Appointments) FindByID(_ context.Context, id string) (*models.Appointment, error) {
	if a := m.Get(id); a != nil {
		return a, nil
	}
	return nil, repository.ErrNotFound
}

func (m *Appointments) List(_ context.Context, f repository.AppointmentFilter) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	for _, id := range m.order {
		a := m.rows[id]
		if f.PatientID != "" && a.PatientID != f.PatientID {
			continue
		}
		if f.DoctorID != "" && a.DoctorID != f.DoctorID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, *a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AppointmentDate != out[j].AppointmentDate {
			return out[i].AppointmentDate < out[j].AppointmentDate
		}
		return out[i].AppointmentTime < out[j].AppointmentTime
	})
	return out, nil
}

func (m *Appointments) update(id string, fn func(a *models.Appointment)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	a, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(a)
	a.UpdatedAt = time.Now()
	return nil
}

func (m *Appointments) UpdateStatus(_ context.Context, id string, status models.AppointmentStatus) error {
	return m.update(id, func(a *models.Appointment) { a.Status = status })
}

func (m *Appointments) UpdatePaymentReference(_ context.Context, id, reference string) error {
	return m.update(id, func(a *models.Appointment) { a.PaymentReference = &reference })
}

func (m *Appointments) UpdatePaymentStatus(_ context.Context, id string, status models.PaymentStatus) error {
	return m.update(id, func(a *models.Appointment) { a.PaymentStatus = status })
}

func (m *Appointments) Totals(_ context.Context) (*repository.AppointmentTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &repository.AppointmentTotals{ByStatus: make(map[models.AppointmentStatus]int64)}
	for _, a := range m.rows {
		t.ByStatus[a.Status]++
		switch a.PaymentStatus {
		case models.PaymentPaid:
			t.PaidRevenue += a.TotalAmount
		case models.PaymentPending:
			t.PendingRevenue += a.TotalAmount
		}
	}
	return t, nil
}

// Get returns a copy of the stored appointment, or nil.
func (m *Appointments) Get(id string) *models.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.rows[id]; ok {
		cp := *a
		return &cp
	}
	return nil
}

func (m *Appointments) involves(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.rows {
		if a.HasParty(userID) {
			return true
		}
	}
	return false
}

// Len returns the number of stored appointments.
func (m *Appointments) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// Chat implements repository.ChatRepository.
type Chat struct {
	mu   sync.Mutex
	rows []models.ChatMessage

	// OnCreate runs after a message is stored, outside the lock. Tests use
	// it to stand in for the database change feed.
	OnCreate func(m *models.ChatMessage)
}

// Put stores msg as is.
func (m *Chat) Put(msg models.ChatMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, msg)
}

func (m *Chat) Create(_ context.Context, msg *models.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	m.mu.Lock()
	m.rows = append(m.rows, *msg)
	hook := m.OnCreate
	m.mu.Unlock()
	if hook != nil {
		hook(msg)
	}
	return nil
}

func (m *Chat) ListByAppointment(_ context.Context, appointmentID string) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ChatMessage
	for _, msg := range m.rows {
		if msg.AppointmentID == appointmentID {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return out, nil
}

func (m *Chat) sentBy(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.rows {
		if msg.SenderID == userID {
			return true
		}
	}
	return false
}

// Len returns the number of stored messages.
func (m *Chat) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// RefreshTokens implements repository.RefreshTokenRepository.
type RefreshTokens struct {
	mu   sync.Mutex
	rows map[string]*models.RefreshToken
}

func (m *RefreshTokens) Create(_ context.Context, t *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	cp := *t
	m.rows[t.ID] = &cp
	return nil
}

func (m *RefreshTokens) deleteForUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.rows {
		if t.UserID == userID {
			delete(m.rows, id)
		}
	}
}

// Len returns the number of stored tokens.
func (m *RefreshTokens) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *RefreshTokens) find(match func(t *models.RefreshToken) bool) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.rows {
		if match(t) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *RefreshTokens) FindUsable(_ context.Context, token, userID string) (*models.RefreshToken, error) {
	now := time.Now()
	return m.find(func(t *models.RefreshToken) bool {
		return t.Token == token && t.UserID == userID && t.Usable(now)
	})
}

func (m *RefreshTokens) FindByToken(_ context.Context, token string) (*models.RefreshToken, error) {
	return m.find(func(t *models.RefreshToken) bool { return t.Token == token && !t.IsRevoked })
}

func (m *RefreshTokens) Save(_ context.Context, t *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.rows[t.ID] = &cp
	return nil
}
