package models

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// PaymentStatus is tracked independently of AppointmentStatus.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Session lengths that can be booked, in minutes.
var AllowedDurations = []int{30, 60, 90}

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed},
}

// CanTransitionTo reports whether s -> next is a defined transition.
// Cancelled and completed are terminal.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether s -> next is a defined transition.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment is a booked session between a patient and a doctor.
// TotalAmount is fixed at creation from the doctor's rate at that time.
type Appointment struct {
	BaseModel
	PatientID        string            `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID         string            `gorm:"size:36;index;not null" json:"doctorId"`
	AppointmentDate  string            `gorm:"size:10;not null" json:"appointmentDate"`
	AppointmentTime  string            `gorm:"size:5;not null" json:"appointmentTime"`
	Duration         int               `gorm:"not null" json:"duration"`
	Notes            string            `gorm:"type:text" json:"notes,omitempty"`
	TotalAmount      float64           `gorm:"not null" json:"totalAmount"`
	Status           AppointmentStatus `gorm:"size:20;default:'pending';index" json:"status"`
	PaymentStatus    PaymentStatus     `gorm:"size:20;default:'pending'" json:"paymentStatus"`
	PaymentReference *string           `gorm:"size:100;index" json:"paymentReference"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}

// HasParty reports whether userID is the patient or the doctor.
func (a *Appointment) HasParty(userID string) bool {
	return userID != "" && (a.PatientID == userID || a.DoctorID == userID)
}
