package models

// DoctorStatus is the approval state of a doctor.
type DoctorStatus string

const (
	DoctorPending  DoctorStatus = "pending"
	DoctorApproved DoctorStatus = "approved"
	DoctorRejected DoctorStatus = "rejected"
)

// Doctor holds the provider attributes of a profile with RoleDoctor. Only
// approved doctors can be booked.
type Doctor struct {
	BaseModel
	UserID         string       `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Specialization string       `gorm:"size:150;not null" json:"specialization"`
	Bio            string       `gorm:"type:text" json:"bio,omitempty"`
	HourlyRate     float64      `gorm:"not null" json:"hourlyRate"`
	Languages      []string     `gorm:"serializer:json;type:text" json:"languages"`
	Status         DoctorStatus `gorm:"size:20;default:'pending';index" json:"status"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// Bookable reports whether appointments may be made with this doctor.
func (d *Doctor) Bookable() bool {
	return d.Status == DoctorApproved
}
