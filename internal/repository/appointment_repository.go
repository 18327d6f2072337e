package repository

import (
	"context"

	"therapy-booking-server/internal/models"

	"gorm.io/gorm"
)

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *appointmentRepository) List(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error) {
	q := r.db.WithContext(ctx).Order("appointment_date asc, appointment_time asc")
	if f.PatientID != "" {
		q = q.Where("patient_id = ?", f.PatientID)
	}
	if f.DoctorID != "" {
		q = q.Where("doctor_id = ?", f.DoctorID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var appointments []models.Appointment
	err := q.Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	return r.updateColumn(ctx, id, "status", status)
}

func (r *appointmentRepository) UpdatePaymentReference(ctx context.Context, id, reference string) error {
	return r.updateColumn(ctx, id, "payment_reference", reference)
}

func (r *appointmentRepository) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	return r.updateColumn(ctx, id, "payment_status", status)
}

func (r *appointmentRepository) updateColumn(ctx context.Context, id, column string, value interface{}) error {
	return updated(r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ?", id).
		Update(column, value))
}

func (r *appointmentRepository) Totals(ctx context.Context) (*AppointmentTotals, error) {
	totals := &AppointmentTotals{ByStatus: make(map[models.AppointmentStatus]int64)}

	var counts []struct {
		Status models.AppointmentStatus
		Total  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, c := range counts {
		totals.ByStatus[c.Status] = c.Total
	}

	var revenue []struct {
		PaymentStatus models.PaymentStatus
		Amount        float64
	}
	if err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("payment_status, COALESCE(SUM(total_amount), 0) AS amount").
		Where("payment_status IN ?", []models.PaymentStatus{models.PaymentPaid, models.PaymentPending}).
		Group("payment_status").
		Scan(&revenue).Error; err != nil {
		return nil, err
	}
	for _, row := range revenue {
		switch row.PaymentStatus {
		case models.PaymentPaid:
			totals.PaidRevenue = row.Amount
		case models.PaymentPending:
			totals.PendingRevenue = row.Amount
		}
	}
	return totals, nil
}
