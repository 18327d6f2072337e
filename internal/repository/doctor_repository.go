package repository

import (
	"context"

	"therapy-booking-server/internal/models"

	"gorm.io/gorm"
)

type doctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) Register(ctx context.Context, u *models.User, d *models.Doctor) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		d.UserID = u.ID
		return tx.Create(d).Error
	})
}

func (r *doctorRepository) FindByUserID(ctx context.Context, userID string) (*models.Doctor, error) {
	var d models.Doctor
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&d).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *doctorRepository) List(ctx context.Context, status models.DoctorStatus) ([]models.Doctor, error) {
	var doctors []models.Doctor
	q := r.db.WithContext(ctx).Order("created_at asc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&doctors).Error
	return doctors, err
}

func (r *doctorRepository) UpdateStatus(ctx context.Context, userID string, status models.DoctorStatus) error {
	return updated(r.db.WithContext(ctx).Model(&models.Doctor{}).
		Where("user_id = ?", userID).
		Update("status", status))
}

func (r *doctorRepository) CountByStatus(ctx context.Context) (map[models.DoctorStatus]int64, error) {
	var rows []struct {
		Status models.DoctorStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Doctor{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[models.DoctorStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
