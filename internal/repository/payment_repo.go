package repository

import (
	"context"

	"learnhub/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// GetForStudent loads a payment by id with the ownership filter applied
// in the query itself, so a payment that exists but belongs to someone
// else is indistinguishable from one that does not exist.
func (r *PaymentRepository) GetForStudent(ctx context.Context, id, studentID uint) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).
		Where("id = ? AND student_id = ?", id, studentID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateFields writes only the named columns. Immutable columns
// (student, course, buyer snapshot, method) are never part of an
// update map, so they cannot be clobbered after creation.
func (r *PaymentRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}
