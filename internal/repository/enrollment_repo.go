package repository

import (
	"context"

	"learnhub/internal/domain"
	"learnhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Activate inserts or upgrades the enrollment for (student, course) in
// a single upsert statement keyed on the composite unique index, then
// reads the surviving row back for its id. Two concurrent activations
// for an unseen pair resolve at the store: one inserts, the other hits
// the conflict branch. A pre-existing row (e.g. a free PENDING
// enrollment) is upgraded in place; progress is left untouched.
func (r *EnrollmentRepository) Activate(ctx context.Context, studentID, courseID uint) (uint, error) {
	e := models.Enrollment{
		StudentID:       studentID,
		CourseID:        courseID,
		Status:          domain.EnrollmentActive,
		PaymentVerified: true,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"status":           domain.EnrollmentActive,
				"payment_verified": true,
			}),
		}).
		Create(&e).Error
	if err != nil {
		return 0, err
	}
	// MySQL's upsert does not reliably report the surviving row id on
	// the conflict branch; re-read by the unique pair.
	var row models.Enrollment
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}
