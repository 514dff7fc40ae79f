package service

import (
	"context"
	"fmt"

	"learnhub/internal/models"

	"go.uber.org/zap"
)

// EnrollmentStore is the slice of the enrollment repository the
// activator needs. Activate must be a single logical upsert against
// the (student, course) unique index; the store owns that guarantee.
type EnrollmentStore interface {
	Activate(ctx context.Context, studentID, courseID uint) (uint, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error)
}

// EnrollmentService activates enrollments for verified payments. It is
// idempotent: activating an already-active pair returns the same row.
type EnrollmentService struct {
	store  EnrollmentStore
	logger *zap.Logger
}

func NewEnrollmentService(store EnrollmentStore, logger *zap.Logger) *EnrollmentService {
	return &EnrollmentService{store: store, logger: logger}
}

// Activate creates or upgrades the enrollment row and returns its id.
// An earlier non-payment row (free or pending) for the same pair is
// upgraded in place, never duplicated.
func (s *EnrollmentService) Activate(ctx context.Context, studentID, courseID uint) (uint, error) {
	id, err := s.store.Activate(ctx, studentID, courseID)
	if err != nil {
		return 0, fmt.Errorf("%w: activate enrollment: %v", ErrPersistence, err)
	}
	s.logger.Info("enrollment activated",
		zap.Uint("student_id", studentID),
		zap.Uint("course_id", courseID),
		zap.Uint("enrollment_id", id))
	return id, nil
}

func (s *EnrollmentService) ListForStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	return s.store.ListByStudent(ctx, studentID)
}
