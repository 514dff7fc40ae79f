package handler

import (
	"net/http"

	"learnhub/internal/middleware"
	"learnhub/internal/service"

	"github.com/gin-gonic/gin"
)

type EnrollmentHandler struct {
	enrollmentSvc *service.EnrollmentService
}

func NewEnrollmentHandler(enrollmentSvc *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc}
}

func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	studentID := middleware.GetUserID(c)
	enrollments, err := h.enrollmentSvc.ListForStudent(c.Request.Context(), studentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list enrollments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollments": enrollments})
}
