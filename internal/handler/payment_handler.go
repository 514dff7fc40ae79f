package handler

import (
	"errors"
	"net/http"

	"learnhub/internal/middleware"
	"learnhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	paymentSvc *service.PaymentService
}

func NewPaymentHandler(paymentSvc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

type personalInfo struct {
	FullName   string `json:"full_name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

// Initiate starts a course purchase. The student identity comes from
// the bearer token; the body only names the course, the amount and the
// buyer snapshot.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	studentID := middleware.GetUserID(c)
	var req struct {
		CourseID     uint         `json:"course_id" binding:"required"`
		Amount       float64      `json:"amount" binding:"required,gt=0"`
		Currency     string       `json:"currency"`
		Method       string       `json:"method" binding:"required,oneof=card mobile_bank"`
		PersonalInfo personalInfo `json:"personal_info" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.paymentSvc.Initiate(c.Request.Context(), studentID, service.InitiateParams{
		CourseID: req.CourseID,
		Amount:   decimal.NewFromFloat(req.Amount),
		Currency: req.Currency,
		Method:   req.Method,
		Buyer: service.BuyerInfo{
			FullName:   req.PersonalInfo.FullName,
			Email:      req.PersonalInfo.Email,
			Phone:      req.PersonalInfo.Phone,
			Address:    req.PersonalInfo.Address,
			City:       req.PersonalInfo.City,
			State:      req.PersonalInfo.State,
			Country:    req.PersonalInfo.Country,
			PostalCode: req.PersonalInfo.PostalCode,
		},
	})
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Verify re-confirms a payment with its processor and reports whether
// the enrollment was activated. The session id / reference in the body
// is a lookup hint only; success is decided by the processor query.
func (h *PaymentHandler) Verify(c *gin.Context) {
	studentID := middleware.GetUserID(c)
	var req struct {
		PaymentID         uint   `json:"payment_id" binding:"required"`
		StripeSessionID   string `json:"stripe_session_id"`
		PaystackReference string `json:"paystack_reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claim := req.StripeSessionID
	if claim == "" {
		claim = req.PaystackReference
	}
	outcome, err := h.paymentSvc.Verify(c.Request.Context(), studentID, req.PaymentID, claim)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	if !outcome.Verified {
		c.JSON(http.StatusBadRequest, gin.H{
			"verified": false,
			"message":  "payment verification failed",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"verified":      true,
		"message":       "payment verified",
		"enrollment_id": outcome.EnrollmentID,
	})
}

func (h *PaymentHandler) ListMine(c *gin.Context) {
	studentID := middleware.GetUserID(c)
	payments, err := h.paymentSvc.ListForStudent(c.Request.Context(), studentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list payments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// respondPaymentError maps the service error taxonomy to HTTP codes.
// Internal detail is logged in the service; clients only see a short
// stable message.
func respondPaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
	case errors.Is(err, service.ErrProcessor):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment processor error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
