package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is one row per purchase attempt. The buyer fields are a
// snapshot taken at creation time and are never re-read from the live
// profile. Status, CompletedAt and EnrollmentID are only ever written
// by the verification service; the provider correlation fields only by
// the initiation service after a successful processor call.
type Payment struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	StudentID uint `gorm:"not null;index" json:"student_id"`
	CourseID  uint `gorm:"not null;index" json:"course_id"`

	// Buyer snapshot
	FullName   string `gorm:"size:255;not null" json:"full_name"`
	Email      string `gorm:"size:255;not null" json:"email"`
	Phone      string `gorm:"size:32" json:"phone"`
	Address    string `gorm:"size:255" json:"address"`
	City       string `gorm:"size:128" json:"city"`
	State      string `gorm:"size:128" json:"state"`
	Country    string `gorm:"size:128" json:"country"`
	PostalCode string `gorm:"size:32" json:"postal_code"`

	Method string `gorm:"size:20;not null" json:"method"` // card | mobile_bank

	// Amount/Currency are what was actually charged (post-conversion).
	// RequestedAmount/RequestedCurrency keep the original ask for
	// metadata and disputes.
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency          string          `gorm:"size:3;not null" json:"currency"`
	RequestedAmount   decimal.Decimal `gorm:"type:decimal(12,2)" json:"requested_amount"`
	RequestedCurrency string          `gorm:"size:3" json:"requested_currency"`

	// Processor correlation, absent until the initiate call succeeds.
	ProviderRef   string `gorm:"size:255;index" json:"provider_ref"` // paystack reference / stripe session id
	AccessCode    string `gorm:"size:255" json:"-"`
	IntentID      string `gorm:"size:255" json:"-"`
	TransactionID string `gorm:"size:255" json:"transaction_id"` // learned at verification

	Status         string `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, FAILED
	IdempotencyKey string `gorm:"size:255;uniqueIndex" json:"-"`
	Metadata       string `gorm:"type:text" json:"metadata"` // JSON: conversion rate, fallback flag

	CompletedAt  *time.Time `json:"completed_at"`
	EnrollmentID *uint      `json:"enrollment_id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Student User   `gorm:"foreignKey:StudentID" json:"-"`
	Course  Course `gorm:"foreignKey:CourseID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
