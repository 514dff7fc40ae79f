package domain

const (
	RoleStudent    = "STUDENT"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

// Payment methods select which processor adapter owns the charge.
const (
	MethodCard       = "card"
	MethodMobileBank = "mobile_bank"
)

// Payment status never reverses: PENDING moves to COMPLETED or FAILED
// exactly once, via the verification service only.
const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
	PaymentFailed    = "FAILED"
)

const (
	EnrollmentPending = "PENDING"
	EnrollmentActive  = "ACTIVE"
)

// PaymentRefPrefix prefixes the local payment id in references we hand
// to the mobile/bank processor, so externally held references map back
// to exactly one payment row.
const PaymentRefPrefix = "lh-"
