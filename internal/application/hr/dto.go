package hr

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/hr"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopspring/decimal"
)

// CreateEmployeeRequest creates a staff account together with its HR profile
type CreateEmployeeRequest struct {
	Username         string          `json:"username" binding:"required,min=3,max=100"`
	Email            string          `json:"email" binding:"required,email"`
	FullName         string          `json:"full_name" binding:"required,max=200"`
	Phone            string          `json:"phone" binding:"max=50"`
	Password         string          `json:"password" binding:"required,min=8,max=72"`
	EmployeeNumber   string          `json:"employee_number" binding:"max=30"`
	Position         string          `json:"position" binding:"max=100"`
	HireDate         *time.Time      `json:"hire_date"`
	NationalID       string          `json:"national_id" binding:"max=50"`
	Address          string          `json:"address"`
	EmergencyContact string          `json:"emergency_contact" binding:"max=200"`
	BaseSalary       decimal.Decimal `json:"base_salary"`
}

// UpdateEmployeeRequest updates the HR profile fields
type UpdateEmployeeRequest struct {
	Position         string          `json:"position" binding:"max=100"`
	NationalID       string          `json:"national_id" binding:"max=50"`
	Address          string          `json:"address"`
	EmergencyContact string          `json:"emergency_contact" binding:"max=200"`
	BaseSalary       decimal.Decimal `json:"base_salary"`
	Phone            string          `json:"phone" binding:"max=50"`
}

// EmployeeListFilter represents filter options for the employee list
type EmployeeListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// EmployeeResponse joins a staff account with its HR profile
type EmployeeResponse struct {
	UserID           uuid.UUID       `json:"user_id"`
	Username         string          `json:"username"`
	Email            string          `json:"email"`
	FullName         string          `json:"full_name"`
	Phone            string          `json:"phone"`
	Status           string          `json:"status"`
	EmployeeNumber   string          `json:"employee_number"`
	Position         string          `json:"position"`
	HireDate         time.Time       `json:"hire_date"`
	NationalID       string          `json:"national_id"`
	Address          string          `json:"address"`
	EmergencyContact string          `json:"emergency_contact"`
	BaseSalary       decimal.Decimal `json:"base_salary"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ToEmployeeResponse converts a user and profile to EmployeeResponse. user may be nil.
func ToEmployeeResponse(user *identity.User, p *hr.EmployeeProfile) EmployeeResponse {
	resp := EmployeeResponse{
		UserID:           p.UserID,
		EmployeeNumber:   p.EmployeeNumber,
		Position:         p.Position,
		HireDate:         p.HireDate,
		NationalID:       p.NationalID,
		Address:          p.Address,
		EmergencyContact: p.EmergencyContact,
		BaseSalary:       p.BaseSalary,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if user != nil {
		resp.Username = user.Username
		resp.Email = user.Email
		resp.FullName = user.FullName
		resp.Phone = user.Phone
		resp.Status = string(user.Status)
	}
	return resp
}

// AddSalaryRequest adds a salary entry for a pay period
type AddSalaryRequest struct {
	Period string          `json:"period" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// SalaryResponse represents a salary entry
type SalaryResponse struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Period    string          `json:"period"`
	Amount    decimal.Decimal `json:"amount"`
	Paid      bool            `json:"paid"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	Note      string          `json:"note"`
	CreatedAt time.Time       `json:"created_at"`
	// FinesDeducted is set when paying the salary settled pending fines
	FinesDeducted *decimal.Decimal `json:"fines_deducted,omitempty"`
}

// ToSalaryResponse converts a domain salary to SalaryResponse
func ToSalaryResponse(s *hr.EmployeeSalary) SalaryResponse {
	return SalaryResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		Period:    s.Period,
		Amount:    s.Amount,
		Paid:      s.Paid,
		PaidAt:    s.PaidAt,
		Note:      s.Note,
		CreatedAt: s.CreatedAt,
	}
}

// IssueFineRequest issues a fine
type IssueFineRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Reason   string          `json:"reason" binding:"required"`
	IssuedAt *time.Time      `json:"issued_at"`
}

// FineResponse represents a fine
type FineResponse struct {
	ID       uuid.UUID       `json:"id"`
	UserID   uuid.UUID       `json:"user_id"`
	Amount   decimal.Decimal `json:"amount"`
	Reason   string          `json:"reason"`
	IssuedAt time.Time       `json:"issued_at"`
	IssuedBy uuid.UUID       `json:"issued_by"`
	Status   string          `json:"status"`
}

// ToFineResponse converts a domain fine to FineResponse
func ToFineResponse(f *hr.EmployeeFine) FineResponse {
	return FineResponse{
		ID:       f.ID,
		UserID:   f.UserID,
		Amount:   f.Amount,
		Reason:   f.Reason,
		IssuedAt: f.IssuedAt,
		IssuedBy: f.IssuedBy,
		Status:   string(f.Status),
	}
}

// RecordPaymentRequest records a payment to an employee
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" binding:"omitempty,oneof=cash mpesa bank"`
	Reference string          `json:"reference" binding:"max=100"`
	Note      string          `json:"note"`
	PaidAt    *time.Time      `json:"paid_at"`
}

// PaymentResponse represents an employee payment
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	PaidAt    time.Time       `json:"paid_at"`
	Note      string          `json:"note"`
}

// ToPaymentResponse converts a domain payment to PaymentResponse
func ToPaymentResponse(p *hr.EmployeePayment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Amount:    p.Amount,
		Method:    p.Method,
		Reference: p.Reference,
		PaidAt:    p.PaidAt,
		Note:      p.Note,
	}
}

// DateRangeFilter bounds fine and payment listings
type DateRangeFilter struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// PaySummaryResponse is the pay position of an employee for one period
type PaySummaryResponse struct {
	UserID       uuid.UUID         `json:"user_id"`
	Period       string            `json:"period"`
	BaseSalary   decimal.Decimal   `json:"base_salary"`
	SalaryAmount decimal.Decimal   `json:"salary_amount"`
	SalaryPaid   bool              `json:"salary_paid"`
	PendingFines decimal.Decimal   `json:"pending_fines"`
	Payments     decimal.Decimal   `json:"payments"`
	NetPayable   decimal.Decimal   `json:"net_payable"`
	Fines        []FineResponse    `json:"fines"`
	PaymentItems []PaymentResponse `json:"payment_items"`
}
