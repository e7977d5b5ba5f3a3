package models

// PaymentStatus is the rent payment state of a tenant
type PaymentStatus string

const (
	StatusUnpaid PaymentStatus = "unpaid"
	StatusPaid   PaymentStatus = "paid"
)

// Tenant represents a tenant record
type Tenant struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	HouseNumber     string        `json:"house_number"`
	Contact         string        `json:"contact"`
	NOK1Name        string        `json:"nok1_name"`
	NOK1Contact     string        `json:"nok1_contact"`
	NOK2Name        string        `json:"nok2_name"`
	NOK2Contact     string        `json:"nok2_contact"`
	MonthlyRent     int64         `json:"monthly_rent"`
	LastPaymentDate string        `json:"last_payment_date"` // Format: YYYY-MM-DD
	PaymentStatus   PaymentStatus `json:"payment_status"`
}

// IsPaid reports whether the tenant has been marked paid
func (t Tenant) IsPaid() bool {
	return t.PaymentStatus == StatusPaid
}
