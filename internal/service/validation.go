package service

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Dan9191/rental-service/internal/models"
)

// Upper bounds for submitted amounts. Rent plus any single month's consumption at the
// default tariffs stays within billing.MaxAmount.
const (
	MaxMonthlyRent  int64 = 1_000_000_000
	MaxMeterReading int64 = 100_000_000
)

// ValidationError reports a missing or malformed input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// TenantForm is the raw add-tenant submission
type TenantForm struct {
	Name        string
	HouseNumber string
	Contact     string
	NOK1Name    string
	NOK1Contact string
	NOK2Name    string
	NOK2Contact string
	MonthlyRent string
}

// TenantFormFrom reads the add-tenant fields from submitted form values
func TenantFormFrom(v url.Values) TenantForm {
	return TenantForm{
		Name:        v.Get("name"),
		HouseNumber: v.Get("house_number"),
		Contact:     v.Get("contact"),
		NOK1Name:    v.Get("nok1_name"),
		NOK1Contact: v.Get("nok1_contact"),
		NOK2Name:    v.Get("nok2_name"),
		NOK2Contact: v.Get("nok2_contact"),
		MonthlyRent: v.Get("monthly_rent"),
	}
}

// Validate checks the form and converts it into a tenant record
func (f TenantForm) Validate() (*models.Tenant, error) {
	t := &models.Tenant{
		Name:        strings.TrimSpace(f.Name),
		HouseNumber: strings.TrimSpace(f.HouseNumber),
		Contact:     strings.TrimSpace(f.Contact),
		NOK1Name:    strings.TrimSpace(f.NOK1Name),
		NOK1Contact: strings.TrimSpace(f.NOK1Contact),
		NOK2Name:    strings.TrimSpace(f.NOK2Name),
		NOK2Contact: strings.TrimSpace(f.NOK2Contact),
	}
	if t.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "is required"}
	}
	if t.HouseNumber == "" {
		return nil, &ValidationError{Field: "house_number", Message: "is required"}
	}

	rent, err := parseNonNegative("monthly_rent", f.MonthlyRent, MaxMonthlyRent, false)
	if err != nil {
		return nil, err
	}
	t.MonthlyRent = rent
	return t, nil
}

// ParseReadings reads the four meter values. When optional is true a missing or
// empty value counts as 0; otherwise every value is required.
func ParseReadings(v url.Values, optional bool) (models.MeterReadings, error) {
	var r models.MeterReadings
	fields := []struct {
		name string
		dst  *int64
	}{
		{"uedcl_prev", &r.UEDCLPrev},
		{"uedcl_curr", &r.UEDCLCurr},
		{"nswc_prev", &r.NSWCPrev},
		{"nswc_curr", &r.NSWCCurr},
	}
	for _, f := range fields {
		n, err := parseNonNegative(f.name, v.Get(f.name), MaxMeterReading, optional)
		if err != nil {
			return models.MeterReadings{}, err
		}
		*f.dst = n
	}
	return r, nil
}

func parseNonNegative(field, raw string, limit int64, optional bool) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if optional {
			return 0, nil
		}
		return 0, &ValidationError{Field: field, Message: "is required"}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: field, Message: "must be a whole number"}
	}
	if n < 0 {
		return 0, &ValidationError{Field: field, Message: "must not be negative"}
	}
	if n > limit {
		return 0, &ValidationError{Field: field, Message: fmt.Sprintf("must not exceed %d", limit)}
	}
	return n, nil
}
