package models

// MeterReadings holds the previous and current cumulative meter values
type MeterReadings struct {
	UEDCLPrev int64 `json:"uedcl_prev"`
	UEDCLCurr int64 `json:"uedcl_curr"`
	NSWCPrev  int64 `json:"nswc_prev"`
	NSWCCurr  int64 `json:"nswc_curr"`
}

// Invoice is an itemized rent invoice. It is computed per request and never stored.
type Invoice struct {
	Number      string `json:"number"`
	IssuedOn    string `json:"issued_on"` // Format: YYYY-MM-DD
	TenantID    int64  `json:"tenant_id"`
	Name        string `json:"name"`
	HouseNumber string `json:"house_number"`
	Contact     string `json:"contact"`

	Readings MeterReadings `json:"readings"`

	Rent          int64  `json:"rent"`
	UEDCLUnits    int64  `json:"uedcl_units"`
	UEDCLCost     int64  `json:"uedcl_cost"`
	NSWCUnits     int64  `json:"nswc_units"`
	NSWCCost      int64  `json:"nswc_cost"`
	SecurityFee   int64  `json:"security_fee"`
	GarbageFee    int64  `json:"garbage_fee"`
	Total         int64  `json:"total"`
	AmountInWords string `json:"amount_in_words"`
}
