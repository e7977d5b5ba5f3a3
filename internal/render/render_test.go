package render

import (
	"bytes"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/rental-service/internal/models"
	"github.com/Dan9191/rental-service/internal/service"
)

func sampleInvoice() *models.Invoice {
	return &models.Invoice{
		Number:        "INV-0A1B2C3D",
		IssuedOn:      "2026-10-19",
		TenantID:      1,
		Name:          "Jane Doe",
		HouseNumber:   "B12",
		Contact:       "0700000000",
		Readings:      models.MeterReadings{UEDCLPrev: 100, UEDCLCurr: 150, NSWCPrev: 50, NSWCCurr: 80},
		Rent:          300000,
		UEDCLUnits:    50,
		UEDCLCost:     60000,
		NSWCUnits:     30,
		NSWCCost:      210000,
		SecurityFee:   20000,
		GarbageFee:    5000,
		Total:         595000,
		AmountInWords: "Five Hundred And Ninety-Five Thousand Shillings Only",
	}
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	return r
}

func TestFormatAmount(t *testing.T) {
	tests := map[int64]string{
		0:          "0",
		999:        "999",
		1000:       "1,000",
		595000:     "595,000",
		1234567:    "1,234,567",
		-25000:     "-25,000",
		1000000000: "1,000,000,000",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatAmount(in))
	}
}

func TestInvoiceFilename(t *testing.T) {
	assert.Equal(t, "Invoice_Jane Doe_B12.pdf", InvoiceFilename(sampleInvoice()))
}

func TestTenantList(t *testing.T) {
	r := newTestRenderer(t)
	tenants := []models.Tenant{
		{ID: 1, Name: "Jane Doe", HouseNumber: "B12", MonthlyRent: 300000, PaymentStatus: models.StatusUnpaid},
		{ID: 2, Name: "<script>", HouseNumber: "C3", MonthlyRent: 1000, PaymentStatus: models.StatusPaid},
	}

	var buf bytes.Buffer
	require.NoError(t, r.TenantList(&buf, tenants))
	out := buf.String()

	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "300,000")
	assert.Contains(t, out, `href="/mark_paid/1"`)
	assert.NotContains(t, out, `href="/mark_paid/2"`)
	assert.Contains(t, out, `href="/invoice/2"`)
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestTenantList_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestRenderer(t).TenantList(&buf, nil))
	assert.Contains(t, buf.String(), "No tenants yet")
}

func TestTenantForm_ShowsErrorAndValues(t *testing.T) {
	var buf bytes.Buffer
	err := newTestRenderer(t).TenantForm(&buf, TenantFormView{
		Form:  service.TenantForm{Name: "Jane Doe", MonthlyRent: "abc"},
		Error: "monthly_rent: must be a whole number",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "monthly_rent: must be a whole number")
	assert.Contains(t, out, `value="Jane Doe"`)
}

func TestInvoiceForm(t *testing.T) {
	var buf bytes.Buffer
	err := newTestRenderer(t).InvoiceForm(&buf, InvoiceFormView{
		Tenant: &models.Tenant{ID: 4, Name: "Jane Doe", HouseNumber: "B12"},
		Values: url.Values{"uedcl_prev": {"100"}},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `action="/invoice/4"`)
	assert.Contains(t, out, `value="100"`)
}

func TestInvoicePreview(t *testing.T) {
	var buf bytes.Buffer
	err := newTestRenderer(t).InvoicePreview(&buf, InvoiceView{
		Invoice:     sampleInvoice(),
		DownloadURL: "/download_invoice/1?nswc_curr=80",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "INV-0A1B2C3D")
	assert.Contains(t, out, "595,000")
	assert.Contains(t, out, "210,000")
	assert.Contains(t, out, "Five Hundred And Ninety-Five Thousand Shillings Only")
	assert.Contains(t, out, `href="/download_invoice/1?nswc_curr=80"`)
	assert.NotContains(t, out, "Shareable link")
}

func TestInvoicePDF(t *testing.T) {
	pdf, err := InvoicePDF(sampleInvoice())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.Greater(t, len(pdf), 500)
}
