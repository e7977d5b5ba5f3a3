package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"

	"github.com/Dan9191/rental-service/internal/models"
	"github.com/Dan9191/rental-service/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer produces the HTML views and invoice documents
type Renderer struct {
	tmpl *template.Template
}

// TenantFormView is the data for the add-tenant page
type TenantFormView struct {
	Form  service.TenantForm
	Error string
}

// InvoiceFormView is the data for the meter-reading page
type InvoiceFormView struct {
	Tenant *models.Tenant
	Values url.Values
	Error  string
}

// InvoiceView is the data for the invoice preview page
type InvoiceView struct {
	Invoice     *models.Invoice
	DownloadURL string
	ShareURL    string
}

// New parses the embedded templates
func New() (*Renderer, error) {
	tmpl, err := template.New("").
		Funcs(template.FuncMap{"money": FormatAmount}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	if err := r.tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}

// TenantList renders the tenant overview
func (r *Renderer) TenantList(w io.Writer, tenants []models.Tenant) error {
	return r.execute(w, "index.html", struct{ Tenants []models.Tenant }{tenants})
}

// TenantForm renders the add-tenant form
func (r *Renderer) TenantForm(w io.Writer, view TenantFormView) error {
	return r.execute(w, "add_tenant.html", view)
}

// InvoiceForm renders the meter-reading form
func (r *Renderer) InvoiceForm(w io.Writer, view InvoiceFormView) error {
	return r.execute(w, "generate_invoice.html", view)
}

// InvoicePreview renders an invoice as an HTML page
func (r *Renderer) InvoicePreview(w io.Writer, view InvoiceView) error {
	return r.execute(w, "invoice_preview.html", view)
}

// InvoiceFilename is the attachment name for a downloaded invoice
func InvoiceFilename(inv *models.Invoice) string {
	return fmt.Sprintf("Invoice_%s_%s.pdf", inv.Name, inv.HouseNumber)
}

// FormatAmount renders an integer amount with thousands separators, e.g. 595000 -> "595,000"
func FormatAmount(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	sign := ""
	if amount < 0 {
		sign, digits = "-", digits[1:]
	}

	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := 0; i < len(digits); i++ {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return sign + string(out)
}
