package handler

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/rental-service/internal/models"
	"github.com/Dan9191/rental-service/internal/observability"
	"github.com/Dan9191/rental-service/internal/render"
	"github.com/Dan9191/rental-service/internal/repository"
	"github.com/Dan9191/rental-service/internal/service"
	"github.com/Dan9191/rental-service/internal/utils/links"
)

type Handler struct {
	svc     *service.Service
	views   *render.Renderer
	links   *links.Signer
	metrics *observability.Metrics
	log     *logrus.Logger
}

func NewHandler(svc *service.Service, views *render.Renderer, signer *links.Signer, metrics *observability.Metrics, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, views: views, links: signer, metrics: metrics, log: log}
}

// RegisterRoutes mounts every endpoint on r. gatherer serves /metrics when non-nil.
func (h *Handler) RegisterRoutes(r *mux.Router, gatherer prometheus.Gatherer) {
	r.HandleFunc("/", h.ListTenants).Methods(http.MethodGet)
	r.HandleFunc("/add", h.AddTenantForm).Methods(http.MethodGet)
	r.HandleFunc("/add", h.AddTenant).Methods(http.MethodPost)
	r.HandleFunc("/mark_paid/{id:[0-9]+}", h.MarkPaid).Methods(http.MethodGet)
	r.HandleFunc("/invoice/{id:[0-9]+}", h.InvoiceForm).Methods(http.MethodGet)
	r.HandleFunc("/invoice/{id:[0-9]+}", h.InvoicePreview).Methods(http.MethodPost)
	r.HandleFunc("/download_invoice/{id:[0-9]+}", h.DownloadInvoice).Methods(http.MethodGet)
	r.HandleFunc("/shared_invoice/{token}", h.SharedInvoice).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
}

// ListTenants shows every tenant
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.svc.ListTenants(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.html(w, r, http.StatusOK, func(buf *bytes.Buffer) error {
		return h.views.TenantList(buf, tenants)
	})
}

// AddTenantForm shows the empty add-tenant form
func (h *Handler) AddTenantForm(w http.ResponseWriter, r *http.Request) {
	h.html(w, r, http.StatusOK, func(buf *bytes.Buffer) error {
		return h.views.TenantForm(buf, render.TenantFormView{})
	})
}

// AddTenant validates the submitted form and creates the tenant
func (h *Handler) AddTenant(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	form := service.TenantFormFrom(r.PostForm)

	_, err := h.svc.AddTenant(r.Context(), form)
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		h.html(w, r, http.StatusBadRequest, func(buf *bytes.Buffer) error {
			return h.views.TenantForm(buf, render.TenantFormView{Form: form, Error: verr.Error()})
		})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.TenantsCreated.Inc()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// MarkPaid records a payment for the tenant and returns to the list
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	if err := h.svc.MarkPaid(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.PaymentsMarked.Inc()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// InvoiceForm shows the meter-reading form for a tenant
func (h *Handler) InvoiceForm(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	tenant, err := h.svc.GetTenant(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.html(w, r, http.StatusOK, func(buf *bytes.Buffer) error {
		return h.views.InvoiceForm(buf, render.InvoiceFormView{Tenant: tenant})
	})
}

// InvoicePreview computes the invoice from the submitted readings and renders it as HTML
func (h *Handler) InvoicePreview(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	readings, err := service.ParseReadings(r.PostForm, false)
	if err != nil {
		tenant, getErr := h.svc.GetTenant(r.Context(), id)
		if getErr != nil {
			h.fail(w, r, getErr)
			return
		}
		h.html(w, r, http.StatusBadRequest, func(buf *bytes.Buffer) error {
			return h.views.InvoiceForm(buf, render.InvoiceFormView{
				Tenant: tenant,
				Values: r.PostForm,
				Error:  err.Error(),
			})
		})
		return
	}

	inv, err := h.svc.Invoice(r.Context(), id, readings)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	view := render.InvoiceView{
		Invoice:     inv,
		DownloadURL: downloadURL(id, readings),
	}
	if h.links.Enabled() {
		token, err := h.links.Sign(id, readings)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		view.ShareURL = "/shared_invoice/" + url.PathEscape(token)
	}

	h.countInvoice("html")
	h.html(w, r, http.StatusOK, func(buf *bytes.Buffer) error {
		return h.views.InvoicePreview(buf, view)
	})
}

// DownloadInvoice returns the invoice as a PDF attachment. Missing readings count as 0.
func (h *Handler) DownloadInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	readings, err := service.ParseReadings(r.URL.Query(), true)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.servePDF(w, r, id, readings)
}

// SharedInvoice returns the PDF for a signed invoice link
func (h *Handler) SharedInvoice(w http.ResponseWriter, r *http.Request) {
	id, readings, err := h.links.Verify(mux.Vars(r)["token"])
	if errors.Is(err, links.ErrDisabled) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Invalid or expired invoice link", http.StatusBadRequest)
		return
	}
	h.servePDF(w, r, id, readings)
}

// Health reports whether the database is reachable
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		h.log.WithError(err).Error("Health check failed")
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) servePDF(w http.ResponseWriter, r *http.Request, id int64, readings models.MeterReadings) {
	inv, err := h.svc.Invoice(r.Context(), id, readings)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pdf, err := render.InvoicePDF(inv)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.countInvoice("pdf")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": render.InvoiceFilename(inv),
	}))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	if _, err := w.Write(pdf); err != nil {
		h.log.WithError(err).Warnf("Failed to write invoice PDF for tenant %d", id)
	}
}

func (h *Handler) countInvoice(format string) {
	if h.metrics != nil {
		h.metrics.InvoicesGenerated.WithLabelValues(format).Inc()
	}
}

// html renders into a buffer first so a template error still yields a clean 500
func (h *Handler) html(w http.ResponseWriter, r *http.Request, status int, fn func(buf *bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fail maps an error to its HTTP response
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		http.Error(w, verr.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrTenantNotFound):
		http.Error(w, "Tenant not found", http.StatusNotFound)
	default:
		h.log.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func tenantID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid tenant id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func downloadURL(id int64, readings models.MeterReadings) string {
	q := url.Values{}
	q.Set("uedcl_prev", strconv.FormatInt(readings.UEDCLPrev, 10))
	q.Set("uedcl_curr", strconv.FormatInt(readings.UEDCLCurr, 10))
	q.Set("nswc_prev", strconv.FormatInt(readings.NSWCPrev, 10))
	q.Set("nswc_curr", strconv.FormatInt(readings.NSWCCurr, 10))
	return fmt.Sprintf("/download_invoice/%d?%s", id, q.Encode())
}
