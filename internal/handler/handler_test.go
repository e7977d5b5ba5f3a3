package handler

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Dan9191/rental-service/internal/billing"
	"github.com/Dan9191/rental-service/internal/models"
	"github.com/Dan9191/rental-service/internal/observability"
	"github.com/Dan9191/rental-service/internal/render"
	"github.com/Dan9191/rental-service/internal/repository"
	"github.com/Dan9191/rental-service/internal/service"
	"github.com/Dan9191/rental-service/internal/utils/links"
)

type testEnv struct {
	router  *mux.Router
	repo    *repository.Repository
	db      *sql.DB
	metrics *observability.Metrics
	signer  *links.Signer
}

func setupTestEnv(t *testing.T, linkSecret string) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewRepository(db, "sqlite3")
	require.NoError(t, repo.Migrate(context.Background()))

	log := logrus.New()
	log.SetOutput(io.Discard)

	views, err := render.New()
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	signer := links.NewSigner(linkSecret, time.Hour)
	svc := service.NewService(repo, billing.NewTariffBook(billing.DefaultTariffs()), nil, log)

	r := mux.NewRouter()
	NewHandler(svc, views, signer, metrics, log).RegisterRoutes(r, registry)

	return &testEnv{router: r, repo: repo, db: db, metrics: metrics, signer: signer}
}

func (e *testEnv) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seedTenant(t *testing.T, name, house string, rent int64) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{
		Name:            name,
		HouseNumber:     house,
		Contact:         "0700000000",
		MonthlyRent:     rent,
		LastPaymentDate: "2026-10-01",
		PaymentStatus:   models.StatusUnpaid,
	}
	require.NoError(t, e.repo.Create(context.Background(), tenant))
	return tenant
}

func tenantForm() url.Values {
	return url.Values{
		"name":         {"Jane Doe"},
		"house_number": {"B12"},
		"contact":      {"0700000000"},
		"nok1_name":    {"Kin One"},
		"nok1_contact": {"0711111111"},
		"nok2_name":    {""},
		"nok2_contact": {""},
		"monthly_rent": {"300000"},
	}
}

func readingsForm() url.Values {
	return url.Values{
		"uedcl_prev": {"100"}, "uedcl_curr": {"150"},
		"nswc_prev": {"50"}, "nswc_curr": {"80"},
	}
}

func TestListTenants(t *testing.T) {
	env := setupTestEnv(t, "")
	env.seedTenant(t, "Jane Doe", "B12", 300000)

	rec := env.do(t, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Jane Doe")
	assert.Contains(t, rec.Body.String(), "unpaid")
}

func TestAddTenant(t *testing.T) {
	env := setupTestEnv(t, "")

	rec := env.do(t, http.MethodGet, "/add", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="monthly_rent"`)

	rec = env.do(t, http.MethodPost, "/add", tenantForm())
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	tenants, err := env.repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, "Jane Doe", tenants[0].Name)
	assert.Equal(t, int64(300000), tenants[0].MonthlyRent)
	assert.Equal(t, models.StatusUnpaid, tenants[0].PaymentStatus)
	assert.Equal(t, time.Now().Format("2006-01-02"), tenants[0].LastPaymentDate)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.TenantsCreated))
}

func TestAddTenant_ValidationError(t *testing.T) {
	env := setupTestEnv(t, "")

	form := tenantForm()
	form.Set("monthly_rent", "three hundred")
	rec := env.do(t, http.MethodPost, "/add", form)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "monthly_rent: must be a whole number")
	assert.Contains(t, rec.Body.String(), `value="Jane Doe"`)

	tenants, err := env.repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tenants)
}

func TestAddTenant_RentAboveLimit(t *testing.T) {
	env := setupTestEnv(t, "")

	form := tenantForm()
	form.Set("monthly_rent", "1000000000000")
	rec := env.do(t, http.MethodPost, "/add", form)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "monthly_rent: must not exceed 1000000000")

	tenants, err := env.repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tenants)
}

func TestMarkPaid(t *testing.T) {
	env := setupTestEnv(t, "")
	tenant := env.seedTenant(t, "Jane Doe", "B12", 300000)

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodGet, "/mark_paid/"+itoa(tenant.ID), nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	}

	got, err := env.repo.Get(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, got.PaymentStatus)
	assert.Equal(t, time.Now().Format("2006-01-02"), got.LastPaymentDate)
}

func TestMarkPaid_NotFound(t *testing.T) {
	env := setupTestEnv(t, "")

	rec := env.do(t, http.MethodGet, "/mark_paid/404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvoiceForm(t *testing.T) {
	env := setupTestEnv(t, "")
	tenant := env.seedTenant(t, "Jane Doe", "B12", 300000)

	rec := env.do(t, http.MethodGet, "/invoice/"+itoa(tenant.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="uedcl_prev"`)

	rec = env.do(t, http.MethodGet, "/invoice/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvoicePreview(t *testing.T) {
	env := setupTestEnv(t, "")
	tenant := env.seedTenant(t, "Jane Doe", "B12", 300000)

	rec := env.do(t, http.MethodPost, "/invoice/"+itoa(tenant.ID), readingsForm())

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "595,000")
	assert.Contains(t, body, "60,000")
	assert.Contains(t, body, "210,000")
	assert.Contains(t, body, "Five Hundred And Ninety-Five Thousand Shillings Only")
	assert.Contains(t, body, "/download_invoice/"+itoa(tenant.ID)+"?nswc_curr=80")
	assert.NotContains(t, body, "/shared_invoice/")
}

func TestInvoicePreview_InvalidReadings(t *testing.T) {
	env := setupTestEnv(t, "")
	tenant := env.seedTenant(t, "Jane Doe", "B12", 300000)

	form := readingsForm()
	form.Set("nswc_curr", "eighty")
	rec := env.do(t, http.MethodPost, "/invoice/"+itoa(tenant.ID), form)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "nswc_curr: must be a whole number")
}

func TestInvoicePreview_ReadingAboveLimit(t *testing.T) {
	env := setupTestEnv(t, "")
	tenant := env.seedTenant(t, "Jane Doe", "B12", 300000)

	form := readingsForm()
	form.Set("uedcl_curr", "9223372036854775")
	rec := env.do(t, http.MethodPost, "/invoice/"+itoa(tenant.ID), form)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "uedcl_curr: must not exceed 100000000")
	assert.NotContains(t, rec.Body.String(), "Minus")
	assert.Equal(t, 0.0, testutil.ToFloat64(env.metrics.InvoicesGenerated.WithLabelValues("html")))
}

func TestInvoice_TotalAboveMaximum(t *testing.T) {
	env := setupTestEnv(t, "")
	tenant := env.seedTenant(t, "Jane Doe", "B12", billing.MaxAmount)

	rec := env.do(t, http.MethodPost, "/invoice/"+itoa(tenant.ID), readingsForm())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "total: exceeds the billable maximum")

	rec = env.do(t, http.MethodGet, "/download_invoice/"+itoa(tenant.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEqual(t, "application/pdf", rec.Header().Get("Content-Type"))
}

func TestInvoicePreview_NotFound(t *testing.T) {
	env := setupTestEnv(t, "")

	rec := env.do(t, http.MethodPost, "/invoice/77", readingsForm())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tenant not found")
}

func TestDownloadInvoice(t *testing.T) {
	env := setupTestEnv(t, "")
	tenant := env.seedTenant(t, "Jane Doe", "B12", 300000)

	rec := env.do(t, http.MethodGet, "/download_invoice/"+itoa(tenant.ID)+"?"+readingsForm().Encode(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	disposition, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	assert.Equal(t, "Invoice_Jane Doe_B12.pdf", params["filename"])
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.InvoicesGenerated.WithLabelValues("pdf")))
}

func TestDownloadInvoice_DefaultsAndErrors(t *testing.T) {
	env := setupTestEnv(t, "")
	tenant := env.seedTenant(t, "John Roe", "C3", 1000)

	rec := env.do(t, http.MethodGet, "/download_invoice/"+itoa(tenant.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/download_invoice/"+itoa(tenant.ID)+"?uedcl_curr=lots", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/download_invoice/555", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tenant not found")
}

func TestSharedInvoice(t *testing.T) {
	env := setupTestEnv(t, "share-secret")
	tenant := env.seedTenant(t, "Jane Doe", "B12", 300000)

	rec := env.do(t, http.MethodPost, "/invoice/"+itoa(tenant.ID), readingsForm())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/shared_invoice/")

	token, err := env.signer.Sign(tenant.ID, models.MeterReadings{UEDCLPrev: 100, UEDCLCurr: 150})
	require.NoError(t, err)

	rec = env.do(t, http.MethodGet, "/shared_invoice/"+token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec = env.do(t, http.MethodGet, "/shared_invoice/garbage", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSharedInvoice_Disabled(t *testing.T) {
	env := setupTestEnv(t, "")

	rec := env.do(t, http.MethodGet, "/shared_invoice/anything", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := setupTestEnv(t, "")

	rec := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rental_tenants_created_total")

	require.NoError(t, env.db.Close())
	rec = env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListTenants_StorageError(t *testing.T) {
	env := setupTestEnv(t, "")
	require.NoError(t, env.db.Close())

	rec := env.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "sql")
}

func TestDownloadURL(t *testing.T) {
	got := downloadURL(3, models.MeterReadings{UEDCLPrev: 1, UEDCLCurr: 2, NSWCPrev: 3, NSWCCurr: 4})
	assert.Equal(t, "/download_invoice/3?nswc_curr=4&nswc_prev=3&uedcl_curr=2&uedcl_prev=1", got)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
