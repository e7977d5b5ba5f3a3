package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/rental-service/internal/billing"
	"github.com/Dan9191/rental-service/internal/models"
)

const dateLayout = "2006-01-02"

// TenantStore is the persistence the service depends on
type TenantStore interface {
	List(ctx context.Context) ([]models.Tenant, error)
	ListByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Tenant, error)
	Create(ctx context.Context, tenant *models.Tenant) error
	Get(ctx context.Context, id int64) (*models.Tenant, error)
	MarkPaid(ctx context.Context, id int64, paidOn string) error
	Ping(ctx context.Context) error
}

// Notifier delivers the unpaid rent digest
type Notifier interface {
	SendUnpaidDigest(tenants []models.Tenant, asOf time.Time) error
}

// ErrNotifierDisabled is returned when a digest is requested without mail configured
var ErrNotifierDisabled = errors.New("email notifications are not configured")

// Service handles business logic
type Service struct {
	repo     TenantStore
	tariffs  *billing.TariffBook
	notifier Notifier
	log      *logrus.Logger
	now      func() time.Time
}

// NewService initializes a new service. notifier may be nil.
func NewService(repo TenantStore, tariffs *billing.TariffBook, notifier Notifier, log *logrus.Logger) *Service {
	return &Service{
		repo:     repo,
		tariffs:  tariffs,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) today() string {
	return s.now().Format(dateLayout)
}

// Ping checks the backing store
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// ListTenants returns every tenant in insertion order
func (s *Service) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	return s.repo.List(ctx)
}

// AddTenant validates the submitted fields and stores a new unpaid tenant
func (s *Service) AddTenant(ctx context.Context, form TenantForm) (*models.Tenant, error) {
	tenant, err := form.Validate()
	if err != nil {
		return nil, err
	}
	tenant.PaymentStatus = models.StatusUnpaid
	tenant.LastPaymentDate = s.today()

	if err := s.repo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	s.log.Infof("Tenant added: %d %s (house %s)", tenant.ID, tenant.Name, tenant.HouseNumber)
	return tenant, nil
}

// MarkPaid records today's payment for a tenant
func (s *Service) MarkPaid(ctx context.Context, id int64) error {
	if err := s.repo.MarkPaid(ctx, id, s.today()); err != nil {
		return err
	}
	s.log.Infof("Tenant %d marked paid", id)
	return nil
}

// GetTenant returns a tenant by id
func (s *Service) GetTenant(ctx context.Context, id int64) (*models.Tenant, error) {
	return s.repo.Get(ctx, id)
}

// Invoice builds the invoice for a tenant from the given meter readings
func (s *Service) Invoice(ctx context.Context, id int64, readings models.MeterReadings) (*models.Invoice, error) {
	tenant, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	totals, err := billing.Compute(*tenant, readings, s.tariffs.Current())
	if errors.Is(err, billing.ErrAmountOutOfRange) {
		return nil, &ValidationError{
			Field:   "total",
			Message: fmt.Sprintf("exceeds the billable maximum of %d", billing.MaxAmount),
		}
	}
	if err != nil {
		return nil, err
	}
	inv := &models.Invoice{
		Number:        invoiceNumber(),
		IssuedOn:      s.today(),
		TenantID:      tenant.ID,
		Name:          tenant.Name,
		HouseNumber:   tenant.HouseNumber,
		Contact:       tenant.Contact,
		Readings:      readings,
		Rent:          totals.Rent,
		UEDCLUnits:    totals.UEDCLUnits,
		UEDCLCost:     totals.UEDCLCost,
		NSWCUnits:     totals.NSWCUnits,
		NSWCCost:      totals.NSWCCost,
		SecurityFee:   totals.SecurityFee,
		GarbageFee:    totals.GarbageFee,
		Total:         totals.Total,
		AmountInWords: totals.AmountInWords,
	}

	s.log.Debugf("Invoice %s computed for tenant %d: total %d", inv.Number, id, inv.Total)
	return inv, nil
}

func invoiceNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "INV-" + strings.ToUpper(id[:8])
}

// SendPaymentReminders emails the landlord the list of tenants still marked unpaid.
// Nothing is sent when every tenant has paid.
func (s *Service) SendPaymentReminders(ctx context.Context) (int, error) {
	if s.notifier == nil {
		return 0, ErrNotifierDisabled
	}

	unpaid, err := s.repo.ListByStatus(ctx, models.StatusUnpaid)
	if err != nil {
		return 0, err
	}
	if len(unpaid) == 0 {
		s.log.Info("No unpaid tenants, skipping reminder")
		return 0, nil
	}

	if err := s.notifier.SendUnpaidDigest(unpaid, s.now()); err != nil {
		return 0, fmt.Errorf("failed to send payment reminders: %w", err)
	}
	s.log.Infof("Payment reminder sent for %d unpaid tenant(s)", len(unpaid))
	return len(unpaid), nil
}
