package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/rental-service/internal/models"
)

// ErrTenantNotFound is returned when no tenant matches the requested id
var ErrTenantNotFound = errors.New("tenant not found")

const tenantColumns = `id, name, house_number, contact, nok1_name, nok1_contact,
	nok2_name, nok2_contact, monthly_rent, last_payment_date, payment_status`

// Repository provides database operations on the tenants table
type Repository struct {
	db     *sql.DB
	driver string
}

// NewRepository initializes a new repository. driver selects the schema dialect.
func NewRepository(db *sql.DB, driver string) *Repository {
	return &Repository{db: db, driver: driver}
}

// withConn acquires a dedicated connection for the duration of fn and always releases it.
func (r *Repository) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

// Migrate creates the tenants table if it does not exist
func (r *Repository) Migrate(ctx context.Context) error {
	ddl, err := schemaFor(r.driver)
	if err != nil {
		return err
	}
	return r.withConn(ctx, func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create tenants table: %w", err)
		}
		return nil
	})
}

// Ping checks that the database is reachable
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// List returns all tenants in insertion order
func (r *Repository) List(ctx context.Context) ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY id`
		rows, err := conn.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to list tenants: %w", err)
		}
		defer rows.Close()

		tenants, err = scanTenants(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

// ListByStatus returns tenants with the given payment status in insertion order
func (r *Repository) ListByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		query := `SELECT ` + tenantColumns + ` FROM tenants WHERE payment_status = $1 ORDER BY id`
		rows, err := conn.QueryContext(ctx, query, string(status))
		if err != nil {
			return fmt.Errorf("failed to list %s tenants: %w", status, err)
		}
		defer rows.Close()

		tenants, err = scanTenants(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

// Create inserts a new tenant and sets its ID
func (r *Repository) Create(ctx context.Context, tenant *models.Tenant) error {
	return r.withConn(ctx, func(conn *sql.Conn) error {
		query := `
			INSERT INTO tenants (name, house_number, contact, nok1_name, nok1_contact,
				nok2_name, nok2_contact, monthly_rent, last_payment_date, payment_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id`
		err := conn.QueryRowContext(ctx, query,
			tenant.Name, tenant.HouseNumber, tenant.Contact,
			tenant.NOK1Name, tenant.NOK1Contact, tenant.NOK2Name, tenant.NOK2Contact,
			tenant.MonthlyRent, tenant.LastPaymentDate, string(tenant.PaymentStatus),
		).Scan(&tenant.ID)
		if err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}
		return nil
	})
}

// Get retrieves a tenant by id
func (r *Repository) Get(ctx context.Context, id int64) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
		err := scanTenant(conn.QueryRowContext(ctx, query, id), tenant)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTenantNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find tenant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// MarkPaid sets the tenant's status to paid and records the payment date.
// Returns ErrTenantNotFound when no tenant has the given id.
func (r *Repository) MarkPaid(ctx context.Context, id int64, paidOn string) error {
	return r.withConn(ctx, func(conn *sql.Conn) error {
		query := `UPDATE tenants SET payment_status = $1, last_payment_date = $2 WHERE id = $3`
		res, err := conn.ExecContext(ctx, query, string(models.StatusPaid), paidOn, id)
		if err != nil {
			return fmt.Errorf("failed to mark tenant paid: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 {
			return ErrTenantNotFound
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner, t *models.Tenant) error {
	var status string
	err := row.Scan(&t.ID, &t.Name, &t.HouseNumber, &t.Contact,
		&t.NOK1Name, &t.NOK1Contact, &t.NOK2Name, &t.NOK2Contact,
		&t.MonthlyRent, &t.LastPaymentDate, &status)
	if err != nil {
		return err
	}
	t.PaymentStatus = models.PaymentStatus(status)
	return nil
}

func scanTenants(rows *sql.Rows) ([]models.Tenant, error) {
	tenants := []models.Tenant{}
	for rows.Next() {
		var t models.Tenant
		if err := scanTenant(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tenants: %w", err)
	}
	return tenants, nil
}
