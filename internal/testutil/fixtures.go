package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/tallyhq/tally-backend/internal/domain"
)

// SeedTenant inserts a tenant and its transaction number sequence.
func SeedTenant(t *testing.T, db *sql.DB, name string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(
		`INSERT INTO tenants (id, name) VALUES ($1, $2)`,
		id, name,
	)
	if err != nil {
		t.Fatalf("seed tenant %s: %v", name, err)
	}
	_, err = db.Exec(
		`INSERT INTO tenant_sequences (tenant_id, transaction_number) VALUES ($1, 0)`,
		id,
	)
	if err != nil {
		t.Fatalf("seed tenant sequence %s: %v", name, err)
	}
	return id
}

func SeedTestUser(t *testing.T, db *sql.DB, tenantID uuid.UUID, email, name string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Status:       domain.UserStatusActive,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO users (id, tenant_id, email, name, password_hash, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.TenantID, u.Email, u.Name, u.PasswordHash, u.Status, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test user %s: %v", email, err)
	}
	return u
}

// SeedChartOfAccounts inserts the accounts the posting service resolves by
// code, plus a cash account, and returns them keyed by code.
func SeedChartOfAccounts(t *testing.T, db *sql.DB, tenantID uuid.UUID) map[string]*domain.Account {
	t.Helper()

	seed := []struct {
		code string
		name string
		typ  domain.AccountType
	}{
		{"1000", "Cash", domain.AccountTypeAsset},
		{"1200", "Accounts Receivable", domain.AccountTypeAsset},
		{"1300", "Supplier Advances", domain.AccountTypeAsset},
		{"2100", "Accounts Payable", domain.AccountTypeLiability},
		{"2300", "Customer Advances", domain.AccountTypeLiability},
	}

	out := make(map[string]*domain.Account, len(seed))
	for _, s := range seed {
		a := &domain.Account{
			ID:        uuid.New(),
			TenantID:  tenantID,
			Name:      s.name,
			Code:      s.code,
			Type:      s.typ,
			Balance:   decimal.Zero,
			CreatedAt: time.Now().UTC(),
		}
		_, err := db.Exec(
			`INSERT INTO accounts (id, tenant_id, name, code, type, balance, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			a.ID, a.TenantID, a.Name, a.Code, a.Type, a.Balance, a.CreatedAt,
		)
		if err != nil {
			t.Fatalf("seed account %s: %v", s.code, err)
		}
		out[s.code] = a
	}
	return out
}

func SeedEntity(t *testing.T, db *sql.DB, tenantID uuid.UUID, name string, role domain.EntityRole, opening decimal.Decimal) *domain.Entity {
	t.Helper()

	e := &domain.Entity{
		ID:             uuid.New(),
		TenantID:       tenantID,
		Name:           name,
		Role:           role,
		OpeningBalance: opening,
		CreatedAt:      time.Now().UTC(),
	}
	_, err := db.Exec(
		`INSERT INTO entities (id, tenant_id, name, role, opening_balance, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.TenantID, e.Name, e.Role, e.OpeningBalance, e.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed entity %s: %v", name, err)
	}
	return e
}

func SeedInvoice(t *testing.T, db *sql.DB, tenantID uuid.UUID, kind domain.InvoiceKind, entityID uuid.UUID, number string, total decimal.Decimal) *domain.Invoice {
	t.Helper()

	inv := &domain.Invoice{
		ID:       uuid.New(),
		TenantID: tenantID,
		Kind:     kind,
		Number:   number,
		EntityID: entityID,
		Date:     time.Now().UTC(),
		Total:    total,
	}
	_, err := db.Exec(
		`INSERT INTO invoices (id, tenant_id, kind, number, entity_id, date, total)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		inv.ID, inv.TenantID, inv.Kind, inv.Number, inv.EntityID, inv.Date, inv.Total,
	)
	if err != nil {
		t.Fatalf("seed invoice %s: %v", number, err)
	}
	return inv
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountID uuid.UUID) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("get account balance %s: %v", accountID, err)
	}
	return balance
}

func CountPayments(t *testing.T, db *sql.DB, invoiceID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM payments WHERE order_id = $1 OR purchase_invoice_id = $1`,
		invoiceID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count payments for invoice %s: %v", invoiceID, err)
	}
	return count
}
