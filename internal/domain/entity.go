package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entity is a customer or supplier. OpeningBalance is the amount carried
// in when the entity was taken on; for a customer it is owed to us, for a
// supplier it is owed by us.
type Entity struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	Name           string
	Role           EntityRole
	OpeningBalance decimal.Decimal
	CreatedAt      time.Time
}

// Return is a returned order (customer) or returned stock (supplier).
type Return struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	EntityID  uuid.UUID
	Date      time.Time
	Amount    decimal.Decimal
	Reference string
}
