package catalog

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var ErrNotFound = apperror.NotFound("property not found")

// PricingInfo is the read-only view of a property the reservation engine needs.
type PricingInfo struct {
	PropertyID      string
	OwnerID         string
	NightlyRate     decimal.Decimal
	Currency        string
	DiscountPercent decimal.Decimal // long-stay discount
	MaxGuests       int
	InstantBook     bool
}

// Catalog is the narrow interface consumed from the property catalog subsystem.
type Catalog interface {
	// GetPricingInfo returns ErrNotFound for unknown properties.
	GetPricingInfo(ctx context.Context, propertyID string) (*PricingInfo, error)
}
