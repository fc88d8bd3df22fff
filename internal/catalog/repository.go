package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/stay-booking-backend/internal/db"
)

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository reads pricing info from the catalog's properties table.
func NewPgxRepository(pool *pgxpool.Pool) Catalog {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) GetPricingInfo(ctx context.Context, propertyID string) (*PricingInfo, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "owner_id", "nightly_rate", "currency",
		"monthly_discount_percent", "max_guests", "instant_book",
	).
		From("public.properties").
		Where(squirrel.Eq{"id": propertyID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get pricing info query failed: %w", err)
	}

	var p PricingInfo
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&p.PropertyID, &p.OwnerID, &p.NightlyRate, &p.Currency,
		&p.DiscountPercent, &p.MaxGuests, &p.InstantBook,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		// Malformed ids never match a property.
		if db.IsInvalidText(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get pricing info failed: %w", err)
	}
	return &p, nil
}
