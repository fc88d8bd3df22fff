package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/stay-booking-backend/internal/db"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/daterange"
)

// Repository owns reservation records and enforces the no-overlap invariant.
type Repository interface {
	// CreateIfAvailable inserts r unless a reservation in one of the blocking
	// statuses overlaps it. Check and insert are atomic per property.
	CreateIfAvailable(ctx context.Context, r *Reservation, blocking []Status) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	ListForGuest(ctx context.Context, guestID string, filter Filter) ([]*Reservation, int, error)
	ListForProperty(ctx context.Context, propertyID string, filter Filter) ([]*Reservation, int, error)
	// ListBlocking returns reservations of the property in statuses that overlap stay.
	ListBlocking(ctx context.Context, propertyID string, stay daterange.Range, statuses []Status) ([]*Reservation, error)
	// UpdateStatus applies u only if the stored status equals u.From (ErrStaleState otherwise).
	// Moving into an occupying status re-checks overlap (ErrConflict).
	UpdateStatus(ctx context.Context, u StatusUpdate) (*Reservation, error)
	UpdateOccupancy(ctx context.Context, id string, expected Status, occ Occupancy, at time.Time) (*Reservation, error)
	ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]*Reservation, error)
}

var reservationColumns = []string{
	"id", "property_id", "guest_id", "check_in", "check_out",
	"adults", "children", "infants",
	"nightly_rate", "nights", "subtotal", "discount", "service_fee", "total", "currency", "booking_type",
	"status", "COALESCE(special_requests, '')", "created_at", "updated_at",
	"cancelled_at", "COALESCE(cancellation_reason, '')",
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func psql() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func scanReservation(row pgx.Row, extra ...any) (*Reservation, error) {
	var r Reservation
	dest := []any{
		&r.ID, &r.PropertyID, &r.GuestID, &r.Stay.CheckIn, &r.Stay.CheckOut,
		&r.Occupancy.Adults, &r.Occupancy.Children, &r.Occupancy.Infants,
		&r.Price.NightlyRate, &r.Price.Nights, &r.Price.Subtotal, &r.Price.Discount,
		&r.Price.ServiceFee, &r.Price.Total, &r.Price.Currency, &r.Price.BookingType,
		&r.Status, &r.SpecialRequests, &r.CreatedAt, &r.UpdatedAt,
		&r.CancelledAt, &r.CancellationReason,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	r.Stay.CheckIn = daterange.Day(r.Stay.CheckIn)
	r.Stay.CheckOut = daterange.Day(r.Stay.CheckOut)
	return &r, nil
}

// overlapExists checks for a blocking reservation overlapping stay: existing.check_in < new.check_out AND existing.check_out > new.check_in.
func overlapExists(ctx context.Context, q db.Querier, propertyID string, stay daterange.Range, statuses []Status, excludeID string) (bool, error) {
	sub := psql().Select("1").
		From("public.reservations").
		Where(squirrel.Eq{"property_id": propertyID}).
		Where(squirrel.Eq{"status": statusStrings(statuses)}).
		Where(squirrel.Lt{"check_in": stay.CheckOut}).
		Where(squirrel.Gt{"check_out": stay.CheckIn})
	if excludeID != "" {
		sub = sub.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := sub.ToSql()
	if err != nil {
		return false, fmt.Errorf("build check overlap query failed: %w", err)
	}

	var exists bool
	if err := q.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) CreateIfAvailable(ctx context.Context, res *Reservation, blocking []Status) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		// Serializes creators of the same property for the rest of the transaction.
		if err := db.LockKey(ctx, tx, "property:"+res.PropertyID); err != nil {
			return fmt.Errorf("lock property calendar failed: %w", err)
		}

		taken, err := overlapExists(ctx, tx, res.PropertyID, res.Stay, blocking, "")
		if err != nil {
			return err
		}
		if taken {
			return ErrConflict
		}

		var specialRequests *string
		if res.SpecialRequests != "" {
			specialRequests = &res.SpecialRequests
		}

		query, args, err := psql().Insert("public.reservations").
			Columns(
				"id", "property_id", "guest_id", "check_in", "check_out",
				"adults", "children", "infants",
				"nightly_rate", "nights", "subtotal", "discount", "service_fee", "total", "currency", "booking_type",
				"status", "special_requests", "created_at", "updated_at",
			).
			Values(
				res.ID, res.PropertyID, res.GuestID, res.Stay.CheckIn, res.Stay.CheckOut,
				res.Occupancy.Adults, res.Occupancy.Children, res.Occupancy.Infants,
				res.Price.NightlyRate, res.Price.Nights, res.Price.Subtotal, res.Price.Discount,
				res.Price.ServiceFee, res.Price.Total, res.Price.Currency, string(res.Price.BookingType),
				string(res.Status), specialRequests, res.CreatedAt, res.UpdatedAt,
			).
			ToSql()
		if err != nil {
			return fmt.Errorf("build create reservation query failed: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if db.IsExclusionViolation(err) {
			return ErrConflict
		}
		if errors.Is(err, ErrConflict) {
			return err
		}
		return fmt.Errorf("create reservation failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	return r.getByID(ctx, r.pool, id, false)
}

func (r *pgxRepository) getByID(ctx context.Context, q db.Querier, id string, forUpdate bool) (*Reservation, error) {
	builder := psql().Select(reservationColumns...).
		From("public.reservations").
		Where(squirrel.Eq{"id": id})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get reservation query failed: %w", err)
	}

	res, err := scanReservation(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidText(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation failed: %w", err)
	}
	return res, nil
}

func (r *pgxRepository) ListForGuest(ctx context.Context, guestID string, filter Filter) ([]*Reservation, int, error) {
	return r.list(ctx, squirrel.Eq{"guest_id": guestID}, filter)
}

func (r *pgxRepository) ListForProperty(ctx context.Context, propertyID string, filter Filter) ([]*Reservation, int, error) {
	return r.list(ctx, squirrel.Eq{"property_id": propertyID}, filter)
}

func (r *pgxRepository) list(ctx context.Context, owner squirrel.Eq, filter Filter) ([]*Reservation, int, error) {
	filter.normalize()

	cols := append(append([]string{}, reservationColumns...), "count(*) OVER() AS total_count")
	query := psql().Select(cols...).
		From("public.reservations").
		Where(owner)

	if len(filter.Statuses) > 0 {
		query = query.Where(squirrel.Eq{"status": statusStrings(filter.Statuses)})
	}

	offset := (filter.Page - 1) * filter.PageSize
	query = query.OrderBy(filter.SortBy + " " + filter.SortOrder).
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list reservations query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reservations failed: %w", err)
	}
	defer rows.Close()

	var result []*Reservation
	var total int
	for rows.Next() {
		res, err := scanReservation(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan reservation failed: %w", err)
		}
		result = append(result, res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list reservations failed: %w", err)
	}

	return result, total, nil
}

func (r *pgxRepository) ListBlocking(ctx context.Context, propertyID string, stay daterange.Range, statuses []Status) ([]*Reservation, error) {
	query, args, err := psql().Select(reservationColumns...).
		From("public.reservations").
		Where(squirrel.Eq{"property_id": propertyID}).
		Where(squirrel.Eq{"status": statusStrings(statuses)}).
		Where(squirrel.Lt{"check_in": stay.CheckOut}).
		Where(squirrel.Gt{"check_out": stay.CheckIn}).
		OrderBy("check_in").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list blocking query failed: %w", err)
	}
	return r.collect(ctx, query, args)
}

func (r *pgxRepository) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]*Reservation, error) {
	if limit < 1 {
		limit = 100
	}
	query, args, err := psql().Select(reservationColumns...).
		From("public.reservations").
		Where(squirrel.Eq{"status": string(StatusPending)}).
		Where(squirrel.Lt{"created_at": createdBefore}).
		OrderBy("created_at").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list stale pending query failed: %w", err)
	}
	return r.collect(ctx, query, args)
}

func (r *pgxRepository) collect(ctx context.Context, query string, args []any) ([]*Reservation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reservations failed: %w", err)
	}
	defer rows.Close()

	var result []*Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation failed: %w", err)
		}
		result = append(result, res)
	}
	return result, rows.Err()
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, u StatusUpdate) (*Reservation, error) {
	var updated *Reservation
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := r.getByID(ctx, tx, u.ID, true)
		if err != nil {
			return err
		}
		if current.Status != u.From {
			return ErrStaleState
		}

		if u.To.Occupies() && !u.From.Occupies() {
			if err := db.LockKey(ctx, tx, "property:"+current.PropertyID); err != nil {
				return fmt.Errorf("lock property calendar failed: %w", err)
			}
			taken, err := overlapExists(ctx, tx, current.PropertyID, current.Stay, OccupyingStatuses, current.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrConflict
			}
		}

		update := psql().Update("public.reservations").
			Set("status", string(u.To)).
			Set("updated_at", u.At).
			Where(squirrel.Eq{"id": u.ID}).
			Where(squirrel.Eq{"status": string(u.From)})
		if u.To == StatusCancelled {
			update = update.Set("cancelled_at", u.At).Set("cancellation_reason", u.Reason)
		}

		query, args, err := update.ToSql()
		if err != nil {
			return fmt.Errorf("build update status query failed: %w", err)
		}
		ct, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return ErrStaleState
		}

		applyUpdate(current, u)
		updated = current
		return nil
	})
	if err != nil {
		switch {
		case db.IsExclusionViolation(err):
			return nil, ErrConflict
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrStaleState), errors.Is(err, ErrConflict):
			return nil, err
		}
		return nil, fmt.Errorf("update reservation status failed: %w", err)
	}
	return updated, nil
}

func (r *pgxRepository) UpdateOccupancy(ctx context.Context, id string, expected Status, occ Occupancy, at time.Time) (*Reservation, error) {
	query, args, err := psql().Update("public.reservations").
		Set("adults", occ.Adults).
		Set("children", occ.Children).
		Set("infants", occ.Infants).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": string(expected)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update occupancy query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if db.IsInvalidText(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update occupancy failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		// Either gone or moved on; tell them apart for the caller.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStaleState
	}
	return r.GetByID(ctx, id)
}
