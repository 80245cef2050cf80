package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// activeStates are the states that consume a slot.
var activeStates = []string{string(StatePending), string(StateAccepted)}

// AcceptedCandidate is a sweep-scan row: an accepted reservation plus
// the duration of its offering. Duration is nil when the offering row
// is gone; the sweeper logs and skips those.
type AcceptedCandidate struct {
	ID        string
	StartTime time.Time
	State     State
	Duration  *int
}

type Repository interface {
	Create(ctx context.Context, r *Reservation) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	ListByConsumer(ctx context.Context, consumerID string) ([]*Reservation, error)
	ListByProvider(ctx context.Context, providerID string) ([]*Reservation, error)

	// UpdateStateCAS is the sole state write: a conditional update that
	// succeeds only while the stored state still equals from. Zero rows
	// affected means another actor won the race (ErrStaleTransition).
	UpdateStateCAS(ctx context.Context, id string, from, to State, newStart *time.Time) error

	// HasOfferingConflict reports whether any active reservation of the
	// offering overlaps [start, end). excludeID ignores the reservation
	// being rescheduled.
	HasOfferingConflict(ctx context.Context, offeringID string, start, end time.Time, excludeID string) (bool, error)

	// HasConsumerConflict is the same check across all of one
	// consumer's active reservations, whatever the offering.
	HasConsumerConflict(ctx context.Context, consumerID string, start, end time.Time, excludeID string) (bool, error)

	// ListAccepted returns all accepted reservations for the sweeper.
	ListAccepted(ctx context.Context) ([]AcceptedCandidate, error)

	// ReservedStarts returns the start times of active reservations of
	// an offering inside [from, to). Feeds the slot generator.
	ReservedStarts(ctx context.Context, offeringID string, from, to time.Time) ([]time.Time, error)

	// HasActive reports whether the offering has pending or accepted
	// reservations. Guards schedule edits and deletes.
	HasActive(ctx context.Context, offeringID string) (bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const reservationColumns = "r.id, r.consumer_id, r.offering_id, u.display_name, o.title, " +
	"o.provider_id, o.duration, r.start_time, r.state, r.created_at, r.updated_at"

func scanReservation(row pgx.Row) (*Reservation, error) {
	var (
		r            Reservation
		consumerName *string
	)
	if err := row.Scan(
		&r.ID, &r.ConsumerID, &r.OfferingID, &consumerName, &r.OfferingTitle,
		&r.ProviderID, &r.Duration, &r.StartTime, &r.State, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan reservation failed: %w", err)
	}
	if consumerName != nil {
		r.ConsumerName = *consumerName
	}
	return &r, nil
}

func (r *pgxRepository) Create(ctx context.Context, res *Reservation) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.reservations").
		Columns("consumer_id", "offering_id", "start_time", "state").
		Values(res.ConsumerID, res.OfferingID, res.StartTime, res.State).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create reservation query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).
		Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(reservationColumns).
		From("public.reservations r").
		Join("public.offerings o ON r.offering_id = o.id").
		Join("public.users u ON r.consumer_id = u.id").
		Where(squirrel.Eq{"r.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get reservation query failed: %w", err)
	}

	return scanReservation(r.pool.QueryRow(ctx, query, args...))
}

func (r *pgxRepository) listWhere(ctx context.Context, cond squirrel.Sqlizer) ([]*Reservation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(reservationColumns).
		From("public.reservations r").
		Join("public.offerings o ON r.offering_id = o.id").
		Join("public.users u ON r.consumer_id = u.id").
		Where(cond).
		OrderBy("r.start_time DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list reservations query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations failed: %w", err)
	}
	defer rows.Close()

	var reservations []*Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (r *pgxRepository) ListByConsumer(ctx context.Context, consumerID string) ([]*Reservation, error) {
	return r.listWhere(ctx, squirrel.Eq{"r.consumer_id": consumerID})
}

func (r *pgxRepository) ListByProvider(ctx context.Context, providerID string) ([]*Reservation, error) {
	return r.listWhere(ctx, squirrel.Eq{"o.provider_id": providerID})
}

func (r *pgxRepository) UpdateStateCAS(ctx context.Context, id string, from, to State, newStart *time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Update("public.reservations").
		Set("state", to).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "state": from})
	if newStart != nil {
		query = query.Set("start_time", *newStart)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build transition query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("transition write failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrStaleTransition
	}
	return nil
}

// overlapExists runs the half-open interval test in SQL:
// existing.start < end AND existing.start + duration > start.
func (r *pgxRepository) overlapExists(ctx context.Context, extra squirrel.Sqlizer, start, end time.Time, excludeID string) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	subQuery := psql.Select("1").
		From("public.reservations r").
		Join("public.offerings o ON r.offering_id = o.id").
		Where(extra).
		Where(squirrel.Eq{"r.state": activeStates}).
		Where(squirrel.Expr("r.start_time < ?", end)).
		Where(squirrel.Expr("r.start_time + make_interval(mins => o.duration) > ?", start))

	if excludeID != "" {
		subQuery = subQuery.Where(squirrel.NotEq{"r.id": excludeID})
	}

	sql, args, err := subQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build overlap query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) HasOfferingConflict(ctx context.Context, offeringID string, start, end time.Time, excludeID string) (bool, error) {
	return r.overlapExists(ctx, squirrel.Eq{"r.offering_id": offeringID}, start, end, excludeID)
}

func (r *pgxRepository) HasConsumerConflict(ctx context.Context, consumerID string, start, end time.Time, excludeID string) (bool, error) {
	return r.overlapExists(ctx, squirrel.Eq{"r.consumer_id": consumerID}, start, end, excludeID)
}

func (r *pgxRepository) ListAccepted(ctx context.Context) ([]AcceptedCandidate, error) {
	// LEFT JOIN so a reservation whose offering row disappeared still
	// shows up; the sweeper decides what to do with it.
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("r.id", "r.start_time", "r.state", "o.duration").
		From("public.reservations r").
		LeftJoin("public.offerings o ON r.offering_id = o.id").
		Where(squirrel.Eq{"r.state": StateAccepted}).
		OrderBy("r.start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list accepted query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accepted reservations failed: %w", err)
	}
	defer rows.Close()

	var candidates []AcceptedCandidate
	for rows.Next() {
		var c AcceptedCandidate
		if err := rows.Scan(&c.ID, &c.StartTime, &c.State, &c.Duration); err != nil {
			return nil, fmt.Errorf("scan accepted reservation failed: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (r *pgxRepository) ReservedStarts(ctx context.Context, offeringID string, from, to time.Time) ([]time.Time, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("start_time").
		From("public.reservations").
		Where(squirrel.Eq{"offering_id": offeringID}).
		Where(squirrel.Eq{"state": activeStates}).
		Where(squirrel.GtOrEq{"start_time": from}).
		Where(squirrel.Lt{"start_time": to}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reserved starts query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reserved starts failed: %w", err)
	}
	defer rows.Close()

	var starts []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan reserved start failed: %w", err)
		}
		starts = append(starts, t)
	}
	return starts, rows.Err()
}

func (r *pgxRepository) HasActive(ctx context.Context, offeringID string) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	subQuery, args, err := psql.Select("1").
		From("public.reservations").
		Where(squirrel.Eq{"offering_id": offeringID}).
		Where(squirrel.Eq{"state": activeStates}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build has active query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+subQuery+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active reservations failed: %w", err)
	}
	return exists, nil
}
