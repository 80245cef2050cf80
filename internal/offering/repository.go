package offering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitslot/trainer-booking-backend/internal/pkg/timeblock"
)

type Repository interface {
	Create(ctx context.Context, off *Offering) error
	GetByID(ctx context.Context, id string) (*Offering, error)

	// ListByProvider returns all offerings owned by a provider.
	// excludeID is used during updates to leave out the offering being
	// edited from the cross-offering comparison.
	ListByProvider(ctx context.Context, providerID, excludeID string) ([]*Offering, error)
	ListPublishedByProvider(ctx context.Context, providerID string) ([]*Offering, error)

	Update(ctx context.Context, off *Offering) error
	Delete(ctx context.Context, id string) error
	SetPublished(ctx context.Context, id string, published bool) error
	IncrementViews(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const offeringColumns = "o.id, o.provider_id, u.display_name, o.title, o.description, o.price, " +
	"o.category, o.duration, o.in_person, o.published, o.schedule, o.views, o.created_at, o.updated_at"

func scanOffering(row pgx.Row) (*Offering, error) {
	var (
		off          Offering
		scheduleJSON []byte
		providerName *string
	)
	if err := row.Scan(
		&off.ID, &off.ProviderID, &providerName, &off.Title, &off.Description, &off.Price,
		&off.Category, &off.Duration, &off.InPerson, &off.Published, &scheduleJSON,
		&off.Views, &off.CreatedAt, &off.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan offering failed: %w", err)
	}
	if providerName != nil {
		off.ProviderName = *providerName
	}

	off.Schedule = timeblock.Schedule{}
	if len(scheduleJSON) > 0 {
		if err := json.Unmarshal(scheduleJSON, &off.Schedule); err != nil {
			return nil, fmt.Errorf("unmarshal schedule of offering %s failed: %w", off.ID, err)
		}
	}
	return &off, nil
}

func (r *pgxRepository) Create(ctx context.Context, off *Offering) error {
	scheduleJSON, err := json.Marshal(off.Schedule)
	if err != nil {
		return fmt.Errorf("marshal schedule failed: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.offerings").
		Columns("provider_id", "title", "description", "price", "category", "duration", "in_person", "schedule").
		Values(off.ProviderID, off.Title, off.Description, off.Price, off.Category, off.Duration, off.InPerson, scheduleJSON).
		Suffix("RETURNING id, published, views, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create offering query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).
		Scan(&off.ID, &off.Published, &off.Views, &off.CreatedAt, &off.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Offering, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(offeringColumns).
		From("public.offerings o").
		Join("public.users u ON o.provider_id = u.id").
		Where(squirrel.Eq{"o.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get offering query failed: %w", err)
	}

	return scanOffering(r.pool.QueryRow(ctx, query, args...))
}

func (r *pgxRepository) listWhere(ctx context.Context, conds ...squirrel.Sqlizer) ([]*Offering, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(offeringColumns).
		From("public.offerings o").
		Join("public.users u ON o.provider_id = u.id").
		OrderBy("o.created_at ASC")
	for _, c := range conds {
		query = query.Where(c)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list offerings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list offerings failed: %w", err)
	}
	defer rows.Close()

	var offerings []*Offering
	for rows.Next() {
		off, err := scanOffering(rows)
		if err != nil {
			return nil, err
		}
		offerings = append(offerings, off)
	}
	return offerings, rows.Err()
}

func (r *pgxRepository) ListByProvider(ctx context.Context, providerID, excludeID string) ([]*Offering, error) {
	conds := []squirrel.Sqlizer{squirrel.Eq{"o.provider_id": providerID}}
	if excludeID != "" {
		conds = append(conds, squirrel.NotEq{"o.id": excludeID})
	}
	return r.listWhere(ctx, conds...)
}

func (r *pgxRepository) ListPublishedByProvider(ctx context.Context, providerID string) ([]*Offering, error) {
	return r.listWhere(ctx,
		squirrel.Eq{"o.provider_id": providerID},
		squirrel.Eq{"o.published": true},
	)
}

func (r *pgxRepository) Update(ctx context.Context, off *Offering) error {
	scheduleJSON, err := json.Marshal(off.Schedule)
	if err != nil {
		return fmt.Errorf("marshal schedule failed: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.offerings").
		Set("title", off.Title).
		Set("description", off.Description).
		Set("price", off.Price).
		Set("category", off.Category).
		Set("duration", off.Duration).
		Set("in_person", off.InPerson).
		Set("schedule", scheduleJSON).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": off.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update offering query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update offering failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.offerings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete offering query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete offering failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) SetPublished(ctx context.Context, id string, published bool) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.offerings").
		Set("published", published).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set published query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set published failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) IncrementViews(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.offerings").
		Set("views", squirrel.Expr("views + 1")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build increment views query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("increment views failed: %w", err)
	}
	return nil
}
