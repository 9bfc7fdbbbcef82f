package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"area-access-service/internal/domain"
	"area-access-service/pkg/xerrors"

	"github.com/jackc/pgx/v5"
)

func (r *areaAccessRepo) CreateAreas(ctx context.Context, areas []*domain.Area) ([]*domain.Area, []*xerrors.RepoError, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	var created []*domain.Area
	var errs []*xerrors.RepoError

	for _, a := range areas {
		query := `
			INSERT INTO access_areas (id, code, name, description, display_order, is_active, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (code) DO UPDATE
			SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				display_order = EXCLUDED.display_order,
				is_active = EXCLUDED.is_active,
				updated_at = now(),
				updated_by = EXCLUDED.created_by
			RETURNING id, created_at, updated_at
		`

		err := tx.QueryRow(
			ctx,
			query,
			a.ID,
			a.Code,
			a.Name,
			a.Description,
			a.DisplayOrder,
			a.IsActive,
			a.CreatedBy,
		).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)

		if err != nil {
			log.Printf("❌ Area insert failed for code=%s: %v", a.Code, err)

			repoErr := &xerrors.RepoError{
				Entity: "area",
				Code:   xerrors.ParsePGErrorCode(err),
				Msg:    err.Error(),
				Ref:    a.Code,
			}
			errs = append(errs, repoErr)
			continue
		}

		log.Printf("✅ Area inserted/updated: %s → ID = %d", a.Code, a.ID)
		created = append(created, a)
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return nil, nil, commitErr
	}

	return created, errs, nil
}

func (r *areaAccessRepo) UpdateArea(ctx context.Context, area *domain.Area) error {
	query := `
		UPDATE access_areas
		SET code = $1,
		    name = $2,
		    description = $3,
		    display_order = $4,
		    is_active = $5,
		    updated_at = now(),
		    updated_by = $6
		WHERE id = $7
		RETURNING id
	`

	var updatedBy interface{}
	if area.UpdatedBy != nil {
		updatedBy = *area.UpdatedBy
	}

	var idReturned int64
	err := r.db.QueryRow(ctx, query,
		area.Code,
		area.Name,
		area.Description,
		area.DisplayOrder,
		area.IsActive,
		updatedBy,
		area.ID,
	).Scan(&idReturned)

	if err != nil {
		if err == pgx.ErrNoRows {
			return xerrors.ErrNotFound
		}
		return fmt.Errorf("update area id=%d: %w", area.ID, err)
	}

	return nil
}

func (r *areaAccessRepo) GetAreaByCode(ctx context.Context, code string) (*domain.Area, error) {
	query := `
		SELECT id, code, name, description, display_order, is_active,
		       created_at, created_by, updated_at, updated_by
		FROM access_areas
		WHERE code = $1
	`

	a := &domain.Area{}
	var description sql.NullString
	var updatedAt sql.NullTime
	var updatedBy sql.NullInt64

	err := r.db.QueryRow(ctx, query, code).Scan(
		&a.ID,
		&a.Code,
		&a.Name,
		&description,
		&a.DisplayOrder,
		&a.IsActive,
		&a.CreatedAt,
		&a.CreatedBy,
		&updatedAt,
		&updatedBy,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("get area code=%s: %w", code, err)
	}

	if description.Valid {
		a.Description = &description.String
	}
	if updatedAt.Valid {
		a.UpdatedAt = &updatedAt.Time
	}
	if updatedBy.Valid {
		a.UpdatedBy = &updatedBy.Int64
	}

	return a, nil
}

// ListAreas returns the active catalog ordered for display. Deactivated areas
// drop out of resolution here, not in the resolver.
func (r *areaAccessRepo) ListAreas(ctx context.Context) ([]*domain.Area, error) {
	query := `
		SELECT id, code, name, description, display_order, is_active,
		       created_at, created_by, updated_at, updated_by
		FROM access_areas
		WHERE is_active = TRUE
		ORDER BY display_order, code
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	defer rows.Close()

	var areas []*domain.Area
	for rows.Next() {
		a := &domain.Area{}
		var description sql.NullString
		var updatedAt sql.NullTime
		var updatedBy sql.NullInt64

		if err := rows.Scan(
			&a.ID,
			&a.Code,
			&a.Name,
			&description,
			&a.DisplayOrder,
			&a.IsActive,
			&a.CreatedAt,
			&a.CreatedBy,
			&updatedAt,
			&updatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan area: %w", err)
		}

		if description.Valid {
			a.Description = &description.String
		}
		if updatedAt.Valid {
			a.UpdatedAt = &updatedAt.Time
		}
		if updatedBy.Valid {
			a.UpdatedBy = &updatedBy.Int64
		}
		areas = append(areas, a)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate areas: %w", rows.Err())
	}

	return areas, nil
}
