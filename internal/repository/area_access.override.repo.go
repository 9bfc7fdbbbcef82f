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

func (r *areaAccessRepo) GetUserOverride(ctx context.Context, userID string) (*domain.UserAreaOverride, error) {
	const headQuery = `
		SELECT user_id, override_mode, created_at, created_by, updated_at, updated_by
		FROM user_area_overrides
		WHERE user_id = $1
	`

	o := &domain.UserAreaOverride{}
	var mode string
	var updatedAt sql.NullTime
	var updatedBy sql.NullInt64

	err := r.db.QueryRow(ctx, headQuery, userID).Scan(
		&o.UserID,
		&mode,
		&o.CreatedAt,
		&o.CreatedBy,
		&updatedAt,
		&updatedBy,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("get user override: %w", err)
	}

	m := domain.OverrideMode(mode)
	o.OverrideMode = &m
	if updatedAt.Valid {
		o.UpdatedAt = &updatedAt.Time
	}
	if updatedBy.Valid {
		o.UpdatedBy = &updatedBy.Int64
	}

	const entriesQuery = `
		SELECT id, user_id, area_code, access_type, include_all_submodules, created_at, created_by
		FROM user_area_access_entries
		WHERE user_id = $1
		ORDER BY area_code
	`

	rows, err := r.db.Query(ctx, entriesQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("query access entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.AccessEntry
		var accessType string
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.AreaCode,
			&accessType,
			&e.IncludeAllSubmodules,
			&e.CreatedAt,
			&e.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan access entry: %w", err)
		}
		e.AccessType = domain.AccessType(accessType)
		o.AccessEntries = append(o.AccessEntries, &e)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate access entries: %w", rows.Err())
	}

	return o, nil
}

// ReplaceUserOverride persists the aggregate as a full replace: the override
// row is upserted and the entry list swapped wholesale in one transaction.
// Concurrent saves are last-write-wins.
func (r *areaAccessRepo) ReplaceUserOverride(ctx context.Context, override *domain.UserAreaOverride) (*domain.UserAreaOverride, error) {
	if override.OverrideMode == nil {
		return nil, xerrors.ErrModeRequired
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const headQuery = `
		INSERT INTO user_area_overrides (user_id, override_mode, created_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET override_mode = EXCLUDED.override_mode,
		    updated_at = now(),
		    updated_by = EXCLUDED.created_by
		RETURNING user_id, override_mode, created_at, created_by, updated_at, updated_by
	`

	saved := &domain.UserAreaOverride{}
	var mode string
	var updatedAt sql.NullTime
	var updatedBy sql.NullInt64

	err = tx.QueryRow(ctx, headQuery, override.UserID, string(*override.OverrideMode), override.CreatedBy).Scan(
		&saved.UserID,
		&mode,
		&saved.CreatedAt,
		&saved.CreatedBy,
		&updatedAt,
		&updatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert override for user %s: %w", override.UserID, err)
	}

	m := domain.OverrideMode(mode)
	saved.OverrideMode = &m
	if updatedAt.Valid {
		saved.UpdatedAt = &updatedAt.Time
	}
	if updatedBy.Valid {
		saved.UpdatedBy = &updatedBy.Int64
	}

	if _, err := tx.Exec(ctx, `DELETE FROM user_area_access_entries WHERE user_id = $1`, override.UserID); err != nil {
		return nil, fmt.Errorf("clear access entries for user %s: %w", override.UserID, err)
	}

	const entryQuery = `
		INSERT INTO user_area_access_entries (user_id, area_code, access_type, include_all_submodules, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	for _, e := range override.AccessEntries {
		savedEntry := &domain.AccessEntry{
			UserID:               override.UserID,
			AreaCode:             e.AreaCode,
			AccessType:           e.AccessType,
			IncludeAllSubmodules: e.IncludeAllSubmodules,
			CreatedBy:            override.CreatedBy,
		}
		err := tx.QueryRow(ctx, entryQuery,
			override.UserID,
			e.AreaCode,
			string(e.AccessType),
			e.IncludeAllSubmodules,
			override.CreatedBy,
		).Scan(&savedEntry.ID, &savedEntry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert access entry %s/%s: %w", e.AreaCode, e.AccessType, err)
		}
		saved.AccessEntries = append(saved.AccessEntries, savedEntry)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit override for user %s: %w", override.UserID, err)
	}

	log.Printf("✅ Override replaced for user %s: mode=%s entries=%d", saved.UserID, *saved.OverrideMode, len(saved.AccessEntries))
	return saved, nil
}

// DeleteUserOverride reverts the user to pure role defaults. Deleting an
// override that does not exist is not an error.
func (r *areaAccessRepo) DeleteUserOverride(ctx context.Context, userID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM user_area_access_entries WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete access entries for user %s: %w", userID, err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM user_area_overrides WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete override for user %s: %w", userID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit override delete for user %s: %w", userID, err)
	}

	if tag.RowsAffected() == 0 {
		log.Printf("ℹ️  No override to delete for user %s", userID)
	} else {
		log.Printf("✅ Override deleted for user %s", userID)
	}

	return nil
}
