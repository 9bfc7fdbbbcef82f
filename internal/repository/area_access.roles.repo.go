package repository

import (
	"context"
	"fmt"
	"log"

	"area-access-service/internal/domain"
	"area-access-service/pkg/xerrors"

	"github.com/jackc/pgx/v5"
)

func (r *areaAccessRepo) SeedRoleDefaults(ctx context.Context, defaults []*domain.RoleDefaultArea) ([]*xerrors.RepoError, error) {
	query := `
		INSERT INTO role_default_areas (role, area_code, created_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (role, area_code) DO NOTHING
		RETURNING id
	`

	var errs []*xerrors.RepoError

	for _, d := range defaults {
		var id int64
		err := r.db.QueryRow(ctx, query, d.Role, d.AreaCode, d.CreatedBy).Scan(&id)
		if err == pgx.ErrNoRows {
			// already seeded
			continue
		}
		if err != nil {
			log.Printf("❌ Role default insert failed for %s/%s: %v", d.Role, d.AreaCode, err)
			errs = append(errs, &xerrors.RepoError{
				Entity: "role_default",
				Code:   xerrors.ParsePGErrorCode(err),
				Msg:    err.Error(),
				Ref:    fmt.Sprintf("role:%s-area:%s", d.Role, d.AreaCode),
			})
			continue
		}
		d.ID = id
	}

	return errs, nil
}

func (r *areaAccessRepo) GetRoleDefaultCodes(ctx context.Context, role string) ([]string, error) {
	const query = `
		SELECT area_code
		FROM role_default_areas
		WHERE role = $1
		ORDER BY area_code
	`

	rows, err := r.db.Query(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("query role defaults: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan role default: %w", err)
		}
		codes = append(codes, code)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate role defaults: %w", rows.Err())
	}

	return codes, nil
}

func (r *areaAccessRepo) ListRoleDefaults(ctx context.Context) ([]*domain.RoleDefaultArea, error) {
	const query = `
		SELECT id, role, area_code, created_at, created_by
		FROM role_default_areas
		ORDER BY role, area_code
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query role defaults: %w", err)
	}
	defer rows.Close()

	var out []*domain.RoleDefaultArea
	for rows.Next() {
		var d domain.RoleDefaultArea
		if err := rows.Scan(&d.ID, &d.Role, &d.AreaCode, &d.CreatedAt, &d.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan role default: %w", err)
		}
		out = append(out, &d)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate role defaults: %w", rows.Err())
	}

	return out, nil
}

func (r *areaAccessRepo) AssignUserRole(ctx context.Context, ur *domain.UserRole) (*domain.UserRole, error) {
	query := `
		INSERT INTO user_roles (user_id, role, assigned_by, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
			SET role = EXCLUDED.role,
			    assigned_by = EXCLUDED.assigned_by,
			    updated_at = NOW()
		RETURNING id, user_id, role, assigned_by, created_at, updated_at
	`

	var out domain.UserRole
	err := r.db.QueryRow(ctx, query, ur.UserID, ur.Role, ur.AssignedBy).Scan(
		&out.ID,
		&out.UserID,
		&out.Role,
		&out.AssignedBy,
		&out.CreatedAt,
		&out.UpdatedAt,
	)
	if err != nil {
		log.Printf("❌ Failed to assign role %s to user %s: %v", ur.Role, ur.UserID, err)
		return nil, fmt.Errorf("assign user role: %w", err)
	}

	log.Printf("✅ Assigned role %s to user %s (id: %d)", out.Role, out.UserID, out.ID)
	return &out, nil
}

func (r *areaAccessRepo) GetUserRole(ctx context.Context, userID string) (string, error) {
	const query = `
		SELECT role
		FROM user_roles
		WHERE user_id = $1
	`

	var role string
	err := r.db.QueryRow(ctx, query, userID).Scan(&role)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", xerrors.ErrUserRoleNotFound
		}
		return "", fmt.Errorf("get user role: %w", err)
	}

	return role, nil
}
