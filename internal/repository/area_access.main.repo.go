package repository

import (
	"context"

	"area-access-service/internal/domain"
	"area-access-service/pkg/xerrors"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AreaAccessRepository interface {
	// Areas
	CreateAreas(ctx context.Context, areas []*domain.Area) ([]*domain.Area, []*xerrors.RepoError, error)
	UpdateArea(ctx context.Context, area *domain.Area) error
	GetAreaByCode(ctx context.Context, code string) (*domain.Area, error)
	ListAreas(ctx context.Context) ([]*domain.Area, error)

	// Role defaults
	SeedRoleDefaults(ctx context.Context, defaults []*domain.RoleDefaultArea) ([]*xerrors.RepoError, error)
	GetRoleDefaultCodes(ctx context.Context, role string) ([]string, error)
	ListRoleDefaults(ctx context.Context) ([]*domain.RoleDefaultArea, error)

	// User roles
	AssignUserRole(ctx context.Context, ur *domain.UserRole) (*domain.UserRole, error)
	GetUserRole(ctx context.Context, userID string) (string, error)

	// Overrides
	GetUserOverride(ctx context.Context, userID string) (*domain.UserAreaOverride, error)
	ReplaceUserOverride(ctx context.Context, override *domain.UserAreaOverride) (*domain.UserAreaOverride, error)
	DeleteUserOverride(ctx context.Context, userID string) error

	// Audit
	LogAccessEvent(ctx context.Context, audit *domain.AccessAudit) error
	ListAuditEvents(ctx context.Context, filter map[string]interface{}) ([]*domain.AccessAudit, error)
}

// Implementation struct
type areaAccessRepo struct {
	db *pgxpool.Pool
}

// Factory
func NewAreaAccessRepo(db *pgxpool.Pool) AreaAccessRepository {
	return &areaAccessRepo{db: db}
}
