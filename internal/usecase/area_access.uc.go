package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"area-access-service/internal/domain"
	"area-access-service/internal/repository"
	"area-access-service/pkg/cache"
	"area-access-service/pkg/id"
	"area-access-service/pkg/xerrors"
)

const (
	catalogCacheKey    = "area:catalog:list"
	catalogCacheTTL    = 5 * time.Minute
	userAccessCacheTTL = 15 * time.Second
)

type AreaAccessUsecase struct {
	repo  repository.AreaAccessRepository
	sf    *id.Snowflake
	cache *cache.Cache
}

// NewAreaAccessUsecase initializes the AreaAccessUsecase. cache may be nil,
// in which case every read goes to the repository.
func NewAreaAccessUsecase(repo repository.AreaAccessRepository, sf *id.Snowflake, cache *cache.Cache) *AreaAccessUsecase {
	return &AreaAccessUsecase{
		repo:  repo,
		sf:    sf,
		cache: cache,
	}
}

// ------------------------ Areas ------------------------

func (uc *AreaAccessUsecase) CreateAreas(ctx context.Context, areas []*domain.Area) ([]*domain.Area, []*xerrors.RepoError, error) {
	now := time.Now().UTC()
	for _, a := range areas {
		areaID, err := uc.sf.GenerateInt64()
		if err != nil {
			return nil, nil, fmt.Errorf("usecase: failed to generate area ID: %w", err)
		}
		a.ID = areaID
		a.CreatedAt = now
	}

	areas, repoErrs, err := uc.repo.CreateAreas(ctx, areas)

	uc.invalidate(ctx, catalogCacheKey)

	return areas, repoErrs, err
}

// UpdateArea edits one catalog row. Deactivating an area here removes it from
// every user's effective list on the next resolution.
func (uc *AreaAccessUsecase) UpdateArea(ctx context.Context, actorID int64, area *domain.Area) error {
	if err := uc.repo.UpdateArea(ctx, area); err != nil {
		return err
	}

	uc.audit(ctx, actorID, "area", area.Code, "update", map[string]interface{}{
		"name":          area.Name,
		"display_order": area.DisplayOrder,
		"is_active":     area.IsActive,
	})
	uc.invalidate(ctx, catalogCacheKey)

	return nil
}

func (uc *AreaAccessUsecase) GetAreaByCode(ctx context.Context, code string) (*domain.Area, error) {
	return uc.repo.GetAreaByCode(ctx, code)
}

func (uc *AreaAccessUsecase) ListAreas(ctx context.Context) ([]*domain.Area, error) {
	return getOrSetCache(ctx, uc.cache, catalogCacheKey, catalogCacheTTL, func() ([]*domain.Area, error) {
		return uc.repo.ListAreas(ctx)
	})
}

// ------------------------ User access ------------------------

// GetUserAccess resolves the full area access view for one user: role,
// override record and the effective area list.
func (uc *AreaAccessUsecase) GetUserAccess(ctx context.Context, userID string) (*domain.UserAreaAccess, error) {
	key := userAccessCacheKey(userID)
	return getOrSetCache(ctx, uc.cache, key, userAccessCacheTTL, func() (*domain.UserAreaAccess, error) {
		return uc.resolveUserAccess(ctx, userID)
	})
}

func (uc *AreaAccessUsecase) resolveUserAccess(ctx context.Context, userID string) (*domain.UserAreaAccess, error) {
	role, err := uc.repo.GetUserRole(ctx, userID)
	if err != nil && !errors.Is(err, xerrors.ErrUserRoleNotFound) {
		return nil, err
	}
	// No role is not an error: the user resolves to "No Access" below.

	var defaults domain.AreaSet
	if role != "" {
		codes, err := uc.repo.GetRoleDefaultCodes(ctx, role)
		if err != nil {
			return nil, err
		}
		defaults = domain.NewAreaSet(codes...)
	} else {
		defaults = domain.NewAreaSet()
	}

	var mode *domain.OverrideMode
	var entries []*domain.AccessEntry
	override, err := uc.repo.GetUserOverride(ctx, userID)
	switch {
	case err == nil:
		mode = override.OverrideMode
		entries = override.AccessEntries
	case errors.Is(err, xerrors.ErrNotFound):
		// pure role defaults
	default:
		return nil, err
	}

	catalog, err := uc.ListAreas(ctx)
	if err != nil {
		return nil, err
	}

	access := &domain.UserAreaAccess{
		UserID:         userID,
		Role:           role,
		OverrideMode:   mode,
		EffectiveAreas: domain.ResolveEffectiveAreas(mode, entries, defaults, catalog),
		AccessEntries:  entries,
	}
	if access.AccessEntries == nil {
		access.AccessEntries = []*domain.AccessEntry{}
	}
	return access, nil
}

// SaveUserOverride validates and persists a full-replace override record.
func (uc *AreaAccessUsecase) SaveUserOverride(ctx context.Context, actorID int64, userID string, mode domain.OverrideMode, grants, revokes []string) (*domain.UserAreaOverride, error) {
	if mode == "" {
		return nil, xerrors.ErrModeRequired
	}
	if !domain.ValidOverrideMode(mode) {
		return nil, fmt.Errorf("%w: %q", xerrors.ErrUnknownOverrideMode, mode)
	}
	if mode == domain.OverrideModeCustom && len(revokes) > 0 {
		return nil, xerrors.ErrRevokesNotAllowed
	}

	grantSet := domain.NewAreaSet(grants...)
	for _, code := range revokes {
		if grantSet.Has(code) {
			return nil, fmt.Errorf("%w: %s", xerrors.ErrGrantRevokeConflict, code)
		}
	}

	catalog, err := uc.ListAreas(ctx)
	if err != nil {
		return nil, err
	}
	known := make(domain.AreaSet, len(catalog))
	for _, a := range catalog {
		known[a.Code] = struct{}{}
	}
	for _, code := range append(append([]string{}, grants...), revokes...) {
		if !known.Has(code) {
			return nil, fmt.Errorf("%w: %s", xerrors.ErrUnknownAreaCode, code)
		}
	}

	override := &domain.UserAreaOverride{
		UserID:       userID,
		OverrideMode: &mode,
		CreatedBy:    actorID,
	}
	for _, code := range grants {
		override.AccessEntries = append(override.AccessEntries, &domain.AccessEntry{
			AreaCode:             code,
			AccessType:           domain.AccessGrant,
			IncludeAllSubmodules: true,
		})
	}
	for _, code := range revokes {
		override.AccessEntries = append(override.AccessEntries, &domain.AccessEntry{
			AreaCode:   code,
			AccessType: domain.AccessRevoke,
		})
	}

	saved, err := uc.repo.ReplaceUserOverride(ctx, override)
	if err != nil {
		return nil, err
	}

	uc.audit(ctx, actorID, "user_area_override", userID, "replace", map[string]interface{}{
		"override_mode": mode,
		"grants":        grants,
		"revokes":       revokes,
	})
	uc.invalidate(ctx, userAccessCacheKey(userID))

	return saved, nil
}

// RemoveUserOverride reverts a user to pure role defaults. Idempotent.
func (uc *AreaAccessUsecase) RemoveUserOverride(ctx context.Context, actorID int64, userID string) error {
	if err := uc.repo.DeleteUserOverride(ctx, userID); err != nil {
		return err
	}

	uc.audit(ctx, actorID, "user_area_override", userID, "delete", nil)
	uc.invalidate(ctx, userAccessCacheKey(userID))

	return nil
}

// ------------------------ User roles ------------------------

func (uc *AreaAccessUsecase) AssignUserRole(ctx context.Context, actorID int64, userID, role string) (*domain.UserRole, error) {
	if role == "" {
		return nil, xerrors.ErrRoleRequired
	}

	assigned, err := uc.repo.AssignUserRole(ctx, &domain.UserRole{
		UserID:     userID,
		Role:       role,
		AssignedBy: actorID,
	})
	if err != nil {
		return nil, err
	}

	uc.audit(ctx, actorID, "user_role", userID, "assign", map[string]interface{}{"role": role})
	uc.invalidate(ctx, userAccessCacheKey(userID))

	return assigned, nil
}

// ------------------------ Role defaults ------------------------

func (uc *AreaAccessUsecase) ListRoleDefaults(ctx context.Context) ([]*domain.RoleDefaultArea, error) {
	return uc.repo.ListRoleDefaults(ctx)
}

// ------------------------ Audit ------------------------

func (uc *AreaAccessUsecase) ListAuditEvents(ctx context.Context, filter map[string]interface{}) ([]*domain.AccessAudit, error) {
	return uc.repo.ListAuditEvents(ctx, filter)
}

// audit writes best-effort: a failed audit insert never fails the mutation.
func (uc *AreaAccessUsecase) audit(ctx context.Context, actorID int64, objectType, objectRef, action string, payload map[string]interface{}) {
	var raw []byte
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}
	event := &domain.AccessAudit{
		ActorID:    actorID,
		ObjectType: objectType,
		ObjectRef:  objectRef,
		Action:     action,
		Payload:    raw,
	}
	if err := uc.repo.LogAccessEvent(ctx, event); err != nil {
		fmt.Printf("⚠️ audit write failed (%s %s): %v\n", action, objectRef, err)
	}
}

// ------------------------ Helpers ------------------------

func userAccessCacheKey(userID string) string {
	return "area:user_access:" + userID
}

func (uc *AreaAccessUsecase) invalidate(ctx context.Context, key string) {
	if uc.cache == nil {
		return
	}
	uc.cache.Delete(ctx, "area", key)
}

func getOrSetCache[T any](ctx context.Context, cache *cache.Cache, key string, ttl time.Duration, fetchFunc func() (T, error)) (T, error) {
	var result T

	if cache == nil {
		return fetchFunc()
	}

	// Try to get from Redis
	cached, err := cache.Get(ctx, "area", key)
	if err == nil {
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return result, nil
		}
	}

	// Fetch from source (DB)
	result, err = fetchFunc()
	if err != nil {
		return result, err
	}

	// Cache the result
	if data, err := json.Marshal(result); err == nil {
		cache.Set(ctx, "area", key, data, ttl)
	}

	return result, nil
}
