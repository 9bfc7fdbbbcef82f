package domain

import "time"

// OverrideMode controls how a user's override record combines with role defaults.
// A nil mode on the aggregate means "role defaults only".
type OverrideMode string

const (
	OverrideModeTweak  OverrideMode = "tweak"
	OverrideModeCustom OverrideMode = "custom"
)

// ValidOverrideMode reports whether m is one of the persistable modes.
func ValidOverrideMode(m OverrideMode) bool {
	return m == OverrideModeTweak || m == OverrideModeCustom
}

type AccessType string

const (
	AccessGrant  AccessType = "grant"
	AccessRevoke AccessType = "revoke"
)

// Area is a functional section of the platform (sales, finance, production, ...)
type Area struct {
	ID           int64      `json:"id"`
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	Description  *string    `json:"description,omitempty"`
	DisplayOrder int        `json:"display_order"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	CreatedBy    int64      `json:"created_by"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	UpdatedBy    *int64     `json:"updated_by,omitempty"`
}

// AccessEntry is one grant or revoke instruction for a single area inside a
// user's override record.
type AccessEntry struct {
	ID                   int64      `json:"id"`
	UserID               string     `json:"user_id"`
	AreaCode             string     `json:"area_code"`
	AccessType           AccessType `json:"access_type"`
	IncludeAllSubmodules bool       `json:"include_all_submodules"`
	CreatedAt            time.Time  `json:"created_at"`
	CreatedBy            int64      `json:"created_by"`
}

// UserAreaOverride is the per-user aggregate: at most one row per user.
type UserAreaOverride struct {
	UserID        string         `json:"user_id"`
	OverrideMode  *OverrideMode  `json:"override_mode"`
	AccessEntries []*AccessEntry `json:"access_entries"`
	CreatedAt     time.Time      `json:"created_at"`
	CreatedBy     int64          `json:"created_by"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
	UpdatedBy     *int64         `json:"updated_by,omitempty"`
}

// EffectiveArea is the resolved, display-ready view. Derived on every fetch,
// never persisted.
type EffectiveArea struct {
	AreaCode string `json:"area_code"`
	AreaName string `json:"area_name"`
}

// RoleDefaultArea maps one role to one area code it gets by default.
type RoleDefaultArea struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	AreaCode  string    `json:"area_code"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy int64     `json:"created_by"`
}

// UserRole assigns a role to a user. One role per user in this service.
type UserRole struct {
	ID         int64      `json:"id"`
	UserID     string     `json:"user_id"`
	Role       string     `json:"role"`
	AssignedBy int64      `json:"assigned_by"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// UserAreaAccess is the full answer for GET /users/{id}/areas.
type UserAreaAccess struct {
	UserID         string           `json:"user_id"`
	Role           string           `json:"role"`
	OverrideMode   *OverrideMode    `json:"override_mode"`
	EffectiveAreas []*EffectiveArea `json:"effective_areas"`
	AccessEntries  []*AccessEntry   `json:"access_entries"`
}
