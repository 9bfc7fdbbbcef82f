package domain

import (
	"fmt"
	"time"
)

func strPtr(s string) *string { return &s }

// GetDefaultAreas returns the default area catalog for seeding
func GetDefaultAreas() []*Area {
	now := time.Now()
	createdBy := int64(0)

	return []*Area{
		{Code: "sales", Name: "Sales", Description: strPtr("Clients, orders and pipeline"), DisplayOrder: 1, IsActive: true, CreatedAt: now, CreatedBy: createdBy},
		{Code: "marketing", Name: "Marketing", Description: strPtr("Campaigns and content"), DisplayOrder: 2, IsActive: true, CreatedAt: now, CreatedBy: createdBy},
		{Code: "production", Name: "Production", Description: strPtr("Appraisal task tracking and templates"), DisplayOrder: 3, IsActive: true, CreatedAt: now, CreatedBy: createdBy},
		{Code: "finance", Name: "Finance", Description: strPtr("Invoicing and payments"), DisplayOrder: 4, IsActive: true, CreatedAt: now, CreatedBy: createdBy},
		{Code: "ai_automation", Name: "AI & Automation", Description: strPtr("Chat agent and automations"), DisplayOrder: 5, IsActive: true, CreatedAt: now, CreatedBy: createdBy},
		{Code: "admin", Name: "Administration", Description: strPtr("Users, roles and access"), DisplayOrder: 6, IsActive: true, CreatedAt: now, CreatedBy: createdBy},
	}
}

// GetDefaultRoleAreas returns the default role → area grants for seeding.
// Roles themselves are owned by the identity service; this map is the baseline
// access each role carries before any per-user override.
func GetDefaultRoleAreas() ([]*RoleDefaultArea, error) {
	areas := GetDefaultAreas()

	now := time.Now()
	createdBy := int64(0)

	defaults := map[string][]string{
		"super_admin": {"sales", "marketing", "production", "finance", "ai_automation", "admin"},
		"manager":     {"sales", "marketing"},
		"appraiser":   {"production"},
		"marketing":   {"marketing", "ai_automation"},
		"finance":     {"finance"},
		"trainee":     {"production"},
	}

	known := make(map[string]bool, len(areas))
	for _, a := range areas {
		known[a.Code] = true
	}

	var out []*RoleDefaultArea
	for role, codes := range defaults {
		for _, code := range codes {
			if !known[code] {
				return nil, fmt.Errorf("area %s not defined for role %s", code, role)
			}
			out = append(out, &RoleDefaultArea{
				Role:      role,
				AreaCode:  code,
				CreatedAt: now,
				CreatedBy: createdBy,
			})
		}
	}

	return out, nil
}
