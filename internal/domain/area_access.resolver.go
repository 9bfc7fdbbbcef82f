package domain

import "sort"

// AreaSet is a set of area codes.
type AreaSet map[string]struct{}

func NewAreaSet(codes ...string) AreaSet {
	s := make(AreaSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

func (s AreaSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// GrantSet collects the area codes of all grant entries.
func GrantSet(entries []*AccessEntry) AreaSet {
	s := make(AreaSet)
	for _, e := range entries {
		if e.AccessType == AccessGrant {
			s[e.AreaCode] = struct{}{}
		}
	}
	return s
}

// RevokeSet collects the area codes of all revoke entries.
func RevokeSet(entries []*AccessEntry) AreaSet {
	s := make(AreaSet)
	for _, e := range entries {
		if e.AccessType == AccessRevoke {
			s[e.AreaCode] = struct{}{}
		}
	}
	return s
}

// ResolveEffectiveAreas computes the effective area list for one user.
//
//   - mode == nil           → role defaults only
//   - mode == custom        → grant entries only, defaults ignored
//   - mode == tweak         → (defaults ∪ grants) − revokes
//
// Codes missing from the catalog are silently dropped: the catalog is the
// source of truth for validity. The result is ordered by Area.DisplayOrder
// (code as tiebreaker), so the same inputs always produce the same output.
// The resolver never errors; an unknown role shows up here as an empty
// defaults set and simply yields no areas.
func ResolveEffectiveAreas(mode *OverrideMode, entries []*AccessEntry, roleDefaults AreaSet, catalog []*Area) []*EffectiveArea {
	effective := make(AreaSet)

	switch {
	case mode == nil:
		for code := range roleDefaults {
			effective[code] = struct{}{}
		}
	case *mode == OverrideModeCustom:
		effective = GrantSet(entries)
	case *mode == OverrideModeTweak:
		for code := range roleDefaults {
			effective[code] = struct{}{}
		}
		for code := range GrantSet(entries) {
			effective[code] = struct{}{}
		}
		for code := range RevokeSet(entries) {
			delete(effective, code)
		}
	}

	ordered := make([]*Area, 0, len(catalog))
	for _, a := range catalog {
		if effective.Has(a.Code) {
			ordered = append(ordered, a)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].DisplayOrder != ordered[j].DisplayOrder {
			return ordered[i].DisplayOrder < ordered[j].DisplayOrder
		}
		return ordered[i].Code < ordered[j].Code
	})

	result := make([]*EffectiveArea, 0, len(ordered))
	for _, a := range ordered {
		result = append(result, &EffectiveArea{AreaCode: a.Code, AreaName: a.Name})
	}
	return result
}
