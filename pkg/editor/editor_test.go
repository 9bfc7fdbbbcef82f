package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"area-access-service/internal/domain"
)

func modePtr(m domain.OverrideMode) *domain.OverrideMode { return &m }

func mustReduce(t *testing.T, s State, actions ...Action) State {
	t.Helper()
	for _, a := range actions {
		var err error
		s, err = Reduce(s, a)
		require.NoError(t, err)
	}
	return s
}

func editableState(t *testing.T, mode *domain.OverrideMode, entries []*domain.AccessEntry) State {
	t.Helper()
	return mustReduce(t, NewState(), Open{}, Loaded{Mode: mode, Entries: entries})
}

func TestOpenMovesClosedToLoading(t *testing.T) {
	s := mustReduce(t, NewState(), Open{})
	assert.Equal(t, PhaseLoading, s.Phase)
}

func TestLoadedSeedsStagedSetsFromEntries(t *testing.T) {
	entries := []*domain.AccessEntry{
		{AreaCode: "finance", AccessType: domain.AccessGrant},
		{AreaCode: "marketing", AccessType: domain.AccessRevoke},
	}
	s := editableState(t, modePtr(domain.OverrideModeTweak), entries)

	assert.Equal(t, PhaseEditable, s.Phase)
	assert.True(t, s.Grants.Has("finance"))
	assert.True(t, s.Revokes.Has("marketing"))
	assert.Empty(t, s.Custom)
}

func TestLoadedCustomModeFillsCustomSet(t *testing.T) {
	entries := []*domain.AccessEntry{
		{AreaCode: "ai_automation", AccessType: domain.AccessGrant},
	}
	s := editableState(t, modePtr(domain.OverrideModeCustom), entries)

	assert.True(t, s.Custom.Has("ai_automation"))
	assert.Empty(t, s.Grants)
}

func TestLoadedNoOverrideStartsBlank(t *testing.T) {
	s := editableState(t, nil, nil)

	assert.Equal(t, PhaseEditable, s.Phase)
	assert.Nil(t, s.Mode)
	assert.Empty(t, s.Grants)
	assert.Empty(t, s.Revokes)
}

func TestLoadFailedStaysInLoading(t *testing.T) {
	s := mustReduce(t, NewState(), Open{}, LoadFailed{})
	assert.Equal(t, PhaseLoading, s.Phase)
}

func TestToggleGrantClearsStagedRevoke(t *testing.T) {
	s := editableState(t, modePtr(domain.OverrideModeTweak), nil)

	s = mustReduce(t, s, ToggleRevoke{Code: "sales"}, ToggleGrant{Code: "sales"})

	assert.True(t, s.Grants.Has("sales"))
	assert.False(t, s.Revokes.Has("sales"))
}

func TestToggleRevokeClearsStagedGrant(t *testing.T) {
	s := editableState(t, modePtr(domain.OverrideModeTweak), nil)

	s = mustReduce(t, s, ToggleGrant{Code: "sales"}, ToggleRevoke{Code: "sales"})

	assert.False(t, s.Grants.Has("sales"))
	assert.True(t, s.Revokes.Has("sales"))
}

func TestToggleTwiceRemovesCode(t *testing.T) {
	s := editableState(t, modePtr(domain.OverrideModeTweak), nil)

	s = mustReduce(t, s, ToggleGrant{Code: "finance"}, ToggleGrant{Code: "finance"})

	assert.False(t, s.Grants.Has("finance"))
}

func TestToggleOrderDoesNotMatter(t *testing.T) {
	base := editableState(t, modePtr(domain.OverrideModeTweak), nil)

	a := mustReduce(t, base, ToggleGrant{Code: "sales"}, ToggleRevoke{Code: "finance"})
	b := mustReduce(t, base, ToggleRevoke{Code: "finance"}, ToggleGrant{Code: "sales"})

	assert.Equal(t, a.Grants, b.Grants)
	assert.Equal(t, a.Revokes, b.Revokes)
}

func TestToggleRejectedOutsideEditable(t *testing.T) {
	s := mustReduce(t, NewState(), Open{})

	_, err := Reduce(s, ToggleGrant{Code: "sales"})
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestModeSwitchKeepsStagedSets(t *testing.T) {
	s := editableState(t, modePtr(domain.OverrideModeTweak), nil)
	s = mustReduce(t, s,
		ToggleGrant{Code: "finance"},
		ToggleCustom{Code: "ai_automation"},
		SetMode{Mode: modePtr(domain.OverrideModeCustom)},
		SetMode{Mode: modePtr(domain.OverrideModeTweak)},
	)

	// switching modes must not wipe either staging area
	assert.True(t, s.Grants.Has("finance"))
	assert.True(t, s.Custom.Has("ai_automation"))
}

func TestBeginSaveWithoutModeFails(t *testing.T) {
	s := editableState(t, nil, nil)

	next, err := Reduce(s, BeginSave{})

	assert.ErrorIs(t, err, ErrModeNotSelected)
	assert.Equal(t, PhaseEditable, next.Phase)
}

func TestSaveOKReseedsFromConfirmedRecord(t *testing.T) {
	s := editableState(t, modePtr(domain.OverrideModeTweak), nil)
	s = mustReduce(t, s, ToggleGrant{Code: "finance"}, BeginSave{})
	require.Equal(t, PhaseSaving, s.Phase)

	s = mustReduce(t, s, SaveOK{
		Mode: modePtr(domain.OverrideModeTweak),
		Entries: []*domain.AccessEntry{
			{AreaCode: "finance", AccessType: domain.AccessGrant},
		},
	})

	assert.Equal(t, PhaseEditable, s.Phase)
	assert.True(t, s.Grants.Has("finance"))
}

func TestSaveFailedKeepsStagedInput(t *testing.T) {
	s := editableState(t, modePtr(domain.OverrideModeTweak), nil)
	s = mustReduce(t, s, ToggleGrant{Code: "finance"}, BeginSave{}, SaveFailed{})

	assert.Equal(t, PhaseEditable, s.Phase)
	assert.True(t, s.Grants.Has("finance"))
}

func TestRemoveOKResetsToBlankEditable(t *testing.T) {
	entries := []*domain.AccessEntry{
		{AreaCode: "finance", AccessType: domain.AccessGrant},
	}
	s := editableState(t, modePtr(domain.OverrideModeTweak), entries)
	s = mustReduce(t, s, BeginRemove{}, RemoveOK{})

	assert.Equal(t, PhaseEditable, s.Phase)
	assert.Nil(t, s.Mode)
	assert.Empty(t, s.Grants)
}

func TestRemoveFailedKeepsState(t *testing.T) {
	entries := []*domain.AccessEntry{
		{AreaCode: "finance", AccessType: domain.AccessGrant},
	}
	s := editableState(t, modePtr(domain.OverrideModeTweak), entries)
	s = mustReduce(t, s, BeginRemove{}, RemoveFailed{})

	assert.Equal(t, PhaseEditable, s.Phase)
	assert.True(t, s.Grants.Has("finance"))
}

func TestCloseDropsEverything(t *testing.T) {
	s := editableState(t, modePtr(domain.OverrideModeTweak), nil)
	s = mustReduce(t, s, ToggleGrant{Code: "finance"}, Close{})

	assert.Equal(t, PhaseClosed, s.Phase)
	assert.Empty(t, s.Grants)
	assert.Nil(t, s.Mode)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := editableState(t, modePtr(domain.OverrideModeTweak), nil)

	_ = mustReduce(t, s, ToggleGrant{Code: "finance"})

	assert.False(t, s.Grants.Has("finance"))
}

func TestPayloadTweak(t *testing.T) {
	s := editableState(t, modePtr(domain.OverrideModeTweak), nil)
	s = mustReduce(t, s, ToggleGrant{Code: "finance"}, ToggleRevoke{Code: "marketing"})

	mode, grants, revokes := s.Payload()

	assert.Equal(t, domain.OverrideModeTweak, mode)
	assert.ElementsMatch(t, []string{"finance"}, grants)
	assert.ElementsMatch(t, []string{"marketing"}, revokes)
}

func TestPayloadCustomHasNoRevokes(t *testing.T) {
	s := editableState(t, modePtr(domain.OverrideModeCustom), nil)
	s = mustReduce(t, s,
		ToggleCustom{Code: "ai_automation"},
		// a staged tweak revoke must never leak into a custom payload
		SetMode{Mode: modePtr(domain.OverrideModeTweak)},
		ToggleRevoke{Code: "marketing"},
		SetMode{Mode: modePtr(domain.OverrideModeCustom)},
	)

	mode, grants, revokes := s.Payload()

	assert.Equal(t, domain.OverrideModeCustom, mode)
	assert.ElementsMatch(t, []string{"ai_automation"}, grants)
	assert.Empty(t, revokes)
}
