// Package editor holds the staging state machine behind the override editor
// panel. It is a pure reducer: no I/O, no clock, every transition derived
// from the previous state and one action, so the grant/revoke invariants can
// be tested without a UI or a server.
package editor

import (
	"errors"

	"area-access-service/internal/domain"
)

type Phase string

const (
	PhaseClosed   Phase = "closed"
	PhaseLoading  Phase = "loading"
	PhaseEditable Phase = "editable"
	PhaseSaving   Phase = "saving"
	PhaseRemoving Phase = "removing"
)

var (
	ErrModeNotSelected = errors.New("select an override mode before saving")
	ErrNotEditable     = errors.New("editor is not in an editable state")
)

// State is the full editor state. Sets are copied on every transition; a
// returned State never aliases its predecessor.
type State struct {
	Phase   Phase
	Mode    *domain.OverrideMode
	Grants  domain.AreaSet // tweak mode: explicit grants
	Revokes domain.AreaSet // tweak mode: explicit revokes
	Custom  domain.AreaSet // custom mode: the full grant list
}

// NewState returns the initial (panel closed) state.
func NewState() State {
	return State{
		Phase:   PhaseClosed,
		Grants:  domain.NewAreaSet(),
		Revokes: domain.NewAreaSet(),
		Custom:  domain.NewAreaSet(),
	}
}

type Action interface{ isAction() }

// Open moves Closed → Loading.
type Open struct{}

// Loaded carries the server's override record into the editor: Editable.
type Loaded struct {
	Mode    *domain.OverrideMode
	Entries []*domain.AccessEntry
}

// LoadFailed keeps the panel in Loading; the caller offers a manual retry.
type LoadFailed struct{}

// ToggleGrant flips an area in the tweak-mode grant set.
type ToggleGrant struct{ Code string }

// ToggleRevoke flips an area in the tweak-mode revoke set.
type ToggleRevoke struct{ Code string }

// ToggleCustom flips an area in the custom-mode grant set.
type ToggleCustom struct{ Code string }

// SetMode selects the override mode. nil clears the selection.
type SetMode struct{ Mode *domain.OverrideMode }

// BeginSave moves Editable → Saving. Rejected without a selected mode.
type BeginSave struct{}

// SaveOK re-initializes from the confirmed server record.
type SaveOK struct {
	Mode    *domain.OverrideMode
	Entries []*domain.AccessEntry
}

// SaveFailed returns to Editable with the staged sets untouched.
type SaveFailed struct{}

// BeginRemove moves Editable → Removing (after the caller's confirm dialog).
type BeginRemove struct{}

// RemoveOK resets everything to role-defaults-only.
type RemoveOK struct{}

// RemoveFailed returns to Editable with the staged sets untouched.
type RemoveFailed struct{}

// Close collapses the panel.
type Close struct{}

func (Open) isAction()         {}
func (Loaded) isAction()       {}
func (LoadFailed) isAction()   {}
func (ToggleGrant) isAction()  {}
func (ToggleRevoke) isAction() {}
func (ToggleCustom) isAction() {}
func (SetMode) isAction()      {}
func (BeginSave) isAction()    {}
func (SaveOK) isAction()       {}
func (SaveFailed) isAction()   {}
func (BeginRemove) isAction()  {}
func (RemoveOK) isAction()     {}
func (RemoveFailed) isAction() {}
func (Close) isAction()        {}

func cloneSet(s domain.AreaSet) domain.AreaSet {
	out := make(domain.AreaSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func (s State) clone() State {
	s.Grants = cloneSet(s.Grants)
	s.Revokes = cloneSet(s.Revokes)
	s.Custom = cloneSet(s.Custom)
	return s
}

func toggle(s domain.AreaSet, code string) {
	if s.Has(code) {
		delete(s, code)
	} else {
		s[code] = struct{}{}
	}
}

// Reduce applies one action. Unknown or out-of-phase actions are no-ops
// except BeginSave without a mode, which is the one client-side validation
// failure the editor surfaces.
func Reduce(s State, a Action) (State, error) {
	next := s.clone()

	switch act := a.(type) {
	case Open:
		if s.Phase == PhaseClosed {
			next.Phase = PhaseLoading
		}

	case Loaded:
		if s.Phase != PhaseLoading {
			return s, nil
		}
		next.Phase = PhaseEditable
		next.Mode = act.Mode
		next.Grants = domain.NewAreaSet()
		next.Revokes = domain.NewAreaSet()
		next.Custom = domain.NewAreaSet()
		for _, e := range act.Entries {
			switch {
			case act.Mode != nil && *act.Mode == domain.OverrideModeCustom && e.AccessType == domain.AccessGrant:
				next.Custom[e.AreaCode] = struct{}{}
			case e.AccessType == domain.AccessGrant:
				next.Grants[e.AreaCode] = struct{}{}
			case e.AccessType == domain.AccessRevoke:
				next.Revokes[e.AreaCode] = struct{}{}
			}
		}

	case LoadFailed:
		// stay in Loading; retry is manual

	case ToggleGrant:
		if s.Phase != PhaseEditable {
			return s, ErrNotEditable
		}
		toggle(next.Grants, act.Code)
		// granting an area clears any staged revoke for it
		delete(next.Revokes, act.Code)

	case ToggleRevoke:
		if s.Phase != PhaseEditable {
			return s, ErrNotEditable
		}
		toggle(next.Revokes, act.Code)
		delete(next.Grants, act.Code)

	case ToggleCustom:
		if s.Phase != PhaseEditable {
			return s, ErrNotEditable
		}
		toggle(next.Custom, act.Code)

	case SetMode:
		if s.Phase != PhaseEditable {
			return s, ErrNotEditable
		}
		next.Mode = act.Mode

	case BeginSave:
		if s.Phase != PhaseEditable {
			return s, ErrNotEditable
		}
		if s.Mode == nil {
			return s, ErrModeNotSelected
		}
		next.Phase = PhaseSaving

	case SaveOK:
		if s.Phase != PhaseSaving {
			return s, nil
		}
		confirmed, _ := Reduce(State{
			Phase:   PhaseLoading,
			Grants:  domain.NewAreaSet(),
			Revokes: domain.NewAreaSet(),
			Custom:  domain.NewAreaSet(),
		}, Loaded{Mode: act.Mode, Entries: act.Entries})
		return confirmed, nil

	case SaveFailed:
		if s.Phase == PhaseSaving {
			next.Phase = PhaseEditable
		}

	case BeginRemove:
		if s.Phase != PhaseEditable {
			return s, ErrNotEditable
		}
		next.Phase = PhaseRemoving

	case RemoveOK:
		if s.Phase != PhaseRemoving {
			return s, nil
		}
		reset := NewState()
		reset.Phase = PhaseEditable
		return reset, nil

	case RemoveFailed:
		if s.Phase == PhaseRemoving {
			next.Phase = PhaseEditable
		}

	case Close:
		reset := NewState()
		return reset, nil
	}

	return next, nil
}

// Payload builds the save request body from the staged sets. Callers should
// only use it after BeginSave succeeded.
func (s State) Payload() (mode domain.OverrideMode, grants, revokes []string) {
	if s.Mode == nil {
		return "", nil, nil
	}
	mode = *s.Mode
	if mode == domain.OverrideModeCustom {
		for code := range s.Custom {
			grants = append(grants, code)
		}
		return mode, grants, nil
	}
	for code := range s.Grants {
		grants = append(grants, code)
	}
	for code := range s.Revokes {
		revokes = append(revokes, code)
	}
	return mode, grants, revokes
}
