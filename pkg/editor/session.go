package editor

import (
	"context"
	"errors"

	"area-access-service/internal/domain"
	"area-access-service/pkg/areaclient"
)

var (
	// ErrNotAuthorized means the caller may not construct the editor at all.
	ErrNotAuthorized = errors.New("override editor requires super admin")

	// ErrConfirmationRequired guards override removal behind an explicit
	// confirmation from the admin.
	ErrConfirmationRequired = errors.New("override removal requires confirmation")
)

// AuthorizationContext is the capability check injected at construction.
// Non-privileged callers never get a session: for them the editor is absent,
// not disabled.
type AuthorizationContext interface {
	IsSuperAdmin() bool
}

// Backend is what the session needs from the area access service.
// *areaclient.Client satisfies it.
type Backend interface {
	LoadData(ctx context.Context, userID string) (*areaclient.LoadResult, error)
	SaveOverride(ctx context.Context, userID string, mode domain.OverrideMode, grants, revokes []string) (*domain.UserAreaOverride, error)
	RemoveOverrides(ctx context.Context, userID string) error
}

// Session drives one editor panel for one target user. Not safe for
// concurrent use: it mirrors a single UI event loop.
type Session struct {
	backend  Backend
	userID   string
	onUpdate func()

	state   State
	catalog []*domain.Area
}

func NewSession(authz AuthorizationContext, backend Backend, userID string, onUpdate func()) (*Session, error) {
	if authz == nil || !authz.IsSuperAdmin() {
		return nil, ErrNotAuthorized
	}
	return &Session{
		backend:  backend,
		userID:   userID,
		onUpdate: onUpdate,
		state:    NewState(),
	}, nil
}

func (s *Session) State() State            { return s.state }
func (s *Session) Catalog() []*domain.Area { return s.catalog }

// Open expands the panel and loads catalog + override record. On failure the
// panel stays in Loading and Open may be called again (manual retry, no
// automatic one).
func (s *Session) Open(ctx context.Context) error {
	s.state, _ = Reduce(s.state, Open{})

	res, err := s.backend.LoadData(ctx, s.userID)
	if err != nil {
		s.state, _ = Reduce(s.state, LoadFailed{})
		return err
	}

	s.catalog = res.Catalog
	s.state, _ = Reduce(s.state, Loaded{
		Mode:    res.Access.OverrideMode,
		Entries: res.Access.AccessEntries,
	})
	return nil
}

func (s *Session) ToggleGrant(code string) error {
	var err error
	s.state, err = Reduce(s.state, ToggleGrant{Code: code})
	return err
}

func (s *Session) ToggleRevoke(code string) error {
	var err error
	s.state, err = Reduce(s.state, ToggleRevoke{Code: code})
	return err
}

func (s *Session) ToggleCustom(code string) error {
	var err error
	s.state, err = Reduce(s.state, ToggleCustom{Code: code})
	return err
}

func (s *Session) SetMode(mode *domain.OverrideMode) error {
	var err error
	s.state, err = Reduce(s.state, SetMode{Mode: mode})
	return err
}

// Save submits the staged record as a full replace, then re-fetches to
// confirm the persisted state. Any failure leaves the staged sets exactly as
// they were so the admin can retry without re-entering input.
func (s *Session) Save(ctx context.Context) error {
	var err error
	s.state, err = Reduce(s.state, BeginSave{})
	if err != nil {
		return err
	}

	mode, grants, revokes := s.state.Payload()
	if _, err := s.backend.SaveOverride(ctx, s.userID, mode, grants, revokes); err != nil {
		s.state, _ = Reduce(s.state, SaveFailed{})
		return err
	}

	res, err := s.backend.LoadData(ctx, s.userID)
	if err != nil {
		// save landed, confirmation fetch did not; keep staged state
		s.state, _ = Reduce(s.state, SaveFailed{})
		return err
	}
	s.catalog = res.Catalog
	s.state, _ = Reduce(s.state, SaveOK{
		Mode:    res.Access.OverrideMode,
		Entries: res.Access.AccessEntries,
	})

	if s.onUpdate != nil {
		s.onUpdate()
	}
	return nil
}

// Remove deletes the user's override record. confirmed is the result of the
// caller's confirmation dialog; without it nothing happens.
func (s *Session) Remove(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}

	var err error
	s.state, err = Reduce(s.state, BeginRemove{})
	if err != nil {
		return err
	}

	if err := s.backend.RemoveOverrides(ctx, s.userID); err != nil {
		s.state, _ = Reduce(s.state, RemoveFailed{})
		return err
	}

	s.state, _ = Reduce(s.state, RemoveOK{})

	if s.onUpdate != nil {
		s.onUpdate()
	}
	return nil
}

// Close collapses the panel and drops all staged state.
func (s *Session) Close() {
	s.state, _ = Reduce(s.state, Close{})
	s.catalog = nil
}
