package hrest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"area-access-service/internal/domain"
	hrest "area-access-service/internal/handler/rest"
	"area-access-service/internal/router"
	"area-access-service/internal/usecase"
	"area-access-service/pkg/auth/jwtutil"
	"area-access-service/pkg/auth/middleware"
	"area-access-service/pkg/id"
	"area-access-service/pkg/xerrors"
)

var testSecret = []byte("test-secret")

// fakeRepo backs the full HTTP stack in these tests.
type fakeRepo struct {
	areas     []*domain.Area
	defaults  map[string][]string
	roles     map[string]string
	overrides map[string]*domain.UserAreaOverride
	audits    []*domain.AccessAudit
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		areas: []*domain.Area{
			{ID: 1, Code: "sales", Name: "Sales", DisplayOrder: 1, IsActive: true},
			{ID: 2, Code: "marketing", Name: "Marketing", DisplayOrder: 2, IsActive: true},
			{ID: 3, Code: "finance", Name: "Finance", DisplayOrder: 3, IsActive: true},
			{ID: 4, Code: "ai_automation", Name: "AI Automation", DisplayOrder: 4, IsActive: true},
		},
		defaults: map[string][]string{
			"manager": {"sales", "marketing"},
		},
		roles:     map[string]string{},
		overrides: map[string]*domain.UserAreaOverride{},
	}
}

func (f *fakeRepo) CreateAreas(ctx context.Context, areas []*domain.Area) ([]*domain.Area, []*xerrors.RepoError, error) {
	f.areas = append(f.areas, areas...)
	return areas, nil, nil
}

func (f *fakeRepo) UpdateArea(ctx context.Context, area *domain.Area) error {
	for i, a := range f.areas {
		if a.ID == area.ID {
			f.areas[i] = area
			return nil
		}
	}
	return xerrors.ErrNotFound
}

func (f *fakeRepo) GetAreaByCode(ctx context.Context, code string) (*domain.Area, error) {
	for _, a := range f.areas {
		if a.Code == code {
			return a, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeRepo) ListAreas(ctx context.Context) ([]*domain.Area, error) {
	out := make([]*domain.Area, 0, len(f.areas))
	for _, a := range f.areas {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) SeedRoleDefaults(ctx context.Context, defaults []*domain.RoleDefaultArea) ([]*xerrors.RepoError, error) {
	return nil, nil
}

func (f *fakeRepo) GetRoleDefaultCodes(ctx context.Context, role string) ([]string, error) {
	return f.defaults[role], nil
}

func (f *fakeRepo) ListRoleDefaults(ctx context.Context) ([]*domain.RoleDefaultArea, error) {
	var out []*domain.RoleDefaultArea
	for role, codes := range f.defaults {
		for _, c := range codes {
			out = append(out, &domain.RoleDefaultArea{Role: role, AreaCode: c})
		}
	}
	return out, nil
}

func (f *fakeRepo) AssignUserRole(ctx context.Context, ur *domain.UserRole) (*domain.UserRole, error) {
	f.roles[ur.UserID] = ur.Role
	return ur, nil
}

func (f *fakeRepo) GetUserRole(ctx context.Context, userID string) (string, error) {
	role, ok := f.roles[userID]
	if !ok {
		return "", xerrors.ErrUserRoleNotFound
	}
	return role, nil
}

func (f *fakeRepo) GetUserOverride(ctx context.Context, userID string) (*domain.UserAreaOverride, error) {
	o, ok := f.overrides[userID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return o, nil
}

func (f *fakeRepo) ReplaceUserOverride(ctx context.Context, override *domain.UserAreaOverride) (*domain.UserAreaOverride, error) {
	f.overrides[override.UserID] = override
	return override, nil
}

func (f *fakeRepo) DeleteUserOverride(ctx context.Context, userID string) error {
	delete(f.overrides, userID)
	return nil
}

func (f *fakeRepo) LogAccessEvent(ctx context.Context, audit *domain.AccessAudit) error {
	f.audits = append(f.audits, audit)
	return nil
}

func (f *fakeRepo) ListAuditEvents(ctx context.Context, filter map[string]interface{}) ([]*domain.AccessAudit, error) {
	if ref, ok := filter["object_ref"]; ok {
		var out []*domain.AccessAudit
		for _, a := range f.audits {
			if a.ObjectRef == ref {
				out = append(out, a)
			}
		}
		return out, nil
	}
	return f.audits, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeRepo) {
	t.Helper()

	repo := newFakeRepo()
	sf, err := id.NewSnowflake(1)
	require.NoError(t, err)

	uc := usecase.NewAreaAccessUsecase(repo, sf, nil)
	h := hrest.NewAreaAccessHandler(uc, zap.NewNop())
	auth := middleware.NewAuthMiddleware(jwtutil.NewVerifier(testSecret, "", ""))

	r := chi.NewRouter()
	router.SetupRoutes(r, h, auth, nil)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, repo
}

func mintToken(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := jwtutil.Sign(testSecret, &jwtutil.Claims{
		UserID:   userID,
		Role:     role,
		UserType: "admin",
	}, time.Hour)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, srv.URL+path, buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

type accessData struct {
	UserID         string                  `json:"user_id"`
	Role           string                  `json:"role"`
	OverrideMode   *string                 `json:"override_mode"`
	EffectiveAreas []*domain.EffectiveArea `json:"effective_areas"`
	AccessEntries  []*domain.AccessEntry   `json:"access_entries"`
}

func decodeAccess(t *testing.T, raw []byte) *accessData {
	t.Helper()
	var env struct {
		Status string     `json:"status"`
		Data   accessData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	require.Equal(t, "success", env.Status)
	return &env.Data
}

func TestEndpointsRejectMissingToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doRequest(t, srv, http.MethodGet, "/areas", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEndpointsRejectGarbageToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doRequest(t, srv, http.MethodGet, "/areas", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListAreasAnySignedInUser(t *testing.T) {
	srv, _ := newTestServer(t)
	token := mintToken(t, "1002", "manager")

	resp, raw := doRequest(t, srv, http.MethodGet, "/areas", token, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var env struct {
		Data struct {
			Areas []*domain.Area `json:"areas"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Len(t, env.Data.Areas, 4)
}

func TestGetMyAreasUsesTokenIdentity(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.roles["1002"] = "manager"
	token := mintToken(t, "1002", "manager")

	resp, raw := doRequest(t, srv, http.MethodGet, "/users/me/areas", token, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	access := decodeAccess(t, raw)
	assert.Equal(t, "1002", access.UserID)
	assert.Equal(t, "manager", access.Role)
	require.Len(t, access.EffectiveAreas, 2)
	assert.Equal(t, "sales", access.EffectiveAreas[0].AreaCode)
}

func TestAdminEndpointsHiddenFromNonSuperAdmins(t *testing.T) {
	srv, _ := newTestServer(t)
	token := mintToken(t, "1002", "manager")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/users/1003/areas"},
		{http.MethodPut, "/users/1003/areas"},
		{http.MethodDelete, "/users/1003/areas"},
		{http.MethodPost, "/users/1003/role"},
		{http.MethodGet, "/role-defaults"},
		{http.MethodGet, "/audit/events"},
		{http.MethodPost, "/areas"},
	} {
		resp, _ := doRequest(t, srv, tc.method, tc.path, token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func TestGetUserAreasAsSuperAdmin(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.roles["1003"] = "manager"
	token := mintToken(t, "9001", "super_admin")

	resp, raw := doRequest(t, srv, http.MethodGet, "/users/1003/areas", token, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	access := decodeAccess(t, raw)
	assert.Equal(t, "1003", access.UserID)
	assert.Nil(t, access.OverrideMode)
	require.Len(t, access.EffectiveAreas, 2)
}

func TestSaveThenGetReflectsOverride(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.roles["1003"] = "manager"
	token := mintToken(t, "9001", "super_admin")

	resp, _ := doRequest(t, srv, http.MethodPut, "/users/1003/areas", token, map[string]interface{}{
		"override_mode": "tweak",
		"grants":        []string{"finance"},
		"revokes":       []string{"marketing"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, raw := doRequest(t, srv, http.MethodGet, "/users/1003/areas", token, nil)
	access := decodeAccess(t, raw)

	require.NotNil(t, access.OverrideMode)
	assert.Equal(t, "tweak", *access.OverrideMode)
	got := make([]string, 0, len(access.EffectiveAreas))
	for _, a := range access.EffectiveAreas {
		got = append(got, a.AreaCode)
	}
	assert.Equal(t, []string{"sales", "finance"}, got)
}

func TestSaveRejectsBadPayloads(t *testing.T) {
	srv, _ := newTestServer(t)
	token := mintToken(t, "9001", "super_admin")

	for name, body := range map[string]map[string]interface{}{
		"missing mode":   {"grants": []string{"sales"}},
		"unknown mode":   {"override_mode": "hybrid"},
		"unknown code":   {"override_mode": "tweak", "grants": []string{"nope"}},
		"conflict":       {"override_mode": "tweak", "grants": []string{"sales"}, "revokes": []string{"sales"}},
		"custom revokes": {"override_mode": "custom", "revokes": []string{"sales"}},
	} {
		resp, raw := doRequest(t, srv, http.MethodPut, "/users/1003/areas", token, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)

		var env struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(raw, &env))
		assert.Equal(t, "error", env.Status, name)
	}
}

func TestDeleteOverridesIsIdempotent(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.roles["1003"] = "manager"
	token := mintToken(t, "9001", "super_admin")

	resp, _ := doRequest(t, srv, http.MethodPut, "/users/1003/areas", token, map[string]interface{}{
		"override_mode": "custom",
		"grants":        []string{"ai_automation"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, srv, http.MethodDelete, "/users/1003/areas", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// deleting again still succeeds
	resp, _ = doRequest(t, srv, http.MethodDelete, "/users/1003/areas", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, raw := doRequest(t, srv, http.MethodGet, "/users/1003/areas", token, nil)
	access := decodeAccess(t, raw)
	assert.Nil(t, access.OverrideMode)
	require.Len(t, access.EffectiveAreas, 2)
}

func TestAssignRole(t *testing.T) {
	srv, _ := newTestServer(t)
	token := mintToken(t, "9001", "super_admin")

	resp, _ := doRequest(t, srv, http.MethodPost, "/users/1004/role", token, map[string]string{
		"role": "manager",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, raw := doRequest(t, srv, http.MethodGet, "/users/1004/areas", token, nil)
	access := decodeAccess(t, raw)
	assert.Equal(t, "manager", access.Role)
	assert.Len(t, access.EffectiveAreas, 2)

	resp, _ = doRequest(t, srv, http.MethodPost, "/users/1004/role", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateAreas(t *testing.T) {
	srv, _ := newTestServer(t)
	token := mintToken(t, "9001", "super_admin")

	resp, _ := doRequest(t, srv, http.MethodPost, "/areas", token, map[string]interface{}{
		"areas": []map[string]interface{}{
			{"code": "legal", "name": "Legal", "display_order": 7},
		},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doRequest(t, srv, http.MethodPost, "/areas", token, map[string]interface{}{
		"areas": []map[string]interface{}{{"code": "", "name": ""}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRetireAreaDropsItEverywhere(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.roles["1003"] = "manager"
	token := mintToken(t, "9001", "super_admin")

	resp, raw := doRequest(t, srv, http.MethodPatch, "/areas/2", token, map[string]interface{}{
		"is_active": false,
	})
	// path param is the code, not the numeric ID
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw = doRequest(t, srv, http.MethodPatch, "/areas/marketing", token, map[string]interface{}{
		"is_active": false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env struct {
		Data domain.Area `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.False(t, env.Data.IsActive)

	_, raw = doRequest(t, srv, http.MethodGet, "/users/1003/areas", token, nil)
	access := decodeAccess(t, raw)
	got := make([]string, 0, len(access.EffectiveAreas))
	for _, a := range access.EffectiveAreas {
		got = append(got, a.AreaCode)
	}
	assert.Equal(t, []string{"sales"}, got)
}

func TestAuditTrailRecordsMutations(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.roles["1003"] = "manager"
	token := mintToken(t, "9001", "super_admin")

	doRequest(t, srv, http.MethodPut, "/users/1003/areas", token, map[string]interface{}{
		"override_mode": "tweak",
		"grants":        []string{"finance"},
	})
	doRequest(t, srv, http.MethodDelete, "/users/1003/areas", token, nil)

	resp, raw := doRequest(t, srv, http.MethodGet, "/audit/events?object_ref=1003", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env struct {
		Data struct {
			Events []*domain.AccessAudit `json:"events"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	require.Len(t, env.Data.Events, 2)
	assert.Equal(t, "replace", env.Data.Events[0].Action)
	assert.Equal(t, "delete", env.Data.Events[1].Action)
	assert.Equal(t, int64(9001), env.Data.Events[0].ActorID)
}
