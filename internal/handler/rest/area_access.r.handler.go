package hrest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"area-access-service/internal/domain"
	"area-access-service/internal/usecase"
	"area-access-service/pkg/auth/middleware"
	"area-access-service/pkg/response"
	"area-access-service/pkg/xerrors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AreaAccessHandler struct {
	uc     *usecase.AreaAccessUsecase
	logger *zap.Logger
}

// NewAreaAccessHandler initializes a new AreaAccessHandler
func NewAreaAccessHandler(uc *usecase.AreaAccessUsecase, logger *zap.Logger) *AreaAccessHandler {
	return &AreaAccessHandler{
		uc:     uc,
		logger: logger,
	}
}

// actorID pulls the authenticated admin's numeric ID from context. Tokens
// carry user IDs as decimal strings.
func actorID(r *http.Request) int64 {
	uid, ok := middleware.GetUserID(r.Context())
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(uid, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (h *AreaAccessHandler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, xerrors.ErrModeRequired),
		errors.Is(err, xerrors.ErrUnknownOverrideMode),
		errors.Is(err, xerrors.ErrUnknownAreaCode),
		errors.Is(err, xerrors.ErrGrantRevokeConflict),
		errors.Is(err, xerrors.ErrRevokesNotAllowed),
		errors.Is(err, xerrors.ErrRoleRequired),
		errors.Is(err, xerrors.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, xerrors.ErrNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("area access request failed", zap.String("op", op), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

// ---------------- AREAS ----------------

// HandleListAreas handles GET /areas
func (h *AreaAccessHandler) HandleListAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.uc.ListAreas(r.Context())
	if err != nil {
		h.writeError(w, "list_areas", err)
		return
	}
	if areas == nil {
		areas = []*domain.Area{}
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"areas": areas,
	})
}

type createAreasRequest struct {
	Areas []struct {
		Code         string  `json:"code"`
		Name         string  `json:"name"`
		Description  *string `json:"description,omitempty"`
		DisplayOrder int     `json:"display_order"`
	} `json:"areas"`
}

// HandleCreateAreas handles POST /areas (super-admin catalog seeding)
func (h *AreaAccessHandler) HandleCreateAreas(w http.ResponseWriter, r *http.Request) {
	var req createAreasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Areas) == 0 {
		response.Error(w, http.StatusBadRequest, "no areas provided")
		return
	}

	actor := actorID(r)
	areas := make([]*domain.Area, 0, len(req.Areas))
	for _, a := range req.Areas {
		if a.Code == "" || a.Name == "" {
			response.Error(w, http.StatusBadRequest, "area code and name are required")
			return
		}
		areas = append(areas, &domain.Area{
			Code:         a.Code,
			Name:         a.Name,
			Description:  a.Description,
			DisplayOrder: a.DisplayOrder,
			IsActive:     true,
			CreatedBy:    actor,
		})
	}

	created, repoErrs, err := h.uc.CreateAreas(r.Context(), areas)
	if err != nil {
		h.writeError(w, "create_areas", err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"areas":  created,
		"errors": repoErrs,
	})
}

type updateAreaRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

// HandleUpdateArea handles PATCH /areas/{code}. Absent fields keep their
// current value; setting is_active=false retires the area everywhere.
func (h *AreaAccessHandler) HandleUpdateArea(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		response.Error(w, http.StatusBadRequest, "missing area code")
		return
	}

	var req updateAreaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	area, err := h.uc.GetAreaByCode(r.Context(), code)
	if err != nil {
		h.writeError(w, "update_area", err)
		return
	}

	if req.Name != nil {
		area.Name = *req.Name
	}
	if req.Description != nil {
		area.Description = req.Description
	}
	if req.DisplayOrder != nil {
		area.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		area.IsActive = *req.IsActive
	}

	actor := actorID(r)
	area.UpdatedBy = &actor

	if err := h.uc.UpdateArea(r.Context(), actor, area); err != nil {
		h.writeError(w, "update_area", err)
		return
	}

	response.JSON(w, http.StatusOK, area)
}

// ---------------- USER AREA ACCESS ----------------

// HandleGetMyAreas handles GET /users/me/areas: the signed-in user's own
// effective areas, used by the app shell to decide what to render.
func (h *AreaAccessHandler) HandleGetMyAreas(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok || userID == "" {
		response.Error(w, http.StatusUnauthorized, "missing or invalid user ID")
		return
	}

	access, err := h.uc.GetUserAccess(r.Context(), userID)
	if err != nil {
		h.writeError(w, "get_my_areas", err)
		return
	}

	response.JSON(w, http.StatusOK, access)
}

// HandleGetUserAreas handles GET /users/{userID}/areas
func (h *AreaAccessHandler) HandleGetUserAreas(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.Error(w, http.StatusBadRequest, "missing user ID")
		return
	}

	access, err := h.uc.GetUserAccess(r.Context(), userID)
	if err != nil {
		h.writeError(w, "get_user_areas", err)
		return
	}

	response.JSON(w, http.StatusOK, access)
}

type saveOverrideRequest struct {
	OverrideMode string   `json:"override_mode"`
	Grants       []string `json:"grants"`
	Revokes      []string `json:"revokes"`
}

// HandleSaveUserAreas handles PUT /users/{userID}/areas. The payload replaces
// the user's override record wholesale.
func (h *AreaAccessHandler) HandleSaveUserAreas(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.Error(w, http.StatusBadRequest, "missing user ID")
		return
	}

	var req saveOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.uc.SaveUserOverride(
		r.Context(),
		actorID(r),
		userID,
		domain.OverrideMode(req.OverrideMode),
		req.Grants,
		req.Revokes,
	)
	if err != nil {
		h.writeError(w, "save_user_areas", err)
		return
	}

	response.JSON(w, http.StatusOK, saved)
}

// HandleRemoveUserAreas handles DELETE /users/{userID}/areas. Idempotent:
// removing overrides that do not exist still succeeds.
func (h *AreaAccessHandler) HandleRemoveUserAreas(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.Error(w, http.StatusBadRequest, "missing user ID")
		return
	}

	if err := h.uc.RemoveUserOverride(r.Context(), actorID(r), userID); err != nil {
		h.writeError(w, "remove_user_areas", err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{
		"status": "overrides removed",
	})
}

// ---------------- USER ROLES ----------------

type assignRoleRequest struct {
	Role string `json:"role"`
}

// HandleAssignUserRole handles POST /users/{userID}/role
func (h *AreaAccessHandler) HandleAssignUserRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.Error(w, http.StatusBadRequest, "missing user ID")
		return
	}

	var req assignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assigned, err := h.uc.AssignUserRole(r.Context(), actorID(r), userID, req.Role)
	if err != nil {
		h.writeError(w, "assign_user_role", err)
		return
	}

	response.JSON(w, http.StatusOK, assigned)
}

// ---------------- ROLE DEFAULTS ----------------

// HandleListRoleDefaults handles GET /role-defaults. Read-only: role default
// sets are not editable through this service.
func (h *AreaAccessHandler) HandleListRoleDefaults(w http.ResponseWriter, r *http.Request) {
	defaults, err := h.uc.ListRoleDefaults(r.Context())
	if err != nil {
		h.writeError(w, "list_role_defaults", err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"role_defaults": defaults,
	})
}

// ---------------- AUDIT ----------------

// HandleListAuditEvents handles GET /audit/events
func (h *AreaAccessHandler) HandleListAuditEvents(w http.ResponseWriter, r *http.Request) {
	filter := map[string]interface{}{}
	if ref := r.URL.Query().Get("object_ref"); ref != "" {
		filter["object_ref"] = ref
	}
	if action := r.URL.Query().Get("action"); action != "" {
		filter["action"] = action
	}

	events, err := h.uc.ListAuditEvents(r.Context(), filter)
	if err != nil {
		h.writeError(w, "list_audit_events", err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
	})
}
