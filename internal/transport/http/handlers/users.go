package http_handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/access"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/accounts"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/transport/http/response"
)

// UserHandler serves /users. Admin-only routes are guarded by the router;
// owner-or-admin routes are checked here against the path id.
type UserHandler struct {
	accounts *accounts.Service
	auth     *auth.Service
}

func NewUserHandler(accountsSvc *accounts.Service, authSvc *auth.Service) *UserHandler {
	return &UserHandler{accounts: accountsSvc, auth: authSvc}
}

func userLocation(id int64) string {
	return "/api/v1/users/" + strconv.FormatInt(id, 10)
}

// List handles GET /users?page&limit&role&isActive.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := dto.ParseListQuery(r.URL.Query())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.accounts.List(r.Context(), q)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewUserList(res))
}

// Create handles POST /users: an admin creates an account with any role.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	var req dto.CreateAccountRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	v, err := h.auth.CreatePrivileged(r.Context(), p.Claims(), req.Input(), domain.Role(req.Role))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.Created(w, userLocation(v.ID), dto.NewUserView(v))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ownedTarget(w, r)
	if !ok {
		return
	}

	v, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewUserView(v))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ownedTarget(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	v, err := h.accounts.UpdateProfile(r.Context(), id, req.Patch())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewUserView(v))
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ownedTarget(w, r)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.StatusResponse{Status: "ok"})
}

// Block handles PATCH /users/{id}/block with {"isActive": bool}.
func (h *UserHandler) Block(w http.ResponseWriter, r *http.Request) {
	id, err := dto.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	var req dto.BlockRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	v, err := h.accounts.ToggleBlock(r.Context(), id, *req.IsActive)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewUserView(v))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := dto.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.accounts.Delete(r.Context(), id); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}

// ownedTarget parses {id} and enforces owner-or-admin. On failure the error
// response is already written.
func (h *UserHandler) ownedTarget(w http.ResponseWriter, r *http.Request) (int64, bool) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return 0, false
	}

	id, err := dto.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)
		return 0, false
	}

	if err := access.RequireOwnershipOrAdmin(p, id); err != nil {
		response.WriteError(w, r, err)
		return 0, false
	}
	return id, true
}
