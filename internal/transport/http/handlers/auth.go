package http_handlers

import (
	"net/http"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/access"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/metrics"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/transport/http/response"
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register handles POST /auth/register. The role is always user.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Register(r.Context(), req.Input())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Int64("account_id", res.Account.ID).
		Msg("account_registered")

	response.Created(w, userLocation(res.Account.ID), dto.NewAuthData(res))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	metrics.LoginAttempt(outcome(err))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Int64("account_id", res.Account.ID).
		Msg("account_logged_in")

	response.OK(w, dto.NewAuthData(res))
}

// Refresh handles POST /auth/refresh with the old token in the
// Authorization header; it may already be expired.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw, err := access.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		metrics.TokenRefresh(outcome(err))
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Refresh(r.Context(), raw)
	metrics.TokenRefresh(outcome(err))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.NewAuthData(res))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := access.PrincipalFrom(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	v, err := h.svc.Me(r.Context(), p.AccountID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewUserView(v))
}

// outcome is the metrics label for a service result.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	if code := domain.Code(err); code != "" {
		return code
	}
	return "error"
}
