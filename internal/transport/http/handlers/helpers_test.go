package http_handlers

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

	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/access"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/accounts"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/infrastructure/memory"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/infrastructure/security"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/transport/http/response"
)

// -------------------------
// Test wiring (pure unit)
// -------------------------

type testEnv struct {
	repo   *memory.AccountRepo
	jwt    *security.JWTService
	auth   *auth.Service
	accts  *accounts.Service
	authH  *AuthHandler
	usersH *UserHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := memory.NewAccountRepo()
	hasher := security.NewBcryptHasher(4)
	policy := security.DefaultPasswordPolicy()
	jwt := security.NewJWTService("test-secret-0123456789", "user-service", time.Hour)
	pub := memory.NewNoopPublisher()

	authSvc := auth.NewService(repo, hasher, policy, jwt, pub, auth.Config{})
	acctSvc := accounts.NewService(repo, hasher, policy, pub)

	return &testEnv{
		repo:   repo,
		jwt:    jwt,
		auth:   authSvc,
		accts:  acctSvc,
		authH:  NewAuthHandler(authSvc),
		usersH: NewUserHandler(acctSvc, authSvc),
	}
}

func (e *testEnv) seed(t *testing.T, email string, role domain.Role) domain.AccountView {
	t.Helper()
	v, err := e.auth.CreatePrivileged(context.Background(), auth.SystemActor(), auth.RegisterInput{
		Email:     email,
		Password:  "Aa1111",
		FirstName: "Ann",
		LastName:  "Bee",
		BirthDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	}, role)
	if err != nil {
		t.Fatalf("seed %s: %v", email, err)
	}
	return v
}

func (e *testEnv) tokenFor(t *testing.T, v domain.AccountView) string {
	t.Helper()
	tok, err := e.jwt.Issue(domain.IdentityClaims{
		AccountID: v.ID, Email: v.Email, Role: v.Role, IsActive: v.IsActive,
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

// mustJSONBody marshals v to JSON and returns an io.Reader for request body.
func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

// mustReadData decodes the {"data": ...} envelope into out.
func mustReadData(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil || len(env.Data) == 0 {
		t.Fatalf("decode envelope failed; body=%s", rr.Body.String())
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data failed; body=%s err=%v", rr.Body.String(), err)
	}
}

func mustErrCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status=%d want=%d body=%s", rr.Code, status, rr.Body.String())
	}
	var body response.ErrorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error.Code != code {
		t.Fatalf("code=%q want=%q", body.Error.Code, code)
	}
}

// asPrincipal injects the caller the Auth middleware would have resolved.
func asPrincipal(req *http.Request, v domain.AccountView) *http.Request {
	p := access.Principal{AccountID: v.ID, Email: v.Email, Role: v.Role}
	return req.WithContext(access.WithPrincipal(req.Context(), p))
}

// withURLParam injects chi URL param (e.g. /users/{id}) into request context.
func withURLParam(req *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
