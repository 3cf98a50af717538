package dto

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/accounts"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

// -------- Core auth --------

type RegisterRequest struct {
	Email      string  `json:"email" validate:"required,email,max=254"`
	Password   string  `json:"password" validate:"required"`
	FirstName  string  `json:"firstName" validate:"required,max=50"`
	LastName   string  `json:"lastName" validate:"required,max=50"`
	MiddleName *string `json:"middleName,omitempty" validate:"omitempty,max=50"`
	BirthDate  string  `json:"birthDate" validate:"required,isodate"`
}

func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	trimPtr(r.MiddleName)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
	return validateStruct(r)
}

// Input converts a validated request. Validate must have passed.
func (r *RegisterRequest) Input() auth.RegisterInput {
	bd, _ := time.Parse(domain.DateLayout, r.BirthDate)
	return auth.RegisterInput{
		Email:      r.Email,
		Password:   r.Password,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		MiddleName: r.MiddleName,
		BirthDate:  bd,
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateStruct(r)
}

// -------- Admin --------

type CreateAccountRequest struct {
	RegisterRequest
	Role string `json:"role" validate:"required,oneof=user admin"`
}

func (r *CreateAccountRequest) Validate() error {
	if err := r.RegisterRequest.Validate(); err != nil {
		return err
	}
	r.Role = strings.TrimSpace(r.Role)
	return validateStruct(r)
}

type BlockRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

func (r *BlockRequest) Validate() error {
	return validateStruct(r)
}

// -------- Account management --------

// UpdateProfileRequest is a partial update: absent fields stay as they are.
// An empty middleName clears it.
type UpdateProfileRequest struct {
	FirstName  *string `json:"firstName,omitempty" validate:"omitempty,max=50"`
	LastName   *string `json:"lastName,omitempty" validate:"omitempty,max=50"`
	MiddleName *string `json:"middleName,omitempty" validate:"omitempty,max=50"`
	BirthDate  *string `json:"birthDate,omitempty" validate:"omitempty,isodate"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Password   *string `json:"password,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	trimPtr(r.FirstName)
	trimPtr(r.LastName)
	trimPtr(r.MiddleName)
	trimPtr(r.BirthDate)
	trimPtr(r.Email)
	if r.FirstName != nil && *r.FirstName == "" {
		return domain.ErrMissingField("firstName")
	}
	if r.LastName != nil && *r.LastName == "" {
		return domain.ErrMissingField("lastName")
	}
	if r.BirthDate != nil && *r.BirthDate == "" {
		return domain.ErrMissingField("birthDate")
	}
	if r.Email != nil && *r.Email == "" {
		return domain.ErrMissingField("email")
	}
	if r.Password != nil && *r.Password == "" {
		return domain.ErrMissingField("password")
	}
	return validateStruct(r)
}

// Patch converts a validated request. Validate must have passed.
func (r *UpdateProfileRequest) Patch() accounts.ProfilePatch {
	p := accounts.ProfilePatch{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		MiddleName: r.MiddleName,
		Email:      r.Email,
		Password:   r.Password,
	}
	if r.BirthDate != nil {
		bd, _ := time.Parse(domain.DateLayout, *r.BirthDate)
		p.BirthDate = &bd
	}
	return p
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

func (r *ChangePasswordRequest) Validate() error {
	return validateStruct(r)
}

// -------- Query params --------

// ParseListQuery reads ?page&limit&role&isActive. Absent values take the
// service defaults; malformed ones are rejected.
func ParseListQuery(v url.Values) (accounts.ListQuery, error) {
	var q accounts.ListQuery

	if s := strings.TrimSpace(v.Get("page")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return q, domain.ErrInvalidField("page", "must be a positive integer")
		}
		if n > accounts.MaxPage {
			return q, domain.ErrInvalidField("page", "must not exceed 1000000")
		}
		q.Page = n
	}
	if s := strings.TrimSpace(v.Get("limit")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return q, domain.ErrInvalidField("limit", "must be a positive integer")
		}
		q.Limit = n
	}
	if s := strings.TrimSpace(v.Get("role")); s != "" {
		if !domain.IsValidRole(s) {
			return q, domain.ErrInvalidField("role", "unknown role")
		}
		role := domain.Role(s)
		q.Role = &role
	}
	if s := strings.TrimSpace(v.Get("isActive")); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return q, domain.ErrInvalidField("isActive", "must be true or false")
		}
		q.IsActive = &b
	}
	return q, nil
}

// ParseID reads a positive account id path parameter.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidField("id", "must be a positive integer")
	}
	return id, nil
}
