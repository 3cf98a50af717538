package auth

import (
	"context"
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

type RegisterInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	MiddleName *string
	BirthDate  time.Time
}

// Register creates a self-service account. The role is always user and the
// account starts active; callers cannot choose either.
func (s *Service) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	audit := s.auditor(ctx, "auth.register", map[string]string{"email": domain.NormalizeEmail(in.Email)})

	created, err := s.createAccount(ctx, in, domain.RoleUser)
	if err != nil {
		audit("error", err, nil)
		return AuthResult{}, err
	}

	res, err := s.issue(created)
	if err != nil {
		audit("error", err, map[string]string{"account_id": idString(created.ID)})
		return AuthResult{}, err
	}

	audit("success", nil, map[string]string{"account_id": idString(created.ID)})
	return res, nil
}

// createAccount runs every registration check, in order, then persists.
func (s *Service) createAccount(ctx context.Context, in RegisterInput, role domain.Role) (domain.Account, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		return domain.Account{}, domain.ErrMissingField("email")
	}

	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return domain.Account{}, domain.ErrEmailAlreadyExists()
	} else if !domain.Is(err, domain.CodeNotFound) {
		return domain.Account{}, domain.Internalize(err)
	}

	if v := s.policy.Violations(in.Password); len(v) > 0 {
		return domain.Account{}, domain.ErrWeakPassword(v)
	}

	middle := trimOptional(in.MiddleName)
	profile := domain.Profile{
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		MiddleName: middle,
		BirthDate:  in.BirthDate,
		Email:      email,
	}
	if err := domain.ValidateProfile(profile, s.now()); err != nil {
		return domain.Account{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.Account{}, domain.Internalize(err)
	}

	created, err := s.accounts.Create(ctx, domain.Account{
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		MiddleName:   middle,
		BirthDate:    profile.BirthDate,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	})
	if err != nil {
		return domain.Account{}, domain.Internalize(err)
	}

	s.publish(ctx, domain.EventAccountRegistered, created)
	return created, nil
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
