package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

// ProfilePatch carries the user-editable fields. Nil means "leave as is".
// A MiddleName pointing at "" clears it. Role and active state are not here
// on purpose: they have their own admin operations.
type ProfilePatch struct {
	FirstName  *string
	LastName   *string
	MiddleName *string
	BirthDate  *time.Time
	Email      *string
	Password   *string
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, p ProfilePatch) (domain.AccountView, error) {
	audit := s.auditor(ctx, "account.update_profile", id)

	cur, err := s.load(ctx, id)
	if err != nil {
		audit("error", err)
		return domain.AccountView{}, err
	}

	changes, err := s.buildChanges(ctx, cur, p)
	if err != nil {
		audit("error", err)
		return domain.AccountView{}, err
	}
	if changes.Empty() {
		return cur.View(), nil
	}

	updated, err := s.update(ctx, id, changes)
	if err != nil {
		audit("error", err)
		return domain.AccountView{}, err
	}

	s.publish(ctx, domain.EventAccountProfileUpdated, updated)
	if changes.PasswordHash != nil {
		s.publish(ctx, domain.EventAccountPasswordChanged, updated)
	}
	audit("success", nil)
	return updated.View(), nil
}

// buildChanges validates the merged profile and keeps only real changes.
func (s *Service) buildChanges(ctx context.Context, cur domain.Account, p ProfilePatch) (domain.AccountChanges, error) {
	var c domain.AccountChanges

	merged := domain.Profile{
		FirstName:  cur.FirstName,
		LastName:   cur.LastName,
		MiddleName: cur.MiddleName,
		BirthDate:  cur.BirthDate,
		Email:      cur.Email,
	}

	if p.FirstName != nil {
		v := strings.TrimSpace(*p.FirstName)
		merged.FirstName = v
		if v != cur.FirstName {
			c.FirstName = &v
		}
	}
	if p.LastName != nil {
		v := strings.TrimSpace(*p.LastName)
		merged.LastName = v
		if v != cur.LastName {
			c.LastName = &v
		}
	}
	if p.MiddleName != nil {
		var v *string
		if t := strings.TrimSpace(*p.MiddleName); t != "" {
			v = &t
		}
		merged.MiddleName = v
		if !sameOptional(v, cur.MiddleName) {
			c.MiddleName = &v
		}
	}
	if p.BirthDate != nil {
		v := *p.BirthDate
		merged.BirthDate = v
		if !v.Equal(cur.BirthDate) {
			c.BirthDate = &v
		}
	}
	if p.Email != nil {
		v := domain.NormalizeEmail(*p.Email)
		merged.Email = v
		if v != cur.Email {
			c.Email = &v
		}
	}

	if err := domain.ValidateProfile(merged, s.now()); err != nil {
		return domain.AccountChanges{}, err
	}

	if c.Email != nil {
		other, err := s.accounts.FindByEmail(ctx, *c.Email)
		switch {
		case err == nil && other.ID != cur.ID:
			return domain.AccountChanges{}, domain.ErrEmailAlreadyExists()
		case err != nil && !domain.Is(err, domain.CodeNotFound):
			return domain.AccountChanges{}, domain.Internalize(err)
		}
	}

	if p.Password != nil {
		hash, err := s.hashNew(*p.Password)
		if err != nil {
			return domain.AccountChanges{}, err
		}
		c.PasswordHash = &hash
	}

	return c, nil
}

func sameOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
