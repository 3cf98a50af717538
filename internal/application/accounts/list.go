package accounts

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit well inside int and Postgres OFFSET range.
	MaxPage = 1_000_000
)

type ListQuery struct {
	Page     int
	Limit    int
	Role     *domain.Role
	IsActive *bool
}

type ListResult struct {
	Items      []domain.AccountView
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// normalize clamps page and limit into their valid ranges.
func (q ListQuery) normalize() ListQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

// List returns accounts newest first.
func (s *Service) List(ctx context.Context, q ListQuery) (ListResult, error) {
	q = q.normalize()

	if q.Page > MaxPage {
		return ListResult{}, domain.ErrInvalidField("page", "must not exceed 1000000")
	}

	if q.Role != nil && !domain.IsValidRole(string(*q.Role)) {
		return ListResult{}, domain.ErrInvalidField("role", "unknown role")
	}

	items, total, err := s.accounts.FindAndCount(ctx,
		domain.AccountFilter{Role: q.Role, IsActive: q.IsActive},
		domain.Page{Limit: q.Limit, Offset: (q.Page - 1) * q.Limit},
	)
	if err != nil {
		return ListResult{}, domain.Internalize(err)
	}

	views := make([]domain.AccountView, 0, len(items))
	for _, a := range items {
		views = append(views, a.View())
	}

	return ListResult{
		Items:      views,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: (total + q.Limit - 1) / q.Limit,
	}, nil
}
