package domain

import "time"

type EventType string

const (
	EventAccountRegistered      EventType = "account.registered"
	EventAccountProfileUpdated  EventType = "account.profile_updated"
	EventAccountPasswordChanged EventType = "account.password_changed"
	EventAccountBlocked         EventType = "account.blocked"
	EventAccountUnblocked       EventType = "account.unblocked"
	EventAccountDeleted         EventType = "account.deleted"
)

// AccountEvent is published after an account mutation has been persisted.
type AccountEvent struct {
	Type       EventType `json:"-"`
	AccountID  int64     `json:"account_id"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewAccountEvent(t EventType, a Account, at time.Time) AccountEvent {
	return AccountEvent{
		Type:       t,
		AccountID:  a.ID,
		Email:      a.Email,
		Role:       a.Role,
		OccurredAt: at.UTC(),
	}
}
