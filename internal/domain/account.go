package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format of calendar dates (birth dates).
const DateLayout = "2006-01-02"

// Account is the only persisted entity.
// PasswordHash must never leave the auth/accounts application packages;
// hand callers an AccountView instead.
type Account struct {
	ID           int64
	FirstName    string
	LastName     string
	MiddleName   *string
	BirthDate    time.Time
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountView is the safe projection of an Account: everything but the hash.
type AccountView struct {
	ID         int64
	FirstName  string
	LastName   string
	MiddleName *string
	BirthDate  time.Time
	Email      string
	Role       Role
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (a Account) View() AccountView {
	return AccountView{
		ID:         a.ID,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		MiddleName: a.MiddleName,
		BirthDate:  a.BirthDate,
		Email:      a.Email,
		Role:       a.Role,
		IsActive:   a.IsActive,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// AccountChanges is a partial update; nil fields are left untouched.
// MiddleName uses a double pointer so a patch can clear it (set to nil).
type AccountChanges struct {
	FirstName    *string
	LastName     *string
	MiddleName   **string
	BirthDate    *time.Time
	Email        *string
	PasswordHash *string
	IsActive     *bool
}

func (c AccountChanges) Empty() bool {
	return c.FirstName == nil && c.LastName == nil && c.MiddleName == nil &&
		c.BirthDate == nil && c.Email == nil && c.PasswordHash == nil && c.IsActive == nil
}

// Apply returns a copy of a with the changes applied. Stores that keep
// whole records (memory, cache) use it so every implementation agrees.
func (c AccountChanges) Apply(a Account) Account {
	if c.FirstName != nil {
		a.FirstName = *c.FirstName
	}
	if c.LastName != nil {
		a.LastName = *c.LastName
	}
	if c.MiddleName != nil {
		a.MiddleName = *c.MiddleName
	}
	if c.BirthDate != nil {
		a.BirthDate = *c.BirthDate
	}
	if c.Email != nil {
		a.Email = *c.Email
	}
	if c.PasswordHash != nil {
		a.PasswordHash = *c.PasswordHash
	}
	if c.IsActive != nil {
		a.IsActive = *c.IsActive
	}
	return a
}

// AccountFilter narrows FindAndCount. Nil means "any".
type AccountFilter struct {
	Role     *Role
	IsActive *bool
}

// Page is a resolved, already-bounded pagination window.
type Page struct {
	Limit  int
	Offset int
}

// NormalizeEmail lower-cases and trims; emails are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ---------- profile validation ----------

const (
	NameMinLen       = 1
	NameMaxLen       = 50
	MiddleNameMaxLen = 50
)

var validate = validator.New()

// Profile is the set of user-editable fields checked by ValidateProfile.
type Profile struct {
	FirstName  string
	LastName   string
	MiddleName *string
	BirthDate  time.Time
	Email      string
}

// ValidateProfile enforces the data-model invariants of profile fields.
// now is injected so "birth date in the future" is testable.
func ValidateProfile(p Profile, now time.Time) error {
	if err := ValidateName("firstName", p.FirstName); err != nil {
		return err
	}
	if err := ValidateName("lastName", p.LastName); err != nil {
		return err
	}
	if p.MiddleName != nil && utf8.RuneCountInString(*p.MiddleName) > MiddleNameMaxLen {
		return ErrInvalidField("middleName", "too long")
	}
	if err := ValidateBirthDate(p.BirthDate, now); err != nil {
		return err
	}
	return ValidateEmail(p.Email)
}

func ValidateName(field, v string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(v))
	if n == 0 {
		return ErrMissingField(field)
	}
	if n < NameMinLen || n > NameMaxLen {
		return ErrInvalidField(field, "length must be between 1 and 50")
	}
	return nil
}

func ValidateEmail(email string) error {
	if email == "" {
		return ErrMissingField("email")
	}
	if err := validate.Var(email, "email"); err != nil {
		return ErrInvalidField("email", "invalid format")
	}
	return nil
}

// ValidateBirthDate compares calendar days, so "today" is allowed.
func ValidateBirthDate(d time.Time, now time.Time) error {
	if d.IsZero() {
		return ErrMissingField("birthDate")
	}
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if day.After(today) {
		return ErrInvalidField("birthDate", "must not be in the future")
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidField("birthDate", "must be YYYY-MM-DD")
	}
	return t, nil
}
