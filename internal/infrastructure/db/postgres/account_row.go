package postgres

import (
	"database/sql"
	"time"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

const accountColumns = `id, first_name, last_name, middle_name, birth_date, email, password_hash, role, is_active, created_at, updated_at`

type accountRow struct {
	ID           int64
	FirstName    string
	LastName     string
	MiddleName   sql.NullString
	BirthDate    time.Time
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccountRow(s rowScanner) (accountRow, error) {
	var ar accountRow
	err := s.Scan(
		&ar.ID,
		&ar.FirstName,
		&ar.LastName,
		&ar.MiddleName,
		&ar.BirthDate,
		&ar.Email,
		&ar.PasswordHash,
		&ar.Role,
		&ar.IsActive,
		&ar.CreatedAt,
		&ar.UpdatedAt,
	)
	return ar, err
}

func toDomainAccount(ar accountRow) domain.Account {
	var middle *string
	if ar.MiddleName.Valid {
		v := ar.MiddleName.String
		middle = &v
	}
	return domain.Account{
		ID:           ar.ID,
		FirstName:    ar.FirstName,
		LastName:     ar.LastName,
		MiddleName:   middle,
		BirthDate:    ar.BirthDate,
		Email:        ar.Email,
		PasswordHash: ar.PasswordHash,
		Role:         domain.Role(ar.Role),
		IsActive:     ar.IsActive,
		CreatedAt:    ar.CreatedAt,
		UpdatedAt:    ar.UpdatedAt,
	}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
