package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

const pgUniqueViolation = "23505"

type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// mapErr turns driver errors into domain errors.
func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrAccountNotFound()
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.ErrEmailAlreadyExists()
	}
	return domain.ErrDBUnavailable(err)
}

func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.Account{}, domain.ErrMissingField("email")
	}

	q := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1 LIMIT 1`
	ar, err := scanAccountRow(r.db.QueryRowContext(ctx, q, email))
	if err != nil {
		return domain.Account{}, mapErr(err)
	}
	return toDomainAccount(ar), nil
}

func (r *AccountRepo) FindByID(ctx context.Context, id int64) (domain.Account, error) {
	q := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 LIMIT 1`
	ar, err := scanAccountRow(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return domain.Account{}, mapErr(err)
	}
	return toDomainAccount(ar), nil
}

func (r *AccountRepo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	a.Email = domain.NormalizeEmail(a.Email)
	if a.Email == "" {
		return domain.Account{}, domain.ErrMissingField("email")
	}
	if a.PasswordHash == "" {
		return domain.Account{}, domain.ErrMissingField("password_hash")
	}
	if a.Role == "" {
		a.Role = domain.RoleUser
	}

	q := `INSERT INTO accounts (first_name, last_name, middle_name, birth_date, email, password_hash, role, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + accountColumns

	ar, err := scanAccountRow(r.db.QueryRowContext(ctx, q,
		a.FirstName,
		a.LastName,
		nullString(a.MiddleName),
		a.BirthDate,
		a.Email,
		a.PasswordHash,
		string(a.Role),
		a.IsActive,
	))
	if err != nil {
		return domain.Account{}, mapErr(err)
	}
	return toDomainAccount(ar), nil
}

// Update writes only the changed columns so concurrent updates of different
// fields do not overwrite each other.
func (r *AccountRepo) Update(ctx context.Context, id int64, c domain.AccountChanges) (domain.Account, error) {
	if c.Empty() {
		return r.FindByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if c.FirstName != nil {
		set("first_name", *c.FirstName)
	}
	if c.LastName != nil {
		set("last_name", *c.LastName)
	}
	if c.MiddleName != nil {
		set("middle_name", nullString(*c.MiddleName))
	}
	if c.BirthDate != nil {
		set("birth_date", *c.BirthDate)
	}
	if c.Email != nil {
		set("email", domain.NormalizeEmail(*c.Email))
	}
	if c.PasswordHash != nil {
		set("password_hash", *c.PasswordHash)
	}
	if c.IsActive != nil {
		set("is_active", *c.IsActive)
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE accounts SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), accountColumns)

	ar, err := scanAccountRow(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return domain.Account{}, mapErr(err)
	}
	return toDomainAccount(ar), nil
}

func (r *AccountRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if n == 0 {
		return domain.ErrAccountNotFound()
	}
	return nil
}

// FindAndCount returns one page of accounts, newest first, plus the total
// number of accounts matching the filter.
func (r *AccountRepo) FindAndCount(ctx context.Context, f domain.AccountFilter, p domain.Page) ([]domain.Account, int, error) {
	var (
		where []string
		args  []any
	)
	if f.Role != nil {
		args = append(args, string(*f.Role))
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`+clause, args...).Scan(&total); err != nil {
		return nil, 0, domain.ErrDBUnavailable(err)
	}

	pageArgs := append(append([]any{}, args...), p.Limit, p.Offset)
	q := fmt.Sprintf(`SELECT %s FROM accounts%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		accountColumns, clause, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, q, pageArgs...)
	if err != nil {
		return nil, 0, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	out := make([]domain.Account, 0, p.Limit)
	for rows.Next() {
		ar, err := scanAccountRow(rows)
		if err != nil {
			return nil, 0, domain.ErrDBUnavailable(err)
		}
		out = append(out, toDomainAccount(ar))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.ErrDBUnavailable(err)
	}
	return out, total, nil
}

// Ping reports whether the database is reachable; used by readiness checks.
func (r *AccountRepo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}
