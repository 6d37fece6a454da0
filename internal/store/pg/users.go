package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"classtrack.org/internal/auth"
)

// Postgres error codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Users persists credential records in the same database as the roster.
type Users struct {
	db *sql.DB
}

var _ auth.UserStore = (*Users)(nil)

func (u *Users) Create(ctx context.Context, usr *auth.User) error {
	_, err := u.db.ExecContext(ctx, `
		insert into users(id, username, digest, salt, created_at)
		values ($1,$2,$3,$4,$5)
	`, usr.ID, usr.Username, usr.Digest, usr.Salt, usr.CreatedAt)
	if isUniqueViolation(err) {
		return auth.ErrAlreadyExists
	}
	return err
}

func (u *Users) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	var usr auth.User
	err := u.db.QueryRowContext(ctx, `
		select id, username, digest, salt, created_at
		from users where username=$1
	`, username).Scan(&usr.ID, &usr.Username, &usr.Digest, &usr.Salt, &usr.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &usr, nil
}

func (u *Users) List(ctx context.Context) ([]*auth.User, error) {
	rows, err := u.db.QueryContext(ctx, `
		select id, username, digest, salt, created_at
		from users order by username asc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*auth.User
	for rows.Next() {
		var usr auth.User
		if err := rows.Scan(&usr.ID, &usr.Username, &usr.Digest, &usr.Salt, &usr.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &usr)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
