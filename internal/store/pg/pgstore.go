package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"classtrack.org/internal/ids"
	"classtrack.org/internal/roster"
)

type Store struct {
	db *sql.DB
}

var _ roster.Service = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection. Used by tests.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Users returns the credential store backed by the same database.
func (s *Store) Users() *Users { return &Users{db: s.db} }

func (s *Store) CreateStudent(ctx context.Context, st roster.Student) (roster.Student, error) {
	st.Name = strings.TrimSpace(st.Name)
	if st.Name == "" {
		return roster.Student{}, roster.ErrInvalidInput
	}
	now := time.Now().UTC()
	st.ID = ids.New()
	st.CreatedAt = now
	st.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		insert into students(id, name, email, created_at, updated_at)
		values ($1,$2,$3,$4,$5)
	`, st.ID, st.Name, st.Email, st.CreatedAt, st.UpdatedAt)
	if err != nil {
		return roster.Student{}, err
	}
	return st, nil
}

func (s *Store) GetStudent(ctx context.Context, id string) (roster.Student, error) {
	var st roster.Student
	err := s.db.QueryRowContext(ctx, `
		select id, name, email, created_at, updated_at
		from students where id=$1
	`, id).Scan(&st.ID, &st.Name, &st.Email, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return roster.Student{}, roster.ErrNotFound
	}
	if err != nil {
		return roster.Student{}, err
	}
	return st, nil
}

func (s *Store) ListStudents(ctx context.Context) ([]roster.Student, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, email, created_at, updated_at
		from students order by id asc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []roster.Student
	for rows.Next() {
		var st roster.Student
		if err := rows.Scan(&st.ID, &st.Name, &st.Email, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) UpdateStudent(ctx context.Context, st roster.Student) (roster.Student, error) {
	st.Name = strings.TrimSpace(st.Name)
	if st.ID == "" || st.Name == "" {
		return roster.Student{}, roster.ErrInvalidInput
	}
	err := s.db.QueryRowContext(ctx, `
		update students set name=$2, email=$3, updated_at=now()
		where id=$1
		returning created_at, updated_at
	`, st.ID, st.Name, st.Email).Scan(&st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return roster.Student{}, roster.ErrNotFound
	}
	if err != nil {
		return roster.Student{}, err
	}
	return st, nil
}

func (s *Store) DeleteStudent(ctx context.Context, id string) error {
	// Assignments go with the student via on delete cascade.
	res, err := s.db.ExecContext(ctx, `delete from students where id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return roster.ErrNotFound
	}
	return nil
}

func (s *Store) CreateAssignment(ctx context.Context, a roster.Assignment) (roster.Assignment, error) {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" || strings.TrimSpace(a.StudentID) == "" {
		return roster.Assignment{}, roster.ErrInvalidInput
	}
	if a.Status == "" {
		a.Status = roster.StatusPending
	}
	now := time.Now().UTC()
	a.ID = ids.New()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		insert into assignments(id, student_id, title, description, due_at, status, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
	`, a.ID, a.StudentID, a.Title, a.Description, a.DueAt, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return roster.Assignment{}, roster.ErrNotFound
		}
		return roster.Assignment{}, err
	}
	return a, nil
}

func (s *Store) GetAssignment(ctx context.Context, id string) (roster.Assignment, error) {
	var a roster.Assignment
	err := s.db.QueryRowContext(ctx, `
		select id, student_id, title, description, due_at, status, created_at, updated_at
		from assignments where id=$1
	`, id).Scan(&a.ID, &a.StudentID, &a.Title, &a.Description, &a.DueAt, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return roster.Assignment{}, roster.ErrNotFound
	}
	if err != nil {
		return roster.Assignment{}, err
	}
	return a, nil
}

func (s *Store) ListAssignments(ctx context.Context, studentID string, limit int) ([]roster.Assignment, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, student_id, title, description, due_at, status, created_at, updated_at
		from assignments
		where ($1 = '' or student_id = $1)
		order by created_at asc, id asc
		limit $2
	`, studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []roster.Assignment
	for rows.Next() {
		var a roster.Assignment
		if err := rows.Scan(&a.ID, &a.StudentID, &a.Title, &a.Description, &a.DueAt, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) UpdateAssignment(ctx context.Context, a roster.Assignment) (roster.Assignment, error) {
	a.Title = strings.TrimSpace(a.Title)
	if a.ID == "" || a.Title == "" {
		return roster.Assignment{}, roster.ErrInvalidInput
	}
	if a.Status == "" {
		a.Status = roster.StatusPending
	}
	err := s.db.QueryRowContext(ctx, `
		update assignments
		set title=$2, description=$3, due_at=$4, status=$5, updated_at=now()
		where id=$1
		returning student_id, created_at, updated_at
	`, a.ID, a.Title, a.Description, a.DueAt, a.Status).Scan(&a.StudentID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return roster.Assignment{}, roster.ErrNotFound
	}
	if err != nil {
		return roster.Assignment{}, err
	}
	return a, nil
}

func (s *Store) DeleteAssignment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from assignments where id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return roster.ErrNotFound
	}
	return nil
}
