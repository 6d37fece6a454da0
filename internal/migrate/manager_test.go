package migrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSplitStatements(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"single", "create table t (id text);", 1},
		{"two", "create table a (id text); create table b (id text);", 2},
		{"semicolon in string", "insert into t values ('a;b'); insert into t values ('c');", 2},
		{"trailing without semicolon", "select 1", 1},
		{"empty", "   \n  ", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := splitStatements(tc.in)
			if len(got) != tc.want {
				t.Fatalf("got %d statements, want %d: %q", len(got), tc.want, got)
			}
		})
	}
}

func TestListSQLMissingDirIsEmpty(t *testing.T) {
	names, err := listSQL(filepath.Join(t.TempDir(), "does-not-exist"), ".sql")
	if err != nil {
		t.Fatalf("listSQL: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected no files, got %v", names)
	}
}

func TestListSQLSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.up.sql", "0001_a.up.sql", "0001_a.down.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("select 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	names, err := listSQL(dir, ".up.sql")
	if err != nil {
		t.Fatalf("listSQL: %v", err)
	}
	if len(names) != 2 || names[0] != "0001_a.up.sql" || names[1] != "0002_b.up.sql" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestUpAppliesPendingMigrations(t *testing.T) {
	dir := t.TempDir()
	mig := "0001_init.up.sql"
	if err := os.WriteFile(filepath.Join(dir, mig), []byte("create table t (id text);"), 0o644); err != nil {
		t.Fatal(err)
	}

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`(?s)create\s+table\s+if\s+not\s+exists\s+schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`(?s)select\s+name\s+from\s+schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectBegin()
	mock.ExpectExec(`(?s)create\s+table\s+t`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectExec(`(?s)insert\s+into\s+schema_migrations`).
		WithArgs(mig, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	m := NewManager(db, dir, "")
	if err := m.Up(context.Background()); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpSkipsApplied(t *testing.T) {
	dir := t.TempDir()
	mig := "0001_init.up.sql"
	if err := os.WriteFile(filepath.Join(dir, mig), []byte("create table t (id text);"), 0o644); err != nil {
		t.Fatal(err)
	}

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`(?s)create\s+table\s+if\s+not\s+exists\s+schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`(?s)select\s+name\s+from\s+schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow(mig))

	m := NewManager(db, dir, "")
	if err := m.Up(context.Background()); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
