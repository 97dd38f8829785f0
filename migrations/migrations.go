package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
)

//go:embed mysql.sql sqlite3.sql
var files embed.FS

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Statements returns the schema statements for a database driver name.
func Statements(driver string) ([]string, error) {
	raw, err := files.ReadFile(driver + ".sql")
	if err != nil {
		return nil, fmt.Errorf("no schema for driver %q", driver)
	}

	parts := strings.Split(string(raw), ";")
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		if stmt := strings.TrimSpace(part); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements, nil
}

func Apply(ctx context.Context, db execer, driver string) error {
	statements, err := Statements(driver)
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
