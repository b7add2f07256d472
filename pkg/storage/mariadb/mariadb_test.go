package mariadb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/c14220110/findmyclinic-backend/pkg/storage"
)

func TestDSN(t *testing.T) {
	dsn := DSN(Options{User: "clinic", Password: "s3cret", Host: "db.local", Port: "3307", Name: "findmyclinic"})

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("ParseDSN(%q): %v", dsn, err)
	}
	if cfg.User != "clinic" || cfg.Passwd != "s3cret" || cfg.Addr != "db.local:3307" || cfg.DBName != "findmyclinic" {
		t.Errorf("parsed config = %+v", cfg)
	}
	if !cfg.ParseTime || cfg.Loc != time.UTC {
		t.Errorf("parseTime=%v loc=%v", cfg.ParseTime, cfg.Loc)
	}
}

func TestDSNDefaultPort(t *testing.T) {
	cfg, err := mysql.ParseDSN(DSN(Options{User: "u", Host: "localhost", Name: "db"}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != "localhost:3306" {
		t.Errorf("addr = %q", cfg.Addr)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, storage.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), storage.ErrNotFound},
		{"duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'asha'"}, storage.ErrConflict},
		{"foreign key", &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}, storage.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("mapError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	other := &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
	if got := mapError(other); got != other {
		t.Errorf("unrelated error changed: %v", got)
	}
	if mapError(nil) != nil {
		t.Error("mapError(nil) should be nil")
	}
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	tests := map[string]string{
		"Apollo":  "%apollo%",
		"50%":     `%50\%%`,
		"a_b":     `%a\_b%`,
		`back\sl`: `%back\\sl%`,
	}
	for in, want := range tests {
		if got := likePattern(in); got != want {
			t.Errorf("likePattern(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSchemaStatements(t *testing.T) {
	stmts := schemaStatements()
	if len(stmts) != 10 {
		t.Fatalf("got %d statements, want 10", len(stmts))
	}
	for _, stmt := range stmts {
		if !strings.HasPrefix(stmt, "CREATE TABLE IF NOT EXISTS") {
			t.Errorf("unexpected statement: %.40s", stmt)
		}
	}
}

func TestNullableHelpers(t *testing.T) {
	if stringPtr(nullString(nil)) != nil {
		t.Error("nil string should round trip to nil")
	}
	v := "x"
	if got := stringPtr(nullString(&v)); got == nil || *got != "x" {
		t.Errorf("string round trip = %v", got)
	}
	n := 12
	if got := intPtr(nullInt(&n)); got == nil || *got != 12 {
		t.Errorf("int round trip = %v", got)
	}
	now := time.Now()
	if got := timePtr(nullTime(&now)); got == nil || !got.Equal(now) {
		t.Errorf("time round trip = %v", got)
	}
	empty := ""
	if emptyToNil(&empty) != nil {
		t.Error("empty string should become nil")
	}
}
