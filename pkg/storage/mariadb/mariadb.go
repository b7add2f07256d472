// Package mariadb is the MySQL/MariaDB storage driver.
package mariadb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/c14220110/findmyclinic-backend/internal/models"
	"github.com/c14220110/findmyclinic-backend/pkg/storage"
	"github.com/c14220110/findmyclinic-backend/pkg/storage/seed"
)

//go:embed schema.sql
var schemaSQL string

const (
	errDuplicateEntry = 1062
	errNoReferenced   = 1452
)

type Options struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

// DSN formats the connection string. Times are read and written as UTC.
func DSN(opts Options) string {
	cfg := mysql.NewConfig()
	cfg.User = opts.User
	cfg.Passwd = opts.Password
	cfg.Net = "tcp"
	port := opts.Port
	if port == "" {
		port = "3306"
	}
	cfg.Addr = net.JoinHostPort(opts.Host, port)
	cfg.DBName = opts.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN()
}

// Connect opens and pings the database.
func Connect(ctx context.Context, opts Options) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(opts))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema. Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func schemaStatements() []string {
	var out []string
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// Store implements storage.Storage on top of database/sql.
type Store struct {
	DB  *sql.DB
	now func() time.Time
}

var _ storage.Storage = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{DB: db, now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }}
}

// SeedClinics inserts the sample directory when the clinics table is empty
// and returns the number of rows added.
func (s *Store) SeedClinics(ctx context.Context, clinics []seed.Clinic) (int, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM clinics").Scan(&count); err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	now := s.now()
	for _, c := range clinics {
		status := c.Status
		if status == "" {
			status = models.ClinicStatusOpen
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO clinics
				(id, name, address, area, phone, email, latitude, longitude, current_wait_time, queue_size, status, is_active, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, TRUE, ?)`,
			uuid.NewString(), c.Name, c.Address, c.Area, c.Phone, c.Email, c.Latitude, c.Longitude,
			c.CurrentWaitTime, c.QueueSize, status, now,
		)
		if err != nil {
			return 0, mapError(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(clinics), nil
}

// mapError translates driver errors into storage sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errDuplicateEntry:
			return fmt.Errorf("%s: %w", me.Message, storage.ErrConflict)
		case errNoReferenced:
			return fmt.Errorf("%s: %w", me.Message, storage.ErrInvalidInput)
		}
	}
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func emptyToNil(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	s := *v
	return &s
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

// likePattern wraps term in % after escaping LIKE wildcards.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}
