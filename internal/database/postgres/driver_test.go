package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/koustreak/fdw/internal/database"
	"github.com/koustreak/fdw/internal/errs"
)

func TestBuildDSN(t *testing.T) {
	assert.Equal(t, "postgres://u:p@db:5432/app?sslmode=disable",
		buildDSN(&database.Config{Host: "db", User: "u", Password: "p", Database: "app"}))

	assert.Equal(t, "postgres://u:p@db:6543/app?sslmode=require",
		buildDSN(&database.Config{Host: "db", Port: 6543, User: "u", Password: "p", Database: "app", SSLMode: "require"}))

	assert.Equal(t, "postgres://x", buildDSN(&database.Config{DSN: "postgres://x", Host: "ignored"}))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout},
		{"canceled wrapped", fmt.Errorf("acquire: %w", context.Canceled), errs.ErrKindTimeout},
		{"no rows", pgx.ErrNoRows, errs.ErrKindNotFound},
		{"undefined table", &pgconn.PgError{Code: "42P01", Message: `relation "x" does not exist`}, errs.ErrKindNotFound},
		{"permission", &pgconn.PgError{Code: "42501"}, errs.ErrKindPermissionDenied},
		{"bad password", &pgconn.PgError{Code: "28P01"}, errs.ErrKindConnectionFailed},
		{"connection class", &pgconn.PgError{Code: "08006"}, errs.ErrKindConnectionFailed},
		{"too many connections", &pgconn.PgError{Code: "53300"}, errs.ErrKindConnectionFailed},
		{"statement timeout", &pgconn.PgError{Code: "57014"}, errs.ErrKindTimeout},
		{"syntax", &pgconn.PgError{Code: "42601"}, errs.ErrKindQueryFailed},
		{"network", errors.New("dial tcp: connection refused"), errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "query failed")
			assert.Equal(t, tt.want, got.Kind)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.Nil(t, mapError(nil, "x"))
}

func TestMapError_IncludesServerMessage(t *testing.T) {
	got := mapError(&pgconn.PgError{Code: "42P01", Message: `relation "events" does not exist`}, "query failed")
	assert.Equal(t, `query failed: relation "events" does not exist`, got.Message)
}
