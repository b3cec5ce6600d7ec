package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "uq_reports_post_reporter"}
	wrapped := fmt.Errorf("insert report: %w", pgErr)

	require.True(t, IsUniqueViolation(wrapped))
	require.True(t, IsDuplicateConstraintError(wrapped, "uq_reports_post_reporter"))
	require.False(t, IsDuplicateConstraintError(wrapped, "uq_connections_pair"))
	require.False(t, IsForeignKeyViolation(wrapped))
}

func TestNonPgErrors(t *testing.T) {
	require.False(t, IsUniqueViolation(errors.New("boom")))
	require.False(t, IsUniqueViolation(nil))
	require.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}))
}
