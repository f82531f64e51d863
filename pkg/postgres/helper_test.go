package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMessageUnwrapsPgError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23514", Message: `new row violates check constraint "ride_requests_age_check"`}
	err := fmt.Errorf("RideRepo.Create: %w", pgErr)

	require.Equal(t, pgErr.Message, Message(err))
	require.True(t, IsCheckViolation(err))
	require.False(t, IsUniqueViolation(err))
}

func TestMessagePlainError(t *testing.T) {
	require.Equal(t, "boom", Message(errors.New("boom")))
	require.Empty(t, Message(nil))
	require.False(t, IsForeignKeyViolation(nil))
}
