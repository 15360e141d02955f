package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "github.com/charlesng35/resourcedesk/pkg/errors"
)

func TestTranslateError(t *testing.T) {
	require.NoError(t, TranslateError(nil))

	require.ErrorIs(t, TranslateError(gorm.ErrRecordNotFound), apperrors.ErrNotFound)
	require.ErrorIs(t, TranslateError(fmt.Errorf("query: %w", context.DeadlineExceeded)), apperrors.ErrRemoteUnavailable)
	require.ErrorIs(t, TranslateError(mysql.ErrInvalidConn), apperrors.ErrRemoteUnavailable)
	require.ErrorIs(t, TranslateError(&pgconn.PgError{Code: "08006"}), apperrors.ErrRemoteUnavailable)

	conflict := apperrors.NewInvalidTransition("stale")
	require.Same(t, conflict, TranslateError(conflict))

	other := TranslateError(errors.New("syntax error near FROM"))
	require.False(t, errors.Is(other, apperrors.ErrRemoteUnavailable))
	require.False(t, apperrors.IsTransient(other))
}

func TestIsUniqueConstraintError(t *testing.T) {
	require.True(t, isUniqueConstraintError(&pgconn.PgError{Code: "23505"}))
	require.True(t, isUniqueConstraintError(&mysql.MySQLError{Number: 1062}))
	require.True(t, isUniqueConstraintError(gorm.ErrDuplicatedKey))
	require.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: resource_requests.sequence")))
	require.False(t, isUniqueConstraintError(&pgconn.PgError{Code: "23503"}))
	require.False(t, isUniqueConstraintError(nil))
}
