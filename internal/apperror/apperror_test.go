package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("mark produced: %w", ExceedsCapacity("v1", 2, 4, 5))
	assert.Equal(t, KindExceedsCapacity, KindOf(err))
	assert.True(t, Is(err, KindExceedsCapacity))
	assert.Contains(t, err.Error(), "would exceed total")

	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestFromDB(t *testing.T) {
	assert.Nil(t, FromDB(nil))

	plain := errors.New("disk full")
	assert.Same(t, plain, FromDB(plain))

	sqliteErr := sqlite3.Error{Code: sqlite3.ErrConstraint}
	assert.Equal(t, KindConstraintViolation, KindOf(FromDB(sqliteErr)))

	pgErr := &pgconn.PgError{Code: "23505"}
	converted := FromDB(fmt.Errorf("insert: %w", pgErr))
	assert.Equal(t, KindConstraintViolation, KindOf(converted))
	assert.ErrorIs(t, converted, pgErr)
}
