package dbx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: UniqueViolationCode}
	fk := &pgconn.PgError{Code: ForeignKeyViolationCode}

	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsUniqueViolation(fmt.Errorf("db error: %w", unique)))
	assert.False(t, IsUniqueViolation(fk))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestIsForeignKeyViolation(t *testing.T) {
	fk := &pgconn.PgError{Code: ForeignKeyViolationCode}

	assert.True(t, IsForeignKeyViolation(fk))
	assert.True(t, IsForeignKeyViolation(fmt.Errorf("db error: %w", fk)))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: UniqueViolationCode}))
	assert.False(t, IsForeignKeyViolation(nil))
}

func TestAsPgError(t *testing.T) {
	pe, ok := AsPgError(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "42P01"}))
	assert.True(t, ok)
	assert.Equal(t, "42P01", pe.Code)

	_, ok = AsPgError(errors.New("x"))
	assert.False(t, ok)
}
