package util

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorNilStaysNil(t *testing.T) {
	assert.NoError(t, MapError(nil))
}

func TestMapErrorNoRowsBecomesNotFound(t *testing.T) {
	err := MapError(pgx.ErrNoRows)
	require.Error(t, err)

	domainErr := ToDomainError(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestMapErrorKeepsDomainError(t *testing.T) {
	original := NewForbidden("nope")
	assert.Equal(t, original, MapError(original))
}

func TestMapErrorWrapsUnknownAsInternal(t *testing.T) {
	domainErr := ToDomainError(MapError(errors.New("boom")))
	require.NotNil(t, domainErr)
	assert.Equal(t, "INTERNAL_ERROR", domainErr.Code)
}

func TestToDomainErrorNilInput(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}
