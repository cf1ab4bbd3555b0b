package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches wrapped domain error", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(CodeConflict, "duplicate serial"))
		assert.True(t, HasCode(err, CodeConflict))
		assert.False(t, HasCode(err, CodeNotFound))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})

	t.Run("outermost code wins", func(t *testing.T) {
		inner := New(CodeNotFound, "missing")
		err := Wrap(inner, CodePersistence, "insert failed")
		assert.True(t, HasCode(err, CodePersistence))
		assert.ErrorIs(t, err, inner)
	})
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:        http.StatusBadRequest,
		CodeInvalidInput:      http.StatusBadRequest,
		CodeConflict:          http.StatusConflict,
		CodeNotFound:          http.StatusNotFound,
		CodeLedgerUnavailable: http.StatusServiceUnavailable,
		CodeLedgerRejected:    http.StatusBadGateway,
		CodePersistence:       http.StatusInternalServerError,
		CodeInternal:          http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, ToHTTPStatus(code), "code %s", code)
	}
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeNotFound, "warranty not found"))

	assert.ErrorIs(t, err, New(CodeNotFound, "other message"))
	assert.NotErrorIs(t, err, New(CodeConflict, "warranty not found"))
}
