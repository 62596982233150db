package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindAndStatus(t *testing.T) {
	tests := []struct {
		code   ErrorCode
		kind   Kind
		status int
	}{
		{ErrCodeActivityNotFound, KindNotFound, http.StatusNotFound},
		{ErrCodeAlreadySignedUp, KindConflict, http.StatusBadRequest},
		{ErrCodeNotSignedUp, KindConflict, http.StatusBadRequest},
		{ErrCodeInvalidInput, KindValidation, http.StatusUnprocessableEntity},
		{ErrCodeCatalogInvalid, KindValidation, http.StatusUnprocessableEntity},
		{ErrCodeInternal, KindInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.code))
			assert.Equal(t, tt.status, HTTPStatus(tt.code))
		})
	}
}

func TestStandardError_IsMatchesCode(t *testing.T) {
	err := fmt.Errorf("signup: %w", NewAlreadySignedUpError("Chess Club", "michael@mergington.edu"))

	assert.True(t, stderrors.Is(err, ErrAlreadySignedUp))
	assert.False(t, stderrors.Is(err, ErrNotSignedUp))

	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeAlreadySignedUp, code)

	_, ok = CodeOf(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestDetailMessages(t *testing.T) {
	assert.Contains(t, NewActivityNotFoundError("X").Message, "Activity not found")
	assert.Contains(t, NewAlreadySignedUpError("X", "a@b").Message, "already signed up")
	assert.Contains(t, NewNotSignedUpError("X", "a@b").Message, "not signed up")
	assert.Contains(t, NewActivityNotFoundError("Chess").Error(), "ACTIVITY_NOT_FOUND")
}

func TestNormalize(t *testing.T) {
	orig := NewNotSignedUpError("Chess Club", "x@y")
	assert.Same(t, orig, Normalize(fmt.Errorf("wrapped: %w", orig)))

	got := Normalize(stderrors.New("disk on fire"))
	assert.Equal(t, ErrCodeInternal, got.Code)
	assert.Equal(t, "disk on fire", got.Details)
}

type captureLogger struct {
	warns, errors []string
}

func (c *captureLogger) Warn(msg string, _ map[string]interface{})  { c.warns = append(c.warns, msg) }
func (c *captureLogger) Error(msg string, _ map[string]interface{}) { c.errors = append(c.errors, msg) }

func TestErrorHandler_HandleHTTPError(t *testing.T) {
	log := &captureLogger{}
	h := NewErrorHandler(log)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/activities/Nope/signup", nil)
	h.HandleHTTPError(rec, req, NewActivityNotFoundError("Nope"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Activity not found","code":"ACTIVITY_NOT_FOUND"}`, rec.Body.String())
	assert.Len(t, log.warns, 1)

	rec = httptest.NewRecorder()
	h.HandleHTTPError(rec, req, stderrors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Len(t, log.errors, 1)
}
