package unregister

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"mergington-activities/internal/audit"
	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
	"mergington-activities/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	events []audit.Event
	err    error
}

func (f *fakeRecorder) Record(_ context.Context, event audit.Event) error {
	f.events = append(f.events, event)
	return f.err
}

func newTestHandler(t *testing.T) (*Handler, *registry.Registry, *fakeRecorder) {
	reg := registry.NewDefault()
	rec := &fakeRecorder{}
	return NewHandler(LoadConfig(), reg, rec, observability.NewNoop(), logger.NewTestLogger(t)), reg, rec
}

func newUnregisterRequest(activity, email string) *http.Request {
	target := "/activities/" + url.PathEscape(activity) + "/unregister?email=" + url.QueryEscape(email)
	req := httptest.NewRequest(http.MethodDelete, target, nil)
	req.SetPathValue("activity_name", activity)
	return req
}

func TestHandler_Execute_Success(t *testing.T) {
	handler, reg, rec := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Activity: "Chess Club",
		Email:    "michael@mergington.edu",
	})

	require.NoError(t, err)
	assert.Contains(t, output.Message, "Unregistered")

	chess, _ := reg.Get("Chess Club")
	assert.Equal(t, []string{"daniel@mergington.edu"}, chess.Participants)

	require.Len(t, rec.events, 1)
	assert.Equal(t, audit.EventUnregistered, rec.events[0].Type)
	assert.Equal(t, "michael@mergington.edu", rec.events[0].Email)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   Input
		wantErr error
	}{
		{
			name:    "unknown activity",
			input:   Input{Activity: "Underwater Basket Weaving", Email: "student@mergington.edu"},
			wantErr: apperrors.ErrActivityNotFound,
		},
		{
			name:    "not a participant",
			input:   Input{Activity: "Chess Club", Email: "notastuent@mergington.edu"},
			wantErr: apperrors.ErrNotSignedUp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, reg, rec := newTestHandler(t)

			output, err := handler.Execute(context.Background(), &tt.input)

			assert.Nil(t, output)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.Empty(t, rec.events)
			chess, _ := reg.Get("Chess Club")
			assert.Len(t, chess.Participants, 2)
		})
	}
}

func TestHandler_Execute_AuditFailureDoesNotFail(t *testing.T) {
	handler, reg, rec := newTestHandler(t)
	rec.err = errors.New("stream unavailable")

	_, err := handler.Execute(context.Background(), &Input{Activity: "Debate Team", Email: "grace@mergington.edu"})

	require.NoError(t, err)
	debate, _ := reg.Get("Debate Team")
	assert.Empty(t, debate.Participants)
}

func TestHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		activity   string
		email      string
		wantStatus int
		wantField  string
		wantText   string
	}{
		{"success", "Chess Club", "michael@mergington.edu", http.StatusOK, "message", "Unregistered"},
		{"unknown activity", "Underwater Basket Weaving", "student@mergington.edu", http.StatusNotFound, "detail", "Activity not found"},
		{"not signed up", "Chess Club", "notastuent@mergington.edu", http.StatusBadRequest, "detail", "not signed up"},
		{"missing email", "Chess Club", "", http.StatusUnprocessableEntity, "detail", "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, _ := newTestHandler(t)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newUnregisterRequest(tt.activity, tt.email))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body[tt.wantField], tt.wantText)
		})
	}
}
