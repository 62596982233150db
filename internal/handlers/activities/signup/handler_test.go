package signup

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

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

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) SignupConfirmation(_ context.Context, activity, email string) error {
	f.sent = append(f.sent, activity+"|"+email)
	return f.err
}

type testDeps struct {
	reg      *registry.Registry
	recorder *fakeRecorder
	notifier *fakeNotifier
}

func newTestHandler(t *testing.T) (*Handler, *testDeps) {
	deps := &testDeps{
		reg:      registry.NewDefault(),
		recorder: &fakeRecorder{},
		notifier: &fakeNotifier{},
	}
	handler := NewHandler(HandlerOptions{
		Config:        &Config{SideEffectTimeout: time.Second},
		Roster:        deps.reg,
		Recorder:      deps.recorder,
		Notifier:      deps.notifier,
		Observability: observability.NewNoop(),
		Logger:        logger.NewTestLogger(t),
	})
	return handler, deps
}

func newSignupRequest(activity, email string) *http.Request {
	target := "/activities/" + url.PathEscape(activity) + "/signup?email=" + url.QueryEscape(email)
	req := httptest.NewRequest(http.MethodPost, target, nil)
	req.SetPathValue("activity_name", activity)
	return req
}

func TestHandler_Execute_Success(t *testing.T) {
	handler, deps := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Activity: "Chess Club",
		Email:    "newstudent@mergington.edu",
	})

	require.NoError(t, err)
	assert.Contains(t, output.Message, "Signed up")
	assert.Contains(t, output.Message, "newstudent@mergington.edu")

	chess, _ := deps.reg.Get("Chess Club")
	assert.Len(t, chess.Participants, 3)
	assert.Contains(t, chess.Participants, "newstudent@mergington.edu")

	require.Len(t, deps.recorder.events, 1)
	assert.Equal(t, audit.EventSignedUp, deps.recorder.events[0].Type)
	assert.Equal(t, "Chess Club", deps.recorder.events[0].Activity)
	assert.Equal(t, []string{"Chess Club|newstudent@mergington.edu"}, deps.notifier.sent)
}

func TestHandler_Execute_NotFound(t *testing.T) {
	handler, deps := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Activity: "Underwater Basket Weaving",
		Email:    "student@mergington.edu",
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, apperrors.ErrActivityNotFound))
	assert.Empty(t, deps.recorder.events)
	assert.Empty(t, deps.notifier.sent)
}

func TestHandler_Execute_Duplicate(t *testing.T) {
	handler, deps := newTestHandler(t)

	_, err := handler.Execute(context.Background(), &Input{
		Activity: "Chess Club",
		Email:    "michael@mergington.edu",
	})

	assert.True(t, errors.Is(err, apperrors.ErrAlreadySignedUp))
	chess, _ := deps.reg.Get("Chess Club")
	assert.Len(t, chess.Participants, 2)
	assert.Empty(t, deps.recorder.events)
}

func TestHandler_Execute_SideEffectFailuresDoNotFail(t *testing.T) {
	handler, deps := newTestHandler(t)
	deps.recorder.err = errors.New("postgres down")
	deps.notifier.err = errors.New("ses throttled")

	output, err := handler.Execute(context.Background(), &Input{
		Activity: "Art Studio",
		Email:    "newartist@mergington.edu",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, output.Message)
	art, _ := deps.reg.Get("Art Studio")
	assert.Contains(t, art.Participants, "newartist@mergington.edu")
}

func TestHandler_Execute_NoNotifier(t *testing.T) {
	reg := registry.NewDefault()
	handler := NewHandler(HandlerOptions{
		Roster: reg,
		Logger: logger.NewNoOpLogger(),
	})

	output, err := handler.Execute(context.Background(), &Input{Activity: "Gym Class", Email: "x@mergington.edu"})

	require.NoError(t, err)
	assert.Contains(t, output.Message, "Gym Class")
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
		{
			name:       "success",
			activity:   "Chess Club",
			email:      "newstudent@mergington.edu",
			wantStatus: http.StatusOK,
			wantField:  "message",
			wantText:   "Signed up",
		},
		{
			name:       "unknown activity",
			activity:   "Underwater Basket Weaving",
			email:      "student@mergington.edu",
			wantStatus: http.StatusNotFound,
			wantField:  "detail",
			wantText:   "Activity not found",
		},
		{
			name:       "duplicate",
			activity:   "Chess Club",
			email:      "michael@mergington.edu",
			wantStatus: http.StatusBadRequest,
			wantField:  "detail",
			wantText:   "already signed up",
		},
		{
			name:       "missing email",
			activity:   "Chess Club",
			email:      "",
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "detail",
			wantText:   "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newSignupRequest(tt.activity, tt.email))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body[tt.wantField], tt.wantText)
		})
	}
}
