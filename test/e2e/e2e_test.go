// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mergington-activities/internal/audit"
	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/database"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
	"mergington-activities/internal/server"
	"mergington-activities/pkg/registry"
)

// These tests need a running Postgres and Redis, e.g. from docker compose.
// They are skipped unless E2E_ENABLED=1.

func getEnvOrDefault(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

type testEnvironment struct {
	pg     *database.PostgresClient
	redis  *database.RedisClient
	stream string
	ts     *httptest.Server
}

func setup(t *testing.T) *testEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	if os.Getenv("E2E_ENABLED") != "1" {
		t.Skip("E2E_ENABLED not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	port, err := strconv.Atoi(getEnvOrDefault("E2E_POSTGRES_PORT", "5432"))
	require.NoError(t, err)
	pg, err := database.NewPostgres(config.PostgresConfig{
		Host:           getEnvOrDefault("E2E_POSTGRES_HOST", "localhost"),
		Port:           port,
		Database:       getEnvOrDefault("E2E_POSTGRES_DB", "activities"),
		User:           getEnvOrDefault("E2E_POSTGRES_USER", "postgres"),
		Password:       getEnvOrDefault("E2E_POSTGRES_PASSWORD", "postgres"),
		MaxConnections: 5,
		MaxIdle:        1,
		SSLMode:        "disable",
	})
	require.NoError(t, err)
	require.NoError(t, pg.Ping(ctx), "postgres must be reachable")
	t.Cleanup(func() { _ = pg.Close() })

	rdb, err := database.NewRedis(config.RedisConfig{
		Address: getEnvOrDefault("E2E_REDIS_ADDRESS", "localhost:6379"),
	})
	require.NoError(t, err)
	require.NoError(t, rdb.Ping(ctx), "redis must be reachable")
	t.Cleanup(func() { _ = rdb.Close() })

	pgRecorder := audit.NewPostgresRecorder(pg.DB)
	require.NoError(t, pgRecorder.Migrate(ctx))

	stream := "e2e:enrollments:" + strconv.FormatInt(time.Now().UnixNano(), 10)
	t.Cleanup(func() { rdb.Client.Del(context.Background(), stream) })

	srv := server.New(server.Deps{
		Config: config.ServerConfig{
			Address:         "127.0.0.1:0",
			ReadTimeout:     5000,
			WriteTimeout:    5000,
			ShutdownTimeout: 5000,
		},
		Registry:      registry.NewDefault(),
		Recorder:      audit.Multi{pgRecorder, audit.NewRedisRecorder(rdb.Client, stream)},
		Observability: observability.NewNoop(),
		Logger:        logger.NewTestLogger(t),
		Ready: func(ctx context.Context) error {
			if err := pg.Ping(ctx); err != nil {
				return err
			}
			return rdb.Ping(ctx)
		},
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testEnvironment{pg: pg, redis: rdb, stream: stream, ts: ts}
}

func (env *testEnvironment) call(t *testing.T, method, activity, action, email string) (int, map[string]string) {
	t.Helper()
	u := env.ts.URL + "/activities/" + url.PathEscape(activity) + "/" + action + "?email=" + url.QueryEscape(email)
	req, err := http.NewRequest(method, u, nil)
	require.NoError(t, err)
	resp, err := env.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestE2E_ReadyWithRealServices(t *testing.T) {
	env := setup(t)

	resp, err := env.ts.Client().Get(env.ts.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestE2E_EnrollmentJourneyIsAudited(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	email := "e2e-" + strconv.FormatInt(time.Now().UnixNano(), 10) + "@mergington.edu"

	status, body := env.call(t, http.MethodPost, "Drama Club", "signup", email)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Signed up "+email+" for Drama Club", body["message"])

	status, _ = env.call(t, http.MethodPost, "Drama Club", "signup", email)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.call(t, http.MethodDelete, "Drama Club", "unregister", email)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Unregistered "+email+" from Drama Club", body["message"])

	var count int
	err := env.pg.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM enrollment_audit WHERE participant_email = $1`, email,
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "only successful mutations are audited")

	msgs, err := env.redis.Client.XRange(ctx, env.stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, string(audit.EventSignedUp), msgs[0].Values["type"])
	assert.Equal(t, string(audit.EventUnregistered), msgs[1].Values["type"])
	assert.Equal(t, email, msgs[1].Values["email"])

	_, err = env.pg.DB.ExecContext(ctx, `DELETE FROM enrollment_audit WHERE participant_email = $1`, email)
	assert.NoError(t, err)
}
