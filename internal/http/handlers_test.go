package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kvistberg/studyleague/internal/attempts"
	"github.com/kvistberg/studyleague/internal/awards"
	"github.com/kvistberg/studyleague/internal/clock"
	"github.com/kvistberg/studyleague/internal/config"
	"github.com/kvistberg/studyleague/internal/database"
	"github.com/kvistberg/studyleague/internal/league"
	"github.com/kvistberg/studyleague/internal/metrics"
	"github.com/kvistberg/studyleague/internal/notifier"
	"github.com/kvistberg/studyleague/internal/pubsub"
	"github.com/kvistberg/studyleague/internal/query"
	"github.com/kvistberg/studyleague/internal/rollover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// testNow is a Wednesday morning in league time; the surrounding week runs
// Mar 10 through Mar 17.
var testNow = time.Date(2025, 3, 12, 11, 0, 0, 0, clock.LeagueZone)

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T) (*Server, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := league.New(db)
	attemptLog := attempts.New(db)
	awardStore := awards.NewStore(db)
	clk := clock.Fixed{T: testNow}
	cfg := config.Config{}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	ps := pubsub.NewMock("TEST")
	querySvc := query.New(store, awardStore, clk)
	job := rollover.New(store, attemptLog, awardStore, notifier.NewMock(), metricsSvc, clk)

	server := NewServer(store, attemptLog, querySvc, job, metricsSvc, metricsHandler, nil, cfg, clk, ps)

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
	}
	return server, teardown
}

func postJSON(t *testing.T, server *Server, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest("POST", target, bytes.NewReader(body))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	return rr
}

func get(t *testing.T, server *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("GET", target, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheckHandler(t *testing.T) {
	server, teardown := setupTestServer(t)
	defer teardown()

	rr := get(t, server, "/health")
	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestStudentsHandler(t *testing.T) {
	server, teardown := setupTestServer(t)
	defer teardown()

	rr := postJSON(t, server, "/students", league.Student{ID: "s1", Name: "Asha", Grade: 7})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = get(t, server, "/students")
	require.Equal(t, http.StatusOK, rr.Code)
	var students []league.Student
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &students))
	require.Len(t, students, 1)
	assert.Equal(t, "Asha", students[0].Name)
	assert.Equal(t, 1, students[0].Tier)
}

func TestStudentsHandler_MissingID(t *testing.T) {
	server, teardown := setupTestServer(t)
	defer teardown()

	rr := postJSON(t, server, "/students", league.Student{Name: "Nameless"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAttemptHandler_CreditsXP(t *testing.T) {
	server, teardown := setupTestServer(t)
	defer teardown()

	require.Equal(t, http.StatusOK, postJSON(t, server, "/students", league.Student{ID: "s1", Name: "Asha", Grade: 7}).Code)

	rr := postJSON(t, server, "/attempts", attemptRequest{
		ID: "a1", StudentID: "s1", TopicID: "algebra", IsCorrect: true, TimeTakenMs: 5000,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp attemptResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 20, resp.XP)
	assert.Equal(t, 20, resp.WeeklyXP)
	assert.NotEmpty(t, resp.LeagueID)

	// Retrying the same attempt id must not double-credit.
	rr = postJSON(t, server, "/attempts", attemptRequest{
		ID: "a1", StudentID: "s1", TopicID: "algebra", IsCorrect: true, TimeTakenMs: 5000,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 20, resp.WeeklyXP)
}

func TestAttemptHandler_ZeroXPStillCountsUsage(t *testing.T) {
	server, teardown := setupTestServer(t)
	defer teardown()

	require.Equal(t, http.StatusOK, postJSON(t, server, "/students", league.Student{ID: "s1", Name: "Asha", Grade: 7}).Code)

	// Too fast to score.
	rr := postJSON(t, server, "/attempts", attemptRequest{
		ID: "a1", StudentID: "s1", IsCorrect: true, TimeTakenMs: 2000,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	var resp attemptResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.XP)

	rr = get(t, server, "/usage?studentID=s1")
	require.Equal(t, http.StatusOK, rr.Code)
	var usage league.DailyUsage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &usage))
	assert.Equal(t, 1, usage.Attempts)
	assert.Equal(t, 0, usage.XPEarned)
}

func TestAttemptHandler_UnknownStudent(t *testing.T) {
	server, teardown := setupTestServer(t)
	defer teardown()

	rr := postJSON(t, server, "/attempts", attemptRequest{ID: "a1", StudentID: "ghost", IsCorrect: true, TimeTakenMs: 5000})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAttemptHandler_DryRun(t *testing.T) {
	server, teardown := setupTestServer(t)
	defer teardown()

	require.Equal(t, http.StatusOK, postJSON(t, server, "/students", league.Student{ID: "s1", Name: "Asha", Grade: 7}).Code)

	rr := postJSON(t, server, "/attempts?dry_run=true", attemptRequest{
		ID: "a1", StudentID: "s1", IsCorrect: true, TimeTakenMs: 5000,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	var resp attemptResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 20, resp.XP)

	// Nothing was persisted.
	rr = get(t, server, "/standings?studentID=s1")
	require.Equal(t, http.StatusOK, rr.Code)
	var standings query.Standings
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &standings))
	assert.Equal(t, query.StatusNone, standings.Status)
}

func TestPubSubAttemptHandler(t *testing.T) {
	server, teardown := setupTestServer(t)
	defer teardown()

	require.Equal(t, http.StatusOK, postJSON(t, server, "/students", league.Student{ID: "s1", Name: "Asha", Grade: 7}).Code)

	payload, err := msgpack.Marshal(attempts.Attempt{
		ID: "a1", StudentID: "s1", TopicID: "algebra", IsCorrect: true, IsBonus: true, TimeTakenMs: 5000,
	})
	require.NoError(t, err)

	envelope := map[string]any{
		"subscription": "projects/test/subscriptions/attempts",
		"message":      map[string]any{"data": base64.StdEncoding.EncodeToString(payload)},
	}
	rr := postJSON(t, server, "/pubsub/attempts", envelope)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp attemptResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.XP, "bonus questions score half")
}

func TestStandingsHandler(t *testing.T) {
	server, teardown := setupTestServer(t)
	defer teardown()

	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("s%d", i)
		require.Equal(t, http.StatusOK, postJSON(t, server, "/students", league.Student{ID: id, Name: "Student " + id, Grade: 7}).Code)
		for x := 0; x < i; x++ {
			rr := postJSON(t, server, "/attempts", attemptRequest{
				ID: fmt.Sprintf("%s-a%d", id, x), StudentID: id, IsCorrect: true, TimeTakenMs: 5000,
			})
			require.Equal(t, http.StatusOK, rr.Code)
		}
	}

	rr := get(t, server, "/standings?studentID=s1")
	require.Equal(t, http.StatusOK, rr.Code)
	var standings query.Standings
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &standings))
	assert.Equal(t, query.StatusOpen, standings.Status)
	require.Len(t, standings.Rows, 3)
	assert.Equal(t, "s3", standings.Rows[0].StudentID)
	assert.Equal(t, 3, standings.YourRank)

	rr = get(t, server, "/standings")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLeaderboardHandler(t *testing.T) {
	server, teardown := setupTestServer(t)
	defer teardown()

	require.Equal(t, http.StatusOK, postJSON(t, server, "/students", league.Student{ID: "s1", Name: "Asha", Grade: 7}).Code)
	require.Equal(t, http.StatusOK, postJSON(t, server, "/attempts", attemptRequest{ID: "a1", StudentID: "s1", IsCorrect: true, TimeTakenMs: 5000}).Code)

	rr := get(t, server, "/leaderboard?limit=5")
	require.Equal(t, http.StatusOK, rr.Code)
	var rows []query.LeaderboardRow
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 20, rows[0].LifetimeXP)
}

func TestRolloverHandler_EndToEnd(t *testing.T) {
	server, teardown := setupTestServer(t)
	defer teardown()

	// Seed last week directly through the store; the HTTP clock is fixed
	// mid-current-week.
	prev := clock.WeekOf(testNow).Prev()
	for i, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, server.Store.UpsertStudent(league.Student{ID: id, Name: "Student " + id, Grade: 7}))
		_, err := server.Store.EnsureMembership(id, prev)
		require.NoError(t, err)
		for x := 0; x <= i; x++ {
			_, err := server.Store.CreditXP(fmt.Sprintf("%s-a%d", id, x), id, 20, prev, prev.Start.Add(time.Hour))
			require.NoError(t, err)
		}
	}

	rr := get(t, server, "/rollover")
	require.Equal(t, http.StatusOK, rr.Code)
	var summary rollover.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Promoted)

	rr = get(t, server, "/last-week?studentID=s3")
	require.Equal(t, http.StatusOK, rr.Code)
	var result query.WeekResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, query.StatusFinal, result.Status)
	assert.Equal(t, "Promoted to Tier 2", result.Banner)
}

func TestRolloverHandler_RejectsOpenWeek(t *testing.T) {
	server, teardown := setupTestServer(t)
	defer teardown()

	current := clock.WeekOf(testNow)
	rr := get(t, server, fmt.Sprintf("/rollover?week_start=%d", current.Key()))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestClearStoreHandler(t *testing.T) {
	server, teardown := setupTestServer(t)
	defer teardown()

	require.Equal(t, http.StatusOK, postJSON(t, server, "/students", league.Student{ID: "s1", Name: "Asha", Grade: 7}).Code)

	rr := get(t, server, "/clear")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = get(t, server, "/students")
	var students []league.Student
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &students))
	assert.Empty(t, students)
}

func TestMetricsEndpoint(t *testing.T) {
	server, teardown := setupTestServer(t)
	defer teardown()

	rr := get(t, server, "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
}
