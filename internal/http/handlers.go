package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kvistberg/studyleague/internal/attempts"
	"github.com/kvistberg/studyleague/internal/clock"
	"github.com/kvistberg/studyleague/internal/league"
	"github.com/kvistberg/studyleague/internal/rollover"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear entire store")
		s.Store.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

// StudentsHandler lists students on GET and upserts one on POST.
func (s *Server) StudentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var st league.Student
			if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
				log.Error("Failed to decode student", "error", err)
				http.Error(w, "Invalid JSON", http.StatusBadRequest)
				return
			}
			if st.ID == "" {
				http.Error(w, "Student id is required", http.StatusBadRequest)
				return
			}
			if err := s.Store.UpsertStudent(st); err != nil {
				log.Error("Failed to upsert student", "error", err, "studentID", st.ID)
				http.Error(w, "Failed to save student", http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "OK")

		default:
			students, err := s.Store.GetAllStudents()
			if err != nil {
				http.Error(w, "Failed to get students", http.StatusInternalServerError)
				log.Error("Failed to get students from store", "error", err)
				return
			}
			writeJSON(w, students)
		}
	}
}

type attemptRequest struct {
	ID          string `json:"id"`
	StudentID   string `json:"student_id"`
	TopicID     string `json:"topic_id"`
	IsCorrect   bool   `json:"is_correct"`
	IsBonus     bool   `json:"is_bonus"`
	TimeTakenMs int64  `json:"time_taken_ms"`
}

type attemptResponse struct {
	XP       int    `json:"xp"`
	WeeklyXP int    `json:"weekly_xp"`
	LeagueID string `json:"league_id"`
}

// AttemptHandler ingests one scored attempt and credits its XP. This is the
// highest-frequency write path; retries with the same attempt id are no-ops.
func (s *Server) AttemptHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req attemptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode attempt", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.ID == "" || req.StudentID == "" {
			http.Error(w, "Attempt id and student id are required", http.StatusBadRequest)
			return
		}

		a := attempts.Attempt{
			ID:          req.ID,
			StudentID:   req.StudentID,
			TopicID:     req.TopicID,
			IsCorrect:   req.IsCorrect,
			IsBonus:     req.IsBonus,
			TimeTakenMs: req.TimeTakenMs,
		}
		s.handleAttempt(w, r, a)
	}
}

// PubSubAttemptHandler ingests scored attempts pushed by Cloud Pub/Sub. The
// push envelope wraps a base64-encoded MessagePack attempt.
func (s *Server) PubSubAttemptHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received attempt message", "body", string(bodyBytes))

		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"` // base64-encoded message payload
			} `json:"message"`
		}

		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		a := attempts.Attempt{}
		if err := s.pubsub.ProcessMessage(rawData, &a); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}
		if a.ID == "" || a.StudentID == "" {
			http.Error(w, "Attempt id and student id are required", http.StatusBadRequest)
			return
		}
		s.handleAttempt(w, r, a)
	}
}

// handleAttempt runs the shared credit pipeline: ensure this week's
// membership, record the attempt, then credit XP keyed by attempt id.
func (s *Server) handleAttempt(w http.ResponseWriter, r *http.Request, a attempts.Attempt) {
	now := s.Clock.Now()
	week := clock.WeekOf(now)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}

	xp := league.ComputeXP(a.IsCorrect, a.IsBonus, a.TimeTakenMs)

	if isDryRunFromContext(r) {
		log.Info("[Dry Run] Would credit attempt", "attemptID", a.ID, "studentID", a.StudentID, "xp", xp)
		writeJSON(w, attemptResponse{XP: xp})
		return
	}

	if _, err := s.Store.EnsureMembership(a.StudentID, week); err != nil {
		if errors.Is(err, league.ErrNotFound) {
			http.Error(w, "Unknown student", http.StatusNotFound)
			return
		}
		log.Error("Failed to ensure membership", "error", err, "studentID", a.StudentID)
		http.Error(w, "Failed to join league", http.StatusInternalServerError)
		return
	}

	if err := s.Attempts.Record(a); err != nil {
		log.Error("Failed to record attempt", "error", err, "attemptID", a.ID)
		http.Error(w, "Failed to record attempt", http.StatusInternalServerError)
		return
	}

	// Zero-XP attempts still go through: the usage log counts them.
	m, err := s.Store.CreditXP(a.ID, a.StudentID, xp, week, now)
	if err != nil {
		if errors.Is(err, league.ErrWeekClosed) {
			http.Error(w, "Week already rolled over", http.StatusConflict)
			return
		}
		log.Error("Failed to credit XP", "error", err, "attemptID", a.ID)
		http.Error(w, "Failed to credit XP", http.StatusInternalServerError)
		return
	}
	s.Metrics.IncXPCredits()
	s.Metrics.AddXPPoints(float64(xp))

	writeJSON(w, attemptResponse{XP: xp, WeeklyXP: m.WeeklyXP, LeagueID: m.LeagueID})
}

// StandingsHandler serves a student's current league standings.
func (s *Server) StandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := r.URL.Query().Get("studentID")
		if studentID == "" {
			http.Error(w, "studentID is required", http.StatusBadRequest)
			return
		}

		standings, err := s.Query.CurrentStandings(studentID)
		if err != nil {
			http.Error(w, "Failed to get standings", http.StatusInternalServerError)
			log.Error("Failed to get standings", "error", err, "studentID", studentID)
			return
		}
		writeJSON(w, standings)
	}
}

// LastWeekHandler serves a student's finalized result for the prior week.
func (s *Server) LastWeekHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := r.URL.Query().Get("studentID")
		if studentID == "" {
			http.Error(w, "studentID is required", http.StatusBadRequest)
			return
		}

		result, err := s.Query.LastWeekResult(studentID)
		if err != nil {
			http.Error(w, "Failed to get last week result", http.StatusInternalServerError)
			log.Error("Failed to get last week result", "error", err, "studentID", studentID)
			return
		}
		writeJSON(w, result)
	}
}

// LeaderboardHandler serves the all-time leaderboard.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 100
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			parsed, err := strconv.Atoi(limitStr)
			if err == nil && parsed > 0 {
				limit = parsed
			} else {
				log.Warn("Invalid 'limit' parameter provided. Defaulting to 100.", "limit_param", limitStr)
			}
		}

		rows, err := s.Query.AllTimeLeaderboard(limit)
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get leaderboard", "error", err)
			return
		}
		writeJSON(w, rows)
	}
}

// DailyUsageHandler serves a student's per-day usage counters.
func (s *Server) DailyUsageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := r.URL.Query().Get("studentID")
		if studentID == "" {
			http.Error(w, "studentID is required", http.StatusBadRequest)
			return
		}
		day := r.URL.Query().Get("day")
		if day == "" {
			day = clock.DayKey(s.Clock.Now())
		}

		usage, err := s.Store.GetDailyUsage(studentID, day)
		if errors.Is(err, league.ErrNotFound) {
			// Days with no activity read as zeros.
			writeJSON(w, league.DailyUsage{StudentID: studentID, Day: day})
			return
		}
		if err != nil {
			http.Error(w, "Failed to get usage", http.StatusInternalServerError)
			log.Error("Failed to get usage", "error", err, "studentID", studentID)
			return
		}
		writeJSON(w, usage)
	}
}

// RolloverHandler triggers the weekly rollover, as a manual fallback for the
// scheduled run. An explicit week_start (unix seconds) targets an older week.
func (s *Server) RolloverHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)

		var summary *rollover.Summary
		var err error
		if weekStr := r.URL.Query().Get("week_start"); weekStr != "" {
			unix, parseErr := strconv.ParseInt(weekStr, 10, 64)
			if parseErr != nil {
				http.Error(w, "Invalid week_start", http.StatusBadRequest)
				return
			}
			week := clock.WeekOf(time.Unix(unix, 0))
			summary, err = s.Rollover.Process(week, isDryRun)
		} else {
			summary, err = s.Rollover.ProcessWeeklyLeagues(isDryRun)
		}

		if err != nil {
			if errors.Is(err, rollover.ErrWeekOpen) {
				http.Error(w, "Week has not ended yet", http.StatusBadRequest)
				return
			}
			log.Error("Rollover failed", "error", err)
			http.Error(w, "Rollover failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, summary)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}
