package league

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/kvistberg/studyleague/internal/clock"
)

// New creates a new league Store backed by the given database.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// joinRetries bounds how often EnsureMembership retries after losing a seat
// reservation race. Each retry either finds another league with space or
// creates a fresh sibling, so two passes are plenty in practice.
const joinRetries = 3

func (s *store) UpsertStudent(st Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.Tier == 0 {
		st.Tier = MinTier
	}
	_, err := s.db.Exec(`
		INSERT INTO students (id, name, grade, league_tier, lifetime_xp)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			grade = excluded.grade;
	`, st.ID, st.Name, st.Grade, clampTier(st.Tier), st.LifetimeXP)
	if err != nil {
		return fmt.Errorf("failed to upsert student: %w", err)
	}
	return nil
}

func (s *store) GetStudent(id string) (*Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getStudent(s.db, id)
}

// querier lets the same scan helpers run against either the pool or a tx.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

func (s *store) getStudent(q querier, id string) (*Student, error) {
	var st Student
	err := q.QueryRow(`
		SELECT id, name, grade, league_tier, lifetime_xp FROM students WHERE id = ?
	`, id).Scan(&st.ID, &st.Name, &st.Grade, &st.Tier, &st.LifetimeXP)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("student %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &st, nil
}

func (s *store) GetAllStudents() ([]Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, name, grade, league_tier, lifetime_xp FROM students ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.Name, &st.Grade, &st.Tier, &st.LifetimeXP); err != nil {
			log.Error("Failed to scan student row", "error", err)
			continue
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

func (s *store) EnsureMembership(studentID string, week clock.Week) (*Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, err := s.findMembership(s.db, studentID, week); err == nil {
		return m, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	student, err := s.getStudent(s.db, studentID)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < joinRetries; attempt++ {
		m, err := s.joinLeague(student, week)
		if err == nil {
			return m, nil
		}
		if errors.Is(err, ErrLeagueFull) {
			// Lost the seat to a concurrent join; pick another league.
			log.Debug("Seat reservation lost, retrying join", "studentID", studentID, "attempt", attempt)
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("failed to join a league after %d attempts: %w", joinRetries, lastErr)
}

// joinLeague reserves a seat and inserts the membership inside one
// transaction. The conditional member_count increment is the capacity guard:
// if it affects no rows the league filled up in between, and the caller
// retries against a sibling.
func (s *store) joinLeague(student *Student, week clock.Week) (*Membership, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin join transaction: %w", err)
	}

	var leagueID string
	err = tx.QueryRow(`
		SELECT id FROM leagues
		WHERE tier = ? AND grade = ? AND week_start = ? AND member_count < ?
		ORDER BY member_count DESC, id
		LIMIT 1
	`, student.Tier, student.Grade, week.Key(), MaxLeagueSize).Scan(&leagueID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		leagueID, err = s.createLeague(tx, student.Tier, student.Grade, week)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	case err != nil:
		tx.Rollback()
		return nil, fmt.Errorf("failed to find open league: %w", err)
	}

	res, err := tx.Exec(`
		UPDATE leagues SET member_count = member_count + 1
		WHERE id = ? AND member_count < ?
	`, leagueID, MaxLeagueSize)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to reserve league seat: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		return nil, ErrLeagueFull
	}

	m := &Membership{
		ID:        uuid.New().String(),
		StudentID: student.ID,
		LeagueID:  leagueID,
		WeekStart: week.Start,
		JoinedAt:  time.Now(),
	}
	res, err = tx.Exec(`
		INSERT INTO memberships (id, student_id, league_id, week_start, weekly_xp, joined_at)
		VALUES (?, ?, ?, ?, 0, ?)
		ON CONFLICT(student_id, week_start) DO NOTHING
	`, m.ID, m.StudentID, m.LeagueID, week.Key(), m.JoinedAt.UnixMicro())
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to insert membership: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// A concurrent call won the insert; release our seat and return the
		// winner's row so both callers converge on one membership.
		tx.Rollback()
		return s.findMembership(s.db, student.ID, week)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit join transaction: %w", err)
	}
	log.Info("Student joined league", "studentID", student.ID, "leagueID", leagueID, "weekStart", week.Start)
	return m, nil
}

func (s *store) createLeague(tx *sql.Tx, tier, grade int, week clock.Week) (string, error) {
	var siblings int
	if err := tx.QueryRow(`
		SELECT COUNT(*) FROM leagues WHERE tier = ? AND grade = ? AND week_start = ?
	`, tier, grade, week.Key()).Scan(&siblings); err != nil {
		return "", fmt.Errorf("failed to count sibling leagues: %w", err)
	}

	id := uuid.New().String()
	name := fmt.Sprintf("Tier %d · Grade %d · Group %d", tier, grade, siblings+1)
	_, err := tx.Exec(`
		INSERT INTO leagues (id, tier, grade, week_start, week_end, name, member_count, processed)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0)
	`, id, tier, grade, week.Key(), week.End.Unix(), name)
	if err != nil {
		return "", fmt.Errorf("failed to create league: %w", err)
	}
	log.Info("Created league", "leagueID", id, "name", name, "weekStart", week.Start)
	return id, nil
}

func (s *store) GetMembership(studentID string, week clock.Week) (*Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findMembership(s.db, studentID, week)
}

func (s *store) findMembership(q querier, studentID string, week clock.Week) (*Membership, error) {
	row := q.QueryRow(`
		SELECT id, student_id, league_id, week_start, weekly_xp, rank, promoted, demoted, from_tier, to_tier, joined_at
		FROM memberships
		WHERE student_id = ? AND week_start = ?
	`, studentID, week.Key())
	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("membership for student %s: %w", studentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

func scanMembership(scanner interface{ Scan(...any) error }) (*Membership, error) {
	var (
		m         Membership
		weekStart int64
		joinedAt  int64
		rank      sql.NullInt64
		fromTier  sql.NullInt64
		toTier    sql.NullInt64
	)
	err := scanner.Scan(&m.ID, &m.StudentID, &m.LeagueID, &weekStart, &m.WeeklyXP,
		&rank, &m.Promoted, &m.Demoted, &fromTier, &toTier, &joinedAt)
	if err != nil {
		return nil, err
	}
	m.WeekStart = time.Unix(weekStart, 0).In(clock.LeagueZone)
	m.JoinedAt = time.UnixMicro(joinedAt)
	if rank.Valid {
		r := int(rank.Int64)
		m.Rank = &r
	}
	if fromTier.Valid {
		ft := int(fromTier.Int64)
		m.FromTier = &ft
	}
	if toTier.Valid {
		tt := int(toTier.Int64)
		m.ToTier = &tt
	}
	return &m, nil
}

func (s *store) CreditXP(attemptID, studentID string, amount int, week clock.Week, now time.Time) (*Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin credit transaction: %w", err)
	}

	// Idempotency guard: one credit per originating attempt, ever. A retry
	// after a transient failure lands here and becomes a no-op.
	res, err := tx.Exec(`
		INSERT INTO xp_credits (attempt_id, student_id, amount, credited_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(attempt_id) DO NOTHING
	`, attemptID, studentID, amount, now.Unix())
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record xp credit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		log.Debug("Attempt already credited, skipping", "attemptID", attemptID)
		return s.findMembership(s.db, studentID, week)
	}

	var (
		membershipID string
		processed    bool
	)
	err = tx.QueryRow(`
		SELECT m.id, l.processed
		FROM memberships m
		JOIN leagues l ON l.id = m.league_id
		WHERE m.student_id = ? AND m.week_start = ?
	`, studentID, week.Key()).Scan(&membershipID, &processed)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("membership for student %s: %w", studentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to resolve membership for credit: %w", err)
	}
	if processed {
		tx.Rollback()
		return nil, fmt.Errorf("league for week %s: %w", week.Start.Format("2006-01-02"), ErrWeekClosed)
	}

	if amount > 0 {
		if _, err := tx.Exec(`UPDATE memberships SET weekly_xp = weekly_xp + ? WHERE id = ?`, amount, membershipID); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to increment weekly xp: %w", err)
		}
		if _, err := tx.Exec(`UPDATE students SET lifetime_xp = lifetime_xp + ? WHERE id = ?`, amount, studentID); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to increment lifetime xp: %w", err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO usage_log (student_id, day, xp_earned, attempts)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(student_id, day) DO UPDATE SET
			xp_earned = xp_earned + excluded.xp_earned,
			attempts = attempts + 1
	`, studentID, clock.DayKey(now), amount)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update usage log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit credit transaction: %w", err)
	}
	log.Debug("Credited XP", "attemptID", attemptID, "studentID", studentID, "amount", amount)
	return s.findMembership(s.db, studentID, week)
}

func (s *store) GetLeague(id string) (*League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		lg        League
		weekStart int64
		weekEnd   int64
	)
	err := s.db.QueryRow(`
		SELECT id, tier, grade, week_start, week_end, name, member_count, processed
		FROM leagues WHERE id = ?
	`, id).Scan(&lg.ID, &lg.Tier, &lg.Grade, &weekStart, &weekEnd, &lg.Name, &lg.MemberCount, &lg.Processed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("league %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get league: %w", err)
	}
	lg.WeekStart = time.Unix(weekStart, 0).In(clock.LeagueZone)
	lg.WeekEnd = time.Unix(weekEnd, 0).In(clock.LeagueZone)
	return &lg, nil
}

func (s *store) LeagueMembers(leagueID string) ([]Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT m.id, m.student_id, m.league_id, m.week_start, m.weekly_xp, m.rank,
		       m.promoted, m.demoted, m.from_tier, m.to_tier, m.joined_at,
		       s.name, s.grade, s.league_tier
		FROM memberships m
		JOIN students s ON s.id = m.student_id
		WHERE m.league_id = ?
		ORDER BY m.weekly_xp DESC, m.joined_at ASC, m.id ASC
	`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query league members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var (
			m         Member
			weekStart int64
			joinedAt  int64
			rank      sql.NullInt64
			fromTier  sql.NullInt64
			toTier    sql.NullInt64
		)
		err := rows.Scan(&m.ID, &m.StudentID, &m.LeagueID, &weekStart, &m.WeeklyXP,
			&rank, &m.Promoted, &m.Demoted, &fromTier, &toTier, &joinedAt,
			&m.Name, &m.Grade, &m.Tier)
		if err != nil {
			log.Error("Failed to scan member row", "error", err)
			continue
		}
		m.WeekStart = time.Unix(weekStart, 0).In(clock.LeagueZone)
		m.JoinedAt = time.UnixMicro(joinedAt)
		if rank.Valid {
			r := int(rank.Int64)
			m.Rank = &r
		}
		if fromTier.Valid {
			ft := int(fromTier.Int64)
			m.FromTier = &ft
		}
		if toTier.Valid {
			tt := int(toTier.Int64)
			m.ToTier = &tt
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *store) UnprocessedLeagues(week clock.Week) ([]League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, tier, grade, week_start, week_end, name, member_count, processed
		FROM leagues
		WHERE week_start = ? AND processed = 0
		ORDER BY tier, grade, id
	`, week.Key())
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed leagues: %w", err)
	}
	defer rows.Close()

	var leagues []League
	for rows.Next() {
		var (
			lg        League
			weekStart int64
			weekEnd   int64
		)
		if err := rows.Scan(&lg.ID, &lg.Tier, &lg.Grade, &weekStart, &weekEnd, &lg.Name, &lg.MemberCount, &lg.Processed); err != nil {
			log.Error("Failed to scan league row", "error", err)
			continue
		}
		lg.WeekStart = time.Unix(weekStart, 0).In(clock.LeagueZone)
		lg.WeekEnd = time.Unix(weekEnd, 0).In(clock.LeagueZone)
		leagues = append(leagues, lg)
	}
	return leagues, rows.Err()
}

func (s *store) FinalizeLeague(leagueID string, results []RolloverResult) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin rollover transaction: %w", err)
	}

	// The processed flag doubles as the job lock: the conditional update
	// makes re-running the rollover for this league a no-op.
	res, err := tx.Exec(`UPDATE leagues SET processed = 1 WHERE id = ? AND processed = 0`, leagueID)
	if err != nil {
		tx.Rollback()
		return false, fmt.Errorf("failed to mark league processed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		return false, nil
	}

	for _, r := range results {
		_, err := tx.Exec(`
			UPDATE memberships
			SET rank = ?, promoted = ?, demoted = ?, from_tier = ?, to_tier = ?
			WHERE id = ?
		`, r.Rank, r.Promoted, r.Demoted, r.FromTier, r.ToTier, r.MembershipID)
		if err != nil {
			tx.Rollback()
			return false, fmt.Errorf("failed to persist rank for membership %s: %w", r.MembershipID, err)
		}
		_, err = tx.Exec(`UPDATE students SET league_tier = ? WHERE id = ?`, r.ToTier, r.StudentID)
		if err != nil {
			tx.Rollback()
			return false, fmt.Errorf("failed to update tier for student %s: %w", r.StudentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit rollover transaction: %w", err)
	}
	return true, nil
}

func (s *store) AllTimeLeaderboard(limit int) ([]Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, grade, league_tier, lifetime_xp
		FROM students
		ORDER BY lifetime_xp DESC, name ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.Name, &st.Grade, &st.Tier, &st.LifetimeXP); err != nil {
			log.Error("Failed to scan leaderboard row", "error", err)
			continue
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

func (s *store) GetDailyUsage(studentID string, day string) (*DailyUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u DailyUsage
	err := s.db.QueryRow(`
		SELECT student_id, day, xp_earned, attempts FROM usage_log
		WHERE student_id = ? AND day = ?
	`, studentID, day).Scan(&u.StudentID, &u.Day, &u.XPEarned, &u.Attempts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("usage for student %s on %s: %w", studentID, day, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get usage: %w", err)
	}
	return &u, nil
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	for _, table := range []string{"weekly_awards", "usage_log", "xp_credits", "memberships", "leagues", "attempts", "students"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}
