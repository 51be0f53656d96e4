package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kvistberg/studyleague/internal/attempts"
	"github.com/kvistberg/studyleague/internal/clock"
	"github.com/kvistberg/studyleague/internal/database"
	"github.com/kvistberg/studyleague/internal/league"
)

var firstNames = []string{"Aarav", "Asha", "Ben", "Chloe", "Dev", "Elena", "Farid", "Grace", "Hari", "Ines", "Jonas", "Kavya", "Liam", "Meera", "Noah", "Priya", "Ravi", "Sofia", "Tariq", "Uma", "Vikram", "Wren", "Yara", "Zoya"}
var lastNames = []string{"Andersen", "Bhat", "Carlsen", "Das", "Eriksen", "Fernandes", "Gupta", "Hansen", "Iyer", "Joshi", "Kumar", "Larsen", "Mehta", "Nair", "Olsen", "Patel", "Rao", "Sharma", "Thomsen", "Verma"}
var topics = []string{"algebra", "geometry", "fractions", "grammar", "vocabulary", "physics", "chemistry", "history"}

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":           "league.db",
		"MIGRATIONS_DIR":    "./migrations",
		"TURSO_PRIMARY_URL": "",
		"TURSO_AUTH_TOKEN":  "",
		"SEED_STUDENTS":     "120",
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, dbTeardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"], cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to open database: %s", err)
	}
	defer dbTeardown()

	numStudents, err := strconv.Atoi(cfg["SEED_STUDENTS"])
	if err != nil || numStudents <= 0 {
		log.Fatalf("Invalid SEED_STUDENTS value: %s", cfg["SEED_STUDENTS"])
	}

	store := league.New(db)
	attemptLog := attempts.New(db)
	now := time.Now()
	week := clock.WeekOf(now)

	log.Info("Seeding students with this week's memberships and attempts...", "count", numStudents)
	startTime := time.Now()

	for i := 0; i < numStudents; i++ {
		student := league.Student{
			ID:    uuid.NewString(),
			Name:  fmt.Sprintf("%s %s", firstNames[rand.Intn(len(firstNames))], lastNames[rand.Intn(len(lastNames))]),
			Grade: 6 + rand.Intn(4),
		}
		if err := store.UpsertStudent(student); err != nil {
			log.Fatalf("Failed to insert student %s: %s", student.Name, err)
		}
		if _, err := store.EnsureMembership(student.ID, week); err != nil {
			log.Fatalf("Failed to enroll student %s: %s", student.Name, err)
		}

		for n := rand.Intn(30); n > 0; n-- {
			attempt := attempts.Attempt{
				ID:          uuid.NewString(),
				StudentID:   student.ID,
				TopicID:     topics[rand.Intn(len(topics))],
				IsCorrect:   rand.Float64() < 0.7,
				IsBonus:     rand.Float64() < 0.1,
				TimeTakenMs: int64(1000 + rand.Intn(29000)),
				CreatedAt:   now,
			}
			if err := attemptLog.Record(attempt); err != nil {
				log.Fatalf("Failed to record attempt: %s", err)
			}
			xp := league.ComputeXP(attempt.IsCorrect, attempt.IsBonus, attempt.TimeTakenMs)
			if _, err := store.CreditXP(attempt.ID, student.ID, xp, week, now); err != nil {
				log.Fatalf("Failed to credit XP: %s", err)
			}
		}
	}

	log.Info("Seeding finished.", "students", numStudents, "duration", time.Since(startTime).String())
}
