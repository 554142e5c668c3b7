package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/yigit/examalloc/internal/app/models"
)

// DemoUser is one seeded user
type DemoUser struct {
	Email      string
	FirstName  string
	LastName   string
	Role       appModels.RoleType
	Identifier string // students only
	Capacity   int    // examiners only, 0 keeps the default
}

// DemoRoster returns a small roster of examiners and students
func DemoRoster(examiners, students int) []DemoUser {
	users := make([]DemoUser, 0, examiners+students)
	for i := 1; i <= examiners; i++ {
		u := DemoUser{
			Email:     fmt.Sprintf("examiner%02d@school.edu.tr", i),
			FirstName: "Examiner",
			LastName:  fmt.Sprintf("%02d", i),
			Role:      appModels.RoleInstructor,
		}
		// every third examiner gets a reduced capacity
		if i%3 == 0 {
			u.Capacity = 5
		}
		users = append(users, u)
	}
	for i := 1; i <= students; i++ {
		users = append(users, DemoUser{
			Email:      fmt.Sprintf("student%03d@school.edu.tr", i),
			FirstName:  "Student",
			LastName:   fmt.Sprintf("%03d", i),
			Role:       appModels.RoleStudent,
			Identifier: fmt.Sprintf("2024%04d", i),
		})
	}
	return users
}

// CreateDemoData inserts the given users unless they already exist.
func CreateDemoData(ctx context.Context, dbPool *pgxpool.Pool, users []DemoUser, lgr zerolog.Logger) error {
	sb := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	lgr.Info().Int("users", len(users)).Msg("Checking/Creating demo roster...")
	var finalErr error // To collect potential errors without stopping the process
	created := 0

	for _, u := range users {
		sql, args, err := sb.Insert("users").
			Columns("email", "first_name", "last_name", "role_type").
			Values(u.Email, u.FirstName, u.LastName, string(u.Role)).
			Suffix("ON CONFLICT (email) DO NOTHING RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build seed user query: %w", err)
		}

		var id int64
		if err := dbPool.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
			if isNoRows(err) {
				continue // already seeded
			}
			lgr.Error().Err(err).Str("email", u.Email).Msg("Error creating demo user")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		created++

		if err := createProfile(ctx, dbPool, sb, id, u); err != nil {
			lgr.Error().Err(err).Str("email", u.Email).Msg("Error creating demo profile")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().Int("created", created).Msg("Demo roster ready")
	return finalErr
}

func createProfile(ctx context.Context, dbPool *pgxpool.Pool, sb squirrel.StatementBuilderType, id int64, u DemoUser) error {
	var builder squirrel.InsertBuilder
	switch {
	case u.Role == appModels.RoleStudent:
		builder = sb.Insert("students").Columns("user_id", "identifier").Values(id, u.Identifier)
	case u.Role == appModels.RoleInstructor && u.Capacity > 0:
		builder = sb.Insert("examiner_capacities").Columns("user_id", "capacity").Values(id, u.Capacity)
	default:
		return nil
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build seed profile query: %w", err)
	}
	_, err = dbPool.Exec(ctx, sql, args...)
	return err
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
