package stubserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tallysentry/internal/backend"
	"tallysentry/pkg/database"
)

var (
	// ErrNotFound is returned when a submission id is unknown
	ErrNotFound = errors.New("submission not found")

	// ErrVerified is returned when an update targets a submission
	// that has already been verified
	ErrVerified = errors.New("submission already verified")
)

// Migrations returns the stub backend's schema in version order
func Migrations() []database.Migration {
	return []database.Migration{
		{
			Version: 1,
			Name:    "create_monitors",
			SQL: `
				CREATE TABLE IF NOT EXISTS monitors (
					monitor_id TEXT PRIMARY KEY,
					password TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				);
			`,
		},
		{
			Version: 2,
			Name:    "create_checkins",
			SQL: `
				CREATE TABLE IF NOT EXISTS checkins (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					monitor_id TEXT NOT NULL REFERENCES monitors(monitor_id),
					checked_in_at DATETIME NOT NULL
				);
			`,
		},
		{
			Version: 3,
			Name:    "create_submissions",
			SQL: `
				CREATE TABLE IF NOT EXISTS submissions (
					submission_id TEXT PRIMARY KEY,
					monitor_id TEXT NOT NULL REFERENCES monitors(monitor_id),
					submission_timestamp DATETIME NOT NULL,
					status TEXT NOT NULL DEFAULT 'Pending',
					registered_voters TEXT NOT NULL DEFAULT '',
					nullified_votes TEXT NOT NULL DEFAULT '',
					invalid_votes TEXT NOT NULL DEFAULT '',
					presidential_votes TEXT NOT NULL DEFAULT '',
					parliamentary_votes TEXT NOT NULL DEFAULT '',
					local_gov_votes TEXT NOT NULL DEFAULT '',
					presidential_image TEXT,
					parliamentary_image TEXT,
					local_gov_image TEXT
				);
				CREATE INDEX IF NOT EXISTS idx_submissions_monitor
					ON submissions(monitor_id, submission_timestamp DESC);
			`,
		},
	}
}

// Store is the stub backend's sqlite persistence layer
type Store struct {
	db     *database.DB
	logger *zap.Logger
}

// NewStore creates a store over an already-migrated database
func NewStore(db *database.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// EnsureMonitor creates or updates a monitor credential. Used to seed
// development accounts at startup.
func (s *Store) EnsureMonitor(ctx context.Context, monitorID, password string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO monitors (monitor_id, password) VALUES (?, ?)
		ON CONFLICT(monitor_id) DO UPDATE SET password = excluded.password
	`, monitorID, password)
	if err != nil {
		return fmt.Errorf("failed to seed monitor: %w", err)
	}
	return nil
}

// Authenticate checks a monitor's credentials
func (s *Store) Authenticate(ctx context.Context, monitorID, password string) (bool, error) {
	var stored string
	err := s.db.QueryRowContext(ctx,
		"SELECT password FROM monitors WHERE monitor_id = ?", monitorID,
	).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up monitor: %w", err)
	}
	return stored == password, nil
}

// MonitorExists reports whether the monitor id is known
func (s *Store) MonitorExists(ctx context.Context, monitorID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM monitors WHERE monitor_id = ?", monitorID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RecordCheckIn stores a check-in timestamp for the monitor
func (s *Store) RecordCheckIn(ctx context.Context, monitorID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO checkins (monitor_id, checked_in_at) VALUES (?, ?)",
		monitorID, at.UTC())
	if err != nil {
		return fmt.Errorf("failed to record check-in: %w", err)
	}
	return nil
}

const submissionColumns = `
	submission_id, monitor_id, submission_timestamp, status,
	registered_voters, nullified_votes, invalid_votes,
	presidential_votes, parliamentary_votes, local_gov_votes
`

// ListSubmissions returns the monitor's submissions newest-first
func (s *Store) ListSubmissions(ctx context.Context, monitorID string) ([]backend.SubmissionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+submissionColumns+" FROM submissions WHERE monitor_id = ? ORDER BY submission_timestamp DESC",
		monitorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	records := []backend.SubmissionRecord{}
	for rows.Next() {
		var r backend.SubmissionRecord
		if err := rows.Scan(
			&r.SubmissionID, &r.MonitorID, &r.SubmissionTimestamp, &r.Status,
			&r.RegisteredVoters, &r.NullifiedVotes, &r.InvalidVotes,
			&r.PresidentialVotes, &r.ParliamentaryVotes, &r.LocalGovVotes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CreateSubmission inserts a new pending submission
func (s *Store) CreateSubmission(ctx context.Context, id string, at time.Time, req backend.SubmitRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (
			submission_id, monitor_id, submission_timestamp, status,
			registered_voters, nullified_votes, invalid_votes,
			presidential_votes, parliamentary_votes, local_gov_votes,
			presidential_image, parliamentary_image, local_gov_image
		) VALUES (?, ?, ?, 'Pending', ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id, req.MonitorID, at.UTC(),
		req.RegisteredVoters, req.NullifiedVotes, req.InvalidVotes,
		req.PresidentialVotes, req.ParliamentaryVotes, req.LocalGovVotes,
		req.PresidentialImage, req.ParliamentaryImage, req.LocalGovImage,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// UpdateSubmission replaces a pending submission's fields and images.
// Verified submissions are immutable; the status check and the update
// run in one transaction so a concurrent verification cannot slip in
// between them.
func (s *Store) UpdateSubmission(ctx context.Context, id string, req backend.SubmitRequest) error {
	return s.db.WithTransaction(func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx,
			"SELECT status FROM submissions WHERE submission_id = ? AND monitor_id = ?",
			id, req.MonitorID,
		).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to look up submission: %w", err)
		}
		if backend.Status(status).Verified() {
			return ErrVerified
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE submissions SET
				registered_voters = ?, nullified_votes = ?, invalid_votes = ?,
				presidential_votes = ?, parliamentary_votes = ?, local_gov_votes = ?,
				presidential_image = ?, parliamentary_image = ?, local_gov_image = ?
			WHERE submission_id = ?
		`,
			req.RegisteredVoters, req.NullifiedVotes, req.InvalidVotes,
			req.PresidentialVotes, req.ParliamentaryVotes, req.LocalGovVotes,
			req.PresidentialImage, req.ParliamentaryImage, req.LocalGovImage,
			id,
		)
		if err != nil {
			return fmt.Errorf("failed to update submission: %w", err)
		}
		return nil
	})
}

// SetStatus updates a submission's verification status
func (s *Store) SetStatus(ctx context.Context, id string, status backend.Status) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE submissions SET status = ? WHERE submission_id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
