package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	internalerrors "github.com/Schera-ole/agentmon/internal/errors"
	models "github.com/Schera-ole/agentmon/internal/model"
)

// DBJournal implements the Journal interface on top of PostgreSQL, giving the
// alert history durability across restarts.
type DBJournal struct {
	db *sql.DB
}

// retryDelays are the pauses between attempts for retryable write failures.
var retryDelays = []time.Duration{100 * time.Millisecond, 300 * time.Millisecond, 500 * time.Millisecond}

// NewDBJournal opens a journal over the given DSN.
func NewDBJournal(dsn string) (*DBJournal, error) {
	dbConnect, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &DBJournal{db: dbConnect}, nil
}

// isRetryableError reports whether a failed write is worth retrying.
func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgerrcode.IsConnectionException(pgErr.Code) {
			return true
		}
		if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
			return true
		}
	}

	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection reset by peer") {
		return true
	}

	return false
}

// Append stores one alert event, retrying transient failures with short
// delays so a flapping connection does not lose the episode record outright.
func (dj *DBJournal) Append(ctx context.Context, event models.AlertEvent) error {
	query := `INSERT INTO alert_events
		(id, rule_id, metric_name, kind, value, threshold, severity, fired_at, first_breach)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	var lastErr error
	for attempt := 0; attempt <= len(retryDelays); attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelays[attempt-1])
		}
		_, err := dj.db.ExecContext(ctx, query,
			event.ID, event.RuleID, event.MetricName, event.Kind,
			event.Value, event.Threshold, event.Severity,
			event.Timestamp, event.FirstBreach)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryableError(err) {
			break
		}
	}
	return fmt.Errorf("%w: error saving alert event: %v", internalerrors.ErrJournalUnavailable, lastErr)
}

// Recent returns up to limit events, newest first.
func (dj *DBJournal) Recent(ctx context.Context, limit int) ([]models.AlertEvent, error) {
	query := `SELECT id, rule_id, metric_name, kind, value, threshold, severity, fired_at, first_breach
		FROM alert_events ORDER BY fired_at DESC LIMIT $1`

	rows, err := dj.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error retrieving alert events: %w", err)
	}
	defer rows.Close()

	var events []models.AlertEvent
	for rows.Next() {
		var event models.AlertEvent
		err = rows.Scan(&event.ID, &event.RuleID, &event.MetricName, &event.Kind,
			&event.Value, &event.Threshold, &event.Severity,
			&event.Timestamp, &event.FirstBreach)
		if err != nil {
			return nil, fmt.Errorf("error scanning alert event: %w", err)
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over alert events: %w", err)
	}

	return events, nil
}

// Ping checks the database connection.
func (dj *DBJournal) Ping(ctx context.Context) error {
	if err := dj.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: database ping failed: %v", internalerrors.ErrJournalUnavailable, err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (dj *DBJournal) Close() error {
	return dj.db.Close()
}
