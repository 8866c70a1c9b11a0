// Package journal stores fired alert events for the dashboard's recent-alerts
// view, either in a bounded in-memory ring or in PostgreSQL.
package journal

import (
	"context"

	models "github.com/Schera-ole/agentmon/internal/model"
)

// Journal is the alert event history backing the system health view.
type Journal interface {
	// Append stores one alert event.
	Append(ctx context.Context, event models.AlertEvent) error

	// Recent returns up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]models.AlertEvent, error)

	// Ping checks the health of the journal backend.
	Ping(ctx context.Context) error

	// Close releases any resources held by the journal.
	Close() error
}
