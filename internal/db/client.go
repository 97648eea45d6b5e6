package db

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"github.com/saviobatista/ballometer-tracker/internal/types"
)

type Client struct {
	db *sql.DB
}

// New creates a new database client
func New(connStr string) (*Client, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	return &Client{db: db}, nil
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

const historyQuery = `
		SELECT EXTRACT(EPOCH FROM time), altitude, speed, heading, climb,
			longitude, latitude
		FROM telemetry_samples
		ORDER BY time
	`

// LoadHistory reads the recorded trace as a cold-load payload. NULL columns
// become absent values to be gap-filled by the series store.
func (c *Client) LoadHistory(ctx context.Context) (*types.ColdPayload, error) {
	rows, err := c.db.QueryContext(ctx, historyQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payload := &types.ColdPayload{}
	for rows.Next() {
		var (
			ts                         float64
			altitude, speed, heading   sql.NullFloat64
			climb, longitude, latitude sql.NullFloat64
		)
		if err := rows.Scan(&ts, &altitude, &speed, &heading, &climb, &longitude, &latitude); err != nil {
			return nil, err
		}

		payload.Time = append(payload.Time, &ts)
		payload.Altitude = append(payload.Altitude, nullable(altitude))
		payload.Speed = append(payload.Speed, nullable(speed))
		payload.Heading = append(payload.Heading, nullable(heading))
		payload.Climb = append(payload.Climb, nullable(climb))
		payload.Longitude = append(payload.Longitude, nullable(longitude))
		payload.Latitude = append(payload.Latitude, nullable(latitude))
	}
	return payload, rows.Err()
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// StoreSystemStats stores session statistics
func (c *Client) StoreSystemStats(ctx context.Context, stats map[string]interface{}) error {
	query := `
		INSERT INTO system_stats (
			time, cold_loads, cold_load_errors, polls, poll_errors,
			merged_samples, stale_samples, replay_advances, drags, scrubs,
			publish_errors, frame_length, processing_time_ms, uptime_seconds
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
	`

	processingTime := stats["processing_time"].(time.Duration).Milliseconds()
	uptime := stats["uptime"].(time.Duration).Seconds()

	_, err := c.db.ExecContext(ctx, query,
		time.Now(),
		stats["cold_loads"],
		stats["cold_load_errors"],
		stats["polls"],
		stats["poll_errors"],
		stats["merged_samples"],
		stats["stale_samples"],
		stats["replay_advances"],
		stats["drags"],
		stats["scrubs"],
		stats["publish_errors"],
		stats["frame_length"],
		processingTime,
		int64(uptime),
	)

	return err
}

// GetSystemStats retrieves statistics snapshots for a time range
func (c *Client) GetSystemStats(ctx context.Context, start, end time.Time) ([]map[string]interface{}, error) {
	query := `
		SELECT
			time, merged_samples, stale_samples, poll_errors, publish_errors, frame_length
		FROM system_stats
		WHERE time BETWEEN $1 AND $2
		ORDER BY time DESC
	`

	rows, err := c.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []map[string]interface{}
	for rows.Next() {
		var (
			timestamp     time.Time
			mergedSamples int64
			staleSamples  int64
			pollErrors    int64
			publishErrors int64
			frameLength   int64
		)
		if err := rows.Scan(&timestamp, &mergedSamples, &staleSamples, &pollErrors, &publishErrors, &frameLength); err != nil {
			return nil, err
		}

		stats = append(stats, map[string]interface{}{
			"time":           timestamp,
			"merged_samples": mergedSamples,
			"stale_samples":  staleSamples,
			"poll_errors":    pollErrors,
			"publish_errors": publishErrors,
			"frame_length":   frameLength,
		})
	}

	return stats, rows.Err()
}
