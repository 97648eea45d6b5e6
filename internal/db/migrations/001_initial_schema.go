package migrations

import "time"

// InitialSchema creates the telemetry history and statistics tables
var InitialSchema = &Migration{
	ID:   "001_initial_schema",
	Name: "001_initial_schema",
	UpSQL: `
		CREATE EXTENSION IF NOT EXISTS timescaledb;

		-- Written by the balloon recorder, read by the tracker on cold load.
		-- Sensor columns are nullable: a missing reading is gap-filled on load.
		CREATE TABLE IF NOT EXISTS telemetry_samples (
			time TIMESTAMPTZ NOT NULL,
			altitude DOUBLE PRECISION,
			speed DOUBLE PRECISION,
			heading DOUBLE PRECISION,
			climb DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			latitude DOUBLE PRECISION
		);

		SELECT create_hypertable('telemetry_samples', 'time');

		CREATE TABLE IF NOT EXISTS system_stats (
			time TIMESTAMPTZ NOT NULL,
			cold_loads BIGINT NOT NULL,
			cold_load_errors BIGINT NOT NULL,
			polls BIGINT NOT NULL,
			poll_errors BIGINT NOT NULL,
			merged_samples BIGINT NOT NULL,
			stale_samples BIGINT NOT NULL,
			replay_advances BIGINT NOT NULL,
			drags BIGINT NOT NULL,
			scrubs BIGINT NOT NULL,
			publish_errors BIGINT NOT NULL,
			frame_length BIGINT NOT NULL,
			processing_time_ms BIGINT NOT NULL,
			uptime_seconds BIGINT NOT NULL
		);

		SELECT create_hypertable('system_stats', 'time');

		CREATE INDEX IF NOT EXISTS idx_system_stats_time ON system_stats (time DESC);
	`,
	DownSQL: `
		DROP TABLE IF EXISTS system_stats;
		DROP TABLE IF EXISTS telemetry_samples;
	`,
	CreatedAt: time.Now(),
}
