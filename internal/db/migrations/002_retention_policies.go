package migrations

var RetentionPolicies = &Migration{
	ID:   "002_retention_policies",
	Name: "002_retention_policies",
	UpSQL: `
	SELECT add_retention_policy('system_stats', INTERVAL '90 days');

	CREATE MATERIALIZED VIEW IF NOT EXISTS system_stats_hourly
	WITH (timescaledb.continuous) AS
	SELECT
		time_bucket('1 hour', time) AS hour,
		MAX(merged_samples) AS merged_samples,
		MAX(stale_samples) AS stale_samples,
		MAX(poll_errors) AS poll_errors,
		MAX(frame_length) AS frame_length
	FROM system_stats
	GROUP BY hour
	WITH NO DATA;
	`,
	DownSQL: `
	DROP MATERIALIZED VIEW IF EXISTS system_stats_hourly;
	SELECT remove_retention_policy('system_stats');
	`,
}

// All lists the migrations in application order
func All() []*Migration {
	return []*Migration{
		InitialSchema,
		RetentionPolicies,
	}
}
