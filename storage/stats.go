package storage

import (
	"fmt"
)

// DailyStats represents click activity for a single day
type DailyStats struct {
	Date          string
	TotalSessions int
	TotalClicks   int64
	SuccessCount  int
	FailureCount  int
}

// ProfileStats represents activity grouped by profile
type ProfileStats struct {
	Profile       string
	TotalSessions int
	TotalClicks   int64
	SuccessCount  int
	FailureCount  int
	AvgDurationMs float64
}

// OverallStats represents activity over a window
type OverallStats struct {
	TotalSessions   int
	TotalClicks     int64
	SuccessCount    int
	FailureCount    int
	AvgClicks       float64
	AvgDurationMs   float64
	TotalDurationMs int64
	AvgCPS          float64
}

// GetDailyStats retrieves activity grouped by date for the last N days
func (db *DB) GetDailyStats(days int) ([]DailyStats, error) {
	query := `
		SELECT
			DATE(started_at) as date,
			COUNT(*) as total_sessions,
			SUM(click_count) as total_clicks,
			SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END) as failure_count
		FROM sessions
		WHERE started_at >= datetime('now', '-' || ? || ' days')
		GROUP BY DATE(started_at)
		ORDER BY date DESC
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []DailyStats
	for rows.Next() {
		var s DailyStats
		err := rows.Scan(&s.Date, &s.TotalSessions, &s.TotalClicks, &s.SuccessCount, &s.FailureCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetProfileStats retrieves activity grouped by profile for the last N days
func (db *DB) GetProfileStats(days int) ([]ProfileStats, error) {
	query := `
		SELECT
			profile,
			COUNT(*) as total_sessions,
			SUM(click_count) as total_clicks,
			SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END) as failure_count,
			AVG(duration_ms) as avg_duration_ms
		FROM sessions
		WHERE started_at >= datetime('now', '-' || ? || ' days')
		GROUP BY profile
		ORDER BY total_sessions DESC
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile stats: %w", err)
	}
	defer rows.Close()

	var stats []ProfileStats
	for rows.Next() {
		var s ProfileStats
		err := rows.Scan(&s.Profile, &s.TotalSessions, &s.TotalClicks, &s.SuccessCount, &s.FailureCount, &s.AvgDurationMs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetOverallStats retrieves totals for the last N days
func (db *DB) GetOverallStats(days int) (*OverallStats, error) {
	query := `
		SELECT
			COUNT(*) as total_sessions,
			COALESCE(SUM(click_count), 0) as total_clicks,
			COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0) as success_count,
			COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0) as failure_count,
			COALESCE(AVG(click_count), 0) as avg_clicks,
			COALESCE(AVG(duration_ms), 0) as avg_duration_ms,
			COALESCE(SUM(duration_ms), 0) as total_duration_ms
		FROM sessions
		WHERE started_at >= datetime('now', '-' || ? || ' days')
	`

	var stats OverallStats
	err := db.conn.QueryRow(query, days).Scan(
		&stats.TotalSessions,
		&stats.TotalClicks,
		&stats.SuccessCount,
		&stats.FailureCount,
		&stats.AvgClicks,
		&stats.AvgDurationMs,
		&stats.TotalDurationMs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query overall stats: %w", err)
	}

	if stats.TotalDurationMs > 0 {
		stats.AvgCPS = float64(stats.TotalClicks) / (float64(stats.TotalDurationMs) / 1000.0)
	}

	return &stats, nil
}
