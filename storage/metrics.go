package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"nutrition-engine/models"
)

// MetricStore implements models.MetricRepository.
type MetricStore struct {
	db *DB
}

const sampleColumns = `id, user_id, metric_type, value, unit, recorded_date, recorded_time, is_goal, notes`

// GetHistory returns samples recorded on or after today minus sinceDays,
// goals included. sinceDays <= 0 returns the full history.
func (s *MetricStore) GetHistory(ctx context.Context, userID string, metricType models.MetricType, sinceDays int) ([]models.MetricSample, error) {
	query := `SELECT ` + sampleColumns + ` FROM metric_samples WHERE user_id = ? AND metric_type = ?`
	args := []any{userID, metricType.String()}
	if sinceDays > 0 {
		query += ` AND recorded_date >= ?`
		args = append(args, formatDate(s.db.now().AddDate(0, 0, -sinceDays)))
	}
	query += ` ORDER BY recorded_date, recorded_time`

	rows, err := s.db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query metric history: %w", err)
	}
	defer rows.Close()

	var out []models.MetricSample
	for rows.Next() {
		sample, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sample)
	}
	return out, rows.Err()
}

func (s *MetricStore) GetLatest(ctx context.Context, userID string, metricType models.MetricType) (*models.MetricSample, error) {
	row := s.db.db.QueryRowContext(ctx,
		`SELECT `+sampleColumns+` FROM metric_samples
		 WHERE user_id = ? AND metric_type = ? AND is_goal = 0
		 ORDER BY recorded_date DESC, recorded_time DESC LIMIT 1`,
		userID, metricType.String())
	sample, err := scanSample(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sample, err
}

// Upsert inserts a sample or, for a measurement, overwrites the one already
// stored for that day. sample.ID is set to the stored row's ID.
func (s *MetricStore) Upsert(ctx context.Context, sample *models.MetricSample) error {
	if sample.ID == "" {
		sample.ID = uuid.New().String()
	}
	now := formatTimestamp(s.db.now())
	conflict := `ON CONFLICT(user_id, metric_type, recorded_date) WHERE is_goal = 0`
	if sample.IsGoal {
		conflict = `ON CONFLICT(id)`
	}
	query := `INSERT INTO metric_samples (` + sampleColumns + `, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ` + conflict + ` DO UPDATE SET
		value = excluded.value,
		unit = excluded.unit,
		recorded_time = excluded.recorded_time,
		notes = excluded.notes,
		updated_at = excluded.updated_at
		RETURNING id`

	var id string
	err := s.db.db.QueryRowContext(ctx, query,
		sample.ID, sample.UserID, sample.Type.String(), sample.Value, sample.Unit,
		formatDate(sample.RecordedDate), sample.RecordedTime, boolInt(sample.IsGoal), sample.Notes,
		now, now,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("upsert metric sample: %w", err)
	}
	sample.ID = id
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSample(row rowScanner) (*models.MetricSample, error) {
	var (
		s          models.MetricSample
		metricType string
		date       string
		isGoal     int
	)
	if err := row.Scan(&s.ID, &s.UserID, &metricType, &s.Value, &s.Unit, &date, &s.RecordedTime, &isGoal, &s.Notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan metric sample: %w", err)
	}
	var err error
	if s.Type, err = models.ParseMetricType(metricType); err != nil {
		return nil, err
	}
	if s.RecordedDate, err = parseDate(date); err != nil {
		return nil, err
	}
	s.IsGoal = isGoal != 0
	return &s, nil
}
