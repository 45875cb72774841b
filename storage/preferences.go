package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nutrition-engine/models"
)

// PreferenceStore implements models.PreferenceRepository.
type PreferenceStore struct {
	db *DB
}

// Get returns nil, nil for a user without stored preferences.
func (s *PreferenceStore) Get(ctx context.Context, userID string) (*models.DietaryPreference, error) {
	var data string
	err := s.db.db.QueryRowContext(ctx, `SELECT data FROM dietary_preferences WHERE user_id = ?`, userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup preferences for %s: %w", userID, err)
	}
	var p models.DietaryPreference
	if err := fromJSON(data, &p); err != nil {
		return nil, fmt.Errorf("decode preferences for %s: %w", userID, err)
	}
	return &p, nil
}

func (s *PreferenceStore) Save(ctx context.Context, p *models.DietaryPreference) error {
	if p.UserID == "" {
		return models.NewValidationError("user_id", "is required")
	}
	data, err := toJSON(p)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	_, err = s.db.db.ExecContext(ctx,
		`INSERT INTO dietary_preferences (user_id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		p.UserID, data, formatTimestamp(s.db.now()))
	if err != nil {
		return fmt.Errorf("save preferences for %s: %w", p.UserID, err)
	}
	return nil
}
