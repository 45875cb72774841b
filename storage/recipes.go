package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"nutrition-engine/models"
)

// RecipeStore implements models.RecipeRepository. The full recipe is kept as
// JSON; the filter columns are copies for indexed queries.
type RecipeStore struct {
	db *DB
}

// Save inserts or replaces recipes in one transaction.
func (s *RecipeStore) Save(ctx context.Context, recipes ...models.Recipe) error {
	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, r := range recipes {
		if r.ID == "" {
			return models.NewValidationError("id", "recipe id is required")
		}
		data, err := toJSON(r)
		if err != nil {
			return fmt.Errorf("encode recipe %s: %w", r.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO recipes (id, name, cuisine, category, difficulty, total_time, average_rating, data)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   name = excluded.name, cuisine = excluded.cuisine, category = excluded.category,
			   difficulty = excluded.difficulty, total_time = excluded.total_time,
			   average_rating = excluded.average_rating, data = excluded.data`,
			r.ID, r.Name, strings.ToLower(r.Cuisine), r.Category.String(), int(r.Difficulty), r.Minutes(), r.AverageRating, data)
		if err != nil {
			return fmt.Errorf("insert recipe %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// FindCandidates applies the criteria in SQL. Zero-valued fields are ignored.
func (s *RecipeStore) FindCandidates(ctx context.Context, c models.RecipeCriteria) ([]models.Recipe, error) {
	var where []string
	var args []any
	if c.Category != models.CategoryUnknown {
		where = append(where, "category = ?")
		args = append(args, c.Category.String())
	}
	if c.MaxTotalTime > 0 {
		where = append(where, "total_time <= ?")
		args = append(args, c.MaxTotalTime)
	}
	if c.MaxDifficulty != models.DifficultyUnset {
		where = append(where, "difficulty <= ?")
		args = append(args, int(c.MaxDifficulty))
	}
	if c.MinRating > 0 {
		where = append(where, "average_rating >= ?")
		args = append(args, c.MinRating)
	}
	if len(c.Cuisines) > 0 {
		marks := make([]string, len(c.Cuisines))
		for i, cu := range c.Cuisines {
			marks[i] = "?"
			args = append(args, strings.ToLower(strings.TrimSpace(cu)))
		}
		where = append(where, "cuisine IN ("+strings.Join(marks, ", ")+")")
	}

	query := `SELECT data FROM recipes`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	var out []models.Recipe
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		var r models.Recipe
		if err := fromJSON(data, &r); err != nil {
			return nil, fmt.Errorf("decode recipe: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *RecipeStore) Get(ctx context.Context, id string) (*models.Recipe, error) {
	var data string
	err := s.db.db.QueryRowContext(ctx, `SELECT data FROM recipes WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recipe %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup recipe %s: %w", id, err)
	}
	var r models.Recipe
	if err := fromJSON(data, &r); err != nil {
		return nil, fmt.Errorf("decode recipe %s: %w", id, err)
	}
	return &r, nil
}
