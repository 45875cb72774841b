package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"nutrition-engine/models"
)

// MealPlanStore implements models.MealPlanRepository. A plan and its meals
// are always written in one transaction.
type MealPlanStore struct {
	db *DB
}

const mealColumns = `id, meal_plan_id, recipe_id, recipe_name, date, meal_type, servings, planned_macros, is_meal_prep, prep_date, status, notes`

func (s *MealPlanStore) Create(ctx context.Context, plan *models.MealPlan, meals []models.MealPlanMeal) (*models.MealPlan, error) {
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	targets, mealTypes, constraints, metadata, err := encodePlan(plan)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO meal_plans (id, user_id, name, start_date, end_date, duration_days, status,
		   targets, meal_types, constraints, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID, plan.UserID, plan.Name, formatDate(plan.StartDate), formatDate(plan.EndDate), plan.DurationDays,
		plan.Status.String(), targets, mealTypes, constraints, metadata,
		formatTimestamp(plan.CreatedAt), formatTimestamp(plan.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert meal plan: %w", err)
	}
	if err := insertMeals(ctx, tx, plan.ID, meals); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	created := *plan
	return &created, nil
}

// Replace rewrites the plan row and swaps its meals.
func (s *MealPlanStore) Replace(ctx context.Context, plan *models.MealPlan, meals []models.MealPlanMeal) error {
	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	targets, mealTypes, constraints, metadata, err := encodePlan(plan)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE meal_plans SET name = ?, start_date = ?, end_date = ?, duration_days = ?, status = ?,
		   targets = ?, meal_types = ?, constraints = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		plan.Name, formatDate(plan.StartDate), formatDate(plan.EndDate), plan.DurationDays, plan.Status.String(),
		targets, mealTypes, constraints, metadata, formatTimestamp(plan.UpdatedAt), plan.ID)
	if err != nil {
		return fmt.Errorf("update meal plan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("meal plan %s: %w", plan.ID, models.ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM meal_plan_meals WHERE meal_plan_id = ?`, plan.ID); err != nil {
		return fmt.Errorf("clear meals: %w", err)
	}
	if err := insertMeals(ctx, tx, plan.ID, meals); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a plan; its meals go with it.
func (s *MealPlanStore) Delete(ctx context.Context, planID string) error {
	res, err := s.db.db.ExecContext(ctx, `DELETE FROM meal_plans WHERE id = ?`, planID)
	if err != nil {
		return fmt.Errorf("delete meal plan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("meal plan %s: %w", planID, models.ErrNotFound)
	}
	return nil
}

// Get loads a plan with its meals ordered by date and meal type.
func (s *MealPlanStore) Get(ctx context.Context, planID string) (*models.MealPlan, error) {
	var (
		plan                                      models.MealPlan
		start, end, status                        string
		targets, mealTypes, constraints, metadata string
		createdAt, updatedAt                      string
	)
	err := s.db.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, start_date, end_date, duration_days, status,
		        targets, meal_types, constraints, metadata, created_at, updated_at
		 FROM meal_plans WHERE id = ?`, planID,
	).Scan(&plan.ID, &plan.UserID, &plan.Name, &start, &end, &plan.DurationDays, &status,
		&targets, &mealTypes, &constraints, &metadata, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("meal plan %s: %w", planID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup meal plan %s: %w", planID, err)
	}

	if plan.StartDate, err = parseDate(start); err != nil {
		return nil, err
	}
	if plan.EndDate, err = parseDate(end); err != nil {
		return nil, err
	}
	if plan.Status, err = models.ParsePlanStatus(status); err != nil {
		return nil, err
	}
	if plan.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if plan.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		src string
		dst any
	}{
		{targets, &plan.Targets},
		{mealTypes, &plan.MealTypes},
		{constraints, &plan.Constraints},
		{metadata, &plan.Metadata},
	} {
		if err := fromJSON(f.src, f.dst); err != nil {
			return nil, fmt.Errorf("decode meal plan %s: %w", planID, err)
		}
	}

	rows, err := s.db.db.QueryContext(ctx,
		`SELECT `+mealColumns+` FROM meal_plan_meals WHERE meal_plan_id = ? ORDER BY date`, planID)
	if err != nil {
		return nil, fmt.Errorf("query meals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		meal, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		plan.Meals = append(plan.Meals, *meal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(plan.Meals, func(i, j int) bool {
		a, b := plan.Meals[i], plan.Meals[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.MealType < b.MealType
	})
	return &plan, nil
}

func (s *MealPlanStore) GetMeal(ctx context.Context, mealID string) (*models.MealPlanMeal, error) {
	row := s.db.db.QueryRowContext(ctx, `SELECT `+mealColumns+` FROM meal_plan_meals WHERE id = ?`, mealID)
	meal, err := scanMeal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("meal %s: %w", mealID, models.ErrNotFound)
	}
	return meal, err
}

func (s *MealPlanStore) UpdateMeal(ctx context.Context, meal *models.MealPlanMeal) error {
	macros, err := toJSON(meal.PlannedMacros)
	if err != nil {
		return fmt.Errorf("encode macros: %w", err)
	}
	res, err := s.db.db.ExecContext(ctx,
		`UPDATE meal_plan_meals SET recipe_id = ?, recipe_name = ?, servings = ?, planned_macros = ?,
		   is_meal_prep = ?, prep_date = ?, status = ?, notes = ?
		 WHERE id = ?`,
		meal.RecipeID, meal.RecipeName, meal.Servings, macros,
		boolInt(meal.IsMealPrep), nullableDate(meal), meal.Status.String(), meal.Notes, meal.ID)
	if err != nil {
		return fmt.Errorf("update meal %s: %w", meal.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("meal %s: %w", meal.ID, models.ErrNotFound)
	}
	return nil
}

func encodePlan(plan *models.MealPlan) (targets, mealTypes, constraints, metadata string, err error) {
	if targets, err = toJSON(plan.Targets); err != nil {
		return
	}
	if mealTypes, err = toJSON(plan.MealTypes); err != nil {
		return
	}
	if constraints, err = toJSON(plan.Constraints); err != nil {
		return
	}
	if metadata, err = toJSON(plan.Metadata); err != nil {
		err = fmt.Errorf("encode meal plan: %w", err)
	}
	return
}

func insertMeals(ctx context.Context, tx *sql.Tx, planID string, meals []models.MealPlanMeal) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO meal_plan_meals (`+mealColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare meal insert: %w", err)
	}
	defer stmt.Close()

	for i := range meals {
		m := &meals[i]
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		m.MealPlanID = planID
		macros, err := toJSON(m.PlannedMacros)
		if err != nil {
			return fmt.Errorf("encode macros: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			m.ID, planID, m.RecipeID, m.RecipeName, formatDate(m.Date), m.MealType.String(), m.Servings,
			macros, boolInt(m.IsMealPrep), nullableDate(m), m.Status.String(), m.Notes)
		if err != nil {
			return fmt.Errorf("insert meal %s: %w", m.ID, err)
		}
	}
	return nil
}

func nullableDate(m *models.MealPlanMeal) any {
	if m.PrepDate == nil {
		return nil
	}
	return formatDate(*m.PrepDate)
}

func scanMeal(row rowScanner) (*models.MealPlanMeal, error) {
	var (
		m                      models.MealPlanMeal
		date, mealType, status string
		macros                 string
		isPrep                 int
		prepDate               sql.NullString
	)
	err := row.Scan(&m.ID, &m.MealPlanID, &m.RecipeID, &m.RecipeName, &date, &mealType, &m.Servings,
		&macros, &isPrep, &prepDate, &status, &m.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan meal: %w", err)
	}
	if m.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	if m.MealType, err = models.ParseMealType(mealType); err != nil {
		return nil, err
	}
	if m.Status, err = models.ParseMealStatus(status); err != nil {
		return nil, err
	}
	if err := fromJSON(macros, &m.PlannedMacros); err != nil {
		return nil, fmt.Errorf("decode macros: %w", err)
	}
	m.IsMealPrep = isPrep != 0
	if prepDate.Valid {
		d, err := parseDate(prepDate.String)
		if err != nil {
			return nil, err
		}
		m.PrepDate = &d
	}
	return &m, nil
}
