package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/probuddy/api/internal/model"
)

var (
	ErrJourneyNotFound = errors.New("journey not found")
)

// JourneyRepository persists journeys together with their steps. Every read
// returns a complete snapshot; Save rewrites the step rows of the journey.
type JourneyRepository interface {
	Create(j *model.GoalJourney) error
	ByID(userID, journeyID string) (*model.GoalJourney, error)
	Current(userID string) (*model.GoalJourney, error)
	ByStepID(userID, stepID string) (*model.GoalJourney, error)
	Journeys(userID string) ([]*model.GoalJourney, error)
	Save(j *model.GoalJourney) error
	Delete(userID, journeyID string) error
}

type journeyRepository struct {
	db *sqlx.DB
}

func NewJourneyRepository(db *sqlx.DB) JourneyRepository {
	return &journeyRepository{db: db}
}

const insertStepQuery = `INSERT INTO goal_steps (
	id, journey_id, title, description, custom_title, order_index, status,
	prerequisites, alternatives, path_type, position, estimated_days,
	actual_days_spent, started_at, completed_at, notes, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

func insertSteps(tx *sqlx.Tx, steps []*model.GoalStep) error {
	for _, s := range steps {
		_, err := tx.Exec(insertStepQuery,
			s.ID,
			s.JourneyID,
			s.Title,
			s.Description,
			s.CustomTitle,
			s.OrderIndex,
			s.Status,
			s.Prerequisites,
			s.Alternatives,
			s.PathType,
			s.Position,
			s.EstimatedDays,
			s.ActualDaysSpent,
			s.StartedAt,
			s.CompletedAt,
			s.Notes,
			s.Metadata,
			s.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert step %s: %w", s.ID, err)
		}
	}
	return nil
}

func (r *journeyRepository) Create(j *model.GoalJourney) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO goal_journeys (
		id, user_id, goal_id, goal_content, goal_reason, current_step_index,
		overall_progress, created_at, updated_at, journey_started_at,
		is_ai_generated, ai_notes, map_width, map_height)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = tx.Exec(query,
		j.ID,
		j.UserID,
		j.GoalID,
		j.GoalContent,
		j.GoalReason,
		j.CurrentStepIndex,
		j.OverallProgress,
		j.CreatedAt,
		j.UpdatedAt,
		j.JourneyStartedAt,
		j.IsAIGenerated,
		j.AINotes,
		j.MapWidth,
		j.MapHeight,
	)
	if err != nil {
		return fmt.Errorf("failed to insert journey: %w", err)
	}

	err = insertSteps(tx, j.Steps)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *journeyRepository) ByID(userID, journeyID string) (*model.GoalJourney, error) {
	query := `SELECT * FROM goal_journeys WHERE id = $1 AND user_id = $2`
	return r.load(query, journeyID, userID)
}

// Current returns the user's most recently updated journey.
func (r *journeyRepository) Current(userID string) (*model.GoalJourney, error) {
	query := `SELECT * FROM goal_journeys WHERE user_id = $1
	          ORDER BY COALESCE(updated_at, created_at) DESC LIMIT 1`
	return r.load(query, userID)
}

func (r *journeyRepository) ByStepID(userID, stepID string) (*model.GoalJourney, error) {
	query := `SELECT j.* FROM goal_journeys j
	          JOIN goal_steps s ON s.journey_id = j.id
	          WHERE s.id = $1 AND j.user_id = $2`
	return r.load(query, stepID, userID)
}

// Journeys lists the user's journeys without their steps.
func (r *journeyRepository) Journeys(userID string) ([]*model.GoalJourney, error) {
	journeys := []*model.GoalJourney{}
	query := `SELECT * FROM goal_journeys WHERE user_id = $1
	          ORDER BY COALESCE(updated_at, created_at) DESC`

	err := r.db.Select(&journeys, query, userID)
	if err != nil {
		return nil, err
	}
	return journeys, nil
}

func (r *journeyRepository) load(query string, args ...any) (*model.GoalJourney, error) {
	j := &model.GoalJourney{}
	err := r.db.Get(j, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJourneyNotFound
	}
	if err != nil {
		return nil, err
	}

	steps := []*model.GoalStep{}
	err = r.db.Select(&steps, `SELECT * FROM goal_steps WHERE journey_id = $1 ORDER BY order_index`, j.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load steps: %w", err)
	}
	j.Steps = steps

	return j, nil
}

// Save writes the journey row and replaces its steps in one transaction.
func (r *journeyRepository) Save(j *model.GoalJourney) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE goal_journeys
	          SET goal_id = $1, goal_content = $2, goal_reason = $3,
	              current_step_index = $4, overall_progress = $5, updated_at = $6,
	              ai_notes = $7, map_width = $8, map_height = $9
	          WHERE id = $10 AND user_id = $11`

	result, err := tx.Exec(query,
		j.GoalID,
		j.GoalContent,
		j.GoalReason,
		j.CurrentStepIndex,
		j.OverallProgress,
		j.UpdatedAt,
		j.AINotes,
		j.MapWidth,
		j.MapHeight,
		j.ID,
		j.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update journey: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrJourneyNotFound
	}

	_, err = tx.Exec(`DELETE FROM goal_steps WHERE journey_id = $1`, j.ID)
	if err != nil {
		return fmt.Errorf("failed to clear steps: %w", err)
	}

	err = insertSteps(tx, j.Steps)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *journeyRepository) Delete(userID, journeyID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM goal_journeys WHERE id = $1 AND user_id = $2`, journeyID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrJourneyNotFound
	}

	// Steps cascade on postgres and on sqlite with foreign_keys enabled;
	// delete explicitly for connections opened without the pragma.
	_, err = tx.Exec(`DELETE FROM goal_steps WHERE journey_id = $1`, journeyID)
	if err != nil {
		return err
	}

	return tx.Commit()
}
