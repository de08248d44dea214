package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"growth-hub-quiz/internal/domain"
)

// ProgressRecorder persists completions, the learner's current lesson and
// point totals in one transaction per completion.
type ProgressRecorder struct {
	pool                *pgxpool.Pool
	pointsPerCompletion int
}

func NewProgressRecorder(pool *pgxpool.Pool, pointsPerCompletion int) *ProgressRecorder {
	return &ProgressRecorder{pool: pool, pointsPerCompletion: pointsPerCompletion}
}

func (r *ProgressRecorder) RecordCompletion(ctx context.Context, c domain.Completion) (domain.Progress, error) {
	progress := domain.Progress{LearnerID: c.LearnerID}
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		switch c.Ref.Kind {
		case domain.KindLesson:
			progress.NewlyCompleted, err = r.completeLesson(ctx, tx, c)
		case domain.KindCourse:
			progress.NewlyCompleted, err = r.awardBadge(ctx, tx, c)
			progress.BadgeAwarded = true
		default:
			err = fmt.Errorf("quiz %s: %w", c.Ref, domain.ErrInvalidArgument)
		}
		if err != nil {
			return err
		}

		if progress.NewlyCompleted {
			err = tx.QueryRow(ctx, `
				INSERT INTO learner_points (learner_id, points) VALUES ($1, $2)
				ON CONFLICT (learner_id) DO UPDATE SET points = learner_points.points + EXCLUDED.points
				RETURNING points`, c.LearnerID, r.pointsPerCompletion).Scan(&progress.Points)
		} else {
			err = tx.QueryRow(ctx,
				`SELECT COALESCE((SELECT points FROM learner_points WHERE learner_id=$1), 0)`,
				c.LearnerID).Scan(&progress.Points)
		}
		if err != nil {
			return fmt.Errorf("update points: %w", err)
		}

		err = tx.QueryRow(ctx, `
			SELECT
				EXISTS (SELECT 1 FROM course_completions WHERE learner_id=$1 AND course_id=$2),
				COALESCE((SELECT lesson FROM current_lessons WHERE learner_id=$1 AND course_id=$2), 0)`,
			c.LearnerID, c.Ref.CourseID).Scan(&progress.CourseComplete, &progress.CurrentLesson)
		if err != nil {
			return fmt.Errorf("read progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Progress{}, err
	}
	return progress, nil
}

func (r *ProgressRecorder) completeLesson(ctx context.Context, tx pgx.Tx, c domain.Completion) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO lesson_completions (learner_id, course_id, lesson, completed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING`, c.LearnerID, c.Ref.CourseID, c.Ref.Lesson, c.CompletedAt)
	if err != nil {
		return false, fmt.Errorf("insert lesson completion: %w", err)
	}
	newly := tag.RowsAffected() == 1

	if c.FinalLesson() {
		if _, err := tx.Exec(ctx, `
			INSERT INTO course_completions (learner_id, course_id, completed_at)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`, c.LearnerID, c.Ref.CourseID, c.CompletedAt); err != nil {
			return false, fmt.Errorf("insert course completion: %w", err)
		}
		return newly, r.clearCurrentLesson(ctx, tx, c)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO current_lessons (learner_id, course_id, lesson) VALUES ($1, $2, $3)
		ON CONFLICT (learner_id, course_id) DO UPDATE SET lesson = GREATEST(current_lessons.lesson, EXCLUDED.lesson)`,
		c.LearnerID, c.Ref.CourseID, c.Ref.Lesson+1); err != nil {
		return false, fmt.Errorf("update current lesson: %w", err)
	}
	return newly, nil
}

func (r *ProgressRecorder) awardBadge(ctx context.Context, tx pgx.Tx, c domain.Completion) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO course_completions (learner_id, course_id, badge, completed_at)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (learner_id, course_id) DO UPDATE SET badge = TRUE
		WHERE course_completions.badge = FALSE`, c.LearnerID, c.Ref.CourseID, c.CompletedAt)
	if err != nil {
		return false, fmt.Errorf("award badge: %w", err)
	}
	return tag.RowsAffected() == 1, r.clearCurrentLesson(ctx, tx, c)
}

func (r *ProgressRecorder) clearCurrentLesson(ctx context.Context, tx pgx.Tx, c domain.Completion) error {
	if _, err := tx.Exec(ctx, `DELETE FROM current_lessons WHERE learner_id=$1 AND course_id=$2`,
		c.LearnerID, c.Ref.CourseID); err != nil {
		return fmt.Errorf("clear current lesson: %w", err)
	}
	return nil
}

func (r *ProgressRecorder) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
