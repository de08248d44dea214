package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"growth-hub-quiz/internal/catalog"
	"growth-hub-quiz/internal/domain"
	"growth-hub-quiz/internal/infra/postgres/migrations"
)

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID   string `bun:"id,pk"`
	Data string `bun:"data,type:jsonb"`
}

type courseRow struct {
	bun.BaseModel `bun:"table:courses"`

	ID    string `bun:"id,pk"`
	Title string `bun:"title"`
}

type lessonRow struct {
	bun.BaseModel `bun:"table:lessons"`

	CourseID    string   `bun:"course_id,pk"`
	Number      int      `bun:"number,pk"`
	Title       string   `bun:"title"`
	QuestionIDs []string `bun:"question_ids,array"`
}

// OpenDB opens a bun handle over the pgdriver connector.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("migrator init: %w", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Seed upserts the catalog's questions, courses and lessons in one transaction.
func Seed(ctx context.Context, db *bun.DB, c catalog.Catalog) error {
	questions := make([]questionRow, 0, len(c.Questions))
	for _, q := range c.Questions {
		data, err := domain.EncodeQuestion(q)
		if err != nil {
			return fmt.Errorf("encode question %s: %w", q.QuestionID(), err)
		}
		questions = append(questions, questionRow{ID: q.QuestionID(), Data: string(data)})
	}
	var (
		courses []courseRow
		lessons []lessonRow
	)
	for _, course := range c.Courses {
		courses = append(courses, courseRow{ID: course.ID, Title: course.Title})
		for _, lesson := range course.Lessons {
			ids := lesson.QuestionIDs
			if ids == nil {
				ids = []string{}
			}
			lessons = append(lessons, lessonRow{
				CourseID:    course.ID,
				Number:      lesson.Number,
				Title:       lesson.Title,
				QuestionIDs: ids,
			})
		}
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(questions) > 0 {
			if _, err := tx.NewInsert().Model(&questions).
				On("CONFLICT (id) DO UPDATE").
				Set("data = EXCLUDED.data").
				Exec(ctx); err != nil {
				return fmt.Errorf("seed questions: %w", err)
			}
		}
		if len(courses) > 0 {
			if _, err := tx.NewInsert().Model(&courses).
				On("CONFLICT (id) DO UPDATE").
				Set("title = EXCLUDED.title").
				Exec(ctx); err != nil {
				return fmt.Errorf("seed courses: %w", err)
			}
		}
		if len(lessons) > 0 {
			if _, err := tx.NewInsert().Model(&lessons).
				On("CONFLICT (course_id, number) DO UPDATE").
				Set("title = EXCLUDED.title").
				Set("question_ids = EXCLUDED.question_ids").
				Exec(ctx); err != nil {
				return fmt.Errorf("seed lessons: %w", err)
			}
		}
		return nil
	})
}
