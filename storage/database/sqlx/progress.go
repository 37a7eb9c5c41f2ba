package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/edulabbr/oratoria/core/progress"
)

type (
	scoreRow struct {
		ID               string      `db:"id"`
		StudentID        string      `db:"student_id"`
		ModuleID         null.String `db:"module_id"`
		LessonID         string      `db:"lesson_id"`
		ModuleType       string      `db:"module_type"`
		Score            int         `db:"score"`
		TimeSpentSeconds int         `db:"time_spent_seconds"`
		CreatedAt        time.Time   `db:"created_at"`
	}

	performanceRow struct {
		StudentID        string    `db:"student_id"`
		StudentName      string    `db:"student_name"`
		LessonID         string    `db:"lesson_id"`
		LessonTitle      string    `db:"lesson_title"`
		AverageScore     float64   `db:"average_score"`
		ModulesCompleted int       `db:"modules_completed"`
		TimeSpentSeconds int       `db:"time_spent_seconds"`
		LastActivity     time.Time `db:"last_activity"`
	}
)

func (r scoreRow) toScore() progress.Score {
	return progress.Score{
		ID:               r.ID,
		StudentID:        r.StudentID,
		ModuleID:         r.ModuleID.String,
		LessonID:         r.LessonID,
		ModuleType:       r.ModuleType,
		Score:            r.Score,
		TimeSpentSeconds: r.TimeSpentSeconds,
		CreatedAt:        r.CreatedAt,
	}
}

func (r performanceRow) toPerformance() progress.StudentPerformance {
	return progress.StudentPerformance{
		StudentID:        r.StudentID,
		StudentName:      r.StudentName,
		LessonID:         r.LessonID,
		LessonTitle:      r.LessonTitle,
		AverageScore:     r.AverageScore,
		ModulesCompleted: r.ModulesCompleted,
		TimeSpentSeconds: r.TimeSpentSeconds,
		LastActivity:     r.LastActivity,
	}
}

const scoreColumns = `id, student_id, module_id, lesson_id, module_type, score, time_spent_seconds, created_at`

const performanceQuery = `
	SELECT s.student_id,
	       u.name AS student_name,
	       s.lesson_id,
	       l.title AS lesson_title,
	       AVG(s.score)::float AS average_score,
	       COUNT(*) AS modules_completed,
	       COALESCE(SUM(s.time_spent_seconds), 0) AS time_spent_seconds,
	       MAX(s.created_at) AS last_activity
	FROM scores s
	JOIN users u ON u.id = s.student_id
	JOIN lessons l ON l.id = s.lesson_id`

const performanceGroupBy = ` GROUP BY s.student_id, u.name, s.lesson_id, l.title
	ORDER BY u.name, l.title`

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) progress.Repository {
	return &progressRepository{db: db}
}

func (repo *progressRepository) CreateScore(ctx context.Context, sc progress.Score) (progress.Score, error) {
	query := `
		INSERT INTO scores (student_id, module_id, lesson_id, module_type, score, time_spent_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + scoreColumns

	var row scoreRow
	err := repo.db.GetContext(ctx, &row, query,
		sc.StudentID, nullStr(sc.ModuleID), sc.LessonID, sc.ModuleType,
		sc.Score, sc.TimeSpentSeconds, sc.CreatedAt)
	if err != nil {
		return progress.Score{}, errors.Wrap(err, "creating score")
	}
	return row.toScore(), nil
}

func (repo *progressRepository) QueryScoresByStudent(ctx context.Context, studentID string) ([]progress.Score, error) {
	query := `SELECT ` + scoreColumns + ` FROM scores WHERE student_id = $1 ORDER BY created_at DESC`
	return repo.queryScores(ctx, query, studentID)
}

func (repo *progressRepository) QueryScoresByLesson(ctx context.Context, lessonID string) ([]progress.Score, error) {
	query := `SELECT ` + scoreColumns + ` FROM scores WHERE lesson_id = $1 ORDER BY created_at DESC`
	return repo.queryScores(ctx, query, lessonID)
}

func (repo *progressRepository) queryScores(ctx context.Context, query string, args ...interface{}) ([]progress.Score, error) {
	var rows []scoreRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying scores")
	}
	scores := make([]progress.Score, len(rows))
	for i, row := range rows {
		scores[i] = row.toScore()
	}
	return scores, nil
}

func (repo *progressRepository) QueryPerformanceByStudent(ctx context.Context, studentID string) ([]progress.StudentPerformance, error) {
	query := performanceQuery + ` WHERE s.student_id = $1` + performanceGroupBy
	return repo.queryPerformance(ctx, query, studentID)
}

func (repo *progressRepository) QueryPerformanceAll(ctx context.Context) ([]progress.StudentPerformance, error) {
	return repo.queryPerformance(ctx, performanceQuery+performanceGroupBy)
}

func (repo *progressRepository) queryPerformance(ctx context.Context, query string, args ...interface{}) ([]progress.StudentPerformance, error) {
	var rows []performanceRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying performance")
	}
	perfs := make([]progress.StudentPerformance, len(rows))
	for i, row := range rows {
		perfs[i] = row.toPerformance()
	}
	return perfs, nil
}
