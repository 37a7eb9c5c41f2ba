package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/edulabbr/oratoria/core/progress"
)

type progressRepository struct {
	db *DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) progress.Repository {
	return &progressRepository{db: db}
}

func (repo *progressRepository) query() []progress.Score {
	scores := make([]progress.Score, 0, len(repo.db.score.table))
	for _, sc := range repo.db.score.table {
		scores = append(scores, *sc)
	}
	return scores
}

func (repo *progressRepository) CreateScore(_ context.Context, sc progress.Score) (progress.Score, error) {
	repo.db.score.Lock()
	defer repo.db.score.Unlock()

	sc.ID = uuid.NewString()
	repo.db.score.table[sc.ID] = &sc
	return sc, nil
}

func (repo *progressRepository) QueryScoresByStudent(_ context.Context, studentID string) ([]progress.Score, error) {
	repo.db.score.RLock()
	defer repo.db.score.RUnlock()

	var scores []progress.Score
	for _, sc := range repo.query() {
		if sc.StudentID == studentID {
			scores = append(scores, sc)
		}
	}
	sortScores(scores)
	return scores, nil
}

func (repo *progressRepository) QueryScoresByLesson(_ context.Context, lessonID string) ([]progress.Score, error) {
	repo.db.score.RLock()
	defer repo.db.score.RUnlock()

	var scores []progress.Score
	for _, sc := range repo.query() {
		if sc.LessonID == lessonID {
			scores = append(scores, sc)
		}
	}
	sortScores(scores)
	return scores, nil
}

func (repo *progressRepository) QueryPerformanceByStudent(ctx context.Context, studentID string) ([]progress.StudentPerformance, error) {
	scores, err := repo.QueryScoresByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return repo.aggregate(scores), nil
}

func (repo *progressRepository) QueryPerformanceAll(_ context.Context) ([]progress.StudentPerformance, error) {
	repo.db.score.RLock()
	defer repo.db.score.RUnlock()
	return repo.aggregate(repo.query()), nil
}

func sortScores(scores []progress.Score) {
	sort.Slice(scores, func(i, j int) bool { return scores[i].CreatedAt.After(scores[j].CreatedAt) })
}

func (repo *progressRepository) aggregate(scores []progress.Score) []progress.StudentPerformance {
	repo.db.user.RLock()
	defer repo.db.user.RUnlock()
	repo.db.lesson.RLock()
	defer repo.db.lesson.RUnlock()

	type key struct{ student, lesson string }

	byKey := make(map[key]*progress.StudentPerformance)
	totals := make(map[key]int)
	var order []key

	for _, sc := range scores {
		k := key{sc.StudentID, sc.LessonID}
		perf, ok := byKey[k]
		if !ok {
			perf = &progress.StudentPerformance{StudentID: sc.StudentID, LessonID: sc.LessonID}
			if usr, found := repo.db.user.table[sc.StudentID]; found {
				perf.StudentName = usr.Name
			}
			if lsn, found := repo.db.lesson.table[sc.LessonID]; found {
				perf.LessonTitle = lsn.Title
			}
			byKey[k] = perf
			order = append(order, k)
		}
		perf.ModulesCompleted++
		perf.TimeSpentSeconds += sc.TimeSpentSeconds
		totals[k] += sc.Score
		if sc.CreatedAt.After(perf.LastActivity) {
			perf.LastActivity = sc.CreatedAt
		}
	}

	out := make([]progress.StudentPerformance, 0, len(order))
	for _, k := range order {
		perf := byKey[k]
		perf.AverageScore = float64(totals[k]) / float64(perf.ModulesCompleted)
		out = append(out, *perf)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StudentID != out[j].StudentID {
			return out[i].StudentID < out[j].StudentID
		}
		return out[i].LessonID < out[j].LessonID
	})
	return out
}
