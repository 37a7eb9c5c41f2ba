package progress

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/edulabbr/oratoria/core/lesson"
	"github.com/edulabbr/oratoria/core/speech"
)

var ErrNotSpeakingModule = errors.New("module has no speaking exercise")

type (
	Repository interface {
		CreateScore(ctx context.Context, sc Score) (Score, error)
		QueryScoresByStudent(ctx context.Context, studentID string) ([]Score, error)
		QueryScoresByLesson(ctx context.Context, lessonID string) ([]Score, error)
		// QueryPerformanceByStudent aggregates the student's scores per lesson.
		QueryPerformanceByStudent(ctx context.Context, studentID string) ([]StudentPerformance, error)
		// QueryPerformanceAll aggregates every student's scores per lesson.
		QueryPerformanceAll(ctx context.Context) ([]StudentPerformance, error)
	}

	// SpeechResult is what a student gets back for one speaking attempt.
	SpeechResult struct {
		Score    int                    `json:"score"`
		Feedback speech.OratoryFeedback `json:"feedback"`
	}

	Service interface {
		// RecordScore persists a client-computed score for a summary or
		// tasks module.
		RecordScore(ns NewScore, studentID string) (Score, error)
		// RecordSpeechAttempt scores the transcript against the module's
		// target phrase server-side and persists the result.
		RecordSpeechAttempt(na NewSpeechAttempt, studentID string) (SpeechResult, error)
		QueryStudentScores(studentID string) ([]Score, error)
		// StudentDashboard returns the student's own per-lesson aggregates.
		StudentDashboard(studentID string) ([]StudentPerformance, error)
		// TeacherAnalytics returns per-(student, lesson) aggregates.
		TeacherAnalytics() ([]StudentPerformance, error)
	}

	service struct {
		repo   Repository
		lsnSvc lesson.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, lsnSvc lesson.Service) Service {
	return &service{
		repo:   repo,
		lsnSvc: lsnSvc,
	}
}

func (svc *service) RecordScore(ns NewScore, studentID string) (Score, error) {
	mod, err := svc.lsnSvc.GetModule(ns.ModuleID)
	if err != nil {
		return Score{}, err
	}
	return svc.repo.CreateScore(context.Background(), Score{
		StudentID:        studentID,
		ModuleID:         mod.ID,
		LessonID:         mod.LessonID,
		ModuleType:       mod.Type,
		Score:            ns.Score,
		TimeSpentSeconds: ns.TimeSpentSeconds,
		CreatedAt:        time.Now().UTC(),
	})
}

func (svc *service) RecordSpeechAttempt(na NewSpeechAttempt, studentID string) (SpeechResult, error) {
	mod, err := svc.lsnSvc.GetModule(na.ModuleID)
	if err != nil {
		return SpeechResult{}, err
	}
	target := mod.Content.Oratorio.TargetPhrase
	if target == "" && mod.Content.Oratorio.Prompt == "" {
		return SpeechResult{}, ErrNotSpeakingModule
	}

	score := speech.Score(na.Transcript, target)
	res := SpeechResult{
		Score:    score,
		Feedback: speech.Feedback(score, target),
	}
	_, err = svc.repo.CreateScore(context.Background(), Score{
		StudentID:        studentID,
		ModuleID:         mod.ID,
		LessonID:         mod.LessonID,
		ModuleType:       lesson.ModuleTypeSpeaking,
		Score:            score,
		TimeSpentSeconds: na.TimeSpentSeconds,
		CreatedAt:        time.Now().UTC(),
	})
	if err != nil {
		return SpeechResult{}, err
	}
	return res, nil
}

func (svc *service) QueryStudentScores(studentID string) ([]Score, error) {
	return svc.repo.QueryScoresByStudent(context.Background(), studentID)
}

func (svc *service) StudentDashboard(studentID string) ([]StudentPerformance, error) {
	return svc.repo.QueryPerformanceByStudent(context.Background(), studentID)
}

func (svc *service) TeacherAnalytics() ([]StudentPerformance, error) {
	return svc.repo.QueryPerformanceAll(context.Background())
}
