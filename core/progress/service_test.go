package progress_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulabbr/oratoria/core"
	"github.com/edulabbr/oratoria/core/content"
	"github.com/edulabbr/oratoria/core/lesson"
	"github.com/edulabbr/oratoria/core/progress"
	"github.com/edulabbr/oratoria/core/user"
	"github.com/edulabbr/oratoria/storage/database/dummy"
	"github.com/edulabbr/oratoria/storage/filestore"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type nopMail struct{}

func (nopMail) SendMessages(...*core.EmailMessage) {}

type fixture struct {
	svc     progress.Service
	lsnRepo lesson.Repository
	lsn     lesson.Lesson
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)

	conf := &core.Config{AppName: "Oratoria"}
	usrSvc := user.NewService(dummydb.NewUserRepository(db), nopMail{}, conf)
	lsnRepo := dummydb.NewLessonRepository(db)
	rules := content.NewRuleBased(rand.New(rand.NewSource(42)))
	orch := content.NewOrchestrator(nil, rules, nopLogger{}, 0)
	lsnSvc := lesson.NewService(lsnRepo, filestore.NewMem(), orch, nopMail{}, usrSvc, nopLogger{}, conf)

	lsn, err := lsnSvc.CreateLesson(lesson.NewLesson{Title: "Present Continuous"}, "")
	require.NoError(t, err)

	return &fixture{
		svc:     progress.NewService(dummydb.NewProgressRepository(db), lsnSvc),
		lsnRepo: lsnRepo,
		lsn:     lsn,
	}
}

func (f *fixture) addModule(t *testing.T, modType, targetPhrase string) lesson.Module {
	t.Helper()

	mods, err := f.lsnRepo.CreateModules(context.Background(), lesson.Module{
		LessonID: f.lsn.ID,
		Type:     modType,
		Title:    "Unit 1",
		Content: content.ModuleContent{
			SlideNumber: 1,
			Title:       "Unit 1",
			Oratorio: content.OratorioContent{
				Prompt:       "Fale sobre: Unit 1",
				TargetPhrase: targetPhrase,
			},
		},
	})
	require.NoError(t, err)
	return mods[0]
}

func TestServiceRecordScore(t *testing.T) {
	f := newFixture(t)
	mod := f.addModule(t, lesson.ModuleTypeSummary, "")

	sc, err := f.svc.RecordScore(progress.NewScore{
		ModuleID:         mod.ID,
		Score:            85,
		TimeSpentSeconds: 120,
	}, "student-1")
	require.NoError(t, err)

	assert.Equal(t, "student-1", sc.StudentID)
	assert.Equal(t, mod.ID, sc.ModuleID)
	assert.Equal(t, f.lsn.ID, sc.LessonID)
	assert.Equal(t, lesson.ModuleTypeSummary, sc.ModuleType)
	assert.Equal(t, 85, sc.Score)
}

func TestServiceRecordScoreUnknownModule(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RecordScore(progress.NewScore{ModuleID: "nope", Score: 10}, "student-1")
	assert.Error(t, err)
}

func TestServiceRecordSpeechAttempt(t *testing.T) {
	f := newFixture(t)
	mod := f.addModule(t, lesson.ModuleTypeSpeaking, "the present continuous")

	res, err := f.svc.RecordSpeechAttempt(progress.NewSpeechAttempt{
		ModuleID:         mod.ID,
		Transcript:       "The present continuous!",
		TimeSpentSeconds: 30,
	}, "student-1")
	require.NoError(t, err)

	assert.Equal(t, 100, res.Score)
	assert.NotEmpty(t, res.Feedback.Title)

	scores, err := f.svc.QueryStudentScores("student-1")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, lesson.ModuleTypeSpeaking, scores[0].ModuleType)
	assert.Equal(t, 100, scores[0].Score)
}

func TestServiceRecordSpeechAttemptNoExercise(t *testing.T) {
	f := newFixture(t)
	mods, err := f.lsnRepo.CreateModules(context.Background(), lesson.Module{
		LessonID: f.lsn.ID,
		Type:     lesson.ModuleTypeSummary,
		Title:    "No speaking here",
		Content:  content.ModuleContent{SlideNumber: 1, Title: "No speaking here"},
	})
	require.NoError(t, err)

	_, err = f.svc.RecordSpeechAttempt(progress.NewSpeechAttempt{
		ModuleID:   mods[0].ID,
		Transcript: "anything",
	}, "student-1")
	assert.Equal(t, progress.ErrNotSpeakingModule, err)
}

func TestServiceDashboards(t *testing.T) {
	f := newFixture(t)
	mod := f.addModule(t, lesson.ModuleTypeSummary, "")

	for _, rec := range []struct {
		student string
		score   int
	}{
		{"student-1", 80},
		{"student-1", 90},
		{"student-2", 60},
	} {
		_, err := f.svc.RecordScore(progress.NewScore{ModuleID: mod.ID, Score: rec.score}, rec.student)
		require.NoError(t, err)
	}

	dash, err := f.svc.StudentDashboard("student-1")
	require.NoError(t, err)
	require.Len(t, dash, 1)
	assert.Equal(t, f.lsn.ID, dash[0].LessonID)
	assert.Equal(t, 2, dash[0].ModulesCompleted)
	assert.InDelta(t, 85.0, dash[0].AverageScore, 0.001)

	all, err := f.svc.TeacherAnalytics()
	require.NoError(t, err)
	assert.Len(t, all, 2) // one row per (student, lesson)
}
