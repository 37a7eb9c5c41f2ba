package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/edulabbr/oratoria/core/lesson"
	"github.com/edulabbr/oratoria/core/progress"
	"github.com/edulabbr/oratoria/core/speech"
	"github.com/edulabbr/oratoria/core/user"
)

// processLesson runs a deck through the pipeline and returns its modules.
func processLesson(t *testing.T, teacher user.User, slideCount int) (lesson.Lesson, []lesson.Module) {
	t.Helper()

	up, _, err := lsnSvc.Upload(lesson.NewUpload{Filename: "deck.pptx"}, buildTestDeck(t, slideCount), teacher)
	if err != nil {
		t.Fatalf("Upload(): %v", err)
	}
	lsn, mods, err := lsnSvc.ProcessUpload(up.ID)
	if err != nil {
		t.Fatalf("ProcessUpload(): %v", err)
	}
	return lsn, mods
}

func Test_progressApi_createScore(t *testing.T) {
	teacher := createUser(t, "Sc Teacher", "scteach", "scteach@test.com", []string{user.RoleTeacher})
	student := createUser(t, "Sc Student", "scstud", "scstud@test.com", []string{user.RoleStudent})
	lsn, mods := processLesson(t, teacher, 1)
	token := getToken(t, student)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "required fields", token: token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"module_id": "this field is required"}),
		},
		{
			name: "score out of range", token: token, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, progress.NewScore{ModuleID: mods[0].ID, Score: 101}),
			wantData: marchallObj(t, map[string]string{"score": "score must be 100 or less"}),
		},
		{
			name: "unknown module", token: token, wantCode: http.StatusNotFound,
			body:     marchallObj(t, progress.NewScore{ModuleID: "b5a9f6e2-0000-0000-0000-000000000000", Score: 80}),
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Created", token: token, wantCode: http.StatusCreated,
			body: marchallObj(t, progress.NewScore{ModuleID: mods[0].ID, Score: 85, TimeSpentSeconds: 120}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/scores"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var sc progress.Score
				if err := json.Unmarshal(rec.Body.Bytes(), &sc); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if sc.LessonID != lsn.ID {
					t.Errorf("failed! LessonID = %v; want %v", sc.LessonID, lsn.ID)
				}
				if sc.StudentID != student.ID {
					t.Errorf("failed! StudentID = %v; want %v", sc.StudentID, student.ID)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_progressApi_scoreSpeech(t *testing.T) {
	teacher := createUser(t, "Sp Teacher", "spteach", "spteach@test.com", []string{user.RoleTeacher})
	student := createUser(t, "Sp Student", "spstud", "spstud@test.com", []string{user.RoleStudent})
	_, mods := processLesson(t, teacher, 1)
	token := getToken(t, student)

	target := mods[0].Content.Oratorio.TargetPhrase
	if target == "" {
		t.Fatal("generated module has no target phrase")
	}

	// a perfect transcript scores 100
	req, rec := newAuthRequest(http.MethodPost, "/v1/speech/score", token,
		marchallObj(t, progress.NewSpeechAttempt{ModuleID: mods[0].ID, Transcript: target, TimeSpentSeconds: 30}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var res progress.SpeechResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if res.Score != 100 {
		t.Errorf("failed! score = %d; want 100", res.Score)
	}
	if res.Feedback.Tier != speech.TierTop {
		t.Errorf("failed! tier = %v; want %v", res.Feedback.Tier, speech.TierTop)
	}

	// the attempt lands in the student's scores as a speaking module
	scores, err := prgSvc.QueryStudentScores(student.ID)
	if err != nil {
		t.Fatalf("QueryStudentScores(): %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("failed! len(scores) = %d; want 1", len(scores))
	}
	if scores[0].ModuleType != lesson.ModuleTypeSpeaking {
		t.Errorf("failed! ModuleType = %v; want %v", scores[0].ModuleType, lesson.ModuleTypeSpeaking)
	}
}

func Test_progressApi_dashboards(t *testing.T) {
	teacher := createUser(t, "Da Teacher", "dateach", "dateach@test.com", []string{user.RoleTeacher})
	student := createUser(t, "Da Student", "dastud", "dastud@test.com", []string{user.RoleStudent})
	_, mods := processLesson(t, teacher, 2)

	if _, err := prgSvc.RecordScore(progress.NewScore{ModuleID: mods[0].ID, Score: 80, TimeSpentSeconds: 60}, student.ID); err != nil {
		t.Fatalf("RecordScore(): %v", err)
	}
	if _, err := prgSvc.RecordScore(progress.NewScore{ModuleID: mods[1].ID, Score: 90, TimeSpentSeconds: 40}, student.ID); err != nil {
		t.Fatalf("RecordScore(): %v", err)
	}

	// student dashboard
	req, rec := newAuthRequest(http.MethodGet, "/v1/progress/me", getToken(t, student))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
	}
	var perfs []progress.StudentPerformance
	if err := json.Unmarshal(rec.Body.Bytes(), &perfs); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if len(perfs) != 1 {
		t.Fatalf("failed! len(perfs) = %d; want 1", len(perfs))
	}
	if perfs[0].AverageScore != 85 {
		t.Errorf("failed! AverageScore = %v; want 85", perfs[0].AverageScore)
	}
	if perfs[0].ModulesCompleted != 2 {
		t.Errorf("failed! ModulesCompleted = %d; want 2", perfs[0].ModulesCompleted)
	}
	if perfs[0].TimeSpentSeconds != 100 {
		t.Errorf("failed! TimeSpentSeconds = %d; want 100", perfs[0].TimeSpentSeconds)
	}

	// teacher analytics gating
	req, rec = newAuthRequest(http.MethodGet, "/v1/progress/students", getToken(t, student))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)

	req, rec = newAuthRequest(http.MethodGet, "/v1/progress/students", getToken(t, teacher))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &perfs); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	found := false
	for _, p := range perfs {
		if p.StudentID == student.ID {
			found = true
			if p.StudentName != student.Name {
				t.Errorf("failed! StudentName = %v; want %v", p.StudentName, student.Name)
			}
		}
	}
	if !found {
		t.Error("failed! student missing from analytics")
	}
}
