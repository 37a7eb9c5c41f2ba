package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/edulabbr/oratoria/core/lesson"
	"github.com/edulabbr/oratoria/core/user"
)

func Test_lessonApi_lessonQuery(t *testing.T) {
	teacher := createUser(t, "Lsn Teacher", "lsnteach", "lsnteach@test.com", []string{user.RoleTeacher})
	student := createUser(t, "Lsn Student", "lsnstud", "lsnstud@test.com", []string{user.RoleStudent})

	published, err := lsnSvc.CreateLesson(lesson.NewLesson{Title: "Present Continuous"}, teacher.ID)
	if err != nil {
		t.Fatalf("CreateLesson(): %v", err)
	}
	isPub := true
	published, err = lsnSvc.UpdateLesson(published.ID, lesson.UpdateLesson{IsPublished: &isPub})
	if err != nil {
		t.Fatalf("UpdateLesson(): %v", err)
	}
	draft, err := lsnSvc.CreateLesson(lesson.NewLesson{Title: "Past Simple"}, teacher.ID)
	if err != nil {
		t.Fatalf("CreateLesson(): %v", err)
	}

	path := "/v1/lessons?" + url.Values{"created_by": {teacher.ID}}.Encode()

	tests := []httpTest{
		{name: "Auth required", path: "/v1/lessons", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Teacher sees drafts", path: path, token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallList(t, published, draft),
		},
		{
			name: "Student sees published only", path: path, token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallList(t, published),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_lessonApi_lessonRetrieve(t *testing.T) {
	teacher := createUser(t, "Ret Teacher", "retteach", "retteach@test.com", []string{user.RoleTeacher})
	student := createUser(t, "Ret Student", "retstud", "retstud@test.com", []string{user.RoleStudent})

	draft, err := lsnSvc.CreateLesson(lesson.NewLesson{Title: "Hidden Draft"}, teacher.ID)
	if err != nil {
		t.Fatalf("CreateLesson(): %v", err)
	}

	tests := []httpTest{
		{
			name: "Teacher sees draft", token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallObj(t, draft),
		},
		{
			name: "Draft hidden from student", token: getToken(t, student),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/lessons/" + draft.ID

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_lessonApi_lessonCreate(t *testing.T) {
	teacher := createUser(t, "Cr Teacher", "crteach", "crteach@test.com", []string{user.RoleTeacher})
	student := createUser(t, "Cr Student", "crstud", "crstud@test.com", []string{user.RoleStudent})

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Teacher required", token: getToken(t, student), wantCode: http.StatusForbidden,
			body:     marchallObj(t, lesson.NewLesson{Title: "Nope"}),
			wantData: marchallObj(t, errForbidden),
		},
		{
			name: "required fields", token: getToken(t, teacher), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"title": "this field is required"}),
		},
		{
			name: "Created", token: getToken(t, teacher), wantCode: http.StatusCreated,
			body: marchallObj(t, lesson.NewLesson{Title: "Modal Verbs", CoverEmoji: "🎓"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/lessons"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_lessonApi_courseModules(t *testing.T) {
	teacher := createUser(t, "CM Teacher", "cmteach", "cmteach@test.com", []string{user.RoleTeacher})
	token := getToken(t, teacher)

	// create
	req, rec := newAuthRequest(http.MethodPost, "/v1/course-modules", token,
		marchallObj(t, lesson.NewCourseModule{Title: "Grammar Basics"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	// list
	req, rec = newAuthRequest(http.MethodGet, "/v1/course-modules", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
	}
	var mods []lesson.CourseModule
	if err := json.Unmarshal(rec.Body.Bytes(), &mods); err != nil {
		t.Fatalf("unmarshalling course modules: %v", err)
	}
	if len(mods) == 0 {
		t.Error("failed! no course modules returned")
	}
}
