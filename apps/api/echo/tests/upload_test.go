package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	echoapi "github.com/edulabbr/oratoria/apps/api/echo"
	"github.com/edulabbr/oratoria/core/lesson"
	"github.com/edulabbr/oratoria/core/user"
)

func Test_uploadApi_uploadAndProcess(t *testing.T) {
	teacher := createUser(t, "Up Teacher", "upteach", "upteach@test.com", []string{user.RoleTeacher})
	student := createUser(t, "Up Student", "upstud", "upstud@test.com", []string{user.RoleStudent})
	token := getToken(t, teacher)

	// students cannot upload decks
	req, rec := newUploadRequest(t, getToken(t, student), "deck.pptx", "", buildTestDeck(t, 2))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusForbidden)
	}

	// only deck files are accepted
	req, rec = newUploadRequest(t, token, "deck.pdf", "", buildTestDeck(t, 2))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
	}

	// upload
	req, rec = newUploadRequest(t, token, "present-continuous.pptx", "Present Continuous", buildTestDeck(t, 2))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var upResp echoapi.UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &upResp); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if upResp.Upload.Status != lesson.UploadStatusProcessing {
		t.Errorf("failed! status = %v; want %v", upResp.Upload.Status, lesson.UploadStatusProcessing)
	}
	if upResp.Lesson.Title != "Present Continuous" {
		t.Errorf("failed! title = %v; want %v", upResp.Lesson.Title, "Present Continuous")
	}
	if upResp.Lesson.Published() {
		t.Error("failed! new lesson must start unpublished")
	}

	// process
	req, rec = newAuthRequest(http.MethodPost, "/v1/uploads/"+upResp.Upload.ID+"/process", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var prResp echoapi.ProcessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &prResp); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if len(prResp.Modules) != 2 {
		t.Fatalf("failed! len(Modules) = %d; want 2", len(prResp.Modules))
	}
	for i, mod := range prResp.Modules {
		if mod.Content.SlideNumber != i+1 {
			t.Errorf("failed! SlideNumber = %d; want %d", mod.Content.SlideNumber, i+1)
		}
		if mod.Content.Resumo.Text == "" {
			t.Errorf("failed! empty resumo for slide %d", i+1)
		}
	}

	// listed under own uploads
	req, rec = newAuthRequest(http.MethodGet, "/v1/uploads", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
	}
	var uploads []lesson.Upload
	if err := json.Unmarshal(rec.Body.Bytes(), &uploads); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if len(uploads) != 1 {
		t.Fatalf("failed! len(uploads) = %d; want 1", len(uploads))
	}
	if uploads[0].Status != lesson.UploadStatusCompleted {
		t.Errorf("failed! status = %v; want %v", uploads[0].Status, lesson.UploadStatusCompleted)
	}
}

func Test_uploadApi_processCorruptDeck(t *testing.T) {
	teacher := createUser(t, "Bad Teacher", "badteach", "badteach@test.com", []string{user.RoleTeacher})
	token := getToken(t, teacher)

	req, rec := newUploadRequest(t, token, "corrupt.pptx", "", []byte("not a zip"))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusCreated)
	}
	var upResp echoapi.UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &upResp); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/uploads/"+upResp.Upload.ID+"/process", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusUnprocessableEntity, rec.Body.String())
	}

	up, err := lsnSvc.GetUpload(upResp.Upload.ID)
	if err != nil {
		t.Fatalf("GetUpload(): %v", err)
	}
	if up.Status != lesson.UploadStatusError {
		t.Errorf("failed! status = %v; want %v", up.Status, lesson.UploadStatusError)
	}
}

func Test_uploadApi_processRateLimited(t *testing.T) {
	teacher := createUser(t, "RL Teacher", "rlteach", "rlteach@test.com", []string{user.RoleTeacher})
	token := getToken(t, teacher)

	req, rec := newUploadRequest(t, token, "deck.pptx", "", buildTestDeck(t, 1))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusCreated)
	}
	var upResp echoapi.UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &upResp); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}

	processPath := "/v1/uploads/" + upResp.Upload.ID + "/process"
	for i := 1; i <= conf.RateLimit.ProcessMaxRequests; i++ {
		req, rec = newAuthRequest(http.MethodPost, processPath, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: code = %v; wantCode %v", i, rec.Code, http.StatusOK)
		}
	}

	req, rec = newAuthRequest(http.MethodPost, processPath, token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		name:     fmt.Sprintf("request %d", conf.RateLimit.ProcessMaxRequests+1),
		wantCode: http.StatusTooManyRequests,
		wantData: marchallObj(t, errTooMany),
	}, rec)
}
