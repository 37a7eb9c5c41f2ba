package tests

import (
	"archive/zip"
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

const slideXMLTmpl = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
       xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree>
    <p:sp>
      <p:nvSpPr><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>
      <p:txBody><a:p><a:r><a:t>%s</a:t></a:r></a:p></p:txBody>
    </p:sp>
    <p:sp>
      <p:txBody>
        <a:p><a:r><a:t>The present continuous describes ongoing actions</a:t></a:r></a:p>
        <a:p><a:r><a:t>Form it with the verb to be plus an ing form</a:t></a:r></a:p>
      </p:txBody>
    </p:sp>
  </p:spTree></p:cSld>
</p:sld>`

func buildTestDeck(t *testing.T, slideCount int) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i := 1; i <= slideCount; i++ {
		w, err := zw.Create(fmt.Sprintf("ppt/slides/slide%d.xml", i))
		if err != nil {
			t.Fatalf("buildTestDeck(): %v", err)
		}
		if _, err = fmt.Fprintf(w, slideXMLTmpl, fmt.Sprintf("Unit %d", i)); err != nil {
			t.Fatalf("buildTestDeck(): %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("buildTestDeck(): %v", err)
	}
	return buf.Bytes()
}

// newUploadRequest builds a multipart deck upload request.
func newUploadRequest(t *testing.T, token, filename, lessonTitle string, blob []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("newUploadRequest(): %v", err)
	}
	if _, err = fw.Write(blob); err != nil {
		t.Fatalf("newUploadRequest(): %v", err)
	}
	if lessonTitle != "" {
		if err = mw.WriteField("lesson_title", lessonTitle); err != nil {
			t.Fatalf("newUploadRequest(): %v", err)
		}
	}
	if err = mw.Close(); err != nil {
		t.Fatalf("newUploadRequest(): %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}
