package speech

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	speechsvc "github.com/zhouzirui/z-butler/backend/internal/service/speech"
)

type fakeVoiceLister struct {
	voices []speechsvc.Voice
}

func (f *fakeVoiceLister) Voices() []speechsvc.Voice { return f.voices }

func newTestRouter(voices VoiceLister) http.Handler {
	router := chi.NewRouter()
	New(voices).RegisterRoutes(router)
	return router
}

func TestHandleEngines(t *testing.T) {
	router := newTestRouter(&fakeVoiceLister{voices: []speechsvc.Voice{{ID: "en-gb-x-rp", Name: "English_(Received_Pronunciation)"}}})

	req := httptest.NewRequest(http.MethodGet, "/speech/engines", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	var payload struct {
		Engines []string         `json:"engines"`
		Voices  []speechsvc.Voice `json:"voices"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode err: %v", err)
	}

	hasDefault := false
	for _, id := range payload.Engines {
		if id == speechsvc.DefaultCloudEngineID {
			hasDefault = true
		}
	}
	if !hasDefault {
		t.Fatalf("engines %v missing default", payload.Engines)
	}
	if len(payload.Voices) != 1 || payload.Voices[0].ID != "en-gb-x-rp" {
		t.Fatalf("unexpected voices: %+v", payload.Voices)
	}
}

func TestHandleEnginesNoLocalVoices(t *testing.T) {
	router := newTestRouter(&fakeVoiceLister{})

	req := httptest.NewRequest(http.MethodGet, "/speech/engines", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("capability discovery must not fail without local voices, status %d", rr.Code)
	}

	var payload struct {
		Voices []speechsvc.Voice `json:"voices"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if payload.Voices == nil || len(payload.Voices) != 0 {
		t.Fatalf("expected empty voice list, got %+v", payload.Voices)
	}
}

func TestHandleVoiceUpload(t *testing.T) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "sample.wav")
	if err != nil {
		t.Fatalf("CreateFormFile err: %v", err)
	}
	if _, err := part.Write([]byte("fake-wav")); err != nil {
		t.Fatalf("write audio err: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("writer.Close err: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/voice", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	newTestRouter(&fakeVoiceLister{}).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rr.Code, rr.Body.String())
	}

	var payload map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if payload["transcript"] == "" {
		t.Fatal("expected a transcript acknowledgement")
	}
}

func TestHandleVoiceUploadMissingFile(t *testing.T) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/voice", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	newTestRouter(&fakeVoiceLister{}).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", rr.Code)
	}
}
