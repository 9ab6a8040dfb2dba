package speech

import (
	"io"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	speechsvc "github.com/zhouzirui/z-butler/backend/internal/service/speech"
	"github.com/zhouzirui/z-butler/backend/pkg/utils"
)

// VoiceLister abstracts the synthesis capability query for testing.
type VoiceLister interface {
	Voices() []speechsvc.Voice
}

// Handler exposes the speech capability surface over HTTP.
type Handler struct {
	voices VoiceLister
}

// New creates the speech handler.
func New(voices VoiceLister) *Handler {
	return &Handler{voices: voices}
}

// RegisterRoutes mounts capability discovery and the voice upload endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/speech", func(speechRouter chi.Router) {
		speechRouter.Get("/engines", h.handleEngines)
	})
	r.Post("/voice", h.handleVoiceUpload)
}

// handleEngines reports the dispatchable engine ids and the locally
// available voice descriptors. It never fails: an absent on-device engine
// simply yields an empty voice list.
func (h *Handler) handleEngines(w http.ResponseWriter, _ *http.Request) {
	voices := h.voices.Voices()
	if voices == nil {
		voices = []speechsvc.Voice{}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"engines": speechsvc.Engines(),
		"voices":  voices,
	})
}

// handleVoiceUpload accepts an audio recording and acknowledges it with a
// placeholder transcript, pending a real speech-to-text integration.
func (h *Handler) handleVoiceUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "voice-*.wav")
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to buffer audio")
		return
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	size, err := io.Copy(tmp, file)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to read audio")
		return
	}
	log.Printf("[speech] received voice upload name=%s bytes=%d", header.Filename, size)

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"transcript": "I received your audio successfully!",
	})
}
