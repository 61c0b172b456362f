package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/benvon/mindful-harmony/internal/middleware"
	"github.com/benvon/mindful-harmony/internal/services/speech"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const voiceUnavailableMessage = "Voice transcription not available. Please use browser speech-to-text."

// VoiceHandler handles audio transcription requests
type VoiceHandler struct {
	transcriber speech.Transcriber
	logger      *zap.Logger
}

// NewVoiceHandler creates a new voice handler. A nil transcriber makes
// every request fail with a pointer to client-side recognition.
func NewVoiceHandler(transcriber speech.Transcriber, log *zap.Logger) *VoiceHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &VoiceHandler{transcriber: transcriber, logger: log}
}

// RegisterRoutes registers voice routes on the given router
// The router should already have the /api/voice prefix
func (h *VoiceHandler) RegisterRoutes(r *mux.Router, auth AuthMiddleware) {
	_, optional := routeAuth(auth)
	r.Handle("/transcribe", wrap(optional, h.Transcribe)).Methods("POST")
}

// Transcribe converts an uploaded audio file to text.
func (h *VoiceHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if h.transcriber == nil {
		badRequest(w, voiceUnavailableMessage)
		return
	}

	if err := r.ParseMultipartForm(middleware.MaxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Audio file too large")
			return
		}
		badRequest(w, "Invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("audio")
	if err != nil {
		badRequest(w, "No audio file provided")
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > middleware.MaxUploadSize {
		respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Audio file too large")
		return
	}
	audio, err := io.ReadAll(io.LimitReader(file, middleware.MaxUploadSize))
	if err != nil {
		badRequest(w, "Failed to read audio file")
		return
	}
	if len(audio) == 0 {
		badRequest(w, "No audio file provided")
		return
	}

	result, err := h.transcriber.Transcribe(providerContext(r), audio, header.Header.Get("Content-Type"))
	if errors.Is(err, speech.ErrUnavailable) {
		badRequest(w, voiceUnavailableMessage)
		return
	}
	if err != nil {
		h.logger.Error("voice_transcription_failed", zap.Int("audio_bytes", len(audio)), zap.Error(err))
		internalError(w, "Failed to transcribe audio")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
