package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/tahcohcat/steamwrapped-web/internal/tts"
)

const narrationTimeout = 30 * time.Second

type NarrationHandler struct {
	wrapped  *WrappedHandler
	narrator tts.Narrator
}

func NewNarrationHandler(wrapped *WrappedHandler, narrator tts.Narrator) *NarrationHandler {
	if narrator == nil {
		narrator = tts.NewDummyTts()
	}
	return &NarrationHandler{wrapped: wrapped, narrator: narrator}
}

// GET /api/v1/shared/{token}/narration - spoken recap of a shared wrapped
func (nh *NarrationHandler) Narrate(w http.ResponseWriter, r *http.Request) {
	bundle, ok := nh.wrapped.sharedBundle(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), narrationTimeout)
	defer cancel()

	audio, err := nh.narrator.Narrate(ctx, tts.RecapText(bundle))
	if errors.Is(err, tts.ErrNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, "Narration is not available")
		return
	} else if err != nil {
		nh.wrapped.logger.WithError(err).Error("failed to generate narration")
		writeError(w, http.StatusInternalServerError, "Failed to generate narration")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(audio)
}
