package tts

import (
	"context"

	"github.com/tahcohcat/steamwrapped-web/internal/logger"
)

type DummyTts struct {
}

func NewDummyTts() *DummyTts {
	return &DummyTts{}
}

func (d *DummyTts) Narrate(_ context.Context, _ string) ([]byte, error) {
	logger.New().Debug("no tts configured. ignoring narration request")
	return nil, ErrNotConfigured
}

func (d *DummyTts) Name() string {
	return "dummy"
}
