package analytics

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeLLM struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeLLM) GenerateResponse(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func (f *fakeLLM) IsModelAvailable(context.Context) error {
	return nil
}

func TestClassifyWithoutGenerator(t *testing.T) {
	got := NewClassifier(nil).Classify(context.Background(), []string{"a"}, nil, 10)
	if got.Title != "The Unknown Gamer" || got.Desc != "A mystery wrapped in an enigma." || got.Emoji != "🎮" {
		t.Fatalf("unexpected fallback: %+v", got)
	}
	if got.Archetype != "" {
		t.Fatalf("fallback should carry no archetype, got %q", got.Archetype)
	}
}

func TestClassifyGeneratorFailure(t *testing.T) {
	model := &fakeLLM{err: errors.New("timeout")}
	got := NewClassifier(model).Classify(context.Background(), nil, nil, 0)
	if got.Title != "The Classic Gamer" || got.Desc != "You love games, and that's what matters." || got.Emoji != "🎮" {
		t.Fatalf("unexpected failure fallback: %+v", got)
	}
}

func TestClassifyParsesReply(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		wantTitle string
		wantDesc  string
		wantEmoji string
	}{
		{"three fields", " Strategic Thinker | Plans ten moves ahead. | 🧠 \n", "Strategic Thinker", "Plans ten moves ahead.", "🧠"},
		{"extra fields", "Explorer|Tries everything.|🧭|extra", "Explorer", "Tries everything.", "🧭"},
		{"two fields", "Speed Demon|Always in a hurry.", "Speed Demon", "Always in a hurry.", "🎮"},
		{"free text", "You just really like games.", "The Gamer", "You just really like games.", "🎮"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewClassifier(&fakeLLM{reply: tt.reply}).Classify(context.Background(), nil, nil, 0)
			if got.Title != tt.wantTitle || got.Desc != tt.wantDesc || got.Emoji != tt.wantEmoji {
				t.Fatalf("expected %q/%q/%q, got %+v", tt.wantTitle, tt.wantDesc, tt.wantEmoji, got)
			}
		})
	}
}

func TestClassifySnapsArchetype(t *testing.T) {
	got := NewClassifier(&fakeLLM{reply: "Story Seeker|Lives for plot twists.|📖"}).Classify(context.Background(), nil, nil, 0)
	if got.Archetype != "Story Seeker" {
		t.Fatalf("expected archetype Story Seeker, got %q", got.Archetype)
	}
}

func TestClassifyPrompt(t *testing.T) {
	model := &fakeLLM{reply: "Completionist|Every last trophy.|🏆"}
	NewClassifier(model).Classify(context.Background(), []string{"Dota 2", "Terraria"}, []string{"Hades"}, 1234)

	for _, want := range []string{
		"Top 5 Games: Dota 2, Terraria",
		"Recently Played: Hades",
		"Total Hours: 1234",
		"- Builder & Crafter (Terraria, Minecraft-like)",
		"Format: Title|Description|Emoji",
	} {
		if !strings.Contains(model.prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, model.prompt)
		}
	}
}
