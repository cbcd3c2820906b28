package tts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tahcohcat/steamwrapped-web/internal/models"
)

var ErrNotConfigured = errors.New("text to speech not configured")

// Narrator turns recap text into MP3 audio.
type Narrator interface {
	Narrate(ctx context.Context, text string) ([]byte, error)
	Name() string
}

// RecapText is the spoken summary of a wrapped bundle.
func RecapText(b *models.MetricBundle) string {
	if b == nil {
		return ""
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("In total you have played for %d hours across %d games.",
		b.Stats.TotalPlaytimeHours, b.Stats.GameCount))

	if b.TopGame != nil && b.TopGame.Name != "" {
		parts = append(parts, fmt.Sprintf("Your most played game was %s with %d hours.",
			b.TopGame.Name, b.TopGame.PlaytimeForever/60))
	}
	if b.TopGenre != "" && len(b.GenreBreakdown) > 0 {
		parts = append(parts, fmt.Sprintf("Your favorite genre was %s.", b.TopGenre))
	}
	if len(b.TopDevelopers) > 0 && b.TopDevelopers[0].Hours > 0 {
		parts = append(parts, fmt.Sprintf("You spent the most time with games by %s.", b.TopDevelopers[0].Name))
	}
	if b.Personality.Title != "" {
		parts = append(parts, fmt.Sprintf("Your gaming personality: %s. %s", b.Personality.Title, b.Personality.Desc))
	}
	parts = append(parts, fmt.Sprintf("Your gaming energy score is %d.", b.EnergyScore.Score))
	if len(b.Analogies) > 0 {
		parts = append(parts, b.Analogies[0])
	}

	return strings.Join(parts, " ")
}
