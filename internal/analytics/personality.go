package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/schollz/closestmatch"

	"github.com/tahcohcat/steamwrapped-web/internal/llm"
	"github.com/tahcohcat/steamwrapped-web/internal/logger"
	"github.com/tahcohcat/steamwrapped-web/internal/models"
)

const defaultEmoji = "🎮"

// Archetypes are the labels offered to the text generator.
var Archetypes = []struct {
	Title string
	Hint  string
}{
	{"Strategic Thinker", "many strategy + RPG hours"},
	{"Chaos Enjoyer", "FPS + action games"},
	{"Builder & Crafter", "Terraria, Minecraft-like"},
	{"Completionist", "achievement focused"},
	{"Explorer", "variety of genres"},
	{"Speed Demon", "racing/fast games"},
	{"Story Seeker", "narrative games"},
	{"Social Butterfly", "multiplayer focused"},
}

var (
	unknownGamer = models.Personality{
		Title: "The Unknown Gamer",
		Desc:  "A mystery wrapped in an enigma.",
		Emoji: defaultEmoji,
	}
	classicGamer = models.Personality{
		Title: "The Classic Gamer",
		Desc:  "You love games, and that's what matters.",
		Emoji: defaultEmoji,
	}
)

// Classifier labels a play style through an optional text generator.
type Classifier struct {
	llm     llm.LLM
	matcher *closestmatch.ClosestMatch
	logger  *logger.Log
}

// NewClassifier returns a classifier backed by model. A nil model yields the
// fixed "unknown" result for every user.
func NewClassifier(model llm.LLM) *Classifier {
	titles := make([]string, 0, len(Archetypes))
	for _, a := range Archetypes {
		titles = append(titles, a.Title)
	}
	return &Classifier{
		llm:     model,
		matcher: closestmatch.New(titles, []int{2, 3}),
		logger:  logger.New().With("component", "personality"),
	}
}

// Classify never fails. Generator errors fall back to a fixed result.
func (c *Classifier) Classify(ctx context.Context, topGames, recentGames []string, totalHours int) models.Personality {
	if c.llm == nil {
		return unknownGamer
	}

	text, err := c.llm.GenerateResponse(ctx, personalityPrompt(topGames, recentGames, totalHours))
	if err != nil {
		c.logger.WithError(err).Warn("personality generation failed")
		return classicGamer
	}

	p := parsePersonality(strings.TrimSpace(text))
	p.Archetype = c.matcher.Closest(p.Title)
	return p
}

func personalityPrompt(topGames, recentGames []string, totalHours int) string {
	var b strings.Builder
	b.WriteString("Analyze this Steam user's gaming profile:\n")
	fmt.Fprintf(&b, "Top 5 Games: %s\n", strings.Join(topGames, ", "))
	fmt.Fprintf(&b, "Recently Played: %s\n", strings.Join(recentGames, ", "))
	fmt.Fprintf(&b, "Total Hours: %d\n\n", totalHours)
	b.WriteString("Based on this, assign them a \"Personality Style\" from these options:\n")
	for _, a := range Archetypes {
		fmt.Fprintf(&b, "- %s (%s)\n", a.Title, a.Hint)
	}
	b.WriteString("\nProvide a short, punchy description (max 15 words) explaining why.\n")
	b.WriteString("Also suggest an emoji that fits.\n")
	b.WriteString("Format: Title|Description|Emoji")
	return b.String()
}

// parsePersonality reads "Title|Description|Emoji" leniently.
func parsePersonality(text string) models.Personality {
	parts := strings.Split(text, "|")
	switch {
	case len(parts) >= 3:
		return models.Personality{
			Title: strings.TrimSpace(parts[0]),
			Desc:  strings.TrimSpace(parts[1]),
			Emoji: strings.TrimSpace(parts[2]),
		}
	case len(parts) == 2:
		return models.Personality{
			Title: strings.TrimSpace(parts[0]),
			Desc:  strings.TrimSpace(parts[1]),
			Emoji: defaultEmoji,
		}
	default:
		return models.Personality{Title: "The Gamer", Desc: text, Emoji: defaultEmoji}
	}
}
