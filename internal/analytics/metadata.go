package analytics

import (
	"math"
	"sort"

	"github.com/tahcohcat/steamwrapped-web/internal/models"
)

const (
	topGenres     = 5
	topDevelopers = 5
	unknownDev    = "Unknown"
)

// tally accumulates values per label and remembers first-seen order so
// equal totals rank deterministically.
type tally struct {
	order  []string
	totals map[string]float64
}

func newTally() *tally {
	return &tally{totals: map[string]float64{}}
}

func (t *tally) add(label string, v float64) {
	if _, ok := t.totals[label]; !ok {
		t.order = append(t.order, label)
	}
	t.totals[label] += v
}

func (t *tally) sum() float64 {
	s := 0.0
	for _, v := range t.totals {
		s += v
	}
	return s
}

// top returns up to n labels by descending total.
func (t *tally) top(n int) []string {
	labels := make([]string, len(t.order))
	copy(labels, t.order)
	sort.SliceStable(labels, func(i, j int) bool {
		return t.totals[labels[i]] > t.totals[labels[j]]
	})
	if n < len(labels) {
		labels = labels[:n]
	}
	return labels
}

func (a *Analytics) details(appID int) *models.GameDetails {
	if a.snapshot.Details == nil {
		return nil
	}
	return a.snapshot.Details[appID]
}

// GenreBreakdown ranks the genres of the top games by playtime. A game
// counts in full towards each of its genres. Percentages are shares of the
// summed contributions, so the result is empty when nothing resolved.
func (a *Analytics) GenreBreakdown() []models.GenreShare {
	genres := newTally()
	for _, g := range a.TopGames(models.MetadataScope) {
		d := a.details(g.AppID)
		if d == nil {
			continue
		}
		if d.Genres != nil {
			for _, genre := range d.Genres {
				genres.add(genre.Description, float64(g.PlaytimeForever))
			}
		} else if d.Genre != "" {
			genres.add(d.Genre, float64(g.PlaytimeForever))
		}
	}

	total := genres.sum()
	if total == 0 {
		return []models.GenreShare{}
	}

	shares := []models.GenreShare{}
	for _, label := range genres.top(topGenres) {
		minutes := genres.totals[label]
		shares = append(shares, models.GenreShare{
			Genre:   label,
			Percent: int(minutes / total * 100),
			Hours:   int(minutes / 60),
		})
	}
	return shares
}

// TopDevelopers ranks developers of the top games by hours played. With no
// developer data it reports a single Unknown entry.
func (a *Analytics) TopDevelopers() []models.DeveloperHours {
	devs := newTally()
	for _, g := range a.TopGames(models.MetadataScope) {
		d := a.details(g.AppID)
		if d == nil {
			continue
		}
		hours := float64(g.PlaytimeForever) / 60
		for _, dev := range d.Developers {
			devs.add(dev, hours)
		}
	}

	labels := devs.top(topDevelopers)
	if len(labels) == 0 {
		return []models.DeveloperHours{{Name: unknownDev, Hours: 0}}
	}

	out := make([]models.DeveloperHours, 0, len(labels))
	for _, label := range labels {
		out = append(out, models.DeveloperHours{
			Name:  label,
			Hours: math.Round(devs.totals[label]*10) / 10,
		})
	}
	return out
}
