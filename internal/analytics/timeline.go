package analytics

import (
	"sort"
	"time"

	"github.com/tahcohcat/steamwrapped-web/internal/models"
)

const (
	timelineMonths = 12
	notAvailable   = "N/A"
)

// PlaytimeTimeline buckets lifetime playtime by the UTC month each game was
// last played. Never played games are skipped. The series keeps the latest
// twelve active months while the extremes consider every month.
func (a *Analytics) PlaytimeTimeline() models.Timeline {
	minutes := map[string]int{}
	for _, g := range a.snapshot.Games {
		if g.LastPlayed <= 0 {
			continue
		}
		month := time.Unix(g.LastPlayed, 0).UTC().Format("2006-01")
		minutes[month] += g.PlaytimeForever
	}

	months := make([]string, 0, len(minutes))
	for m := range minutes {
		months = append(months, m)
	}
	sort.Strings(months)

	if len(months) == 0 {
		return models.Timeline{
			Data:        []models.MonthHours{},
			MostActive:  models.MonthHours{Month: notAvailable},
			LeastActive: models.MonthHours{Month: notAvailable},
		}
	}

	hours := func(m string) float64 { return float64(minutes[m]) / 60 }

	most, least := months[0], months[0]
	for _, m := range months[1:] {
		if hours(m) > hours(most) {
			most = m
		}
		if hours(m) < hours(least) {
			least = m
		}
	}

	recent := months
	if len(recent) > timelineMonths {
		recent = recent[len(recent)-timelineMonths:]
	}
	data := make([]models.MonthHours, 0, len(recent))
	for _, m := range recent {
		data = append(data, models.MonthHours{Month: m, Hours: int(hours(m))})
	}

	return models.Timeline{
		Data:        data,
		MostActive:  models.MonthHours{Month: most, Hours: int(hours(most))},
		LeastActive: models.MonthHours{Month: least, Hours: int(hours(least))},
	}
}
