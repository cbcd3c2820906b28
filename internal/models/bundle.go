package models

// MetricBundle is the full derived output for one user. It is what the
// wrapped views render and what a shared snapshot freezes.
type MetricBundle struct {
	Stats            DashboardStats    `json:"stats"`
	TopGames         []Game            `json:"top_games"`
	TopGame          *Game             `json:"top_game"`
	Timeline         Timeline          `json:"timeline"`
	GenreBreakdown   []GenreShare      `json:"genre_breakdown"`
	TopGenre         string            `json:"top_genre"`
	TopGenreHours    int               `json:"top_genre_hours"`
	TopDevelopers    []DeveloperHours  `json:"top_developers"`
	AchievementStats *AchievementStats `json:"achievement_stats"`
	AchievementScore AchievementScore  `json:"achievement_score"`
	EnergyScore      EnergyScore       `json:"energy_score"`
	Personality      Personality       `json:"personality"`
	GlobalComparison GlobalComparison  `json:"global_comparison"`
	GamesCategorized GamesCategorized  `json:"games_categorized"`
	SleepDestroyer   SleepDestroyer    `json:"sleep_destroyer"`
	Analogies        []string          `json:"analogies"`
}

type DashboardStats struct {
	TotalPlaytimeHours int `json:"total_playtime_hours"`
	GameCount          int `json:"game_count"`
	PileOfShame        int `json:"pile_of_shame"`
	NeverPlayed        int `json:"never_played"`
	Level              int `json:"level"`
	XP                 int `json:"xp"`
}

type MonthHours struct {
	Month string `json:"month"`
	Hours int    `json:"hours"`
}

type Timeline struct {
	Data        []MonthHours `json:"data"`
	MostActive  MonthHours   `json:"most_active"`
	LeastActive MonthHours   `json:"least_active"`
}

type GenreShare struct {
	Genre   string `json:"genre"`
	Percent int    `json:"percent"`
	Hours   int    `json:"hours"`
}

type DeveloperHours struct {
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

type AchievementStats struct {
	TotalUnlocked  int                `json:"total_unlocked"`
	CompletionRate int                `json:"completion_rate"`
	Rarest         *AchievementRecord `json:"rarest"`
	TopGameName    string             `json:"top_game_name"`
	TopGameTotal   int                `json:"top_game_total"`
	RareCount      int                `json:"rare_count"`
	UltraRareCount int                `json:"ultra_rare_count"`
}

type GameRate struct {
	Name string `json:"name"`
	Rate int    `json:"rate"`
}

type AchievementScore struct {
	TotalUnlocked  int      `json:"total_unlocked"`
	CompletionRate int      `json:"completion_rate"`
	PerfectGames   int      `json:"perfect_games"`
	ZeroGames      int      `json:"zero_games"`
	BestGame       GameRate `json:"best_game"`
	RankPercentile int      `json:"rank_percentile"`
}

type EnergyScore struct {
	Score      int `json:"score"`
	Percentile int `json:"percentile"`
}

// Personality is the classifier result. Archetype is the closest of the
// fixed labels to Title and stays empty for fallback results.
type Personality struct {
	Title     string `json:"title"`
	Desc      string `json:"desc"`
	Emoji     string `json:"emoji"`
	Archetype string `json:"archetype"`
}

type IntComparison struct {
	You int `json:"you"`
	Avg int `json:"avg"`
}

type StringComparison struct {
	You string `json:"you"`
	Avg string `json:"avg"`
}

type GlobalComparison struct {
	Hours            IntComparison    `json:"hours"`
	Games            IntComparison    `json:"games"`
	RareAchievements StringComparison `json:"rare_achievements"`
	NeverPlayed      IntComparison    `json:"never_played"`
}

type GamesCategorized struct {
	Played       int `json:"played"`
	Completed    int `json:"completed"`
	Abandoned    int `json:"abandoned"`
	NeverTouched int `json:"never_touched"`
}

type SleepDestroyer struct {
	DaysLost         int `json:"days_lost"`
	MoviesWatched    int `json:"movies_watched"`
	AnimeEpisodes    int `json:"anime_episodes"`
	GamesPlayed      int `json:"games_played"`
	GamesUnplayed    int `json:"games_unplayed"`
	SkillLevelGained int `json:"skill_level_gained"`
}
