package models

import "sort"

// PlayerSummary is the public profile returned by GetPlayerSummaries.
type PlayerSummary struct {
	SteamID                  string `json:"steamid"`
	PersonaName              string `json:"personaname"`
	ProfileURL               string `json:"profileurl"`
	Avatar                   string `json:"avatar"`
	AvatarMedium             string `json:"avatarmedium"`
	AvatarFull               string `json:"avatarfull"`
	PersonaState             int    `json:"personastate"`
	CommunityVisibilityState int    `json:"communityvisibilitystate"`
	TimeCreated              int64  `json:"timecreated"`
	CountryCode              string `json:"loccountrycode"`
}

type Friend struct {
	SteamID      string `json:"steamid"`
	Relationship string `json:"relationship"`
	FriendSince  int64  `json:"friend_since"`
}

type FriendsList struct {
	FriendCount int      `json:"friend_count"`
	Friends     []Friend `json:"friends"`
}

// Game is one owned or recently played title. Playtime is in minutes and
// LastPlayed is a unix timestamp where 0 means never played.
type Game struct {
	AppID           int    `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever int    `json:"playtime_forever"`
	Playtime2Weeks  int    `json:"playtime_2weeks"`
	LastPlayed      int64  `json:"rtime_last_played"`
	ImgIconURL      string `json:"img_icon_url"`
}

type OwnedGames struct {
	GameCount int    `json:"game_count"`
	Games     []Game `json:"games"`
}

type Badge struct {
	BadgeID        int    `json:"badgeid"`
	AppID          int    `json:"appid"`
	Level          int    `json:"level"`
	CompletionTime int64  `json:"completion_time"`
	XP             int    `json:"xp"`
	Scarcity       int    `json:"scarcity"`
	Name           string `json:"name"`
	Image          string `json:"image"`
}

type BadgeInfo struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type Genre struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// GameDetails is store metadata merged with the SteamSpy estimate. A nil
// Genres slice means the store listed none, in which case the single SteamSpy
// Genre string is used instead.
type GameDetails struct {
	AppID       int            `json:"steam_appid"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	HeaderImage string         `json:"header_image"`
	Developers  []string       `json:"developers"`
	Publishers  []string       `json:"publishers"`
	Genres      []Genre        `json:"genres"`
	Genre       string         `json:"genre"`
	Owners      string         `json:"owners"`
	Tags        map[string]int `json:"tags"`
}

// AchievementRecord merges the schema entry with the player's unlock state
// and the global unlock percentage. Rarity is nil when the percentage is
// unknown.
type AchievementRecord struct {
	APIName     string   `json:"api_name"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	IconGray    string   `json:"icon_gray"`
	Hidden      bool     `json:"hidden"`
	Achieved    bool     `json:"achieved"`
	UnlockTime  int64    `json:"unlock_time"`
	Rarity      *float64 `json:"rarity"`
}

// Lookup scopes by playtime rank: genres and developers read the top
// MetadataScope games, achievements the top AchievementScope.
const (
	MetadataScope    = 10
	AchievementScope = 5
)

// CommonRarity stands in for a missing percentage in rarity comparisons.
const CommonRarity = 100.0

// RarityOrCommon never lets a missing percentage look rare.
func (a AchievementRecord) RarityOrCommon() float64 {
	if a.Rarity == nil {
		return CommonRarity
	}
	return *a.Rarity
}

// UserSnapshot is everything the analytics engine reads for one user.
// Details and Achievements are keyed by appid; a missing key means the lookup
// failed or was outside the fetched scope.
type UserSnapshot struct {
	SteamID      string
	Profile      *PlayerSummary
	Friends      *FriendsList
	Games        []Game
	RecentGames  []Game
	Badges       []Badge
	Level        int
	Details      map[int]*GameDetails
	Achievements map[int][]AchievementRecord
}

// RankByPlaytime returns a copy of games ordered by descending playtime,
// keeping library order between equal playtimes.
func RankByPlaytime(games []Game) []Game {
	ranked := make([]Game, len(games))
	copy(ranked, games)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PlaytimeForever > ranked[j].PlaytimeForever
	})
	return ranked
}
