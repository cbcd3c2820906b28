package steam

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tahcohcat/steamwrapped-web/config"
	"github.com/tahcohcat/steamwrapped-web/internal/cache"
)

const testSteamID = "76561197960287930"

// fakeSteam serves canned upstream responses and counts hits per path.
type fakeSteam struct {
	mu   sync.Mutex
	hits map[string]int
	mux  *http.ServeMux
}

func newFakeSteam() *fakeSteam {
	return &fakeSteam{hits: map[string]int{}, mux: http.NewServeMux()}
}

func (f *fakeSteam) handle(path string, h http.HandlerFunc) {
	f.mux.HandleFunc(path, h)
}

func (f *fakeSteam) json(path, body string) {
	f.handle(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	})
}

func (f *fakeSteam) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits[r.URL.Path]++
	f.mu.Unlock()
	f.mux.ServeHTTP(w, r)
}

func (f *fakeSteam) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func newTestClient(t *testing.T, fake *fakeSteam, apiKey string) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	return NewClient(config.SteamConfig{
		APIKey:           apiKey,
		APIBaseURL:       srv.URL,
		StoreBaseURL:     srv.URL,
		SteamSpyBaseURL:  srv.URL,
		CommunityBaseURL: srv.URL,
		Timeout:          5,
		BadgeLimit:       10,
	}, cache.NewMemory(), "test")
}

func TestGetOwnedGamesIsCached(t *testing.T) {
	fake := newFakeSteam()
	fake.json("/IPlayerService/GetOwnedGames/v1/", `{"response":{"game_count":2,"games":[
		{"appid":570,"name":"Dota 2","playtime_forever":6000,"rtime_last_played":1700000000},
		{"appid":440,"name":"Team Fortress 2","playtime_forever":0}
	]}}`)
	c := newTestClient(t, fake, "key")

	for i := 0; i < 3; i++ {
		owned := c.GetOwnedGames(context.Background(), testSteamID)
		if owned == nil || owned.GameCount != 2 || len(owned.Games) != 2 {
			t.Fatalf("unexpected owned games: %+v", owned)
		}
		if owned.Games[0].LastPlayed != 1700000000 || owned.Games[1].LastPlayed != 0 {
			t.Fatalf("unexpected last played values: %+v", owned.Games)
		}
	}

	if hits := fake.count("/IPlayerService/GetOwnedGames/v1/"); hits != 1 {
		t.Fatalf("expected a single upstream call, got %d", hits)
	}
}

func TestMissingKeyReturnsNoData(t *testing.T) {
	fake := newFakeSteam()
	c := newTestClient(t, fake, "")

	if got := c.GetPlayerSummary(context.Background(), testSteamID); got != nil {
		t.Fatalf("expected no profile, got %+v", got)
	}
	if got := c.GetOwnedGames(context.Background(), testSteamID); got != nil {
		t.Fatalf("expected no games, got %+v", got)
	}
	if got := c.GetSteamLevel(context.Background(), testSteamID); got != 0 {
		t.Fatalf("expected level 0, got %d", got)
	}
	if len(fake.hits) != 0 {
		t.Fatalf("no request should be made without a key, got %v", fake.hits)
	}
}

func TestUpstreamFailureIsNotCached(t *testing.T) {
	fake := newFakeSteam()
	var fail atomic.Bool
	fail.Store(true)
	fake.handle("/ISteamUser/GetPlayerSummaries/v2/", func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"response":{"players":[{"steamid":"76561197960287930","personaname":"gabe"}]}}`)
	})
	c := newTestClient(t, fake, "key")

	if got := c.GetPlayerSummary(context.Background(), testSteamID); got != nil {
		t.Fatalf("expected no data on 503, got %+v", got)
	}

	fail.Store(false)
	got := c.GetPlayerSummary(context.Background(), testSteamID)
	if got == nil || got.PersonaName != "gabe" {
		t.Fatalf("expected profile after recovery, got %+v", got)
	}
}

func TestPrivateProfileHasNoPlayers(t *testing.T) {
	fake := newFakeSteam()
	fake.json("/ISteamUser/GetPlayerSummaries/v2/", `{"response":{"players":[]}}`)
	fake.json("/IPlayerService/GetSteamLevel/v1/", `{"response":{}}`)
	c := newTestClient(t, fake, "key")

	if got := c.GetPlayerSummary(context.Background(), testSteamID); got != nil {
		t.Fatalf("expected nil profile, got %+v", got)
	}
	if got := c.GetSteamLevel(context.Background(), testSteamID); got != 0 {
		t.Fatalf("expected level 0, got %d", got)
	}
}

func TestGetGameDetailsMergesSteamSpy(t *testing.T) {
	fake := newFakeSteam()
	fake.json("/api/appdetails", `{"570":{"success":true,"data":{
		"steam_appid":570,"name":"Dota 2","developers":["Valve"],
		"genres":[{"id":"1","description":"Action"},{"id":"2","description":"Strategy"}]
	}}}`)
	fake.handle("/api.php", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("appid") {
		case "570":
			fmt.Fprint(w, `{"genre":"Action, Free to Play","owners":"100,000,000 .. 200,000,000","tags":{"MOBA":100,"Strategy":50}}`)
		default:
			fmt.Fprint(w, `{"genre":"","owners":"0 .. 20,000","tags":[]}`)
		}
	})
	c := newTestClient(t, fake, "key")

	d := c.GetGameDetails(context.Background(), 570)
	if d == nil {
		t.Fatal("expected details")
	}
	if d.Name != "Dota 2" || len(d.Developers) != 1 || len(d.Genres) != 2 {
		t.Fatalf("unexpected store fields: %+v", d)
	}
	if d.Owners != "100,000,000 .. 200,000,000" || d.Genre != "Action, Free to Play" || d.Tags["MOBA"] != 100 {
		t.Fatalf("unexpected steamspy fields: %+v", d)
	}

	if tags := decodeTags([]byte(`[]`)); tags != nil {
		t.Fatalf("expected empty tag list to decode as nil, got %v", tags)
	}
}

func TestGetGameDetailsWithoutStoreData(t *testing.T) {
	fake := newFakeSteam()
	fake.json("/api/appdetails", `{"999":{"success":false}}`)
	c := newTestClient(t, fake, "")

	if d := c.GetGameDetails(context.Background(), 999); d != nil {
		t.Fatalf("expected no data, got %+v", d)
	}
	if hits := fake.count("/api.php"); hits != 0 {
		t.Fatalf("steamspy should not be asked without store data, got %d hits", hits)
	}
}

func TestGetGameDetailsSteamSpyFailure(t *testing.T) {
	fake := newFakeSteam()
	fake.json("/api/appdetails", `{"10":{"success":true,"data":{"steam_appid":10,"name":"Counter-Strike","developers":["Valve"]}}}`)
	fake.handle("/api.php", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	c := newTestClient(t, fake, "key")

	d := c.GetGameDetails(context.Background(), 10)
	if d == nil || d.Name != "Counter-Strike" {
		t.Fatalf("expected store data to survive, got %+v", d)
	}
	if d.Genre != "" || d.Owners != "" || d.Tags != nil {
		t.Fatalf("expected empty steamspy fields, got %+v", d)
	}
}

func TestGetGameAchievements(t *testing.T) {
	fake := newFakeSteam()
	fake.json("/ISteamUserStats/GetPlayerAchievements/v1/", `{"playerstats":{"success":true,"achievements":[
		{"apiname":"WIN_ONE","achieved":1,"unlocktime":1690000000},
		{"apiname":"WIN_ALL","achieved":0,"unlocktime":0}
	]}}`)
	fake.json("/ISteamUserStats/GetSchemaForGame/v2/", `{"game":{"availableGameStats":{"achievements":[
		{"name":"WIN_ONE","displayName":"First Win","description":"Win a match","hidden":0,"icon":"a.jpg","icongray":"b.jpg"},
		{"name":"WIN_ALL","displayName":"Champion","hidden":1},
		{"name":"SECRET","displayName":"Secret"}
	]}}}`)
	fake.json("/ISteamUserStats/GetGlobalAchievementPercentagesForApp/v2/", `{"achievementpercentages":{"achievements":[
		{"name":"WIN_ONE","percent":"42.5"},
		{"name":"WIN_ALL","percent":0.7}
	]}}`)
	c := newTestClient(t, fake, "key")

	records := c.GetGameAchievements(context.Background(), testSteamID, 570)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if !first.Achieved || first.UnlockTime != 1690000000 || first.DisplayName != "First Win" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if first.Rarity == nil || *first.Rarity != 42.5 {
		t.Fatalf("expected string percent to decode, got %v", first.Rarity)
	}
	if records[1].Achieved || !records[1].Hidden || records[1].Rarity == nil || *records[1].Rarity != 0.7 {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
	if records[2].Rarity != nil || records[2].Achieved {
		t.Fatalf("expected unknown rarity for SECRET, got %+v", records[2])
	}

	if got := fake.count("/ISteamUserStats/GetGlobalAchievementPercentagesForApp/v2/"); got != 1 {
		t.Fatalf("expected one percentage lookup, got %d", got)
	}
}

func TestGetGameAchievementsUnavailable(t *testing.T) {
	fake := newFakeSteam()
	fake.json("/ISteamUserStats/GetPlayerAchievements/v1/", `{"playerstats":{"success":false,"error":"Requested app has no stats"}}`)
	c := newTestClient(t, fake, "key")

	if records := c.GetGameAchievements(context.Background(), testSteamID, 1); records != nil {
		t.Fatalf("expected no data, got %+v", records)
	}
	if hits := fake.count("/ISteamUserStats/GetSchemaForGame/v2/"); hits != 0 {
		t.Fatalf("schema should not be fetched, got %d hits", hits)
	}
}

func TestParseBadgePage(t *testing.T) {
	page := []byte(`<html><body>
		<div class="badge_current">
			<img class="badge_icon small" src="https://cdn.example/badge.png">
			<div class="badge_info_title">
				Pillar of Community
			</div>
		</div>
	</body></html>`)

	info, err := parseBadgePage(page, 2)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if info.Name != "Pillar of Community" || info.Image != "https://cdn.example/badge.png" {
		t.Fatalf("unexpected badge info: %+v", info)
	}

	info, err = parseBadgePage([]byte(`<html><body><p>nothing</p></body></html>`), 13)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if info.Name != "Badge 13" || info.Image != "" {
		t.Fatalf("expected fallback name, got %+v", info)
	}
}

func TestGetBadgesResolvesNames(t *testing.T) {
	fake := newFakeSteam()
	fake.json("/IPlayerService/GetBadges/v1/", `{"response":{"badges":[
		{"badgeid":1,"level":5,"xp":500},
		{"badgeid":2,"level":1,"xp":100}
	]}}`)
	fake.handle("/profiles/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/profiles/"+testSteamID+"/badges/1" {
			fmt.Fprint(w, `<div class="badge_info_title">Years of Service</div><img class="badge_icon" src="/y.png">`)
			return
		}
		http.NotFound(w, r)
	})
	c := newTestClient(t, fake, "key")

	badges := c.GetBadges(context.Background(), testSteamID)
	if len(badges) != 2 {
		t.Fatalf("expected 2 badges, got %d", len(badges))
	}
	if badges[0].Name != "Years of Service" || badges[0].Image != "/y.png" {
		t.Fatalf("unexpected first badge: %+v", badges[0])
	}
	if badges[1].Name != "Badge 2" {
		t.Fatalf("expected fallback name, got %+v", badges[1])
	}
}

func TestLoadSnapshotScopesLookups(t *testing.T) {
	fake := newFakeSteam()
	fake.json("/ISteamUser/GetPlayerSummaries/v2/", `{"response":{"players":[{"steamid":"76561197960287930","personaname":"gabe"}]}}`)
	fake.json("/ISteamUser/GetFriendList/v1/", `{"friendslist":{"friends":[{"steamid":"1"},{"steamid":"2"}]}}`)
	fake.json("/IPlayerService/GetRecentlyPlayedGames/v1/", `{"response":{"total_count":1,"games":[{"appid":99999,"name":"Not Owned","playtime_2weeks":30}]}}`)
	fake.json("/IPlayerService/GetBadges/v1/", `{"response":{"badges":[]}}`)
	fake.json("/IPlayerService/GetSteamLevel/v1/", `{"response":{"player_level":42}}`)

	owned := `{"response":{"game_count":12,"games":[`
	for i := 1; i <= 12; i++ {
		if i > 1 {
			owned += ","
		}
		owned += fmt.Sprintf(`{"appid":%d,"name":"Game %d","playtime_forever":%d}`, i, i, i*100)
	}
	owned += `]}}`
	fake.json("/IPlayerService/GetOwnedGames/v1/", owned)

	fake.handle("/api/appdetails", func(w http.ResponseWriter, r *http.Request) {
		appID := r.URL.Query().Get("appids")
		fmt.Fprintf(w, `{%q:{"success":true,"data":{"steam_appid":%s,"developers":["Dev %s"]}}}`, appID, appID, appID)
	})
	fake.json("/api.php", `{"genre":"Indie","owners":"","tags":[]}`)
	fake.handle("/ISteamUserStats/GetPlayerAchievements/v1/", func(w http.ResponseWriter, r *http.Request) {
		appID, _ := strconv.Atoi(r.URL.Query().Get("appid"))
		if appID == 12 {
			fmt.Fprint(w, `{"playerstats":{"success":false}}`)
			return
		}
		fmt.Fprint(w, `{"playerstats":{"achievements":[{"apiname":"A","achieved":1}]}}`)
	})
	fake.json("/ISteamUserStats/GetSchemaForGame/v2/", `{"game":{"availableGameStats":{"achievements":[{"name":"A"}]}}}`)
	fake.json("/ISteamUserStats/GetGlobalAchievementPercentagesForApp/v2/", `{"achievementpercentages":{"achievements":[{"name":"A","percent":12}]}}`)

	c := newTestClient(t, fake, "key")

	var mu sync.Mutex
	var stages []string
	detailsBeforeAchievements := -1
	snap := c.LoadSnapshot(context.Background(), testSteamID, func(stage string) {
		mu.Lock()
		stages = append(stages, stage)
		mu.Unlock()
		if stage == StageAchievements {
			detailsBeforeAchievements = fake.count("/api/appdetails")
		}
	})

	if snap.Profile == nil || snap.Profile.PersonaName != "gabe" {
		t.Fatalf("unexpected profile: %+v", snap.Profile)
	}
	if snap.Friends == nil || snap.Friends.FriendCount != 2 {
		t.Fatalf("unexpected friends: %+v", snap.Friends)
	}
	if len(snap.Games) != 12 || len(snap.RecentGames) != 1 || snap.Level != 42 {
		t.Fatalf("unexpected library: games=%d recent=%d level=%d", len(snap.Games), len(snap.RecentGames), snap.Level)
	}

	if len(snap.Details) != 10 {
		t.Fatalf("expected details for the top 10, got %d", len(snap.Details))
	}
	for _, appID := range []int{1, 2} {
		if _, ok := snap.Details[appID]; ok {
			t.Fatalf("appid %d is outside the metadata scope", appID)
		}
	}

	if len(snap.Achievements) != 4 {
		t.Fatalf("expected achievements for 4 of the top 5 games, got %d", len(snap.Achievements))
	}
	if _, ok := snap.Achievements[12]; ok {
		t.Fatal("failed achievement lookup should leave no entry")
	}
	if _, ok := snap.Achievements[7]; ok {
		t.Fatal("appid 7 is outside the achievement scope")
	}

	if detailsBeforeAchievements != 10 {
		t.Fatalf("achievements stage reported after %d of 10 details lookups", detailsBeforeAchievements)
	}

	want := []string{StageProfile, StageLibrary, StageDetails, StageAchievements, StageDone}
	if len(stages) != len(want) {
		t.Fatalf("expected stages %v, got %v", want, stages)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Fatalf("expected stages %v, got %v", want, stages)
		}
	}
}

func TestLoadSnapshotWithoutData(t *testing.T) {
	c := newTestClient(t, newFakeSteam(), "")

	snap := c.LoadSnapshot(context.Background(), testSteamID, nil)
	if snap.Profile != nil || snap.Games != nil || len(snap.Details) != 0 || len(snap.Achievements) != 0 {
		t.Fatalf("expected an empty snapshot, got %+v", snap)
	}
}
