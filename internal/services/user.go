package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tahcohcat/steamwrapped-web/internal/database"
	"github.com/tahcohcat/steamwrapped-web/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserService struct {
	db *database.DB
}

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

// UpsertFromProfile records a signed-in Steam account, refreshing its name
// and avatar when the profile is known.
func (s *UserService) UpsertFromProfile(ctx context.Context, steamID string, profile *models.PlayerSummary) (*models.User, error) {
	username, avatar := "", ""
	if profile != nil {
		username, avatar = profile.PersonaName, profile.AvatarFull
	}
	now := time.Now().UTC()

	query := s.db.Rebind(`
		INSERT INTO users (steam_id, username, avatar_url, created_at, last_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (steam_id) DO UPDATE SET
			username = CASE WHEN excluded.username = '' THEN users.username ELSE excluded.username END,
			avatar_url = CASE WHEN excluded.avatar_url = '' THEN users.avatar_url ELSE excluded.avatar_url END,
			last_updated = excluded.last_updated
	`)
	if _, err := s.db.ExecContext(ctx, query, steamID, username, avatar, now, now); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return s.GetUserBySteamID(ctx, steamID)
}

// GetUserBySteamID retrieves a user by their Steam id
func (s *UserService) GetUserBySteamID(ctx context.Context, steamID string) (*models.User, error) {
	var user models.User
	query := s.db.Rebind(`SELECT id, steam_id, username, avatar_url, created_at, last_updated
			  FROM users WHERE steam_id = ?`)

	err := s.db.GetContext(ctx, &user, query, steamID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
