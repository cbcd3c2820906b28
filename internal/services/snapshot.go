package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tahcohcat/steamwrapped-web/internal/database"
	"github.com/tahcohcat/steamwrapped-web/internal/logger"
	"github.com/tahcohcat/steamwrapped-web/internal/models"
)

var ErrSnapshotNotFound = errors.New("shared snapshot not found")

const tokenBytes = 8

// SnapshotService keeps at most one shared wrapped bundle per owner.
type SnapshotService struct {
	db     *database.DB
	logger *logger.Log
}

func NewSnapshotService(db *database.DB) *SnapshotService {
	return &SnapshotService{db: db, logger: logger.New().With("component", "snapshots")}
}

// NewToken returns 16 lowercase hex characters of crypto randomness.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Put stores bundle as the owner's shared snapshot and returns its token.
// An existing snapshot keeps its id and token and gets the new payload.
func (s *SnapshotService) Put(ctx context.Context, steamID string, bundle *models.MetricBundle) (string, error) {
	payload, err := json.Marshal(bundle)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	token, err := NewToken()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()

	query := s.db.Rebind(`
		INSERT INTO shared_snapshots (id, token, steam_id, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (steam_id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
		RETURNING token
	`)

	var stored string
	if err := s.db.QueryRowxContext(ctx, query, uuid.NewString(), token, steamID, string(payload), now, now).Scan(&stored); err != nil {
		return "", fmt.Errorf("failed to store snapshot: %w", err)
	}

	s.logger.With("steam_id", steamID).Debug("shared snapshot stored")
	return stored, nil
}

// Get returns the frozen bundle behind token.
func (s *SnapshotService) Get(ctx context.Context, token string) (*models.MetricBundle, error) {
	var payload string
	query := s.db.Rebind(`SELECT payload FROM shared_snapshots WHERE token = ?`)
	err := s.db.GetContext(ctx, &payload, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var bundle models.MetricBundle
	if err := json.Unmarshal([]byte(payload), &bundle); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &bundle, nil
}

// GetByOwner returns the snapshot record of steamID.
func (s *SnapshotService) GetByOwner(ctx context.Context, steamID string) (*models.SharedSnapshot, error) {
	var snap models.SharedSnapshot
	query := s.db.Rebind(`SELECT id, token, steam_id, payload, created_at, updated_at
			  FROM shared_snapshots WHERE steam_id = ?`)
	err := s.db.GetContext(ctx, &snap, query, steamID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &snap, nil
}

// RegenerateToken gives the owner's snapshot a fresh token. The previous
// token stops resolving; the snapshot id and payload are unchanged.
func (s *SnapshotService) RegenerateToken(ctx context.Context, steamID string) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}

	query := s.db.Rebind(`UPDATE shared_snapshots SET token = ?, updated_at = ? WHERE steam_id = ?`)
	result, err := s.db.ExecContext(ctx, query, token, time.Now().UTC(), steamID)
	if err != nil {
		return "", fmt.Errorf("failed to regenerate token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to regenerate token: %w", err)
	}
	if rows == 0 {
		return "", ErrSnapshotNotFound
	}

	s.logger.With("steam_id", steamID).Info("shared snapshot token regenerated")
	return token, nil
}
