package settingsrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
)

const (
	keySettings  = "sync_settings"
	keyWatermark = "sync_watermark"
)

// SQLiteRepository implements Repository over the settings key-value table.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) LoadSettings(ctx context.Context) (*models.SyncSettings, error) {
	raw, err := r.get(ctx, keySettings)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultSyncSettings(), nil
		}
		return nil, fmt.Errorf("load settings: %w", err)
	}
	s := &models.SyncSettings{}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, s *models.SyncSettings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return r.set(ctx, keySettings, raw)
}

func (r *SQLiteRepository) Watermark(ctx context.Context) (int64, error) {
	raw, err := r.get(ctx, keyWatermark)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("load watermark: %w", err)
	}
	wm, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("load watermark: %w", err)
	}
	return wm, nil
}

func (r *SQLiteRepository) SetWatermark(ctx context.Context, wm int64) error {
	return r.set(ctx, keyWatermark, []byte(strconv.FormatInt(wm, 10)))
}

func (r *SQLiteRepository) get(ctx context.Context, key string) ([]byte, error) {
	row := r.db.QueryRowContext(ctx, `select value from settings where key=?`, key)
	var value []byte
	if err := row.Scan(&value); err != nil {
		return nil, err
	}
	return value, nil
}

func (r *SQLiteRepository) set(ctx context.Context, key string, value []byte) error {
	query := ` INSERT INTO settings (key, value) values (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to upsert setting %s: %w", key, err)
	}
	return nil
}
