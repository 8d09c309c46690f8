// Package settingsrepo persists sync settings and sync state in the local
// key-value table.
package settingsrepo

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
)

// Repository stores the SyncSettings object as a whole plus the sync
// watermark of the last successful cycle.
type Repository interface {
	// LoadSettings returns the persisted settings, or defaults when none
	// were saved yet.
	LoadSettings(ctx context.Context) (*models.SyncSettings, error)

	// SaveSettings validates and persists the whole settings object.
	SaveSettings(ctx context.Context, s *models.SyncSettings) error

	// Watermark returns the last successful sync watermark (0 when never
	// synced).
	Watermark(ctx context.Context) (int64, error)

	// SetWatermark records the watermark after a successful cycle.
	SetWatermark(ctx context.Context, wm int64) error
}
