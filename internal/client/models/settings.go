// Package models defines client-side configuration objects persisted in the
// local store.
package models

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/notekeeper/internal/timex"
)

// DefaultServerURL is the sync endpoint used until the user selects another.
const DefaultServerURL = "http://127.0.0.1:8080"

// SyncSettings is the persisted sync configuration. It is read and written as
// a whole object; callers merge partial updates before saving.
type SyncSettings struct {
	SeedPhrase    string         `json:"seed_phrase"`
	ServerURL     string         `json:"server_url"`
	CustomServers []string       `json:"custom_servers"`
	AutoSync      bool           `json:"auto_sync"`
	SyncInterval  timex.Duration `json:"sync_interval"`
}

// DefaultSyncSettings returns settings pointing at the default server with
// auto-sync disabled.
func DefaultSyncSettings() *SyncSettings {
	return &SyncSettings{ServerURL: DefaultServerURL}
}

// Validate enforces the settings invariants: every custom server is a unique
// well-formed absolute URL, and the selected server is either the default or
// a member of the custom set.
func (s *SyncSettings) Validate() error {
	seen := make(map[string]struct{}, len(s.CustomServers))
	for _, raw := range s.CustomServers {
		if err := checkAbsoluteURL(raw); err != nil {
			return fmt.Errorf("custom server %q: %w", raw, err)
		}
		if _, dup := seen[raw]; dup {
			return fmt.Errorf("custom server %q: duplicate", raw)
		}
		seen[raw] = struct{}{}
	}

	if s.ServerURL == DefaultServerURL {
		return nil
	}
	if _, ok := seen[s.ServerURL]; !ok {
		return fmt.Errorf("selected server %q is neither the default nor a custom server", s.ServerURL)
	}
	return nil
}

func checkAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if !u.IsAbs() || u.Host == "" {
		return errors.New("not an absolute URL")
	}
	return nil
}
