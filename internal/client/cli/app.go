package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/client/config"
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/session"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/mnemonic"
)

// App wires the local store, settings and the active session for the REPL.
type App struct {
	config  *config.Config
	repos   *client.Repositories
	session *session.Session
	log     logging.Logger
	reader  *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	repos, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	return &App{config: c, repos: repos, log: logger, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Logout(context.Background())
	fmt.Println("Welcome to notekeeper CLI (type 'help' for commands)")

	_ = a.Unlock(ctx)

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

func (a *App) isUnlocked() bool {
	return a.session != nil
}

func (a *App) status() string {
	if !a.isUnlocked() {
		return "locked"
	}
	return a.session.AccountID()[:8]
}

// serverURL returns the currently selected server, preferring persisted
// settings over the config default.
func (a *App) serverURL(ctx context.Context) string {
	settings, err := a.repos.Settings.LoadSettings(ctx)
	if err != nil || settings.ServerURL == "" {
		return a.config.ServerURL
	}
	return settings.ServerURL
}

// Unlock initializes the crypto session from a stored or prompted seed phrase.
func (a *App) Unlock(ctx context.Context) error {
	if a.isUnlocked() {
		fmt.Println("Already unlocked")
		return nil
	}

	settings, err := a.repos.Settings.LoadSettings(ctx)
	if err != nil {
		return err
	}

	phrase := settings.SeedPhrase
	remembered := phrase != ""
	if !remembered {
		entered, err := GetSeedPhrase(os.Stdout)
		if err != nil {
			return err
		}
		phrase = string(entered)
	}

	if !mnemonic.Validate(phrase) {
		fmt.Println("That is not a valid seed phrase")
		return nil
	}

	s, err := session.Initialize(phrase, a.repos.Notes, a.repos.Settings, a.log)
	if err != nil {
		return err
	}
	a.session = s

	if !remembered {
		settings.SeedPhrase = phrase
		if err := a.repos.Settings.SaveSettings(ctx, settings); err != nil {
			a.log.Warn(ctx, "failed to remember seed phrase", "error", err)
		}
	}

	fmt.Printf("Unlocked account %s\n", a.status())

	if settings.AutoSync {
		interval := settings.SyncInterval.Duration
		if interval <= 0 {
			interval = a.config.SyncInterval
		}
		go a.StartAutoSync(ctx, interval)
	}
	return nil
}

// NewPhrase generates a fresh seed phrase, shows it once and unlocks with it.
func (a *App) NewPhrase(ctx context.Context) error {
	if a.isUnlocked() {
		fmt.Println("Log out before generating a new phrase")
		return nil
	}

	phrase, err := session.GenerateSeedPhrase()
	if err != nil {
		return err
	}
	fmt.Println("Your new seed phrase (write it down, it cannot be recovered):")
	fmt.Println("  " + phrase)

	s, err := session.Initialize(phrase, a.repos.Notes, a.repos.Settings, a.log)
	if err != nil {
		return err
	}
	a.session = s

	settings, err := a.repos.Settings.LoadSettings(ctx)
	if err != nil {
		settings = models.DefaultSyncSettings()
	}
	settings.SeedPhrase = phrase
	if err := a.repos.Settings.SaveSettings(ctx, settings); err != nil {
		a.log.Warn(ctx, "failed to remember seed phrase", "error", err)
	}

	fmt.Printf("Unlocked account %s\n", a.status())
	return nil
}

// Logout wipes the session key material and forgets the stored phrase.
func (a *App) Logout(ctx context.Context) error {
	if a.session != nil {
		a.session.Close()
		a.session = nil
	}

	settings, err := a.repos.Settings.LoadSettings(ctx)
	if err == nil && settings.SeedPhrase != "" {
		settings.SeedPhrase = ""
		if err := a.repos.Settings.SaveSettings(ctx, settings); err != nil {
			a.log.Warn(ctx, "failed to forget seed phrase", "error", err)
		}
	}
	return nil
}

// StartAutoSync runs a sync cycle on each tick until ctx is cancelled.
// Outcomes are logged; the next tick retries automatically.
func (a *App) StartAutoSync(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !a.isUnlocked() {
				return
			}
			cycleCtx, cancel := context.WithTimeout(ctx, interval)
			outcome := a.session.RunSyncCycle(cycleCtx, a.serverURL(ctx))
			cancel()
			a.log.Info(ctx, "auto-sync cycle finished", "status", string(outcome.Status))
		case <-ctx.Done():
			return
		}
	}
}
