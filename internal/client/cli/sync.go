package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/sync"
)

// Sync runs one sync cycle against the selected server and reports the
// outcome to the user.
func (a *App) Sync(ctx context.Context) error {
	if !a.requireUnlocked() {
		return nil
	}

	outcome := a.session.RunSyncCycle(ctx, a.serverURL(ctx))

	switch outcome.Status {
	case sync.StatusFailed:
		fmt.Println("Sync failed:", outcome.Err)
		return outcome.Err
	case sync.StatusPartial:
		fmt.Println("Sync finished with warnings")
	default:
		fmt.Println("Sync successful")
	}

	plan := outcome.Plan
	fmt.Printf("  pulled %d, pushed %d, deletes %d\n",
		len(plan.LocalUpserts), len(plan.Pushes), len(plan.RemoteDeletes))

	for _, skip := range outcome.Skips {
		fmt.Printf("  skipped %s: %s\n", skip.ID, skip.Reason)
	}
	for _, c := range outcome.Conflicts {
		side := "local"
		if c.KeptRemote {
			side = "remote"
		}
		fmt.Printf("  conflict on %s resolved, kept the %s copy\n", c.ID, side)
	}
	for _, f := range outcome.PushFailures {
		fmt.Printf("  push of %s failed, will retry next cycle: %v\n", f.ID, f.Err)
	}
	return nil
}

// Servers shows the current server selection and lets the user add a custom
// server or pick one.
func (a *App) Servers(ctx context.Context) error {
	settings, err := a.repos.Settings.LoadSettings(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Selected server:", settings.ServerURL)
	if len(settings.CustomServers) > 0 {
		fmt.Println("Custom servers:")
		for _, s := range settings.CustomServers {
			fmt.Println("  " + s)
		}
	}

	answer, err := GetSimpleText(a.reader, "Enter a server URL to add and select (empty to keep current)", os.Stdout)
	if err != nil {
		return err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil
	}

	known := false
	for _, s := range settings.CustomServers {
		if s == answer {
			known = true
			break
		}
	}
	if !known {
		settings.CustomServers = append(settings.CustomServers, answer)
	}
	settings.ServerURL = answer

	if err := a.repos.Settings.SaveSettings(ctx, settings); err != nil {
		fmt.Println("error saving settings:", err)
		return err
	}
	fmt.Println("Selected server:", answer)
	return nil
}
