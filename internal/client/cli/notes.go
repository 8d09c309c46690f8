package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/notes"
)

func (a *App) requireUnlocked() bool {
	if !a.isUnlocked() {
		fmt.Println("Unlock first (enter 'unlock' or 'newphrase')")
		return false
	}
	return true
}

// AddNote prompts for a title and body and stores a new note.
func (a *App) AddNote(ctx context.Context) error {
	if !a.requireUnlocked() {
		return nil
	}

	title, err := GetSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	body, err := GetMultiline(a.reader, "Body", os.Stdout)
	if err != nil {
		return err
	}

	n := notes.New(title, body)
	if err := a.repos.Notes.Upsert(ctx, n); err != nil {
		fmt.Println("error saving note:", err)
		return err
	}
	fmt.Println("Saved", n.ID)
	return nil
}

// List prints all live notes.
func (a *App) List(ctx context.Context) error {
	if !a.requireUnlocked() {
		return nil
	}

	items, err := a.repos.Notes.List(ctx)
	if err != nil {
		fmt.Println("error listing notes:", err)
		return err
	}
	if len(items) == 0 {
		fmt.Println("No notes yet")
		return nil
	}
	for _, n := range items {
		modified := time.UnixMilli(n.ModifiedAt).Format("2006-01-02 15:04")
		fmt.Printf("%s  %-30s  %s\n", n.ID, n.Title, modified)
	}
	return nil
}

// Show prints one note by ID.
func (a *App) Show(ctx context.Context) error {
	if !a.requireUnlocked() {
		return nil
	}

	id, err := GetSimpleText(a.reader, "Note ID", os.Stdout)
	if err != nil {
		return err
	}

	n, err := a.repos.Notes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			fmt.Println("No such note")
			return nil
		}
		return err
	}

	fmt.Println("# " + n.Title)
	fmt.Println(n.Body)
	return nil
}

// Delete tombstones one note by ID.
func (a *App) Delete(ctx context.Context) error {
	if !a.requireUnlocked() {
		return nil
	}

	id, err := GetSimpleText(a.reader, "Note ID", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.repos.Notes.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			fmt.Println("No such note")
			return nil
		}
		return err
	}
	fmt.Println("Deleted (will propagate on next sync)")
	return nil
}
