package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	unlocked bool
	calls    []string
}

func (f *fakeExec) isUnlocked() bool { return f.unlocked }
func (f *fakeExec) Unlock(ctx context.Context) error {
	f.calls = append(f.calls, "unlock")
	f.unlocked = true
	return nil
}
func (f *fakeExec) NewPhrase(ctx context.Context) error {
	f.calls = append(f.calls, "newphrase")
	f.unlocked = true
	return nil
}
func (f *fakeExec) AddNote(ctx context.Context) error {
	f.calls = append(f.calls, "add")
	return nil
}
func (f *fakeExec) List(ctx context.Context) error { f.calls = append(f.calls, "list"); return nil }
func (f *fakeExec) Show(ctx context.Context) error { f.calls = append(f.calls, "show"); return nil }
func (f *fakeExec) Delete(ctx context.Context) error {
	f.calls = append(f.calls, "delete")
	return nil
}
func (f *fakeExec) Sync(ctx context.Context) error { f.calls = append(f.calls, "sync"); return nil }
func (f *fakeExec) Servers(ctx context.Context) error {
	f.calls = append(f.calls, "servers")
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.unlocked = false
	return nil
}

func runScript(t *testing.T, f *fakeExec, lines ...string) {
	t.Helper()

	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join(lines, "\n") + "\n")
	runREPL(context.Background(), f, func() string { return "test" }, bufio.NewScanner(input))
}

func TestRunREPL_UnlockFlowAndCommands(t *testing.T) {
	f := &fakeExec{}
	runScript(t, f, "unlock", "add", "list", "show", "delete", "sync", "servers", "logout", "exit")

	require.Equal(t,
		[]string{"unlock", "add", "list", "show", "delete", "sync", "servers", "logout"},
		f.calls)
}

func TestRunREPL_ShortListAlias(t *testing.T) {
	f := &fakeExec{unlocked: true}
	runScript(t, f, "l", "quit")
	require.Equal(t, []string{"list"}, f.calls)
}

func TestRunREPL_UnknownAndEmptyAreIgnored(t *testing.T) {
	f := &fakeExec{}
	runScript(t, f, "", "whatever", "   ", "help", "exit")
	require.Empty(t, f.calls)
}

func TestRunREPL_EOFTerminates(t *testing.T) {
	f := &fakeExec{}
	runScript(t, f, "unlock")
	require.Equal(t, []string{"unlock"}, f.calls)
}
