package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/goliatone/go-formpreview/pkg/preview"
	"github.com/goliatone/go-formpreview/pkg/source"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "values.json")
	other := filepath.Join(dir, "other.txt")
	writeFile(t, target, "{}")

	w, err := New([]string{target}, WithDebounce(40*time.Millisecond))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	var (
		mu      sync.Mutex
		batches [][]string
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(changed []string) {
			mu.Lock()
			batches = append(batches, changed)
			mu.Unlock()
		})
	}()

	for i := 0; i < 5; i++ {
		writeFile(t, target, `{"n":"x"}`)
		writeFile(t, other, "ignored")
		time.Sleep(5 * time.Millisecond)
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) > 0
	})
	time.Sleep(100 * time.Millisecond)
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 {
		t.Fatalf("expected a single debounced batch, got %v", batches)
	}
	abs, _ := filepath.Abs(target)
	if len(batches[0]) != 1 || batches[0][0] != abs {
		t.Fatalf("unexpected batch: %v", batches[0])
	}
}

func TestWatcher_RequiresFiles(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error without files")
	}
}

func TestLive_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "letter.html")
	defs := filepath.Join(dir, "fields.json")
	values := filepath.Join(dir, "values.json")
	writeFile(t, tmpl, "<p>Dear {{name}}</p>")
	writeFile(t, defs, `{"name":{"label":"Name","group":"person|1"}}`)
	writeFile(t, values, `{"name":"Jane"}`)

	var (
		mu    sync.Mutex
		state preview.PreviewState
	)
	coord := preview.NewCoordinator(nil, preview.WithOnPublish(func(s preview.PreviewState) {
		mu.Lock()
		state = s
		mu.Unlock()
	}))
	current := func() string {
		mu.Lock()
		defer mu.Unlock()
		return state.HTML
	}

	live := NewLive(source.NewLoader(source.LoaderOptions{}), Inputs{
		Template:    tmpl,
		Definitions: defs,
		Values:      values,
	}, coord, WithWatchOptions(WithDebounce(20*time.Millisecond)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- live.Run(ctx) }()

	waitFor(t, func() bool { return current() == "<p>Dear Jane</p>" })
	if secs := live.Sections(); len(secs) != 1 || secs[0].Name != "person" {
		t.Fatalf("unexpected sections: %+v", secs)
	}

	writeFile(t, values, `{"name":"Ann"}`)
	waitFor(t, func() bool { return current() == "<p>Dear Ann</p>" })

	writeFile(t, tmpl, "<h1>Hi {{name}}</h1>")
	waitFor(t, func() bool { return strings.HasPrefix(current(), "<h1>Hi Ann") })

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLive_ReloadReportsErrors(t *testing.T) {
	dir := t.TempDir()
	live := NewLive(source.NewLoader(source.LoaderOptions{}), Inputs{
		Template: filepath.Join(dir, "missing.html"),
	}, preview.NewCoordinator(nil))

	if err := live.Run(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
}
