package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type spooled struct {
	path string
	sum  Summary
	err  error
}

func TestSpool_BackfillAndWatch(t *testing.T) {
	h := newHub(t)
	dir := t.TempDir()
	staging := t.TempDir()
	writeScript(t, dir, "backlog.ndjson", `{"channel":"orders","name":"old"}`+"\n")

	done := make(chan spooled, 4)
	sp := NewSpool(dir, h, zerolog.Nop())
	sp.OnFile = func(path string, sum Summary, err error) { done <- spooled{path, sum, err} }

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- sp.Run(ctx) }()

	first := waitSpooled(t, done)
	if filepath.Base(first.path) != "backlog.ndjson" || first.err != nil || first.sum.Emitted != 1 {
		t.Fatalf("backlog result: %+v", first)
	}
	if _, err := os.Stat(filepath.Join(dir, "backlog.ndjson"+DoneSuffix)); err != nil {
		t.Fatalf("backlog not marked done: %v", err)
	}

	src := writeScript(t, staging, "live.ndjson", `{"channel":"orders","name":"new"}`+"\n")
	if err := os.Rename(src, filepath.Join(dir, "live.ndjson")); err != nil {
		t.Fatalf("rename: %v", err)
	}
	second := waitSpooled(t, done)
	if filepath.Base(second.path) != "live.ndjson" || second.err != nil {
		t.Fatalf("live result: %+v", second)
	}

	bad := writeScript(t, staging, "bad.ndjson", "{oops}\n")
	if err := os.Rename(bad, filepath.Join(dir, "bad.ndjson")); err != nil {
		t.Fatalf("rename: %v", err)
	}
	third := waitSpooled(t, done)
	if third.err == nil {
		t.Fatalf("expected parse failure")
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.ndjson"+FailedSuffix)); err != nil {
		t.Fatalf("bad script not marked failed: %v", err)
	}

	cancel()
	select {
	case err := <-stopped:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("spool did not stop")
	}

	evs, err := h.SinkEvents("mem")
	if err != nil {
		t.Fatalf("sink events: %v", err)
	}
	// every event lands twice: mem is attached twice
	if len(evs) != 4 || evs[0].Name != "old" || evs[2].Name != "new" {
		t.Fatalf("sink saw %+v", evs)
	}
}

func waitSpooled(t *testing.T, ch <-chan spooled) spooled {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for spooled script")
	}
	return spooled{}
}
