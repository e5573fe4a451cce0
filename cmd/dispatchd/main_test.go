package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"dispatchd/internal/config"
)

const testConfig = `log_level: error
sinks:
  - name: recent
    kind: memory
  - name: counter
    kind: metrics
channels:
  - name: orders
    sinks: [recent, counter]
  - name: audit
    sinks: [recent]
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	if err != nil || !strings.Contains(out, "dispatchd dev") {
		t.Fatalf("out=%q err=%v", out, err)
	}
}

func TestValidate(t *testing.T) {
	d := t.TempDir()
	good := writeFile(t, d, "good.yaml", testConfig)
	out, _, err := run(t, "validate", "--config", good, "--env-file", filepath.Join(d, "none.env"))
	if err != nil || !strings.Contains(out, "ok: 2 sinks, 2 channels") {
		t.Fatalf("out=%q err=%v", out, err)
	}

	bad := writeFile(t, d, "bad.yaml", "channels:\n  - name: c\n    sinks: [ghost]\n")
	_, errOut, err := run(t, "validate", "--config", bad, "--env-file", filepath.Join(d, "none.env"))
	if err == nil || !strings.Contains(errOut, "unknown sink") {
		t.Fatalf("expected validation failure, stderr=%q err=%v", errOut, err)
	}
}

func TestReplay(t *testing.T) {
	d := t.TempDir()
	cfg := writeFile(t, d, "cfg.yaml", testConfig)
	scr := writeFile(t, d, "events.ndjson", `{"channel":"orders","name":"created"}
{"channel":"audit","name":"login"}
{"channel":"orders","name":"paid"}
`)
	out, _, err := run(t, "replay", "--config", cfg, "--env-file", filepath.Join(d, "none.env"), "--json", scr)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	var res replayResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("json: %v out=%s", err, out)
	}
	if res.Emitted != 3 || res.Delivered != 5 || res.Rejected != 0 {
		t.Fatalf("result=%+v", res)
	}
	for _, s := range res.Sinks {
		switch s.Name {
		case "recent":
			if s.Received != 3 || s.PublisherDied != 2 {
				t.Fatalf("recent=%+v", s)
			}
		case "counter":
			if s.Received != 2 || s.PublisherDied != 1 {
				t.Fatalf("counter=%+v", s)
			}
		}
	}

	bad := writeFile(t, d, "bad.ndjson", `{"channel":"nowhere","name":"x"}`+"\n")
	out, _, err = run(t, "replay", "--config", cfg, "--env-file", filepath.Join(d, "none.env"), bad)
	if err == nil || !strings.Contains(out, "rejected=1") || !strings.Contains(out, "channel not found") {
		t.Fatalf("expected rejection, out=%q err=%v", out, err)
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	d := t.TempDir()
	spool := filepath.Join(d, "spool")
	a := &app{log: zerolog.Nop()}
	a.cfg = config.Config{
		Addr:     "127.0.0.1:0",
		SpoolDir: spool,
		Sinks:    []config.Sink{{Name: "recent", Kind: "memory"}},
		Channels: []config.Channel{{Name: "orders", Sinks: []string{"recent"}}},
	}
	a.cfg.Defaults()

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, ready) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not start")
	}

	resp, err := http.Post("http://"+addr+"/channels/orders/emit", "application/json", strings.NewReader(`{"name":"ping"}`))
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("emit status=%d body=%s", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("server did not shut down")
	}
	if _, err := os.Stat(spool); err != nil {
		t.Fatalf("spool dir not created: %v", err)
	}
}

// lockedBuffer is a goroutine-safe log sink.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// brokenListener fails every Accept so http.Server.Serve returns at once.
type brokenListener struct{ net.Listener }

func (brokenListener) Accept() (net.Conn, error) { return nil, errors.New("accept failed") }

func TestServe_ServerErrorStopsSpool(t *testing.T) {
	d := t.TempDir()
	logs := &lockedBuffer{}
	a := &app{log: zerolog.New(logs)}
	a.listen = func(network, address string) (net.Listener, error) {
		ln, err := net.Listen(network, address)
		if err != nil {
			return nil, err
		}
		return brokenListener{ln}, nil
	}
	a.cfg = config.Config{
		Addr:     "127.0.0.1:0",
		SpoolDir: filepath.Join(d, "spool"),
		Sinks:    []config.Sink{{Name: "recent", Kind: "memory"}},
		Channels: []config.Channel{{Name: "orders", Sinks: []string{"recent"}}},
	}
	a.cfg.Defaults()

	done := make(chan error, 1)
	go func() { done <- a.serve(context.Background(), nil) }()

	select {
	case err := <-done:
		if err == nil || !strings.Contains(err.Error(), "accept failed") {
			t.Fatalf("expected server error, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("serve did not return after the server failed")
	}
	if !strings.Contains(logs.String(), "spool stopped") {
		t.Fatalf("spool still running after serve returned; logs=%s", logs.String())
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger("warn", "json", &buf)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("log output=%q", buf.String())
	}
	if _, err := newLogger("loud", "json", &buf); err == nil {
		t.Fatalf("expected bad level error")
	}
}
