package script

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadFile(t *testing.T) {
	d := t.TempDir()
	p := writeScript(t, d, "orders.ndjson", `# seed data
{"channel":"orders","name":"created","payload":{"id":1}}

{"channel":"orders","name":"paid","id":"fixed-id","time":"2024-05-01T12:00:00Z"}
`)
	evs, err := LoadFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if evs[0].Name != "created" || evs[0].Payload["id"].(float64) != 1 {
		t.Fatalf("first event: %+v", evs[0])
	}
	if evs[1].ID != "fixed-id" || evs[1].Time.IsZero() {
		t.Fatalf("second event: %+v", evs[1])
	}
}

func TestLoadFile_ErrorsCarryLine(t *testing.T) {
	d := t.TempDir()
	cases := map[string]string{
		"badjson.ndjson": "{\"channel\":\"c\",\"name\":\"ok\"}\n{not json}\n",
		"nochan.ndjson":  "# c\n\n{\"name\":\"x\"}\n",
		"noname.ndjson":  "{\"channel\":\"c\"}\n",
	}
	wantLine := map[string]int{"badjson.ndjson": 2, "nochan.ndjson": 3, "noname.ndjson": 1}
	for name, body := range cases {
		p := writeScript(t, d, name, body)
		_, err := LoadFile(p)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("%s: expected ParseError, got %v", name, err)
		}
		if pe.Line != wantLine[name] {
			t.Fatalf("%s: line=%d want %d", name, pe.Line, wantLine[name])
		}
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("%s: error does not name the file: %v", name, err)
		}
	}
}

func TestLoadDir_FileNameOrder(t *testing.T) {
	d := t.TempDir()
	writeScript(t, d, "02.ndjson", `{"channel":"c","name":"second"}`+"\n")
	writeScript(t, d, "01.ndjson", `{"channel":"c","name":"first"}`+"\n")
	writeScript(t, d, "notes.txt", "ignored\n")
	evs, err := LoadDir(d)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if len(evs) != 2 || evs[0].Name != "first" || evs[1].Name != "second" {
		t.Fatalf("events=%+v", evs)
	}
}

func TestLoad_MixesFilesAndDirs(t *testing.T) {
	d := t.TempDir()
	sub := filepath.Join(d, "more")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f := writeScript(t, d, "single.ndjson", `{"channel":"c","name":"a"}`+"\n")
	writeScript(t, sub, "x.ndjson", `{"channel":"c","name":"b"}`+"\n")
	evs, err := Load(f, sub)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(evs) != 2 || evs[0].Name != "a" || evs[1].Name != "b" {
		t.Fatalf("events=%+v", evs)
	}
	if _, err := Load(filepath.Join(d, "missing.ndjson")); err == nil {
		t.Fatalf("expected error for missing path")
	}
}
