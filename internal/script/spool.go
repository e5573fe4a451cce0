package script

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"dispatchd/internal/common/fsutil"
)

// Suffixes appended to a spooled script once it has been handled.
const (
	DoneSuffix   = ".done"
	FailedSuffix = ".failed"
)

// Spool watches a directory and replays every *.ndjson script that appears
// in it. Producers should write elsewhere and rename into the directory so
// the spool never sees a partial file.
type Spool struct {
	dir string
	em  Emitter
	log zerolog.Logger

	// OnFile, when set, is called after each script has been handled.
	OnFile func(path string, sum Summary, err error)
}

// NewSpool constructs a Spool for dir.
func NewSpool(dir string, em Emitter, l zerolog.Logger) *Spool {
	return &Spool{dir: dir, em: em, log: l.With().Str("component", "spool").Str("dir", dir).Logger()}
}

// Backfill replays the scripts already waiting in the directory.
func (s *Spool) Backfill(ctx context.Context) error {
	files, err := fsutil.ListByExt(s.dir, Ext)
	if err != nil {
		return err
	}
	for _, f := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.process(ctx, f)
	}
	return nil
}

// Run creates the directory if needed, replays the backlog and then watches
// for new scripts until ctx is done.
func (s *Spool) Run(ctx context.Context) error {
	dir, err := fsutil.EnsureDir(s.dir)
	if err != nil {
		return err
	}
	s.dir = dir
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return err
	}
	s.log.Info().Msg("spool watching")
	if err := s.Backfill(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn().Err(err).Msg("spool backfill")
	}
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("spool stopped")
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Op&fsnotify.Create != 0 && isScript(evt.Name) {
				s.process(ctx, evt.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (s *Spool) process(ctx context.Context, path string) {
	events, err := LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		// already handled
		return
	}
	var sum Summary
	if err == nil {
		sum, err = Replay(ctx, s.em, events)
	}
	suffix := DoneSuffix
	if err != nil {
		suffix = FailedSuffix
		s.log.Warn().Err(err).Str("file", filepath.Base(path)).Msg("script failed")
	} else {
		s.log.Info().Str("file", filepath.Base(path)).Int("emitted", sum.Emitted).Int("failures", sum.Failures).Msg("script replayed")
	}
	if rerr := os.Rename(path, path+suffix); rerr != nil {
		s.log.Error().Err(rerr).Str("file", path).Msg("rename spooled script")
	}
	if s.OnFile != nil {
		s.OnFile(path, sum, err)
	}
}

func isScript(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Ext)
}
