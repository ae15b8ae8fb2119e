// ABOUTME: Append-only JSONL sink with daily rotation and bounded retention.
// ABOUTME: Owns the active log file; no other component writes to it.

package telemetry

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultFileName is the active log file inside the log directory.
const DefaultFileName = "requests.jsonl"

// DefaultRetention is how many rotated files are kept.
const DefaultRetention = 14

// ErrPrune marks an Append whose line was written but whose retention
// pruning failed afterwards.
var ErrPrune = errors.New("pruning rotated logs")

// rotatedSuffixLayout is appended to the active name when a file is rotated.
const rotatedSuffixLayout = "2006-01-02"

// SinkConfig configures a Sink.
type SinkConfig struct {
	Dir       string
	FileName  string           // defaults to DefaultFileName
	Retention int              // defaults to DefaultRetention
	Now       func() time.Time // defaults to time.Now
}

// Sink appends lines to the active file and rotates it when the UTC
// calendar day changes. Rotated files are named <active>.YYYY-MM-DD after
// the day they cover.
type Sink struct {
	dir       string
	name      string
	retention int
	now       func() time.Time
	remove    func(string) error

	mu     sync.Mutex
	file   *os.File
	period time.Time // UTC midnight of the day the active file covers
}

// NewSink creates the log directory if needed and returns a Sink. The
// active file itself is opened on first Append.
func NewSink(cfg SinkConfig) (*Sink, error) {
	if cfg.Dir == "" {
		return nil, errors.New("log directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	s := &Sink{
		dir:       cfg.Dir,
		name:      cfg.FileName,
		retention: cfg.Retention,
		now:       cfg.Now,
		remove:    os.Remove,
	}
	if s.name == "" {
		s.name = DefaultFileName
	}
	if s.retention <= 0 {
		s.retention = DefaultRetention
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Dir returns the log directory.
func (s *Sink) Dir() string { return s.dir }

// Path returns the path of the active log file.
func (s *Sink) Path() string { return filepath.Join(s.dir, s.name) }

// Append writes one line, rotating first if the day has changed. A newline
// is added when missing. The whole line goes out in a single write.
// Retention pruning runs after the write; its failure is returned wrapped
// in ErrPrune and never costs the line.
func (s *Sink) Append(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := dayOf(s.now())

	if s.file == nil {
		if err := s.openLocked(); err != nil {
			return err
		}
	}

	rotated := false
	var rotateErr error
	if today.After(s.period) {
		if err := s.rotateLocked(today); err != nil {
			// Keep writing to the unrotated file; the next Append retries.
			rotateErr = err
			if s.file == nil {
				if err := s.openLocked(); err != nil {
					return errors.Join(rotateErr, err)
				}
			}
		} else {
			rotated = true
		}
	}

	buf := line
	if len(line) == 0 || line[len(line)-1] != '\n' {
		buf = make([]byte, len(line)+1)
		copy(buf, line)
		buf[len(line)] = '\n'
	}

	if _, err := s.file.Write(buf); err != nil {
		return fmt.Errorf("writing log line: %w", err)
	}

	if rotateErr != nil {
		return rotateErr
	}
	if rotated {
		if err := s.pruneLocked(); err != nil {
			return fmt.Errorf("%w: %w", ErrPrune, err)
		}
	}
	return nil
}

// Close releases the active file handle. A later Append reopens it.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// RotatedFiles returns rotated file paths, oldest first.
func (s *Sink) RotatedFiles() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotatedLocked()
}

// openLocked opens the active file in append mode. An existing file keeps
// the period of its last modification so a restart on a later day still
// rotates it.
func (s *Sink) openLocked() error {
	path := s.Path()

	period := dayOf(s.now())
	if info, err := os.Stat(path); err == nil {
		period = dayOf(info.ModTime())
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	s.file = f
	s.period = period
	return nil
}

// rotateLocked moves the active file aside under its period's date and
// opens a fresh active file for today. When a file for that date already
// exists the active lines are appended to it.
func (s *Sink) rotateLocked(today time.Time) error {
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("closing log file for rotation: %w", err)
	}
	s.file = nil

	target := s.Path() + "." + s.period.Format(rotatedSuffixLayout)
	if _, err := os.Stat(target); err == nil {
		if err := s.mergeInto(target); err != nil {
			return err
		}
	} else if err := os.Rename(s.Path(), target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rotating log file: %w", err)
	}

	f, err := os.OpenFile(s.Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file after rotation: %w", err)
	}
	s.file = f
	s.period = today
	return nil
}

// mergeInto appends the active file to an existing rotated file and
// removes the active file.
func (s *Sink) mergeInto(target string) error {
	src, err := os.Open(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening log file for rotation: %w", err)
	}

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		src.Close()
		return fmt.Errorf("opening rotated file: %w", err)
	}
	_, err = io.Copy(dst, src)
	src.Close()
	if err != nil {
		dst.Close()
		return fmt.Errorf("merging into rotated file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("closing rotated file: %w", err)
	}
	if err := os.Remove(s.Path()); err != nil {
		return fmt.Errorf("removing merged log file: %w", err)
	}
	return nil
}

// pruneLocked deletes the oldest rotated files beyond the retention count.
func (s *Sink) pruneLocked() error {
	rotated, err := s.rotatedLocked()
	if err != nil {
		return err
	}
	if len(rotated) <= s.retention {
		return nil
	}

	var errs []error
	for _, path := range rotated[:len(rotated)-s.retention] {
		if err := s.remove(path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("pruning %s: %w", filepath.Base(path), err))
		}
	}
	return errors.Join(errs...)
}

func (s *Sink) rotatedLocked() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading log directory: %w", err)
	}

	prefix := s.name + "."
	type rotated struct {
		path string
		day  time.Time
	}
	var files []rotated
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		day, err := time.Parse(rotatedSuffixLayout, strings.TrimPrefix(entry.Name(), prefix))
		if err != nil {
			continue // not one of ours
		}
		files = append(files, rotated{path: filepath.Join(s.dir, entry.Name()), day: day})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].day.Before(files[j].day) })

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

// dayOf truncates t to UTC midnight.
func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
