package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kubakubakuba/templogger/internal/modules/temperature/types"
)

// TimestampLayout is the fixed timestamp format of every sensor log line.
const TimestampLayout = "2006-01-02 15:04:05"

const FieldSeparator = ", "

var roomPattern = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9_.-]*$`)

type SampleStore interface {
	Append(room string, ts time.Time, temperature string) error
	Read(room string) ([]byte, error)
	Rooms() ([]string, error)
	Path(room string) (string, error)
}

type fileStore struct {
	dir string
	ext string
}

// NewFileStore keeps one append-only log per room under dir, named {room}.{ext}.
func NewFileStore(dir, ext string) SampleStore {
	return &fileStore{dir: dir, ext: strings.TrimPrefix(ext, ".")}
}

// ValidRoom reports whether name is usable as a sensor log file name.
func ValidRoom(name string) bool {
	return roomPattern.MatchString(name)
}

// FormatLine renders one log record, including the trailing newline.
func FormatLine(ts time.Time, temperature string) string {
	return ts.Format(TimestampLayout) + FieldSeparator + temperature + "\n"
}

func (s *fileStore) Path(room string) (string, error) {
	if !ValidRoom(room) {
		return "", fmt.Errorf("%w: %q", types.ErrInvalidRoom, room)
	}
	return filepath.Join(s.dir, room+"."+s.ext), nil
}

// Append writes exactly one line with a single write on an O_APPEND descriptor,
// so concurrent writers never interleave partial lines.
func (s *fileStore) Append(room string, ts time.Time, temperature string) error {
	path, err := s.Path(room)
	if err != nil {
		return err
	}
	temperature = strings.TrimSpace(temperature)
	if temperature == "" || strings.ContainsAny(temperature, "\r\n") {
		return fmt.Errorf("append %s: %w %q", room, types.ErrInvalidTemperature, temperature)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log %s: %w", path, err)
	}
	_, err = f.Write([]byte(FormatLine(ts, temperature)))
	closeErr := f.Close()
	if err != nil {
		return fmt.Errorf("append %s: %w", path, err)
	}
	if closeErr != nil {
		return fmt.Errorf("close log %s: %w", path, closeErr)
	}
	return nil
}

func (s *fileStore) Read(room string) ([]byte, error) {
	path, err := s.Path(room)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrMissingFile, filepath.Base(path))
		}
		return nil, fmt.Errorf("read log %s: %w", path, err)
	}
	return b, nil
}

// Rooms lists every sensor with a log file in the store directory, sorted by name.
func (s *fileStore) Rooms() ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(s.dir), "*."+s.ext, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("list logs in %s: %w", s.dir, err)
	}
	rooms := make([]string, 0, len(matches))
	for _, m := range matches {
		room := strings.TrimSuffix(m, "."+s.ext)
		if ValidRoom(room) {
			rooms = append(rooms, room)
		}
	}
	slices.Sort(rooms)
	return rooms, nil
}
