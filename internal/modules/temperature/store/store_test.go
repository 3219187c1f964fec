package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kubakubakuba/templogger/internal/modules/temperature/types"
)

func TestValidRoom(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"kitchen", true},
		{"living_room-2", true},
		{"room.v2", true},
		{"", false},
		{".", false},
		{"..", false},
		{".hidden", false},
		{"../etc", false},
		{"a/b", false},
		{"with space", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidRoom(tt.name); got != tt.want {
				t.Errorf("ValidRoom(%q) = %v; want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestAppend_WritesOneLinePerCall(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, "tlog")
	ts := time.Date(2024, 1, 1, 6, 30, 0, 0, time.Local)

	if err := s.Append("kitchen", ts, "21.5"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append("kitchen", ts.Add(time.Minute), " 22 "); err != nil {
		t.Fatalf("Append: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "kitchen.tlog"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	want := "2024-01-01 06:30:00, 21.5\n2024-01-01 06:31:00, 22\n"
	if string(b) != want {
		t.Errorf("log content = %q; want %q", string(b), want)
	}
}

func TestAppend_RejectsBadInput(t *testing.T) {
	s := NewFileStore(t.TempDir(), "tlog")
	now := time.Now()

	if err := s.Append("../escape", now, "1"); !errors.Is(err, types.ErrInvalidRoom) {
		t.Errorf("Append(bad room) err = %v; want ErrInvalidRoom", err)
	}
	if err := s.Append("kitchen", now, "1\n2"); err == nil {
		t.Error("Append(multi-line temperature) = nil; want error")
	}
	if err := s.Append("kitchen", now, "   "); err == nil {
		t.Error("Append(blank temperature) = nil; want error")
	}
}

func TestAppend_ConcurrentWritersKeepLinesWhole(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, "tlog")
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)

	const writers = 16
	const perWriter = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				if err := s.Append("hall", ts, "20.125"); err != nil {
					t.Errorf("Append: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	b, err := os.ReadFile(filepath.Join(dir, "hall.tlog"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	if len(lines) != writers*perWriter {
		t.Fatalf("got %d lines; want %d", len(lines), writers*perWriter)
	}
	for i, l := range lines {
		if l != "2024-01-01 00:00:00, 20.125" {
			t.Fatalf("line %d = %q; corrupted", i, l)
		}
	}
}

func TestRead_MissingFile(t *testing.T) {
	s := NewFileStore(t.TempDir(), "tlog")
	_, err := s.Read("nowhere")
	if !errors.Is(err, types.ErrMissingFile) {
		t.Fatalf("Read(missing) err = %v; want ErrMissingFile", err)
	}
}

func TestRooms(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.tlog", "a.tlog", "notes.txt", ".hidden.tlog"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "dir.tlog"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	rooms, err := NewFileStore(dir, ".tlog").Rooms()
	if err != nil {
		t.Fatalf("Rooms: %v", err)
	}
	if len(rooms) != 2 || rooms[0] != "a" || rooms[1] != "b" {
		t.Errorf("Rooms() = %v; want [a b]", rooms)
	}
}
