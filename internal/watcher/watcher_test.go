package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

func newTestWatcher(t *testing.T, handler EventHandler, maxConcurrent int) (*implWatcher, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "inbox")
	w, err := New(dir, handler, logger.Nop(), maxConcurrent)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { w.Stop() })

	impl := w.(*implWatcher)
	impl.settle = 10 * time.Millisecond
	return impl, dir
}

func run(t *testing.T, w *implWatcher) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	return cancel, done
}

func TestRoutable(t *testing.T) {
	w := &implWatcher{}
	tests := []struct {
		path string
		want bool
	}{
		{"/in/lecture.MP4", true},
		{"/in/slides.pptx", true},
		{"/in/scan.png", true},
		{"/in/notes.exe", false},
		{"/in/.upload-123.mp3", false},
		{"/in/archive.zip", false},
	}
	for _, tt := range tests {
		if got := w.routable(tt.path); got != tt.want {
			t.Errorf("routable(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestStartHandlesSupportedFiles(t *testing.T) {
	var mu sync.Mutex
	var handled []string
	got := make(chan struct{}, 4)

	w, dir := newTestWatcher(t, func(ctx context.Context, path string) error {
		mu.Lock()
		handled = append(handled, filepath.Base(path))
		mu.Unlock()
		got <- struct{}{}
		return errors.New("handler failures are logged only")
	}, 2)
	cancel, done := run(t, w)

	// Give the watcher loop a moment to start selecting.
	time.Sleep(50 * time.Millisecond)
	for _, name := range []string{"readme.exe", "talk.mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Start() error = %v, want context.Canceled", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(handled) != 1 || handled[0] != "talk.mp3" {
		t.Errorf("handled = %v, want [talk.mp3]", handled)
	}
}

func TestStartBoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 3)

	w, dir := newTestWatcher(t, func(ctx context.Context, path string) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		started <- struct{}{}
		<-release
		running.Add(-1)
		return nil
	}, 1)
	cancel, done := run(t, w)

	time.Sleep(50 * time.Millisecond)
	for _, name := range []string{"a.wav", "b.wav"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	<-started
	select {
	case <-started:
		t.Fatal("second handler started while the first held the only slot")
	case <-time.After(200 * time.Millisecond):
	}

	close(release)
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("second handler never ran")
	}

	cancel()
	<-done
	if peak.Load() != 1 {
		t.Errorf("peak concurrency = %d, want 1", peak.Load())
	}
}

func TestSemaphoreAcquireCancelled(t *testing.T) {
	s := newSemaphore(1)
	if err := s.acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("acquire() error = %v, want context.Canceled", err)
	}

	s.release()
	if err := s.acquire(context.Background()); err != nil {
		t.Errorf("acquire() after release error = %v", err)
	}
}
