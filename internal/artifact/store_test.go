package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

var fixedNow = time.Date(2026, time.March, 9, 14, 5, 7, 0, time.UTC)

func newTestStore(t *testing.T) *implStore {
	t.Helper()
	dir := t.TempDir()
	s, err := New(dir, filepath.Join(dir, "lineage.db"), logger.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	impl := s.(*implStore)
	impl.now = func() time.Time { return fixedNow }
	return impl
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		in   Name
		want string
	}{
		{"upload", Name{Base: "My Lecture #3", Ext: ".mp4"}, "My_Lecture_3_20260309_140507.mp4"},
		{"tagged", Name{Base: "bio_notes", Tag: "Summary", Ext: ".tex"}, "bio_notes_Summary_20260309_140507.tex"},
		{"unicode kept", Name{Base: "bài giảng", Ext: ".wav"}, "bài_giảng_20260309_140507.wav"},
		{"nothing left", Name{Base: "???", Ext: ".txt"}, "file_20260309_140507.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filename(tt.in, fixedNow); got != tt.want {
				t.Errorf("Filename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPutPartitionsByMonth(t *testing.T) {
	s := newTestStore(t)

	p, err := s.Put(RootRender, "a.tex")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	want := filepath.Join(s.baseDir, "render", "03-2026", "a.tex")
	if p != want {
		t.Errorf("Put() = %q, want %q", p, want)
	}
	if info, err := os.Stat(filepath.Dir(p)); err != nil || !info.IsDir() {
		t.Errorf("partition not created: %v", err)
	}
}

func TestPutConcurrent(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Put(RootQuiz, "q.json"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Put() error = %v", err)
	}
}

func TestNewPathNeverOverwrites(t *testing.T) {
	s := newTestStore(t)
	n := Name{Base: "talk", Tag: "transcript", Ext: ".txt"}

	first, err := s.NewPath(RootTranscript, n)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(first, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}

	second, err := s.NewPath(RootTranscript, n)
	if err != nil {
		t.Fatal(err)
	}
	if second == first {
		t.Fatalf("NewPath() returned an existing path %q", first)
	}
	if !strings.HasPrefix(filepath.Base(second), "talk_transcript_20260309_140507_") {
		t.Errorf("collision path = %q", second)
	}
}

func TestNewPathConcurrentRunsGetDistinctFiles(t *testing.T) {
	s := newTestStore(t)
	n := Name{Base: "lecture", Tag: "Quiz", Ext: ".json"}

	const runs = 8
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		paths = make(chan string, runs)
		errs  = make(chan error, runs)
	)
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			p, err := s.NewPath(RootQuiz, n)
			if err != nil {
				errs <- err
				return
			}
			if err := os.WriteFile(p, []byte(fmt.Sprintf("run %d", i)), 0644); err != nil {
				errs <- err
				return
			}
			paths <- p
		}(i)
	}
	close(start)
	wg.Wait()
	close(paths)
	close(errs)

	for err := range errs {
		t.Fatalf("NewPath() error = %v", err)
	}
	seen := make(map[string]bool)
	for p := range paths {
		if seen[p] {
			t.Errorf("path %q handed out twice", p)
		}
		seen[p] = true
	}
	if len(seen) != runs {
		t.Errorf("distinct paths = %d, want %d", len(seen), runs)
	}

	files, err := s.List(RootQuiz, ".json")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != runs {
		t.Errorf("files on disk = %d, want %d", len(files), runs)
	}
}

func TestNewPathReservesFile(t *testing.T) {
	s := newTestStore(t)

	p, err := s.NewPath(RootRender, Name{Base: "notes", Tag: "Summary", Ext: ".tex"})
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(p)
	if err != nil {
		t.Fatalf("reserved path missing: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("reserved file size = %d, want 0", info.Size())
	}
}

func TestList(t *testing.T) {
	s := newTestStore(t)

	write := func(root Root, name string, age time.Duration) string {
		p, err := s.Put(root, name)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
		mt := fixedNow.Add(-age)
		if err := os.Chtimes(p, mt, mt); err != nil {
			t.Fatal(err)
		}
		return p
	}

	older := write(RootTranscript, "a_transcript.txt", 2*time.Hour)
	newer := write(RootTranscript, "b_transcript.txt", time.Hour)
	write(RootTranscript, "b_transcript_timestamped.txt", 0)
	write(RootTranscript, "notes.docx", 0)

	got, err := s.List(RootTranscript, ".txt")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 || got[0] != newer || got[1] != older {
		t.Errorf("List() = %v, want [%s %s]", got, newer, older)
	}

	all, err := s.List(RootTranscript)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("List() without filter = %v", all)
	}

	empty, err := s.List(RootQuiz, ".json")
	if err != nil || len(empty) != 0 {
		t.Errorf("List() of missing root = %v, %v", empty, err)
	}
}

func TestSaveUpload(t *testing.T) {
	s := newTestStore(t)

	p, err := s.SaveUpload("Lecture 1.MP4", strings.NewReader("video-bytes"))
	if err != nil {
		t.Fatalf("SaveUpload() error = %v", err)
	}
	if filepath.Base(p) != "Lecture_1_20260309_140507.mp4" {
		t.Errorf("SaveUpload() = %q", p)
	}
	data, err := os.ReadFile(p)
	if err != nil || string(data) != "video-bytes" {
		t.Errorf("content = %q, %v", data, err)
	}

	entries, _ := os.ReadDir(filepath.Dir(p))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".upload-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestResolve(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.Put(RootRender, "doc_Summary.tex")
	if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := s.Resolve(RootRender, "doc_Summary.tex")
	if err != nil || got != p {
		t.Errorf("Resolve(bare) = %q, %v", got, err)
	}
	if got, err := s.Resolve(RootRender, p); err != nil || got != p {
		t.Errorf("Resolve(path) = %q, %v", got, err)
	}
	if _, err := s.Resolve(RootRender, filepath.Join(s.baseDir, "lineage.db")); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("Resolve(outside) error = %v, want ErrOutsideRoot", err)
	}
	if _, err := s.Resolve(RootRender, "missing.tex"); err == nil {
		t.Error("Resolve(missing) should fail")
	}
}

func TestLineage(t *testing.T) {
	s := newTestStore(t)

	steps := []Artifact{
		{Key: "media/lecture.wav", Stage: "convert", Source: "media/lecture.mp4"},
		{Key: "transcript/lecture_transcript.txt", Stage: "transcript", Source: "media/lecture.wav"},
		{Key: "render/lecture_Summary.tex", Stage: "document", Source: "transcript/lecture_transcript.txt"},
	}
	for _, a := range steps {
		if err := s.Record(a); err != nil {
			t.Fatalf("Record(%s) error = %v", a.Key, err)
		}
	}

	chain, err := s.Lineage("render/lecture_Summary.tex")
	if err != nil {
		t.Fatalf("Lineage() error = %v", err)
	}
	var keys []string
	for _, a := range chain {
		keys = append(keys, a.Key)
	}
	want := "render/lecture_Summary.tex,transcript/lecture_transcript.txt,media/lecture.wav,media/lecture.mp4"
	if strings.Join(keys, ",") != want {
		t.Errorf("Lineage() = %v", keys)
	}
	if chain[len(chain)-1].Stage != "input" {
		t.Errorf("root stage = %q, want input", chain[len(chain)-1].Stage)
	}

	a, err := s.Lookup("media/lecture.wav")
	if err != nil || a.Stage != "convert" || !a.CreatedAt.Equal(fixedNow) {
		t.Errorf("Lookup() = %+v, %v", a, err)
	}
}

func TestRecordRejects(t *testing.T) {
	s := newTestStore(t)

	if err := s.Record(Artifact{Key: "x", Source: "x"}); !errors.Is(err, ErrSelfReference) {
		t.Errorf("self reference error = %v", err)
	}
	if err := s.Record(Artifact{Key: "y", Stage: "quiz"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(Artifact{Key: "y", Stage: "quiz"}); !errors.Is(err, ErrAlreadyRecorded) {
		t.Errorf("duplicate error = %v", err)
	}
	if _, err := s.Lookup("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup() error = %v", err)
	}
}
