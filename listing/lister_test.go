package listing

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLister(t *testing.T, opts Options) *Lister {
	t.Helper()
	l, err := New(opts)
	require.NoError(t, err)
	return l
}

func TestNew_Options(t *testing.T) {
	_, err := New(Options{Workers: -1})
	assert.ErrorIs(t, err, ErrInvalidWorkers)

	_, err = New(Options{QueueCapacity: -1})
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	l, err := New(Options{})
	require.NoError(t, err)
	assert.Positive(t, l.Workers())
}

func TestList_MatchesSerialWithOneWorker(t *testing.T) {
	trees := []struct {
		name               string
		depth, dirs, files int
	}{
		{"flat", 0, 0, 10},
		{"narrow deep", 6, 1, 1},
		{"wide shallow", 1, 20, 3},
		{"balanced", 3, 3, 2},
		{"empty dirs", 3, 2, 0},
	}

	for _, tt := range trees {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemFS()
			buildTree(m, "/r", tt.depth, tt.dirs, tt.files)

			res, err := newLister(t, Options{Workers: 1, FS: m}).List(context.Background(), "/r")
			require.NoError(t, err)
			assert.Equal(t, ListSerial(m, "/r", nil), res.Paths)
		})
	}
}

func TestList_SameResultForAnyWorkerCount(t *testing.T) {
	m := NewMemFS()
	created := buildTree(m, "/data", 4, 3, 4)
	expected := ListSerial(m, "/data", nil)
	require.Len(t, expected, created+1)

	for _, workers := range []int{1, 2, 8, 64} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			l := newLister(t, Options{Workers: workers, FS: m})
			for range 5 {
				res, err := l.List(context.Background(), "/data")
				require.NoError(t, err)
				assert.Equal(t, expected, res.Paths)
				assert.Equal(t, workers, res.Stats.Workers)
			}
		})
	}
}

func TestList_RootNotFound(t *testing.T) {
	m := NewMemFS()
	log := &eventLog{}

	res, err := newLister(t, Options{Workers: 4, FS: m, Recorder: log}).List(context.Background(), "/does/not/exist")
	require.NoError(t, err)
	assert.Empty(t, res.Paths)
	assert.Zero(t, res.Stats.Workers)
	assert.Zero(t, m.Reads())
	assert.Zero(t, log.count(EventTaskStart))
	assert.Zero(t, log.count(EventPoolShutdown))
	assert.Equal(t, []State{StateIdle, StateSeeding, StateDone}, log.states())
}

func TestList_RootIsFile(t *testing.T) {
	m := NewMemFS()
	m.AddFile("/path/to/a/plain/file")

	res, err := newLister(t, Options{Workers: 4, FS: m}).List(context.Background(), "/path/to/a/plain/file")
	require.NoError(t, err)
	assert.Equal(t, Set{"/path/to/a/plain/file": {}}, res.Paths)
	assert.Zero(t, m.Reads())
	assert.Zero(t, res.Stats.Tasks)
}

func TestList_EmptyRootDirectory(t *testing.T) {
	m := NewMemFS()
	m.AddDir("/empty")

	res, err := newLister(t, Options{Workers: 2, FS: m}).List(context.Background(), "/empty")
	require.NoError(t, err)
	assert.Equal(t, Set{"/empty": {}}, res.Paths)
	assert.Equal(t, int64(1), res.Stats.Tasks)
}

func TestList_StateSequence(t *testing.T) {
	m := NewMemFS()
	buildTree(m, "/r", 1, 2, 1)
	log := &eventLog{}

	_, err := newLister(t, Options{Workers: 2, FS: m, Recorder: log}).List(context.Background(), "/r")
	require.NoError(t, err)
	assert.Equal(t,
		[]State{StateIdle, StateSeeding, StateRunning, StateDraining, StateDone},
		log.states())
	assert.Equal(t, 1, log.count(EventPoolShutdown))
	assert.Equal(t, 3, log.count(EventTaskStart))
}

func TestList_DoesNotFinishWhileTaskInFlight(t *testing.T) {
	m := NewMemFS()
	buildTree(m, "/r", 2, 3, 2)
	gate := m.Block("/r/dir01")
	defer gate.Release()

	type outcome struct {
		res *Result
		err error
	}
	l := newLister(t, Options{Workers: 4, FS: m})
	done := make(chan outcome, 1)
	go func() {
		res, err := l.List(context.Background(), "/r")
		done <- outcome{res, err}
	}()

	select {
	case <-gate.Entered():
	case <-time.After(2 * time.Second):
		t.Fatal("no worker reached the held directory")
	}

	select {
	case <-done:
		t.Fatal("List returned while a worker still held an unfinished task")
	case <-time.After(100 * time.Millisecond):
	}

	gate.Release()
	select {
	case out := <-done:
		require.NoError(t, out.err)
		assert.Equal(t, ListSerial(m, "/r", nil), out.res.Paths)
		assert.True(t, out.res.Paths.Has("/r/dir01/dir02/file01.json"))
	case <-time.After(5 * time.Second):
		t.Fatal("List did not finish after the held task was released")
	}
}

func TestList_FailedSubdirectoryIsSkipped(t *testing.T) {
	m := NewMemFS()
	buildTree(m, "/r", 3, 3, 2)
	m.FailOn("/r/dir01", fs.ErrPermission)
	log := &eventLog{}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := newLister(t, Options{Workers: 4, FS: m, Recorder: log}).List(ctx, "/r")
	require.NoError(t, err)

	var errs []*TraversalError
	expected := ListSerial(m, "/r", func(te *TraversalError) { errs = append(errs, te) })
	require.Len(t, errs, 1)
	assert.Equal(t, expected, res.Paths)

	assert.True(t, res.Paths.Has("/r/dir01"), "the unreadable directory itself is still listed")
	assert.False(t, res.Paths.Has("/r/dir01/file00.json"))
	assert.True(t, res.Paths.Has("/r/dir02/dir00/dir01/file01.json"))
	assert.Equal(t, int64(1), res.Stats.Errors)
	assert.Equal(t, 1, log.count(EventTaskError))
}

func TestList_DirectoryVanishesBeforeItIsRead(t *testing.T) {
	m := NewMemFS()
	buildTree(m, "/r", 2, 2, 1)
	gate := m.Block("/r/dir00")
	l := newLister(t, Options{Workers: 2, FS: m})

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := l.List(context.Background(), "/r")
		done <- outcome{res, err}
	}()

	<-gate.Entered()
	m.Remove("/r/dir00")
	gate.Release()

	select {
	case out := <-done:
		require.NoError(t, out.err)
		assert.True(t, out.res.Paths.Has("/r/dir00"), "listed by its parent before it vanished")
		assert.False(t, out.res.Paths.Has("/r/dir00/file00.json"))
		assert.True(t, out.res.Paths.Has("/r/dir01/dir01/file00.json"))
		assert.Equal(t, int64(1), out.res.Stats.Errors)
	case <-time.After(5 * time.Second):
		t.Fatal("List hung after a directory was removed")
	}
}

func TestList_TimeoutReturnsPartialResult(t *testing.T) {
	m := NewMemFS()
	m.AddFile("/r/fast/a.txt")
	m.AddFile("/r/slow/sub/leaf.txt")
	gate := m.Block("/r/slow")
	time.AfterFunc(300*time.Millisecond, gate.Release)

	res, err := newLister(t, Options{Workers: 2, FS: m, Timeout: 50 * time.Millisecond}).
		List(context.Background(), "/r")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NotNil(t, res)
	assert.True(t, res.Paths.Has("/r"))
	assert.True(t, res.Paths.Has("/r/fast/a.txt"))
	assert.True(t, res.Paths.Has("/r/slow/sub"), "the task in progress finishes its own listing")
	assert.False(t, res.Paths.Has("/r/slow/sub/leaf.txt"), "queued work is abandoned")
}

func TestList_ThrottledReadsStopAtTimeout(t *testing.T) {
	m := NewMemFS()
	for i := range 4 {
		m.AddFile(fmt.Sprintf("/r/dir%02d/file.json", i))
	}
	// one token up front, then one every two seconds
	fsys := Throttle(m, 0.5, 1)

	start := time.Now()
	res, err := newLister(t, Options{Workers: 4, FS: fsys, Timeout: 50 * time.Millisecond}).
		List(context.Background(), "/r")
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrIncomplete)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, time.Second, "workers waiting on the limiter are released by shutdown")

	require.NotNil(t, res)
	assert.True(t, res.Paths.Has("/r/dir00"))
	assert.False(t, res.Paths.Has("/r/dir00/file.json"))
	assert.Equal(t, int64(1), m.Reads())
}

func TestList_CancelledContext(t *testing.T) {
	m := NewMemFS()
	m.AddFile("/r/held/x")
	gate := m.Block("/r/held")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-gate.Entered()
		cancel()
		time.Sleep(100 * time.Millisecond)
		gate.Release()
	}()

	res, err := newLister(t, Options{Workers: 2, FS: m}).List(ctx, "/r")
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.True(t, res.Paths.Has("/r/held"))
}

func TestList_WorkerDefectIsFatal(t *testing.T) {
	m := NewMemFS()
	buildTree(m, "/r", 2, 2, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := newLister(t, Options{Workers: 3, FS: panicFS{MemFS: m, path: "/r/dir01"}}).List(ctx, "/r")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.False(t, errors.Is(err, context.DeadlineExceeded), "defect must be detected without waiting for the deadline")
	require.NotNil(t, res)
	assert.True(t, res.Paths.Has("/r"))
}

func TestList_BoundedQueue(t *testing.T) {
	m := NewMemFS()
	created := buildTree(m, "/r", 3, 5, 2)

	for _, capacity := range []int{1, 2, 16} {
		t.Run(fmt.Sprintf("capacity=%d", capacity), func(t *testing.T) {
			res, err := newLister(t, Options{Workers: 3, QueueCapacity: capacity, FS: m}).
				List(context.Background(), "/r")
			require.NoError(t, err)
			assert.Len(t, res.Paths, created+1)
		})
	}
}

func TestList_Stress(t *testing.T) {
	if testing.Short() {
		t.Skip("stress run")
	}
	m := NewMemFS()
	const depth, dirs, files = 4, 4, 6
	created := buildTree(m, "/stress", depth, dirs, files)

	// files at every level plus the directories themselves
	wantDirs := 4 + 16 + 64 + 256
	wantFiles := files * (1 + wantDirs)
	require.Equal(t, wantDirs+wantFiles, created)

	l := newLister(t, Options{Workers: 3, FS: m})
	for i := range 100 {
		res, err := l.List(context.Background(), "/stress")
		require.NoError(t, err, "run %d", i)
		require.Len(t, res.Paths, created+1, "run %d", i)
	}
}

func TestList_RealFilesystem(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"a/b/c", "a/d", "e"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	for _, file := range []string{"top.json", "a/b/c/deep.json", "a/d/x.txt", "e/y.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, file), []byte("{}"), 0o644))
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "a"), filepath.Join(root, "e", "loop")))

	res, err := newLister(t, Options{Workers: 4}).List(context.Background(), root)
	require.NoError(t, err)

	want := Set{root: {}}
	for _, p := range []string{
		"a", "a/b", "a/b/c", "a/d", "e",
		"top.json", "a/b/c/deep.json", "a/d/x.txt", "e/y.txt", "e/loop",
	} {
		want[filepath.Join(root, p)] = struct{}{}
	}
	assert.Equal(t, want, res.Paths, "symlinked directories are listed but not entered")
	assert.Equal(t, ListSerial(OSFS{}, root, nil), res.Paths)
}

func TestList_RootLinkIsFollowed(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "sub", "f.json"), []byte("{}"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(target, "sub"), filepath.Join(target, "inner")))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(target, link))

	res, err := newLister(t, Options{Workers: 2}).List(context.Background(), link)
	require.NoError(t, err)

	want := Set{link: {}}
	for _, p := range []string{"sub", "sub/f.json", "inner"} {
		want[filepath.Join(link, p)] = struct{}{}
	}
	assert.Equal(t, want, res.Paths, "only the root link is followed")
	assert.Equal(t, want, ListSerial(OSFS{}, link, nil))
}

func TestListFunc_Defaults(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "f"), nil, 0o644))

	paths, err := List(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}
