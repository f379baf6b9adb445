package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLaunch(id string, at time.Time) *Launch {
	return &Launch{
		ID:          id,
		Notebook:    "/work/nb.ipynb",
		Script:      "/work/nbtools-1.py",
		Interpreter: []string{"python", "/work/nbtools-1.py"},
		Dir:         "/work",
		PID:         4242,
		Cells:       3,
		Terminated:  true,
		StartedAt:   at,
	}
}

func TestDiskStore_SaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "launches")
	s := NewDiskStore(dir)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(newLaunch("run-1", at)))

	got, err := s.Load("run-1")
	require.NoError(t, err)
	assert.Equal(t, "/work/nb.ipynb", got.Notebook)
	assert.Equal(t, 4242, got.PID)
	assert.True(t, got.StartedAt.Equal(at))

	_, err = os.Stat(filepath.Join(dir, "run-1.json"))
	assert.NoError(t, err)
}

func TestDiskStore_LoadErrors(t *testing.T) {
	s := NewDiskStore(t.TempDir())

	_, err := s.Load("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Load("../escape")
	assert.Error(t, err)

	assert.Error(t, s.Save(&Launch{}))
}

func TestDiskStore_LazyTempDir(t *testing.T) {
	s := NewDiskStore("")
	require.NoError(t, s.Save(newLaunch("run-1", time.Now())))
	t.Cleanup(func() { _ = os.RemoveAll(s.Dir()) })

	assert.NotEmpty(t, s.Dir())
	_, err := s.Load("run-1")
	assert.NoError(t, err)
}

func TestDiskStore_List(t *testing.T) {
	dir := t.TempDir()
	s := NewDiskStore(dir)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(newLaunch("old", base)))
	require.NoError(t, s.Save(newLaunch("new", base.Add(2*time.Hour))))
	require.NoError(t, s.Save(newLaunch("mid", base.Add(time.Hour))))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	all, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{all[0].ID, all[1].ID, all[2].ID})

	two, err := s.List(2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestDiskStore_ListMissingDir(t *testing.T) {
	s := NewDiskStore(filepath.Join(t.TempDir(), "never-created"))
	got, err := s.List(10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// countingStore counts backing-store loads.
type countingStore struct {
	*DiskStore
	loads   int
	saveErr error
}

func (c *countingStore) Load(id string) (*Launch, error) {
	c.loads++
	return c.DiskStore.Load(id)
}

func (c *countingStore) Save(l *Launch) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	return c.DiskStore.Save(l)
}

func TestLRUStore_HitAndEvict(t *testing.T) {
	back := &countingStore{DiskStore: NewDiskStore(t.TempDir())}
	s := NewLRUStore(2, back)

	now := time.Now()
	require.NoError(t, s.Save(newLaunch("a", now)))
	require.NoError(t, s.Save(newLaunch("b", now)))
	require.NoError(t, s.Save(newLaunch("c", now))) // evicts a

	assert.Equal(t, 2, s.Len())

	_, err := s.Load("c")
	require.NoError(t, err)
	assert.Equal(t, 0, back.loads, "cached entry served from memory")

	_, err = s.Load("a")
	require.NoError(t, err)
	assert.Equal(t, 1, back.loads, "evicted entry loaded from backing store")
	assert.Equal(t, 2, s.Len())
}

func TestLRUStore_SaveFailureNotCached(t *testing.T) {
	boom := errors.New("disk full")
	back := &countingStore{DiskStore: NewDiskStore(t.TempDir()), saveErr: boom}
	s := NewLRUStore(4, back)

	err := s.Save(newLaunch("a", time.Now()))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Len())
}

func TestLRUStore_ListDelegates(t *testing.T) {
	back := NewDiskStore(t.TempDir())
	s := NewLRUStore(1, back)

	now := time.Now()
	require.NoError(t, s.Save(newLaunch("a", now)))
	require.NoError(t, s.Save(newLaunch("b", now.Add(time.Second))))

	got, err := s.List(0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestLaunch_Describe(t *testing.T) {
	l := newLaunch("run-1", time.Now())
	l.Terminated = false
	out := l.Describe()
	assert.Contains(t, out, "Run: run-1")
	assert.Contains(t, out, "started (pid 4242)")
	assert.Contains(t, out, "directive cell not found")

	l.Error = "exec: python: not found"
	assert.True(t, l.Failed())
	assert.Contains(t, l.Describe(), "failed: exec: python: not found")
	assert.Contains(t, l.Summary(), "failed")
}
