package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, modTime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestSweeper_Sweep(t *testing.T) {
	logger, _ := test.NewNullLogger()
	dir := t.TempDir()
	now := time.Now()

	touch(t, filepath.Join(dir, "meeting-old.mp3"), now.Add(-2*time.Hour))
	touch(t, filepath.Join(dir, "meeting-fresh.mp3"), now.Add(-time.Minute))
	touch(t, filepath.Join(dir, "other-old.mp3"), now.Add(-2*time.Hour))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "meeting-dir"), 0o700))

	s, err := NewSweeper(Config{Dir: dir, Prefix: "meeting-", MaxAge: time.Hour}, logger)
	require.NoError(t, err)
	s.now = func() time.Time { return now }

	removed, err := s.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.NoFileExists(t, filepath.Join(dir, "meeting-old.mp3"))
	assert.FileExists(t, filepath.Join(dir, "meeting-fresh.mp3"))
	assert.FileExists(t, filepath.Join(dir, "other-old.mp3"))
	assert.DirExists(t, filepath.Join(dir, "meeting-dir"))
}

func TestSweeper_SweepMissingDir(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s, err := NewSweeper(Config{Dir: filepath.Join(t.TempDir(), "missing"), Prefix: "meeting-"}, logger)
	require.NoError(t, err)

	_, err = s.Sweep()
	require.Error(t, err)
}

func TestNewSweeper_Validation(t *testing.T) {
	logger, _ := test.NewNullLogger()

	_, err := NewSweeper(Config{Dir: t.TempDir()}, logger)
	require.ErrorIs(t, err, ErrEmptyPrefix)

	_, err = NewSweeper(Config{Dir: t.TempDir(), Prefix: "meeting-", Schedule: "every now and then"}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "некорректное расписание очистки")
}

func TestSweeper_StartStop(t *testing.T) {
	logger, _ := test.NewNullLogger()
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "meeting-old.wav"), time.Now().Add(-48*time.Hour))

	s, err := NewSweeper(Config{Dir: dir, Prefix: "meeting-", Schedule: "@every 1s"}, logger)
	require.NoError(t, err)

	s.Start()
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool {
		_, statErr := os.Stat(filepath.Join(dir, "meeting-old.wav"))
		return os.IsNotExist(statErr)
	}, 5*time.Second, 50*time.Millisecond)
}
