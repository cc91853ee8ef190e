package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcriess/lightspeed-rooms/config"
)

func newTestStore(t *testing.T, maxSize int64) *LocalStore {
	s, err := NewLocalStore(config.StorageConfig{UploadDir: t.TempDir(), URLPrefix: "/media/", MaxUploadSize: maxSize})
	require.NoError(t, err)
	return s
}

type staticRefs []string

func (r staticRefs) ImageRefs(context.Context) ([]string, error) {
	return r, nil
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("cat.PNG"))
	assert.True(t, IsImage("a/b/c.jpeg"))
	assert.False(t, IsImage("notes.txt"))
	assert.False(t, IsImage("noext"))
}

func TestSaveAndDelete(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()
	ref, err := s.Save(ctx, &Upload{Filename: "Cat.PNG", Body: strings.NewReader("meow")})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".png"))
	data, err := os.ReadFile(filepath.Join(s.Dir(), ref))
	require.NoError(t, err)
	assert.Equal(t, "meow", string(data))
	assert.Equal(t, "/media/"+ref, s.URL(ref))

	require.NoError(t, s.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(s.Dir(), ref))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, ref))
}

func TestSaveTooLarge(t *testing.T) {
	s := newTestStore(t, 3)
	_, err := s.Save(context.Background(), &Upload{Filename: "big.png", Body: strings.NewReader("1234")})
	assert.True(t, errors.Is(err, ErrTooLarge))
	blobs, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, blobs)
}

func TestSweepRemovesOldOrphans(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()
	kept, err := s.Save(ctx, &Upload{Filename: "kept.png", Body: strings.NewReader("k")})
	require.NoError(t, err)
	orphan, err := s.Save(ctx, &Upload{Filename: "orphan.png", Body: strings.NewReader("o")})
	require.NoError(t, err)
	fresh, err := s.Save(ctx, &Upload{Filename: "fresh.png", Body: strings.NewReader("f")})
	require.NoError(t, err)
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(s.Dir(), kept), old, old))
	require.NoError(t, os.Chtimes(filepath.Join(s.Dir(), orphan), old, old))

	sweeper := NewSweeper(s, staticRefs{kept}, time.Hour)
	n, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	blobs, err := s.List(ctx)
	require.NoError(t, err)
	refs := make([]string, 0, len(blobs))
	for _, b := range blobs {
		refs = append(refs, b.Ref)
	}
	assert.ElementsMatch(t, []string{kept, fresh}, refs)
}

func TestScheduleRejectsBadCronExpression(t *testing.T) {
	sweeper := NewSweeper(newTestStore(t, 0), staticRefs{}, time.Hour)
	_, err := sweeper.Schedule("not a cron spec")
	assert.Error(t, err)
	runner, err := sweeper.Schedule("@daily")
	require.NoError(t, err)
	assert.Len(t, runner.Entries(), 1)
}
