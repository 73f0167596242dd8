package repository

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thuan-cell/thuan-cell/internal/models"
)

var t0 = time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)

func TestCreateAndGet(t *testing.T) {
	store := NewSessionStore()
	sess := store.Create(t0)

	require.NotEmpty(t, sess.ID)
	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-01", got.Period)
	assert.Equal(t, 1, store.Len())

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUpdateCommitsOnSuccess(t *testing.T) {
	store := NewSessionStore()
	r := models.DefaultRubric()
	sess := store.Create(t0)

	updated, err := store.Update(sess.ID, t0.Add(time.Minute), func(s *models.Session) error {
		return s.Rate(r, "1.1", models.LevelGood)
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, updated.Ratings["1.1"].ActualScore)
	assert.Equal(t, t0.Add(time.Minute), updated.UpdatedAt)

	got, _ := store.Get(sess.ID)
	assert.Equal(t, models.LevelGood, got.Ratings["1.1"].Level)
}

func TestUpdateRollsBackOnError(t *testing.T) {
	store := NewSessionStore()
	sess := store.Create(t0)
	boom := errors.New("boom")

	_, err := store.Update(sess.ID, t0, func(s *models.Session) error {
		s.Employee.Name = "half written"
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, _ := store.Get(sess.ID)
	assert.Empty(t, got.Employee.Name)
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewSessionStore()
	sess := store.Create(t0)

	got, _ := store.Get(sess.ID)
	got.Ratings["1.1"] = models.Entry{Level: models.LevelGood, ActualScore: 10}

	again, _ := store.Get(sess.ID)
	assert.Empty(t, again.Ratings)
}

func TestExportIsSingleFlight(t *testing.T) {
	store := NewSessionStore()
	sess := store.Create(t0)

	ok, err := store.BeginExport(sess.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, store.Exporting(sess.ID))

	ok, err = store.BeginExport(sess.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	store.EndExport(sess.ID)
	assert.False(t, store.Exporting(sess.ID))

	ok, _ = store.BeginExport(sess.ID)
	assert.True(t, ok)

	_, err = store.BeginExport("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConcurrentBeginExport(t *testing.T) {
	store := NewSessionStore()
	sess := store.Create(t0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := store.BeginExport(sess.ID); ok {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, acquired)
}

func TestSweep(t *testing.T) {
	store := NewSessionStore()
	old := store.Create(t0)
	busy := store.Create(t0)
	fresh := store.Create(t0.Add(90 * time.Minute))

	_, _ = store.BeginExport(busy.ID)

	removed := store.Sweep(time.Hour, t0.Add(2*time.Hour))
	assert.Equal(t, 1, removed)

	_, err := store.Get(old.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Get(busy.ID)
	assert.NoError(t, err)
	_, err = store.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestTouchKeepsSessionAlive(t *testing.T) {
	store := NewSessionStore()
	sess := store.Create(t0)

	assert.True(t, store.Touch(sess.ID, t0.Add(90*time.Minute)))
	assert.False(t, store.Touch("missing", t0))

	assert.Zero(t, store.Sweep(time.Hour, t0.Add(2*time.Hour)))
	assert.Equal(t, 1, store.Sweep(time.Hour, t0.Add(3*time.Hour)))
}
