package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWatchStatus(t *testing.T) {
	for _, status := range AllWatchStatuses() {
		parsed, err := ParseWatchStatus(status.Label())
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	_, err := ParseWatchStatus("finished")
	assert.Error(t, err)
	_, err = ParseWatchStatus("")
	assert.Error(t, err)
}

func TestGenreValid(t *testing.T) {
	assert.True(t, GenreSeries.Valid())
	assert.False(t, Genre("anime").Valid())
}

func TestUnfilteredQuery(t *testing.T) {
	q := UnfilteredQuery()
	assert.Nil(t, q.Genres)
	assert.Nil(t, q.Watched)
	assert.Empty(t, q.Search)
	assert.Equal(t, DefaultSort, q.Sort)
}

func TestNewStatusChange(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	watched := NewStatusChange(StatusWatched, 4, now)
	assert.Equal(t, StatusWatched, watched.Watched)
	assert.Equal(t, 4.0, watched.Rating)
	require.NotNil(t, watched.WatchedOn)
	assert.Equal(t, now, *watched.WatchedOn)
	assert.Equal(t, now, watched.UpdatedOn)

	for _, status := range []WatchStatus{StatusNotWatched, StatusWatching} {
		change := NewStatusChange(status, 4, now)
		assert.Equal(t, status, change.Watched)
		assert.Zero(t, change.Rating)
		assert.Nil(t, change.WatchedOn)
		assert.Equal(t, now, change.UpdatedOn)
	}
}

func TestNewMovie(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	m := NewMovie("Alien", GenreMovie, "space horror", "sam", now)

	assert.Equal(t, StatusNotWatched, m.Watched)
	assert.Zero(t, m.Rating)
	assert.Nil(t, m.WatchedOn)
	assert.Equal(t, now, m.SubmittedOn)
	assert.Equal(t, now, m.UpdatedOn)
}
