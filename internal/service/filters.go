package service

import (
	"regexp"
	"strings"

	"github.com/noah-isme/watchlist/internal/dto"
	"github.com/noah-isme/watchlist/internal/models"
)

const checkboxOn = "on"

// GenreFlags holds the genre checkboxes of the archive form.
type GenreFlags struct {
	Animated    bool
	Documentary bool
	Movie       bool
	Reality     bool
	Series      bool
}

// WatchedFlags holds the watched-status checkboxes of the archive form.
type WatchedFlags struct {
	NotWatched bool
	Watching   bool
	Watched    bool
}

// Sort keys accepted by BuildSortSpec.
const (
	SortNewest        = "newest"
	SortOldest        = "oldest"
	SortHighestRating = "highest_rating"
	SortLowestRating  = "lowest_rating"
)

var passwordPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// BuildGenreFilter returns the genres to include. No selection means no
// filtering, so every genre is returned.
func BuildGenreFilter(flags GenreFlags) []models.Genre {
	if !flags.Animated && !flags.Documentary && !flags.Movie && !flags.Reality && !flags.Series {
		return models.AllGenres()
	}

	genres := make([]models.Genre, 0, 5)
	if flags.Animated {
		genres = append(genres, models.GenreAnimated)
	}
	if flags.Documentary {
		genres = append(genres, models.GenreDocumentary)
	}
	if flags.Movie {
		genres = append(genres, models.GenreMovie)
	}
	if flags.Reality {
		genres = append(genres, models.GenreReality)
	}
	if flags.Series {
		genres = append(genres, models.GenreSeries)
	}
	return genres
}

// BuildWatchedFilter returns the statuses to include, with the same
// "no selection = all" rule as BuildGenreFilter.
func BuildWatchedFilter(flags WatchedFlags) []models.WatchStatus {
	if !flags.NotWatched && !flags.Watching && !flags.Watched {
		return models.AllWatchStatuses()
	}

	statuses := make([]models.WatchStatus, 0, 3)
	if flags.NotWatched {
		statuses = append(statuses, models.StatusNotWatched)
	}
	if flags.Watching {
		statuses = append(statuses, models.StatusWatching)
	}
	if flags.Watched {
		statuses = append(statuses, models.StatusWatched)
	}
	return statuses
}

// BuildSortSpec maps an archive sort key to a field and direction. Unknown keys
// fall back to most recently updated first.
func BuildSortSpec(key string) models.SortSpec {
	switch key {
	case SortNewest:
		return models.SortSpec{Field: models.SortBySubmittedOn, Direction: models.SortDesc}
	case SortOldest:
		return models.SortSpec{Field: models.SortBySubmittedOn, Direction: models.SortAsc}
	case SortHighestRating:
		return models.SortSpec{Field: models.SortByRating, Direction: models.SortDesc}
	case SortLowestRating:
		return models.SortSpec{Field: models.SortByRating, Direction: models.SortAsc}
	default:
		return models.DefaultSort
	}
}

// BuildMovieQuery composes the archive form into a store query.
func BuildMovieQuery(form dto.ArchiveForm) models.MovieQuery {
	return models.MovieQuery{
		Search: strings.TrimSpace(form.Search),
		Genres: BuildGenreFilter(GenreFlags{
			Animated:    form.Animated == checkboxOn,
			Documentary: form.Documentary == checkboxOn,
			Movie:       form.Movie == checkboxOn,
			Reality:     form.Reality == checkboxOn,
			Series:      form.Series == checkboxOn,
		}),
		Watched: BuildWatchedFilter(WatchedFlags{
			NotWatched: form.NotWatched == checkboxOn,
			Watching:   form.Watching == checkboxOn,
			Watched:    form.Watched == checkboxOn,
		}),
		Sort: BuildSortSpec(form.Sort),
	}
}

// IsValidPassword applies the alphanumeric allow-list to a login attempt.
func IsValidPassword(input string) bool {
	return passwordPattern.MatchString(input)
}
