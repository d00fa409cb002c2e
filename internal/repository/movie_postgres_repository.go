package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/watchlist/internal/models"
)

const movieColumns = "id, title, type, description, name, submitted_on, watched, rating, watched_on, updated_on"

const movieSchema = `CREATE TABLE IF NOT EXISTS movies (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	type TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL DEFAULT '',
	submitted_on TIMESTAMPTZ NOT NULL,
	watched SMALLINT NOT NULL DEFAULT -1,
	rating DOUBLE PRECISION NOT NULL DEFAULT 0,
	watched_on TIMESTAMPTZ NULL,
	updated_on TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_movies_title ON movies (title);`

var movieSortColumns = map[models.SortField]string{
	models.SortBySubmittedOn: "submitted_on",
	models.SortByRating:      "rating",
	models.SortByUpdatedOn:   "updated_on",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// MoviePostgresRepository stores watchlist entries in a single PostgreSQL table.
type MoviePostgresRepository struct {
	db *sqlx.DB
}

// NewMoviePostgresRepository creates a new repository instance.
func NewMoviePostgresRepository(db *sqlx.DB) *MoviePostgresRepository {
	return &MoviePostgresRepository{db: db}
}

// EnsureSchema creates the movies table when missing.
func (r *MoviePostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, movieSchema); err != nil {
		return fmt.Errorf("ensure movies schema: %w", err)
	}
	return nil
}

// Find returns records matching the query in the requested order.
func (r *MoviePostgresRepository) Find(ctx context.Context, query models.MovieQuery) ([]models.Movie, error) {
	base := "FROM movies WHERE 1=1"
	var conditions []string
	var args []interface{}

	if query.Search != "" {
		conditions = append(conditions, fmt.Sprintf(`title ILIKE $%d ESCAPE '\'`, len(args)+1))
		args = append(args, "%"+likeEscaper.Replace(query.Search)+"%")
	}
	if query.Genres != nil {
		genres := make([]string, 0, len(query.Genres))
		for _, g := range query.Genres {
			genres = append(genres, string(g))
		}
		conditions = append(conditions, fmt.Sprintf("type = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(genres))
	}
	if query.Watched != nil {
		statuses := make([]int64, 0, len(query.Watched))
		for _, s := range query.Watched {
			statuses = append(statuses, int64(s))
		}
		conditions = append(conditions, fmt.Sprintf("watched = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(statuses))
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortColumn, ok := movieSortColumns[query.Sort.Field]
	if !ok {
		sortColumn = "updated_on"
	}
	order := "DESC"
	if query.Sort.Direction == models.SortAsc {
		order = "ASC"
	}

	sqlQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s", movieColumns, base, sortColumn, order)
	movies := []models.Movie{}
	if err := r.db.SelectContext(ctx, &movies, sqlQuery, args...); err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// Insert persists a new record.
func (r *MoviePostgresRepository) Insert(ctx context.Context, movie *models.Movie) error {
	if movie.ID == "" {
		movie.ID = uuid.NewString()
	}

	const query = `INSERT INTO movies (id, title, type, description, name, submitted_on, watched, rating, watched_on, updated_on) VALUES (:id, :title, :type, :description, :name, :submitted_on, :watched, :rating, :watched_on, :updated_on)`
	if _, err := r.db.NamedExecContext(ctx, query, movie); err != nil {
		return fmt.Errorf("create movie: %w", err)
	}
	return nil
}

// UpdateStatus applies a status transition to the earliest submitted record
// with the given title. Titles are not unique; duplicates are left untouched.
func (r *MoviePostgresRepository) UpdateStatus(ctx context.Context, title string, change models.StatusChange) (int64, error) {
	const query = `UPDATE movies SET watched = $1, rating = $2, watched_on = $3, updated_on = $4 WHERE id = (SELECT id FROM movies WHERE title = $5 ORDER BY submitted_on, id LIMIT 1)`
	res, err := r.db.ExecContext(ctx, query, int64(change.Watched), change.Rating, change.WatchedOn, change.UpdatedOn, title)
	if err != nil {
		return 0, fmt.Errorf("update movie status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update movie status rows: %w", err)
	}
	return affected, nil
}

// Ping checks the database is reachable.
func (r *MoviePostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
