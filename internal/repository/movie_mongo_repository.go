package repository

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/noah-isme/watchlist/internal/models"
)

// movieDocument is the stored shape of a watchlist entry. Rating is decoded
// leniently because older records were written with the form value verbatim.
type movieDocument struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Title       string        `bson:"title"`
	Type        string        `bson:"type"`
	Description string        `bson:"description"`
	Name        string        `bson:"name"`
	SubmittedOn time.Time     `bson:"submitted_on"`
	Watched     int           `bson:"watched"`
	Rating      bson.RawValue `bson:"rating"`
	WatchedOn   *time.Time    `bson:"watched_on,omitempty"`
	UpdatedOn   time.Time     `bson:"updated_on"`
}

func (d movieDocument) toModel() models.Movie {
	m := models.Movie{
		Title:       d.Title,
		Type:        models.Genre(d.Type),
		Description: d.Description,
		Name:        d.Name,
		SubmittedOn: d.SubmittedOn,
		Watched:     models.WatchStatus(d.Watched),
		Rating:      numericValue(d.Rating),
		WatchedOn:   d.WatchedOn,
		UpdatedOn:   d.UpdatedOn,
	}
	if !d.ID.IsZero() {
		m.ID = d.ID.Hex()
	}
	return m
}

func numericValue(raw bson.RawValue) float64 {
	if len(raw.Value) == 0 {
		return 0
	}
	if v, ok := raw.DoubleOK(); ok {
		return v
	}
	if v, ok := raw.Int32OK(); ok {
		return float64(v)
	}
	if v, ok := raw.Int64OK(); ok {
		return float64(v)
	}
	if v, ok := raw.StringValueOK(); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}

// MovieMongoRepository persists watchlist entries in a single MongoDB collection.
type MovieMongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMovieMongoRepository binds the repository to database/collection on a
// shared client.
func NewMovieMongoRepository(client *mongo.Client, database, collection string) *MovieMongoRepository {
	return &MovieMongoRepository{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

// Find returns records matching the query in the requested order.
func (r *MovieMongoRepository) Find(ctx context.Context, query models.MovieQuery) ([]models.Movie, error) {
	opts := options.Find().SetSort(mongoSort(query.Sort))
	cursor, err := r.collection.Find(ctx, mongoFilter(query), opts)
	if err != nil {
		return nil, fmt.Errorf("find movies: %w", err)
	}

	var docs []movieDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode movies: %w", err)
	}

	movies := make([]models.Movie, 0, len(docs))
	for _, doc := range docs {
		movies = append(movies, doc.toModel())
	}
	return movies, nil
}

// Insert stores a new record and fills in its generated ID.
func (r *MovieMongoRepository) Insert(ctx context.Context, movie *models.Movie) error {
	doc := bson.D{
		{Key: "title", Value: movie.Title},
		{Key: "type", Value: string(movie.Type)},
		{Key: "description", Value: movie.Description},
		{Key: "name", Value: movie.Name},
		{Key: "submitted_on", Value: movie.SubmittedOn},
		{Key: "watched", Value: int(movie.Watched)},
		{Key: "rating", Value: movie.Rating},
		{Key: "updated_on", Value: movie.UpdatedOn},
	}
	if movie.WatchedOn != nil {
		doc = append(doc, bson.E{Key: "watched_on", Value: *movie.WatchedOn})
	}

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		movie.ID = id.Hex()
	}
	return nil
}

// UpdateStatus applies a status transition to the first record with the given
// title and reports how many records matched.
func (r *MovieMongoRepository) UpdateStatus(ctx context.Context, title string, change models.StatusChange) (int64, error) {
	res, err := r.collection.UpdateOne(ctx, bson.D{{Key: "title", Value: title}}, mongoStatusUpdate(change))
	if err != nil {
		return 0, fmt.Errorf("update movie status: %w", err)
	}
	return res.MatchedCount, nil
}

// Ping checks the primary is reachable.
func (r *MovieMongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func mongoFilter(query models.MovieQuery) bson.D {
	filter := bson.D{}
	if query.Search != "" {
		filter = append(filter, bson.E{Key: "title", Value: bson.Regex{Pattern: regexp.QuoteMeta(query.Search), Options: "i"}})
	}
	if query.Genres != nil {
		genres := make(bson.A, 0, len(query.Genres))
		for _, g := range query.Genres {
			genres = append(genres, string(g))
		}
		filter = append(filter, bson.E{Key: "type", Value: bson.D{{Key: "$in", Value: genres}}})
	}
	if query.Watched != nil {
		statuses := make(bson.A, 0, len(query.Watched))
		for _, s := range query.Watched {
			statuses = append(statuses, int(s))
		}
		filter = append(filter, bson.E{Key: "watched", Value: bson.D{{Key: "$in", Value: statuses}}})
	}
	return filter
}

func mongoSort(order models.SortSpec) bson.D {
	if order.Field == "" {
		order = models.DefaultSort
	}
	direction := int(order.Direction)
	if direction != 1 {
		direction = -1
	}
	return bson.D{{Key: string(order.Field), Value: direction}}
}

func mongoStatusUpdate(change models.StatusChange) bson.D {
	set := bson.D{
		{Key: "rating", Value: change.Rating},
		{Key: "watched", Value: int(change.Watched)},
		{Key: "updated_on", Value: change.UpdatedOn},
	}
	if change.WatchedOn != nil {
		set = append(bson.D{{Key: "watched_on", Value: *change.WatchedOn}}, set...)
		return bson.D{{Key: "$set", Value: set}}
	}
	return bson.D{
		{Key: "$set", Value: set},
		{Key: "$unset", Value: bson.D{{Key: "watched_on", Value: ""}}},
	}
}
