package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errx "github.com/tryluxor/server/internal/core/error"
	logx "github.com/tryluxor/server/pkg/logger"
)

const (
	// DefaultVectorIndex is the Atlas vector search index over the embedding field.
	DefaultVectorIndex = "vector_index"
	embeddingPath      = "embedding"
	slugScanLimit      = 1000
)

var ErrProductNotFound = errors.New("product not found")

func productNotFound() error {
	return errx.New(ErrProductNotFound, http.StatusNotFound, ErrProductNotFound.Error())
}

// Document is the stored form of a Product.
type Document struct {
	ObjectID      primitive.ObjectID `bson:"_id,omitempty"`
	Product       `bson:",inline"`
	Slug          string    `bson:"slug"`
	EmbeddingText string    `bson:"embedding_text,omitempty"`
	Embedding     []float64 `bson:"embedding,omitempty"`
	Score         float64   `bson:"score,omitempty"`
}

func (d Document) toProduct() Product {
	p := d.Product
	if p.ID == "" && !d.ObjectID.IsZero() {
		p.ID = d.ObjectID.Hex()
	}
	p.normalize()
	return p
}

// ScoredProduct is a vector search hit.
type ScoredProduct struct {
	Product
	Score float64 `json:"score,omitempty"`
}

// SearchQuery holds the already validated filters of GET /products/search.
type SearchQuery struct {
	Category  string
	Brand     string
	MinPrice  *float64
	MaxPrice  *float64
	InStock   *bool
	Text      string
	SortBy    string
	SortOrder string
	Skip      int
	Limit     int
}

type Repository interface {
	List(ctx context.Context, limit int) ([]Product, error)
	Search(ctx context.Context, q SearchQuery) ([]Product, int64, error)
	FindBySlug(ctx context.Context, slug string) (Product, error)
	FindByID(ctx context.Context, id string) (Product, error)
	Insert(ctx context.Context, doc Document) error
	Replace(ctx context.Context, id string, doc Document) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	VectorSearch(ctx context.Context, vector []float64, numCandidates, limit int) ([]ScoredProduct, error)
	RegexSearch(ctx context.Context, query string, limit int) ([]Product, error)
	EnsureIndexes(ctx context.Context) error
	EnsureVectorIndex(ctx context.Context, dimensions int) error
}

type MongoRepository struct {
	coll        *mongo.Collection
	vectorIndex string
}

func NewMongoRepository(coll *mongo.Collection, vectorIndex string) *MongoRepository {
	if vectorIndex == "" {
		vectorIndex = DefaultVectorIndex
	}
	return &MongoRepository{coll: coll, vectorIndex: vectorIndex}
}

// withoutEmbedding keeps vectors out of every read path.
var withoutEmbedding = bson.D{{Key: embeddingPath, Value: 0}}

func caseInsensitive(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

// buildFilter translates a SearchQuery into a MongoDB filter document.
func buildFilter(q SearchQuery) bson.M {
	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = caseInsensitive(q.Category)
	}
	if q.Brand != "" {
		filter["brand"] = caseInsensitive(q.Brand)
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price.amount"] = price
	}
	if q.InStock != nil {
		filter["in_stock"] = *q.InStock
	}
	if q.Text != "" {
		filter["$or"] = bson.A{
			bson.M{"name": caseInsensitive(q.Text)},
			bson.M{"description": caseInsensitive(q.Text)},
			bson.M{"tags": caseInsensitive(q.Text)},
		}
	}
	return filter
}

// buildSort maps the public sort field and order onto a MongoDB sort document.
func buildSort(sortBy, sortOrder string) bson.D {
	field := sortBy
	switch sortBy {
	case "":
		field = "created_at"
	case "price":
		field = "price.amount"
	}
	direction := -1
	if sortOrder == "asc" {
		direction = 1
	}
	return bson.D{{Key: field, Value: direction}}
}

func (r *MongoRepository) decodeAll(ctx context.Context, cur *mongo.Cursor) ([]Product, error) {
	defer cur.Close(ctx)

	products := []Product{}
	for cur.Next(ctx) {
		var doc Document
		if err := cur.Decode(&doc); err != nil {
			logx.Error().Err(err).Str("collection", r.coll.Name()).Msg("failed to decode product")
			return nil, fmt.Errorf("decode product: %w", err)
		}
		products = append(products, doc.toProduct())
	}
	if err := cur.Err(); err != nil {
		return nil, errx.WrapMongo(err)
	}
	return products, nil
}

func (r *MongoRepository) List(ctx context.Context, limit int) ([]Product, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().
		SetLimit(int64(limit)).
		SetProjection(withoutEmbedding))
	if err != nil {
		logx.Error().Err(err).Str("collection", r.coll.Name()).Msg("failed to list products")
		return nil, errx.WrapMongo(err)
	}
	return r.decodeAll(ctx, cur)
}

func (r *MongoRepository) Search(ctx context.Context, q SearchQuery) ([]Product, int64, error) {
	filter := buildFilter(q)

	cur, err := r.coll.Find(ctx, filter, options.Find().
		SetSort(buildSort(q.SortBy, q.SortOrder)).
		SetSkip(int64(q.Skip)).
		SetLimit(int64(q.Limit)).
		SetProjection(withoutEmbedding))
	if err != nil {
		logx.Error().Err(err).Str("collection", r.coll.Name()).Msg("failed to search products")
		return nil, 0, errx.WrapMongo(err)
	}
	products, err := r.decodeAll(ctx, cur)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		logx.Error().Err(err).Str("collection", r.coll.Name()).Msg("failed to count products")
		return nil, 0, errx.WrapMongo(err)
	}
	return products, total, nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.D) (Product, error) {
	var doc Document
	err := r.coll.FindOne(ctx, filter, options.FindOne().SetProjection(withoutEmbedding)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Product{}, productNotFound()
	}
	if err != nil {
		return Product{}, errx.WrapMongo(err)
	}
	return doc.toProduct(), nil
}

// FindBySlug looks the slug up directly and falls back to scanning names for
// documents written without a slug field.
func (r *MongoRepository) FindBySlug(ctx context.Context, slug string) (Product, error) {
	p, err := r.findOne(ctx, bson.D{{Key: "slug", Value: slug}})
	if err == nil || !errx.IsNotFound(err) {
		return p, err
	}

	products, err := r.List(ctx, slugScanLimit)
	if err != nil {
		return Product{}, err
	}
	for _, p := range products {
		if GenerateSlug(p.Name) == slug {
			return p, nil
		}
	}
	return Product{}, productNotFound()
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (Product, error) {
	return r.findOne(ctx, bson.D{{Key: "id", Value: id}})
}

func (r *MongoRepository) Insert(ctx context.Context, doc Document) error {
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		logx.Error().Err(err).Str("product_id", doc.ID).Msg("failed to insert product")
		return errx.WrapMongo(err)
	}
	return nil
}

func (r *MongoRepository) Replace(ctx context.Context, id string, doc Document) error {
	doc.ObjectID = primitive.NilObjectID
	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "id", Value: id}}, doc)
	if err != nil {
		logx.Error().Err(err).Str("product_id", id).Msg("failed to replace product")
		return errx.WrapMongo(err)
	}
	if res.MatchedCount == 0 {
		return productNotFound()
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "id", Value: id}})
	if err != nil {
		logx.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return errx.WrapMongo(err)
	}
	if res.DeletedCount == 0 {
		return productNotFound()
	}
	return nil
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		logx.Error().Err(err).Str("collection", r.coll.Name()).Msg("failed to count products")
		return 0, errx.WrapMongo(err)
	}
	return n, nil
}

func (r *MongoRepository) VectorSearch(ctx context.Context, vector []float64, numCandidates, limit int) ([]ScoredProduct, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: r.vectorIndex},
			{Key: "path", Value: embeddingPath},
			{Key: "queryVector", Value: vector},
			{Key: "numCandidates", Value: numCandidates},
			{Key: "limit", Value: limit},
		}}},
		{{Key: "$set", Value: bson.D{{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}}}}},
		{{Key: "$project", Value: withoutEmbedding}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errx.WrapMongo(err)
	}
	defer cur.Close(ctx)

	hits := []ScoredProduct{}
	for cur.Next(ctx) {
		var doc Document
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode vector hit: %w", err)
		}
		hits = append(hits, ScoredProduct{Product: doc.toProduct(), Score: doc.Score})
	}
	if err := cur.Err(); err != nil {
		return nil, errx.WrapMongo(err)
	}
	return hits, nil
}

func (r *MongoRepository) RegexSearch(ctx context.Context, query string, limit int) ([]Product, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"name": caseInsensitive(query)},
		bson.M{"description": caseInsensitive(query)},
	}}
	cur, err := r.coll.Find(ctx, filter, options.Find().
		SetLimit(int64(limit)).
		SetProjection(withoutEmbedding))
	if err != nil {
		logx.Error().Err(err).Str("query", query).Msg("failed to run regex product search")
		return nil, errx.WrapMongo(err)
	}
	return r.decodeAll(ctx, cur)
}

// EnsureIndexes creates the unique id index and the slug index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "slug", Value: 1}}},
	})
	if err != nil {
		logx.Error().Err(err).Str("collection", r.coll.Name()).Msg("failed to create product indexes")
		return errx.WrapMongo(err)
	}
	return nil
}

// EnsureVectorIndex (re)creates the vector search index. It only exists on
// Atlas deployments, so failures are logged and skipped.
func (r *MongoRepository) EnsureVectorIndex(ctx context.Context, dimensions int) error {
	if err := r.coll.SearchIndexes().DropOne(ctx, r.vectorIndex); err != nil {
		logx.Debug().Err(err).Str("index", r.vectorIndex).Msg("could not drop vector index (it may not exist)")
	}

	model := mongo.SearchIndexModel{
		Definition: bson.D{{Key: "fields", Value: bson.A{
			bson.D{
				{Key: "type", Value: "vector"},
				{Key: "path", Value: embeddingPath},
				{Key: "numDimensions", Value: dimensions},
				{Key: "similarity", Value: "cosine"},
			},
		}}},
		Options: options.SearchIndexes().SetName(r.vectorIndex).SetType("vectorSearch"),
	}
	if _, err := r.coll.SearchIndexes().CreateOne(ctx, model); err != nil {
		logx.Warn().Err(err).Str("index", r.vectorIndex).Msg("vector search index not created; regex search only")
	}
	return nil
}

var _ Repository = (*MongoRepository)(nil)
