package catalog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/google/uuid"

	errx "github.com/tryluxor/server/internal/core/error"
	logx "github.com/tryluxor/server/pkg/logger"
	"github.com/tryluxor/server/pkg/validator"
)

const (
	listLimit          = 100
	defaultSearchLimit = 20
)

// SearchParams are the public filters of GET /products/search.
type SearchParams struct {
	Limit     int      `json:"limit" validate:"min=1,max=100"`
	Skip      int      `json:"skip" validate:"gte=0"`
	Category  string   `json:"category"`
	Brand     string   `json:"brand"`
	MinPrice  *float64 `json:"min_price" validate:"omitempty,gte=0"`
	MaxPrice  *float64 `json:"max_price" validate:"omitempty,gte=0"`
	InStock   *bool    `json:"in_stock"`
	Search    string   `json:"search"`
	SortBy    string   `json:"sort_by" validate:"oneof=name price rating created_at"`
	SortOrder string   `json:"sort_order" validate:"oneof=asc desc"`
}

// DefaultSearchParams returns the parameter defaults of the search endpoint.
func DefaultSearchParams() SearchParams {
	return SearchParams{Limit: defaultSearchLimit, SortBy: "created_at", SortOrder: "desc"}
}

type Service interface {
	List(ctx context.Context) ([]Product, error)
	Search(ctx context.Context, params SearchParams) ([]Product, Pagination, error)
	GetBySlug(ctx context.Context, slug string) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, id string, p Product) (Product, error)
	Delete(ctx context.Context, id string) error
	Seed(ctx context.Context, products []Product) (int, error)
}

type ServiceConfig struct {
	Dimensions int
}

type service struct {
	repo      Repository
	embedder  embedding.Embedder
	validator validator.Validator
	cfg       ServiceConfig

	now   func() time.Time
	newID func() string
}

func NewService(repo Repository, embedder embedding.Embedder, v validator.Validator, cfg ServiceConfig) Service {
	return &service{
		repo:      repo,
		embedder:  embedder,
		validator: v,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.NewString() },
	}
}

func (s *service) List(ctx context.Context) ([]Product, error) {
	products, err := s.repo.List(ctx, listLimit)
	if err != nil {
		return nil, fmt.Errorf("product repository list: %w", err)
	}
	return products, nil
}

func (s *service) Search(ctx context.Context, params SearchParams) ([]Product, Pagination, error) {
	if err := s.validator.Validate(params); err != nil {
		return nil, Pagination{}, err
	}
	if params.MinPrice != nil && params.MaxPrice != nil && *params.MinPrice > *params.MaxPrice {
		return nil, Pagination{}, errx.BadRequest(nil, "min_price must not exceed max_price")
	}

	products, total, err := s.repo.Search(ctx, SearchQuery{
		Category:  params.Category,
		Brand:     params.Brand,
		MinPrice:  params.MinPrice,
		MaxPrice:  params.MaxPrice,
		InStock:   params.InStock,
		Text:      params.Search,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
		Skip:      params.Skip,
		Limit:     params.Limit,
	})
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("product repository search: %w", err)
	}

	return products, Pagination{
		Total:    total,
		Limit:    params.Limit,
		Skip:     params.Skip,
		Returned: len(products),
	}, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (Product, error) {
	p, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return Product{}, fmt.Errorf("product repository find by slug: %w", err)
	}
	return p, nil
}

// document validates p and attaches slug, embedding text and embedding vector.
func (s *service) document(ctx context.Context, p Product) (Document, error) {
	p.normalize()
	if err := s.validator.Validate(p); err != nil {
		return Document{}, err
	}

	summary := Summary(p)
	vecs, err := s.embedder.EmbedStrings(ctx, []string{summary})
	if err != nil {
		logx.Error().Err(err).Str("product_id", p.ID).Msg("failed to embed product summary")
		return Document{}, errx.WrapLLM(err)
	}

	return Document{
		Product:       p,
		Slug:          GenerateSlug(p.Name),
		EmbeddingText: summary,
		Embedding:     vecs[0],
	}, nil
}

func (s *service) Create(ctx context.Context, p Product) (Product, error) {
	if p.ID == "" {
		p.ID = s.newID()
	} else if err := s.ensureAbsent(ctx, p.ID); err != nil {
		return Product{}, err
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now

	doc, err := s.document(ctx, p)
	if err != nil {
		return Product{}, err
	}
	if err := s.repo.Insert(ctx, doc); err != nil {
		return Product{}, fmt.Errorf("product repository insert: %w", err)
	}

	logx.Info().Str("product_id", doc.ID).Str("slug", doc.Slug).Msg("product created")
	return doc.Product, nil
}

// ensureAbsent rejects a caller-supplied id that is already stored, before any
// embedding call is made.
func (s *service) ensureAbsent(ctx context.Context, id string) error {
	_, err := s.repo.FindByID(ctx, id)
	switch {
	case err == nil:
		return errx.Conflict(nil, fmt.Sprintf("product %q already exists", id))
	case errx.IsNotFound(err):
		return nil
	default:
		return fmt.Errorf("product repository find by id: %w", err)
	}
}

func (s *service) Update(ctx context.Context, id string, p Product) (Product, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("product repository find by id: %w", err)
	}

	p.ID = id
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.now()

	doc, err := s.document(ctx, p)
	if err != nil {
		return Product{}, err
	}
	if err := s.repo.Replace(ctx, id, doc); err != nil {
		return Product{}, fmt.Errorf("product repository replace: %w", err)
	}

	logx.Info().Str("product_id", id).Msg("product updated")
	return doc.Product, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("product repository delete: %w", err)
	}
	logx.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

// Seed prepares indexes and inserts products, skipping ones whose id already exists.
func (s *service) Seed(ctx context.Context, products []Product) (int, error) {
	if err := s.repo.EnsureIndexes(ctx); err != nil {
		return 0, fmt.Errorf("product repository ensure indexes: %w", err)
	}
	if err := s.repo.EnsureVectorIndex(ctx, s.cfg.Dimensions); err != nil {
		return 0, fmt.Errorf("product repository ensure vector index: %w", err)
	}

	inserted := 0
	for _, p := range products {
		if _, err := s.Create(ctx, p); err != nil {
			if errx.StatusOf(err) == http.StatusConflict {
				logx.Debug().Str("product_id", p.ID).Msg("seed product already present")
				continue
			}
			return inserted, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
		inserted++
	}

	logx.Info().Int("inserted", inserted).Int("total", len(products)).Msg("catalog seeded")
	return inserted, nil
}
