package catalog

import (
	"context"
	"errors"
	"sort"

	"github.com/cloudwego/eino/components/embedding"

	errx "github.com/tryluxor/server/internal/core/error"
)

type fakeEmbedder struct {
	err   error
	calls [][]string
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	f.calls = append(f.calls, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = []float64{float64(len(t)), 1}
	}
	return out, nil
}

type fakeRepo struct {
	docs map[string]Document

	countErr  error
	vectorErr error
	regexErr  error
	insertErr error

	vectorHits []ScoredProduct
	regexHits  []Product

	lastQuery      SearchQuery
	lastCandidates int
	indexesCalled  bool

	vectorIndexCalled bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: map[string]Document{}}
}

func (f *fakeRepo) sorted() []Product {
	out := make([]Product, 0, len(f.docs))
	for _, d := range f.docs {
		out = append(out, d.toProduct())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeRepo) List(_ context.Context, limit int) ([]Product, error) {
	out := f.sorted()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) Search(_ context.Context, q SearchQuery) ([]Product, int64, error) {
	f.lastQuery = q
	out := f.sorted()
	return out, int64(len(out)), nil
}

func (f *fakeRepo) FindBySlug(_ context.Context, slug string) (Product, error) {
	for _, d := range f.docs {
		if d.Slug == slug {
			return d.toProduct(), nil
		}
	}
	return Product{}, productNotFound()
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (Product, error) {
	d, ok := f.docs[id]
	if !ok {
		return Product{}, productNotFound()
	}
	return d.toProduct(), nil
}

func (f *fakeRepo) Insert(_ context.Context, doc Document) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, ok := f.docs[doc.ID]; ok {
		return errx.Conflict(errors.New("E11000 duplicate key"), "resource already exists")
	}
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeRepo) Replace(_ context.Context, id string, doc Document) error {
	if _, ok := f.docs[id]; !ok {
		return productNotFound()
	}
	f.docs[id] = doc
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.docs[id]; !ok {
		return productNotFound()
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeRepo) Count(context.Context) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.docs)), nil
}

func (f *fakeRepo) VectorSearch(_ context.Context, _ []float64, numCandidates, limit int) ([]ScoredProduct, error) {
	f.lastCandidates = numCandidates
	if f.vectorErr != nil {
		return nil, f.vectorErr
	}
	return f.vectorHits, nil
}

func (f *fakeRepo) RegexSearch(context.Context, string, int) ([]Product, error) {
	if f.regexErr != nil {
		return nil, f.regexErr
	}
	return f.regexHits, nil
}

func (f *fakeRepo) EnsureIndexes(context.Context) error {
	f.indexesCalled = true
	return nil
}

func (f *fakeRepo) EnsureVectorIndex(context.Context, int) error {
	f.vectorIndexCalled = true
	return nil
}

var _ Repository = (*fakeRepo)(nil)
