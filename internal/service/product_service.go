package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"learnhub/internal/cache"
	"learnhub/internal/event"
	"learnhub/internal/model"
	"learnhub/pkg/apierror"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type productRepository interface {
	Create(ctx context.Context, p model.Product) error
	FindByID(ctx context.Context, id string) (model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	Update(ctx context.Context, p model.Product) error
	Search(ctx context.Context, query string, limit int, offset int) ([]model.Product, int, error)
}

type productSearcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []model.Product, error)
}

type ProductService struct {
	products          productRepository
	catalog           *cache.Catalog
	images            imageStore
	search            productSearcher
	bus               event.Bus
	invalidateOnWrite bool
	now               func() time.Time
}

func NewProductService(products productRepository, catalog *cache.Catalog, images imageStore, bus event.Bus, invalidateOnWrite bool) *ProductService {
	return &ProductService{
		products:          products,
		catalog:           catalog,
		images:            images,
		bus:               bus,
		invalidateOnWrite: invalidateOnWrite,
		now:               time.Now,
	}
}

// WithSearch routes Search through a full text index instead of the
// database fallback.
func (s *ProductService) WithSearch(search productSearcher) *ProductService {
	s.search = search
	return s
}

func (s *ProductService) Create(ctx context.Context, actorID string, req model.ProductRequest) (model.Product, error) {
	if req.ParentTitle == nil || strings.TrimSpace(*req.ParentTitle) == "" {
		return model.Product{}, apierror.BadRequest("parent_title is required")
	}

	now := s.now().UTC()
	product := model.Product{
		ID:          uuid.NewString(),
		ListOfHrefs: []model.ProductLinkGroup{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	req.ApplyTo(&product)

	if req.Thumbnail != nil && *req.Thumbnail != "" {
		thumb, err := s.images.Upload(ctx, "products", *req.Thumbnail, 0)
		if err != nil {
			return model.Product{}, err
		}
		product.Thumbnail = &thumb
	}

	if err := s.products.Create(ctx, product); err != nil {
		return model.Product{}, err
	}

	s.afterWrite(ctx, product.ID)
	s.bus.Publish(event.New(event.TypeProductCreated, actorID, product))
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, actorID string, id string, req model.ProductRequest) (model.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return model.Product{}, err
	}

	if req.Thumbnail != nil && *req.Thumbnail != "" {
		thumb, err := s.images.Upload(ctx, "products", *req.Thumbnail, 0)
		if err != nil {
			return model.Product{}, err
		}
		if product.Thumbnail != nil {
			if err := s.images.Destroy(ctx, product.Thumbnail.PublicID); err != nil {
				slog.Warn("old product thumbnail not removed", "product_id", id, "error", err)
			}
		}
		product.Thumbnail = &thumb
	}

	req.ApplyTo(&product)
	product.UpdatedAt = s.now().UTC()

	if err := s.products.Update(ctx, product); err != nil {
		return model.Product{}, err
	}

	s.afterWrite(ctx, product.ID)
	s.bus.Publish(event.New(event.TypeProductUpdated, actorID, product))
	return product, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (model.Product, error) {
	return cache.ReadThrough(ctx, s.catalog, cache.ProductKey(id), func(ctx context.Context) (model.Product, error) {
		return s.products.FindByID(ctx, id)
	})
}

// List serves the aggregate key. Without invalidation on write it keeps
// returning the first snapshot until the key is cleared.
func (s *ProductService) List(ctx context.Context) ([]model.Product, error) {
	return cache.ReadThrough(ctx, s.catalog, cache.AllProductsKey, s.products.List)
}

// GetOwned returns a purchased product to its owner, bypassing the cache.
func (s *ProductService) GetOwned(ctx context.Context, user model.User, id string) (model.Product, error) {
	if !user.OwnsProduct(id) {
		return model.Product{}, apierror.Forbidden("You are not eligible to access this product")
	}

	return s.products.FindByID(ctx, id)
}

func (s *ProductService) Search(ctx context.Context, query string, page int, limit int) ([]model.Product, *model.Meta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil, apierror.BadRequest("search query is required")
	}

	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit

	if s.search != nil {
		total, products, err := s.search.Search(ctx, query, offset, limit)
		if err != nil {
			return nil, nil, err
		}
		return products, model.NewMeta(page, limit, int(total)), nil
	}

	products, total, err := s.products.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	return products, model.NewMeta(page, limit, total), nil
}

func (s *ProductService) afterWrite(ctx context.Context, id string) {
	if !s.invalidateOnWrite {
		return
	}

	if err := s.catalog.Invalidate(ctx, cache.ProductKey(id), cache.AllProductsKey); err != nil {
		slog.Warn("product cache invalidation failed", "product_id", id, "error", err)
	}
}

func normalizePage(page int, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
