package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/marketgo/storefront-api/internal/dto"
	"github.com/marketgo/storefront-api/internal/model"
	"github.com/marketgo/storefront-api/internal/repository"
)

var ErrProductNotFound = errors.New("product not found")

const productCacheTTL = 60 * time.Second

type ProductService struct {
	productRepo repository.ProductRepository
	txm         repository.TxManager
	redisClient *redis.Client
}

func NewProductService(productRepo repository.ProductRepository, txm repository.TxManager, redisClient *redis.Client) *ProductService {
	return &ProductService{productRepo: productRepo, txm: txm, redisClient: redisClient}
}

func (s *ProductService) Create(ctx context.Context, req dto.CreateProductRequest) (*model.Product, error) {
	if !model.ValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}
	product := &model.Product{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Image:       req.Image,
		Stock:       req.Stock,
		IsFeatured:  req.IsFeatured,
		Source:      model.SourceDatabase,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	cacheKey := "product:" + id.String()

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var p model.Product
			if json.Unmarshal([]byte(cached), &p) == nil {
				return &p, nil
			}
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(product); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, productCacheTTL)
		}
	}
	return product, nil
}

func (s *ProductService) List(ctx context.Context, req dto.ListProductsRequest) ([]model.Product, int, error) {
	return s.productRepo.List(ctx, repository.ProductFilter{
		Limit:    req.Limit,
		Offset:   (req.Page - 1) * req.Limit,
		Search:   req.Search,
		Category: req.Category,
		Featured: req.Featured,
		Sort:     req.Sort,
		Order:    req.Order,
	})
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if req.Title != nil {
		product.Title = *req.Title
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Category != nil {
		if !model.ValidCategory(*req.Category) {
			return nil, ErrInvalidCategory
		}
		product.Category = *req.Category
	}
	if req.Image != nil {
		product.Image = *req.Image
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.InvalidateCache(ctx, id)
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.InvalidateCache(ctx, id)
	return nil
}

// UpsertReview stores one review per user per product (resubmission
// overwrites) and recomputes the product's rating in the same transaction, so
// rating.count always equals the number of stored reviews and rating.rate
// their mean. A review for an unknown product materializes it lazily when the
// caller supplies the external catalog snapshot.
func (s *ProductService) UpsertReview(ctx context.Context, principal model.Principal, userName string, productID uuid.UUID, req dto.UpsertReviewRequest) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		if req.Product == nil {
			return nil, ErrProductNotFound
		}
		if !model.ValidCategory(req.Product.Category) {
			return nil, ErrInvalidCategory
		}
		product = &model.Product{
			Title:    req.Product.Title,
			Price:    req.Product.Price,
			Category: req.Product.Category,
			Image:    req.Product.Image,
			Source:   model.SourceFrontend,
		}
		if err := s.productRepo.Create(ctx, product); err != nil {
			return nil, err
		}
	}

	review := &model.Review{
		ProductID: product.ID,
		UserID:    principal.UserID,
		UserName:  userName,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.productRepo.UpsertReview(ctx, tx, review); err != nil {
			return err
		}
		rate, count, err := s.productRepo.RecomputeRating(ctx, tx, product.ID)
		if err != nil {
			return err
		}
		product.RatingRate = rate
		product.RatingCount = count
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateCache(ctx, product.ID)
	return product, nil
}

func (s *ProductService) ListReviews(ctx context.Context, productID uuid.UUID) ([]model.Review, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return s.productRepo.ListReviews(ctx, productID)
}

// InvalidateCache drops the cached product entry; the cache worker calls this
// for every line item of a committed order mutation.
func (s *ProductService) InvalidateCache(ctx context.Context, id uuid.UUID) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, "product:"+id.String())
	}
}
