package service

import (
	"context"
	"log/slog"

	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/ports"
)

type ProductService struct {
	Catalog ports.ProductCatalog
	Orders  ports.OrderStore
}

// ProductView is a catalog product shaped for the employee listing.
type ProductView struct {
	ProductID          int64  `json:"productId"`
	Title              string `json:"title"`
	RewardPoints       int64  `json:"rewardPoints"`
	IsCustomisable     bool   `json:"isCustomisable"`
	ImageURL           string `json:"imageUrl"`
	IsAlreadyPurchased bool   `json:"isAlreadyPurchased"`
}

// ListFor returns the catalog with per-employee purchase flags: a product
// counts as purchased once the employee has a DELIVERED order for it.
func (s ProductService) ListFor(ctx context.Context, employeeID int64) ([]ProductView, error) {
	products, err := s.Catalog.List(ctx)
	if err != nil {
		return nil, internalFailure("fetch products", err)
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		purchased, err := s.Orders.HasDeliveredOrder(ctx, employeeID, p.ProductID)
		if err != nil {
			slog.Error("purchase lookup failed", "productId", p.ProductID, "error", err)
		}
		views = append(views, ProductView{
			ProductID:          p.ProductID,
			Title:              p.Title,
			RewardPoints:       p.RewardPoints,
			IsCustomisable:     p.IsCustomisable,
			ImageURL:           p.ImageURL,
			IsAlreadyPurchased: purchased,
		})
	}
	return views, nil
}

func (s ProductService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.Catalog.List(ctx)
	if err != nil {
		return nil, internalFailure("fetch products", err)
	}
	return products, nil
}

func (s ProductService) Create(ctx context.Context, title string, rewardPoints int64, isCustomisable bool, imageURL string) (*domain.Product, error) {
	if title == "" {
		return nil, validationFailure("invalid product",
			map[string]string{"title": "required"})
	}
	if rewardPoints <= 0 {
		return nil, validationFailure("invalid product",
			map[string]string{"rewardPoints": "must be positive"})
	}
	product, err := s.Catalog.Create(ctx, title, rewardPoints, isCustomisable, imageURL)
	if err != nil {
		return nil, internalFailure("create product", err)
	}
	return product, nil
}

func (s ProductService) Sizes(ctx context.Context) ([]string, error) {
	sizes, err := s.Catalog.Sizes(ctx)
	if err != nil {
		return nil, internalFailure("fetch sizes", err)
	}
	return sizes, nil
}

func (s ProductService) Colors(ctx context.Context) ([]string, error) {
	colors, err := s.Catalog.Colors(ctx)
	if err != nil {
		return nil, internalFailure("fetch colors", err)
	}
	return colors, nil
}
