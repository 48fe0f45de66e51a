package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/ports"
)

// CartService reconciles requested cart lines against stored ones. Lines are
// keyed by (employee, product, customisation); customisation matching is
// case-insensitive per field.
type CartService struct {
	Cart    ports.CartStore
	Catalog ports.ProductCatalog
}

// Upsert applies the cart laws: quantity zero deletes a matching line,
// positive quantity overwrites or inserts, and zero against no line is a
// no-op.
func (s CartService) Upsert(ctx context.Context, employeeID, productID int64, quantity int, customisation domain.Customisation) error {
	if quantity < 0 {
		return validationFailure("invalid cart line",
			map[string]string{"quantity": "must not be negative"})
	}

	product, err := s.Catalog.ByID(ctx, productID)
	if errors.Is(err, ports.ErrNotFound) {
		return validationFailure("invalid cart line",
			map[string]string{"productId": "product does not exist"})
	}
	if err != nil {
		return internalFailure("fetch product", err)
	}
	if !customisation.IsZero() && !product.IsCustomisable {
		return validationFailure("invalid cart line",
			map[string]string{"customisation": "product is not customisable"})
	}

	lines, err := s.Cart.LinesFor(ctx, employeeID, productID)
	if err != nil {
		return internalFailure("fetch cart lines", err)
	}
	existing := matchCustomisation(lines, customisation)

	switch {
	case existing == nil && quantity == 0:
		return nil
	case existing == nil:
		if err := s.Cart.Insert(ctx, domain.CartLine{
			EmployeeID:    employeeID,
			ProductID:     productID,
			Quantity:      quantity,
			Customisation: customisation,
		}); err != nil {
			return internalFailure("insert cart line", err)
		}
	case quantity == 0:
		if err := s.Cart.Delete(ctx, existing.ID); err != nil {
			return internalFailure("delete cart line", err)
		}
	default:
		if err := s.Cart.UpdateQuantity(ctx, existing.ID, quantity); err != nil {
			return internalFailure("update cart line", err)
		}
	}
	return nil
}

func matchCustomisation(lines []domain.CartLine, c domain.Customisation) *domain.CartLine {
	for i := range lines {
		stored := lines[i].Customisation
		if strings.EqualFold(stored.Size, c.Size) && strings.EqualFold(stored.Color, c.Color) {
			return &lines[i]
		}
	}
	return nil
}

// CartItem is a cart line joined with its product for presentation and
// checkout.
type CartItem struct {
	Line    domain.CartLine
	Product domain.Product
}

// Items returns the employee's cart lines joined with product details,
// re-validated against the catalog at read time. Lines whose product has
// vanished are reported in a field-level map rather than silently dropped.
func (s CartService) Items(ctx context.Context, employeeID int64) ([]CartItem, error) {
	lines, err := s.Cart.Lines(ctx, employeeID)
	if err != nil {
		return nil, internalFailure("fetch cart lines", err)
	}

	items := make([]CartItem, 0, len(lines))
	missing := map[string]string{}
	for i, line := range lines {
		product, err := s.Catalog.ByID(ctx, line.ProductID)
		if errors.Is(err, ports.ErrNotFound) {
			missing[fmt.Sprintf("lines[%d]", i)] = "product no longer exists"
			continue
		}
		if err != nil {
			return nil, internalFailure("fetch product", err)
		}
		items = append(items, CartItem{Line: line, Product: *product})
	}
	if len(missing) > 0 {
		return nil, validationFailure("cart contains invalid lines", missing)
	}
	return items, nil
}

// DeleteLine removes one of the employee's cart lines.
func (s CartService) DeleteLine(ctx context.Context, employeeID, lineID int64) error {
	lines, err := s.Cart.Lines(ctx, employeeID)
	if err != nil {
		return internalFailure("fetch cart lines", err)
	}
	for _, line := range lines {
		if line.ID == lineID {
			if err := s.Cart.Delete(ctx, lineID); err != nil {
				return internalFailure("delete cart line", err)
			}
			return nil
		}
	}
	return failure(KindNotFound, "cart line not found")
}
