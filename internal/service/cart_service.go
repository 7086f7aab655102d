package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_cart/order-bot/internal/catalog"
	"github.com/fjod/go_cart/order-bot/internal/domain"
	"github.com/fjod/go_cart/order-bot/internal/store"
)

const EmptyCartMessage = "Your cart is empty."

type ProductCatalog interface {
	Find(id string) (domain.Product, error)
	Products() []domain.Product
}

type CartService struct {
	catalog ProductCatalog
	carts   store.CartStore
}

func NewCartService(catalog ProductCatalog, carts store.CartStore) *CartService {
	return &CartService{
		catalog: catalog,
		carts:   carts,
	}
}

// Add puts qty units of the product into the user's cart. Name and price are
// copied from the catalog at this moment.
func (s *CartService) Add(userID int64, productID string, qty int) (domain.Product, error) {
	if qty < 1 {
		return domain.Product{}, ErrInvalidQuantity
	}
	p, err := s.catalog.Find(productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return domain.Product{}, fmt.Errorf("%w: %q", ErrUnknownProduct, productID)
	}
	if err != nil {
		return domain.Product{}, err
	}

	s.carts.AddLine(userID, domain.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  qty,
	})
	return p, nil
}

func (s *CartService) Cart(userID int64) domain.Cart {
	return domain.Cart{
		UserID: userID,
		Lines:  s.carts.Lines(userID),
	}
}

func (s *CartService) Clear(userID int64) {
	s.carts.Clear(userID)
}

// Remove takes the given lines' quantities out of the user's cart.
func (s *CartService) Remove(userID int64, lines []domain.CartLine) {
	s.carts.RemoveLines(userID, lines)
}

// Summary lists the cart lines and the recomputed total.
func (s *CartService) Summary(userID int64) string {
	return Summarize(s.Cart(userID))
}

func Summarize(cart domain.Cart) string {
	if cart.IsEmpty() {
		return EmptyCartMessage
	}
	lines := make([]string, 0, len(cart.Lines)+1)
	for _, l := range cart.Lines {
		lines = append(lines, fmt.Sprintf("%d× %s — %s each", l.Quantity, l.Name, domain.FormatPrice(l.UnitPrice)))
	}
	lines = append(lines, "\nTotal: "+domain.FormatPrice(cart.Total()))
	return strings.Join(lines, "\n")
}
