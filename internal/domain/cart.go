package domain

import "github.com/shopspring/decimal"

// CartLine keeps the product name and price as they were when the line was added.
type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"product_name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	UserID int64
	Lines  []CartLine
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Total is recomputed from the lines on every call.
func (c Cart) Total() decimal.Decimal {
	return LinesTotal(c.Lines)
}

func LinesTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
