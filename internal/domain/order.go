package domain

import "github.com/shopspring/decimal"

// Order is a point-in-time snapshot of a confirmed cart plus buyer contact details.
type Order struct {
	ID      string     `json:"order_id"`
	Buyer   User       `json:"telegram_user"`
	Lines   []CartLine `json:"cart"`
	Address string     `json:"address"`
	Phone   string     `json:"phone"`
}

func (o Order) Total() decimal.Decimal {
	return LinesTotal(o.Lines)
}
