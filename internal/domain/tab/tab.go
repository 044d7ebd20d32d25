package tab

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a tab. The constants carry the labels
// the snapshot schema and the UI use.
type Status string

const (
	StatusOpen   Status = "Aberta"
	StatusClosed Status = "Fechada"
	StatusPaid   Status = "Paga"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusPaid:
		return true
	}
	return false
}

// OrderItem is a single line added to a tab. ProductName and Price are
// frozen copies taken from the catalog at insertion time, so later
// catalog changes never alter historical orders.
type OrderItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Timestamp   int64           `json:"timestamp"`
}

// Subtotal returns price × quantity for this line.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Tab is an account for a table, accumulating order items until it is
// closed and settled. Items are kept in insertion order. ClosedAt is
// non-zero iff the most recent status transition was into Closed;
// reopening clears it.
type Tab struct {
	ID           string      `json:"id"`
	TableNumber  string      `json:"tableNumber"`
	CustomerName string      `json:"customerName,omitempty"`
	Status       Status      `json:"status"`
	Items        []OrderItem `json:"items"`
	OpenedAt     int64       `json:"openedAt"`
	ClosedAt     int64       `json:"closedAt,omitempty"`
}

// Total sums price × quantity over all items. Totals are always derived
// from the item list; no cached value is kept anywhere. Rounding to two
// decimal places happens only at the presentation boundary.
func (t Tab) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range t.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// GroupedLine is one bucket of the grouped items view: all lines of a
// single product collapsed into quantity and subtotal sums.
type GroupedLine struct {
	ProductID     string          `json:"productId"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	TotalQuantity int             `json:"totalQuantity"`
	LineTotal     decimal.Decimal `json:"lineTotal"`
}

// GroupItems buckets the tab's items by product id, summing quantities
// and subtotals. Bucket order is the order of each product's first
// occurrence in the item list, which is what the grouped/detailed view
// toggle shows. The underlying items are untouched.
func (t Tab) GroupItems() []GroupedLine {
	lines := make([]GroupedLine, 0, len(t.Items))
	index := make(map[string]int, len(t.Items))

	for _, item := range t.Items {
		i, ok := index[item.ProductID]
		if !ok {
			index[item.ProductID] = len(lines)
			lines = append(lines, GroupedLine{
				ProductID: item.ProductID,
				Name:      item.ProductName,
				UnitPrice: item.Price,
			})
			i = len(lines) - 1
		}
		lines[i].TotalQuantity += item.Quantity
		lines[i].LineTotal = lines[i].LineTotal.Add(item.Subtotal())
	}
	return lines
}

// clone returns a deep copy so callers can never mutate stored state.
func (t Tab) clone() Tab {
	out := t
	out.Items = make([]OrderItem, len(t.Items))
	copy(out.Items, t.Items)
	return out
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
