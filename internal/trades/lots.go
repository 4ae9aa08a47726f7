package trades

import (
	"portfolio-api/internal/types"

	"github.com/shopspring/decimal"
)

// lot is an unmatched buy awaiting a sale.
type lot struct {
	qty   decimal.Decimal
	price decimal.Decimal
	time  types.Timestamp
}

// lotQueue is the per-symbol FIFO of open buy lots. It lives for a single
// reconstruction only.
type lotQueue struct {
	lots []*lot
}

func (q *lotQueue) push(l lot) {
	q.lots = append(q.lots, &l)
}

func (q *lotQueue) empty() bool {
	return len(q.lots) == 0
}

func (q *lotQueue) front() *lot {
	return q.lots[0]
}

func (q *lotQueue) pop() {
	q.lots[0] = nil
	q.lots = q.lots[1:]
}

// remaining is the total unmatched quantity still queued.
func (q *lotQueue) remaining() decimal.Decimal {
	total := decimal.Zero
	for _, l := range q.lots {
		total = total.Add(l.qty)
	}
	return total
}
