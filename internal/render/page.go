package render

import (
	"github.com/arcanaland/planche/internal/card"
)

// Page is one printed sheet
type Page struct {
	Number int
	Cards  []card.Card
}

// Paginate splits cards into pages of at most size cards, keeping their order.
// Pages are numbered from first, and every card records the page it lands on.
func Paginate(cards []card.Card, size, first int) []Page {
	if size <= 0 || len(cards) == 0 {
		return nil
	}

	pages := make([]Page, 0, (len(cards)+size-1)/size)
	for start := 0; start < len(cards); start += size {
		end := min(start+size, len(cards))
		number := first + len(pages)

		chunk := make([]card.Card, end-start)
		copy(chunk, cards[start:end])
		for i := range chunk {
			chunk[i].Page = number
		}
		pages = append(pages, Page{Number: number, Cards: chunk})
	}
	return pages
}
