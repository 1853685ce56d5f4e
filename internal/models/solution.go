package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ReadySolution is a fixed catering menu priced as a unit and sized for
// a persons count (10 or 15). Its components are ordinary products.
type ReadySolution struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Title        string          `gorm:"not null;uniqueIndex:idx_solution_title_persons" json:"title"`
	Slug         string          `gorm:"not null;uniqueIndex:idx_solution_slug_persons" json:"slug"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Description  string          `gorm:"type:text" json:"description"`
	Image        string          `json:"image"`
	PersonsCount int             `gorm:"not null;check:persons_count IN (10,15);uniqueIndex:idx_solution_title_persons;uniqueIndex:idx_solution_slug_persons" json:"persons_count"`
	IsPublished  bool            `gorm:"index" json:"is_published"`

	Items []ReadySolutionItem `gorm:"foreignKey:SolutionID" json:"items,omitempty"`
}

type ReadySolutionItem struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	SolutionID uint     `gorm:"index;not null;uniqueIndex:idx_solution_product" json:"solution_id"`
	ProductID  uint     `gorm:"not null;uniqueIndex:idx_solution_product" json:"product_id"`
	Product    *Product `json:"product,omitempty"`
	Quantity   int      `gorm:"not null;default:1" json:"quantity"`
	Position   int      `gorm:"not null;default:0" json:"position"`
}

// OrderedItems returns the menu composition sorted by position, ties
// broken by component title.
func (s *ReadySolution) OrderedItems() []ReadySolutionItem {
	items := make([]ReadySolutionItem, len(s.Items))
	copy(items, s.Items)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		var ti, tj string
		if items[i].Product != nil {
			ti = items[i].Product.Title
		}
		if items[j].Product != nil {
			tj = items[j].Product.Title
		}
		return ti < tj
	})
	return items
}
