package models

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Title          string          `gorm:"uniqueIndex;not null" json:"title"`
	Slug           string          `gorm:"index;not null" json:"slug"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	SecondaryPrice decimal.Decimal `gorm:"type:decimal(10,2)" json:"secondary_price"`
	PerUnit        bool            `json:"per_unit"`
	Description    string          `gorm:"type:text" json:"description"`
	Ingredients    string          `gorm:"type:text" json:"ingredients"`
	MinOrderQty    int             `gorm:"default:1" json:"min_order_qty"`
	Image          string          `json:"image"`
	// No column default here: GORM omits zero-value fields that carry
	// a default tag from the INSERT, which would silently publish rows
	// created with IsPublished false.
	IsPublished bool      `gorm:"index" json:"is_published"`
	CategoryID  uint      `gorm:"index;not null" json:"category_id"`
	Category    *Category `json:"category,omitempty"`

	// A product can itself be a fixed menu assembled from other
	// products; PersonsCount is only meaningful for those.
	IsBundle     bool                `json:"is_bundle"`
	PersonsCount int                 `json:"persons_count,omitempty"`
	BundleItems  []ProductBundleItem `gorm:"foreignKey:BundleID" json:"bundle_items,omitempty"`
}

type ProductBundleItem struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	BundleID  uint     `gorm:"index;not null;uniqueIndex:idx_bundle_product" json:"bundle_id"`
	ProductID uint     `gorm:"not null;uniqueIndex:idx_bundle_product" json:"product_id"`
	Product   *Product `json:"product,omitempty"`
	Quantity  int      `gorm:"not null;default:1" json:"quantity"`
	Position  int      `gorm:"not null;default:0" json:"position"`
}

// IngredientList splits the semicolon-delimited ingredients field into
// trimmed entries. Empty segments are dropped.
func (p *Product) IngredientList() []string {
	out := []string{}
	for _, part := range strings.Split(p.Ingredients, ";") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// OrderedBundleItems returns the bundle composition sorted by position,
// with ties broken by the component product's title. Items must be
// loaded with their Product association.
func (p *Product) OrderedBundleItems() []ProductBundleItem {
	items := make([]ProductBundleItem, len(p.BundleItems))
	copy(items, p.BundleItems)
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
