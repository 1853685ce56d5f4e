package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Maks-am-I/marinaBr/internal/models"
)

type ItemKind string

const (
	KindProduct  ItemKind = "product"
	KindSolution ItemKind = "solution"
)

// ItemKey identifies a cart line: either a plain product or a ready
// solution. The two id spaces never collide because the kind is part
// of the key.
type ItemKey struct {
	Kind ItemKind
	ID   uint
}

func ProductKey(id uint) ItemKey  { return ItemKey{Kind: KindProduct, ID: id} }
func SolutionKey(id uint) ItemKey { return ItemKey{Kind: KindSolution, ID: id} }

// Wire form of a key: "5" for a product, "solution_5" for a ready
// solution. This is the format previously stored in live sessions, so
// it is kept as the serialization alphabet.
const solutionPrefix = "solution_"

func (k ItemKey) String() string {
	if k.Kind == KindSolution {
		return solutionPrefix + strconv.FormatUint(uint64(k.ID), 10)
	}
	return strconv.FormatUint(uint64(k.ID), 10)
}

func ParseKey(s string) (ItemKey, error) {
	kind := KindProduct
	if rest, ok := strings.CutPrefix(s, solutionPrefix); ok {
		kind = KindSolution
		s = rest
	}
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return ItemKey{}, fmt.Errorf("malformed cart key %q: %w", s, err)
	}
	return ItemKey{Kind: kind, ID: uint(id)}, nil
}

type Entry struct {
	Key      ItemKey
	Quantity int
}

// Cart is the session-scoped list of selected items. Entries keep
// insertion order so the cart page renders in the order things were
// added.
type Cart struct {
	entries []Entry
}

func New() *Cart {
	return &Cart{}
}

func (c *Cart) find(key ItemKey) int {
	for i := range c.entries {
		if c.entries[i].Key == key {
			return i
		}
	}
	return -1
}

// Add inserts a new entry or merges the quantity into an existing one.
func (c *Cart) Add(key ItemKey, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	if i := c.find(key); i >= 0 {
		c.entries[i].Quantity += quantity
		return
	}
	c.entries = append(c.entries, Entry{Key: key, Quantity: quantity})
}

// Remove drops an entry. Removing an absent key is a no-op.
func (c *Cart) Remove(key ItemKey) {
	if i := c.find(key); i >= 0 {
		c.entries = append(c.entries[:i], c.entries[i+1:]...)
	}
}

// SetQuantity overwrites an existing entry's quantity. A quantity of
// zero or less removes the entry. A key not in the cart is left
// alone; only Add introduces entries.
func (c *Cart) SetQuantity(key ItemKey, quantity int) {
	i := c.find(key)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		c.Remove(key)
		return
	}
	c.entries[i].Quantity = quantity
}

func (c *Cart) Clear() {
	c.entries = nil
}

func (c *Cart) Entries() []Entry {
	return c.entries
}

func (c *Cart) Quantity(key ItemKey) int {
	if i := c.find(key); i >= 0 {
		return c.entries[i].Quantity
	}
	return 0
}

// TotalQuantity sums quantities over all entries, including ones whose
// referent has since been deleted or unpublished. The header badge
// built on this can therefore briefly disagree with the cart page
// after a catalog edit; that behavior is intentional.
func (c *Cart) TotalQuantity() int {
	total := 0
	for i := range c.entries {
		total += c.entries[i].Quantity
	}
	return total
}

// LineItem is a cart entry resolved against the catalog. Exactly one
// of Product and Solution is set.
type LineItem struct {
	Key      ItemKey
	Product  *models.Product
	Solution *models.ReadySolution
	Quantity int
	Total    decimal.Decimal
}

func (li LineItem) Title() string {
	if li.Solution != nil {
		return fmt.Sprintf("%s (%d persons)", li.Solution.Title, li.Solution.PersonsCount)
	}
	return li.Product.Title
}

func (li LineItem) UnitPrice() decimal.Decimal {
	if li.Solution != nil {
		return li.Solution.Price
	}
	return li.Product.Price
}

// Materialize resolves every entry against the catalog, keeping only
// published referents. Entries whose referent is gone or unpublished
// are skipped without error; stale session state is not the shopper's
// problem. Returns the line items in cart order and the aggregate
// price.
func (c *Cart) Materialize(gdb *gorm.DB) ([]LineItem, decimal.Decimal, error) {
	items := []LineItem{}
	total := decimal.Zero

	for _, e := range c.entries {
		switch e.Key.Kind {
		case KindSolution:
			var solution models.ReadySolution
			err := gdb.Where("is_published = ?", true).First(&solution, e.Key.ID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return nil, decimal.Zero, err
			}
			lineTotal := solution.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
			items = append(items, LineItem{Key: e.Key, Solution: &solution, Quantity: e.Quantity, Total: lineTotal})
			total = total.Add(lineTotal)
		default:
			var product models.Product
			err := gdb.Where("is_published = ?", true).First(&product, e.Key.ID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return nil, decimal.Zero, err
			}
			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
			items = append(items, LineItem{Key: e.Key, Product: &product, Quantity: e.Quantity, Total: lineTotal})
			total = total.Add(lineTotal)
		}
	}

	return items, total, nil
}

// wireEntry is the session representation of one entry, keyed by the
// string form documented on ItemKey.
type wireEntry struct {
	Key      string `json:"key"`
	Quantity int    `json:"quantity"`
}

const sessionKey = "cart"

// Encode serializes the cart for session storage.
func (c *Cart) Encode() string {
	wire := make([]wireEntry, 0, len(c.entries))
	for _, e := range c.entries {
		wire = append(wire, wireEntry{Key: e.Key.String(), Quantity: e.Quantity})
	}
	b, _ := json.Marshal(wire)
	return string(b)
}

// Decode rebuilds a cart from its session form. Malformed keys are
// dropped rather than failing the whole cart.
func Decode(raw string) *Cart {
	c := New()
	if raw == "" {
		return c
	}
	var wire []wireEntry
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return c
	}
	for _, w := range wire {
		key, err := ParseKey(w.Key)
		if err != nil || w.Quantity < 1 {
			continue
		}
		c.entries = append(c.entries, Entry{Key: key, Quantity: w.Quantity})
	}
	return c
}

// FromSession loads the cart stored in the request session, or an
// empty cart when there is none.
func FromSession(sess sessions.Session) *Cart {
	raw, _ := sess.Get(sessionKey).(string)
	return Decode(raw)
}

// Save writes the cart back into the session and persists it.
func (c *Cart) Save(sess sessions.Session) error {
	sess.Set(sessionKey, c.Encode())
	return sess.Save()
}
