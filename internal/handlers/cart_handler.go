package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Maks-am-I/marinaBr/internal/cart"
	"github.com/Maks-am-I/marinaBr/internal/db"
	"github.com/Maks-am-I/marinaBr/internal/models"
)

// isAsync reports whether the request came from the storefront's
// background fetch calls rather than a plain form submission. Async
// callers get JSON, everyone else gets a redirect.
func isAsync(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// formQuantity reads the quantity form field, falling back to 1.
func formQuantity(c *gin.Context) int {
	quantity, err := strconv.Atoi(c.PostForm("quantity"))
	if err != nil || quantity < 1 {
		return 1
	}
	return quantity
}

func findPublishedProduct(id uint) (*models.Product, bool) {
	var product models.Product
	if err := db.DB.Where("is_published = ?", true).First(&product, id).Error; err != nil {
		return nil, false
	}
	return &product, true
}

func findPublishedSolution(id uint) (*models.ReadySolution, bool) {
	var solution models.ReadySolution
	if err := db.DB.Where("is_published = ?", true).First(&solution, id).Error; err != nil {
		return nil, false
	}
	return &solution, true
}

// referentExists checks that the catalog row behind a cart key exists
// at all. Remove and update manipulate only the session, so an
// unpublished row is still a legitimate target; a row that was never
// there is a 404.
func referentExists(kind cart.ItemKind, id uint) bool {
	var err error
	if kind == cart.KindSolution {
		err = db.DB.First(&models.ReadySolution{}, id).Error
	} else {
		err = db.DB.First(&models.Product{}, id).Error
	}
	return err == nil
}

// CartPage renders the cart with its order form.
func CartPage(c *gin.Context) {
	sess := sessions.Default(c)
	ct := cart.FromSession(sess)

	items, total, err := ct.Materialize(db.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}

	c.HTML(http.StatusOK, "cart.html", gin.H{
		"Items":      items,
		"TotalPrice": total.StringFixed(2),
		"CartTotal":  ct.TotalQuantity(),
		"Flash":      takeFlash(sess),
		"Form":       OrderRequest{},
		"Errors":     map[string]string{},
	})
}

// AddProduct puts a product into the cart, merging quantities when it
// is already there.
func AddProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	product, ok := findPublishedProduct(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Product not found with ID: %d", id)})
		return
	}

	sess := sessions.Default(c)
	ct := cart.FromSession(sess)
	ct.Add(cart.ProductKey(product.ID), formQuantity(c))

	if err := ct.Save(sess); err != nil {
		log.WithError(err).Error("failed to save cart session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
		return
	}

	if isAsync(c) {
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"cart_total": ct.TotalQuantity(),
			"message":    fmt.Sprintf("%s added to cart", product.Title),
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/cart/")
}

// AddSolution puts a ready solution into the cart. Solutions live in a
// separate key space, so a solution never merges with the product that
// happens to share its id.
func AddSolution(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "ready solution not found"})
		return
	}

	solution, ok := findPublishedSolution(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Ready solution not found with ID: %d", id)})
		return
	}

	sess := sessions.Default(c)
	ct := cart.FromSession(sess)
	ct.Add(cart.SolutionKey(solution.ID), formQuantity(c))

	if err := ct.Save(sess); err != nil {
		log.WithError(err).Error("failed to save cart session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
		return
	}

	if isAsync(c) {
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"cart_total": ct.TotalQuantity(),
			"message":    fmt.Sprintf("%s (%d persons) added to cart", solution.Title, solution.PersonsCount),
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/cart/")
}

func RemoveProduct(c *gin.Context) {
	removeFromCart(c, cart.KindProduct)
}

func RemoveSolution(c *gin.Context) {
	removeFromCart(c, cart.KindSolution)
}

func removeFromCart(c *gin.Context, kind cart.ItemKind) {
	id, ok := paramID(c)
	if !ok || !referentExists(kind, id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	sess := sessions.Default(c)
	ct := cart.FromSession(sess)
	ct.Remove(cart.ItemKey{Kind: kind, ID: id})

	if err := ct.Save(sess); err != nil {
		log.WithError(err).Error("failed to save cart session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
		return
	}

	_, total, err := ct.Materialize(db.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}

	if isAsync(c) {
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"cart_total":  ct.TotalQuantity(),
			"total_price": total.StringFixed(2),
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/cart/")
}

func UpdateProduct(c *gin.Context) {
	updateCartItem(c, cart.KindProduct)
}

func UpdateSolution(c *gin.Context) {
	updateCartItem(c, cart.KindSolution)
}

// updateCartItem overwrites an entry's quantity; zero removes the
// entry.
func updateCartItem(c *gin.Context, kind cart.ItemKind) {
	id, ok := paramID(c)
	if !ok || !referentExists(kind, id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	quantity, err := strconv.Atoi(c.PostForm("quantity"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
		return
	}

	key := cart.ItemKey{Kind: kind, ID: id}

	sess := sessions.Default(c)
	ct := cart.FromSession(sess)
	ct.SetQuantity(key, quantity)

	if err := ct.Save(sess); err != nil {
		log.WithError(err).Error("failed to save cart session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
		return
	}

	items, total, err := ct.Materialize(db.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}

	itemTotal := "0.00"
	for i := range items {
		if items[i].Key == key {
			itemTotal = items[i].Total.StringFixed(2)
			break
		}
	}

	if isAsync(c) {
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"cart_total":  ct.TotalQuantity(),
			"item_total":  itemTotal,
			"total_price": total.StringFixed(2),
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/cart/")
}

// CartInfo is the read-only snapshot behind the header badge.
func CartInfo(c *gin.Context) {
	sess := sessions.Default(c)
	ct := cart.FromSession(sess)

	_, total, err := ct.Materialize(db.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart_total":  ct.TotalQuantity(),
		"total_price": total.StringFixed(2),
	})
}
