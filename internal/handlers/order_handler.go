package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/Maks-am-I/marinaBr/internal/cart"
	"github.com/Maks-am-I/marinaBr/internal/db"
	"github.com/Maks-am-I/marinaBr/internal/models"
	"github.com/Maks-am-I/marinaBr/internal/notifier"
)

type OrderRequest struct {
	CustomerName    string `form:"customer_name"`
	CustomerPhone   string `form:"customer_phone"`
	OrderDate       string `form:"order_date"`
	OrderTime       string `form:"order_time"`
	DeliveryAddress string `form:"delivery_address"`
}

// validate checks the required fields and parses date and time-of-day
// into typed values. It returns per-field messages keyed the way the
// form names its inputs.
func (r *OrderRequest) validate() (datatypes.Date, string, map[string]string) {
	errs := map[string]string{}

	if r.CustomerName == "" {
		errs["customer_name"] = "Name is required"
	}
	if r.CustomerPhone == "" {
		errs["customer_phone"] = "Phone is required"
	}
	if r.DeliveryAddress == "" {
		errs["delivery_address"] = "Delivery address is required"
	}

	var date datatypes.Date
	if r.OrderDate == "" {
		errs["order_date"] = "Delivery date is required"
	} else if parsed, err := time.Parse("2006-01-02", r.OrderDate); err != nil {
		errs["order_date"] = "Delivery date must be YYYY-MM-DD"
	} else {
		date = datatypes.Date(parsed)
	}

	deliveryTime := ""
	if r.OrderTime == "" {
		errs["order_time"] = "Delivery time is required"
	} else if parsed, err := time.Parse("15:04", r.OrderTime); err != nil {
		errs["order_time"] = "Delivery time must be HH:MM"
	} else {
		deliveryTime = parsed.Format("15:04")
	}

	return date, deliveryTime, errs
}

// OrderPage renders the checkout form. An empty cart has nothing to
// check out, so it bounces back to the cart page.
func OrderPage(c *gin.Context) {
	sess := sessions.Default(c)
	ct := cart.FromSession(sess)

	items, total, err := ct.Materialize(db.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}
	if len(items) == 0 {
		c.Redirect(http.StatusSeeOther, "/cart/")
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

// CreateOrder turns the materialized cart into a durable order. The
// order and its items are written in one transaction; prices are
// snapshotted from the catalog rows as they stand at submission, not
// from anything remembered at add-to-cart time. On success the cart is
// cleared and the operator is notified in the background.
func CreateOrder(c *gin.Context) {
	sess := sessions.Default(c)
	ct := cart.FromSession(sess)

	items, total, err := ct.Materialize(db.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}
	if len(items) == 0 {
		setFlash(sess, "Your cart is empty")
		c.Redirect(http.StatusSeeOther, "/cart/")
		return
	}

	var form OrderRequest
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	date, deliveryTime, errs := form.validate()
	if len(errs) > 0 {
		c.HTML(http.StatusOK, "cart.html", gin.H{
			"Items":      items,
			"TotalPrice": total.StringFixed(2),
			"CartTotal":  ct.TotalQuantity(),
			"Flash":      "",
			"Form":       form,
			"Errors":     errs,
		})
		return
	}

	order := models.Order{
		CustomerName:    form.CustomerName,
		CustomerPhone:   form.CustomerPhone,
		DeliveryDate:    date,
		DeliveryTime:    deliveryTime,
		DeliveryAddress: form.DeliveryAddress,
		TotalPrice:      total,
		Status:          models.OrderStatusNew,
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start transaction"})
		return
	}

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
		return
	}

	orderItems := make([]models.OrderItem, 0, len(items))
	for i := range items {
		item := models.OrderItem{
			OrderID:  order.ID,
			Title:    items[i].Title(),
			Quantity: items[i].Quantity,
			Price:    items[i].UnitPrice(),
		}
		if items[i].Solution != nil {
			id := items[i].Solution.ID
			item.SolutionID = &id
		} else {
			id := items[i].Product.ID
			item.ProductID = &id
		}
		orderItems = append(orderItems, item)
	}

	if err := tx.CreateInBatches(&orderItems, len(orderItems)).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order items"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to commit order"})
		return
	}

	ct.Clear()
	if err := ct.Save(sess); err != nil {
		log.WithError(err).WithField("order", order.Number).Error("failed to clear cart after checkout")
	}

	order.Items = orderItems
	go notifier.NotifyOrder(order)

	log.WithFields(log.Fields{
		"order": order.Number,
		"total": order.TotalPrice.StringFixed(2),
		"items": len(orderItems),
	}).Info("order created")

	setFlash(sess, "Your order has been placed. We will call you to confirm.")
	c.Redirect(http.StatusSeeOther, "/")
}
