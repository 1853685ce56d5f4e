package handlers_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Maks-am-I/marinaBr/internal/models"
	"github.com/Maks-am-I/marinaBr/internal/notifier"
)

func validOrderForm() url.Values {
	return url.Values{
		"customer_name":    {"Ivan Ivanov"},
		"customer_phone":   {"+7 999 123 45 67"},
		"order_date":       {"2026-09-15"},
		"order_time":       {"14:30"},
		"delivery_address": {"Lenina 1, apt 1"},
	}
}

func TestCreateOrderHandler(t *testing.T) {

	router, testDB := setupStoreTestRouter(t)
	cake, _, banquet := seedCatalog(t, testDB)

	t.Run("Creates an order from the cart and clears it", func(t *testing.T) {
		cl := newStoreClient(router)
		cl.postAsync(fmt.Sprintf("/cart/add/%d/", cake.ID), quantityForm("2"))
		cl.postAsync(fmt.Sprintf("/cart/add-solution/%d/", banquet.ID), nil)

		recorder := cl.postForm("/cart/order/", validOrderForm())

		assert.Equal(t, http.StatusSeeOther, recorder.Code)
		assert.Equal(t, "/", recorder.Header().Get("Location"))

		var order models.Order
		err := testDB.Preload("Items").Where("customer_name = ?", "Ivan Ivanov").First(&order).Error
		assert.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, order.Number)
		assert.Equal(t, models.OrderStatusNew, order.Status)
		assert.Equal(t, "14:30", order.DeliveryTime)
		assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(4000)))
		assert.Len(t, order.Items, 2)

		// line totals add up to the order total
		sum := decimal.Zero
		for _, item := range order.Items {
			sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		assert.True(t, sum.Equal(order.TotalPrice))

		// one line references the product, the other the solution
		assert.NotNil(t, order.Items[0].ProductID)
		assert.Equal(t, cake.ID, *order.Items[0].ProductID)
		assert.Nil(t, order.Items[0].SolutionID)
		assert.Equal(t, 2, order.Items[0].Quantity)

		assert.NotNil(t, order.Items[1].SolutionID)
		assert.Equal(t, banquet.ID, *order.Items[1].SolutionID)
		assert.Nil(t, order.Items[1].ProductID)
		assert.Equal(t, "Banquet (10 persons)", order.Items[1].Title)

		info := decodeJSON(t, cl.get("/cart/info/"))
		assert.Equal(t, float64(0), info["cart_total"])
	})

	t.Run("Rejects an empty cart with no writes", func(t *testing.T) {
		var before int64
		testDB.Model(&models.Order{}).Count(&before)

		cl := newStoreClient(router)
		recorder := cl.postForm("/cart/order/", validOrderForm())

		assert.Equal(t, http.StatusSeeOther, recorder.Code)
		assert.Equal(t, "/cart/", recorder.Header().Get("Location"))

		var after int64
		testDB.Model(&models.Order{}).Count(&after)
		assert.Equal(t, before, after)
	})

	t.Run("Missing fields redisplay the form without writes", func(t *testing.T) {
		var before int64
		testDB.Model(&models.Order{}).Count(&before)

		cl := newStoreClient(router)
		cl.postAsync(fmt.Sprintf("/cart/add/%d/", cake.ID), nil)

		form := validOrderForm()
		form.Del("customer_phone")
		recorder := cl.postForm("/cart/order/", form)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Phone is required")

		var after int64
		testDB.Model(&models.Order{}).Count(&after)
		assert.Equal(t, before, after)

		// the cart survives a failed submission
		info := decodeJSON(t, cl.get("/cart/info/"))
		assert.Equal(t, float64(1), info["cart_total"])
	})

	t.Run("Malformed date is a validation failure", func(t *testing.T) {
		var before int64
		testDB.Model(&models.Order{}).Count(&before)

		cl := newStoreClient(router)
		cl.postAsync(fmt.Sprintf("/cart/add/%d/", cake.ID), nil)

		form := validOrderForm()
		form.Set("order_date", "15.09.2026")
		recorder := cl.postForm("/cart/order/", form)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Delivery date must be YYYY-MM-DD")

		var after int64
		testDB.Model(&models.Order{}).Count(&after)
		assert.Equal(t, before, after)
	})

	t.Run("Malformed time is a validation failure", func(t *testing.T) {
		cl := newStoreClient(router)
		cl.postAsync(fmt.Sprintf("/cart/add/%d/", cake.ID), nil)

		form := validOrderForm()
		form.Set("order_time", "25:99")
		recorder := cl.postForm("/cart/order/", form)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Delivery time must be HH:MM")
	})

	t.Run("Snapshots the price in effect at submission", func(t *testing.T) {
		cl := newStoreClient(router)
		cl.postAsync(fmt.Sprintf("/cart/add/%d/", cake.ID), nil)

		testDB.Model(&models.Product{}).Where("id = ?", cake.ID).
			Update("price", decimal.NewFromInt(600))
		t.Cleanup(func() {
			testDB.Model(&models.Product{}).Where("id = ?", cake.ID).
				Update("price", decimal.NewFromInt(500))
		})

		form := validOrderForm()
		form.Set("customer_name", "Price Change")
		recorder := cl.postForm("/cart/order/", form)
		assert.Equal(t, http.StatusSeeOther, recorder.Code)

		var order models.Order
		err := testDB.Preload("Items").Where("customer_name = ?", "Price Change").First(&order).Error
		assert.NoError(t, err)
		assert.Len(t, order.Items, 1)
		assert.True(t, order.Items[0].Price.Equal(decimal.NewFromInt(600)))
		assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(600)))
	})

	t.Run("A cart holding only stale entries checks out as empty", func(t *testing.T) {
		hidden := seedHiddenProduct(t, testDB, cake.CategoryID)
		testDB.Model(&hidden).Update("is_published", true)

		cl := newStoreClient(router)
		cl.postAsync(fmt.Sprintf("/cart/add/%d/", hidden.ID), nil)

		testDB.Model(&hidden).Update("is_published", false)

		var before int64
		testDB.Model(&models.Order{}).Count(&before)

		recorder := cl.postForm("/cart/order/", validOrderForm())
		assert.Equal(t, http.StatusSeeOther, recorder.Code)
		assert.Equal(t, "/cart/", recorder.Header().Get("Location"))

		var after int64
		testDB.Model(&models.Order{}).Count(&after)
		assert.Equal(t, before, after)
	})
}

func TestCheckoutNotification(t *testing.T) {

	router, testDB := setupStoreTestRouter(t)
	cake, _, _ := seedCatalog(t, testDB)

	t.Run("Operator gets an order summary", func(t *testing.T) {
		sent := make(chan string, 1)
		notifier.SetTestSender(func(subject, body string) error {
			sent <- subject + "\n" + body
			return nil
		})

		cl := newStoreClient(router)
		cl.postAsync(fmt.Sprintf("/cart/add/%d/", cake.ID), quantityForm("2"))

		recorder := cl.postForm("/cart/order/", validOrderForm())
		assert.Equal(t, http.StatusSeeOther, recorder.Code)

		select {
		case message := <-sent:
			assert.Contains(t, message, "Ivan Ivanov")
			assert.Contains(t, message, "Honey cake x2")
			assert.Contains(t, message, "Total: 1000.00")
		case <-time.After(2 * time.Second):
			t.Fatal("notification was never dispatched")
		}
	})

	t.Run("Delivery failure does not fail the checkout", func(t *testing.T) {
		notifier.SetTestSender(func(subject, body string) error {
			return fmt.Errorf("smtp down")
		})

		cl := newStoreClient(router)
		cl.postAsync(fmt.Sprintf("/cart/add/%d/", cake.ID), nil)

		form := validOrderForm()
		form.Set("customer_name", "Mail Down")
		recorder := cl.postForm("/cart/order/", form)

		assert.Equal(t, http.StatusSeeOther, recorder.Code)

		var count int64
		testDB.Model(&models.Order{}).Where("customer_name = ?", "Mail Down").Count(&count)
		assert.Equal(t, int64(1), count)
	})
}

func TestOrderPage(t *testing.T) {

	router, testDB := setupStoreTestRouter(t)
	cake, _, _ := seedCatalog(t, testDB)

	t.Run("Redirects to the cart when it is empty", func(t *testing.T) {
		cl := newStoreClient(router)
		recorder := cl.get("/cart/order/")

		assert.Equal(t, http.StatusSeeOther, recorder.Code)
		assert.Equal(t, "/cart/", recorder.Header().Get("Location"))
	})

	t.Run("Renders the checkout form over the cart", func(t *testing.T) {
		cl := newStoreClient(router)
		cl.postAsync(fmt.Sprintf("/cart/add/%d/", cake.ID), quantityForm("2"))

		recorder := cl.get("/cart/order/")

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Honey cake")
		assert.Contains(t, recorder.Body.String(), "customer_name")
	})
}
