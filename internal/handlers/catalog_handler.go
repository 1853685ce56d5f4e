package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/Maks-am-I/marinaBr/internal/cart"
	"github.com/Maks-am-I/marinaBr/internal/db"
	"github.com/Maks-am-I/marinaBr/internal/models"
	"github.com/Maks-am-I/marinaBr/internal/notifier"
)

type ContactForm struct {
	Name     string `form:"name" binding:"required"`
	Phone    string `form:"phone" binding:"required"`
	Question string `form:"question"`
}

// Index renders the storefront landing page: categories (shortest
// titles first, which is how the layout wants them), published
// products and published ready solutions.
func Index(c *gin.Context) {
	sess := sessions.Default(c)

	data, err := indexPageData(sess)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load catalog"})
		return
	}

	c.HTML(http.StatusOK, "index.html", data)
}

// Contact handles the inline question form on the landing page. The
// operator is notified off the request path; the shopper just gets a
// flash either way.
func Contact(c *gin.Context) {
	sess := sessions.Default(c)

	var form ContactForm
	if err := c.ShouldBind(&form); err != nil {
		data, derr := indexPageData(sess)
		if derr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load catalog"})
			return
		}
		data["ContactError"] = "Name and phone are required"
		data["ContactForm"] = form
		c.HTML(http.StatusOK, "index.html", data)
		return
	}

	go notifier.NotifyContact(form.Name, form.Phone, form.Question)

	setFlash(sess, "Thank you! We will get back to you shortly.")
	c.Redirect(http.StatusSeeOther, "/")
}

func indexPageData(sess sessions.Session) (gin.H, error) {
	var categories []models.Category
	if err := db.DB.Order("length(title)").Find(&categories).Error; err != nil {
		return nil, err
	}

	var products []models.Product
	if err := db.DB.Where("is_published = ?", true).Order("id").Find(&products).Error; err != nil {
		return nil, err
	}

	var solutions []models.ReadySolution
	if err := db.DB.Where("is_published = ?", true).Order("persons_count, id").Find(&solutions).Error; err != nil {
		return nil, err
	}

	ct := cart.FromSession(sess)

	return gin.H{
		"Categories": categories,
		"Products":   products,
		"Solutions":  solutions,
		"CartTotal":  ct.TotalQuantity(),
		"Flash":      takeFlash(sess),
	}, nil
}
