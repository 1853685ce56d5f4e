package handlers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Maks-am-I/marinaBr/internal/db"
	"github.com/Maks-am-I/marinaBr/internal/handlers"
	"github.com/Maks-am-I/marinaBr/internal/models"
	"github.com/Maks-am-I/marinaBr/internal/notifier"
)

func setupStoreTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	// Named in-memory SQLite DB so the pooled connections all see the
	// same data within a test.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}

	if err := db.Migrate(testDB); err != nil {
		t.Fatalf("failed to auto-migrate models: %v", err)
	}

	originalDB := db.DB
	db.SetTestDB(testDB)

	// Never touch SES from tests.
	notifier.SetTestSender(func(subject, body string) error { return nil })

	r := gin.New()
	r.Use(gin.Recovery())
	r.LoadHTMLGlob("../../templates/*.html")

	store := cookie.NewStore([]byte("test-secret-key"))
	r.Use(sessions.Sessions("bakerysess", store))

	r.GET("/", handlers.Index)
	r.POST("/", handlers.Contact)
	cartGroup := r.Group("/cart")
	{
		cartGroup.GET("/", handlers.CartPage)
		cartGroup.POST("/add/:id/", handlers.AddProduct)
		cartGroup.POST("/add-solution/:id/", handlers.AddSolution)
		cartGroup.POST("/remove/:id/", handlers.RemoveProduct)
		cartGroup.POST("/remove-solution/:id/", handlers.RemoveSolution)
		cartGroup.POST("/update/:id/", handlers.UpdateProduct)
		cartGroup.POST("/update-solution/:id/", handlers.UpdateSolution)
		cartGroup.GET("/info/", handlers.CartInfo)
		cartGroup.GET("/order/", handlers.OrderPage)
		cartGroup.POST("/order/", handlers.CreateOrder)
	}

	t.Cleanup(func() {
		db.SetTestDB(originalDB)
	})

	return r, testDB
}

func seedCatalog(t *testing.T, testDB *gorm.DB) (models.Product, models.Product, models.ReadySolution) {
	category := models.Category{Title: "Cakes", Slug: "cakes"}
	if err := testDB.Create(&category).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	cake := models.Product{
		Title: "Honey cake", Slug: "honey-cake",
		Price:       decimal.NewFromInt(500),
		Ingredients: "flour;honey;sour cream",
		CategoryID:  category.ID, IsPublished: true,
	}
	pie := models.Product{
		Title: "Meat pie", Slug: "meat-pie",
		Price:      decimal.NewFromInt(350),
		CategoryID: category.ID, IsPublished: true,
	}
	testDB.Create(&cake)
	testDB.Create(&pie)

	banquet := models.ReadySolution{
		Title: "Banquet", Slug: "banquet",
		Price:        decimal.NewFromInt(3000),
		PersonsCount: 10, IsPublished: true,
	}
	testDB.Create(&banquet)

	return cake, pie, banquet
}

// storeClient drives the router like a browser, carrying the session
// cookie between requests.
type storeClient struct {
	router  *gin.Engine
	cookies map[string]string
}

func newStoreClient(router *gin.Engine) *storeClient {
	return &storeClient{router: router, cookies: map[string]string{}}
}

func (cl *storeClient) request(method, path string, form url.Values, async bool) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if async {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}
	for name, value := range cl.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	recorder := httptest.NewRecorder()
	cl.router.ServeHTTP(recorder, req)

	resp := http.Response{Header: recorder.Header()}
	for _, ck := range resp.Cookies() {
		cl.cookies[ck.Name] = ck.Value
	}

	return recorder
}

func (cl *storeClient) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	return cl.request(http.MethodPost, path, form, false)
}

func (cl *storeClient) postAsync(path string, form url.Values) *httptest.ResponseRecorder {
	return cl.request(http.MethodPost, path, form, true)
}

func (cl *storeClient) get(path string) *httptest.ResponseRecorder {
	return cl.request(http.MethodGet, path, nil, false)
}

func decodeJSON(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	var payload map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode JSON response %q: %v", recorder.Body.String(), err)
	}
	return payload
}

func quantityForm(quantity string) url.Values {
	return url.Values{"quantity": {quantity}}
}
