package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	config "github.com/Maks-am-I/marinaBr/configs"
	"github.com/Maks-am-I/marinaBr/internal/db"
	"github.com/Maks-am-I/marinaBr/internal/handlers"
)

func main() {

	_ = godotenv.Load()

	cfg := config.LoadAppConfig()

	db.Init()

	r := gin.Default()
	r.LoadHTMLGlob("templates/*.html")

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions(cfg.SessionName, store))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

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

	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
