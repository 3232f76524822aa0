package router

import (
	"net/url"

	"budget/api"
	"budget/config"
	"budget/docs"
	"budget/middleware"
	"budget/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, l *service.Ledger) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()
	r.Use(CORSMiddleware())

	// Swagger 文档
	setSwaggerHost(cfg.Server.BaseURL)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth())
	v1.Use(middleware.RateLimit(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window()))
	{
		categoryHandler := api.NewCategoryHandler(l)
		categories := v1.Group("/categories")
		{
			categories.GET("", categoryHandler.List)
			categories.POST("", categoryHandler.Create)
			categories.PUT("/:id", categoryHandler.Rename)
			categories.POST("/:id/move", categoryHandler.Move)
			categories.POST("/:id/archive", categoryHandler.Archive)
			categories.POST("/:id/restore", categoryHandler.Restore)
		}

		accountHandler := api.NewAccountHandler(l)
		accounts := v1.Group("/accounts")
		{
			accounts.GET("", accountHandler.List)
			accounts.POST("", accountHandler.Create)
			accounts.PUT("/:id", accountHandler.Update)
			accounts.GET("/:id/balance", accountHandler.Balance)
			accounts.POST("/:id/archive", accountHandler.Archive)
		}

		transactionHandler := api.NewTransactionHandler(l)
		transactions := v1.Group("/transactions")
		{
			transactions.GET("", transactionHandler.List)
			transactions.POST("", transactionHandler.Create)
			transactions.PUT("/:id", transactionHandler.Update)
			transactions.DELETE("/:id", transactionHandler.Delete)
		}

		budgetHandler := api.NewBudgetHandler(l)
		budgets := v1.Group("/budgets")
		{
			budgets.GET("", budgetHandler.List)
			budgets.PUT("", budgetHandler.Upsert)
			budgets.POST("/publish-forward", budgetHandler.PublishForward)
			budgets.POST("/publish-forward-all", budgetHandler.PublishForwardAll)
		}

		forecastHandler := api.NewForecastHandler(l)
		v1.GET("/forecast/:year", forecastHandler.Get)
		v1.GET("/forecast/:year/export", forecastHandler.Export)
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// setSwaggerHost 文档中的 host 与 scheme 取自 server.base_url，解析失败时保持默认
func setSwaggerHost(baseURL string) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return
	}
	docs.SwaggerInfo.Host = u.Host
	if u.Scheme != "" {
		docs.SwaggerInfo.Schemes = []string{u.Scheme}
	}
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
