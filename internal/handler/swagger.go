package handler

import (
	"github.com/gin-gonic/gin"
)

// AddSwaggerRoutes публикует статическую Swagger-документацию API
func AddSwaggerRoutes(router *gin.Engine) {
	router.StaticFile("/docs", "./docs/swagger-ui.html")
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")

	// Also serve at /swagger.json for compatibility
	router.GET("/swagger.json", func(c *gin.Context) {
		c.File("./docs/swagger.json")
	})
}
