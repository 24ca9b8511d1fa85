package server

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/postpilothq/postpilot/generator"
	"github.com/postpilothq/postpilot/imagegen"
	"github.com/postpilothq/postpilot/news"
	"github.com/postpilothq/postpilot/publisher"
	"github.com/postpilothq/postpilot/utils"
	"gorm.io/gorm"
)

// validate checks workflow inputs after preference defaults are merged in,
// gin's binding tags only cover the raw request body.
var validate = validator.New()

// APIServer wires every workflow component behind the HTTP surface.
type APIServer struct {
	DB        *gorm.DB
	Generator *generator.Generator
	Persister *generator.Persister
	Images    *imagegen.ImageGenerator
	Publisher *publisher.Publisher
	News      *news.Fetcher
}

func NewAPIServer(
	db *gorm.DB,
	gen *generator.Generator,
	persister *generator.Persister,
	images *imagegen.ImageGenerator,
	pub *publisher.Publisher,
	fetcher *news.Fetcher,
) *APIServer {
	return &APIServer{
		DB:        db,
		Generator: gen,
		Persister: persister,
		Images:    images,
		Publisher: pub,
		News:      fetcher,
	}
}

// RegisterRoutes attaches every endpoint under /api. 405 handling for wrong
// methods is enabled on the router in main.
func (s *APIServer) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")

	api.POST("/generate", s.HandleGenerate)
	api.POST("/images", s.HandleGenerateImage)
	api.POST("/publish", s.HandlePublish)
	api.POST("/news/refresh", s.HandleNewsRefresh)

	api.GET("/posts", s.HandleListPosts)
	api.GET("/posts/:id", s.HandleGetPost)
	api.PUT("/posts/:id", s.HandleUpdatePost)
	api.POST("/posts/:id/revisions", s.HandleRevisePost)
	api.DELETE("/posts/:id", s.HandleDeletePost)
	api.PUT("/posts/:id/schedule", s.HandleSchedulePost)

	api.GET("/preferences", s.HandleGetPreferences)
	api.PUT("/preferences", s.HandleUpdatePreferences)

	api.GET("/linkedin/connect", s.HandleLinkedInConnect)
	api.GET("/linkedin/callback", s.HandleLinkedInCallback)
	api.DELETE("/linkedin", s.HandleLinkedInDisconnect)
}

// userID reads the verified subject stamped by the session middleware.
func userID(c *gin.Context) string {
	return c.Request.Header.Get("sub")
}

// abortWithError maps a workflow error onto the response contract:
// {"error": message} with a taxonomy-derived status code.
func abortWithError(c *gin.Context, err error) {
	c.JSON(utils.HttpStatusFromError(err), gin.H{"error": err.Error()})
}
