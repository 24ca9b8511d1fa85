package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/postpilothq/postpilot/clients"
	"github.com/postpilothq/postpilot/generator"
	"github.com/postpilothq/postpilot/imagegen"
	"github.com/postpilothq/postpilot/news"
	"github.com/postpilothq/postpilot/publisher"
	"github.com/postpilothq/postpilot/server"
	"github.com/postpilothq/postpilot/server/middlewares"
	. "github.com/postpilothq/postpilot/utils"
	"github.com/postpilothq/postpilot/utils/dotenv"
	. "github.com/postpilothq/postpilot/utils/flag"
	. "github.com/postpilothq/postpilot/utils/log"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

func cleanup() {
	CloseProfiler()
	CloseTracer()
	Log.Info("api server shutdown")
}

func main() {
	defer cleanup()
	ParseFlags()

	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	middlewares.Setup()

	db, err := GetDBConnection()
	if err != nil {
		Log.Fatal("fail to connect to database: ", err)
	}
	DatabaseSetupAndMigration(db)

	openAI := clients.NewOpenAIClient()
	stability := clients.NewStabilityClient()
	linkedIn := clients.NewLinkedInClient()
	newsClient := clients.NewNewsClient()

	fetcher := news.NewFetcher(db, newsClient, GetRedisClient())
	images := imagegen.NewImageGenerator(db, stability)
	api := server.NewAPIServer(
		db,
		generator.NewGenerator(openAI, fetcher),
		generator.NewPersister(db),
		images,
		publisher.NewPublisher(db, linkedIn, images),
		fetcher,
	)

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()
	router.HandleMethodNotAllowed = true

	router.Use(cors.Default())
	router.Use(gintrace.Middleware(ServiceName))
	if !ByPassAuth {
		router.Use(middlewares.Session())
	}

	api.RegisterRoutes(router)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	Log.Info("api server starts up")
	router.Run(":8080")
}
