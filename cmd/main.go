package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/opsdeck/netops-go-backend/internal/assistant"
	"github.com/opsdeck/netops-go-backend/internal/db"
	"github.com/opsdeck/netops-go-backend/internal/handlers"
	"github.com/opsdeck/netops-go-backend/internal/store"
)

func main() {
	db.InitMongo()
	db.InitRedis()

	requests := store.New(db.GetCollection("requests"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := requests.EnsureIndexes(ctx); err != nil {
		log.Fatal(err)
	}
	cancel()

	answerer := assistant.NewService(requests, db.RedisClient, assistant.FromEnv())

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "X-Requested-With", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handlers.New(requests, answerer).RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}

func corsOrigins() []string {
	raw := os.Getenv("CORS_ORIGINS")
	if raw == "" {
		return []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	origins := []string{}
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
