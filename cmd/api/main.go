package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	cacheadapter "github.com/FordLabs/retroquest-sub000/internal/infrastructure/cache/adapter"
	cacheport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/cache/port"
	"github.com/FordLabs/retroquest-sub000/internal/infrastructure/database"
	"github.com/FordLabs/retroquest-sub000/internal/infrastructure/email"
	queueadapter "github.com/FordLabs/retroquest-sub000/internal/infrastructure/queue/adapter"
	queueport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/queue/port"
	"github.com/FordLabs/retroquest-sub000/internal/infrastructure/realtime"
	"github.com/FordLabs/retroquest-sub000/internal/pkg/retro/application/task"
	v1 "github.com/FordLabs/retroquest-sub000/cmd/api/router/v1"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// Connect to the database on startup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Redis-backed pieces are optional: without REDIS_URL the API serves
	// straight from Postgres and skips the summary mail.
	var cache cacheport.Cache
	var queue queueport.Client
	var worker *queueadapter.AsynqServer
	if os.Getenv("REDIS_URL") != "" {
		redisCache, err := cacheadapter.NewRedisAdapter()
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisCache.Close()
		cache = redisCache

		asynqClient, err := queueadapter.NewAsynqClientFromEnv()
		if err != nil {
			log.Fatalf("failed to create queue client: %v", err)
		}
		defer asynqClient.Close()
		queue = asynqClient

		sender := email.NewSenderFromEnv()
		if sender.Configured() {
			worker, err = queueadapter.NewAsynqServer()
			if err != nil {
				log.Fatalf("failed to create queue server: %v", err)
			}
			task.RegisterRetroSummaryTask(worker, sender)
			if err := worker.Run(context.Background()); err != nil {
				log.Fatalf("failed to start queue server: %v", err)
			}
		} else {
			log.Print("SMTP not configured, retro summary mails disabled")
		}
	} else {
		log.Print("REDIS_URL not set, running without cache and summary queue")
	}

	hub := realtime.NewHub()
	defer hub.Close()

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	v1.RegisterRoutes(r, pool, cache, queue, hub)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()
	log.Printf("listening on %s", addr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if worker != nil {
		if err := worker.Stop(shutdownCtx); err != nil {
			log.Printf("queue shutdown: %v", err)
		}
	}
}
