package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/stagelink/artist-venue-booking/internal/config"
	"github.com/stagelink/artist-venue-booking/internal/database"
	"github.com/stagelink/artist-venue-booking/internal/handler"
	"github.com/stagelink/artist-venue-booking/internal/middleware"
	"github.com/stagelink/artist-venue-booking/internal/queue"
	"github.com/stagelink/artist-venue-booking/internal/repository"
	"github.com/stagelink/artist-venue-booking/internal/router"
	queuepublisher "github.com/stagelink/artist-venue-booking/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the rate limiter and the public
	// browse cache pass requests straight through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	artists := repository.NewArtistRepo(db)
	riders := repository.NewRiderRepo(db)
	bookings := repository.NewBookingRepo(db)
	acks := repository.NewAckRepo(db)
	contracts := repository.NewContractRepo(db)

	notifier := queuepublisher.NewPublisher(cfg.AMQPURL)
	go func() {
		if err := queue.StartNotificationConsumer(cfg.AMQPURL); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	authH := handler.NewAuthHandler(cfg, users, tokens)
	artistH := handler.NewArtistHandler(artists)
	publicH := &handler.PublicHandler{Artists: artists}
	riderH := handler.NewRiderHandler(riders)
	bookingH := handler.NewBookingHandler(bookings, artists, riders, notifier)
	ackH := handler.NewAckHandler(acks, bookings, riders, notifier)
	contractH := handler.NewContractHandler(contracts, bookings, riders, artists, users, notifier)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterArtist(e, artistH, riderH, ackH, cfg.JWTSecret)
	router.RegisterVenue(e, bookingH, cfg.JWTSecret)
	router.RegisterWorkflow(e, bookingH, ackH, contractH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
