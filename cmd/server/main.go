package main

import (
	"log"

	"github.com/alanmaizon/qalam/internal/api"
	"github.com/alanmaizon/qalam/internal/config"
	"github.com/alanmaizon/qalam/internal/executor"
	"github.com/alanmaizon/qalam/internal/llm"
	"github.com/alanmaizon/qalam/internal/middleware"
	"github.com/alanmaizon/qalam/internal/settings"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	store, err := settings.OpenFileStore(config.SettingsPath())
	if err != nil {
		log.Fatalf("failed to open settings: %v", err)
	}
	defer store.Close()
	if err := store.Watch(); err != nil {
		log.Printf("request_id=- component=settings event=watch_disabled error=%q", err.Error())
	}

	cfg := config.Load(store)
	llm.SetGenerator(llm.NewGenerator(cfg.LLM))
	store.OnChange(func(settings.Values) {
		llm.SetGenerator(llm.NewGenerator(config.Load(store).LLM))
	})
	log.Printf(
		"request_id=- component=server event=start provider=%s active_provider=%s ai_enabled=%t settings=%s",
		cfg.LLM.RequestedProvider(),
		llm.CurrentGenerator().Name(),
		cfg.AIEnabled(),
		store.Path(),
	)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost",
		},
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"X-Request-Id",
			"X-Keyboard-Session",
		},
	}))

	api.RegisterRoutes(router, api.Dependencies{
		Executors: executor.NewRegistry(executor.Options{Policy: config.PolicySource(store)}),
		Settings:  store,
	})

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("failed to start server on port %s: %v", cfg.Port, err)
	}
}
