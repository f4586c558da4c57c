// @title Seren Community Forum API
// @version 1.0
// @description Real-time community forum backend: CRUD over HTTP, live fan-out over websocket.
// @host localhost:3000
// @BasePath /

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/ridglejessica55-prog/seren/bootstrap"
	"github.com/ridglejessica55-prog/seren/config"
	"github.com/ridglejessica55-prog/seren/database"
	"github.com/ridglejessica55-prog/seren/internal/bridge"
	"github.com/ridglejessica55-prog/seren/internal/controllers"
	"github.com/ridglejessica55-prog/seren/internal/hub"
	"github.com/ridglejessica55-prog/seren/internal/routes"
	"github.com/ridglejessica55-prog/seren/internal/store"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Storage backend
	st := openStore(cfg)

	// Fan-out hub; handlers publish, websocket clients and the MQTT
	// bridge subscribe.
	h := hub.New(nil)

	// Fiber app
	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Health
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	// Routes
	forum := &controllers.ForumHandler{Store: st, Hub: h, WriteTimeout: cfg.WriteTimeout}
	stream := &controllers.StreamHandler{Hub: h}
	routes.ForumRoutes(app, forum)
	routes.StreamRoutes(app, stream)

	// Optional MQTT event bridge
	var mqttBridge *bridge.Bridge
	if cfg.MQTTBroker != "" {
		mqttBridge = bridge.New(bridge.Config{
			Broker:      cfg.MQTTBroker,
			Username:    cfg.MQTTUsername,
			Password:    cfg.MQTTPassword,
			TopicPrefix: cfg.MQTTTopicPrefix,
		}, h)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := mqttBridge.Start(ctx)
		cancel()
		if err != nil {
			log.Fatalf("mqtt bridge: %v", err)
		}
	}

	// Shut down on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	// RUN SERVER
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}

	// Drain the bridge before the hub closes its subscription, then
	// release the store.
	if mqttBridge != nil {
		mqttBridge.Stop()
	}
	h.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := st.Close(ctx); err != nil {
		log.Printf("store close: %v", err)
	}
}

// openStore builds the configured storage backend.
func openStore(cfg config.Config) store.Store {
	switch cfg.StoreDriver {
	case "mongo":
		client := database.ConnectMongo(cfg.MongoURI)
		if err := bootstrap.EnsureForumIndexes(client.Database(cfg.MongoDB)); err != nil {
			log.Fatalf("ensure indexes failed: %v", err)
		}
		return store.NewMongoStore(client, cfg.MongoDB)
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		st, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("postgres store: %v", err)
		}
		return st
	case "memory":
		log.Println("using in-memory store, data will not survive restarts")
		return store.NewMemoryStore()
	default:
		log.Fatalf("unknown STORE_DRIVER %q", cfg.StoreDriver)
		return nil
	}
}
