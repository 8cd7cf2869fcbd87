package main

import (
	"context"
	"log"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"memoria/internal/config"
	"memoria/internal/handler"
	"memoria/internal/middleware"
	"memoria/internal/repository"
	"memoria/internal/service"
	"memoria/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	ctx := context.Background()

	db, err := config.NewDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := repository.InitSchema(ctx, db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = config.NewRedisClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v (post cache disabled)", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	uploads := cfg.Uploads()
	store, err := newFileStore(cfg, uploads)
	if err != nil {
		log.Fatalf("Failed to open media store: %v", err)
	}

	stager := storage.NewStager(store, uploads)
	if err := stager.Init(ctx); err != nil {
		log.Fatalf("Failed to prepare media directories: %v", err)
	}
	if residue, err := stager.Residue(ctx); err != nil {
		log.Printf("Warning: Failed to inspect %s: %v", uploads.TmpDir, err)
	} else if len(residue) > 0 {
		log.Printf("Warning: %d staging session(s) left in %s from an interrupted operation: %v", len(residue), uploads.TmpDir, residue)
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, stager, redisClient, cfg)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    int(cfg.MaxVideoSize + 64<<20),
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, OPTIONS",
	}))

	if cfg.StorageDriver != "minio" {
		app.Static("/media/"+uploads.ImagesDir, filepath.Join(uploads.Root, uploads.ImagesDir))
		app.Static("/media/"+uploads.VideosDir, filepath.Join(uploads.Root, uploads.VideosDir), fiber.Static{ByteRange: true})
	}

	setupRoutes(app, handlers)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newFileStore(cfg *config.Config, uploads config.UploadsConfig) (storage.FileStore, error) {
	if cfg.StorageDriver == "minio" {
		client, err := config.NewMinIOClient(cfg)
		if err != nil {
			return nil, err
		}
		return storage.NewMinIO(client, cfg.MinIOBucket), nil
	}
	local, err := storage.NewLocal(uploads.Root)
	if err != nil {
		return nil, err
	}
	return local, nil
}

func setupRoutes(app *fiber.App, h *handler.Handlers) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	posts := v1.Group("/posts")
	posts.Post("/", h.Post.Create)
	posts.Get("/:postId", h.Post.Get)
	posts.Put("/:postId", h.Post.Update)
	posts.Get("/:postId/history", h.Post.History)

	albums := v1.Group("/albums")
	albums.Get("/", h.Album.List)
}
