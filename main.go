package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"peachme/api-gateway/config"
	"peachme/api-gateway/handlers"
	"peachme/api-gateway/internal/pitchapi"
	"peachme/api-gateway/internal/session"
	"peachme/api-gateway/internal/store"
	"peachme/api-gateway/middleware"
)

func main() {
	logger := config.InitLogger()
	cfg := config.Load()

	var st store.Store
	if cfg.UseSupabase() {
		supabaseStore, err := store.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			logger.Fatalf("Failed to initialize Supabase store: %v", err)
		}
		st = supabaseStore
		logger.Info("Using Supabase session store")
	} else {
		fileStore, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			logger.Fatalf("Failed to initialize file store: %v", err)
		}
		st = fileStore
		logger.WithField("dir", cfg.DataDir).Info("Using file session store")
	}

	sess := session.Load(st, logger)
	pitch := pitchapi.New(cfg.PitchAPIBase, logger)
	h := handlers.NewApplicationHandler(pitch, logger, st, sess)

	app := fiber.New(fiber.Config{
		// Uploads carry whole pitch videos.
		BodyLimit: 512 * 1024 * 1024,
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*", // Allow all origins for development
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RequestLogger(logger))

	// Health check route
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "API Gateway is healthy",
		})
	})

	// API v1 routes
	apiV1 := app.Group("/api/v1")

	// Pitch routes
	apiV1.Post("/pitches/upload", h.UploadPitch)
	apiV1.Post("/pitches/analyze", h.AnalyzePitch)

	// Transcription routes
	apiV1.Get("/transcriptions/latest", h.GetLatestTranscription)
	apiV1.Put("/transcriptions/latest/segments/:index", h.EditSegment)
	apiV1.Delete("/transcriptions/latest/edits", h.ResetEdits)

	// Evaluation and research routes
	apiV1.Get("/evaluations/latest", h.GetLatestEvaluation)
	apiV1.Post("/market-research", h.RunMarketResearch)
	apiV1.Get("/market-research/latest", h.GetLatestMarketResearch)
	apiV1.Post("/pitch-deck", h.GeneratePitchDeck)

	// Auth routes
	apiV1.Post("/auth/signup", h.SignUp)
	apiV1.Post("/auth/signin", h.SignIn)
	apiV1.Post("/auth/signout", h.SignOut)
	apiV1.Get("/auth/me", h.CurrentUser)

	logger.Infof("Starting API Gateway on port %s...", cfg.Port)
	logger.Fatal(app.Listen(":" + cfg.Port))
}
