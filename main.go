package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"gorm.io/gorm"

	"github.com/torvik/lumengallery/config"
	"github.com/torvik/lumengallery/database"
	"github.com/torvik/lumengallery/handlers"
	"github.com/torvik/lumengallery/models"
	"github.com/torvik/lumengallery/repository"
	"github.com/torvik/lumengallery/services"
	"github.com/torvik/lumengallery/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	dbDir := filepath.Dir(cfg.DatabasePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("FATAL: Failed to create database directory %s: %v", dbDir, err)
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database schema: %v", err)
	}
	log.Printf("Using database: %s", cfg.DatabasePath)

	faceRepo := repository.NewFaceRepository(db)
	personRepo := repository.NewPersonRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// seed the persisted threshold on first boot; later edits via the
	// settings table win over the environment value
	if _, err := settingRepo.Get(models.SettingFaceSimilarityThreshold); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seed := strconv.FormatFloat(cfg.SimilarityThreshold, 'f', -1, 64)
			if err := settingRepo.Set(models.SettingFaceSimilarityThreshold, seed); err != nil {
				log.Printf("Warning: failed to seed similarity threshold setting: %v", err)
			}
		} else {
			log.Printf("Warning: failed to read similarity threshold setting: %v", err)
		}
	}

	centroidService := services.NewCentroidService(faceRepo, personRepo, cfg.CentroidFaceCap)
	clusterService := services.NewClusterService(faceRepo, personRepo, settingRepo, centroidService, cfg.SimilarityThreshold)

	jobStore := workers.NewMemoryJobStore()
	jobRunner := workers.NewClusterJobRunner(clusterService, jobStore, cfg.BatchDelay)
	defer jobRunner.Stop()

	scheduler := gocron.NewScheduler(time.UTC)
	if cfg.CentroidRebuildInterval > 0 {
		_, err := scheduler.Every(cfg.CentroidRebuildInterval).Do(func() {
			updated, err := centroidService.RebuildAll(0)
			if err != nil {
				log.Printf("Scheduled centroid rebuild failed: %v", err)
				return
			}
			log.Printf("Scheduled centroid rebuild updated %d people", updated)
		})
		if err != nil {
			log.Fatalf("FATAL: Failed to schedule centroid rebuild: %v", err)
		}
		log.Printf("Centroid rebuild scheduled every %s", cfg.CentroidRebuildInterval)
	} else {
		log.Printf("Centroid rebuild schedule disabled")
	}
	scheduler.StartAsync()
	defer scheduler.Stop()

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	clusterHandler := &handlers.ClusterHandler{ClusterService: clusterService, JobRunner: jobRunner, FaceRepo: faceRepo}
	personHandler := &handlers.PersonHandler{PersonRepo: personRepo}
	faceHandler := &handlers.FaceHandler{FaceRepo: faceRepo, PersonRepo: personRepo, Centroids: centroidService}
	maintenanceHandler := &handlers.MaintenanceHandler{Centroids: centroidService}

	r.Route("/api", func(r chi.Router) {
		r.Route("/people", func(r chi.Router) {
			r.Post("/", personHandler.CreatePerson)
			r.Get("/", personHandler.ListPeople)
			r.Route("/{person_id}", func(r chi.Router) {
				r.Get("/", personHandler.GetPerson)
				r.Put("/", personHandler.UpdatePerson)
				r.Delete("/", personHandler.DeletePerson)
			})
		})

		r.Route("/faces", func(r chi.Router) {
			r.Post("/cluster", clusterHandler.Run)
			r.Route("/cluster/jobs/{job_id}", func(r chi.Router) {
				r.Get("/", clusterHandler.GetJobProgress)
				r.Post("/cancel", clusterHandler.CancelJob)
			})
			r.Post("/bulk-disable", clusterHandler.BulkDisableFaces)
			r.Route("/{face_id}", func(r chi.Router) {
				r.Get("/", faceHandler.GetFace)
				r.Post("/tag", faceHandler.TagFace)
				r.Post("/untag", faceHandler.UntagFace)
				r.Post("/ignore", faceHandler.IgnoreFace)
			})
		})

		r.Route("/maintenance", func(r chi.Router) {
			r.Post("/centroids/rebuild", maintenanceHandler.RebuildCentroids)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
