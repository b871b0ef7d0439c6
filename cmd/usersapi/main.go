// usersapi serves a users collection over REST, backed by Redis. It is the
// collection the users screen talks to when run against a local server.
package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"rollcall-users/config"
	"rollcall-users/db"
	"rollcall-users/handlers"
	"rollcall-users/models"
)

func main() {
	if err := config.LoadDotenv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}

	ctx := context.Background()

	// Initialize Redis Client
	redisClient, err := db.InitializeRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer redisClient.Close()

	// Create Redis Service
	redisService := db.NewRedisService(redisClient)

	if cfg.Seed {
		checkAndSeedData(ctx, redisService)
	}

	// Create API Handler (injecting the service)
	apiHandler := handlers.NewAPIHandler(redisService)

	router := gin.Default()
	handlers.RegisterRoutes(router, apiHandler)

	log.Printf("Starting server on %s", cfg.Addr)
	if err := router.Run(cfg.Addr); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

// checkAndSeedData adds demo users when the store is empty.
func checkAndSeedData(ctx context.Context, s *db.RedisService) {
	count, err := s.CountUsers(ctx)
	if err != nil {
		log.Printf("Warning: could not check for existing users: %v. Skipping seed data.", err)
		return
	}
	if count > 0 {
		log.Printf("Found %d existing users. Skipping seed data.", count)
		return
	}

	log.Println("No users found. Adding seed data...")
	seed := []models.Draft{
		{FullName: "Ann Lee", StudentID: "ST12345678", ClassName: "10A"},
		{FullName: "Bob Tran", StudentID: "ST00000000", ClassName: "9B"},
	}
	for _, d := range seed {
		if _, err := s.AddUser(ctx, d); err != nil {
			log.Printf("Error adding seed user %s: %v", d.FullName, err)
		}
	}
	log.Println("Seed data added.")
}
