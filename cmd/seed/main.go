// Command main runs the database seeder for linkshelf.
package main

import (
	"context"
	"flag"
	"log"

	"linkshelf/internal/config"
	"linkshelf/internal/database"
	"linkshelf/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 5, "Number of users to create")
	numLinks := flag.Int("links", 20, "Links per user")
	numPlaylists := flag.Int("playlists", 2, "Playlists per user")
	shouldClean := flag.Bool("clean", false, "Delete existing users, links and playlists first")
	password := flag.String("password", seed.DefaultPassword, "Password for every seeded user")
	fakeSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 = random)")
	flag.Parse()

	log.Printf("Target: %d users, %d links and %d playlists each, clean=%v",
		*numUsers, *numLinks, *numPlaylists, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	if _, err := seed.Seed(context.Background(), db, seed.Options{
		NumUsers:         *numUsers,
		LinksPerUser:     *numLinks,
		PlaylistsPerUser: *numPlaylists,
		Password:         *password,
		ShouldClean:      *shouldClean,
		Seed:             *fakeSeed,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("All done. Every seeded user has the password: %s", *password)
}
