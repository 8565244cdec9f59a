// Command main runs the database seeder for MiniG+.
package main

import (
	"flag"
	"log"

	"minigplus/internal/config"
	"minigplus/internal/database"
	"minigplus/internal/seed"
)

func main() {
	numIdentities := flag.Int("identities", 25, "Number of identities to create")
	numPosts := flag.Int("posts", 120, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixture := flag.String("fixture", "", "Apply a YAML fixture instead of random data (overrides SEED_FIXTURE)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	fixturePath := *fixture
	if fixturePath == "" {
		fixturePath = cfg.SeedFixture
	}

	if fixturePath != "" {
		log.Printf("Applying fixture %s (ignoring other flags)", fixturePath)
		f, err := seed.LoadFixture(fixturePath)
		if err != nil {
			log.Fatalf("Fixture load failed: %v", err)
		}
		if err := f.Apply(db); err != nil {
			log.Fatalf("Fixture apply failed: %v", err)
		}
		log.Println("Fixture applied")
		return
	}

	if err := seed.Seed(db, seed.Options{
		NumIdentities: *numIdentities,
		NumPosts:      *numPosts,
		ShouldClean:   *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! Test identities share the password: password123")
}
