// Command seed fills the database with generated or fixture recipe data.
package main

import (
	"context"
	"flag"
	"log"

	"recipebox/internal/bootstrap"
	"recipebox/internal/config"
	"recipebox/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numRecipes := flag.Int("recipes", 60, "Number of recipes to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixture := flag.String("fixture", "", "Apply a YAML fixture instead of generated data")
	seedValue := flag.Int64("seed", 0, "Random seed for generated data (0 picks one)")
	maxDays := flag.Int("days", 90, "How many days back seeded timestamps start")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	opts := seed.Options{
		NumUsers:    *numUsers,
		NumRecipes:  *numRecipes,
		ShouldClean: *shouldClean,
		MaxDays:     *maxDays,
		Seed:        *seedValue,
	}

	if *fixture != "" {
		fx, err := seed.LoadFixture(*fixture)
		if err != nil {
			log.Fatalf("Fixture load failed: %v", err)
		}
		if *shouldClean {
			if err := seed.ClearData(ctx, db); err != nil {
				log.Fatalf("Cleanup failed: %v", err)
			}
		}
		sum, err := seed.NewSeeder(db, opts).ApplyFixture(ctx, fx)
		if err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
		log.Printf("fixture applied: %d users, %d recipes, %d comments, %d favorites", sum.Users, sum.Recipes, sum.Comments, sum.Favorites)
		return
	}

	sum, err := seed.Seed(ctx, db, opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("seeded: %d users, %d recipes, %d comments, %d favorites", sum.Users, sum.Recipes, sum.Comments, sum.Favorites)
}
