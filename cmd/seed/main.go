// Command seed runs the database seeder for ReadRover.
package main

import (
	"context"
	"flag"
	"log"

	"readrover/internal/config"
	"readrover/internal/database"
	"readrover/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of readers to create")
	booksPerUser := flag.Int("books", 5, "Number of books per reader")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipBcrypt := flag.Bool("fast", false, "Skip bcrypt hashing for faster seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d readers, %d books each, clean=%v\n", *numUsers, *booksPerUser, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.Options{
		NumUsers:     *numUsers,
		BooksPerUser: *booksPerUser,
		ShouldClean:  *shouldClean,
		SkipBcrypt:   *skipBcrypt,
	}
	s := seed.NewSeeder(db, opts)
	if err := s.Run(context.Background(), opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! The database is populated with demo readers.")
	log.Println("All seeded users have the password: password123")
}
