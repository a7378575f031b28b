package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"readrover/internal/models"
	"readrover/internal/repository"
	"readrover/internal/service"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers     int
	BooksPerUser int
	ShouldClean  bool
	SkipBcrypt   bool
}

// Seeder populates the database with demo data. It drives the real service
// layer rather than writing rows directly, so seeded activities carry the
// same visibility sets the API would produce.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	rng     *rand.Rand

	friends    *service.FriendService
	books      *service.BookService
	activities *service.ActivityService
}

// NewSeeder creates a Seeder over the given database connection.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	bookRepo := repository.NewBookRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Seeded actions write the notification log synchronously instead of
	// going through the async dispatcher, so the seeder exits cleanly.
	notify := func(ctx context.Context, userID uint, kind models.NotificationKind, content string) {
		_ = notificationRepo.Create(ctx, &models.Notification{
			UserID:  userID,
			Kind:    kind,
			Content: content,
		})
	}

	return &Seeder{
		db:         db,
		factory:    NewFactory(db, opts),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		friends:    service.NewFriendService(friendRepo, userRepo, activityRepo, notify),
		books:      service.NewBookService(bookRepo, activityRepo, friendRepo, reviewRepo),
		activities: service.NewActivityService(activityRepo, userRepo, notify),
	}
}

// ClearAll removes all seeded data. Table order respects foreign keys.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	tables := []string{
		"replies", "comments", "activity_visibilities", "activities",
		"notifications", "reviews", "friendships", "books", "users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// SeedReaders creates n users and links them into a friendship mesh. Each
// user befriends a handful of earlier users, so the graph is connected but
// uneven, like a real social graph.
func (s *Seeder) SeedReaders(ctx context.Context, n int) ([]*models.User, error) {
	log.Printf("Seeding %d readers...", n)
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	for i, user := range users {
		if i == 0 {
			continue
		}
		friendCount := s.rng.Intn(4) + 1
		for j := 0; j < friendCount; j++ {
			other := users[s.rng.Intn(i)]
			_, err := s.friends.AddFriendDirect(ctx, user.ID, other.ID)
			if err != nil && !isExpectedSeedError(err) {
				return nil, fmt.Errorf("befriend %d->%d: %w", user.ID, other.ID, err)
			}
		}
	}
	return users, nil
}

// SeedReading gives every user a catalog and walks a random subset of each
// catalog through the reading lifecycle: started, progress updates, and for
// some books a finish plus review.
func (s *Seeder) SeedReading(ctx context.Context, users []*models.User, booksPerUser int) error {
	log.Printf("Seeding %d books per reader...", booksPerUser)
	for _, user := range users {
		for i := 0; i < booksPerUser; i++ {
			built := s.factory.BuildBook(user)
			book, err := s.books.AddBook(ctx, user.ID, service.AddBookInput{
				GoogleBooksID: built.GoogleBooksID,
				Title:         built.Title,
				Authors:       built.Authors,
				Thumbnail:     built.Thumbnail,
				PageCount:     built.PageCount,
			})
			if err != nil {
				return fmt.Errorf("add book for user %d: %w", user.ID, err)
			}

			// Roughly half the catalog stays untouched backlog
			if s.rng.Intn(2) == 0 {
				continue
			}

			if _, err := s.books.MarkAsReading(ctx, user.ID, book.ID); err != nil {
				return err
			}
			pages := s.rng.Intn(book.PageCount/2) + 1
			if _, err := s.books.UpdateProgress(ctx, user.ID, book.ID, pages, s.factory.ReadingNote()); err != nil {
				return err
			}

			if s.rng.Intn(3) == 0 {
				if _, err := s.books.FinishBook(ctx, user.ID, book.ID); err != nil {
					return err
				}
				_, err := s.books.AddReview(ctx, service.AddReviewInput{
					BookID:  book.ID,
					UserID:  user.ID,
					Rating:  s.rng.Intn(5) + 1,
					Content: s.factory.ReviewText(),
				})
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// SeedConversations adds comments and replies to activities each user can
// already see, threading discussion through the feeds.
func (s *Seeder) SeedConversations(ctx context.Context, users []*models.User) error {
	log.Println("Seeding feed conversations...")
	for _, user := range users {
		feed, err := s.activities.Feed(ctx, user.ID)
		if err != nil {
			return err
		}
		for _, activity := range feed {
			if activity.UserID == user.ID || s.rng.Intn(4) != 0 {
				continue
			}
			updated, err := s.activities.AddComment(ctx, service.AddCommentInput{
				ActivityID: activity.ID,
				AuthorID:   user.ID,
				Content:    s.factory.ReadingNote(),
			})
			if err != nil {
				return err
			}
			if len(updated.Comments) > 0 && s.rng.Intn(2) == 0 {
				_, err := s.activities.AddReply(ctx, service.AddReplyInput{
					ActivityID: activity.ID,
					CommentID:  updated.Comments[0].ID,
					AuthorID:   activity.UserID,
					Content:    s.factory.ReadingNote(),
				})
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Run executes the full seeding pass.
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.SeedReaders(ctx, opts.NumUsers)
	if err != nil {
		return err
	}
	if err := s.SeedReading(ctx, users, opts.BooksPerUser); err != nil {
		return err
	}
	return s.SeedConversations(ctx, users)
}

// isExpectedSeedError filters collisions the random mesh naturally produces.
func isExpectedSeedError(err error) bool {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == models.CodeAlreadyFriends || appErr.Code == models.CodeValidation
}
