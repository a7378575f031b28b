package service

import (
	"context"
	"fmt"
	"time"

	"readrover/internal/models"
	"readrover/internal/repository"
)

// BookService provides catalog, reading progress and review business logic.
// Progress milestones fan out into the friend feed as activities.
type BookService struct {
	bookRepo     repository.BookRepository
	activityRepo repository.ActivityRepository
	friendRepo   repository.FriendRepository
	reviewRepo   repository.ReviewRepository
}

// AddBookInput carries the parameters for AddBook.
type AddBookInput struct {
	GoogleBooksID string   `json:"google_books_id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Thumbnail     string   `json:"thumbnail"`
	PageCount     int      `json:"page_count"`
}

// UpdateBookInput carries optional metadata edits; nil fields are left as-is.
type UpdateBookInput struct {
	Title     *string   `json:"title"`
	Authors   *[]string `json:"authors"`
	Thumbnail *string   `json:"thumbnail"`
	PageCount *int      `json:"page_count"`
}

// AddReviewInput carries the parameters for AddReview.
type AddReviewInput struct {
	BookID  uint
	UserID  uint
	Rating  int
	Content string
}

// NewBookService returns a new BookService.
func NewBookService(
	bookRepo repository.BookRepository,
	activityRepo repository.ActivityRepository,
	friendRepo repository.FriendRepository,
	reviewRepo repository.ReviewRepository,
) *BookService {
	return &BookService{
		bookRepo:     bookRepo,
		activityRepo: activityRepo,
		friendRepo:   friendRepo,
		reviewRepo:   reviewRepo,
	}
}

// AddBook adds a book to the user's catalog.
func (s *BookService) AddBook(ctx context.Context, userID uint, in AddBookInput) (*models.Book, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.GoogleBooksID == "" {
		return nil, models.NewValidationError("Google Books ID is required")
	}

	book := &models.Book{
		UserID:        userID,
		GoogleBooksID: in.GoogleBooksID,
		Title:         in.Title,
		Authors:       in.Authors,
		Thumbnail:     in.Thumbnail,
		PageCount:     in.PageCount,
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// GetBook returns one of the user's books.
func (s *BookService) GetBook(ctx context.Context, userID, bookID uint) (*models.Book, error) {
	return s.ownedBook(ctx, userID, bookID)
}

// GetByGoogleBooksID resolves a catalog entry by volume ID with its reviews.
func (s *BookService) GetByGoogleBooksID(ctx context.Context, googleBooksID string) (*models.Book, error) {
	return s.bookRepo.GetByGoogleBooksID(ctx, googleBooksID)
}

// ListBooks returns the user's catalog, newest first.
func (s *BookService) ListBooks(ctx context.Context, userID uint) ([]models.Book, error) {
	return s.bookRepo.ListByUser(ctx, userID)
}

// ListCurrentlyReading returns the books the user is currently reading.
func (s *BookService) ListCurrentlyReading(ctx context.Context, userID uint) ([]models.Book, error) {
	return s.bookRepo.ListCurrentlyReading(ctx, userID)
}

// DeleteBook removes a book from the user's catalog. Activities that
// reference the book are kept; the feed is append-only.
func (s *BookService) DeleteBook(ctx context.Context, userID, bookID uint) error {
	if _, err := s.ownedBook(ctx, userID, bookID); err != nil {
		return err
	}
	return s.bookRepo.Delete(ctx, bookID)
}

// UpdateBook edits catalog metadata on one of the caller's own books.
// Only provided fields change; reading state goes through the dedicated
// operations.
func (s *BookService) UpdateBook(ctx context.Context, userID, bookID uint, in UpdateBookInput) (*models.Book, error) {
	book, err := s.ownedBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		book.Title = *in.Title
	}
	if in.Authors != nil {
		book.Authors = *in.Authors
	}
	if in.Thumbnail != nil {
		book.Thumbnail = *in.Thumbnail
	}
	if in.PageCount != nil {
		if *in.PageCount < 0 {
			return nil, models.NewValidationError("Page count cannot be negative")
		}
		book.PageCount = *in.PageCount
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// MarkAsReading flags the book as currently reading and logs a started
// activity visible to the owner and their current friends.
func (s *BookService) MarkAsReading(ctx context.Context, userID, bookID uint) (*models.Book, error) {
	book, err := s.ownedBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if book.CurrentlyReading {
		return book, nil
	}

	book.CurrentlyReading = true
	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	if err := s.logActivity(ctx, &models.Activity{
		UserID:  userID,
		BookID:  bookID,
		Kind:    models.ActivityStarted,
		Content: fmt.Sprintf("started reading %s", book.Title),
	}); err != nil {
		return nil, err
	}
	return book, nil
}

// MarkAsNotReading clears the currently-reading flag without logging an
// activity.
func (s *BookService) MarkAsNotReading(ctx context.Context, userID, bookID uint) (*models.Book, error) {
	book, err := s.ownedBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	book.CurrentlyReading = false
	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateProgress records a progress update on one of the caller's own
// books and logs a progress activity.
func (s *BookService) UpdateProgress(ctx context.Context, userID, bookID uint, pagesRead int, note string) (*models.Book, error) {
	if pagesRead < 0 {
		return nil, models.NewValidationError("Pages read cannot be negative")
	}

	book, err := s.ownedBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	book.PagesRead = pagesRead
	if book.PageCount > 0 {
		book.Progress = pagesRead * 100 / book.PageCount
		if book.Progress > 100 {
			book.Progress = 100
		}
	}
	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	content := note
	if content == "" {
		content = fmt.Sprintf("is %d%% through %s", book.Progress, book.Title)
	}
	progress := book.Progress
	if err := s.logActivity(ctx, &models.Activity{
		UserID:   userID,
		BookID:   bookID,
		Kind:     models.ActivityProgress,
		Content:  content,
		Progress: &progress,
	}); err != nil {
		return nil, err
	}
	return book, nil
}

// FinishBook marks a book as finished, clears the currently-reading flag
// and logs a finished activity.
func (s *BookService) FinishBook(ctx context.Context, userID, bookID uint) (*models.Book, error) {
	book, err := s.ownedBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	book.FinishedAt = &now
	book.CurrentlyReading = false
	book.Progress = 100
	book.PagesRead = book.PageCount
	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	if err := s.logActivity(ctx, &models.Activity{
		UserID:  userID,
		BookID:  bookID,
		Kind:    models.ActivityFinished,
		Content: fmt.Sprintf("finished %s", book.Title),
	}); err != nil {
		return nil, err
	}
	return book, nil
}

// AddReview attaches a review to a book and folds the rating into the
// book's running average.
func (s *BookService) AddReview(ctx context.Context, in AddReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, models.NewValidationError("Rating must be between 1 and 5")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Review content is required")
	}

	if _, err := s.bookRepo.GetByID(ctx, in.BookID); err != nil {
		return nil, err
	}

	review := &models.Review{
		BookID:  in.BookID,
		UserID:  in.UserID,
		Rating:  in.Rating,
		Content: in.Content,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ListReviews returns the reviews for a book, newest first.
func (s *BookService) ListReviews(ctx context.Context, bookID uint) ([]models.Review, error) {
	return s.reviewRepo.ListByBook(ctx, bookID)
}

// ownedBook loads a book and verifies the caller owns it. A book owned by
// someone else is an authorization failure, not a lookup miss: the caller
// found a real ID but may not touch it.
func (s *BookService) ownedBook(ctx context.Context, userID, bookID uint) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.UserID != userID {
		return nil, models.NewUnauthorizedError("You do not own this book")
	}
	return book, nil
}

// logActivity creates a feed activity seeded with the owner's current
// friends. Friends added later are picked up by friendship propagation.
func (s *BookService) logActivity(ctx context.Context, activity *models.Activity) error {
	friendIDs, err := s.friendRepo.GetFriendIDs(ctx, activity.UserID)
	if err != nil {
		return err
	}
	return s.activityRepo.Create(ctx, activity, friendIDs)
}
