package service

import (
	"context"
	"testing"

	"readrover/internal/models"
)

type bookRepoStub struct {
	createFn               func(context.Context, *models.Book) error
	getByIDFn              func(context.Context, uint) (*models.Book, error)
	getByGoogleBooksIDFn   func(context.Context, string) (*models.Book, error)
	listByUserFn           func(context.Context, uint) ([]models.Book, error)
	listCurrentlyReadingFn func(context.Context, uint) ([]models.Book, error)
	updateFn               func(context.Context, *models.Book) error
	deleteFn               func(context.Context, uint) error
}

func (s *bookRepoStub) Create(ctx context.Context, book *models.Book) error {
	return s.createFn(ctx, book)
}
func (s *bookRepoStub) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	return s.getByIDFn(ctx, id)
}
func (s *bookRepoStub) GetByGoogleBooksID(ctx context.Context, googleBooksID string) (*models.Book, error) {
	return s.getByGoogleBooksIDFn(ctx, googleBooksID)
}
func (s *bookRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.Book, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *bookRepoStub) ListCurrentlyReading(ctx context.Context, userID uint) ([]models.Book, error) {
	return s.listCurrentlyReadingFn(ctx, userID)
}
func (s *bookRepoStub) Update(ctx context.Context, book *models.Book) error {
	return s.updateFn(ctx, book)
}
func (s *bookRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

type reviewRepoStub struct {
	createFn     func(context.Context, *models.Review) error
	listByBookFn func(context.Context, uint) ([]models.Review, error)
}

func (s *reviewRepoStub) Create(ctx context.Context, review *models.Review) error {
	return s.createFn(ctx, review)
}
func (s *reviewRepoStub) ListByBook(ctx context.Context, bookID uint) ([]models.Review, error) {
	return s.listByBookFn(ctx, bookID)
}

func noopBookRepo() *bookRepoStub {
	return &bookRepoStub{
		createFn:               func(context.Context, *models.Book) error { return nil },
		getByIDFn:              func(_ context.Context, id uint) (*models.Book, error) { return &models.Book{ID: id, UserID: 1}, nil },
		getByGoogleBooksIDFn:   func(context.Context, string) (*models.Book, error) { return &models.Book{}, nil },
		listByUserFn:           func(context.Context, uint) ([]models.Book, error) { return nil, nil },
		listCurrentlyReadingFn: func(context.Context, uint) ([]models.Book, error) { return nil, nil },
		updateFn:               func(context.Context, *models.Book) error { return nil },
		deleteFn:               func(context.Context, uint) error { return nil },
	}
}

func noopReviewRepo() *reviewRepoStub {
	return &reviewRepoStub{
		createFn:     func(context.Context, *models.Review) error { return nil },
		listByBookFn: func(context.Context, uint) ([]models.Review, error) { return nil, nil },
	}
}

func TestBookServiceAddBookMissingTitle(t *testing.T) {
	svc := NewBookService(noopBookRepo(), noopActivityRepo(), noopFriendRepo(), noopReviewRepo())
	_, err := svc.AddBook(context.Background(), 1, AddBookInput{GoogleBooksID: "abc"})
	assertAppErrCode(t, err, "VALIDATION_ERROR")
}

func TestBookServiceUpdateProgressNotOwner(t *testing.T) {
	books := noopBookRepo()
	books.getByIDFn = func(_ context.Context, id uint) (*models.Book, error) {
		return &models.Book{ID: id, UserID: 1}, nil
	}

	svc := NewBookService(books, noopActivityRepo(), noopFriendRepo(), noopReviewRepo())
	_, err := svc.UpdateProgress(context.Background(), 2, 5, 50, "")
	assertAppErrCode(t, err, "UNAUTHORIZED")
}

func TestBookServiceUpdateProgressLogsActivity(t *testing.T) {
	books := noopBookRepo()
	books.getByIDFn = func(_ context.Context, id uint) (*models.Book, error) {
		return &models.Book{ID: id, UserID: 1, Title: "Dune", PageCount: 400}, nil
	}

	friends := noopFriendRepo()
	friends.getFriendIDsFn = func(context.Context, uint) ([]uint, error) {
		return []uint{2, 3}, nil
	}

	activities := noopActivityRepo()
	var logged *models.Activity
	var visibleTo []uint
	activities.createFn = func(_ context.Context, activity *models.Activity, grants []uint) error {
		logged = activity
		visibleTo = grants
		return nil
	}

	svc := NewBookService(books, activities, friends, noopReviewRepo())
	book, err := svc.UpdateProgress(context.Background(), 1, 5, 100, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if book.Progress != 25 || book.PagesRead != 100 {
		t.Fatalf("expected 25%% / 100 pages, got %d%% / %d", book.Progress, book.PagesRead)
	}
	if logged == nil || logged.Kind != models.ActivityProgress || logged.Progress == nil || *logged.Progress != 25 {
		t.Fatalf("expected a progress activity at 25%%, got %+v", logged)
	}
	if len(visibleTo) != 2 {
		t.Fatalf("expected current friends seeded into visibility, got %v", visibleTo)
	}
}

func TestBookServiceFinishBook(t *testing.T) {
	books := noopBookRepo()
	books.getByIDFn = func(_ context.Context, id uint) (*models.Book, error) {
		return &models.Book{ID: id, UserID: 1, Title: "Dune", PageCount: 400, CurrentlyReading: true}, nil
	}

	activities := noopActivityRepo()
	var logged *models.Activity
	activities.createFn = func(_ context.Context, activity *models.Activity, _ []uint) error {
		logged = activity
		return nil
	}

	svc := NewBookService(books, activities, noopFriendRepo(), noopReviewRepo())
	book, err := svc.FinishBook(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if book.CurrentlyReading || book.FinishedAt == nil || book.Progress != 100 {
		t.Fatalf("expected finished state, got %+v", book)
	}
	if logged == nil || logged.Kind != models.ActivityFinished {
		t.Fatalf("expected a finished activity, got %+v", logged)
	}
}

func TestBookServiceMarkAsReadingIdempotent(t *testing.T) {
	books := noopBookRepo()
	books.getByIDFn = func(_ context.Context, id uint) (*models.Book, error) {
		return &models.Book{ID: id, UserID: 1, CurrentlyReading: true}, nil
	}

	activities := noopActivityRepo()
	activities.createFn = func(context.Context, *models.Activity, []uint) error {
		t.Fatal("re-marking a book as reading must not log another activity")
		return nil
	}

	svc := NewBookService(books, activities, noopFriendRepo(), noopReviewRepo())
	if _, err := svc.MarkAsReading(context.Background(), 1, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBookServiceAddReviewRatingBounds(t *testing.T) {
	svc := NewBookService(noopBookRepo(), noopActivityRepo(), noopFriendRepo(), noopReviewRepo())
	for _, rating := range []int{0, -1, 6, 100} {
		_, err := svc.AddReview(context.Background(), AddReviewInput{BookID: 1, UserID: 1, Rating: rating, Content: "ok"})
		assertAppErrCode(t, err, "VALIDATION_ERROR")
	}
}

func TestBookServiceAddReview(t *testing.T) {
	reviews := noopReviewRepo()
	var created *models.Review
	reviews.createFn = func(_ context.Context, review *models.Review) error {
		created = review
		return nil
	}

	svc := NewBookService(noopBookRepo(), noopActivityRepo(), noopFriendRepo(), reviews)
	_, err := svc.AddReview(context.Background(), AddReviewInput{BookID: 4, UserID: 2, Rating: 4, Content: "loved it"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil || created.BookID != 4 || created.Rating != 4 {
		t.Fatalf("unexpected review: %+v", created)
	}
}
