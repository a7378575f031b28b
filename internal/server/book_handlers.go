package server

import (
	"readrover/internal/cache"
	"readrover/internal/models"
	"readrover/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddBook adds a book to the authenticated user's catalog
func (s *Server) AddBook(c *fiber.Ctx) error {
	var in service.AddBookInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	book, err := s.bookService.AddBook(c.Context(), currentUserID(c), in)
	if err != nil {
		return serviceError(c, err)
	}

	cache.Invalidate(c.Context(), cache.BookKey(book.GoogleBooksID))
	return c.Status(fiber.StatusCreated).JSON(book)
}

// GetMyBooks lists the authenticated user's catalog
func (s *Server) GetMyBooks(c *fiber.Ctx) error {
	books, err := s.bookService.ListBooks(c.Context(), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"books": books})
}

// GetCurrentlyReading lists the user's in-progress books
func (s *Server) GetCurrentlyReading(c *fiber.Ctx) error {
	books, err := s.bookService.ListCurrentlyReading(c.Context(), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"books": books})
}

// GetBookByVolume looks up a catalog entry by Google Books volume ID,
// cache-aside. Review pages hang off the volume ID rather than a row ID
// so two readers of the same title land on the same page.
func (s *Server) GetBookByVolume(c *fiber.Ctx) error {
	volumeID := c.Params("volumeId")
	if volumeID == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid volume ID"))
	}

	ctx := c.Context()
	key := cache.BookKey(volumeID)
	cached := s.flags.Enabled("book_cache", currentUserID(c))

	var book models.Book
	if cached && cache.GetJSON(ctx, key, &book) {
		return c.JSON(&book)
	}

	found, err := s.bookService.GetByGoogleBooksID(ctx, volumeID)
	if err != nil {
		return serviceError(c, err)
	}

	if cached {
		cache.SetJSON(ctx, key, found, cache.BookTTL)
	}
	return c.JSON(found)
}

// GetBook returns one of the user's own books
func (s *Server) GetBook(c *fiber.Ctx) error {
	bookID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	book, err := s.bookService.GetBook(c.Context(), currentUserID(c), bookID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(book)
}

// UpdateBook edits catalog metadata on one of the user's own books
func (s *Server) UpdateBook(c *fiber.Ctx) error {
	bookID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var in service.UpdateBookInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	book, err := s.bookService.UpdateBook(c.Context(), currentUserID(c), bookID, in)
	if err != nil {
		return serviceError(c, err)
	}

	cache.Invalidate(c.Context(), cache.BookKey(book.GoogleBooksID))
	return c.JSON(book)
}

// DeleteBook removes a book from the user's catalog
func (s *Server) DeleteBook(c *fiber.Ctx) error {
	bookID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.bookService.DeleteBook(c.Context(), currentUserID(c), bookID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Book deleted"})
}

// MarkAsReading flags a book as currently reading
func (s *Server) MarkAsReading(c *fiber.Ctx) error {
	bookID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	book, err := s.bookService.MarkAsReading(c.Context(), currentUserID(c), bookID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(book)
}

// MarkAsNotReading clears the currently-reading flag
func (s *Server) MarkAsNotReading(c *fiber.Ctx) error {
	bookID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	book, err := s.bookService.MarkAsNotReading(c.Context(), currentUserID(c), bookID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(book)
}

type updateProgressRequest struct {
	PagesRead int    `json:"pages_read"`
	Note      string `json:"note"`
}

// UpdateProgress records a page-count update and logs a progress activity
func (s *Server) UpdateProgress(c *fiber.Ctx) error {
	bookID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req updateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	book, err := s.bookService.UpdateProgress(c.Context(), currentUserID(c), bookID, req.PagesRead, req.Note)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(book)
}

// FinishBook marks a book as finished and logs a finished activity
func (s *Server) FinishBook(c *fiber.Ctx) error {
	bookID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	book, err := s.bookService.FinishBook(c.Context(), currentUserID(c), bookID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(book)
}

type addReviewRequest struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

// AddReview attaches a rated review to one of the user's books
func (s *Server) AddReview(c *fiber.Ctx) error {
	bookID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req addReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	review, err := s.bookService.AddReview(c.Context(), service.AddReviewInput{
		BookID:  bookID,
		UserID:  currentUserID(c),
		Rating:  req.Rating,
		Content: req.Content,
	})
	if err != nil {
		return serviceError(c, err)
	}

	// The review changed the book's running average; drop the cached copy.
	// The lookup bypasses the owner gate since any user may review.
	if book, berr := s.bookRepo.GetByID(c.Context(), bookID); berr == nil {
		cache.Invalidate(c.Context(), cache.BookKey(book.GoogleBooksID))
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// GetReviews lists the reviews on a book
func (s *Server) GetReviews(c *fiber.Ctx) error {
	bookID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	reviews, err := s.bookService.ListReviews(c.Context(), bookID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"reviews": reviews})
}
