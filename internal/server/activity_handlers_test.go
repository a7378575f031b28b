package server

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"readrover/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// befriend establishes an accepted friendship through the API.
func befriend(t *testing.T, app *fiber.App, tokenFrom string, idTo uint) {
	t.Helper()
	status, body := doJSON(t, app, jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/api/friends/%d", idTo), tokenFrom, nil))
	require.Equal(t, http.StatusCreated, status, "befriend failed: %v", body)
}

// startReading creates a book and logs a started activity, returning the
// activity ID from the owner's feed.
func startReading(t *testing.T, app *fiber.App, token, title string) uint {
	t.Helper()
	bookID := addBook(t, app, token, title, 300)
	status, _ := doJSON(t, app, jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/api/books/%d/reading", bookID), token, nil))
	require.Equal(t, http.StatusOK, status)

	status, body := doJSON(t, app, jsonRequest(t, http.MethodGet, "/api/feed", token, nil))
	require.Equal(t, http.StatusOK, status)
	activities, _ := body["activities"].([]any)
	require.NotEmpty(t, activities)
	first, _ := activities[0].(map[string]any)
	id, _ := first["id"].(float64)
	require.NotZero(t, id)
	return uint(id)
}

func TestActivityVisibilityGating(t *testing.T) {
	_, app := newTestServer(t)
	tokenA, _ := signupUser(t, app, "owner")
	tokenB, _ := signupUser(t, app, "stranger")

	activityID := startReading(t, app, tokenA, "Gated Book")

	// The owner always sees their own activity
	status, _ := doJSON(t, app, jsonRequest(t, http.MethodGet,
		fmt.Sprintf("/api/activities/%d", activityID), tokenA, nil))
	require.Equal(t, http.StatusOK, status)

	// A non-friend gets 404, not 403
	status, body := doJSON(t, app, jsonRequest(t, http.MethodGet,
		fmt.Sprintf("/api/activities/%d", activityID), tokenB, nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestCommentFlow(t *testing.T) {
	srv, app := newTestServer(t)
	tokenA, idA := signupUser(t, app, "author")
	tokenB, idB := signupUser(t, app, "commenter")
	befriend(t, app, tokenA, idB)

	activityID := startReading(t, app, tokenA, "Commented Book")

	t.Run("Empty Content Rejected", func(t *testing.T) {
		status, _ := doJSON(t, app, jsonRequest(t, http.MethodPost,
			fmt.Sprintf("/api/activities/%d/comments", activityID), tokenB,
			map[string]string{"content": ""}))
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Comment Appears Newest First", func(t *testing.T) {
		for _, content := range []string{"first", "second"} {
			status, body := doJSON(t, app, jsonRequest(t, http.MethodPost,
				fmt.Sprintf("/api/activities/%d/comments", activityID), tokenB,
				map[string]string{"content": content}))
			require.Equal(t, http.StatusCreated, status, "body: %v", body)
		}

		status, body := doJSON(t, app, jsonRequest(t, http.MethodGet,
			fmt.Sprintf("/api/activities/%d/comments", activityID), tokenA, nil))
		require.Equal(t, http.StatusOK, status)
		comments, _ := body["comments"].([]any)
		require.Len(t, comments, 2)
		newest, _ := comments[0].(map[string]any)
		assert.Equal(t, "second", newest["content"])
	})

	t.Run("Owner Notified", func(t *testing.T) {
		// Dispatch runs on a detached goroutine
		assert.Eventually(t, func() bool {
			var count int64
			srv.db.Model(&models.Notification{}).
				Where("user_id = ? AND kind = ?", idA, models.NotificationComment).
				Count(&count)
			return count >= 1
		}, 2*time.Second, 20*time.Millisecond)
	})
}

func TestReplyExtendsVisibilityToThread(t *testing.T) {
	_, app := newTestServer(t)
	tokenA, _ := signupUser(t, app, "thread-owner")
	tokenB, idB := signupUser(t, app, "thread-commenter")
	tokenC, idC := signupUser(t, app, "thread-replier")
	befriend(t, app, tokenA, idB)
	// C is a friend of B only, not of A
	befriend(t, app, tokenB, idC)

	activityID := startReading(t, app, tokenA, "Thread Book")

	// B comments on A's activity
	status, body := doJSON(t, app, jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/api/activities/%d/comments", activityID), tokenB,
		map[string]string{"content": "great book"}))
	require.Equal(t, http.StatusCreated, status, "body: %v", body)

	comments, _ := body["comments"].([]any)
	require.NotEmpty(t, comments)
	comment, _ := comments[0].(map[string]any)
	commentID, _ := comment["id"].(float64)
	require.NotZero(t, commentID)

	// C cannot see A's activity yet
	status, _ = doJSON(t, app, jsonRequest(t, http.MethodGet,
		fmt.Sprintf("/api/activities/%d", activityID), tokenC, nil))
	require.Equal(t, http.StatusNotFound, status)

	// C replies to B's comment and joins the thread's visibility set
	status, body = doJSON(t, app, jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/api/activities/%d/comments/%d/replies", activityID, uint(commentID)), tokenC,
		map[string]string{"content": "agreed"}))
	require.Equal(t, http.StatusCreated, status, "body: %v", body)

	status, _ = doJSON(t, app, jsonRequest(t, http.MethodGet,
		fmt.Sprintf("/api/activities/%d", activityID), tokenC, nil))
	assert.Equal(t, http.StatusOK, status)
}

func TestReplyToUnknownComment(t *testing.T) {
	_, app := newTestServer(t)
	tokenA, _ := signupUser(t, app, "lone-owner")

	activityID := startReading(t, app, tokenA, "Lonely Book")

	status, body := doJSON(t, app, jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/api/activities/%d/comments/999/replies", activityID), tokenA,
		map[string]string{"content": "into the void"}))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestFeedLimit(t *testing.T) {
	_, app := newTestServer(t)
	tokenA, _ := signupUser(t, app, "prolific")

	bookID := addBook(t, app, tokenA, "Long Book", 500)
	for pages := 1; pages <= 25; pages++ {
		status, _ := doJSON(t, app, jsonRequest(t, http.MethodPut,
			fmt.Sprintf("/api/books/%d/progress", bookID), tokenA,
			map[string]any{"pages_read": pages}))
		require.Equal(t, http.StatusOK, status)
	}

	status, body := doJSON(t, app, jsonRequest(t, http.MethodGet, "/api/feed", tokenA, nil))
	require.Equal(t, http.StatusOK, status)
	activities, _ := body["activities"].([]any)
	assert.Len(t, activities, 20)
}
