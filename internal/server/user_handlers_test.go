package server

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	_, app := newTestServer(t)
	tokenA, idA := signupUser(t, app, "profiled")
	tokenB, _ := signupUser(t, app, "viewer")

	t.Run("Own Profile Includes Email", func(t *testing.T) {
		status, body := doJSON(t, app, jsonRequest(t, http.MethodGet, "/api/users/me", tokenA, nil))
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "profiled", body["username"])
		assert.Equal(t, "profiled@example.com", body["email"])
	})

	t.Run("Update Profile", func(t *testing.T) {
		status, body := doJSON(t, app, jsonRequest(t, http.MethodPut, "/api/users/me", tokenA,
			map[string]string{"bio": "I read a lot"}))
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "I read a lot", body["bio"])
	})

	t.Run("Bio Too Long Rejected", func(t *testing.T) {
		long := make([]byte, 501)
		for i := range long {
			long[i] = 'x'
		}
		status, _ := doJSON(t, app, jsonRequest(t, http.MethodPut, "/api/users/me", tokenA,
			map[string]string{"bio": string(long)}))
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Public Profile Hides Email", func(t *testing.T) {
		status, body := doJSON(t, app, jsonRequest(t, http.MethodGet,
			fmt.Sprintf("/api/users/%d", idA), tokenB, nil))
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "profiled", body["username"])
		assert.Equal(t, "I read a lot", body["bio"])
		_, hasEmail := body["email"]
		assert.False(t, hasEmail)
	})

	t.Run("Profile Update Invalidates Cache", func(t *testing.T) {
		// First fetch primes the cache
		status, _ := doJSON(t, app, jsonRequest(t, http.MethodGet,
			fmt.Sprintf("/api/users/%d", idA), tokenB, nil))
		require.Equal(t, http.StatusOK, status)

		status, _ = doJSON(t, app, jsonRequest(t, http.MethodPut, "/api/users/me", tokenA,
			map[string]string{"bio": "new bio"}))
		require.Equal(t, http.StatusOK, status)

		status, body := doJSON(t, app, jsonRequest(t, http.MethodGet,
			fmt.Sprintf("/api/users/%d", idA), tokenB, nil))
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "new bio", body["bio"])
	})

	t.Run("Omitted Fields Unchanged", func(t *testing.T) {
		status, body := doJSON(t, app, jsonRequest(t, http.MethodPut, "/api/users/me", tokenA,
			map[string]string{"avatar": "https://example.net/a.png"}))
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "https://example.net/a.png", body["avatar"])
		assert.Equal(t, "new bio", body["bio"])
	})

	t.Run("Explicit Empty Bio Clears It", func(t *testing.T) {
		status, body := doJSON(t, app, jsonRequest(t, http.MethodPut, "/api/users/me", tokenA,
			map[string]string{"bio": ""}))
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "", body["bio"])
	})

	t.Run("Empty Username Rejected", func(t *testing.T) {
		status, _ := doJSON(t, app, jsonRequest(t, http.MethodPut, "/api/users/me", tokenA,
			map[string]string{"username": ""}))
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Unknown User 404", func(t *testing.T) {
		status, _ := doJSON(t, app, jsonRequest(t, http.MethodGet, "/api/users/9999", tokenB, nil))
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Invalid ID 400", func(t *testing.T) {
		status, _ := doJSON(t, app, jsonRequest(t, http.MethodGet, "/api/users/abc", tokenB, nil))
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestSearchUsers(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "searcher")
	signupUser(t, app, "bookworm-anna")
	signupUser(t, app, "bookworm-ben")

	t.Run("Empty Query Rejected", func(t *testing.T) {
		status, _ := doJSON(t, app, jsonRequest(t, http.MethodGet, "/api/users/search?q=", token, nil))
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Matches By Fragment", func(t *testing.T) {
		status, body := doJSON(t, app, jsonRequest(t, http.MethodGet, "/api/users/search?q=bookworm", token, nil))
		require.Equal(t, http.StatusOK, status)
		users, _ := body["users"].([]any)
		assert.Len(t, users, 2)
	})
}

func TestNotificationLog(t *testing.T) {
	_, app := newTestServer(t)
	tokenA, idA := signupUser(t, app, "notified")
	tokenB, _ := signupUser(t, app, "requester")

	// A friend request generates a notification for the addressee
	status, _ := doJSON(t, app, jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/api/friends/requests/%d", idA), tokenB, nil))
	require.Equal(t, http.StatusCreated, status)

	// Delivery is asynchronous
	var notificationID uint
	require.Eventually(t, func() bool {
		status, body := doJSON(t, app, jsonRequest(t, http.MethodGet, "/api/users/me/notifications", tokenA, nil))
		if status != http.StatusOK {
			return false
		}
		notifs, _ := body["notifications"].([]any)
		if len(notifs) == 0 {
			return false
		}
		first, _ := notifs[0].(map[string]any)
		id, _ := first["id"].(float64)
		notificationID = uint(id)
		return notificationID != 0
	}, 2*time.Second, 20*time.Millisecond)

	t.Run("Mark Read", func(t *testing.T) {
		status, _ := doJSON(t, app, jsonRequest(t, http.MethodPost,
			fmt.Sprintf("/api/users/me/notifications/%d/read", notificationID), tokenA, nil))
		require.Equal(t, http.StatusOK, status)

		status, body := doJSON(t, app, jsonRequest(t, http.MethodGet, "/api/users/me/notifications", tokenA, nil))
		require.Equal(t, http.StatusOK, status)
		notifs, _ := body["notifications"].([]any)
		require.NotEmpty(t, notifs)
		first, _ := notifs[0].(map[string]any)
		assert.Equal(t, true, first["read"])
	})

	t.Run("Cannot Mark Another User's Notification", func(t *testing.T) {
		status, _ := doJSON(t, app, jsonRequest(t, http.MethodPost,
			fmt.Sprintf("/api/users/me/notifications/%d/read", notificationID), tokenB, nil))
		assert.Equal(t, http.StatusNotFound, status)
	})
}
