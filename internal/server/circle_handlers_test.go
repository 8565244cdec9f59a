package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircleLifecycle(t *testing.T) {
	_, app := newTestServer(t)
	aliceToken, _ := signupUser(t, app, "alice")
	bobToken, bobID := signupUser(t, app, "bob")

	resp, circle := doJSON(t, app, http.MethodPost, "/api/circles/", aliceToken, map[string]any{
		"name": "friends",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	circleID := jsonID(circle["id"])

	t.Run("duplicate name per owner conflicts", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/circles/", aliceToken, map[string]any{
			"name": "friends",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("same name under another owner is fine", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/circles/", bobToken, map[string]any{
			"name": "friends",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("only the owner manages membership", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost,
			fmt.Sprintf("/api/circles/%d/members/%d", circleID, bobID), bobToken, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("owner sees members", func(t *testing.T) {
		resp, toggle := doJSON(t, app, http.MethodPost,
			fmt.Sprintf("/api/circles/%d/members/%d", circleID, bobID), aliceToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, toggle["added"])

		resp, body := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/circles/%d", circleID), aliceToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		members, _ := body["members"].([]any)
		require.Len(t, members, 1)
		member := members[0].(map[string]any)
		assert.Equal(t, "bob", member["handle"])
	})

	t.Run("members cannot inspect the circle", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/circles/%d", circleID), bobToken, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("listing shows only owned circles", func(t *testing.T) {
		resp, circles := doJSONList(t, app, http.MethodGet, "/api/circles/", aliceToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, circles, 1)
		assert.Equal(t, circleID, jsonID(circles[0]["id"]))
	})

	t.Run("unknown target identity", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost,
			fmt.Sprintf("/api/circles/%d/members/999999", circleID), aliceToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteCircle_KeepsPosts(t *testing.T) {
	_, app := newTestServer(t)
	aliceToken, _ := signupUser(t, app, "alice")
	bobToken, bobID := signupUser(t, app, "bob")

	resp, circle := doJSON(t, app, http.MethodPost, "/api/circles/", aliceToken, map[string]any{
		"name": "friends",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	circleID := jsonID(circle["id"])

	doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/circles/%d/members/%d", circleID, bobID), aliceToken, nil)
	postID := createPost(t, app, aliceToken, "for the circle", false, circleID)

	t.Run("non-owner denied", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/circles/%d", circleID), bobToken, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("delete unlinks but keeps the post", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/circles/%d", circleID), aliceToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		// The post survives for its author, now effectively private.
		resp, post := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d", postID), aliceToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "(private)", post["sharing_scope"])

		// Former member lost access with the circle.
		resp, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d", postID), bobToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("name becomes reusable", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/circles/", aliceToken, map[string]any{
			"name": "friends",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})
}
