package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sipscore/user"
)

// friendRouter wires the friend handlers behind a middleware that injects a
// fixture account, standing in for a validated session
func friendRouter(u *user.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	api := NewAPI(testTokenService("test-secret", 0))
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(currentUserKey, u)
		c.Next()
	})
	router.GET("/api/search-users", api.SearchUsers)
	router.POST("/api/send-friend-request", api.SendFriendRequest)
	router.POST("/api/accept-friend-request", api.AcceptFriendRequest)
	router.GET("/api/friend-whiskeys/:friendId", api.FriendWhiskeys)
	return router
}

func fixtureAccount() *user.User {
	return &user.User{
		ID:       primitive.NewObjectID(),
		Username: "alice",
		Email:    "alice@x.com",
	}
}

func doJSON(router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	decoded := make(map[string]interface{})
	_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	return rec, decoded
}

func TestSearchUsersRejectsShortQuery(t *testing.T) {
	router := friendRouter(fixtureAccount())
	tests := []struct {
		name  string
		query string
	}{
		{name: "empty query", query: ""},
		{name: "single character", query: "a"},
		{name: "whitespace only", query: "%20%20"},
	}
	for _, tc := range tests {
		rec, body := doJSON(router, http.MethodGet, "/api/search-users?username="+tc.query, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%s failed, wrong status", tc.name)
		assert.Equal(t, MsgSearchTooShort, body["message"], "%s failed, wrong message", tc.name)
	}
}

func TestSendFriendRequestToSelf(t *testing.T) {
	u := fixtureAccount()
	router := friendRouter(u)
	rec, body := doJSON(router, http.MethodPost, "/api/send-friend-request",
		`{"userId":"`+u.ID.Hex()+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "self request must be rejected")
	assert.Equal(t, MsgSelfRequest, body["message"], "wrong self request message")
}

func TestFriendHandlersRejectBadUserID(t *testing.T) {
	router := friendRouter(fixtureAccount())
	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{name: "send with malformed id", method: http.MethodPost, path: "/api/send-friend-request", body: `{"userId":"nope"}`},
		{name: "send with empty body", method: http.MethodPost, path: "/api/send-friend-request", body: `{}`},
		{name: "accept with malformed id", method: http.MethodPost, path: "/api/accept-friend-request", body: `{"userId":"nope"}`},
		{name: "friend whiskeys with malformed id", method: http.MethodGet, path: "/api/friend-whiskeys/nope", body: ""},
	}
	for _, tc := range tests {
		rec, body := doJSON(router, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%s failed, wrong status", tc.name)
		assert.Equal(t, MsgInvalidUserID, body["message"], "%s failed, wrong message", tc.name)
	}
}

func TestFriendWhiskeysRequiresFriendship(t *testing.T) {
	u := fixtureAccount() // empty friends set
	router := friendRouter(u)
	rec, body := doJSON(router, http.MethodGet, "/api/friend-whiskeys/"+primitive.NewObjectID().Hex(), "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "non-friend collection view must be forbidden")
	assert.Equal(t, MsgNotAFriend, body["message"], "wrong forbidden message")
}
