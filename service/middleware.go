package service

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"sipscore/datastore"
	"sipscore/log"
	"sipscore/user"
)

const currentUserKey = "currentUser"

const bearerPrefix = "Bearer "

// ValidateSession gates every protected handler: it extracts the bearer
// token, verifies it, and resolves the referenced account from the given
// finder; the handler chain only continues with a live, authenticated user
// attached to the request context
func ValidateSession(tokens *TokenService, users datastore.DatabaseFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, bearerPrefix) {
			writeError(c, http.StatusUnauthorized, MsgMissingToken)
			return
		}
		userID, err := tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			if err == ErrExpiredToken {
				writeError(c, http.StatusUnauthorized, MsgExpiredToken)
			} else {
				writeError(c, http.StatusUnauthorized, MsgInvalidToken)
			}
			return
		}
		u := &user.User{}
		err = users.FindOne(c.Request.Context(), bson.M{datastore.ObjectID: userID}).Decode(u)
		if err == mongo.ErrNoDocuments {
			// token is fine but the account is gone
			writeError(c, http.StatusNotFound, MsgUserNotFound)
			return
		} else if err != nil {
			log.Logger().Printf("session user lookup for %s failed: %s", userID.Hex(), err)
			writeError(c, http.StatusInternalServerError, MsgInternalServerError)
			return
		}
		c.Set(currentUserKey, u)
		c.Next()
	}
}

// CurrentUser returns the account the session validator attached to the request
func CurrentUser(c *gin.Context) *user.User {
	u, _ := c.MustGet(currentUserKey).(*user.User)
	return u
}

// RequestLogger tags every request with an id and logs one line on completion
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("requestID", requestID)
		start := time.Now()
		c.Next()
		log.Logger().Printf("%s %s %s => %d (%s)",
			requestID, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// CORS allows the mobile client to call from any origin, as the original backend did
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
