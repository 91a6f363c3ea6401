package service

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sipscore/datastore"
)

// RegisterRoutes wires the full endpoint table: registration and login stay
// public, everything else sits behind the session validator
func (a *API) RegisterRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger())
	router.Use(CORS())

	router.GET("/", a.Health)

	api := router.Group("/api")
	{
		api.POST("/users", a.Register)
		api.POST("/login", a.Login)

		protected := api.Group("")
		protected.Use(ValidateSession(a.tokens, datastore.MongoConn().Collection(datastore.UserCollection)))
		{
			protected.GET("/current-account", a.CurrentAccount)
			protected.PUT("/update-username", a.UpdateUsername)
			protected.PUT("/update-password", a.UpdatePassword)
			protected.PUT("/update-profile-picture", a.UpdateProfilePicture)

			protected.POST("/user-whiskey", a.AddWhiskey)
			protected.GET("/user-whiskey-list", a.ListWhiskeys)
			protected.DELETE("/delete-whiskey/:whiskeyId", a.DeleteWhiskey)

			protected.GET("/search-users", a.SearchUsers)
			protected.POST("/send-friend-request", a.SendFriendRequest)
			protected.GET("/friend-requests", a.ListFriendRequests)
			protected.POST("/accept-friend-request", a.AcceptFriendRequest)
			protected.POST("/deny-friend-request", a.DenyFriendRequest)
			protected.GET("/friends-list", a.ListFriends)
			protected.GET("/friend-whiskeys/:friendId", a.FriendWhiskeys)
			protected.POST("/remove-friend", a.RemoveFriend)
		}
	}

	return router
}

// Health answers the root probe the original backend exposed
func (a *API) Health(c *gin.Context) {
	c.String(http.StatusOK, "SipScore backend is up")
}
