package service

import "github.com/gin-gonic/gin"

// client-facing messages, surfaced directly by the mobile app in alerts
const (
	MsgMissingFields       = "All fields are required"
	MsgMissingCredentials  = "Both username and password are required"
	MsgUserNotFound        = "User not found"
	MsgInvalidPassword     = "Invalid password"
	MsgMissingToken        = "Unauthorized: Missing token"
	MsgInvalidToken        = "Unauthorized: Invalid token"
	MsgExpiredToken        = "Unauthorized: Token expired"
	MsgEmailTaken          = "An account with this email already exists"
	MsgUsernameTooShort    = "Username must be at least 2 characters"
	MsgUsernameTaken       = "This username is already taken"
	MsgMissingPasswords    = "Both current and new password are required"
	MsgPasswordTooShort    = "New password must be at least 6 characters"
	MsgMissingPicture      = "Please provide a profile picture"
	MsgMissingWhiskey      = "Please provide all required whiskey details (name, proof, and score)."
	MsgScoreOutOfRange     = "Score must be between 1 and 10."
	MsgNoWhiskeys          = "No whiskeys found for this user."
	MsgWhiskeyNotFound     = "Whiskey not found in your collection"
	MsgSearchTooShort      = "Please enter at least 2 characters to search"
	MsgSelfRequest         = "You cannot send a friend request to yourself"
	MsgAlreadyFriends      = "You are already friends with this user"
	MsgRequestAlreadySent  = "Friend request already sent"
	MsgReciprocalRequest   = "This user has already sent you a friend request. Check your pending requests!"
	MsgNoFriendRequest     = "No friend request from this user"
	MsgNotAFriend          = "You can only view whiskeys of your friends"
	MsgInvalidUserID       = "Invalid user id"
	MsgInternalServerError = "Internal Server Error"
)

// writeError terminates the request with the original backend's `{message}` body
func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
