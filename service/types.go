package service

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"sipscore/user"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateUsernameRequest struct {
	NewUsername string `json:"newUsername"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type updateProfilePictureRequest struct {
	ProfilePicture string `json:"profilePicture"`
}

type addWhiskeyRequest struct {
	Name          string   `json:"name"`
	Proof         string   `json:"proof"`
	SmellingNotes string   `json:"smellingNotes"`
	TastingNotes  string   `json:"tastingNotes"`
	Score         *float64 `json:"score"` // pointer so a missing score is told apart from 0
	Image         string   `json:"image"`
}

// targetUserRequest covers every friend operation addressed at another user
type targetUserRequest struct {
	UserID string `json:"userId"`
}

// profileResponse is the public slice of an account, safe to hand to any caller
type profileResponse struct {
	ID             primitive.ObjectID `json:"_id"`
	Username       string             `json:"username"`
	Email          string             `json:"email"`
	ProfilePicture string             `json:"profilePicture,omitempty"`
}

// searchResult is one search match with the caller-relative relationship status
type searchResult struct {
	ID       primitive.ObjectID `json:"_id"`
	Username string             `json:"username"`
	Status   string             `json:"status"`
}

// friendRequestResponse is one pending incoming request, sender resolved
type friendRequestResponse struct {
	ID        primitive.ObjectID `json:"_id"` // the sender's user id
	Username  string             `json:"username"`
	CreatedAt time.Time          `json:"createdAt"`
}

// friendResponse is one resolved friend profile for the friends list
type friendResponse struct {
	ID             primitive.ObjectID `json:"_id"`
	Username       string             `json:"username"`
	ProfilePicture string             `json:"profilePicture,omitempty"`
}

// friendSummary names the friend whose collection is being viewed
type friendSummary struct {
	ID       primitive.ObjectID `json:"_id"`
	Username string             `json:"username"`
}

func profileOf(u *user.User) profileResponse {
	return profileResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
	}
}
