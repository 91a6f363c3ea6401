package service

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sipscore/log"
	"sipscore/user"
	"sipscore/whiskey"
)

const minSearchLength = 2

// SearchUsers matches usernames case-insensitively and annotates every match
// with the caller-relative relationship status, computed fresh per search
func (a *API) SearchUsers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("username"))
	if len(query) < minSearchLength {
		writeError(c, http.StatusBadRequest, MsgSearchTooShort)
		return
	}

	u := CurrentUser(c)
	matches, err := user.SearchUsers(c.Request.Context(), query, u.ID)
	if err != nil {
		log.Logger().Printf("searching users for %q failed: %s", query, err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	results := make([]searchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, searchResult{
			ID:       m.ID,
			Username: m.Username,
			Status:   u.StatusFor(m.ID),
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": results})
}

// SendFriendRequest opens a pending edge towards the target user
func (a *API) SendFriendRequest(c *gin.Context) {
	targetID, ok := a.bindTargetUser(c)
	if !ok {
		return
	}

	u := CurrentUser(c)
	if targetID == u.ID {
		writeError(c, http.StatusBadRequest, MsgSelfRequest)
		return
	}

	target, err := user.GetUserByID(c.Request.Context(), targetID)
	if err != nil {
		if err == user.ErrNotFound {
			writeError(c, http.StatusNotFound, MsgUserNotFound)
			return
		}
		log.Logger().Printf("friend request target lookup %s failed: %s", targetID.Hex(), err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	switch err = u.SendFriendRequest(c.Request.Context(), target); err {
	case nil:
	case user.ErrSelfRequest:
		writeError(c, http.StatusBadRequest, MsgSelfRequest)
		return
	case user.ErrAlreadyFriends:
		writeError(c, http.StatusConflict, MsgAlreadyFriends)
		return
	case user.ErrRequestAlreadySent:
		writeError(c, http.StatusConflict, MsgRequestAlreadySent)
		return
	case user.ErrRequestPendingFromTarget:
		writeError(c, http.StatusConflict, MsgReciprocalRequest)
		return
	default:
		log.Logger().Printf("friend request from %s to %s failed: %s", u.ID.Hex(), targetID.Hex(), err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend request sent successfully"})
}

// ListFriendRequests returns pending incoming requests with the sender resolved
func (a *API) ListFriendRequests(c *gin.Context) {
	u := CurrentUser(c)

	senderIDs := make([]primitive.ObjectID, 0, len(u.FriendRequests))
	for _, req := range u.FriendRequests {
		senderIDs = append(senderIDs, req.From)
	}
	senders, err := user.GetUsersByIDs(c.Request.Context(), senderIDs)
	if err != nil {
		log.Logger().Printf("resolving friend requests for %s failed: %s", u.ID.Hex(), err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}
	byID := make(map[primitive.ObjectID]user.User, len(senders))
	for _, s := range senders {
		byID[s.ID] = s
	}

	requests := make([]friendRequestResponse, 0, len(u.FriendRequests))
	for _, req := range u.FriendRequests {
		sender, found := byID[req.From]
		if !found { // sender account no longer exists
			continue
		}
		requests = append(requests, friendRequestResponse{
			ID:        sender.ID,
			Username:  sender.Username,
			CreatedAt: req.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// AcceptFriendRequest upgrades a pending request into a mutual friendship
func (a *API) AcceptFriendRequest(c *gin.Context) {
	senderID, ok := a.bindTargetUser(c)
	if !ok {
		return
	}

	u := CurrentUser(c)
	sender, err := user.GetUserByID(c.Request.Context(), senderID)
	if err != nil {
		if err == user.ErrNotFound {
			writeError(c, http.StatusNotFound, MsgUserNotFound)
			return
		}
		log.Logger().Printf("friend request sender lookup %s failed: %s", senderID.Hex(), err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	if err = u.AcceptFriendRequest(c.Request.Context(), sender); err != nil {
		if err == user.ErrNoFriendRequest {
			writeError(c, http.StatusBadRequest, MsgNoFriendRequest)
			return
		}
		log.Logger().Printf("accepting friend request from %s for %s failed: %s", senderID.Hex(), u.ID.Hex(), err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted"})
}

// DenyFriendRequest drops a pending request without creating a friendship
func (a *API) DenyFriendRequest(c *gin.Context) {
	senderID, ok := a.bindTargetUser(c)
	if !ok {
		return
	}

	u := CurrentUser(c)
	if err := u.DenyFriendRequest(c.Request.Context(), senderID); err != nil {
		if err == user.ErrNoFriendRequest {
			writeError(c, http.StatusBadRequest, MsgNoFriendRequest)
			return
		}
		log.Logger().Printf("denying friend request from %s for %s failed: %s", senderID.Hex(), u.ID.Hex(), err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend request denied"})
}

// ListFriends resolves the caller's friends set to public profiles
func (a *API) ListFriends(c *gin.Context) {
	u := CurrentUser(c)
	friends, err := user.GetUsersByIDs(c.Request.Context(), u.Friends)
	if err != nil {
		log.Logger().Printf("resolving friends list for %s failed: %s", u.ID.Hex(), err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	resolved := make([]friendResponse, 0, len(friends))
	for _, f := range friends {
		resolved = append(resolved, friendResponse{
			ID:             f.ID,
			Username:       f.Username,
			ProfilePicture: f.ProfilePicture,
		})
	}
	c.JSON(http.StatusOK, gin.H{"friends": resolved})
}

// FriendWhiskeys exposes a friend's collection, highest scored first; unlike
// the personal listing, this ordering is a server guarantee
func (a *API) FriendWhiskeys(c *gin.Context) {
	friendID, err := primitive.ObjectIDFromHex(c.Param("friendId"))
	if err != nil {
		writeError(c, http.StatusBadRequest, MsgInvalidUserID)
		return
	}

	u := CurrentUser(c)
	if !u.HasFriend(friendID) {
		writeError(c, http.StatusForbidden, MsgNotAFriend)
		return
	}

	friend, err := user.GetUserByID(c.Request.Context(), friendID)
	if err != nil {
		if err == user.ErrNotFound {
			writeError(c, http.StatusNotFound, MsgUserNotFound)
			return
		}
		log.Logger().Printf("friend lookup %s failed: %s", friendID.Hex(), err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	entries := make([]whiskey.Entry, 0)
	uw, err := whiskey.GetByUserID(c.Request.Context(), friendID)
	if err == nil {
		entries = whiskey.SortedByScore(uw.Whiskeys)
	} else if err != whiskey.ErrNoCollection {
		log.Logger().Printf("fetching whiskeys of friend %s failed: %s", friendID.Hex(), err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"friend":   friendSummary{ID: friend.ID, Username: friend.Username},
		"whiskeys": entries,
	})
}

// RemoveFriend severs the friendship from both sides
func (a *API) RemoveFriend(c *gin.Context) {
	targetID, ok := a.bindTargetUser(c)
	if !ok {
		return
	}

	u := CurrentUser(c)
	target, err := user.GetUserByID(c.Request.Context(), targetID)
	if err != nil {
		if err == user.ErrNotFound {
			writeError(c, http.StatusNotFound, MsgUserNotFound)
			return
		}
		log.Logger().Printf("remove friend target lookup %s failed: %s", targetID.Hex(), err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	if err = u.RemoveFriend(c.Request.Context(), target); err != nil {
		log.Logger().Printf("removing friend %s for %s failed: %s", targetID.Hex(), u.ID.Hex(), err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend removed successfully"})
}

// bindTargetUser parses the `{userId}` body every directed friend operation carries
func (a *API) bindTargetUser(c *gin.Context) (primitive.ObjectID, bool) {
	var req targetUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, MsgInvalidUserID)
		return primitive.NilObjectID, false
	}
	targetID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.UserID))
	if err != nil {
		writeError(c, http.StatusBadRequest, MsgInvalidUserID)
		return primitive.NilObjectID, false
	}
	return targetID, true
}
