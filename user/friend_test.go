package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fixture graph: self is friends with friendID, sent a request to pendingID,
// and received one from receivedID
func fixtureUser() (*User, primitive.ObjectID, primitive.ObjectID, primitive.ObjectID) {
	friendID := primitive.NewObjectID()
	pendingID := primitive.NewObjectID()
	receivedID := primitive.NewObjectID()
	u := &User{
		ID:           primitive.NewObjectID(),
		Username:     "alice",
		Friends:      []primitive.ObjectID{friendID},
		SentRequests: []primitive.ObjectID{pendingID},
		FriendRequests: []FriendRequest{
			{From: receivedID, CreatedAt: time.Now().UTC()},
		},
	}
	return u, friendID, pendingID, receivedID
}

func TestStatusFor(t *testing.T) {
	u, friendID, pendingID, receivedID := fixtureUser()
	tests := []struct {
		name     string
		otherID  primitive.ObjectID
		expected string
	}{
		{name: "mutual friend", otherID: friendID, expected: StatusFriends},
		{name: "outgoing request pending", otherID: pendingID, expected: StatusPending},
		{name: "incoming request received", otherID: receivedID, expected: StatusReceived},
		{name: "stranger", otherID: primitive.NewObjectID(), expected: StatusNone},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, u.StatusFor(tc.otherID), "%s failed", tc.name)
	}
}

func TestHasFriend(t *testing.T) {
	u, friendID, pendingID, _ := fixtureUser()
	assert.True(t, u.HasFriend(friendID), "existing friend not found")
	assert.False(t, u.HasFriend(pendingID), "pending request must not count as friendship")
	assert.False(t, u.HasFriend(primitive.NewObjectID()), "stranger must not count as friendship")
}

func TestHasSentRequest(t *testing.T) {
	u, friendID, pendingID, _ := fixtureUser()
	assert.True(t, u.HasSentRequest(pendingID), "outgoing request not found")
	assert.False(t, u.HasSentRequest(friendID), "friend must not appear as outgoing request")
}

func TestRequestIndexFrom(t *testing.T) {
	u, _, _, receivedID := fixtureUser()
	assert.Equal(t, 0, u.requestIndexFrom(receivedID), "incoming request not found at expected position")
	assert.Equal(t, -1, u.requestIndexFrom(primitive.NewObjectID()), "missing request must yield -1")
}

func TestCheckCanSendRequest(t *testing.T) {
	u, friendID, pendingID, receivedID := fixtureUser()
	tests := []struct {
		name   string
		target *User
		expErr error
	}{
		{
			name:   "self request rejected",
			target: u,
			expErr: ErrSelfRequest,
		},
		{
			name:   "already friends rejected",
			target: &User{ID: friendID},
			expErr: ErrAlreadyFriends,
		},
		{
			name:   "duplicate outgoing rejected",
			target: &User{ID: pendingID},
			expErr: ErrRequestAlreadySent,
		},
		{
			name:   "reciprocal pending rejected",
			target: &User{ID: receivedID},
			expErr: ErrRequestPendingFromTarget,
		},
		{
			name:   "stranger allowed",
			target: &User{ID: primitive.NewObjectID()},
			expErr: nil,
		},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expErr, u.checkCanSendRequest(tc.target), "%s failed", tc.name)
	}
}

func TestSendFriendRequestConflicts(t *testing.T) {
	u, friendID, _, _ := fixtureUser()
	err := u.SendFriendRequest(context.Background(), &User{ID: friendID})
	assert.Equal(t, ErrAlreadyFriends, err, "send to an existing friend must fail before any write")
}

func TestAcceptFriendRequestWithoutRequest(t *testing.T) {
	u, _, _, _ := fixtureUser()
	err := u.AcceptFriendRequest(context.Background(), &User{ID: primitive.NewObjectID()})
	assert.Equal(t, ErrNoFriendRequest, err, "accept without a pending request must fail")
}

func TestDenyFriendRequestWithoutRequest(t *testing.T) {
	u, _, pendingID, _ := fixtureUser()
	// an outgoing request cannot be denied, only an incoming one
	err := u.DenyFriendRequest(context.Background(), pendingID)
	assert.Equal(t, ErrNoFriendRequest, err, "deny without a pending incoming request must fail")
}
