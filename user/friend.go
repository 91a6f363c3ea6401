package user

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"sipscore/datastore"
	"sipscore/log"
)

// relationship of a user towards another, derived fresh from the two
// documents on every read and never persisted
const (
	StatusFriends  = "friends"
	StatusPending  = "pending"  // we sent them a request, still unanswered
	StatusReceived = "received" // they sent us a request, still unanswered
	StatusNone     = "none"
)

var (
	ErrSelfRequest              = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends           = errors.New("users are already friends")
	ErrRequestAlreadySent       = errors.New("friend request already sent")
	ErrRequestPendingFromTarget = errors.New("target already sent a friend request")
	ErrNoFriendRequest          = errors.New("no friend request from this user")
)

// HasFriend reports whether otherID is in the user's friends set
func (u *User) HasFriend(otherID primitive.ObjectID) bool {
	for _, id := range u.Friends {
		if id == otherID {
			return true
		}
	}
	return false
}

// HasSentRequest reports whether the user has an unanswered outgoing request to otherID
func (u *User) HasSentRequest(otherID primitive.ObjectID) bool {
	for _, id := range u.SentRequests {
		if id == otherID {
			return true
		}
	}
	return false
}

// requestIndexFrom returns the position of the incoming request sent by
// otherID, or -1 when none is pending
func (u *User) requestIndexFrom(otherID primitive.ObjectID) int {
	for i, req := range u.FriendRequests {
		if req.From == otherID {
			return i
		}
	}
	return -1
}

// StatusFor derives the relationship of the user towards otherID
func (u *User) StatusFor(otherID primitive.ObjectID) string {
	switch {
	case u.HasFriend(otherID):
		return StatusFriends
	case u.HasSentRequest(otherID):
		return StatusPending
	case u.requestIndexFrom(otherID) >= 0:
		return StatusReceived
	default:
		return StatusNone
	}
}

// checkCanSendRequest enforces the no-duplicate-edge rules before any write:
// a pair of users may hold at most one pending request between them, in one
// direction only, and none once they are already friends
func (u *User) checkCanSendRequest(target *User) error {
	if u.ID == target.ID {
		return ErrSelfRequest
	}
	if u.HasFriend(target.ID) {
		return ErrAlreadyFriends
	}
	if u.HasSentRequest(target.ID) {
		return ErrRequestAlreadySent
	}
	if u.requestIndexFrom(target.ID) >= 0 {
		// the reciprocal request exists; accepting it is the only path forward
		return ErrRequestPendingFromTarget
	}
	return nil
}

// SendFriendRequest records the pending edge on both documents: target onto
// the sender's sentRequests, and a {from, createdAt} record onto the
// target's friendRequests
func (u *User) SendFriendRequest(ctx context.Context, target *User) (err error) {
	if err = u.checkCanSendRequest(target); err != nil {
		return
	}
	users := datastore.MongoConn().Collection(datastore.UserCollection)
	err = datastore.WithTransaction(ctx, func(sc mongo.SessionContext) error {
		res, er := users.UpdateOne(
			sc,
			bson.M{datastore.ObjectID: u.ID},
			bson.D{{Key: datastore.MongoPushOperator, Value: bson.D{{Key: SentRequestsField, Value: target.ID}}}},
		)
		if er != nil {
			log.Logger().Printf("sending friend request failed from %s to %s: %s", u.Username, target.Username, er)
			return er
		} else if res.ModifiedCount != 1 {
			log.Logger().Printf("sending friend request from %s to %s modified no document", u.Username, target.Username)
			return datastore.NoDocUpdate
		}

		res, er = users.UpdateOne(
			sc,
			bson.M{datastore.ObjectID: target.ID},
			bson.D{{Key: datastore.MongoPushOperator, Value: bson.D{{
				Key:   FriendRequestsField,
				Value: FriendRequest{From: u.ID, CreatedAt: time.Now().UTC()},
			}}}},
		)
		if er != nil {
			log.Logger().Printf("recording friend request failed from %s to %s: %s", u.Username, target.Username, er)
			return er
		} else if res.ModifiedCount != 1 {
			log.Logger().Printf("recording friend request from %s to %s modified no document", u.Username, target.Username)
			return datastore.NoDocUpdate
		}
		return nil
	})
	return
}

// AcceptFriendRequest turns the pending request from sender into a mutual
// friendship: the request leaves the receiver's friendRequests, each user
// lands in the other's friends set, and the receiver leaves the sender's
// sentRequests; all four writes land together or not at all
func (u *User) AcceptFriendRequest(ctx context.Context, sender *User) (err error) {
	if u.requestIndexFrom(sender.ID) < 0 {
		return ErrNoFriendRequest
	}
	users := datastore.MongoConn().Collection(datastore.UserCollection)
	err = datastore.WithTransaction(ctx, func(sc mongo.SessionContext) error {
		res, er := users.UpdateOne(
			sc,
			bson.M{datastore.ObjectID: u.ID},
			bson.D{
				{Key: datastore.MongoPullOperator, Value: bson.D{{
					Key:   FriendRequestsField,
					Value: bson.D{{Key: RequestFromField, Value: sender.ID}},
				}}},
				{Key: datastore.MongoPushOperator, Value: bson.D{{Key: FriendsField, Value: sender.ID}}},
			},
		)
		if er != nil {
			log.Logger().Printf("accepting friend request from %s for %s failed: %s", sender.Username, u.Username, er)
			return er
		} else if res.ModifiedCount != 1 {
			log.Logger().Printf("accepting friend request from %s for %s modified no document", sender.Username, u.Username)
			return datastore.NoDocUpdate
		}

		res, er = users.UpdateOne(
			sc,
			bson.M{datastore.ObjectID: sender.ID},
			bson.D{
				{Key: datastore.MongoPullOperator, Value: bson.D{{Key: SentRequestsField, Value: u.ID}}},
				{Key: datastore.MongoPushOperator, Value: bson.D{{Key: FriendsField, Value: u.ID}}},
			},
		)
		if er != nil {
			log.Logger().Printf("linking %s as friend of %s failed: %s", u.Username, sender.Username, er)
			return er
		} else if res.ModifiedCount != 1 {
			log.Logger().Printf("linking %s as friend of %s modified no document", u.Username, sender.Username)
			return datastore.NoDocUpdate
		}
		return nil
	})
	return
}

// DenyFriendRequest drops the pending request; the sender-side cleanup is
// best-effort so a vanished sender cannot block the receiver
func (u *User) DenyFriendRequest(ctx context.Context, senderID primitive.ObjectID) (err error) {
	if u.requestIndexFrom(senderID) < 0 {
		return ErrNoFriendRequest
	}
	users := datastore.MongoConn().Collection(datastore.UserCollection)
	err = datastore.WithTransaction(ctx, func(sc mongo.SessionContext) error {
		res, er := users.UpdateOne(
			sc,
			bson.M{datastore.ObjectID: u.ID},
			bson.D{{Key: datastore.MongoPullOperator, Value: bson.D{{
				Key:   FriendRequestsField,
				Value: bson.D{{Key: RequestFromField, Value: senderID}},
			}}}},
		)
		if er != nil {
			log.Logger().Printf("denying friend request from %s for %s failed: %s", senderID.Hex(), u.Username, er)
			return er
		} else if res.ModifiedCount != 1 {
			log.Logger().Printf("denying friend request from %s for %s modified no document", senderID.Hex(), u.Username)
			return datastore.NoDocUpdate
		}

		// sender may have deleted their account; matching nothing is fine here
		_, er = users.UpdateOne(
			sc,
			bson.M{datastore.ObjectID: senderID},
			bson.D{{Key: datastore.MongoPullOperator, Value: bson.D{{Key: SentRequestsField, Value: u.ID}}}},
		)
		if er != nil {
			log.Logger().Printf("cleaning sent request of %s towards %s failed: %s", senderID.Hex(), u.Username, er)
			return er
		}
		return nil
	})
	return
}

// RemoveFriend pulls each user out of the other's friends set; removal is
// idempotent, so an already missing edge is not an error
func (u *User) RemoveFriend(ctx context.Context, target *User) (err error) {
	users := datastore.MongoConn().Collection(datastore.UserCollection)
	err = datastore.WithTransaction(ctx, func(sc mongo.SessionContext) error {
		_, er := users.UpdateOne(
			sc,
			bson.M{datastore.ObjectID: u.ID},
			bson.D{{Key: datastore.MongoPullOperator, Value: bson.D{{Key: FriendsField, Value: target.ID}}}},
		)
		if er != nil {
			log.Logger().Printf("removing friend %s for %s failed: %s", target.Username, u.Username, er)
			return er
		}
		_, er = users.UpdateOne(
			sc,
			bson.M{datastore.ObjectID: target.ID},
			bson.D{{Key: datastore.MongoPullOperator, Value: bson.D{{Key: FriendsField, Value: u.ID}}}},
		)
		if er != nil {
			log.Logger().Printf("removing friend %s for %s failed: %s", u.Username, target.Username, er)
			return er
		}
		return nil
	})
	return
}

// SearchUsers finds accounts whose username contains the query,
// case-insensitive, excluding the searching user
func SearchUsers(ctx context.Context, query string, selfID primitive.ObjectID) (users []User, err error) {
	cursor, err := datastore.MongoConn().Collection(datastore.UserCollection).Find(
		ctx,
		bson.M{
			UsernameField: bson.M{
				datastore.MongoRegexOperator:   query,
				datastore.MongoOptionsOperator: "i",
			},
			datastore.ObjectID: bson.M{datastore.MongoNotEqOperator: selfID},
		},
	)
	if err != nil {
		log.Logger().Printf("user search for %q failed: %s", query, err)
		return nil, errors.Wrap(err, "user search failed")
	}
	defer func() { _ = cursor.Close(ctx) }()
	users = make([]User, 0)
	if err = cursor.All(ctx, &users); err != nil {
		log.Logger().Printf("decoding user search results for %q failed: %s", query, err)
		return nil, errors.Wrap(err, "decoding user search results failed")
	}
	return
}

// GetUsersByIDs resolves a batch of user IDs to their documents; IDs that no
// longer exist are simply absent from the result
func GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) (users []User, err error) {
	users = make([]User, 0)
	if len(ids) == 0 {
		return
	}
	cursor, err := datastore.MongoConn().Collection(datastore.UserCollection).Find(
		ctx,
		bson.M{datastore.ObjectID: bson.M{datastore.MongoInOperator: ids}},
	)
	if err != nil {
		log.Logger().Printf("resolving %d users failed: %s", len(ids), err)
		return nil, errors.Wrap(err, "resolving users failed")
	}
	defer func() { _ = cursor.Close(ctx) }()
	if err = cursor.All(ctx, &users); err != nil {
		log.Logger().Printf("decoding resolved users failed: %s", err)
		return nil, errors.Wrap(err, "decoding resolved users failed")
	}
	return
}
