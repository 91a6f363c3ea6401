package user

import (
	"context"
	"errors"
	"time"

	"github.com/fatih/structs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"sipscore/datastore"
	"sipscore/log"
)

// user document fields
const (
	UsernameField       = "username"
	EmailField          = "email"
	PasswordField       = "password"
	ProfilePictureField = "profilePicture"
	FriendsField        = "friends"
	FriendRequestsField = "friendRequests"
	SentRequestsField   = "sentRequests"
	RequestFromField    = "from"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrDuplicate     = errors.New("user already exists")
	ErrWrongPassword = errors.New("invalid password")
	ErrUsernameTaken = errors.New("username already taken")
	FetchUserFailed  = errors.New("fetch user details failed")
)

// User account document; the friend graph lives embedded on it, mirroring the
// mobile client's original document shape
type User struct {
	ID             primitive.ObjectID   `bson:"_id" json:"_id" structs:"-"`
	Username       string               `bson:"username" json:"username" structs:"username"`
	Email          string               `bson:"email" json:"email" structs:"email"`
	Password       string               `bson:"password" json:"-" structs:"password"` // bcrypt digest, never serialized
	ProfilePicture string               `bson:"profilePicture,omitempty" json:"profilePicture,omitempty" structs:"profilePicture"`
	Friends        []primitive.ObjectID `bson:"friends" json:"-" structs:"friends"`
	FriendRequests []FriendRequest      `bson:"friendRequests" json:"-" structs:"friendRequests"`
	SentRequests   []primitive.ObjectID `bson:"sentRequests" json:"-" structs:"sentRequests"`
}

// FriendRequest is one incoming, not yet accepted request on the receiver's document
type FriendRequest struct {
	From      primitive.ObjectID `bson:"from" json:"from"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// CreateUser hashes the password and persists a new account with an empty
// friend graph; the email must be unique across all users
func CreateUser(ctx context.Context, username, email, password string) (user *User, err error) {
	if _, err = GetUserByEmail(ctx, email); err == nil { // email must be unique
		log.Logger().Printf("user already exists with email %s", email)
		err = ErrDuplicate
		return
	} else if err != ErrNotFound {
		return
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return
	}
	user = &User{
		Username:       username,
		Email:          email,
		Password:       string(hashedPassword),
		Friends:        make([]primitive.ObjectID, 0),
		FriendRequests: make([]FriendRequest, 0),
		SentRequests:   make([]primitive.ObjectID, 0),
	}
	userMap := structs.Map(*user)
	res, err := datastore.MongoConn().Collection(datastore.UserCollection).InsertOne(ctx, userMap)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			err = ErrDuplicate
			return
		}
		log.Logger().Printf("error while creating new user %s: %s", email, err)
		return
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	log.Logger().Printf("user %s successfully created with userId: %s", email, user.ID.Hex())
	return
}

func GetUserByEmail(ctx context.Context, email string) (user *User, err error) {
	user = &User{}
	err = datastore.MongoConn().
		Collection(datastore.UserCollection).
		FindOne(ctx, bson.M{EmailField: email}).
		Decode(user)
	if err == mongo.ErrNoDocuments {
		err = ErrNotFound
	} else if err != nil {
		log.Logger().Printf("decoding(unmarshal) user fetch result for email %s failed: %s", email, err)
		err = FetchUserFailed
	}
	return
}

func GetUserByUsername(ctx context.Context, username string) (user *User, err error) {
	user = &User{}
	err = datastore.MongoConn().
		Collection(datastore.UserCollection).
		FindOne(ctx, bson.M{UsernameField: username}).
		Decode(user)
	if err == mongo.ErrNoDocuments {
		err = ErrNotFound
	} else if err != nil {
		log.Logger().Printf("decoding(unmarshal) user fetch result for username %s failed: %s", username, err)
		err = FetchUserFailed
	}
	return
}

func GetUserByID(ctx context.Context, objectID primitive.ObjectID) (user *User, err error) {
	user = &User{}
	err = datastore.MongoConn().
		Collection(datastore.UserCollection).
		FindOne(ctx, bson.M{datastore.ObjectID: objectID}).
		Decode(user)
	if err == mongo.ErrNoDocuments {
		err = ErrNotFound
	} else if err != nil {
		log.Logger().Printf("decoding(unmarshal) user fetch result for ID %s failed: %s", objectID.Hex(), err)
		err = FetchUserFailed
	}
	return
}

// Authenticate raises an error if authentication fails due to any reason,
// including password mismatch
func Authenticate(ctx context.Context, username, password string) (user *User, err error) {
	user, err = GetUserByUsername(ctx, username)
	if err != nil {
		log.Logger().Printf("authenticate user %s failed: %s", username, err)
		return
	}
	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Logger().Printf("password mismatch for user %s", username)
		err = ErrWrongPassword
	}
	return
}

// UpdateUsername persists the new name unless another account already holds it
func (u *User) UpdateUsername(ctx context.Context, newUsername string) (err error) {
	holder := &User{}
	err = datastore.MongoConn().Collection(datastore.UserCollection).FindOne(
		ctx,
		bson.M{
			UsernameField:      newUsername,
			datastore.ObjectID: bson.M{datastore.MongoNotEqOperator: u.ID},
		}).Decode(holder)
	if err == nil {
		return ErrUsernameTaken
	} else if err != mongo.ErrNoDocuments {
		log.Logger().Printf("username uniqueness check failed for %s: %s", newUsername, err)
		return FetchUserFailed
	}
	err = u.setFields(ctx, datastore.MongoConn().Collection(datastore.UserCollection),
		bson.D{{Key: UsernameField, Value: newUsername}})
	if err == nil {
		u.Username = newUsername
	}
	return
}

// ChangePassword verifies the current password before re-hashing and storing the new one
func (u *User) ChangePassword(ctx context.Context, currentPassword, newPassword string) (err error) {
	if err = bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(currentPassword)); err != nil {
		log.Logger().Printf("current password mismatch for user %s", u.Username)
		return ErrWrongPassword
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return
	}
	err = u.setFields(ctx, datastore.MongoConn().Collection(datastore.UserCollection),
		bson.D{{Key: PasswordField, Value: string(hashedPassword)}})
	if err == nil {
		u.Password = string(hashedPassword)
		log.Logger().Printf("password update successful for user %s", u.Username)
	}
	return
}

// UpdateProfilePicture stores the encoded image as-is; the client owns sizing
func (u *User) UpdateProfilePicture(ctx context.Context, image string) (err error) {
	err = u.setFields(ctx, datastore.MongoConn().Collection(datastore.UserCollection),
		bson.D{{Key: ProfilePictureField, Value: image}})
	if err == nil {
		u.ProfilePicture = image
	}
	return
}

// setFields applies a $set update on the user's own document
func (u *User) setFields(ctx context.Context, coll datastore.DatabaseUpdater, fields bson.D) (err error) {
	result, err := coll.UpdateOne(
		ctx,
		bson.M{datastore.ObjectID: u.ID},
		bson.D{{Key: datastore.MongoSetOperator, Value: fields}},
	)
	if err != nil {
		log.Logger().Printf("field update failed for user %s: %s", u.Username, err)
		return
	} else if result.MatchedCount != 1 {
		log.Logger().Printf("field update for user %s matched no document", u.Username)
		err = datastore.NoDocUpdate
	}
	return
}

func (u *User) String() string {
	return u.ID.Hex()
}
