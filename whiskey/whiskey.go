package whiskey

import (
	"context"
	"sort"
	"time"

	"github.com/fatih/structs"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"sipscore/datastore"
	"sipscore/log"
)

// collection document fields
const (
	UserIDField   = "userId"
	WhiskeysField = "whiskeys"
)

var (
	ErrNoCollection  = errors.New("no whiskeys found for this user")
	ErrEntryNotFound = errors.New("whiskey not found in collection")
)

// Entry is a single tasting record inside a user's collection
type Entry struct {
	ID            primitive.ObjectID `bson:"_id" json:"_id" structs:"_id"`
	Name          string             `bson:"name" json:"name" structs:"name"`
	Proof         string             `bson:"proof" json:"proof" structs:"proof"`
	SmellingNotes string             `bson:"smellingNotes,omitempty" json:"smellingNotes,omitempty" structs:"smellingNotes"`
	TastingNotes  string             `bson:"tastingNotes,omitempty" json:"tastingNotes,omitempty" structs:"tastingNotes"`
	Score         float64            `bson:"score" json:"score" structs:"score"`
	DateAdded     time.Time          `bson:"dateAdded" json:"dateAdded" structs:"dateAdded,omitnested"`
	Image         string             `bson:"image,omitempty" json:"image,omitempty" structs:"image"`
}

// UserWhiskey holds one user's whiskeys; a single document per user, created
// lazily on the first add, entries kept in append order
type UserWhiskey struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id" structs:"-"`
	UserID   primitive.ObjectID `bson:"userId" json:"userId" structs:"userId"`
	Whiskeys []Entry            `bson:"whiskeys" json:"whiskeys" structs:"whiskeys"`
}

// NewEntry stamps the server-assigned identity and creation time on a tasting record
func NewEntry(name, proof, smellingNotes, tastingNotes string, score float64, image string) Entry {
	return Entry{
		ID:            primitive.NewObjectID(),
		Name:          name,
		Proof:         proof,
		SmellingNotes: smellingNotes,
		TastingNotes:  tastingNotes,
		Score:         score,
		DateAdded:     time.Now().UTC(),
		Image:         image,
	}
}

// GetByUserID fetches the user's collection document
func GetByUserID(ctx context.Context, userID primitive.ObjectID) (uw *UserWhiskey, err error) {
	uw = &UserWhiskey{}
	err = datastore.MongoConn().
		Collection(datastore.WhiskeyCollection).
		FindOne(ctx, bson.M{UserIDField: userID}).
		Decode(uw)
	if err == mongo.ErrNoDocuments {
		err = ErrNoCollection
	} else if err != nil {
		log.Logger().Printf("decoding(unmarshal) whiskey collection for user %s failed: %s", userID.Hex(), err)
		err = errors.Wrap(err, "whiskey collection fetch failed")
	}
	return
}

// AddEntry appends the entry to the caller's collection, creating the
// collection document on the very first add; created reports whether this
// add brought the document into existence
func AddEntry(ctx context.Context, userID primitive.ObjectID, entry Entry) (uw *UserWhiskey, created bool, err error) {
	uw, err = GetByUserID(ctx, userID)
	if err == ErrNoCollection {
		uw = &UserWhiskey{UserID: userID, Whiskeys: []Entry{entry}}
		err = createCollection(ctx, datastore.MongoConn().Collection(datastore.WhiskeyCollection), uw)
		created = err == nil
		return
	} else if err != nil {
		return
	}

	res, err := datastore.MongoConn().Collection(datastore.WhiskeyCollection).UpdateOne(
		ctx,
		bson.M{UserIDField: userID},
		bson.D{{Key: datastore.MongoPushOperator, Value: bson.D{{Key: WhiskeysField, Value: structs.Map(entry)}}}},
	)
	if err != nil {
		log.Logger().Printf("appending whiskey %s for user %s failed: %s", entry.Name, userID.Hex(), err)
		return
	} else if res.ModifiedCount != 1 {
		log.Logger().Printf("appending whiskey %s for user %s modified no document", entry.Name, userID.Hex())
		err = datastore.NoDocUpdate
		return
	}
	uw.Whiskeys = append(uw.Whiskeys, entry)
	return
}

// createCollection persists the first-ever collection document of a user
func createCollection(ctx context.Context, dbConn datastore.DatabaseInserter, uw *UserWhiskey) (err error) {
	res, err := dbConn.InsertOne(ctx, structs.Map(*uw))
	if err != nil {
		log.Logger().Printf("creating whiskey collection for user %s failed: %s", uw.UserID.Hex(), err)
		return
	}
	uw.ID = res.InsertedID.(primitive.ObjectID)
	log.Logger().Printf("whiskey collection created for user %s with id %s", uw.UserID.Hex(), uw.ID.Hex())
	return
}

// DeleteEntry removes the entry by id and returns the updated collection
func DeleteEntry(ctx context.Context, userID, entryID primitive.ObjectID) (uw *UserWhiskey, err error) {
	uw, err = GetByUserID(ctx, userID)
	if err != nil {
		return
	}
	remaining, found := withoutEntry(uw.Whiskeys, entryID)
	if !found {
		err = ErrEntryNotFound
		return
	}

	res, err := datastore.MongoConn().Collection(datastore.WhiskeyCollection).UpdateOne(
		ctx,
		bson.M{UserIDField: userID},
		bson.D{{Key: datastore.MongoPullOperator, Value: bson.D{{
			Key:   WhiskeysField,
			Value: bson.D{{Key: datastore.ObjectID, Value: entryID}},
		}}}},
	)
	if err != nil {
		log.Logger().Printf("deleting whiskey %s for user %s failed: %s", entryID.Hex(), userID.Hex(), err)
		return
	} else if res.ModifiedCount != 1 {
		log.Logger().Printf("deleting whiskey %s for user %s modified no document", entryID.Hex(), userID.Hex())
		err = datastore.NoDocUpdate
		return
	}
	uw.Whiskeys = remaining
	return
}

// withoutEntry filters the entry with the given id out of the list, keeping
// the append order of everything else
func withoutEntry(entries []Entry, entryID primitive.ObjectID) (remaining []Entry, found bool) {
	remaining = make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID == entryID {
			found = true
			continue
		}
		remaining = append(remaining, e)
	}
	return
}

// SortedByScore returns a copy of the entries ordered by score, highest
// first; only the friend-collection view carries this ordering guarantee
func SortedByScore(entries []Entry) []Entry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}
