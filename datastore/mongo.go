package datastore

import (
	"context"
	"errors"
	"os"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sipscore/log"
)

// mongodb query operators
const (
	MongoSetOperator     = "$set"
	MongoPushOperator    = "$push"
	MongoPullOperator    = "$pull"
	MongoInOperator      = "$in"
	MongoNotEqOperator   = "$ne"
	MongoRegexOperator   = "$regex"
	MongoOptionsOperator = "$options"
)

const (
	UserCollection    = "users"
	WhiskeyCollection = "user_whiskeys"
)

// common fields/attributes of documents in various collections
const (
	ObjectID = "_id" // document level Primary Key
	// Creation time of the document can be fetched via ObjectId.getTimestamp()
)

var (
	MongoConnScheme = os.Getenv("SIPSCORE_MONGO_CONN_SCHEME")
	MongoHost       = os.Getenv("SIPSCORE_MONGO_HOST")
	MongoUser       = os.Getenv("SIPSCORE_MONGO_USER")
	MongoPwd        = os.Getenv("SIPSCORE_MONGO_PWD")
	MongoDatabase   = os.Getenv("SIPSCORE_MONGO_DB")
	MongoOptions    = os.Getenv("SIPSCORE_MONGO_OPTS") // retryWrites=true&w=majority
)

var (
	NoDocUpdate = errors.New("no document updated")
)

// instead of a generic client, hold the target DB handler, to avoid selecting it again and again in each query
var mongoConn *mongo.Database
var initMongoConn sync.Once

// buildMongoURI assembles the connection string from the individual env pieces,
// e.g. mongodb+srv://<username>:<password>@cluster.mongodb.net/sipscore?retryWrites=true&w=majority
func buildMongoURI(scheme, host, user, pwd, database, opts string) string {
	if scheme == "" {
		scheme = "mongodb"
	}
	if host == "" {
		host = "localhost:27017"
	}
	addressURL := scheme + "://"
	if user != "" {
		addressURL += user + ":" + pwd + "@"
	}
	addressURL += host
	addressURL += "/" + database
	if opts != "" {
		addressURL += "?" + opts
	}
	return addressURL
}

// initializes a new client, and sets the target database handler
func initMongoConnPool() {
	addressURL := buildMongoURI(MongoConnScheme, MongoHost, MongoUser, MongoPwd, MongoDatabase, MongoOptions)
	opts := options.Client().ApplyURI(addressURL)
	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		log.Logger().Fatalf("create mongo connection pool on %s failed: %s", addressURL, err)
	} else {
		log.Logger().Printf("mongo successfully connected on %s", MongoHost)
	}
	database := MongoDatabase
	if database == "" {
		database = "sipscore"
	}
	mongoConn = client.Database(database)
	ensureIndexes(mongoConn)
}

// MongoConn returns the database handler instance of mongo for the target database
func MongoConn() *mongo.Database {
	initMongoConn.Do(initMongoConnPool)
	return mongoConn
}

// ensureIndexes enforces the store level uniqueness constraints, so duplicate
// account creation surfaces as a duplicate key error instead of a silent double insert
func ensureIndexes(db *mongo.Database) {
	_, err := db.Collection(UserCollection).Indexes().CreateOne(
		context.Background(),
		mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	)
	if err != nil {
		log.Logger().Printf("unique email index creation failed: %s", err)
	}
	_, err = db.Collection(WhiskeyCollection).Indexes().CreateOne(
		context.Background(),
		mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	)
	if err != nil {
		log.Logger().Printf("unique userId index creation failed: %s", err)
	}
}

// WithTransaction runs fn inside a mongo session transaction, committing on
// success and aborting on the first failure, so multi-document mutations
// either land on both documents or on neither
func WithTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) (err error) {
	session, err := MongoConn().Client().StartSession()
	if err != nil {
		log.Logger().Printf("initializing mongo session failed: %s", err)
		return
	}
	defer session.EndSession(ctx)

	err = session.StartTransaction()
	if err != nil {
		log.Logger().Printf("initializing mongo transaction failed: %s", err)
		return
	}

	err = mongo.WithSession(ctx, session, func(sc mongo.SessionContext) error {
		if er := fn(sc); er != nil {
			_ = session.AbortTransaction(sc) // ROLLBACK at the earliest to shorten transaction life-cycle
			return er
		}
		if er := session.CommitTransaction(sc); er != nil {
			log.Logger().Printf("committing mongo transaction failed: %s", er)
			if abortErr := session.AbortTransaction(sc); abortErr != nil {
				log.Logger().Printf("aborting mongo transaction failed: %s", abortErr)
			}
			return er
		}
		return nil
	})
	return
}
