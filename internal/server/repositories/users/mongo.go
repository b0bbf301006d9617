package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/scribblenest/internal/common"
	"github.com/dmitrijs2005/scribblenest/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// userDocument is the BSON layout of the users collection.
type userDocument struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty"`
	Username   string               `bson:"username"`
	Email      string               `bson:"email"`
	Name       string               `bson:"name"`
	Age        int                  `bson:"age"`
	Password   string               `bson:"password"`
	ProfilePic string               `bson:"profilepic,omitempty"`
	Posts      []primitive.ObjectID `bson:"posts"`
	CreatedAt  time.Time            `bson:"createdAt"`
}

func (d *userDocument) toModel() *models.User {
	posts := make([]string, 0, len(d.Posts))
	for _, p := range d.Posts {
		posts = append(posts, p.Hex())
	}
	return &models.User{
		ID:             d.ID.Hex(),
		Username:       d.Username,
		Email:          d.Email,
		Name:           d.Name,
		Age:            d.Age,
		PasswordHash:   d.Password,
		ProfilePicture: d.ProfilePic,
		Posts:          posts,
		CreatedAt:      d.CreatedAt,
	}
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(common.UsersCollection)}
}

// EnsureIndexes creates the unique email index. It is idempotent.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	doc := &userDocument{
		Username:   user.Username,
		Email:      user.Email,
		Name:       user.Name,
		Age:        user.Age,
		Password:   user.PasswordHash,
		ProfilePic: user.ProfilePicture,
		Posts:      []primitive.ObjectID{},
		CreatedAt:  time.Now().UTC(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, common.ErrDuplicateUser
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("db error: unexpected id type %T", res.InsertedID)
	}

	user.ID = oid.Hex()
	user.Posts = []string{}
	user.CreatedAt = doc.CreatedAt
	return user, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrorNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) SetProfilePicture(ctx context.Context, id, filename string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"profilepic": filename}})
}

func (r *MongoRepository) AddPost(ctx context.Context, id, postID string) error {
	pid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return common.ErrorNotFound
	}
	return r.updateByID(ctx, id, bson.M{"$addToSet": bson.M{"posts": pid}})
}

func (r *MongoRepository) RemovePost(ctx context.Context, id, postID string) error {
	pid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return common.ErrorNotFound
	}
	return r.updateByID(ctx, id, bson.M{"$pull": bson.M{"posts": pid}})
}

func (r *MongoRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return common.ErrorNotFound
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) List(ctx context.Context) ([]*models.User, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	result := make([]*models.User, 0, len(docs))
	for i := range docs {
		result = append(result, docs[i].toModel())
	}
	return result, nil
}
