package posts

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

// postDocument is the BSON layout of the posts collection. Likes holds user
// IDs in hex form.
type postDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	User      primitive.ObjectID `bson:"user"`
	Content   string             `bson:"content"`
	Likes     []string           `bson:"likes"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *postDocument) toModel() *models.Post {
	likes := d.Likes
	if likes == nil {
		likes = []string{}
	}
	return &models.Post{
		ID:        d.ID.Hex(),
		UserID:    d.User.Hex(),
		Content:   d.Content,
		Likes:     likes,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(common.PostsCollection)}
}

// EnsureIndexes creates the owner index used by ListByOwner.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	owner, err := primitive.ObjectIDFromHex(post.UserID)
	if err != nil {
		return nil, common.ErrorNotFound
	}

	now := time.Now().UTC()
	doc := &postDocument{
		User:      owner,
		Content:   post.Content,
		Likes:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("db error: unexpected id type %T", res.InsertedID)
	}

	post.ID = oid.Hex()
	post.Likes = []string{}
	post.CreatedAt = now
	post.UpdatedAt = now
	return post, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrorNotFound
	}
	return decodeOne(r.coll.FindOne(ctx, bson.M{"_id": oid}))
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrorNotFound
	}
	return decodeOne(r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}))
}

func decodeOne(res *mongo.SingleResult) (*models.Post, error) {
	var doc postDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) UpdateContent(ctx context.Context, id, content string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return common.ErrorNotFound
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// toggleLikePipeline flips membership of userID in likes server-side, so
// concurrent toggles never lose an update.
func toggleLikePipeline(userID string) mongo.Pipeline {
	likes := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "likes", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$in", Value: bson.A{userID, likes}}},
			bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: likes},
				{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", userID}}}},
			}}},
			bson.D{{Key: "$concatArrays", Value: bson.A{likes, bson.A{userID}}}},
		}}}}}}},
	}
}

func (r *MongoRepository) ToggleLike(ctx context.Context, id, userID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, common.ErrorNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	post, err := decodeOne(r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, toggleLikePipeline(userID), opts))
	if err != nil {
		return false, err
	}
	return post.LikedBy(userID), nil
}

func (r *MongoRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Post, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []*models.Post{}, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"user": owner}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	var docs []postDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	result := make([]*models.Post, 0, len(docs))
	for i := range docs {
		result = append(result, docs[i].toModel())
	}
	return result, nil
}

func (r *MongoRepository) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []string{}, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	result := []string{}
	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, doc.ID.Hex())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
