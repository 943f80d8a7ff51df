package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pkordes/yelp-camp/internal/domain"
)

// Collection names used by the MongoDB implementation.
const (
	campgroundsCollection = "campgrounds"
	reviewsCollection     = "reviews"
	usersCollection       = "users"
)

// campgroundDoc is the stored shape of a campground document.
// Ids are UUID strings so both stores share the same identifiers.
type campgroundDoc struct {
	ID          string     `bson:"_id"`
	Title       string     `bson:"title"`
	Location    string     `bson:"location"`
	Description string     `bson:"description"`
	Price       float64    `bson:"price"`
	Geometry    pointDoc   `bson:"geometry"`
	Images      []imageDoc `bson:"images"`
	Author      string     `bson:"author"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

// pointDoc is a GeoJSON point, which lets the collection carry a 2dsphere index.
type pointDoc struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

type imageDoc struct {
	URL      string `bson:"url"`
	Filename string `bson:"filename"`
}

type reviewDoc struct {
	ID           string    `bson:"_id"`
	CampgroundID string    `bson:"campground_id"`
	Author       string    `bson:"author"`
	Body         string    `bson:"body"`
	Rating       int       `bson:"rating"`
	CreatedAt    time.Time `bson:"created_at"`
}

type userDoc struct {
	ID       string `bson:"_id"`
	Username string `bson:"username"`
}

// mongoCampgroundRepo is the MongoDB implementation of CampgroundRepo.
type mongoCampgroundRepo struct {
	camps   *mongo.Collection
	reviews *mongo.Collection
	users   *mongo.Collection
}

// NewMongoCampgroundRepo constructs a CampgroundRepo over the campgrounds,
// reviews and users collections of database.
func NewMongoCampgroundRepo(database *mongo.Database) CampgroundRepo {
	return &mongoCampgroundRepo{
		camps:   database.Collection(campgroundsCollection),
		reviews: database.Collection(reviewsCollection),
		users:   database.Collection(usersCollection),
	}
}

// Create inserts a new campground document with a fresh id.
func (r *mongoCampgroundRepo) Create(ctx context.Context, c domain.Campground) (domain.Campground, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	c.ID = uuid.New()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := r.camps.InsertOne(ctx, toCampgroundDoc(c)); err != nil {
		return domain.Campground{}, fmt.Errorf("repo.MongoCampgroundRepo.Create: %w", err)
	}
	if c.Images == nil {
		c.Images = []domain.Image{}
	}
	c.Author, c.Reviews = nil, nil
	return c, nil
}

// GetByID finds a campground document by id.
func (r *mongoCampgroundRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Campground, error) {
	c, err := r.findOne(ctx, id)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.MongoCampgroundRepo.GetByID: %w", err)
	}
	return c, nil
}

func (r *mongoCampgroundRepo) findOne(ctx context.Context, id uuid.UUID) (domain.Campground, error) {
	var doc campgroundDoc
	err := r.camps.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Campground{}, domain.ErrNotFound
		}
		return domain.Campground{}, err
	}
	return fromCampgroundDoc(doc)
}

// GetDetail finds a campground and expands its author and reviews.
func (r *mongoCampgroundRepo) GetDetail(ctx context.Context, id uuid.UUID) (domain.Campground, error) {
	c, err := r.findOne(ctx, id)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.MongoCampgroundRepo.GetDetail: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.reviews.Find(ctx, bson.M{"campground_id": id.String()}, opts)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.MongoCampgroundRepo.GetDetail: reviews: %w", err)
	}
	var reviews []reviewDoc
	if err := cur.All(ctx, &reviews); err != nil {
		return domain.Campground{}, fmt.Errorf("repo.MongoCampgroundRepo.GetDetail: reviews: %w", err)
	}

	userIDs := []string{c.AuthorID.String()}
	for _, rv := range reviews {
		userIDs = append(userIDs, rv.Author)
	}
	users, err := r.usersByID(ctx, userIDs)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.MongoCampgroundRepo.GetDetail: users: %w", err)
	}

	if author, ok := users[c.AuthorID.String()]; ok {
		c.Author = &author
	}
	c.Reviews = make([]domain.Review, 0, len(reviews))
	for _, doc := range reviews {
		rid, err := uuid.Parse(doc.ID)
		if err != nil {
			return domain.Campground{}, fmt.Errorf("repo.MongoCampgroundRepo.GetDetail: review id: %w", err)
		}
		rv := domain.Review{ID: rid, Body: doc.Body, Rating: doc.Rating, CreatedAt: doc.CreatedAt}
		if u, ok := users[doc.Author]; ok {
			rv.Author = u
		}
		c.Reviews = append(c.Reviews, rv)
	}
	return c, nil
}

// usersByID loads the named users, keyed by id string.
func (r *mongoCampgroundRepo) usersByID(ctx context.Context, ids []string) (map[string]domain.User, error) {
	cur, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make(map[string]domain.User, len(docs))
	for _, d := range docs {
		uid, err := uuid.Parse(d.ID)
		if err != nil {
			return nil, fmt.Errorf("user id %q: %w", d.ID, err)
		}
		out[d.ID] = domain.User{ID: uid, Username: d.Username}
	}
	return out, nil
}

// List returns every campground document, oldest first.
func (r *mongoCampgroundRepo) List(ctx context.Context) ([]domain.Campground, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.camps.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("repo.MongoCampgroundRepo.List: %w", err)
	}
	var docs []campgroundDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("repo.MongoCampgroundRepo.List: decode: %w", err)
	}

	camps := make([]domain.Campground, 0, len(docs))
	for _, d := range docs {
		c, err := fromCampgroundDoc(d)
		if err != nil {
			return nil, fmt.Errorf("repo.MongoCampgroundRepo.List: %w", err)
		}
		camps = append(camps, c)
	}
	return camps, nil
}

// Update sets the scalar fields and returns the updated document.
func (r *mongoCampgroundRepo) Update(ctx context.Context, id uuid.UUID, in domain.CampgroundInput) (domain.Campground, error) {
	update := bson.M{"$set": bson.M{
		"title":       in.Title,
		"location":    in.Location,
		"description": in.Description,
		"price":       in.Price,
		"updated_at":  time.Now().UTC().Truncate(time.Millisecond),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc campgroundDoc
	err := r.camps.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Campground{}, fmt.Errorf("repo.MongoCampgroundRepo.Update: %w", domain.ErrNotFound)
		}
		return domain.Campground{}, fmt.Errorf("repo.MongoCampgroundRepo.Update: %w", err)
	}
	c, err := fromCampgroundDoc(doc)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.MongoCampgroundRepo.Update: %w", err)
	}
	return c, nil
}

// AppendImages pushes images onto the end of the images array.
func (r *mongoCampgroundRepo) AppendImages(ctx context.Context, id uuid.UUID, images []domain.Image) error {
	if len(images) == 0 {
		return nil
	}
	update := bson.M{"$push": bson.M{"images": bson.M{"$each": toImageDocs(images)}}}

	res, err := r.camps.UpdateOne(ctx, bson.M{"_id": id.String()}, update)
	if err != nil {
		return fmt.Errorf("repo.MongoCampgroundRepo.AppendImages: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("repo.MongoCampgroundRepo.AppendImages: %w", domain.ErrNotFound)
	}
	return nil
}

// RemoveImages pulls every image whose filename is listed.
func (r *mongoCampgroundRepo) RemoveImages(ctx context.Context, id uuid.UUID, filenames []string) error {
	if len(filenames) == 0 {
		return nil
	}
	update := bson.M{"$pull": bson.M{"images": bson.M{"filename": bson.M{"$in": filenames}}}}

	if _, err := r.camps.UpdateOne(ctx, bson.M{"_id": id.String()}, update); err != nil {
		return fmt.Errorf("repo.MongoCampgroundRepo.RemoveImages: %w", err)
	}
	return nil
}

// Delete removes the campground document and the reviews that point at it.
func (r *mongoCampgroundRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Campground, error) {
	var doc campgroundDoc
	err := r.camps.FindOneAndDelete(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Campground{}, fmt.Errorf("repo.MongoCampgroundRepo.Delete: %w", domain.ErrNotFound)
		}
		return domain.Campground{}, fmt.Errorf("repo.MongoCampgroundRepo.Delete: %w", err)
	}
	if _, err := r.reviews.DeleteMany(ctx, bson.M{"campground_id": id.String()}); err != nil {
		return domain.Campground{}, fmt.Errorf("repo.MongoCampgroundRepo.Delete: reviews: %w", err)
	}

	c, err := fromCampgroundDoc(doc)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.MongoCampgroundRepo.Delete: %w", err)
	}
	return c, nil
}

// mongoUserRepo is the MongoDB implementation of UserRepo.
type mongoUserRepo struct {
	users *mongo.Collection
}

// NewMongoUserRepo constructs a UserRepo over the users collection of database.
func NewMongoUserRepo(database *mongo.Database) UserRepo {
	return &mongoUserRepo{users: database.Collection(usersCollection)}
}

// Upsert stores the user document keyed by id.
func (r *mongoUserRepo) Upsert(ctx context.Context, u domain.User) error {
	_, err := r.users.UpdateOne(ctx,
		bson.M{"_id": u.ID.String()},
		bson.M{"$set": bson.M{"username": u.Username}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("repo.MongoUserRepo.Upsert: %w", err)
	}
	return nil
}

// EnsureMongoIndexes creates the indexes the campground queries rely on.
func EnsureMongoIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(campgroundsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "geometry", Value: "2dsphere"}}},
	})
	if err != nil {
		return fmt.Errorf("repo.EnsureMongoIndexes: campgrounds: %w", err)
	}
	_, err = database.Collection(reviewsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "campground_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("repo.EnsureMongoIndexes: reviews: %w", err)
	}
	return nil
}

func toCampgroundDoc(c domain.Campground) campgroundDoc {
	return campgroundDoc{
		ID:          c.ID.String(),
		Title:       c.Title,
		Location:    c.Location,
		Description: c.Description,
		Price:       c.Price,
		Geometry:    pointDoc{Type: "Point", Coordinates: []float64{c.Geometry.Lon(), c.Geometry.Lat()}},
		Images:      toImageDocs(c.Images),
		Author:      c.AuthorID.String(),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toImageDocs(images []domain.Image) []imageDoc {
	out := make([]imageDoc, 0, len(images))
	for _, img := range images {
		out = append(out, imageDoc{URL: img.URL, Filename: img.Filename})
	}
	return out
}

func fromCampgroundDoc(d campgroundDoc) (domain.Campground, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("campground id %q: %w", d.ID, err)
	}
	author, err := uuid.Parse(d.Author)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("campground %s author %q: %w", d.ID, d.Author, err)
	}

	c := domain.Campground{
		ID:          id,
		Title:       d.Title,
		Location:    d.Location,
		Description: d.Description,
		Price:       d.Price,
		AuthorID:    author,
		Images:      make([]domain.Image, 0, len(d.Images)),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if len(d.Geometry.Coordinates) >= 2 {
		c.Geometry = orb.Point{d.Geometry.Coordinates[0], d.Geometry.Coordinates[1]}
	}
	for _, img := range d.Images {
		c.Images = append(c.Images, domain.Image{URL: img.URL, Filename: img.Filename})
	}
	return c, nil
}
