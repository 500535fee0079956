package repository

import (
	"context"
	"errors"

	"github.com/sitecraft/sitecraft/backend/go-services/internal/site"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SitesCollection   = "sites"
	HistoryCollection = "site_history"
)

// MongoSiteRepo stores sites keyed by their string id in _id.
type MongoSiteRepo struct {
	col *mongo.Collection
}

func NewMongoSiteRepo(ctx context.Context, db *mongo.Database) (*MongoSiteRepo, error) {
	col := db.Collection(SitesCollection)
	idx := mongo.IndexModel{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "updatedAt", Value: -1}}}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, err
	}
	return &MongoSiteRepo{col: col}, nil
}

func (m *MongoSiteRepo) Create(ctx context.Context, s *site.Site) error {
	_, err := m.col.InsertOne(ctx, s)
	return err
}

func (m *MongoSiteRepo) Get(ctx context.Context, id string) (*site.Site, error) {
	var s site.Site
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (m *MongoSiteRepo) ListByOwner(ctx context.Context, ownerID string) ([]*site.Site, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	out := []*site.Site{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies every set field of u with one FindOneAndUpdate.
func (m *MongoSiteRepo) Update(ctx context.Context, id string, u site.Update) (*site.Site, error) {
	set := bson.M{"updatedAt": u.UpdatedAt}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.DraftContent != nil {
		set["draftContent"] = *u.DraftContent
	}
	if u.PublishedContent != nil {
		set["publishedContent"] = *u.PublishedContent
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var s site.Site
	err := m.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// MongoHistoryRepo stores history entries in a flat collection, scoped by siteId.
type MongoHistoryRepo struct {
	col *mongo.Collection
}

func NewMongoHistoryRepo(ctx context.Context, db *mongo.Database) (*MongoHistoryRepo, error) {
	col := db.Collection(HistoryCollection)
	idx := mongo.IndexModel{Keys: bson.D{{Key: "siteId", Value: 1}, {Key: "savedAt", Value: -1}, {Key: "_id", Value: -1}}}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, err
	}
	return &MongoHistoryRepo{col: col}, nil
}

func (m *MongoHistoryRepo) Append(ctx context.Context, e *site.HistoryEntry) error {
	_, err := m.col.InsertOne(ctx, e)
	return err
}

func historySort() bson.D {
	return bson.D{{Key: "savedAt", Value: -1}, {Key: "_id", Value: -1}}
}

func (m *MongoHistoryRepo) Latest(ctx context.Context, siteID string) (*site.HistoryEntry, error) {
	var e site.HistoryEntry
	err := m.col.FindOne(ctx, bson.M{"siteId": siteID}, options.FindOne().SetSort(historySort())).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (m *MongoHistoryRepo) List(ctx context.Context, siteID string) ([]*site.HistoryEntry, error) {
	cur, err := m.col.Find(ctx, bson.M{"siteId": siteID}, options.Find().SetSort(historySort()))
	if err != nil {
		return nil, err
	}
	out := []*site.HistoryEntry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoHistoryRepo) Get(ctx context.Context, siteID, id string) (*site.HistoryEntry, error) {
	var e site.HistoryEntry
	err := m.col.FindOne(ctx, bson.M{"_id": id, "siteId": siteID}).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}
