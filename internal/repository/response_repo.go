package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"classpulse/internal/model"
)

// ResponseRepo exposes the feedback responses owned by the backend platform.
type ResponseRepo interface {
	// GetTextResponses returns free-text responses for a subject, newest
	// first. A nil periodStart means no lower bound.
	GetTextResponses(ctx context.Context, subjectID string, periodStart *time.Time) ([]model.TextResponse, error)

	// GetStarRatings returns the all-time star histogram for a subject.
	GetStarRatings(ctx context.Context, subjectID string) ([]model.StarRating, error)

	// ActiveSubjectIDs lists subjects with at least one response since the
	// given time.
	ActiveSubjectIDs(ctx context.Context, since time.Time) ([]string, error)
}

type responseRepo struct {
	collection *mongo.Collection
}

func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{
		collection: db.Collection("responses"),
	}
}

type responseDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	SubjectID   string             `bson:"subjectId"`
	Text        string             `bson:"text,omitempty"`
	Stars       int                `bson:"stars,omitempty"`
	SubmittedAt time.Time          `bson:"submittedAt"`
}

func (r *responseRepo) GetTextResponses(ctx context.Context, subjectID string, periodStart *time.Time) ([]model.TextResponse, error) {
	filter := bson.M{
		"subjectId": subjectID,
		"text":      bson.M{"$nin": bson.A{nil, ""}},
	}
	if periodStart != nil {
		filter["submittedAt"] = bson.M{"$gte": *periodStart}
	}

	opts := options.Find().SetSort(bson.M{"submittedAt": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []responseDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	responses := make([]model.TextResponse, len(docs))
	for i, d := range docs {
		responses[i] = model.TextResponse{
			ResponseID:  d.ID.Hex(),
			SubjectID:   d.SubjectID,
			Text:        d.Text,
			SubmittedAt: d.SubmittedAt,
		}
	}
	return responses, nil
}

func (r *responseRepo) GetStarRatings(ctx context.Context, subjectID string) ([]model.StarRating, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"subjectId": subjectID,
			"stars":     bson.M{"$gte": 1, "$lte": 5},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$stars",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Stars int `bson:"_id"`
		Count int `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	ratings := make([]model.StarRating, len(rows))
	for i, row := range rows {
		ratings[i] = model.StarRating{Stars: row.Stars, Count: row.Count}
	}
	return ratings, nil
}

func (r *responseRepo) ActiveSubjectIDs(ctx context.Context, since time.Time) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "subjectId", bson.M{
		"submittedAt": bson.M{"$gte": since},
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
