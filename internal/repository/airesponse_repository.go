package repository

import (
	"context"
	"time"

	"github.com/studytrack/studytrack-backend/internal/models"
	"github.com/studytrack/studytrack-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AIResponseRepository handles database operations for stored AI answers
type AIResponseRepository struct {
	collection *mongo.Collection
}

// NewAIResponseRepository creates a new instance of AIResponseRepository
func NewAIResponseRepository(db *mongo.Database) *AIResponseRepository {
	return &AIResponseRepository{
		collection: db.Collection("ai_responses"),
	}
}

// CreateResponse stores a freshly generated answer
func (r *AIResponseRepository) CreateResponse(ctx context.Context, resp *models.AIResponse) (*models.AIResponse, error) {
	resp.CreatedAt = time.Now()
	resp.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, resp)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert AI response")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted ID")
		return nil, err
	}
	resp.ID = insertedID

	logger.Log.WithFields(map[string]interface{}{
		"response_id": resp.ID.Hex(),
		"kind":        resp.Kind,
	}).Info("AI response stored")
	return resp, nil
}

// GetResponseByID fetches a stored answer by its ID
func (r *AIResponseRepository) GetResponseByID(ctx context.Context, id primitive.ObjectID) (*models.AIResponse, error) {
	var resp models.AIResponse

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&resp)
	if err != nil {
		logger.Log.WithError(err).WithField("response_id", id.Hex()).Error("Failed to find AI response")
		return nil, err
	}

	return &resp, nil
}

// GetResponses lists a user's stored answers of one kind, newest first
func (r *AIResponseRepository) GetResponses(ctx context.Context, userID primitive.ObjectID, kind string) ([]models.AIResponse, error) {
	filter := bson.M{"user_id": userID, "kind": kind}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch AI responses")
		return nil, err
	}
	defer cursor.Close(ctx)

	var responses []models.AIResponse
	for cursor.Next(ctx) {
		var resp models.AIResponse
		if err := cursor.Decode(&resp); err != nil {
			logger.Log.WithError(err).Error("Failed to decode AI response")
			return nil, err
		}
		responses = append(responses, resp)
	}

	return responses, nil
}

// UpdateResponse replaces the stored answer text after a regeneration
func (r *AIResponseRepository) UpdateResponse(ctx context.Context, id primitive.ObjectID, prompt, response string) error {
	update := bson.M{"$set": bson.M{
		"prompt":     prompt,
		"response":   response,
		"updated_at": time.Now(),
	}}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		logger.Log.WithError(err).WithField("response_id", id.Hex()).Error("Failed to update AI response")
		return err
	}

	return nil
}

// DeleteResponse removes a stored answer
func (r *AIResponseRepository) DeleteResponse(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Log.WithError(err).WithField("response_id", id.Hex()).Error("Failed to delete AI response")
		return err
	}

	logger.Log.WithField("response_id", id.Hex()).Info("AI response deleted")
	return nil
}
