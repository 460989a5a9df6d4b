package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AI response kinds, one per assistant surface. The first four mirror the
// goal categories; "summary" is the generic summarization endpoint.
const (
	AIKindDSA          = "dsa"
	AIKindDevelopment  = "development"
	AIKindSystemDesign = "system_design"
	AIKindJobSearch    = "job_search"
	AIKindSummary      = "summary"
)

// AIResponse stores one generated answer so it can be re-read without
// hitting the provider again.
type AIResponse struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Kind      string             `bson:"kind" json:"kind"`
	Topic     string             `bson:"topic" json:"topic"`
	Prompt    string             `bson:"prompt" json:"-"`
	Response  string             `bson:"response" json:"response"`
	Model     string             `bson:"model" json:"model"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
