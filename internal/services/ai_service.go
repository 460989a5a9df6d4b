package services

import (
	"context"
	"fmt"

	"github.com/studytrack/studytrack-backend/internal/ai"
	"github.com/studytrack/studytrack-backend/internal/models"
	"github.com/studytrack/studytrack-backend/internal/repository"
	"github.com/studytrack/studytrack-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AIService generates answers through the AI client and stores them so the
// frontend can re-read them without another provider call.
type AIService struct {
	repo   *repository.AIResponseRepository
	client *ai.Client
}

// NewAIService creates a new instance of AIService.
func NewAIService(repo *repository.AIResponseRepository, client *ai.Client) *AIService {
	return &AIService{
		repo:   repo,
		client: client,
	}
}

// Generate builds the prompts for a kind/topic pair, calls the provider, and
// stores the answer.
func (s *AIService) Generate(ctx context.Context, userID primitive.ObjectID, kind, topic, extra string) (*models.AIResponse, error) {
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	systemPrompt, err := ai.SystemPromptFor(kind)
	if err != nil {
		return nil, err
	}
	userPrompt := ai.BuildUserPrompt(kind, topic, extra)

	answer, err := s.client.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		logger.Log.WithError(err).WithField("kind", kind).Error("AI generation failed")
		return nil, fmt.Errorf("failed to generate response: %v", err)
	}

	resp := &models.AIResponse{
		UserID:   userID,
		Kind:     kind,
		Topic:    topic,
		Prompt:   userPrompt,
		Response: answer,
		Model:    s.client.Model(),
	}

	stored, err := s.repo.CreateResponse(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("failed to store response: %v", err)
	}

	return stored, nil
}

// Regenerate replaces the stored answer for an existing response.
func (s *AIService) Regenerate(ctx context.Context, id string, userID primitive.ObjectID) (*models.AIResponse, error) {
	resp, err := s.getOwnedResponse(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	systemPrompt, err := ai.SystemPromptFor(resp.Kind)
	if err != nil {
		return nil, err
	}
	userPrompt := ai.BuildUserPrompt(resp.Kind, resp.Topic, "")

	answer, err := s.client.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		logger.Log.WithError(err).WithField("kind", resp.Kind).Error("AI regeneration failed")
		return nil, fmt.Errorf("failed to regenerate response: %v", err)
	}

	if err := s.repo.UpdateResponse(ctx, resp.ID, userPrompt, answer); err != nil {
		return nil, fmt.Errorf("failed to store regenerated response: %v", err)
	}

	resp.Prompt = userPrompt
	resp.Response = answer
	return resp, nil
}

// List returns a user's stored answers of one kind.
func (s *AIService) List(ctx context.Context, userID primitive.ObjectID, kind string) ([]models.AIResponse, error) {
	if _, err := ai.SystemPromptFor(kind); err != nil {
		return nil, err
	}
	return s.repo.GetResponses(ctx, userID, kind)
}

// Delete removes a stored answer, enforcing ownership.
func (s *AIService) Delete(ctx context.Context, id string, userID primitive.ObjectID) error {
	resp, err := s.getOwnedResponse(ctx, id, userID)
	if err != nil {
		return err
	}
	return s.repo.DeleteResponse(ctx, resp.ID)
}

func (s *AIService) getOwnedResponse(ctx context.Context, id string, userID primitive.ObjectID) (*models.AIResponse, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid response ID: %v", err)
	}

	resp, err := s.repo.GetResponseByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("response not found: %v", err)
	}

	if resp.UserID != userID {
		return nil, fmt.Errorf("response does not belong to this user")
	}

	return resp, nil
}
