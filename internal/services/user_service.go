package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/studytrack/studytrack-backend/internal/models"
	"github.com/studytrack/studytrack-backend/internal/repository"
	"github.com/studytrack/studytrack-backend/pkg/email"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo        *repository.UserRepository
	goalService *GoalService
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo *repository.UserRepository, goalService *GoalService) *UserService {
	return &UserService{
		repo:        repo,
		goalService: goalService,
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// RegisterUser registers a new user after hashing their password, then sets
// up the four default category goals for the account.
func (s *UserService) RegisterUser(ctx context.Context, user *models.User) (*models.User, error) {
	logrus.Info("Registering new user")

	if user.Email == "" || user.Username == "" || user.HashedPassword == "" {
		logrus.Warn("Missing required fields during registration")
		return nil, fmt.Errorf("missing required user fields")
	}

	if !emailRegex.MatchString(user.Email) {
		logrus.WithField("email", user.Email).Warn("Invalid email format during registration")
		return nil, fmt.Errorf("invalid email format")
	}

	// Check if the email is already registered
	existingUser, _ := s.repo.GetUserByEmail(ctx, user.Email)
	if existingUser != nil {
		logrus.WithField("email", user.Email).Warn("Email already in use")
		return nil, fmt.Errorf("email already in use")
	}

	existingUser, _ = s.repo.GetUserByUsername(ctx, user.Username)
	if existingUser != nil {
		logrus.WithField("username", user.Username).Warn("Username already in use")
		return nil, fmt.Errorf("username already in use")
	}

	// Hash the user's password.
	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(user.HashedPassword), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user.HashedPassword = string(hashedPwd)
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	if user.Role == "" {
		user.Role = "user"
	}

	verificationToken := uuid.NewString()
	user.VerifyToken = verificationToken
	user.IsVerified = false

	// Create the user in the repository.
	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, fmt.Errorf("failed to register user: %v", err)
	}

	// Every account starts with one goal per study category.
	if err := s.goalService.CreateDefaultGoals(ctx, createdUser.ID); err != nil {
		logrus.WithError(err).Error("Failed to create default goals for new user")
		return nil, err
	}

	verificationLink := fmt.Sprintf("http://localhost:8080/users/verify?token=%s", verificationToken)
	emailBody := fmt.Sprintf("Welcome to StudyTrack!\n\nPlease verify your email by clicking the link below:\n%s", verificationLink)

	if err := email.SendEmail(user.Email, "Email Verification", emailBody); err != nil {
		logrus.WithError(err).Error("Failed to send verification email")
		return nil, fmt.Errorf("failed to send verification email")
	}

	logrus.WithFields(logrus.Fields{
		"userID": createdUser.ID.Hex(),
		"role":   createdUser.Role,
	}).Info("User registered successfully")

	return createdUser, nil
}

// VerifyEmail marks an account verified given its verification token.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.repo.GetUserByVerificationToken(ctx, token)
	if err != nil {
		return fmt.Errorf("invalid or expired verification token")
	}

	update := map[string]interface{}{
		"is_verified":  true,
		"verify_token": "",
		"updated_at":   time.Now(),
	}

	_, err = s.repo.UpdateUser(ctx, user.ID, update)
	if err != nil {
		return fmt.Errorf("failed to update user verification status: %v", err)
	}

	return nil
}

// AuthenticateUser checks the credentials and returns the user on success.
func (s *UserService) AuthenticateUser(ctx context.Context, emailAddr, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", emailAddr).Warn("Password mismatch during login")
		return nil, fmt.Errorf("invalid credentials")
	}

	return user, nil
}

// GetUser retrieves a user by their hex ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}

	user, err := s.repo.GetUserByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}

	return user, nil
}

// UpdateUser applies a partial profile update.
func (s *UserService) UpdateUser(ctx context.Context, id string, update map[string]interface{}) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}

	update["updated_at"] = time.Now()

	user, err := s.repo.UpdateUser(ctx, objID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %v", err)
	}

	return user, nil
}

// UpdateLastActive stamps the user's last activity time.
func (s *UserService) UpdateLastActive(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.UpdateLastActive(ctx, id)
}

// GetAllUsers returns every user; admin only.
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.GetAllUsers(ctx)
}
