package services

import (
	"context"
	"fmt"

	"github.com/abuildsit/borrowlog/internal/blob"
	"github.com/abuildsit/borrowlog/internal/models"
	"github.com/abuildsit/borrowlog/internal/repository"
)

// ProfileService handles profile-related business logic
type ProfileService struct {
	profileRepo *repository.ProfileRepository
	blob        blob.Uploader
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo *repository.ProfileRepository, uploader blob.Uploader) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		blob:        uploader,
	}
}

// Get returns the user's profile.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	return s.profileRepo.Get(ctx, userID)
}

// Register creates the profile for a newly authenticated user. Done
// once; a second attempt for the same id fails with a constraint error.
func (s *ProfileService) Register(ctx context.Context, userID string, displayName *string) (*models.Profile, error) {
	return s.profileRepo.Create(ctx, userID, displayName)
}

// Update applies a partial update to the user's own profile.
func (s *ProfileService) Update(ctx context.Context, userID string, u repository.ProfileUpdate) (*models.Profile, error) {
	return s.profileRepo.Update(ctx, userID, u)
}

// UpdateAvatar uploads a new avatar image and points the profile at it.
func (s *ProfileService) UpdateAvatar(ctx context.Context, userID string, image []byte, contentType string) (*models.Profile, error) {
	url, err := s.blob.Upload(ctx, fmt.Sprintf("avatars/%s.jpg", userID), contentTypeOrJPEG(contentType), image)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}
	return s.profileRepo.Update(ctx, userID, repository.ProfileUpdate{AvatarURL: &url})
}
