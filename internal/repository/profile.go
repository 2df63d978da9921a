package repository

import (
	"context"
	"fmt"

	"github.com/abuildsit/borrowlog/internal/models"
	"github.com/abuildsit/borrowlog/internal/store"
)

// ProfileRepository handles store operations for profiles
type ProfileRepository struct {
	store store.Client
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(st store.Client) *ProfileRepository {
	return &ProfileRepository{store: st}
}

// ProfileUpdate carries a partial update; nil fields are left unchanged.
type ProfileUpdate struct {
	DisplayName *string
	AvatarURL   *string
}

// Create inserts the profile for a user id. Profiles are created once,
// at registration; the id is the authenticated user's id, not generated.
func (r *ProfileRepository) Create(ctx context.Context, userID string, displayName *string) (*models.Profile, error) {
	rec := store.Record{"id": userID}
	if displayName != nil {
		rec["display_name"] = *displayName
	}

	created, err := r.store.Create(ctx, CollectionProfiles, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return profileFromRecord(created), nil
}

// Get retrieves a profile by user ID
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	rec, err := r.store.FetchOne(ctx, CollectionProfiles, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profileFromRecord(rec), nil
}

// Update applies a partial update to a profile.
func (r *ProfileRepository) Update(ctx context.Context, userID string, u ProfileUpdate) (*models.Profile, error) {
	rec := store.Record{}
	if u.DisplayName != nil {
		rec["display_name"] = *u.DisplayName
	}
	if u.AvatarURL != nil {
		rec["avatar_url"] = *u.AvatarURL
	}

	updated, err := r.store.Update(ctx, CollectionProfiles, userID, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profileFromRecord(updated), nil
}

func profileFromRecord(rec store.Record) *models.Profile {
	return &models.Profile{
		ID:          asString(rec["id"]),
		DisplayName: asStringPtr(rec["display_name"]),
		AvatarURL:   asStringPtr(rec["avatar_url"]),
		CreatedAt:   asTime(rec["created_at"]),
		UpdatedAt:   asTime(rec["updated_at"]),
	}
}
