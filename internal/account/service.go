package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fendylo/study-snap/internal/docstore"
	"github.com/fendylo/study-snap/internal/localstore"
)

var (
	// ErrEmailTaken is returned when signing up with an email that is
	// already registered.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrInvalidCredentials is returned when sign-in fails.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// currentUserKey is the local cache key for the signed-in user snapshot.
const currentUserKey = "currentUser"

// Service owns sign-up, sign-in and profile management. The current user is
// cached in the local store for offline reference; the cache has no TTL and
// may go stale relative to the backing store.
type Service struct {
	store *docstore.Store
	local *localstore.Store
}

func NewService(store *docstore.Store, local *localstore.Store) *Service {
	return &Service{
		store: store,
		local: local,
	}
}

// SignUp registers a new account and returns the created profile.
func (service *Service) SignUp(ctx context.Context, email, password, name, educationMajor string) (User, error) {
	existing, err := docstore.Query[userRecord](ctx, service.store, docstore.CollectionUsers, map[string]string{
		"email": email,
	})
	if err != nil {
		return User{}, fmt.Errorf("query users by email > %w", err)
	}
	if len(existing) > 0 {
		return User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("bcrypt.GenerateFromPassword > %w", err)
	}

	record := userRecord{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   string(hash),
		Name:           name,
		EducationMajor: educationMajor,
		JoinedDate:     time.Now(),
	}
	if _, err := service.store.Put(ctx, docstore.CollectionUsers, record.ID, record); err != nil {
		return User{}, fmt.Errorf("store.Put > %w", err)
	}

	user := record.user()
	service.cacheCurrentUser(user)
	return user, nil
}

// SignIn verifies the credentials and returns the stored profile.
func (service *Service) SignIn(ctx context.Context, email, password string) (User, error) {
	records, err := docstore.Query[userRecord](ctx, service.store, docstore.CollectionUsers, map[string]string{
		"email": email,
	})
	if err != nil {
		return User{}, fmt.Errorf("query users by email > %w", err)
	}
	if len(records) == 0 {
		return User{}, ErrInvalidCredentials
	}

	record := records[0]
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	user := record.user()
	service.cacheCurrentUser(user)
	return user, nil
}

// SignOut drops the locally cached user snapshot.
func (service *Service) SignOut() error {
	if err := service.local.Remove(currentUserKey); err != nil {
		return fmt.Errorf("local.Remove > %w", err)
	}
	return nil
}

// CurrentUser loads the profile document for an authenticated identity.
// When the document is missing or undecodable it degrades instead of
// failing: first to the locally cached snapshot, then to a minimal profile
// built from the identity itself.
func (service *Service) CurrentUser(ctx context.Context, identity Identity) User {
	record, err := docstore.Get[userRecord](ctx, service.store, docstore.CollectionUsers, identity.UserID)
	if err == nil {
		user := record.user()
		service.cacheCurrentUser(user)
		return user
	}
	slog.Default().Warn("falling back from user profile document",
		"userID", identity.UserID,
		"error", err,
	)

	if cached, cacheErr := localstore.Get[User](service.local, currentUserKey); cacheErr == nil && cached.ID == identity.UserID {
		return cached
	}
	return User{
		ID:    identity.UserID,
		Email: identity.Email,
	}
}

// UpdateProfile changes the mutable profile fields.
func (service *Service) UpdateProfile(ctx context.Context, userID, name, educationMajor string) (User, error) {
	err := service.store.MergeFields(ctx, docstore.CollectionUsers, userID, map[string]any{
		"name":           name,
		"educationMajor": educationMajor,
	})
	if err != nil {
		return User{}, fmt.Errorf("store.MergeFields > %w", err)
	}

	record, err := docstore.Get[userRecord](ctx, service.store, docstore.CollectionUsers, userID)
	if err != nil {
		return User{}, fmt.Errorf("docstore.Get > %w", err)
	}

	user := record.user()
	service.cacheCurrentUser(user)
	return user, nil
}

// cacheCurrentUser is best effort: a cache write failure never fails the
// operation that triggered it.
func (service *Service) cacheCurrentUser(user User) {
	if err := service.local.Set(currentUserKey, user); err != nil {
		slog.Default().Warn("failed to cache current user", "userID", user.ID, "error", err)
	}
}
