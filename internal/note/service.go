package note

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fendylo/study-snap/internal/docstore"
	"github.com/fendylo/study-snap/internal/inference"
	"github.com/fendylo/study-snap/internal/media"
)

const askSystemPromptFormat = `You are a helpful study assistant.
Answer the user's question using only the note content below.
If the note does not contain the answer, say so briefly.

%s`

// Service implements note CRUD on top of the document store, image uploads
// through the media uploader, and note questions through the completion
// client.
type Service struct {
	store    *docstore.Store
	uploader media.Uploader
	client   inference.Client
}

func NewService(store *docstore.Store, uploader media.Uploader, client inference.Client) *Service {
	return &Service{
		store:    store,
		uploader: uploader,
		client:   client,
	}
}

// List returns all notes owned by the user.
func (service *Service) List(ctx context.Context, userID string) ([]Note, error) {
	notes, err := docstore.Query[Note](ctx, service.store, docstore.CollectionNotes, map[string]string{
		"userId": userID,
	})
	if err != nil {
		return nil, fmt.Errorf("query notes > %w", err)
	}
	return notes, nil
}

// Get returns a single note by id.
func (service *Service) Get(ctx context.Context, id string) (Note, error) {
	note, err := docstore.Get[Note](ctx, service.store, docstore.CollectionNotes, id)
	if err != nil {
		return Note{}, fmt.Errorf("docstore.Get > %w", err)
	}
	return note, nil
}

// Create inserts an empty note for the user and returns it.
func (service *Service) Create(ctx context.Context, userID string) (Note, error) {
	now := time.Now()
	newNote := Note{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     "",
		Content:   []ContentItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := service.store.Put(ctx, docstore.CollectionNotes, newNote.ID, newNote); err != nil {
		return Note{}, fmt.Errorf("store.Put > %w", err)
	}
	return newNote, nil
}

// Update rewrites the whole note with a refreshed update timestamp.
func (service *Service) Update(ctx context.Context, updated Note) (Note, error) {
	updated.UpdatedAt = time.Now()
	if _, err := service.store.Put(ctx, docstore.CollectionNotes, updated.ID, updated); err != nil {
		return Note{}, fmt.Errorf("store.Put > %w", err)
	}
	return updated, nil
}

// Delete removes the note.
func (service *Service) Delete(ctx context.Context, target Note) error {
	if err := service.store.Delete(ctx, docstore.CollectionNotes, target.ID); err != nil {
		return fmt.Errorf("store.Delete > %w", err)
	}
	return nil
}

// AppendText appends a free-text item to the note content and persists it.
func (service *Service) AppendText(ctx context.Context, target Note, text string) (Note, error) {
	target.Content = append(target.Content, ContentItem{Kind: ContentText, Value: text})
	updated, err := service.Update(ctx, target)
	if err != nil {
		return Note{}, fmt.Errorf("update note > %w", err)
	}
	return updated, nil
}

// AppendImage uploads the image, appends the returned reference URL to the
// note content, and persists the note.
func (service *Service) AppendImage(ctx context.Context, target Note, image []byte) (Note, error) {
	url, err := service.uploader.UploadImage(ctx, image)
	if err != nil {
		return Note{}, fmt.Errorf("uploader.UploadImage > %w", err)
	}

	target.Content = append(target.Content, ContentItem{Kind: ContentImage, Value: url})
	updated, err := service.Update(ctx, target)
	if err != nil {
		return Note{}, fmt.Errorf("update note > %w", err)
	}
	return updated, nil
}

// Ask forwards a question about the note to the completion client. The
// context is built from the text items only; a note with no text content
// still sends an empty context.
func (service *Service) Ask(ctx context.Context, target Note, question string) (string, error) {
	var builder strings.Builder
	if target.Title != "" {
		builder.WriteString("Title:" + target.Title + "\n")
	}
	builder.WriteString("Notes:" + strings.Join(target.TextContent(), "\n"))

	response, err := service.client.Complete(ctx, inference.CompleteRequest{
		SystemPrompt: fmt.Sprintf(askSystemPromptFormat, builder.String()),
		UserPrompt:   question,
	})
	if err != nil {
		return "", fmt.Errorf("client.Complete > %w", err)
	}
	return response.Content, nil
}
