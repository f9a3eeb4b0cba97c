package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fendylo/study-snap/internal/docstore"
	"github.com/fendylo/study-snap/internal/note"
	"github.com/fendylo/study-snap/internal/quiz"
)

// maxImageBytes caps uploaded note images at 10 MiB.
const maxImageBytes = 10 << 20

// NoteHandler serves the note endpoints, including content appends,
// questions about a note, and quiz generation from a note.
type NoteHandler struct {
	logger    *slog.Logger
	notes     *note.Service
	generator *quiz.Generator
}

func NewNoteHandler(logger *slog.Logger, notes *note.Service, generator *quiz.Generator) *NoteHandler {
	return &NoteHandler{
		logger:    logger.With("handler", "NoteHandler"),
		notes:     notes,
		generator: generator,
	}
}

// GET /api/notes
func (handler *NoteHandler) List(c *gin.Context) {
	identity := identityFromContext(c)
	notes, err := handler.notes.List(c.Request.Context(), identity.UserID)
	if err != nil {
		handler.logger.Error("failed to list notes", "userID", identity.UserID, "error", err)
		respondServiceError(c, err)
		return
	}
	if notes == nil {
		notes = []note.Note{}
	}
	c.JSON(http.StatusOK, notes)
}

// POST /api/notes
func (handler *NoteHandler) Create(c *gin.Context) {
	identity := identityFromContext(c)
	created, err := handler.notes.Create(c.Request.Context(), identity.UserID)
	if err != nil {
		handler.logger.Error("failed to create note", "userID", identity.UserID, "error", err)
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GET /api/notes/:id
func (handler *NoteHandler) Get(c *gin.Context) {
	owned, ok := handler.ownedNote(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, owned)
}

type updateNoteRequest struct {
	Title   string             `json:"title"`
	Content []note.ContentItem `json:"content"`
}

// PUT /api/notes/:id
func (handler *NoteHandler) Update(c *gin.Context) {
	owned, ok := handler.ownedNote(c)
	if !ok {
		return
	}

	var req updateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	owned.Title = req.Title
	if req.Content != nil {
		owned.Content = req.Content
	}

	updated, err := handler.notes.Update(c.Request.Context(), owned)
	if err != nil {
		handler.logger.Error("failed to update note", "noteID", owned.ID, "error", err)
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DELETE /api/notes/:id
func (handler *NoteHandler) Delete(c *gin.Context) {
	owned, ok := handler.ownedNote(c)
	if !ok {
		return
	}

	if err := handler.notes.Delete(c.Request.Context(), owned); err != nil {
		handler.logger.Error("failed to delete note", "noteID", owned.ID, "error", err)
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type appendTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// POST /api/notes/:id/text
func (handler *NoteHandler) AppendText(c *gin.Context) {
	owned, ok := handler.ownedNote(c)
	if !ok {
		return
	}

	var req appendTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := handler.notes.AppendText(c.Request.Context(), owned, req.Text)
	if err != nil {
		handler.logger.Error("failed to append text", "noteID", owned.ID, "error", err)
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// POST /api/notes/:id/images
func (handler *NoteHandler) AppendImage(c *gin.Context) {
	owned, ok := handler.ownedNote(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "an image file is required")
		return
	}
	if fileHeader.Size > maxImageBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "image is too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "an image file is required")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		respondError(c, http.StatusBadRequest, "an image file is required")
		return
	}

	updated, err := handler.notes.AppendImage(c.Request.Context(), owned, image)
	if err != nil {
		handler.logger.Error("failed to append image", "noteID", owned.ID, "error", err)
		respondError(c, http.StatusBadGateway, "image upload failed")
		return
	}
	c.JSON(http.StatusOK, updated)
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

// POST /api/notes/:id/ask
func (handler *NoteHandler) Ask(c *gin.Context) {
	owned, ok := handler.ownedNote(c)
	if !ok {
		return
	}

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := handler.notes.Ask(c.Request.Context(), owned, req.Question)
	if err != nil {
		handler.logger.Error("failed to answer note question", "noteID", owned.ID, "error", err)
		respondError(c, http.StatusBadGateway, "could not answer the question")
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// POST /api/notes/:id/quiz
func (handler *NoteHandler) GenerateQuiz(c *gin.Context) {
	owned, ok := handler.ownedNote(c)
	if !ok {
		return
	}

	identity := identityFromContext(c)
	generated, err := handler.generator.Generate(c.Request.Context(), identity.UserID, owned)
	if err != nil {
		if errors.Is(err, quiz.ErrInsufficientContent) {
			respondError(c, http.StatusUnprocessableEntity, "the note does not have enough text content for a quiz")
			return
		}
		handler.logger.Error("failed to generate quiz", "noteID", owned.ID, "error", err)
		respondError(c, http.StatusBadGateway, "quiz generation failed")
		return
	}
	c.JSON(http.StatusCreated, generated)
}

// ownedNote loads the note from the path parameter and verifies ownership.
// A note belonging to another user is reported as missing.
func (handler *NoteHandler) ownedNote(c *gin.Context) (note.Note, bool) {
	identity := identityFromContext(c)

	stored, err := handler.notes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			handler.logger.Error("failed to load note", "noteID", c.Param("id"), "error", err)
		}
		respondServiceError(c, err)
		return note.Note{}, false
	}
	if stored.UserID != identity.UserID {
		respondError(c, http.StatusNotFound, "not found")
		return note.Note{}, false
	}
	return stored, true
}
