package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fendylo/study-snap/internal/docstore"
	"github.com/fendylo/study-snap/internal/quiz"
)

// QuizHandler serves quiz listing, lookup and submission.
type QuizHandler struct {
	logger  *slog.Logger
	quizzes *quiz.Service
	grader  *quiz.Grader
}

func NewQuizHandler(logger *slog.Logger, quizzes *quiz.Service, grader *quiz.Grader) *QuizHandler {
	return &QuizHandler{
		logger:  logger.With("handler", "QuizHandler"),
		quizzes: quizzes,
		grader:  grader,
	}
}

// GET /api/quizzes?noteId=
func (handler *QuizHandler) List(c *gin.Context) {
	identity := identityFromContext(c)
	quizzes, err := handler.quizzes.List(c.Request.Context(), identity.UserID, c.Query("noteId"))
	if err != nil {
		handler.logger.Error("failed to list quizzes", "userID", identity.UserID, "error", err)
		respondServiceError(c, err)
		return
	}
	if quizzes == nil {
		quizzes = []quiz.Quiz{}
	}
	c.JSON(http.StatusOK, quizzes)
}

// GET /api/quizzes/:id
func (handler *QuizHandler) Get(c *gin.Context) {
	owned, ok := handler.ownedQuiz(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, owned)
}

type submitQuizRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// POST /api/quizzes/:id/submit
func (handler *QuizHandler) Submit(c *gin.Context) {
	owned, ok := handler.ownedQuiz(c)
	if !ok {
		return
	}

	var req submitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	graded, err := handler.grader.Submit(c.Request.Context(), owned, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, quiz.ErrAlreadyCompleted):
			respondError(c, http.StatusConflict, "the quiz has already been completed")
		case errors.Is(err, quiz.ErrIncompleteAnswers):
			respondError(c, http.StatusBadRequest, "every question needs a selected answer")
		default:
			handler.logger.Error("failed to grade quiz", "quizID", owned.ID, "error", err)
			respondServiceError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, graded)
}

func (handler *QuizHandler) ownedQuiz(c *gin.Context) (quiz.Quiz, bool) {
	identity := identityFromContext(c)

	stored, err := handler.quizzes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			handler.logger.Error("failed to load quiz", "quizID", c.Param("id"), "error", err)
		}
		respondServiceError(c, err)
		return quiz.Quiz{}, false
	}
	if stored.UserID != identity.UserID {
		respondError(c, http.StatusNotFound, "not found")
		return quiz.Quiz{}, false
	}
	return stored, true
}
