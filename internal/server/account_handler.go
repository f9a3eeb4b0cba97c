package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fendylo/study-snap/internal/account"
)

// AccountHandler serves registration, sign-in and profile endpoints.
type AccountHandler struct {
	logger   *slog.Logger
	accounts *account.Service
	tokens   *account.TokenManager
}

func NewAccountHandler(logger *slog.Logger, accounts *account.Service, tokens *account.TokenManager) *AccountHandler {
	return &AccountHandler{
		logger:   logger.With("handler", "AccountHandler"),
		accounts: accounts,
		tokens:   tokens,
	}
}

type registerRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	Name           string `json:"name" binding:"required"`
	EducationMajor string `json:"educationMajor"`
}

// POST /api/register
func (handler *AccountHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := handler.accounts.SignUp(c.Request.Context(), req.Email, req.Password, req.Name, req.EducationMajor)
	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			respondError(c, http.StatusConflict, "email is already registered")
			return
		}
		handler.logger.Error("failed to register user", "error", err)
		respondServiceError(c, err)
		return
	}

	handler.respondWithSession(c, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/login
func (handler *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := handler.accounts.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "invalid email or password")
			return
		}
		handler.logger.Error("failed to sign in user", "error", err)
		respondServiceError(c, err)
		return
	}

	handler.respondWithSession(c, http.StatusOK, user)
}

// POST /api/logout
func (handler *AccountHandler) Logout(c *gin.Context) {
	if err := handler.accounts.SignOut(); err != nil {
		handler.logger.Error("failed to sign out", "error", err)
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// GET /api/me
func (handler *AccountHandler) Me(c *gin.Context) {
	user := handler.accounts.CurrentUser(c.Request.Context(), identityFromContext(c))
	c.JSON(http.StatusOK, user)
}

type updateProfileRequest struct {
	Name           string `json:"name" binding:"required"`
	EducationMajor string `json:"educationMajor"`
}

// PUT /api/me
func (handler *AccountHandler) UpdateMe(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	identity := identityFromContext(c)
	user, err := handler.accounts.UpdateProfile(c.Request.Context(), identity.UserID, req.Name, req.EducationMajor)
	if err != nil {
		handler.logger.Error("failed to update profile", "userID", identity.UserID, "error", err)
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (handler *AccountHandler) respondWithSession(c *gin.Context, status int, user account.User) {
	token, err := handler.tokens.Issue(user)
	if err != nil {
		handler.logger.Error("failed to issue session token", "userID", user.ID, "error", err)
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(status, gin.H{"user": user, "token": token})
}
