package handlers

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MaggPerez/stututor-backend/internal/core"
	"github.com/MaggPerez/stututor-backend/internal/models"
)

type AuthHandler struct {
	dbclient  core.DbClient
	jwtSecret string
	jwtExpire time.Duration
}

func NewAuthHandler(dbclient core.DbClient, jwtSecret string, jwtExpire time.Duration) *AuthHandler {
	return &AuthHandler{dbclient: dbclient, jwtSecret: jwtSecret, jwtExpire: jwtExpire}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		sendError(w, "Please provide username, email, and password.", http.StatusBadRequest)
		return
	}

	existing, err := h.dbclient.GetUserByEmailOrUsername(r.Context(), req.Email, req.Username)
	if err != nil {
		sendError(w, "Registration failed. Please try again.", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		sendError(w, "User with this email or username already exists.", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		sendError(w, "Registration failed. Please try again.", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.dbclient.CreateUser(r.Context(), user); err != nil {
		sendError(w, "User with this email or username already exists.", http.StatusBadRequest)
		return
	}

	token, err := h.generateJWT(user.ID)
	if err != nil {
		sendError(w, "Registration failed. Please try again.", http.StatusInternalServerError)
		return
	}

	sendSuccess(w, map[string]interface{}{
		"message": "User registered successfully.",
		"token":   token,
		"user":    userPayload{ID: user.ID, Username: user.Username, Email: user.Email},
	}, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		sendError(w, "Please provide email and password.", http.StatusBadRequest)
		return
	}

	user, err := h.dbclient.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		sendError(w, "Login failed. Please try again.", http.StatusInternalServerError)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		sendError(w, "Invalid credentials.", http.StatusUnauthorized)
		return
	}

	token, err := h.generateJWT(user.ID)
	if err != nil {
		sendError(w, "Login failed. Please try again.", http.StatusInternalServerError)
		return
	}

	sendSuccess(w, map[string]interface{}{
		"message": "Login successful.",
		"token":   token,
		"user":    userPayload{ID: user.ID, Username: user.Username, Email: user.Email},
	}, http.StatusOK)
}

// generateJWT creates a signed token with user ID claim
func (h *AuthHandler) generateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(h.jwtExpire).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(h.jwtSecret))
}
