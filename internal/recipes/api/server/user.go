package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/yyzahran/Recipe-App/internal/recipes/repository/userrepo"
	"github.com/yyzahran/Recipe-App/internal/recipes/services/authservice"
)

// Регистрация пользователя
// (POST /api/user/create).
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req authservice.CreateUserRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	token, err := s.authService.CreateUser(r.Context(), req)
	if err != nil {
		handleError(w, fmt.Errorf("create user error: %w", err), userErrStatus(err))

		return
	}

	writeJSON(w, http.StatusCreated, TokenResponse{Token: token})
}

// Аутентификация пользователя
// (POST /api/user/token).
func (s *Server) createToken(w http.ResponseWriter, r *http.Request) {
	var req authservice.CreateUserRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if req.Email == "" || req.Password == "" {
		handleError(w, fmt.Errorf("not enough parameters to auth user"), http.StatusBadRequest) //nolint:perfsprint

		return
	}

	token, err := s.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, fmt.Errorf("login error: %w", err), http.StatusUnauthorized)

		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// Текущий пользователь
// (GET /api/user/me).
func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.authService.GetUser(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		handleError(w, fmt.Errorf("get user error: %w", err), http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// Обновление пользователя
// (PATCH /api/user/me).
func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	var req authservice.UpdateUserRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	u, err := s.authService.UpdateUser(r.Context(), userIDFromContext(r.Context()), req)
	if err != nil {
		handleError(w, fmt.Errorf("update user error: %w", err), userErrStatus(err))

		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func userErrStatus(err error) int {
	switch {
	case errors.Is(err, authservice.ErrWeakPassword),
		errors.Is(err, authservice.ErrBadEmail),
		errors.Is(err, userrepo.ErrAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, authservice.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
