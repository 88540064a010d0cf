package handlers

import (
	"errors"
	"net/http"

	"github.com/AMICLONE1/powernetpro/internal/apperrors"
	"github.com/AMICLONE1/powernetpro/internal/handlers/render"
	"github.com/AMICLONE1/powernetpro/internal/logger"
)

func handleRegister(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required,min=2,max=50"`
		Password string `json:"password" validate:"required,min=8"`
	}
	type response struct {
		AccessToken string `json:"access_token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, err := authService.Register(r.Context(), data.Username, data.Password)

		switch {
		case err == nil:
			authService.SetTokens(w, pair)
			render.JSONWithStatus(w, response{AccessToken: pair.Access.Value}, http.StatusCreated)
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.Error(w, render.CodeUserExists, "User already exists", http.StatusConflict)
		default:
			l.Error("Failed to register user", "error", err)
			render.Error(w, render.CodeServerError, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		AccessToken string `json:"access_token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, err := authService.Login(r.Context(), data.Username, data.Password)

		switch {
		case err == nil:
			authService.SetTokens(w, pair)
			render.JSON(w, response{AccessToken: pair.Access.Value})
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.Error(w, render.CodeUserNotFound, "User not found", http.StatusUnauthorized)
		default:
			l.Error("Failed to login user", "error", err)
			render.Error(w, render.CodeServerError, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleTokenRefresh(authService authService, l logger.Logger) http.Handler {
	type response struct {
		AccessToken string `json:"access_token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refresh, err := authService.GetRefresh(r)
		if err != nil {
			render.Error(w, render.CodeUnauthorized, "Refresh token not found", http.StatusUnauthorized)
			return
		}

		pair, err := authService.Refresh(r.Context(), refresh)

		switch {
		case err == nil:
			authService.SetTokens(w, pair)
			render.JSON(w, response{AccessToken: pair.Access.Value})
		case errors.Is(err, apperrors.ErrRefreshTokenExpired):
			render.Error(w, render.CodeUnauthorized, "Refresh token expired", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrRefreshTokenIsUsed), errors.Is(err, apperrors.ErrRefreshTokenNotFound):
			render.Error(w, render.CodeUnauthorized, "Refresh token not found", http.StatusUnauthorized)
		default:
			l.Error("Failed to refresh tokens", "error", err)
			render.Error(w, render.CodeServerError, "Internal server error", http.StatusInternalServerError)
		}
	})
}
