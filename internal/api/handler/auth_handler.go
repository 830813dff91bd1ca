package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/magicstays/villa-api/internal/api/metrics"
	"github.com/magicstays/villa-api/internal/api/response"
	"github.com/magicstays/villa-api/internal/core/domain"
	"github.com/magicstays/villa-api/internal/core/ports"
)

// AuthHandler serves the version-neutral login and registration routes.
type AuthHandler struct {
	authService ports.AuthService
	logger      zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin customer"`
}

type loginResponse struct {
	User  *domain.User `json:"user"`
	Role  string       `json:"role"`
	Token string       `json:"token"`
}

// Login authenticates a user and returns a signed session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Router       /api/users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Error().Err(err).Msg("login failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}

	// A failed credential check is a value result, not an error. The message
	// does not reveal whether the username or the password was wrong.
	if result.Failed() {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return response.Failure(c, http.StatusUnauthorized, "Username or password is incorrect")
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return response.Success(c, http.StatusOK, loginResponse{
		User:  result.User,
		Role:  result.Role.String(),
		Token: result.Token,
	})
}

// Register creates a new user account. The uniqueness check and the insert
// are two separate steps at this layer; the credential store's unique
// constraint is what finally arbitrates concurrent duplicates.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      200   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Router       /api/users/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	ctx := c.Request().Context()

	unique, err := h.authService.IsUniqueUser(ctx, req.Username)
	if err != nil {
		h.logger.Error().Err(err).Msg("uniqueness check failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}
	if !unique {
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		return response.Failure(c, http.StatusBadRequest, "Username exists")
	}

	user, err := h.authService.Register(ctx, ports.RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			return response.Failure(c, http.StatusBadRequest, "Username exists")
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		h.logger.Error().Err(err).Msg("registration failed")
		return response.Failure(c, http.StatusBadRequest, "Error while registering")
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return response.Success(c, http.StatusOK, user)
}
