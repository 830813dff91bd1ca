package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/magicstays/villa-api/internal/api/response"
	"github.com/magicstays/villa-api/internal/core/domain"
	"github.com/magicstays/villa-api/internal/core/ports"
)

// VillaNumberHandler serves villa-number CRUD. It composes two repositories:
// its own, and the villa repository for the referential check on create and
// update.
type VillaNumberHandler struct {
	repo   ports.Repository[domain.VillaNumber]
	villas ports.Repository[domain.Villa]
	logger zerolog.Logger
}

func NewVillaNumberHandler(repo ports.Repository[domain.VillaNumber], villas ports.Repository[domain.Villa], logger zerolog.Logger) *VillaNumberHandler {
	return &VillaNumberHandler{repo: repo, villas: villas, logger: logger}
}

// List handles GET <prefix>/villa-numbers.
//
// @Summary      List all villa numbers
// @Tags         villa-numbers
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Router       /api/v1/villa-numbers [get]
func (h *VillaNumberHandler) List(c echo.Context) error {
	numbers, err := h.repo.GetAll(c.Request().Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list villa numbers failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}
	return response.Success(c, http.StatusOK, numbers)
}

// Get handles GET <prefix>/villa-numbers/:id.
//
// @Summary      Get a villa number
// @Tags         villa-numbers
// @Produce      json
// @Param        id   path      int  true  "Villa number"
// @Success      200  {object}  response.Envelope
// @Failure      400  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/v1/villa-numbers/{id} [get]
func (h *VillaNumberHandler) Get(c echo.Context) error {
	number, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "id must be a positive integer")
	}

	vn, err := h.repo.Get(c.Request().Context(), ports.ByID("number", number), false)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c)
		}
		h.logger.Error().Err(err).Int("number", number).Msg("get villa number failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}
	return response.Success(c, http.StatusOK, vn)
}

// Create handles POST <prefix>/villa-numbers. Number uniqueness and parent
// villa existence are both checked here before the insert.
//
// @Summary      Create a villa number
// @Tags         villa-numbers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      villaNumberCreateRequest  true  "Villa number details"
// @Success      201   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Router       /api/v1/villa-numbers [post]
func (h *VillaNumberHandler) Create(c echo.Context) error {
	var req villaNumberCreateRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	ctx := c.Request().Context()

	_, err := h.repo.Get(ctx, ports.ByID("number", req.Number), false)
	if err == nil {
		return response.FailureDetail(c, http.StatusBadRequest, map[string]string{
			"duplicate_number": "villa number already exists",
		})
	}
	if !errors.Is(err, domain.ErrNotFound) {
		h.logger.Error().Err(err).Msg("villa number uniqueness check failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}

	if err := h.villaExists(ctx, req.VillaID); err != nil {
		return h.villaRefError(c, err)
	}

	now := time.Now().UTC()
	vn := domain.VillaNumber{
		Number:         req.Number,
		VillaID:        req.VillaID,
		SpecialDetails: req.SpecialDetails,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.repo.Create(ctx, &vn); err != nil {
		h.logger.Error().Err(err).Msg("create villa number failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}
	if err := h.repo.Save(ctx); err != nil {
		h.logger.Error().Err(err).Msg("save villa number failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}

	h.logger.Info().Int("number", vn.Number).Int("villa_id", vn.VillaID).Str("by", claimsUserID(c)).Msg("villa number created")
	return response.Success(c, http.StatusCreated, vn)
}

// Update handles PUT <prefix>/villa-numbers/:id — full replace; the path id
// must match the body number, and the referenced villa must exist.
//
// @Summary      Replace a villa number
// @Tags         villa-numbers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                       true  "Villa number"
// @Param        body  body      villaNumberUpdateRequest  true  "Villa number details"
// @Success      200   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /api/v1/villa-numbers/{id} [put]
func (h *VillaNumberHandler) Update(c echo.Context) error {
	number, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "id must be a positive integer")
	}

	var req villaNumberUpdateRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	if req.Number != number {
		return response.BadRequest(c, "number mismatch between path and body")
	}

	ctx := c.Request().Context()

	if err := h.villaExists(ctx, req.VillaID); err != nil {
		return h.villaRefError(c, err)
	}

	existing, err := h.repo.Get(ctx, ports.ByID("number", number), false)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c)
		}
		h.logger.Error().Err(err).Int("number", number).Msg("get villa number failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}

	vn := domain.VillaNumber{
		Number:         number,
		VillaID:        req.VillaID,
		SpecialDetails: req.SpecialDetails,
		CreatedAt:      existing.CreatedAt,
		UpdatedAt:      time.Now().UTC(),
	}

	if err := h.repo.Update(ctx, &vn); err != nil {
		return h.mutationError(c, err, number, "update villa number failed")
	}
	if err := h.repo.Save(ctx); err != nil {
		return h.mutationError(c, err, number, "save villa number failed")
	}
	return response.NoContent(c)
}

// Patch handles PATCH <prefix>/villa-numbers/:id against a detached snapshot.
//
// @Summary      Partially update a villa number
// @Tags         villa-numbers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                      true  "Villa number"
// @Param        body  body      villaNumberPatchRequest  true  "Fields to change"
// @Success      200   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /api/v1/villa-numbers/{id} [patch]
func (h *VillaNumberHandler) Patch(c echo.Context) error {
	number, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "id must be a positive integer")
	}

	var req villaNumberPatchRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid payload")
	}

	ctx := c.Request().Context()

	vn, err := h.repo.Get(ctx, ports.ByID("number", number), false)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c)
		}
		h.logger.Error().Err(err).Int("number", number).Msg("get villa number failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}

	if req.VillaID != nil {
		if err := h.villaExists(ctx, *req.VillaID); err != nil {
			return h.villaRefError(c, err)
		}
		vn.VillaID = *req.VillaID
	}
	if req.SpecialDetails != nil {
		vn.SpecialDetails = *req.SpecialDetails
	}
	vn.UpdatedAt = time.Now().UTC()

	if err := h.repo.Update(ctx, vn); err != nil {
		return h.mutationError(c, err, number, "patch villa number failed")
	}
	if err := h.repo.Save(ctx); err != nil {
		return h.mutationError(c, err, number, "save villa number failed")
	}
	return response.NoContent(c)
}

// Delete handles DELETE <prefix>/villa-numbers/:id.
//
// @Summary      Delete a villa number
// @Tags         villa-numbers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Villa number"
// @Success      200  {object}  response.Envelope
// @Failure      400  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/v1/villa-numbers/{id} [delete]
func (h *VillaNumberHandler) Delete(c echo.Context) error {
	number, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "id must be a positive integer")
	}

	ctx := c.Request().Context()

	vn, err := h.repo.Get(ctx, ports.ByID("number", number), false)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c)
		}
		h.logger.Error().Err(err).Int("number", number).Msg("get villa number failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}

	if err := h.repo.Remove(ctx, vn); err != nil {
		return h.mutationError(c, err, number, "delete villa number failed")
	}
	if err := h.repo.Save(ctx); err != nil {
		return h.mutationError(c, err, number, "save villa number failed")
	}

	h.logger.Info().Int("number", number).Str("by", claimsUserID(c)).Msg("villa number deleted")
	return response.NoContent(c)
}

// villaExists verifies the referenced parent villa.
func (h *VillaNumberHandler) villaExists(ctx context.Context, villaID int) error {
	_, err := h.villas.Get(ctx, ports.ByID("id", villaID), false)
	return err
}

func (h *VillaNumberHandler) villaRefError(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return response.FailureDetail(c, http.StatusBadRequest, map[string]string{
			"invalid_villa_id": "villa id is invalid",
		})
	}
	h.logger.Error().Err(err).Msg("villa reference check failed")
	return response.Failure(c, http.StatusInternalServerError, "internal error")
}

func (h *VillaNumberHandler) mutationError(c echo.Context, err error, number int, msg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return response.NotFound(c)
	}
	h.logger.Error().Err(err).Int("number", number).Msg(msg)
	return response.Failure(c, http.StatusInternalServerError, "internal error")
}
