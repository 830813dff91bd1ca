package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/magicstays/villa-api/internal/api/response"
	"github.com/magicstays/villa-api/internal/core/domain"
	"github.com/magicstays/villa-api/internal/core/ports"
)

// VillaHandler serves villa CRUD for every API line. Version differences
// (guards, caching) are applied by the router; the handler itself is
// version-agnostic.
type VillaHandler struct {
	repo   ports.Repository[domain.Villa]
	seq    ports.Sequencer
	logger zerolog.Logger
}

func NewVillaHandler(repo ports.Repository[domain.Villa], seq ports.Sequencer, logger zerolog.Logger) *VillaHandler {
	return &VillaHandler{repo: repo, seq: seq, logger: logger}
}

// List handles GET <prefix>/villas.
//
// @Summary      List all villas
// @Tags         villas
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Router       /api/v1/villas [get]
func (h *VillaHandler) List(c echo.Context) error {
	villas, err := h.repo.GetAll(c.Request().Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list villas failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}
	return response.Success(c, http.StatusOK, villas)
}

// Get handles GET <prefix>/villas/:id.
//
// @Summary      Get a villa by id
// @Tags         villas
// @Produce      json
// @Param        id   path      int  true  "Villa id"
// @Success      200  {object}  response.Envelope
// @Failure      400  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/v1/villas/{id} [get]
func (h *VillaHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "id must be a positive integer")
	}

	villa, err := h.repo.Get(c.Request().Context(), ports.ByID("id", id), false)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c)
		}
		h.logger.Error().Err(err).Int("id", id).Msg("get villa failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}
	return response.Success(c, http.StatusOK, villa)
}

// Create handles POST <prefix>/villas.
//
// @Summary      Create a villa
// @Tags         villas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      villaCreateRequest  true  "Villa details"
// @Success      201   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Router       /api/v1/villas [post]
func (h *VillaHandler) Create(c echo.Context) error {
	var req villaCreateRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	ctx := c.Request().Context()

	// Name uniqueness is a handler-level rule: case-insensitive exact match.
	_, err := h.repo.Get(ctx, ports.Where("name", ports.OpEqFold, req.Name), false)
	if err == nil {
		return response.FailureDetail(c, http.StatusBadRequest, map[string]string{
			"duplicate_name": "villa name already exists",
		})
	}
	if !errors.Is(err, domain.ErrNotFound) {
		h.logger.Error().Err(err).Msg("villa uniqueness check failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}

	id, err := h.seq.NextID(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("villa id allocation failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}

	now := time.Now().UTC()
	villa := domain.Villa{
		ID:        id,
		Name:      req.Name,
		Details:   req.Details,
		Rate:      req.Rate,
		Sqft:      req.Sqft,
		Occupancy: req.Occupancy,
		ImageURL:  req.ImageURL,
		Amenity:   req.Amenity,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.repo.Create(ctx, &villa); err != nil {
		h.logger.Error().Err(err).Msg("create villa failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}
	if err := h.repo.Save(ctx); err != nil {
		h.logger.Error().Err(err).Msg("save villa failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}

	h.logger.Info().Int("id", villa.ID).Str("name", villa.Name).Str("by", claimsUserID(c)).Msg("villa created")
	return response.Success(c, http.StatusCreated, villa)
}

// Update handles PUT <prefix>/villas/:id — a full replace; the path id must
// match the body id.
//
// @Summary      Replace a villa
// @Tags         villas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                 true  "Villa id"
// @Param        body  body      villaUpdateRequest  true  "Villa details"
// @Success      200   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /api/v1/villas/{id} [put]
func (h *VillaHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "id must be a positive integer")
	}

	var req villaUpdateRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	if req.ID != id {
		return response.BadRequest(c, "id mismatch between path and body")
	}

	ctx := c.Request().Context()

	existing, err := h.repo.Get(ctx, ports.ByID("id", id), false)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c)
		}
		h.logger.Error().Err(err).Int("id", id).Msg("get villa failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}

	villa := domain.Villa{
		ID:        id,
		Name:      req.Name,
		Details:   req.Details,
		Rate:      req.Rate,
		Sqft:      req.Sqft,
		Occupancy: req.Occupancy,
		ImageURL:  req.ImageURL,
		Amenity:   req.Amenity,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}

	if err := h.repo.Update(ctx, &villa); err != nil {
		return h.mutationError(c, err, id, "update villa failed")
	}
	if err := h.repo.Save(ctx); err != nil {
		return h.mutationError(c, err, id, "save villa failed")
	}
	return response.NoContent(c)
}

// Patch handles PATCH <prefix>/villas/:id — a field-level patch applied to a
// detached snapshot; absent fields keep the snapshot's values.
//
// @Summary      Partially update a villa
// @Tags         villas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Villa id"
// @Param        body  body      villaPatchRequest  true  "Fields to change"
// @Success      200   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /api/v1/villas/{id} [patch]
func (h *VillaHandler) Patch(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "id must be a positive integer")
	}

	var req villaPatchRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid payload")
	}

	ctx := c.Request().Context()

	villa, err := h.repo.Get(ctx, ports.ByID("id", id), false)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c)
		}
		h.logger.Error().Err(err).Int("id", id).Msg("get villa failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}

	if req.Name != nil {
		villa.Name = *req.Name
	}
	if req.Details != nil {
		villa.Details = *req.Details
	}
	if req.Rate != nil {
		villa.Rate = *req.Rate
	}
	if req.Sqft != nil {
		villa.Sqft = *req.Sqft
	}
	if req.Occupancy != nil {
		villa.Occupancy = *req.Occupancy
	}
	if req.ImageURL != nil {
		villa.ImageURL = *req.ImageURL
	}
	if req.Amenity != nil {
		villa.Amenity = *req.Amenity
	}
	villa.UpdatedAt = time.Now().UTC()

	if err := h.repo.Update(ctx, villa); err != nil {
		return h.mutationError(c, err, id, "patch villa failed")
	}
	if err := h.repo.Save(ctx); err != nil {
		return h.mutationError(c, err, id, "save villa failed")
	}
	return response.NoContent(c)
}

// Delete handles DELETE <prefix>/villas/:id.
//
// @Summary      Delete a villa
// @Tags         villas
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Villa id"
// @Success      200  {object}  response.Envelope
// @Failure      400  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/v1/villas/{id} [delete]
func (h *VillaHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "id must be a positive integer")
	}

	ctx := c.Request().Context()

	villa, err := h.repo.Get(ctx, ports.ByID("id", id), false)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c)
		}
		h.logger.Error().Err(err).Int("id", id).Msg("get villa failed")
		return response.Failure(c, http.StatusInternalServerError, "internal error")
	}

	if err := h.repo.Remove(ctx, villa); err != nil {
		return h.mutationError(c, err, id, "delete villa failed")
	}
	if err := h.repo.Save(ctx); err != nil {
		return h.mutationError(c, err, id, "save villa failed")
	}

	h.logger.Info().Int("id", id).Str("by", claimsUserID(c)).Msg("villa deleted")
	return response.NoContent(c)
}

func (h *VillaHandler) mutationError(c echo.Context, err error, id int, msg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return response.NotFound(c)
	}
	h.logger.Error().Err(err).Int("id", id).Msg(msg)
	return response.Failure(c, http.StatusInternalServerError, "internal error")
}

// pathID parses the :id path parameter. Zero, negative and non-numeric ids
// are rejected before any storage access.
func pathID(c echo.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
