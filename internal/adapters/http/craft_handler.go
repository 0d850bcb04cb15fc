package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/craftshop/core/internal/application/validation"
	"github.com/craftshop/core/internal/domain/entities"
	"github.com/craftshop/core/internal/infrastructure/logger"
	"github.com/craftshop/core/internal/ports"
)

const (
	imageField    = "image"
	multipartMem  = 1 << 20
	formOverheads = 1 << 20
)

// CraftHandler handles craft-related requests
type CraftHandler struct {
	craftService  ports.CraftService
	logger        *logger.Logger
	maxUploadSize int64
}

// NewCraftHandler creates a new craft handler
func NewCraftHandler(craftService ports.CraftService, logger *logger.Logger, maxUploadSize int64) *CraftHandler {
	return &CraftHandler{
		craftService:  craftService,
		logger:        logger,
		maxUploadSize: maxUploadSize,
	}
}

// ListCrafts godoc
// @Summary List crafts
// @Description Return every stored craft in insertion order
// @Tags crafts
// @Produce json
// @Success 200 {array} entities.Craft
// @Router /crafts [get]
func (h *CraftHandler) ListCrafts(c echo.Context) error {
	crafts, err := h.craftService.ListCrafts(c.Request().Context())
	if err != nil {
		h.logger.Error("List crafts failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error retrieving crafts").SetInternal(err)
	}

	return c.JSON(http.StatusOK, crafts)
}

// CreateCraft godoc
// @Summary Create a craft
// @Description Create a craft from a multipart form with an optional image file
// @Tags crafts
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Craft name"
// @Param description formData string true "Craft description"
// @Param supplies formData []string true "Supplies" collectionFormat(multi)
// @Param image formData file true "Craft image"
// @Success 201 {object} entities.Craft
// @Failure 400 {object} ErrorResponse
// @Router /crafts [post]
func (h *CraftHandler) CreateCraft(c echo.Context) error {
	req, err := h.parseCreateRequest(c)
	if err != nil {
		return err
	}

	craft, err := h.craftService.CreateCraft(c.Request().Context(), *req)
	if err != nil {
		var verr *validation.ValidationError
		switch {
		case errors.As(err, &verr):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Message})
		case errors.Is(err, entities.ErrInvalidFilename):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid image filename"})
		case errors.Is(err, entities.ErrUploadTooLarge):
			return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Image is too large"})
		}

		h.logger.Error("Error adding craft", "error", err)
		return c.String(http.StatusInternalServerError, "Error adding craft")
	}

	return c.JSON(http.StatusCreated, craft)
}

// DeleteCraft godoc
// @Summary Delete a craft
// @Description Delete the first craft whose id matches
// @Tags crafts
// @Produce plain
// @Param id path int true "Craft ID"
// @Success 200 {string} string "Craft deleted successfully"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {string} string "Craft not found"
// @Router /crafts/{id} [delete]
func (h *CraftHandler) DeleteCraft(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid craft ID")
	}

	err = h.craftService.DeleteCraft(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, entities.ErrCraftNotFound) {
			return c.String(http.StatusNotFound, "Craft not found")
		}
		h.logger.Error("Delete craft failed", "error", err, "craft_id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error deleting craft").SetInternal(err)
	}

	return c.String(http.StatusOK, "Craft deleted successfully")
}

func (h *CraftHandler) parseCreateRequest(c echo.Context) (*ports.CreateCraftRequest, error) {
	r := c.Request()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(c.Response(), r.Body, h.maxUploadSize+formOverheads)
	}

	ctype := r.Header.Get(echo.HeaderContentType)
	switch {
	case strings.HasPrefix(ctype, echo.MIMEMultipartForm):
		if err := r.ParseMultipartForm(multipartMem); err != nil {
			return nil, bodyError(err)
		}
		return h.fromMultipart(r.MultipartForm)

	case strings.HasPrefix(ctype, echo.MIMEApplicationJSON):
		fields := map[string]interface{}{}
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil && !errors.Is(err, io.EOF) {
			return nil, bodyError(err)
		}
		return &ports.CreateCraftRequest{Fields: fields}, nil

	default:
		params, err := c.FormParams()
		if err != nil {
			return nil, bodyError(err)
		}
		return &ports.CreateCraftRequest{Fields: formFields(params)}, nil
	}
}

func (h *CraftHandler) fromMultipart(form *multipart.Form) (*ports.CreateCraftRequest, error) {
	req := &ports.CreateCraftRequest{Fields: formFields(form.Value)}

	for field, files := range form.File {
		if field != imageField {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Unexpected file field: "+field)
		}
		if len(files) > 1 {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Only one image file is allowed")
		}
	}

	if files := form.File[imageField]; len(files) == 1 {
		fh := files[0]
		if h.maxUploadSize > 0 && fh.Size > h.maxUploadSize {
			return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Image is too large")
		}
		req.Upload = &ports.Upload{
			Filename: fh.Filename,
			Size:     fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		}
	}

	return req, nil
}

// formFields turns form values into a candidate document. Supplies may be
// sent as repeated "supplies" or "supplies[]" fields.
func formFields(values map[string][]string) map[string]interface{} {
	fields := map[string]interface{}{}

	for _, key := range []string{"name", "description"} {
		if v, ok := values[key]; ok && len(v) > 0 {
			fields[key] = v[0]
		}
	}

	plain, hasPlain := values["supplies"]
	bracketed, hasBracketed := values["supplies[]"]
	if hasPlain || hasBracketed {
		supplies := make([]string, 0, len(plain)+len(bracketed))
		supplies = append(supplies, plain...)
		supplies = append(supplies, bracketed...)
		fields["supplies"] = supplies
	}

	return fields
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request body is too large")
	}
	return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format").SetInternal(err)
}
