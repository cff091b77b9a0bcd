package echo

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	appbatch "github.com/mohammadpnp/resumebatch/internal/application/batch"
	domain "github.com/mohammadpnp/resumebatch/internal/domain/batch"
)

// BatchHandler adapts appbatch.Controller's operations to HTTP,
// mirroring the teacher's ImportHandler: bind request, call the
// controller, map domain errors to an apiResponse envelope.
type BatchHandler struct {
	Controller *appbatch.Controller
}

type createBatchFileRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content_base64"`
}

type createBatchRequest struct {
	OwnerID        string                    `json:"owner_id"`
	JobDescription string                    `json:"job_description"`
	Files          []createBatchFileRequest `json:"files"`
}

// CreateBatch handles POST /batches.
func (h *BatchHandler) CreateBatch(c echo.Context) error {
	var req createBatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{Code: "bad_request", Message: err.Error()}})
	}

	files := make([]appbatch.InputFile, 0, len(req.Files))
	for _, f := range req.Files {
		data, err := base64.StdEncoding.DecodeString(f.Content)
		if err != nil {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{Code: "bad_request", Message: "decode " + f.Filename + ": " + err.Error()}})
		}
		files = append(files, appbatch.InputFile{Filename: f.Filename, Bytes: data})
	}

	result, err := h.Controller.Create(c.Request().Context(), appbatch.CreateBatchRequest{
		OwnerID:        req.OwnerID,
		JobDescription: req.JobDescription,
		Files:          files,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusAccepted, apiResponse{Data: result})
}

type controlBatchRequest struct {
	OwnerID string `json:"owner_id"`
	Action  string `json:"action"`
}

// ControlBatch handles POST /batches/:id/control.
func (h *BatchHandler) ControlBatch(c echo.Context) error {
	var req controlBatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{Code: "bad_request", Message: err.Error()}})
	}

	result, err := h.Controller.Control(c.Request().Context(), appbatch.ControlRequest{
		OwnerID: req.OwnerID,
		BatchID: c.Param("id"),
		Action:  appbatch.ControlAction(req.Action),
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: map[string]string{"result": string(result)}})
}

// GetBatch handles GET /batches/:id.
func (h *BatchHandler) GetBatch(c echo.Context) error {
	b, err := h.Controller.Get(c.Request().Context(), appbatch.GetBatchRequest{
		OwnerID: c.QueryParam("owner_id"),
		BatchID: c.Param("id"),
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: b})
}

// ListItems handles GET /batches/:id/items.
func (h *BatchHandler) ListItems(c echo.Context) error {
	items, err := h.Controller.ListItems(c.Request().Context(), appbatch.ListItemsRequest{
		OwnerID: c.QueryParam("owner_id"),
		BatchID: c.Param("id"),
		Filter: domain.ItemFilter{
			Status: domain.ItemStatus(c.QueryParam("status")),
		},
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: items})
}

// TeardownBatch handles DELETE /batches/:id.
func (h *BatchHandler) TeardownBatch(c echo.Context) error {
	err := h.Controller.Teardown(c.Request().Context(), appbatch.TeardownRequest{
		OwnerID: c.QueryParam("owner_id"),
		BatchID: c.Param("id"),
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: map[string]string{"status": "ok"}})
}

func (h *BatchHandler) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return c.JSON(http.StatusForbidden, apiResponse{Error: &errorBody{Code: "forbidden", Message: err.Error()}})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{Code: "not_found", Message: err.Error()}})
	case errors.Is(err, domain.ErrInvalidJobDescription), errors.Is(err, domain.ErrNoFiles), errors.Is(err, appbatch.ErrInvalidOwnerID):
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{Code: "bad_request", Message: err.Error()}})
	default:
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{Code: "internal", Message: err.Error()}})
	}
}
