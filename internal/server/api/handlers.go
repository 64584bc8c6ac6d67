package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"zenvault/internal/server/database"
	"zenvault/internal/server/service"

	"github.com/labstack/echo/v4"
)

// Handler contains the HTTP handlers for the ZenVault API.
type Handler struct {
	gate      *service.AdmissionGate
	files     *service.Files
	lifecycle *service.Lifecycle
	quota     *service.Quota
	db        *database.DB
}

// NewHandler creates a new handler with its service dependencies.
func NewHandler(gate *service.AdmissionGate, files *service.Files, lifecycle *service.Lifecycle, quota *service.Quota, db *database.DB) *Handler {
	return &Handler{
		gate:      gate,
		files:     files,
		lifecycle: lifecycle,
		quota:     quota,
		db:        db,
	}
}

// HandleUpload handles POST /api/files.
// Accepts a multipart form with a "file" field and optional "folder_id" field.
func (h *Handler) HandleUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "file is required (use form field 'file')",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "failed to read uploaded file",
		})
	}
	defer src.Close()

	var folderID *string
	if folder := c.FormValue("folder_id"); folder != "" {
		folderID = &folder
	}

	rec, err := h.gate.AdmitUpload(
		c.Request().Context(),
		ownerID(c),
		fileHeader.Filename,
		fileHeader.Size,
		folderID,
		src,
	)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, rec)
}

// HandleList handles GET /api/files.
// Lists the caller's active files, or trashed ones with ?trashed=true.
func (h *Handler) HandleList(c echo.Context) error {
	trashed := c.QueryParam("trashed") == "true"

	recs, err := h.files.List(c.Request().Context(), ownerID(c), trashed)
	if err != nil {
		return mapServiceError(c, err)
	}
	if recs == nil {
		recs = []*database.FileRecord{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"files": recs,
		"count": len(recs),
	})
}

// HandleGet handles GET /api/files/:id.
func (h *Handler) HandleGet(c echo.Context) error {
	rec, err := h.files.Get(c.Request().Context(), ownerID(c), c.Param("id"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// HandleDownload handles GET /api/files/:id/download.
// Serves the stored bytes as an attachment.
func (h *Handler) HandleDownload(c echo.Context) error {
	path, name, err := h.files.DownloadPath(c.Request().Context(), ownerID(c), c.Param("id"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Attachment(path, name)
}

// HandleUpdate handles PATCH /api/files/:id.
// Renames and/or moves a file. An explicit "folder_id": null moves it
// to the root folder.
func (h *Handler) HandleUpdate(c echo.Context) error {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON body"})
	}

	var patch database.FilePatch
	if v, ok := raw["name"]; ok {
		var name string
		if err := json.Unmarshal(v, &name); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must be a string"})
		}
		patch.Name = &name
	}
	if v, ok := raw["folder_id"]; ok {
		var folder *string
		if err := json.Unmarshal(v, &folder); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "folder_id must be a string or null"})
		}
		if folder == nil {
			patch.MoveToRoot = true
		} else {
			patch.FolderID = folder
		}
	}

	rec, err := h.files.Update(c.Request().Context(), ownerID(c), c.Param("id"), patch)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// HandleTrash handles PUT /api/files/:id/trash.
func (h *Handler) HandleTrash(c echo.Context) error {
	rec, err := h.lifecycle.Trash(c.Request().Context(), ownerID(c), c.Param("id"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// HandleRestore handles PUT /api/files/:id/restore.
func (h *Handler) HandleRestore(c echo.Context) error {
	rec, err := h.lifecycle.Restore(c.Request().Context(), ownerID(c), c.Param("id"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// HandlePurge handles DELETE /api/files/:id.
// Permanently deletes a trashed file.
func (h *Handler) HandlePurge(c echo.Context) error {
	if err := h.lifecycle.Purge(c.Request().Context(), ownerID(c), c.Param("id")); err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "file purged",
	})
}

// HandleUsage handles GET /api/usage.
// Returns the caller's storage consumption against the quota ceiling.
func (h *Handler) HandleUsage(c echo.Context) error {
	report, err := h.quota.Report(c.Request().Context(), ownerID(c))
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"used_bytes":      report.UsedBytes,
		"ceiling_bytes":   report.CeilingBytes,
		"available_bytes": report.AvailableBytes,
		"used_percent":    report.UsedPercent,
		"used_human":      humanizeBytes(report.UsedBytes),
		"ceiling_human":   humanizeBytes(report.CeilingBytes),
	})
}

// HandleHealth handles GET /health.
// Returns the health status of the server, including database connectivity.
func (h *Handler) HandleHealth(c echo.Context) error {
	status := "healthy"
	dbStatus := "connected"

	if err := h.db.HealthCheck(c.Request().Context()); err != nil {
		status = "degraded"
		dbStatus = fmt.Sprintf("error: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":   status,
		"database": dbStatus,
	})
}

// mapServiceError translates service-layer errors into appropriate HTTP responses.
func mapServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "file not found"})
	case errors.Is(err, service.ErrQuotaExceeded):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "storage quota exceeded"})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrFileTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{
			"error": "file exceeds maximum allowed size",
		})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}

// humanizeBytes formats a byte count into a human-readable string.
func humanizeBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
