package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/watchlist/internal/dto"
	"github.com/noah-isme/watchlist/internal/models"
	"github.com/noah-isme/watchlist/internal/service"
	appErrors "github.com/noah-isme/watchlist/pkg/errors"
	"github.com/noah-isme/watchlist/pkg/response"
)

type archiveExporter interface {
	Generate(ctx context.Context, query models.MovieQuery, format service.ExportFormat) (*service.ExportResult, error)
}

// ExportHandler streams archive downloads.
type ExportHandler struct {
	exporter archiveExporter
}

// NewExportHandler constructs an export handler.
func NewExportHandler(exporter archiveExporter) *ExportHandler {
	return &ExportHandler{exporter: exporter}
}

// Download godoc
// @Summary Download the filtered archive
// @Tags Export
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param search query string false "Case-insensitive title search"
// @Param sort query string false "Sort key"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /archive/export [get]
func (h *ExportHandler) Download(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unsupported export format"))
		return
	}

	var form dto.ArchiveForm
	_ = c.ShouldBindQuery(&form)

	result, err := h.exporter.Generate(c.Request.Context(), service.BuildMovieQuery(form), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
