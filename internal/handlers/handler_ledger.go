package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/SscSPs/recon_workbench/internal/apperrors"
	"github.com/SscSPs/recon_workbench/internal/core/domain"
	portssvc "github.com/SscSPs/recon_workbench/internal/core/ports/services"
	"github.com/SscSPs/recon_workbench/internal/dto"
	"github.com/SscSPs/recon_workbench/internal/middleware"
	"github.com/gin-gonic/gin"
)

// multipartOverhead allows for boundaries and part headers around the file itself.
const multipartOverhead = 1 << 20

// ledgerHandler handles HTTP requests for a client's GL snapshot.
type ledgerHandler struct {
	ledgerService  portssvc.LedgerSvcFacade
	maxUploadBytes int64
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade, maxUploadBytes int64) *ledgerHandler {
	return &ledgerHandler{
		ledgerService:  ls,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterLedgerRoutes registers the ledger routes under rg. uploadMiddleware is applied to
// the preview and commit routes only.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, maxUploadBytes int64, uploadMiddleware ...gin.HandlerFunc) {
	h := newLedgerHandler(ledgerService, maxUploadBytes)

	ledger := rg.Group("/clients/:client_id/ledger")
	{
		ledger.GET("", h.getCurrentUpload)
		ledger.GET("/transactions", h.listTransactions)
		ledger.DELETE("", h.deleteCurrentUpload)

		uploads := ledger.Group("", uploadMiddleware...)
		uploads.POST("/preview", h.previewReupload)
		uploads.POST("/commit", h.commitUpload)
	}
}

// previewReupload godoc
// @Summary Preview a GL re-upload
// @Description Parses the uploaded General Ledger export and reports per-account changes against the client's current snapshot. Nothing is stored.
// @Tags ledger
// @Accept  multipart/form-data
// @Produce  json
// @Param   client_id path string true "Client ID"
// @Param   file formData file true "General Ledger detail export (.xlsx or .csv)"
// @Success 200 {object} dto.PreviewResult
// @Failure 400 {object} map[string]string "Missing file, unknown client or file too large"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Role not permitted"
// @Failure 422 {object} map[string]string "Not a General Ledger export"
// @Failure 500 {object} map[string]string "Failed to preview upload"
// @Security BearerAuth
// @Router /clients/{client_id}/ledger/preview [post]
func (h *ledgerHandler) previewReupload(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	clientID := c.Param("client_id")

	if err := h.ledgerService.AuthorizeUpload(c.Request.Context()); err != nil {
		respondLedgerError(c, logger.With(slog.String("client_id", clientID)), err, "Failed to authorize upload")
		return
	}

	file, ok := h.readUploadedFile(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("client_id", clientID), slog.String("file_name", file.Name))
	logger.Info("Received request to preview ledger upload", slog.Int64("size", file.Size()))

	result, err := h.ledgerService.PreviewReupload(c.Request.Context(), clientID, file)
	if err != nil {
		respondLedgerError(c, logger, err, "Failed to preview upload")
		return
	}

	c.JSON(http.StatusOK, result)
}

// commitUpload godoc
// @Summary Commit a GL upload
// @Description Parses the uploaded General Ledger export and atomically replaces the client's ledger snapshot with it.
// @Tags ledger
// @Accept  multipart/form-data
// @Produce  json
// @Param   client_id path string true "Client ID"
// @Param   file formData file true "General Ledger detail export (.xlsx or .csv)"
// @Success 201 {object} dto.CommitResult
// @Failure 400 {object} map[string]string "Missing file, unknown client or file too large"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Role not permitted"
// @Failure 422 {object} map[string]string "Not a General Ledger export"
// @Failure 500 {object} map[string]string "Failed to commit upload"
// @Security BearerAuth
// @Router /clients/{client_id}/ledger/commit [post]
func (h *ledgerHandler) commitUpload(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	clientID := c.Param("client_id")

	if err := h.ledgerService.AuthorizeUpload(c.Request.Context()); err != nil {
		respondLedgerError(c, logger.With(slog.String("client_id", clientID)), err, "Failed to authorize upload")
		return
	}

	file, ok := h.readUploadedFile(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("client_id", clientID), slog.String("file_name", file.Name))
	logger.Info("Received request to commit ledger upload", slog.Int64("size", file.Size()))

	result, err := h.ledgerService.CommitUpload(c.Request.Context(), clientID, file)
	if err != nil {
		respondLedgerError(c, logger, err, "Failed to commit upload")
		return
	}

	logger.Info("Ledger upload committed", slog.String("upload_id", result.UploadID))
	c.JSON(http.StatusCreated, result)
}

// getCurrentUpload godoc
// @Summary Get the current GL upload
// @Description Returns metadata for the client's current ledger snapshot
// @Tags ledger
// @Produce  json
// @Param   client_id path string true "Client ID"
// @Success 200 {object} dto.LedgerUploadResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Role not permitted"
// @Failure 404 {object} map[string]string "No ledger uploaded for client"
// @Failure 500 {object} map[string]string "Failed to retrieve upload"
// @Security BearerAuth
// @Router /clients/{client_id}/ledger [get]
func (h *ledgerHandler) getCurrentUpload(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c).With(slog.String("client_id", c.Param("client_id")))

	upload, err := h.ledgerService.GetCurrentUpload(c.Request.Context(), c.Param("client_id"))
	if err != nil {
		respondLedgerError(c, logger, err, "Failed to retrieve upload")
		return
	}

	c.JSON(http.StatusOK, dto.ToLedgerUploadResponse(upload))
}

// listTransactions godoc
// @Summary List GL transactions
// @Description Lists the current snapshot's transactions ordered by date and source line, with cursor pagination
// @Tags ledger
// @Produce  json
// @Param   client_id path string true "Client ID"
// @Param   limit query int false "Page size (1-500, default 50)"
// @Param   nextToken query string false "Token from the previous page"
// @Param   account query string false "Only transactions for this account name"
// @Success 200 {object} dto.ListLedgerTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Role not permitted"
// @Failure 404 {object} map[string]string "No ledger uploaded for client"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Security BearerAuth
// @Router /clients/{client_id}/ledger/transactions [get]
func (h *ledgerHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c).With(slog.String("client_id", c.Param("client_id")))

	var params dto.ListLedgerTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListLedgerTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.ledgerService.ListLedgerTransactions(c.Request.Context(), c.Param("client_id"), params)
	if err != nil {
		respondLedgerError(c, logger, err, "Failed to list transactions")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// deleteCurrentUpload godoc
// @Summary Delete the current GL upload
// @Description Removes the client's ledger snapshot and all of its transactions
// @Tags ledger
// @Param   client_id path string true "Client ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Role not permitted"
// @Failure 404 {object} map[string]string "No ledger uploaded for client"
// @Failure 500 {object} map[string]string "Failed to delete upload"
// @Security BearerAuth
// @Router /clients/{client_id}/ledger [delete]
func (h *ledgerHandler) deleteCurrentUpload(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c).With(slog.String("client_id", c.Param("client_id")))
	logger.Info("Received request to delete ledger upload")

	if err := h.ledgerService.DeleteCurrentUpload(c.Request.Context(), c.Param("client_id")); err != nil {
		respondLedgerError(c, logger, err, "Failed to delete upload")
		return
	}

	c.Status(http.StatusNoContent)
}

// readUploadedFile reads the multipart "file" part. On failure it has already written the response.
func (h *ledgerHandler) readUploadedFile(c *gin.Context, logger *slog.Logger) (domain.UploadedFile, bool) {
	if h.maxUploadBytes > 0 && c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("Upload exceeds size limit", slog.Int64("limit", h.maxUploadBytes))
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file exceeds the %d MiB upload limit", h.maxUploadBytes>>20)})
			return domain.UploadedFile{}, false
		}
		logger.Warn("Missing multipart file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form field 'file' is required"})
		return domain.UploadedFile{}, false
	}

	f, err := header.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return domain.UploadedFile{}, false
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		logger.Error("Failed to read uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return domain.UploadedFile{}, false
	}

	return domain.UploadedFile{Name: header.Filename, Content: content}, true
}

// respondLedgerError maps service errors to HTTP responses. Unexpected errors are logged
// and reported with the generic message.
func respondLedgerError(c *gin.Context, logger *slog.Logger, err error, generic string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrFormat):
		logger.Warn("Unrecognized ledger export", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No ledger uploaded for client"})
	default:
		logger.Error(generic, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": generic})
	}
}
