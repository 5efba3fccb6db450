package handler

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/Aashish23092/payslip-extractor/dto"
	"github.com/Aashish23092/payslip-extractor/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type PayslipHandler struct {
	payslipService *service.PayslipService
	maxFileSize    int64
	logger         *slog.Logger
}

func NewPayslipHandler(payslipService *service.PayslipService, maxFileSize int64, logger *slog.Logger) *PayslipHandler {
	return &PayslipHandler{
		payslipService: payslipService,
		maxFileSize:    maxFileSize,
		logger:         logger,
	}
}

// ParsePayslips handles the POST /payslips/parse endpoint
func (h *PayslipHandler) ParsePayslips(c *gin.Context) {
	docs, ok := h.readDocuments(c)
	if !ok {
		return
	}

	h.requestLogger(c).Info("parsing payslips", "files", len(docs))
	response := h.payslipService.ParseBatch(c.Request.Context(), docs)
	c.JSON(batchStatus(response.Documents), response)
}

// DetectUnknownConcepts handles the POST /payslips/unknown-concepts endpoint
func (h *PayslipHandler) DetectUnknownConcepts(c *gin.Context) {
	docs, ok := h.readDocuments(c)
	if !ok {
		return
	}

	h.requestLogger(c).Info("scanning payslips for unknown concepts", "files", len(docs))
	response := h.payslipService.DetectUnknownConceptsBatch(c.Request.Context(), docs)
	c.JSON(batchStatus(response.Documents), response)
}

// ListConcepts handles the GET /concepts endpoint
func (h *PayslipHandler) ListConcepts(c *gin.Context) {
	c.JSON(http.StatusOK, h.payslipService.Concepts())
}

// batchStatus is 422 when no document of the batch could be processed, so a
// client sending a single unreadable payslip gets a failing status. Mixed
// batches are 200 with the failures reported per document.
func batchStatus(results []dto.DocumentResult) int {
	for _, r := range results {
		if r.Error == "" {
			return http.StatusOK
		}
	}
	return http.StatusUnprocessableEntity
}

// readDocuments loads every uploaded file into memory. It writes the error
// response itself and returns false when the request is unusable.
func (h *PayslipHandler) readDocuments(c *gin.Context) ([]service.Document, bool) {
	var request dto.PayslipUploadRequest
	if err := c.ShouldBindWith(&request, binding.FormMultipart); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid upload request", err)
		return nil, false
	}
	if err := request.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, "No files provided", err)
		return nil, false
	}

	docs := make([]service.Document, 0, len(request.Files))
	for _, fileHeader := range request.Files {
		if fileHeader.Size > h.maxFileSize {
			h.sendError(c, http.StatusRequestEntityTooLarge, "File too large",
				fmt.Errorf("%s is %d bytes, limit is %d", fileHeader.Filename, fileHeader.Size, h.maxFileSize))
			return nil, false
		}
		data, err := readFile(fileHeader)
		if err != nil {
			h.sendError(c, http.StatusBadRequest, "Failed to read uploaded file", err)
			return nil, false
		}
		docs = append(docs, service.Document{
			Filename: fileHeader.Filename,
			Data:     data,
			Password: request.Password,
		})
	}
	return docs, true
}

func readFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", fileHeader.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileHeader.Filename, err)
	}
	return data, nil
}

func (h *PayslipHandler) requestLogger(c *gin.Context) *slog.Logger {
	return h.logger.With("request_id", c.GetString(requestIDKey))
}

// sendError sends a structured error response. The error itself is only logged.
func (h *PayslipHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	if err != nil {
		h.requestLogger(c).Warn(message, "error", err)
	}

	c.AbortWithStatusJSON(statusCode, dto.ErrorResponse{
		Error:   "PAYSLIP_REQUEST_FAILED",
		Message: message,
		Code:    statusCode,
	})
}
