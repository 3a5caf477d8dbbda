package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/El-Ikhsan/ktp-extractor/internal/middleware"
	"github.com/El-Ikhsan/ktp-extractor/internal/models"
	"github.com/El-Ikhsan/ktp-extractor/internal/service"
	"github.com/El-Ikhsan/ktp-extractor/internal/utils"
)

// ExtractionHandler handles the identity extraction endpoints.
type ExtractionHandler struct {
	extractionService *service.ExtractionService
}

// NewExtractionHandler creates a new extraction handler.
func NewExtractionHandler(extractionService *service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

// ExtractionResponse is the envelope returned by the extraction endpoints.
type ExtractionResponse struct {
	Success bool                   `json:"success"`
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    interface{}            `json:"data"`
	Meta    *models.ExtractionMeta `json:"meta,omitempty"`
}

// Extract handles POST /v1/identity/extract
// @Summary Extract and normalize KTP fields from a card image
// @Tags Identity Extraction
// @Accept json,multipart/form-data
// @Produce json
// @Param image body string true "Base64 encoded image or file upload"
// @Param engine query string false "OCR engine (tesseract, easyocr, rekognition)"
// @Success 200 {object} ExtractionResponse
// @Failure 400 {object} ExtractionResponse
// @Router /v1/identity/extract [post]
func (h *ExtractionHandler) Extract(c *gin.Context) {
	requestID := h.generateRequestID("ext")
	client := middleware.GetClient(c)
	if client == nil {
		h.errorResponse(c, requestID, 401, "AUTHENTICATION_ERROR", "Invalid authentication")
		return
	}

	imageData, engine, err := h.parseExtractRequest(c)
	if err != nil {
		h.errorResponse(c, requestID, 400, "VALIDATION_ERROR", err.Error())
		return
	}

	record, cached, err := h.extractionService.Extract(c.Request.Context(), client.ID, imageData, engine)
	if err != nil {
		h.handleExtractError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, ExtractionResponse{
		Success: true,
		Code:    200,
		Message: "Successfully extracted KTP data",
		Data:    record,
		Meta: &models.ExtractionMeta{
			RequestID:        requestID,
			Timestamp:        time.Now().Format(time.RFC3339),
			ProcessingTimeMs: record.ProcessingTimeMs,
			Engine:           record.Engine,
			Cached:           cached,
		},
	})
}

// GetExtraction handles GET /v1/identity/extract/:id
// @Summary Get a stored extraction record by ID
// @Tags Identity Extraction
// @Produce json
// @Param id path string true "Extraction record ID (UUID)"
// @Success 200 {object} ExtractionResponse
// @Failure 404 {object} ExtractionResponse
// @Router /v1/identity/extract/{id} [get]
func (h *ExtractionHandler) GetExtraction(c *gin.Context) {
	requestID := h.generateRequestID("get_ext")
	client := middleware.GetClient(c)
	if client == nil {
		h.errorResponse(c, requestID, 401, "AUTHENTICATION_ERROR", "Invalid authentication")
		return
	}

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		h.errorResponse(c, requestID, 400, "VALIDATION_ERROR", "ID must be a valid UUID format")
		return
	}

	record, err := h.extractionService.GetExtraction(c.Request.Context(), id, client.ID)
	if err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			h.errorResponse(c, requestID, 404, "NOT_FOUND", "No extraction record found with id: "+id)
			return
		}
		h.errorResponse(c, requestID, 500, "INTERNAL_ERROR", "Failed to retrieve extraction record")
		return
	}

	c.JSON(http.StatusOK, ExtractionResponse{
		Success: true,
		Code:    200,
		Message: "Successfully retrieved extraction data",
		Data:    record,
		Meta: &models.ExtractionMeta{
			RequestID: requestID,
			Timestamp: time.Now().Format(time.RFC3339),
			Engine:    record.Engine,
		},
	})
}

// Engines handles GET /v1/identity/engines
func (h *ExtractionHandler) Engines(c *gin.Context) {
	utils.Success(c, 200, "Available OCR engines", gin.H{
		"engines": h.extractionService.Engines(),
	})
}

// parseExtractRequest reads the image from a JSON body or a multipart form.
// The engine can come from the body, the form, or the query string.
func (h *ExtractionHandler) parseExtractRequest(c *gin.Context) ([]byte, string, error) {
	contentType := c.GetHeader("Content-Type")
	engine := c.Query("engine")

	var imageData []byte

	if contentType == "" || strings.HasPrefix(contentType, "application/json") {
		var req models.ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, "", err
		}

		decoded, err := decodeBase64Image(req.Image)
		if err != nil {
			return nil, "", fmt.Errorf("invalid base64 image: %w", err)
		}
		imageData = decoded
		if req.Engine != "" {
			engine = req.Engine
		}
	} else {
		file, _, err := c.Request.FormFile("image")
		if err != nil {
			return nil, "", errors.New("image file is required")
		}
		defer file.Close()

		imageData, err = io.ReadAll(file)
		if err != nil {
			return nil, "", err
		}

		if formEngine := c.PostForm("engine"); formEngine != "" {
			engine = formEngine
		}
	}

	if len(imageData) == 0 {
		return nil, "", errors.New("image is required")
	}

	return imageData, engine, nil
}

// decodeBase64Image decodes a base64 payload, tolerating a data URI prefix.
func decodeBase64Image(imageStr string) ([]byte, error) {
	if idx := strings.Index(imageStr, ","); idx >= 0 && strings.HasPrefix(imageStr, "data:") {
		imageStr = imageStr[idx+1:]
	}
	return base64.StdEncoding.DecodeString(imageStr)
}

// handleExtractError maps service errors to HTTP statuses.
func (h *ExtractionHandler) handleExtractError(c *gin.Context, requestID string, err error) {
	switch {
	case errors.Is(err, service.ErrImageTooLarge):
		h.errorResponse(c, requestID, http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE", err.Error())
	case errors.Is(err, service.ErrUnsupportedImage):
		h.errorResponse(c, requestID, http.StatusUnsupportedMediaType, "UNSUPPORTED_IMAGE", err.Error())
	case errors.Is(err, service.ErrUnknownEngine):
		h.errorResponse(c, requestID, 400, "UNKNOWN_ENGINE", err.Error())
	default:
		h.errorResponse(c, requestID, http.StatusBadGateway, "EXTRACTION_FAILED", "Field detection failed")
	}
}

// errorResponse sends an error response with request metadata.
func (h *ExtractionHandler) errorResponse(c *gin.Context, requestID string, code int, errType, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"code":    code,
		"message": message,
		"error": gin.H{
			"type":    errType,
			"details": []string{message},
		},
		"meta": gin.H{
			"requestId": requestID,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// generateRequestID generates a unique request ID.
func (h *ExtractionHandler) generateRequestID(prefix string) string {
	return fmt.Sprintf("req_%s_%s", prefix, utils.GenerateRandomString(12))
}
