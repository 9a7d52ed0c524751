// Package api exposes the extraction engine over HTTP.
package api

import (
	"fmt"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/insightdelivered/statement-engine/internal/engine"
	"github.com/insightdelivered/statement-engine/internal/extractor"
	"github.com/insightdelivered/statement-engine/internal/models"
)

const version = "1.1.0"

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	log *zap.Logger
	eng *engine.Engine
}

// NewHandler returns a handler backed by the given engine.
func NewHandler(log *zap.Logger, eng *engine.Engine) *Handler {
	return &Handler{log: log, eng: eng}
}

// Register sets up middleware and routes on the app.
func (h *Handler) Register(app *fiber.App) {
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/extract", h.HandleExtract)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": version,
	})
}

// HandleExtract accepts a multipart statement upload and returns the
// extraction envelope. Optional form fields: "password" for locked PDFs,
// "format" to skip autodetection.
func (h *Handler) HandleExtract(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return errorJSON(c, fiber.StatusBadRequest, "Only PDF files are supported.")
	}

	format, err := models.ParseFormat(c.FormValue("format"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create temp file.")
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveFile(fileHeader, tmpPath); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to save uploaded file.")
	}

	doc, err := extractor.Extract(tmpPath, c.FormValue("password"))
	if err != nil {
		h.log.Warn("extraction failed",
			zap.String("file", fileHeader.Filename),
			zap.Error(err))
		return errorJSON(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("PDF extraction failed: %v", err))
	}

	res := h.eng.ExtractAs(models.Document{
		SourceFile: fileHeader.Filename,
		Method:     doc.Method,
		Pages:      doc.Pages,
	}, format)
	return c.JSON(res)
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Error: msg})
}
