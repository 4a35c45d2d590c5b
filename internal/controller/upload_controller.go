package controller

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docchat-be/internal/apperror"
	"docchat-be/internal/config"
	"docchat-be/internal/dto"
	"docchat-be/internal/pkg/logger"
	"docchat-be/internal/pkg/serverutils"
	"docchat-be/internal/service"
	"docchat-be/pkg/documents"
)

type IUploadController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
}

type uploadController struct {
	ingestService service.IIngestService
	publisher     service.IPublisherService
	uploadDir     string
	maxFileSize   int64
	maxFileCount  int
	log           logger.ILogger
}

func NewUploadController(
	ingestService service.IIngestService,
	publisher service.IPublisherService,
	cfg *config.Config,
	log logger.ILogger,
) IUploadController {
	if err := os.MkdirAll(cfg.App.UploadDir, 0o755); err != nil {
		log.Error("upload", "failed to create upload directory", map[string]interface{}{
			"dir":   cfg.App.UploadDir,
			"error": err.Error(),
		})
	}
	return &uploadController{
		ingestService: ingestService,
		publisher:     publisher,
		uploadDir:     cfg.App.UploadDir,
		maxFileSize:   cfg.Upload.MaxFileSize,
		maxFileCount:  cfg.Upload.MaxFileCount,
		log:           log,
	}
}

func (c *uploadController) RegisterRoutes(r fiber.Router) {
	r.Post("/upload", c.Upload)
}

func (c *uploadController) Upload(ctx *fiber.Ctx) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return apperror.Validation("No files uploaded")
	}

	files := form.File["files"]
	if len(files) == 0 {
		return apperror.Validation("No files uploaded")
	}
	if len(files) > c.maxFileCount {
		return apperror.Validation(fmt.Sprintf("Too many files: maximum is %d per upload", c.maxFileCount))
	}
	for _, f := range files {
		if f.Size > c.maxFileSize {
			return apperror.Validation(fmt.Sprintf("File %s exceeds the %d MB limit", f.Filename, c.maxFileSize/(1024*1024)))
		}
		if !documents.IsSupported(f.Filename) {
			return apperror.Validation(fmt.Sprintf("Unsupported file type: %s. Only PDF and DOCX are supported.", f.Filename))
		}
	}

	sessionID := serverutils.SessionID(ctx)

	savedPaths := make([]string, 0, len(files))
	fileNames := make([]string, 0, len(files))
	for _, f := range files {
		dst := filepath.Join(c.uploadDir, uuid.NewString()+"_"+filepath.Base(f.Filename))
		if err := ctx.SaveFile(f, dst); err != nil {
			// Anything already written belongs to nobody yet; release it.
			c.releaseOrphans(sessionID, savedPaths)
			return apperror.Provider("file storage", err)
		}
		savedPaths = append(savedPaths, dst)
		fileNames = append(fileNames, f.Filename)
	}

	result, err := c.ingestService.Ingest(ctx.Context(), sessionID, savedPaths)
	if err != nil {
		// The batch never got attached, so these files have no owner.
		c.releaseOrphans(sessionID, savedPaths)
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(
		fmt.Sprintf("Successfully processed %d files", len(files)),
		dto.UploadResponse{
			FileCount:     len(files),
			DocumentCount: result.DocumentCount,
			Files:         fileNames,
		},
	))
}

func (c *uploadController) releaseOrphans(sessionID string, paths []string) {
	if err := c.publisher.PublishFileRelease(sessionID, paths); err != nil {
		c.log.Warn("upload", "failed to publish orphan file release", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}
