package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"recordformatter/exporter"
	"recordformatter/importer"
	"recordformatter/internal/config"
	"recordformatter/pipeline"
	apperrors "recordformatter/server/errors"
	"recordformatter/server/middleware"
)

// RecordsHandler принимает файл с записями и возвращает отформатированную таблицу
type RecordsHandler struct {
	config   *config.Config
	plain    *pipeline.Processor
	enriched *pipeline.Processor // nil, если обогащение выключено
	logger   *slog.Logger
}

// NewRecordsHandler создает обработчик. enriched может быть nil.
func NewRecordsHandler(cfg *config.Config, plain, enriched *pipeline.Processor, logger *slog.Logger) *RecordsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordsHandler{
		config:   cfg,
		plain:    plain,
		enriched: enriched,
		logger:   logger,
	}
}

// Normalize обрабатывает POST /api/v1/records/normalize.
// Поле формы file, параметры: format, enrich, name_mode, sheet, separator, encoding.
func (h *RecordsHandler) Normalize(c *gin.Context) {
	maxBytes := int64(h.config.MaxUploadSizeMB) << 20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteError(c, h.logger, apperrors.NewPayloadTooLargeError(
				fmt.Sprintf("File exceeds %d MB", h.config.MaxUploadSizeMB), err))
			return
		}
		middleware.WriteError(c, h.logger, apperrors.NewValidationError("Form field 'file' is required", err))
		return
	}

	inputFormat, err := importer.DetectFormat(fileHeader.Filename)
	if err != nil {
		middleware.WriteError(c, h.logger, apperrors.FromImportError(err))
		return
	}

	importOpts, appErr := h.importOptions(c)
	if appErr != nil {
		middleware.WriteError(c, h.logger, appErr)
		return
	}

	exportOpts, appErr := h.exportOptions(c)
	if appErr != nil {
		middleware.WriteError(c, h.logger, appErr)
		return
	}

	processor, enrich, appErr := h.processor(c)
	if appErr != nil {
		middleware.WriteError(c, h.logger, appErr)
		return
	}
	exportOpts.IncludeCode = enrich

	file, err := fileHeader.Open()
	if err != nil {
		middleware.WriteError(c, h.logger, apperrors.NewInternalError("failed to open uploaded file", err))
		return
	}
	defer file.Close()

	recs, err := importer.Import(file, inputFormat, importOpts)
	if err != nil {
		middleware.WriteError(c, h.logger, apperrors.FromImportError(err).WithContext(fileHeader.Filename))
		return
	}

	result, err := processor.Process(c.Request.Context(), recs)
	if err != nil {
		middleware.WriteError(c, h.logger, apperrors.NewServiceUnavailableError("Processing was interrupted", err))
		return
	}
	exportOpts.RunID = result.RunID

	base := strings.TrimSuffix(filepath.Base(fileHeader.Filename), filepath.Ext(fileHeader.Filename))
	c.Header("Content-Type", exporter.ContentType(exportOpts.Format))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+"_formatted."+string(exportOpts.Format)))
	c.Header("X-Run-ID", result.RunID)
	c.Header("X-Rows-Processed", strconv.Itoa(result.Stats.Rows))
	c.Status(http.StatusOK)

	if err := exporter.Export(c.Writer, result.Records, exportOpts); err != nil {
		// Заголовки уже отправлены, остается только залогировать
		h.logger.Error("Failed to write export",
			"error", err,
			"run_id", result.RunID,
			"request_id", middleware.GetRequestIDFromGin(c))
		_ = c.Error(err)
		return
	}

	h.logger.Info("Records normalized",
		"file", fileHeader.Filename,
		"rows", result.Stats.Rows,
		"format", exportOpts.Format,
		"enrich", enrich,
		"run_id", result.RunID,
		"request_id", middleware.GetRequestIDFromGin(c))
}

func (h *RecordsHandler) importOptions(c *gin.Context) (importer.Options, *apperrors.AppError) {
	opts := importer.Options{
		Sheet:     c.DefaultQuery("sheet", h.config.Input.Sheet),
		Separator: h.config.Input.Separator(),
		Encoding:  c.DefaultQuery("encoding", h.config.Input.CSVEncoding),
	}

	if sep, ok := c.GetQuery("separator"); ok {
		if utf8.RuneCountInString(sep) != 1 {
			return opts, apperrors.NewValidationError("Parameter 'separator' must be a single character", nil)
		}
		opts.Separator, _ = utf8.DecodeRuneInString(sep)
	}

	return opts, nil
}

func (h *RecordsHandler) exportOptions(c *gin.Context) (exporter.Options, *apperrors.AppError) {
	opts := exporter.Options{
		Format:    exporter.FormatExcel,
		NameMode:  h.config.Export.NameMode,
		SheetName: h.config.Export.SheetName,
	}

	if raw, ok := c.GetQuery("format"); ok {
		format, err := exporter.ParseFormat(raw)
		if err != nil {
			return opts, apperrors.NewValidationError("Parameter 'format' must be xlsx, csv or json", err)
		}
		if format == exporter.FormatSQLite {
			return opts, apperrors.NewValidationError("SQLite export is only available from the command line", nil)
		}
		opts.Format = format
	}

	if raw, ok := c.GetQuery("name_mode"); ok {
		mode, err := exporter.ParseNameMode(raw)
		if err != nil {
			return opts, apperrors.NewValidationError("Parameter 'name_mode' must be combined or parts", err)
		}
		opts.NameMode = mode
	}

	return opts, nil
}

// processor выбирает обработчик пакета по параметру enrich
func (h *RecordsHandler) processor(c *gin.Context) (*pipeline.Processor, bool, *apperrors.AppError) {
	enrich := h.enriched != nil
	if raw, ok := c.GetQuery("enrich"); ok {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, false, apperrors.NewValidationError("Parameter 'enrich' must be true or false", err)
		}
		enrich = value
	}

	if !enrich {
		return h.plain, false, nil
	}
	if h.enriched == nil {
		return nil, false, apperrors.NewValidationError("Code enrichment is disabled on this server", nil)
	}
	return h.enriched, true, nil
}
