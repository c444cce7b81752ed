package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sttstack/sttstack/domain"
	"github.com/sttstack/sttstack/domain/repositories"
)

// InitFormatRoutes registers the audio-format-service endpoints on e. The
// handler is injected by main and owned for the whole server lifetime.
func InitFormatRoutes(e *echo.Echo, handler repositories.AudioFormatHandler, logger *zap.Logger) {
	e.GET("/health", func(c echo.Context) error {
		return formatHealth(c, handler)
	})
	e.GET("/formats", func(c echo.Context) error {
		return c.JSON(http.StatusOK, handler.GetSupportedFormats())
	})
	e.POST("/validate", func(c echo.Context) error {
		return validateFormat(c, handler, logger)
	})
	e.POST("/detect", func(c echo.Context) error {
		return detectFormat(c, handler, logger)
	})
	e.POST("/metadata", func(c echo.Context) error {
		return getMetadata(c, handler, logger)
	})
	e.POST("/convert", func(c echo.Context) error {
		return convertFormat(c, handler, logger)
	})
	e.GET("/convert/:file_id", func(c echo.Context) error {
		return c.JSON(http.StatusNotImplemented, ErrorResponse{
			Error:   "not_implemented",
			Message: "Conversion status lookup is not implemented",
		})
	})
}

func formatHealth(c echo.Context, handler repositories.AudioFormatHandler) error {
	handlerStatus := "initialized"
	if handler == nil {
		handlerStatus = "not_initialized"
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: ServiceVersion,
		Dependencies: map[string]string{
			"audio_handler": handlerStatus,
			"converter":     "mock",
		},
	})
}

func validateFormat(c echo.Context, handler repositories.AudioFormatHandler, logger *zap.Logger) error {
	path, cleanup, err := saveUpload(c, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	expected := c.FormValue("expected_format")

	valid, err := handler.ValidateFormat(path, expected)
	if err != nil {
		if domain.ErrorCode(err) != "" {
			// Domain failures are a negative validation, not a server error.
			return c.JSON(http.StatusOK, FormatValidationResponse{
				Valid:   false,
				Message: err.Error(),
			})
		}
		logger.Error("Format validation failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "format validation failed")
	}

	response := FormatValidationResponse{Valid: valid, Message: "format validation failed"}
	if valid {
		response.Message = "format validation successful"
		if format, detectErr := handler.DetectFormat(path); detectErr == nil {
			response.Format = format
		}
	}
	return c.JSON(http.StatusOK, response)
}

func detectFormat(c echo.Context, handler repositories.AudioFormatHandler, logger *zap.Logger) error {
	path, cleanup, err := saveUpload(c, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	format, err := handler.DetectFormat(path)
	if err != nil {
		return mapDomainError(c, err, logger, "format detection failed")
	}

	return c.JSON(http.StatusOK, FormatDetectionResponse{
		Format:     format,
		Confidence: 0.95,
	})
}

func getMetadata(c echo.Context, handler repositories.AudioFormatHandler, logger *zap.Logger) error {
	path, cleanup, err := saveUpload(c, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	metadata, err := handler.GetAudioMetadata(path)
	if err != nil {
		return mapDomainError(c, err, logger, "metadata extraction failed")
	}

	return c.JSON(http.StatusOK, metadata)
}

func convertFormat(c echo.Context, handler repositories.AudioFormatHandler, logger *zap.Logger) error {
	var req ConvertRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// Unsupported targets are rejected before any processing.
	if !handler.IsFormatSupported(req.TargetFormat) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "unsupported_target_format",
			Message: "Target format '" + req.TargetFormat + "' is not supported",
		})
	}

	path, cleanup, err := saveUpload(c, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	originalFormat, err := handler.DetectFormat(path)
	if err != nil {
		return conversionFailure(c, req.TargetFormat, err, logger)
	}

	convertedPath, err := handler.ConvertIfNeeded(c.Request().Context(), path, req.TargetFormat)
	if err != nil {
		return conversionFailure(c, req.TargetFormat, err, logger)
	}

	return c.JSON(http.StatusOK, ConversionResponse{
		Success:        true,
		OriginalFormat: originalFormat,
		TargetFormat:   req.TargetFormat,
		FilePath:       convertedPath,
		Message:        "Conversion completed successfully",
	})
}

// conversionFailure maps domain errors during conversion to a 200 body with
// success=false; anything else is a 500.
func conversionFailure(c echo.Context, targetFormat string, err error, logger *zap.Logger) error {
	if domain.ErrorCode(err) != "" {
		return c.JSON(http.StatusOK, ConversionResponse{
			Success:      false,
			TargetFormat: targetFormat,
			Message:      err.Error(),
		})
	}
	logger.Error("Conversion failed", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "conversion failed")
}

// mapDomainError turns domain errors into a 400 carrying the serialized
// error; anything unrecognized surfaces as a 500 with a generic message.
func mapDomainError(c echo.Context, err error, logger *zap.Logger, generic string) error {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		return c.JSON(http.StatusBadRequest, domainErr)
	}
	logger.Error(generic, zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, generic)
}
