package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sttstack/sttstack/domain"
	"github.com/sttstack/sttstack/domain/repositories"
	"github.com/sttstack/sttstack/internal/websocket"
)

// InitSTTRoutes registers the stt-service endpoints on e. The model is
// injected by main; hub may be nil to disable the streaming endpoint.
func InitSTTRoutes(e *echo.Echo, model repositories.SpeechToTextModel, hub *websocket.Hub, logger *zap.Logger) {
	e.GET("/health", func(c echo.Context) error {
		return modelHealth(c, model)
	})
	e.GET("/formats", func(c echo.Context) error {
		return c.JSON(http.StatusOK, model.GetSupportedFormats())
	})
	e.GET("/model/info", func(c echo.Context) error {
		return c.JSON(http.StatusOK, model.GetModelInfo())
	})
	e.POST("/model/load", func(c echo.Context) error {
		return loadModel(c, model, logger)
	})
	e.POST("/model/unload", func(c echo.Context) error {
		return unloadModel(c, model, logger)
	})
	e.POST("/transcribe", func(c echo.Context) error {
		return transcribe(c, model, logger)
	})

	if hub != nil {
		e.GET("/ws", func(c echo.Context) error {
			return websocket.Serve(hub, c)
		})
	}
}

func modelHealth(c echo.Context, model repositories.SpeechToTextModel) error {
	status := model.HealthCheck(c.Request().Context())

	code := http.StatusOK
	if status.Status == repositories.HealthStatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}

func loadModel(c echo.Context, model repositories.SpeechToTextModel, logger *zap.Logger) error {
	if err := model.LoadModel(c.Request().Context()); err != nil {
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			return c.JSON(http.StatusInternalServerError, domainErr)
		}
		logger.Error("Model load failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "model load failed")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "loaded"})
}

func unloadModel(c echo.Context, model repositories.SpeechToTextModel, logger *zap.Logger) error {
	if err := model.UnloadModel(c.Request().Context()); err != nil {
		logger.Error("Model unload failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "model unload failed")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "unloaded"})
}

func transcribe(c echo.Context, model repositories.SpeechToTextModel, logger *zap.Logger) error {
	var options TranscribeRequest
	if err := c.Bind(&options); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if err := c.Validate(&options); err != nil {
		return err
	}

	path, cleanup, err := saveUpload(c, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	audioFormat := options.AudioFormat
	if audioFormat == "" {
		audioFormat = strings.TrimPrefix(filepath.Ext(path), ".")
	}

	req, err := domain.NewAudioRequestWithOptions(path, audioFormat, options.OutputFormat, nil, nil)
	if err != nil {
		return transcriptionError(c, err, logger)
	}

	result, err := model.Transcribe(c.Request().Context(), req)
	if err != nil {
		return transcriptionError(c, err, logger)
	}

	return c.JSON(http.StatusOK, result)
}

// transcriptionError maps domain errors onto HTTP statuses: model-load
// failures are 503, request problems are 400, processing failures are 500.
// The serialized error body is preserved in all three cases.
func transcriptionError(c echo.Context, err error, logger *zap.Logger) error {
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		logger.Error("Transcription failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "transcription failed")
	}

	switch domainErr.Code {
	case domain.CodeModelLoad:
		return c.JSON(http.StatusServiceUnavailable, domainErr)
	case domain.CodeAudioFormat, domain.CodeValidation:
		return c.JSON(http.StatusBadRequest, domainErr)
	default:
		return c.JSON(http.StatusInternalServerError, domainErr)
	}
}
