package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// saveUpload writes the multipart "file" part to a uuid-prefixed temp file
// and returns its path with a cleanup func the caller must defer. A missing
// part or empty filename is a 422 before the core is reached.
func saveUpload(c echo.Context, logger *zap.Logger) (string, func(), error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", nil, echo.NewHTTPError(http.StatusUnprocessableEntity, "file is required")
	}
	if fileHeader.Filename == "" {
		return "", nil, echo.NewHTTPError(http.StatusUnprocessableEntity, "file must have a filename")
	}

	src, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", zap.Error(err))
		return "", nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to read upload")
	}
	defer src.Close()

	path := filepath.Join(os.TempDir(),
		fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(fileHeader.Filename)))

	dst, err := os.Create(path)
	if err != nil {
		logger.Error("Failed to create temp file", zap.String("path", path), zap.Error(err))
		return "", nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to store upload")
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		logger.Error("Failed to write temp file", zap.String("path", path), zap.Error(err))
		return "", nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to store upload")
	}
	dst.Close()

	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove temp file", zap.String("path", path), zap.Error(err))
		}
	}
	return path, cleanup, nil
}
