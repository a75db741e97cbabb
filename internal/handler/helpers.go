package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/notetool/internal/middleware"
	"github.com/xxxsen/notetool/internal/pkg/errcode"
	appErr "github.com/xxxsen/notetool/internal/pkg/errors"
	"github.com/xxxsen/notetool/internal/pkg/response"
)

const maxBodyBytes = 1 << 20

func getNamespace(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextNamespaceKey)
	namespace, _ := value.(string)
	return namespace
}

func limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
}

func formatBodyLimit(bytes int64) string {
	const kb = 1024
	if bytes <= 0 {
		return "0KB"
	}
	value := bytes / kb
	if value <= 0 {
		value = 1
	}
	return strconv.FormatInt(value, 10) + "KB"
}

func bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, errcode.ErrInvalid, "request body exceeds "+formatBodyLimit(tooLarge.Limit))
		return
	}
	response.Error(c, errcode.ErrInvalid, "invalid request")
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get(middleware.ContextRequestIDKey)
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrUnauthenticated):
		response.Error(c, errcode.ErrUnauthenticated, "unauthenticated")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, err.Error())
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, errcode.ErrConflict, "conflict")
	case errors.Is(err, appErr.ErrTooMany):
		response.Error(c, errcode.ErrTooMany, "too many requests")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
