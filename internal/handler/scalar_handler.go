package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/notetool/internal/pkg/response"
	"github.com/xxxsen/notetool/internal/remotestore"
	"github.com/xxxsen/notetool/internal/service"
)

type ScalarHandler struct {
	store *service.StoreService
}

func NewScalarHandler(store *service.StoreService) *ScalarHandler {
	return &ScalarHandler{store: store}
}

func (h *ScalarHandler) Get(c *gin.Context) {
	value, err := h.store.Scalar(c.Request.Context(), getNamespace(c), c.Param("key"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, remotestore.ScalarMessage{Value: value})
}

func (h *ScalarHandler) Set(c *gin.Context) {
	limitBody(c)
	var req remotestore.ScalarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.store.SetScalar(c.Request.Context(), getNamespace(c), c.Param("key"), req.Value); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}
