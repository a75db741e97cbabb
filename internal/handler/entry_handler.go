package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/notetool/internal/pkg/response"
	"github.com/xxxsen/notetool/internal/remotestore"
	"github.com/xxxsen/notetool/internal/service"
)

type EntryHandler struct {
	store *service.StoreService
}

func NewEntryHandler(store *service.StoreService) *EntryHandler {
	return &EntryHandler{store: store}
}

func (h *EntryHandler) List(c *gin.Context) {
	entries, err := h.store.List(c.Request.Context(), getNamespace(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, remotestore.ListMessage{Entries: entries})
}

func (h *EntryHandler) Create(c *gin.Context) {
	limitBody(c)
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		bindError(c, err)
		return
	}
	key, err := h.store.Create(c.Request.Context(), getNamespace(c), fields)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, remotestore.CreateResult{ID: key})
}

func (h *EntryHandler) Update(c *gin.Context) {
	limitBody(c)
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		bindError(c, err)
		return
	}
	if err := h.store.Update(c.Request.Context(), getNamespace(c), c.Param("key"), fields); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *EntryHandler) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), getNamespace(c), c.Param("key")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}
