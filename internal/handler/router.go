package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/notetool/internal/middleware"
)

type RouterDeps struct {
	Entries    *EntryHandler
	Scalars    *ScalarHandler
	Watch      *WatchHandler
	WriteLimit time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.Use(middleware.RequestID())

	ns := api.Group("/ns/:ns")
	ns.Use(middleware.Namespace())
	ns.GET("/entries", deps.Entries.List)
	ns.GET("/scalars/:key", deps.Scalars.Get)
	ns.GET("/watch/entries", deps.Watch.Entries)
	ns.GET("/watch/scalars/:key", deps.Watch.Scalar)

	writes := ns.Group("")
	writes.Use(middleware.RateLimit(deps.WriteLimit))
	writes.POST("/entries", deps.Entries.Create)
	writes.PUT("/entries/:key", deps.Entries.Update)
	writes.DELETE("/entries/:key", deps.Entries.Delete)
	writes.PUT("/scalars/:key", deps.Scalars.Set)
}
