package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/notetool/internal/pkg/errcode"
	"github.com/xxxsen/notetool/internal/pkg/response"
	"github.com/xxxsen/notetool/internal/remotestore"
)

const ContextNamespaceKey = "namespace"

// Namespace decodes the namespace path segment. Holding a token is all it
// takes to read or write its namespace; nothing here checks who sent it.
func Namespace() gin.HandlerFunc {
	return func(c *gin.Context) {
		namespace, err := remotestore.DecodeNamespace(c.Param("ns"))
		if err != nil {
			response.Error(c, errcode.ErrUnauthenticated, "namespace required")
			c.Abort()
			return
		}
		c.Set(ContextNamespaceKey, namespace)
		c.Next()
	}
}
