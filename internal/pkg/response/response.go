package response

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response. Code 0 means success.
type Envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "", "data": data})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, gin.H{"code": code, "msg": message})
}
