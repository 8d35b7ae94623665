package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialnet/pkg/apperr"
)

// Response is the JSON envelope every handler writes.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "ok", Data: data})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Response{Code: http.StatusUnauthorized, Message: msg})
}

// Error maps a service error through the apperr taxonomy.
func Error(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	c.JSON(status, Response{Code: status, Message: err.Error()})
}
