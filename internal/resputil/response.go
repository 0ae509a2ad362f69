package resputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response[T any] struct {
	Code ErrorCode `json:"code"`
	Data T         `json:"data"`
	Msg  string    `json:"msg"`
}

// FieldsData is the payload of a validation failure.
type FieldsData struct {
	Fields []string `json:"fields"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response[any]{
		Code: OK,
		Data: data,
		Msg:  "",
	})
}

func SuccessWithStatus(c *gin.Context, status int, data any) {
	c.JSON(status, Response[any]{
		Code: OK,
		Data: data,
		Msg:  "",
	})
}

// Error responds 500. msg must be safe to show to the caller.
func Error(c *gin.Context, msg string, code ErrorCode) {
	HTTPError(c, http.StatusInternalServerError, msg, code)
}

func HTTPError(c *gin.Context, httpCode int, msg string, errorCode ErrorCode) {
	c.JSON(httpCode, Response[any]{
		Code: errorCode,
		Data: nil,
		Msg:  msg,
	})
}

func BadRequestError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusBadRequest, msg, InvalidRequest)
}

func NotFoundError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusNotFound, msg, NotFound)
}

func ConflictError(c *gin.Context, msg string, code ErrorCode) {
	HTTPError(c, http.StatusConflict, msg, code)
}

func UnauthorizedError(c *gin.Context, msg string, code ErrorCode) {
	HTTPError(c, http.StatusUnauthorized, msg, code)
}

// ValidationError responds 400 and lists the offending JSON fields.
func ValidationError(c *gin.Context, msg string, code ErrorCode, fields []string) {
	c.JSON(http.StatusBadRequest, Response[FieldsData]{
		Code: code,
		Data: FieldsData{Fields: fields},
		Msg:  msg,
	})
}
