package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Success bool `json:"success"`
	Code    int  `json:"code"`
	Extras  any  `json:"extras"`
}

func NewResponse(success bool, code int, extras any) Response {
	return Response{
		Success: success,
		Code:    code,
		Extras:  extras,
	}
}

// SuccessResponse returns a JSON response with a success message with no type limitation
func SuccessResponse(c *gin.Context, extras any) {
	SuccessResponseWithCode(c, http.StatusOK, extras)
}

// SuccessResponseWithCode is SuccessResponse with a status other than 200, e.g. 201 on create
func SuccessResponseWithCode(c *gin.Context, code int, extras any) {
	c.JSON(
		code,
		NewResponse(
			true,
			code,
			extras,
		))
}

func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(
		code,
		NewResponse(
			false,
			code,
			map[string]interface{}{
				"message": message,
			},
		))
}

// ErrorResponseFrom writes err with the status code StatusFor picks for it.
func ErrorResponseFrom(c *gin.Context, err error) {
	ErrorResponse(c, StatusFor(err), err.Error())
}
