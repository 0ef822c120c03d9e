package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var statusToCode = map[int]APIResponseCode{
	http.StatusBadRequest:            APIResponseCodeBadRequest,
	http.StatusUnauthorized:          APIResponseCodeUnauthorized,
	http.StatusNotFound:              APIResponseCodeNotFound,
	http.StatusConflict:              APIResponseCodeConflict,
	http.StatusRequestEntityTooLarge: APIResponseCodeBadRequest,
	http.StatusTooManyRequests:       APIResponseCodeTooMany,
}

// Error writes the error envelope with the given HTTP status and a human readable detail in data.
func Error(c *gin.Context, status int, detail string) {
	code, ok := statusToCode[status]
	if !ok {
		code = APIResponseCodeError
	}
	c.JSON(status, ErrorT[any](code, detail))
}

// Fail writes the error envelope with HTTP 200, the convention of the admin API.
func Fail(c *gin.Context, code APIResponseCode, detail string) {
	c.JSON(http.StatusOK, ErrorT[any](code, detail))
}
