package response

import (
	"errors"
	"net/http"

	"atm-system/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// The account API uses bare JSON objects on success and a {"detail": ...}
// body on failure, matching what existing clients already parse.

// ErrorBody is the error envelope.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// OK sends a 200 response with the payload as-is.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error sends an error response. *apperror.AppError values map to their
// status and message; anything else becomes a 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, ErrorBody{Detail: appErr.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorBody{Detail: "Internal server error"})
}
