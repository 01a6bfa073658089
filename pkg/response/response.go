package response

import "github.com/gin-gonic/gin"

// ErrorBody is the JSON shape every handler returns on failure.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Fail writes the standard error body. An optional single detail string
// carries validation specifics.
func Fail(c *gin.Context, status int, message string, details ...string) {
	body := ErrorBody{Code: status, Message: message}
	if len(details) > 0 {
		body.Details = details[0]
	}
	c.JSON(status, body)
}
