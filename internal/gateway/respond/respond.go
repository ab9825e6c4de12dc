// Package respond writes the gateway's JSON envelope for API answers.
package respond

import "github.com/gin-gonic/gin"

// ApiResponse is the body of every API answer.
type ApiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// JSON writes an ApiResponse with status; any status below 400 is a success.
func JSON(c *gin.Context, status int, data any, message string) {
	c.JSON(status, ApiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < 400,
	})
}

// Abort writes an error ApiResponse and stops the handler chain.
func Abort(c *gin.Context, status int, message string) {
	JSON(c, status, nil, message)
	c.Abort()
}
