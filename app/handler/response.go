package handler

import "github.com/gin-gonic/gin"

// failJSON writes the {"success": false, "error": ...} envelope used by
// every submission and settings endpoint.
func failJSON(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// okJSON writes a success envelope with optional extra fields.
func okJSON(c *gin.Context, extra gin.H) {
	body := gin.H{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(200, body)
}
