package handler

import "github.com/gin-gonic/gin"

// All endpoints share one envelope: successes carry {"success": true, ...},
// failures {"success": false, "message": "..."}.

func respond(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}
