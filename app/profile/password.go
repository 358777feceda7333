package profile

import (
	"net/http"

	"sharefile/share-api/app/httperr"
	"sharefile/share-api/internal"

	"github.com/gin-gonic/gin"
)

type passwordBody struct {
	Password string `json:"password" binding:"required"`
}

func ProfilePasswordSet(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var body passwordBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if err := d.Profiles.SetPassword(c.Request.Context(), c.GetString("userID"), body.Password); err != nil {
		httperr.Abort(c, err, "Failed to set profile password")
		return
	}

	c.Status(http.StatusNoContent)
}
