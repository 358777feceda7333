package file

import (
	"net/http"

	"sharefile/share-api/app/httperr"
	"sharefile/share-api/internal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func FileDelete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.GetString("userID")

	fileID := c.Param("id")
	if fileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "ID is missing",
			"requestID": requestID,
		})
		return
	}

	if err := d.Shares.Delete(c.Request.Context(), userID, fileID); err != nil {
		httperr.Abort(c, err, "Failed to delete file")
		return
	}

	zap.L().Debug("File deleted", zap.String("requestID", requestID), zap.String("fileID", fileID))
	c.Status(http.StatusNoContent)
}
