package user

import (
	"net/http"

	"sharefile/share-api/app/httperr"
	"sharefile/share-api/internal"

	"github.com/gin-gonic/gin"
)

// UserStats tells the user how many uploads their plan has left
func UserStats(c *gin.Context, d *internal.Deps) {
	u, err := d.Uploader.Usage(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		httperr.Abort(c, err, "Failed to fetch upload stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"planType":      u.Plan.Type,
		"planName":      u.Plan.Name,
		"used":          u.Used,
		"total":         u.Total,
		"maxSize":       u.Plan.MaxSize,
		"planExpiresAt": u.PlanExpiresAt,
		"totalUploads":  u.TotalUploads,
	})
}
