// Package share serves files to anyone holding the link
package share

import (
	"net/http"

	"sharefile/share-api/app/httperr"
	"sharefile/share-api/internal"

	"github.com/gin-gonic/gin"
)

// ShareOpen returns a shared file with its download URL and counts the
// download. Expired files answer 404 even before they are swept
func ShareOpen(c *gin.Context, d *internal.Deps) {
	f, err := d.Shares.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Abort(c, err, "Failed to open shared file")
		return
	}

	c.JSON(http.StatusOK, f)
}
