package file

import (
	"net/http"

	"sharefile/share-api/app/httperr"
	"sharefile/share-api/internal"

	"github.com/gin-gonic/gin"
)

// FileFetch returns a file by its ID if the user owns it and it hasn't expired
func FileFetch(c *gin.Context, d *internal.Deps) {
	f, err := d.Shares.Get(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		httperr.Abort(c, err, "Failed to fetch file")
		return
	}

	c.JSON(http.StatusOK, f)
}
