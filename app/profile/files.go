// Package profile serves a user's public file list behind their profile
// password
package profile

import (
	"net/http"

	"sharefile/share-api/app/file"
	"sharefile/share-api/app/httperr"
	"sharefile/share-api/internal"

	"github.com/gin-gonic/gin"
)

const passwordHeader = "X-Profile-Password"

// ProfileFiles returns a page of someone's unexpired files once the profile
// password sent in X-Profile-Password matches
func ProfileFiles(c *gin.Context, d *internal.Deps) {
	page, limit, sort, ok := file.ListParams(c)
	if !ok {
		return
	}

	files, err := d.Profiles.ListFiles(c.Request.Context(), c.Param("id"), c.GetHeader(passwordHeader), page, limit, sort)
	if err != nil {
		httperr.Abort(c, err, "Failed to lookup profile files")
		return
	}

	c.JSON(http.StatusOK, files)
}
