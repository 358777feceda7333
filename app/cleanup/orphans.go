package cleanup

import (
	"net/http"
	"time"

	"sharefile/share-api/internal"

	"github.com/gin-gonic/gin"
)

// CleanupOrphans removes stored objects that no file row points to
func CleanupOrphans(c *gin.Context, d *internal.Deps) {
	res := d.Reconciler.Run(c.Request.Context(), time.Now())

	if res.Err != nil {
		c.String(http.StatusInternalServerError, "Reconciliation failed: %s\n", res.Err)
		return
	}

	c.String(http.StatusOK, "Scanned %d object(s), removed %d orphan(s).\n", res.Scanned, res.Removed)
}
