// Package cleanup holds the endpoints an external scheduler calls to clean up
// expired and orphaned data
package cleanup

import (
	"net/http"
	"time"

	"sharefile/share-api/internal"

	"github.com/gin-gonic/gin"
)

// CleanupExpired runs the expiry sweeper once and answers in plain text. Any
// failed step turns the answer into a 500 so the caller can alert on it
func CleanupExpired(c *gin.Context, d *internal.Deps) {
	res := d.Sweeper.Sweep(c.Request.Context(), time.Now())

	status := http.StatusOK
	if res.Err() != nil {
		status = http.StatusInternalServerError
	}

	c.String(status, "%s", res.Summary())
}
