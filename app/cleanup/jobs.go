package cleanup

import (
	"net/http"

	"sharefile/share-api/internal"
	"sharefile/share-api/internal/scheduler"

	"github.com/gin-gonic/gin"
)

// CleanupJobs lists the in process cleanup jobs and when they last ran
func CleanupJobs(c *gin.Context, d *internal.Deps) {
	if d.Scheduler == nil {
		c.JSON(http.StatusOK, []scheduler.JobInfo{})
		return
	}

	c.JSON(http.StatusOK, d.Scheduler.Jobs())
}
