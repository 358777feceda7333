package plans

import (
	"net/http"

	"sharefile/share-api/internal"

	"github.com/gin-gonic/gin"
)

// PlanList returns the plan table, cheapest first
func PlanList(c *gin.Context, d *internal.Deps) {
	c.JSON(http.StatusOK, d.Plans.Ordered())
}
