package subscription

import (
	"net/http"

	"sharefile/share-api/app/httperr"
	"sharefile/share-api/internal"

	"github.com/gin-gonic/gin"
)

func SubscriptionCurrent(c *gin.Context, d *internal.Deps) {
	sub, limits, err := d.Subscriptions.Current(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		httperr.Abort(c, err, "Failed to fetch subscription")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscription": sub,
		"plan":         limits,
	})
}
