package file

import (
	"net/http"
	"strconv"
	"strings"

	"sharefile/share-api/app/httperr"
	"sharefile/share-api/internal"
	"sharefile/share-api/internal/service"

	"github.com/gin-gonic/gin"
)

// FileFetchBulk returns a page of the logged in user's files
func FileFetchBulk(c *gin.Context, d *internal.Deps) {
	page, limit, sort, ok := ListParams(c)
	if !ok {
		return
	}

	files, err := d.Shares.List(c.Request.Context(), c.GetString("userID"), page, limit, sort)
	if err != nil {
		httperr.Abort(c, err, "Failed to lookup user files")
		return
	}

	c.JSON(http.StatusOK, files)
}

// ListParams reads page, limit and sort from the query. On bad input it
// answers 400 itself and ok is false
func ListParams(c *gin.Context) (page, limit int, sort string, ok bool) {
	requestID := c.MustGet("requestID").(string)

	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Page must be a number",
			"requestID": requestID,
		})
		return 0, 0, "", false
	}

	if page < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Page can't be negative",
			"requestID": requestID,
		})
		return 0, 0, "", false
	}

	limit, err = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Limit must be a number",
			"requestID": requestID,
		})
		return 0, 0, "", false
	}

	if limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Limit must be greater than 0",
			"requestID": requestID,
		})
		return 0, 0, "", false
	}

	if limit > service.MaxListLimit {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Limit must be smaller than " + strconv.Itoa(service.MaxListLimit),
			"requestID": requestID,
		})
		return 0, 0, "", false
	}

	sort = strings.ToLower(c.DefaultQuery("sort", "newest"))
	if _, ok := service.ListOrders[sort]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid sorting option",
			"requestID": requestID,
		})
		return 0, 0, "", false
	}

	return page, limit, sort, true
}
