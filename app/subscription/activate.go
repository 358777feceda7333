// Package subscription records paid plans. Payments are confirmed by hand
// from the transaction ID the user copies out of their payment app
package subscription

import (
	"net/http"

	"sharefile/share-api/app/httperr"
	"sharefile/share-api/internal"
	"sharefile/share-api/internal/service"

	"github.com/gin-gonic/gin"
)

type activateBody struct {
	Plan          string `json:"plan" binding:"required"`
	Amount        int64  `json:"amount" binding:"required"`
	TransactionID string `json:"transactionId" binding:"required"`
}

func SubscriptionActivate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var body activateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	sub, err := d.Subscriptions.Activate(c.Request.Context(), service.ActivateInput{
		UserID:        c.GetString("userID"),
		Plan:          body.Plan,
		Amount:        body.Amount,
		TransactionID: body.TransactionID,
	})
	if err != nil {
		httperr.Abort(c, err, "Failed to activate subscription")
		return
	}

	c.JSON(http.StatusCreated, sub)
}
