package file

import (
	"net/http"

	"sharefile/share-api/app/httperr"
	"sharefile/share-api/internal"
	"sharefile/share-api/internal/service"
	"sharefile/share-api/pkg/middleware"
	"sharefile/share-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// FileUpload stores a file for the logged in user and answers with the new
// record, including when it expires
func FileUpload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.GetString("userID")

	fh, err := c.FormFile("file")
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":     "Request body size exceeds limit",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})
		return
	}

	code, f, err := validators.FileValidator(fh, viper.GetInt64("upload.max_size"), viper.GetStringSlice("upload.allowed_types"))
	if err != nil {
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate uploaded file", zap.String("requestID", requestID), zap.Error(err))
			c.JSON(code, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})
			return
		}

		c.JSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}
	defer f.File.Close()

	file, err := d.Uploader.Do(c.Request.Context(), service.UploadInput{
		UserID:      userID,
		Name:        f.Name,
		ContentType: f.ContentType,
		Size:        f.Size,
		Body:        f.File,
	})
	if err != nil {
		httperr.Abort(c, err, "Failed to upload file")
		return
	}

	zap.L().Debug("File uploaded",
		zap.String("requestID", requestID),
		zap.String("fileID", file.ID),
		zap.Int64p("expiresAt", file.ExpiresAt),
	)

	c.JSON(http.StatusCreated, file)
}
