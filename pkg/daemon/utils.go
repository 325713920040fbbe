package daemon

import (
	"fmt"
	"image"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pixgonz/pixgonz/pkg/raster"
)

// Logger is the logrus logger handler
func ginLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// other handler can change c.Path so:
		path := c.Request.URL.Path
		start := time.Now()
		c.Next()
		stop := time.Since(start)
		latency := int(math.Ceil(float64(stop.Nanoseconds()) / 1000000.0))
		statusCode := c.Writer.Status()
		dataLength := c.Writer.Size()
		if dataLength < 0 {
			dataLength = 0
		}

		entry := logger.WithFields(logrus.Fields{
			"statusCode": statusCode,
			"latency":    latency, // time to process
			"method":     c.Request.Method,
			"path":       path,
			"dataLength": dataLength,
		})

		if len(c.Errors) > 0 {
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		} else {
			msg := fmt.Sprintf("%s %s %d (%dms)", c.Request.Method, path, statusCode, latency)
			//nolint:gocritic
			if statusCode >= http.StatusInternalServerError {
				entry.Error(msg)
			} else if statusCode >= http.StatusBadRequest {
				entry.Warn(msg)
			} else {
				entry.Debug(msg)
			}
		}
	}
}

// corsMiddleware allows the local frontend to call the API from another
// origin during development.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// maxUploadMiddleware caps request body size at the configured limit.
func maxUploadMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// abortError reports err to the client as {"error": "..."} and records it
// for the request logger.
func abortError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// decodeUpload reads and decodes the named multipart file field. On failure
// it writes a 400 response and returns false.
func decodeUpload(c *gin.Context, field string) (*image.NRGBA, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		abortError(c, http.StatusBadRequest, fmt.Errorf("no %s uploaded", field))
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		abortError(c, http.StatusBadRequest, pkgerrors.Wrapf(err, "could not open %s", field))
		return nil, false
	}
	defer f.Close()

	img, err := raster.Decode(f)
	if err != nil {
		abortError(c, http.StatusBadRequest, pkgerrors.Wrapf(err, "could not open %s", field))
		return nil, false
	}
	return img, true
}

// formFloat parses an optional float form field. On a malformed value it
// writes a 400 response and returns false.
func formFloat(c *gin.Context, field string, def float64) (float64, bool) {
	raw := c.DefaultPostForm(field, "")
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		abortError(c, http.StatusBadRequest, fmt.Errorf("invalid %s value %q", field, raw))
		return 0, false
	}
	return v, true
}

func formInt(c *gin.Context, field string, def int) (int, bool) {
	raw := c.DefaultPostForm(field, "")
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		abortError(c, http.StatusBadRequest, fmt.Errorf("invalid %s value %q", field, raw))
		return 0, false
	}
	return v, true
}

func formBool(c *gin.Context, field string, def bool) bool {
	switch c.DefaultPostForm(field, "") {
	case "1", "true", "yes", "True":
		return true
	case "0", "false", "no", "False":
		return false
	}
	return def
}

// respondPNG encodes img as PNG, pushes it to the session history when a
// session_id was sent, and writes it as the response body.
func respondPNG(c *gin.Context, img image.Image) {
	if sid := c.PostForm("session_id"); sid != "" {
		if err := store.Push(sid, img); err != nil {
			// History is best effort; the processed image still ships.
			logrus.WithError(err).Warn("failed to push history state")
		}
	}

	encoded, err := raster.EncodePNG(img)
	if err != nil {
		abortError(c, http.StatusInternalServerError, pkgerrors.Wrap(err, "failed to encode image"))
		return
	}
	c.Data(http.StatusOK, "image/png", encoded)
}
