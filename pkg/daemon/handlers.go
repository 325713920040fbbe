package daemon

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pixgonz/pixgonz/pkg/calibrate"
	"github.com/pixgonz/pixgonz/pkg/raster"
	"github.com/pixgonz/pixgonz/pkg/segment"
	"github.com/pixgonz/pixgonz/pkg/version"
)

func index(c *gin.Context) {
	c.String(http.StatusOK, "PixGonz backend running")
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

// postProcess is the generic endpoint: phase and operation name arrive as
// form fields and are dispatched by keyword.
func postProcess(c *gin.Context) {
	img, ok := decodeUpload(c, "image")
	if !ok {
		return
	}
	phase := c.PostForm("phase")
	operation := c.PostForm("operation")
	respondPNG(c, raster.Process(img, phase, operation))
}

func postBrightness(c *gin.Context) {
	img, ok := decodeUpload(c, "image")
	if !ok {
		return
	}
	factor, ok := formFloat(c, "value", 1.0)
	if !ok {
		return
	}
	respondPNG(c, raster.Brightness(img, factor))
}

func postContrast(c *gin.Context) {
	img, ok := decodeUpload(c, "image")
	if !ok {
		return
	}
	factor, ok := formFloat(c, "value", 1.0)
	if !ok {
		return
	}
	respondPNG(c, raster.Contrast(img, factor))
}

func postRotate(c *gin.Context) {
	img, ok := decodeUpload(c, "image")
	if !ok {
		return
	}
	angle, ok := formFloat(c, "angle", 0)
	if !ok {
		return
	}
	expand := formBool(c, "expand", true)
	respondPNG(c, raster.Rotate(img, angle, expand))
}

func postGrayscale(c *gin.Context) {
	img, ok := decodeUpload(c, "image")
	if !ok {
		return
	}
	respondPNG(c, raster.Grayscale(img))
}

func postBlur(c *gin.Context) {
	img, ok := decodeUpload(c, "image")
	if !ok {
		return
	}
	radius, ok := formFloat(c, "radius", 2.0)
	if !ok {
		return
	}
	respondPNG(c, raster.Blur(img, radius))
}

func postSharpen(c *gin.Context) {
	img, ok := decodeUpload(c, "image")
	if !ok {
		return
	}
	respondPNG(c, raster.Sharpen(img))
}

func postMask(c *gin.Context) {
	img, ok := decodeUpload(c, "image")
	if !ok {
		return
	}
	mask, ok := decodeUpload(c, "mask")
	if !ok {
		return
	}
	respondPNG(c, raster.ApplyMask(img, mask))
}

func postSegmentation(c *gin.Context) {
	img, ok := decodeUpload(c, "image")
	if !ok {
		return
	}
	method := c.DefaultPostForm("method", "threshold")
	threshold, ok := formInt(c, "threshold", 128)
	if !ok {
		return
	}
	respondPNG(c, segment.Segment(img, method, threshold))
}

func postColorAdjust(c *gin.Context) {
	img, ok := decodeUpload(c, "image")
	if !ok {
		return
	}
	brightness, ok := formFloat(c, "brightness", 1.0)
	if !ok {
		return
	}
	contrast, ok := formFloat(c, "contrast", 1.0)
	if !ok {
		return
	}
	saturation, ok := formFloat(c, "saturation", 1.0)
	if !ok {
		return
	}
	hue, ok := formFloat(c, "hue", 0)
	if !ok {
		return
	}
	intensity, ok := formFloat(c, "intensity", 0)
	if !ok {
		return
	}
	respondPNG(c, raster.ColorAdjust(img, brightness, contrast, saturation, hue, intensity))
}

func postUndo(c *gin.Context) {
	sid := c.PostForm("session_id")
	if sid == "" {
		abortError(c, http.StatusBadRequest, fmt.Errorf("session_id required for undo"))
		return
	}
	img, err := store.Undo(sid)
	if err != nil {
		abortError(c, http.StatusInternalServerError, err)
		return
	}
	if img == nil {
		abortError(c, http.StatusNotFound, fmt.Errorf("no undo available"))
		return
	}
	encoded, err := raster.EncodePNG(img)
	if err != nil {
		abortError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", encoded)
}

func postRedo(c *gin.Context) {
	sid := c.PostForm("session_id")
	if sid == "" {
		abortError(c, http.StatusBadRequest, fmt.Errorf("session_id required for redo"))
		return
	}
	img, err := store.Redo(sid)
	if err != nil {
		abortError(c, http.StatusInternalServerError, err)
		return
	}
	if img == nil {
		abortError(c, http.StatusNotFound, fmt.Errorf("no redo available"))
		return
	}
	encoded, err := raster.EncodePNG(img)
	if err != nil {
		abortError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", encoded)
}

// postSaturationCorrection calibrates the upload for a target display. With
// no display_type it falls back to the generic auto enhancement. An
// unrecognized display_type is a client error carrying the valid options.
func postSaturationCorrection(c *gin.Context) {
	img, ok := decodeUpload(c, "image")
	if !ok {
		return
	}

	out, err := calibrate.Calibrate(img, c.PostForm("display_type"))
	if err != nil {
		var unsupported *calibrate.UnsupportedDisplayTypeError
		switch {
		case errors.As(err, &unsupported):
			abortError(c, http.StatusBadRequest, unsupported)
		case errors.Is(err, calibrate.ErrInvalidImage):
			abortError(c, http.StatusBadRequest, err)
		default:
			abortError(c, http.StatusInternalServerError, err)
		}
		return
	}
	respondPNG(c, out)
}
