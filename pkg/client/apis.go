package client

import (
	"encoding/json"
	"io"
	"strconv"

	pkgerrors "github.com/pkg/errors"
)

// Calibrate sends an image through the display calibration endpoint.
// displayType may be empty to request the generic auto enhancement.
func (c *Client) Calibrate(img io.Reader, displayType, sessionID string) ([]byte, error) {
	fields := map[string]string{}
	if displayType != "" {
		fields["display_type"] = displayType
	}
	if sessionID != "" {
		fields["session_id"] = sessionID
	}
	out, err := c.postFiles("/phase3/saturation-correction", map[string]io.Reader{"image": img}, fields)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to calibrate image")
	}
	return out, nil
}

// Process sends an image through the generic phase/operation endpoint.
func (c *Client) Process(img io.Reader, phase, operation string) ([]byte, error) {
	out, err := c.postFiles("/process", map[string]io.Reader{"image": img}, map[string]string{
		"phase":     phase,
		"operation": operation,
	})
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to process image")
	}
	return out, nil
}

func (c *Client) Brightness(img io.Reader, factor float64, sessionID string) ([]byte, error) {
	out, err := c.postImageOp("/phase1/brightness", img, sessionID, map[string]string{
		"value": strconv.FormatFloat(factor, 'f', -1, 64),
	})
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to adjust brightness")
	}
	return out, nil
}

func (c *Client) Contrast(img io.Reader, factor float64, sessionID string) ([]byte, error) {
	out, err := c.postImageOp("/phase1/contrast", img, sessionID, map[string]string{
		"value": strconv.FormatFloat(factor, 'f', -1, 64),
	})
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to adjust contrast")
	}
	return out, nil
}

func (c *Client) Rotate(img io.Reader, angle float64, expand bool, sessionID string) ([]byte, error) {
	out, err := c.postImageOp("/phase1/rotate", img, sessionID, map[string]string{
		"angle":  strconv.FormatFloat(angle, 'f', -1, 64),
		"expand": strconv.FormatBool(expand),
	})
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to rotate image")
	}
	return out, nil
}

func (c *Client) Grayscale(img io.Reader, sessionID string) ([]byte, error) {
	out, err := c.postImageOp("/phase1/grayscale", img, sessionID, nil)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to convert to grayscale")
	}
	return out, nil
}

func (c *Client) Blur(img io.Reader, radius float64, sessionID string) ([]byte, error) {
	out, err := c.postImageOp("/phase1/blur", img, sessionID, map[string]string{
		"radius": strconv.FormatFloat(radius, 'f', -1, 64),
	})
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to blur image")
	}
	return out, nil
}

func (c *Client) Sharpen(img io.Reader, sessionID string) ([]byte, error) {
	out, err := c.postImageOp("/phase1/sharpen", img, sessionID, nil)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to sharpen image")
	}
	return out, nil
}

// Mask composites img against mask through the mask endpoint.
func (c *Client) Mask(img, mask io.Reader, sessionID string) ([]byte, error) {
	fields := map[string]string{}
	if sessionID != "" {
		fields["session_id"] = sessionID
	}
	out, err := c.postFiles("/phase1/mask", map[string]io.Reader{"image": img, "mask": mask}, fields)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to apply mask")
	}
	return out, nil
}

func (c *Client) Segment(img io.Reader, method string, threshold int, sessionID string) ([]byte, error) {
	out, err := c.postImageOp("/phase2/segmentation", img, sessionID, map[string]string{
		"method":    method,
		"threshold": strconv.Itoa(threshold),
	})
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to segment image")
	}
	return out, nil
}

// Undo returns the previous state of the session.
func (c *Client) Undo(sessionID string) ([]byte, error) {
	out, err := c.postFiles("/phase2/undo", nil, map[string]string{"session_id": sessionID})
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to undo")
	}
	return out, nil
}

// Redo returns the next state of the session.
func (c *Client) Redo(sessionID string) ([]byte, error) {
	out, err := c.postFiles("/phase2/redo", nil, map[string]string{"session_id": sessionID})
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to redo")
	}
	return out, nil
}

// Version returns the backend's version string.
func (c *Client) Version() (string, error) {
	data, err := c.get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return v, nil
}

func (c *Client) postImageOp(path string, img io.Reader, sessionID string, fields map[string]string) ([]byte, error) {
	if fields == nil {
		fields = map[string]string{}
	}
	if sessionID != "" {
		fields["session_id"] = sessionID
	}
	return c.postFiles(path, map[string]io.Reader{"image": img}, fields)
}
