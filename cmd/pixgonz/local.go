package main

import (
	"errors"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pixgonz/pixgonz/pkg/calibrate"
	"github.com/pixgonz/pixgonz/pkg/raster"
	"github.com/pixgonz/pixgonz/pkg/segment"
)

var bold = color.New(color.Bold)

// runLocal opens in, applies fn and saves the result to out. All local
// processing commands funnel through it.
func runLocal(in, out string, fn func(*image.NRGBA) (*image.NRGBA, error)) error {
	src, err := imaging.Open(in)
	if err != nil {
		return fmt.Errorf("failed to open %s: %v", in, err)
	}

	result, err := fn(raster.ToNRGBA(src))
	if err != nil {
		return err
	}

	if err := imaging.Save(result, out); err != nil {
		return fmt.Errorf("failed to save %s: %v", out, err)
	}
	logrus.Debugf("wrote %s", out)

	return nil
}

func NewCalibrateCommand() *cobra.Command {
	var displayType string

	cmd := &cobra.Command{
		Use:     "calibrate <input> <output>",
		Short:   "Calibrate an image for a display type",
		GroupID: gProcessing,
		Long: `Calibrate an image for a display type.

Adjusts saturation per display profile, applies gamma correction, and
shifts color temperature. With no --display, a generic auto enhance
pass is applied instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runLocal(args[0], args[1], func(img *image.NRGBA) (*image.NRGBA, error) {
				result, err := calibrate.Calibrate(img, displayType)
				var unsupported *calibrate.UnsupportedDisplayTypeError
				if errors.As(err, &unsupported) {
					fmt.Fprintf(os.Stderr, "Valid display types: %s\n",
						bold.Sprint(strings.Join(unsupported.Valid, ", ")))
				}
				return result, err
			})
		},
	}

	cmd.Flags().StringVarP(&displayType, "display", "d", "",
		"Display type (lcd, led backlit, oled, qled, e-paper)")

	return cmd
}

func NewEnhanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "enhance <input> <output>",
		Short:   "Auto enhance an image",
		GroupID: gProcessing,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runLocal(args[0], args[1], func(img *image.NRGBA) (*image.NRGBA, error) {
				return calibrate.AutoEnhance(img)
			})
		},
	}
}

func NewAdjustCommand() *cobra.Command {
	var (
		brightness float64
		contrast   float64
		saturation float64
		hue        float64
	)

	cmd := &cobra.Command{
		Use:     "adjust <input> <output>",
		Short:   "Adjust brightness, contrast, saturation and hue",
		GroupID: gProcessing,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runLocal(args[0], args[1], func(img *image.NRGBA) (*image.NRGBA, error) {
				return raster.ColorAdjust(img, brightness, contrast, saturation, hue, 0), nil
			})
		},
	}

	cmd.Flags().Float64Var(&brightness, "brightness", 1.0, "Brightness factor")
	cmd.Flags().Float64Var(&contrast, "contrast", 1.0, "Contrast factor")
	cmd.Flags().Float64Var(&saturation, "saturation", 1.0, "Saturation factor")
	cmd.Flags().Float64Var(&hue, "hue", 0, "Hue rotation in degrees")

	return cmd
}

func NewRotateCommand() *cobra.Command {
	var (
		angle  float64
		expand bool
	)

	cmd := &cobra.Command{
		Use:     "rotate <input> <output>",
		Short:   "Rotate an image",
		GroupID: gProcessing,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runLocal(args[0], args[1], func(img *image.NRGBA) (*image.NRGBA, error) {
				return raster.Rotate(img, angle, expand), nil
			})
		},
	}

	cmd.Flags().Float64VarP(&angle, "angle", "a", 90, "Rotation angle in degrees, counterclockwise")
	cmd.Flags().BoolVar(&expand, "expand", true, "Grow the canvas to fit the rotated image")

	return cmd
}

func NewGrayscaleCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "grayscale <input> <output>",
		Short:   "Convert an image to grayscale",
		GroupID: gProcessing,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runLocal(args[0], args[1], func(img *image.NRGBA) (*image.NRGBA, error) {
				return raster.Grayscale(img), nil
			})
		},
	}
}

func NewBlurCommand() *cobra.Command {
	var radius float64

	cmd := &cobra.Command{
		Use:     "blur <input> <output>",
		Short:   "Blur an image",
		GroupID: gProcessing,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runLocal(args[0], args[1], func(img *image.NRGBA) (*image.NRGBA, error) {
				return raster.Blur(img, radius), nil
			})
		},
	}

	cmd.Flags().Float64VarP(&radius, "radius", "r", 2.0, "Blur radius")

	return cmd
}

func NewSharpenCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "sharpen <input> <output>",
		Short:   "Sharpen an image",
		GroupID: gProcessing,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runLocal(args[0], args[1], func(img *image.NRGBA) (*image.NRGBA, error) {
				return raster.Sharpen(img), nil
			})
		},
	}
}

func NewSegmentCommand() *cobra.Command {
	var (
		method    string
		threshold int
	)

	cmd := &cobra.Command{
		Use:     "segment <input> <output>",
		Short:   "Segment an image",
		GroupID: gProcessing,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runLocal(args[0], args[1], func(img *image.NRGBA) (*image.NRGBA, error) {
				return segment.Segment(img, method, threshold), nil
			})
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", "threshold",
		"Segmentation method (threshold, kmeans, watershed)")
	cmd.Flags().IntVarP(&threshold, "threshold", "t", 128,
		"Luminance threshold for the threshold method")

	return cmd
}
