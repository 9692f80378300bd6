package capture

import (
	"context"
	"errors"
	"image"
	"io"
	"io/fs"

	"github.com/disintegration/imaging"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

// Camera yields a still frame from a live feed.
type Camera interface {
	Frame(ctx context.Context) (image.Image, error)
}

// CameraFunc adapts a function to Camera.
type CameraFunc func(ctx context.Context) (image.Image, error)

// Frame implements Camera.
func (f CameraFunc) Frame(ctx context.Context) (image.Image, error) { return f(ctx) }

// FileCamera reads the frame from an image file, honouring EXIF orientation.
func FileCamera(path string) Camera {
	return CameraFunc(func(context.Context) (image.Image, error) {
		img, err := imaging.Open(path, imaging.AutoOrientation(true))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, appErrors.Wrap(err, appErrors.ErrCameraUnavailable.Code, appErrors.ErrCameraUnavailable.Status, appErrors.ErrCameraUnavailable.Message)
			}
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Failed to capture photo")
		}
		return img, nil
	})
}

// ImageCamera always returns img.
func ImageCamera(img image.Image) Camera {
	return CameraFunc(func(context.Context) (image.Image, error) {
		if img == nil {
			return nil, appErrors.ErrCameraUnavailable
		}
		return img, nil
	})
}

// DecodeFrame decodes an uploaded still in any format imaging understands.
func DecodeFrame(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Failed to capture photo")
	}
	return img, nil
}

// Locator yields the device position.
type Locator interface {
	Locate(ctx context.Context) (models.Location, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (models.Location, error)

// Locate implements Locator.
func (f LocatorFunc) Locate(ctx context.Context) (models.Location, error) { return f(ctx) }

// FixedLocator reports a known position.
func FixedLocator(loc models.Location) Locator {
	return LocatorFunc(func(context.Context) (models.Location, error) { return loc, nil })
}

// NoLocator is used when the device has no positioning at all.
var NoLocator Locator = LocatorFunc(func(context.Context) (models.Location, error) {
	return models.Location{}, appErrors.ErrLocationUnsupported
})

// ClassifyLocation maps a locator failure to one of the distinguished
// location errors.
func ClassifyLocation(err error) *appErrors.Error {
	if err == nil {
		return nil
	}
	for _, known := range []*appErrors.Error{
		appErrors.ErrLocationDenied,
		appErrors.ErrLocationUnavailable,
		appErrors.ErrLocationTimeout,
		appErrors.ErrLocationUnsupported,
	} {
		if errors.Is(err, known) {
			return appErrors.FromError(err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return appErrors.Wrap(err, appErrors.ErrLocationTimeout.Code, appErrors.ErrLocationTimeout.Status, appErrors.ErrLocationTimeout.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrLocationUnavailable.Code, appErrors.ErrLocationUnavailable.Status, appErrors.ErrLocationUnavailable.Message)
}
