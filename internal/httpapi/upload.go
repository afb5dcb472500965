package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"

	// Decoders for the upload formats accepted by the API.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/labstack/echo/v4"
	_ "golang.org/x/image/webp"

	"kalaghar.in/lokakala/internal/vision"
)

// maxUploadBytes caps multipart image reads.
const maxUploadBytes = 16 << 20

var errUnreadableImage = errors.New("uploaded bytes do not decode as an image")

// readImageUpload pulls the "file" part from the multipart form and verifies
// that it decodes as an image before it is shipped to the vision model.
func readImageUpload(c echo.Context) (vision.Image, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return vision.Image{}, fmt.Errorf("%w: missing file upload", errUnreadableImage)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return vision.Image{}, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return vision.Image{}, fmt.Errorf("read upload: %w", err)
	}
	if len(payload) == 0 {
		return vision.Image{}, fmt.Errorf("%w: empty upload", errUnreadableImage)
	}
	if len(payload) > maxUploadBytes {
		return vision.Image{}, fmt.Errorf("%w: upload exceeds %d bytes", errUnreadableImage, maxUploadBytes)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(payload)); err != nil {
		return vision.Image{}, fmt.Errorf("%w: %v", errUnreadableImage, err)
	}

	return vision.Image{
		Bytes:       payload,
		ContentType: http.DetectContentType(payload),
	}, nil
}
