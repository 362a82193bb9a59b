package feed

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var ErrUnsupportedMedia = errors.New("unsupported file type")

// EncodeMedia turns an image or video into the data URL the API stores in image_url.
func EncodeMedia(data []byte) (string, error) {
	mime := mimetype.Detect(data)

	kind, _, _ := strings.Cut(mime.String(), "/")
	if kind != "image" && kind != "video" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, mime.String())
	}

	contentType, _, _ := strings.Cut(mime.String(), ";")
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
