package llm

import (
	"encoding/base64"
	"net/http"
)

// ImageDataURL encodes an image as a data URL, sniffing its MIME type.
func ImageDataURL(b []byte) string {
	mt := http.DetectContentType(b)
	switch mt {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
	default:
		mt = "image/png"
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(b)
}
