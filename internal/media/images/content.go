// Package images inspects stored file content: type sniffing, data URL
// decoding and BlurHash placeholders for thumbnails.
package images

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// ErrNotDataURL is returned by ParseDataURL for content without a data: prefix.
var ErrNotDataURL = errors.New("not a data URL")

// DataURL is a decoded RFC 2397 data URL.
type DataURL struct {
	MediaType string
	Data      []byte
}

// ParseDataURL decodes "data:[<mediatype>][;base64],<data>".
func ParseDataURL(s string) (*DataURL, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, ErrNotDataURL
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New("data URL has no payload separator")
	}

	mediaType, isBase64 := strings.CutSuffix(header, ";base64")
	if mediaType == "" {
		mediaType = "text/plain;charset=US-ASCII"
	}

	if !isBase64 {
		return &DataURL{MediaType: mediaType, Data: []byte(payload)}, nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}
	return &DataURL{MediaType: mediaType, Data: data}, nil
}

// Info describes file content.
type Info struct {
	Size        int64
	ContentType string
	BlurHash    string
}

// Inspect describes opaque file content. Image data URLs are decoded to
// compute a BlurHash; anything else is sniffed as raw bytes. Inspect never
// fails: content it cannot decode is reported by size and sniffed type only.
func Inspect(content string) Info {
	info := Info{Size: int64(len(content))}

	du, err := ParseDataURL(content)
	if err != nil {
		info.ContentType = http.DetectContentType([]byte(content))
		return info
	}

	info.Size = int64(len(du.Data))
	info.ContentType = du.MediaType
	if strings.HasPrefix(du.MediaType, "image/") {
		if hash, err := ComputeBlurHash(du.Data); err == nil {
			info.BlurHash = hash
		}
	}
	return info
}
