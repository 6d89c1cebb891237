package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
)

var ErrInvalidDataURL = errors.New("storage: invalid image data url")

var dataURLReg = regexp.MustCompile(`^data:image/([a-zA-Z0-9.+-]+);base64,(.*)$`)

// photoTypes maps the accepted image subtypes to the extension stored and the
// content type served.
var photoTypes = map[string]struct{ ext, contentType string }{
	"png":  {"png", "image/png"},
	"jpg":  {"jpg", "image/jpeg"},
	"jpeg": {"jpg", "image/jpeg"},
	"gif":  {"gif", "image/gif"},
	"webp": {"webp", "image/webp"},
}

// Photo is a decoded data URL image.
type Photo struct {
	ContentType string
	Ext         string
	Data        []byte
}

// DecodeDataURL parses a "data:image/<ext>;base64,<payload>" string. Only
// png, jpeg, gif and webp images are accepted.
func DecodeDataURL(s string) (*Photo, error) {
	m := dataURLReg.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil, ErrInvalidDataURL
	}

	kind, ok := photoTypes[strings.ToLower(m[1])]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %q", ErrInvalidDataURL, m[1])
	}

	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDataURL, err)
	}
	if len(data) == 0 {
		return nil, ErrInvalidDataURL
	}

	return &Photo{
		ContentType: kind.contentType,
		Ext:         kind.ext,
		Data:        data,
	}, nil
}

// PhotoKey is the object key a food item's photo is stored under.
func PhotoKey(prefix, itemID, ext string) string {
	return path.Join(prefix, fmt.Sprintf("food_%s.%s", itemID, ext))
}
