package storage

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const octetStream = "application/octet-stream"

// ContentType returns the type detected from the leading bytes of data.
// When the bytes are not recognised it falls back to the declared type and
// then to the file extension.
func ContentType(fileName, declared string, data []byte) string {
	if len(data) > 0 {
		if t, _, err := mime.ParseMediaType(mimetype.Detect(data).String()); err == nil && t != octetStream {
			return t
		}
	}
	if declared != "" && !strings.HasPrefix(declared, octetStream) {
		return declared
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); byExt != "" {
		t, _, err := mime.ParseMediaType(byExt)
		if err == nil {
			return t
		}
	}
	return octetStream
}
