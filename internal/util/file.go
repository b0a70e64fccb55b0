package util

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

// DetectMimeType sniffs the content type from the first 512 bytes and
// checks it against the allowed prefixes or exact types ("image/",
// "application/pdf"). The reader is partially consumed; seekable callers
// must rewind afterwards.
func DetectMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}
