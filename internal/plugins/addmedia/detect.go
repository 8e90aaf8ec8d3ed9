package addmedia

import (
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

func detectType(path string) (string, error) {
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	return mime.String(), nil
}

func humanizeBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
