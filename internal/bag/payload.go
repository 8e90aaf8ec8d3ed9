package bag

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// Entry describes one payload file.
type Entry struct {
	Path      string
	Size      int64
	SizeHuman string
	MediaType string
}

// Payload lists the payload with sizes and sniffed media types, in path order.
func (b *Bag) Payload() ([]Entry, error) {
	files := b.Files()
	entries := make([]Entry, 0, len(files))
	for _, logical := range files {
		full := filepath.Join(b.dir, payloadDir, filepath.FromSlash(logical))
		info, err := os.Stat(full)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", logical, err)
		}
		mime, err := mimetype.DetectFile(full)
		if err != nil {
			return nil, fmt.Errorf("detect type of %s: %w", logical, err)
		}
		entries = append(entries, Entry{
			Path:      logical,
			Size:      info.Size(),
			SizeHuman: humanize.Bytes(uint64(info.Size())),
			MediaType: mime.String(),
		})
	}
	return entries, nil
}

// PayloadBytes sums the sizes of a payload listing.
func PayloadBytes(entries []Entry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Size
	}
	return total
}
