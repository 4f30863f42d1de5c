package processing

import (
	"bytes"
	"context"
	"fmt"
	"studio/gallery"
	"time"

	"github.com/klauspost/compress/zip"
)

// BuildArchive writes a zip with the files stored uncompressed
func (p *Processor) BuildArchive(ctx context.Context, files []gallery.ArchiveFile) ([]byte, error) {
	buf := bytes.Buffer{}
	w := zip.NewWriter(&buf)
	modified := time.Now().UTC()
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry, err := w.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Store,
			Modified: modified,
		})
		if err != nil {
			return nil, fmt.Errorf("adding %s to archive: %w", f.Name, err)
		}
		if _, err = entry.Write(f.Data); err != nil {
			return nil, fmt.Errorf("writing %s to archive: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
