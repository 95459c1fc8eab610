// decoder.go - Multipart decoding for video upload requests
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/streameme/backend/internal/models"
)

// Part names expected in the upload form.
const (
	metadataPartName = "metadata"
	filePartName     = "file"
)

// PlaceholderName is assigned when the file part declares no filename.
const PlaceholderName = "video"

// SupportedFormats lists the accepted video file extensions.
var SupportedFormats = []string{"mp4", "avi", "mov"}

var (
	// ErrMalformedRequest covers every request-shape failure: missing,
	// duplicated or unexpected parts, wrong part content type, unsupported
	// video format, or an unreadable body.
	ErrMalformedRequest = errors.New("malformed upload request")

	// ErrTooLarge is returned when the file part exceeds the decoder's
	// configured byte limit.
	ErrTooLarge = errors.New("file part too large")
)

// DecodedUpload owns the raw video bytes, the original file name and the
// validated metadata for a single request. It must not outlive request
// handling.
type DecodedUpload struct {
	FileName string
	Video    []byte
	Metadata models.UploadMetadata
}

// Decoder splits a multipart body into exactly one metadata part and exactly
// one file part. Any other arrangement is terminal.
//
// MaxFileBytes, when positive, aborts the decode as soon as the file part
// grows past the limit instead of buffering the whole body first.
type Decoder struct {
	MaxFileBytes int64
}

// Decode walks the multipart stream and produces a DecodedUpload.
func (d *Decoder) Decode(mr *multipart.Reader) (*DecodedUpload, error) {
	var (
		metadataRaw []byte
		fileName    string
		video       []byte
		haveMeta    bool
		haveFile    bool
	)

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}

		switch part.FormName() {
		case metadataPartName:
			if haveMeta {
				part.Close()
				return nil, fmt.Errorf("%w: duplicate %q part", ErrMalformedRequest, metadataPartName)
			}
			if ct := partMediaType(part); ct != "application/json" {
				part.Close()
				return nil, fmt.Errorf("%w: %q part must be application/json, got %q", ErrMalformedRequest, metadataPartName, ct)
			}
			metadataRaw, err = io.ReadAll(part)
			part.Close()
			if err != nil {
				return nil, fmt.Errorf("%w: reading %q part: %v", ErrMalformedRequest, metadataPartName, err)
			}
			haveMeta = true

		case filePartName:
			if haveFile {
				part.Close()
				return nil, fmt.Errorf("%w: duplicate %q part", ErrMalformedRequest, filePartName)
			}
			fileName = part.FileName()
			video, err = d.readFilePart(part)
			part.Close()
			if err != nil {
				return nil, err
			}
			haveFile = true

		default:
			name := part.FormName()
			part.Close()
			return nil, fmt.Errorf("%w: unexpected part %q", ErrMalformedRequest, name)
		}
	}

	if !haveMeta {
		return nil, fmt.Errorf("%w: missing %q part", ErrMalformedRequest, metadataPartName)
	}
	if !haveFile {
		return nil, fmt.Errorf("%w: missing %q part", ErrMalformedRequest, filePartName)
	}

	meta, err := ParseMetadata(metadataRaw)
	if err != nil {
		return nil, err
	}

	// A missing filename never fails the request on its own; the format
	// check only applies when the client actually declared a name.
	if fileName == "" {
		fileName = PlaceholderName
	} else if !formatSupported(fileName) {
		return nil, fmt.Errorf("%w: supported video formats are: %s",
			ErrMalformedRequest, strings.Join(SupportedFormats, ", "))
	}

	return &DecodedUpload{
		FileName: fileName,
		Video:    video,
		Metadata: meta,
	}, nil
}

// readFilePart buffers the file part, enforcing MaxFileBytes mid-stream.
func (d *Decoder) readFilePart(part *multipart.Part) ([]byte, error) {
	r := io.Reader(part)
	if d.MaxFileBytes > 0 {
		r = io.LimitReader(part, d.MaxFileBytes+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %q part: %v", ErrMalformedRequest, filePartName, err)
	}
	if d.MaxFileBytes > 0 && int64(len(data)) > d.MaxFileBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, d.MaxFileBytes)
	}
	return data, nil
}

// partMediaType returns the part's media type without parameters.
func partMediaType(part *multipart.Part) string {
	ct := part.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ct
	}
	return mt
}

// formatSupported checks the filename's extension against SupportedFormats.
func formatSupported(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, f := range SupportedFormats {
		if ext == f {
			return true
		}
	}
	return false
}
