package snapshot

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"unicode/utf8"

	"github.com/dukerupert/garagebook/internal/archive"
)

var zipSignature = []byte("PK\x03\x04")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Classify decodes a request body into an envelope. A JSON content type is
// parsed directly. Anything else is opened as a ZIP archive when it carries the
// ZIP signature, with the envelope read from the root data.json entry; bodies
// that are not archives are parsed as JSON.
//
// The returned reader is non-nil only for archive payloads and gives the file
// phase access to the bundled files.
func Classify(body []byte, contentType string) (*Envelope, *zip.Reader, error) {
	if isJSON(contentType) {
		env, err := decode(body)
		if err != nil {
			return nil, nil, err
		}
		return env, nil, nil
	}

	if bytes.HasPrefix(body, zipSignature) {
		zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
		// Insecure entry names still yield a usable reader; the file phase
		// validates every entry before writing.
		if err == nil || errors.Is(err, zip.ErrInsecurePath) {
			env, err := decodeManifest(zr)
			if err != nil {
				return nil, nil, err
			}
			return env, zr, nil
		}
	}

	env, err := decode(body)
	if err != nil {
		return nil, nil, err
	}
	return env, nil, nil
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

func decodeManifest(zr *zip.Reader) (*Envelope, error) {
	for _, f := range zr.File {
		if !archive.IsManifest(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open data.json: %v", ErrInvalidPayload, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: read data.json: %v", ErrInvalidPayload, err)
		}
		return decode(data)
	}
	return nil, ErrMissingManifest
}

func decode(data []byte) (*Envelope, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: body is not valid UTF-8", ErrInvalidPayload)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &env, nil
}
