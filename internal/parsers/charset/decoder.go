// Package charset detects and decodes the text encodings catalog CSV
// exports arrive in. Modern storefront exports are UTF-8; files that went
// through older ERP tooling are typically Windows-1252.
package charset

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding represents a text encoding.
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1252 Encoding = "windows-1252"
	EncodingISO88591    Encoding = "iso-8859-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Detect detects the encoding of a byte buffer. Valid UTF-8 is always
// preferred; anything else is assumed to be Windows-1252, which is a strict
// superset of ISO-8859-1 for the printable range.
func Detect(data []byte) Encoding {
	if bytes.HasPrefix(data, utf8BOM) {
		return EncodingUTF8
	}
	if utf8.Valid(data) {
		return EncodingUTF8
	}
	return EncodingWindows1252
}

// Decode converts a byte buffer from the given encoding to a UTF-8 string.
// A leading BOM is stripped.
func Decode(data []byte, enc Encoding) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	switch enc {
	case EncodingWindows1252:
		return decodeWith(data, charmap.Windows1252)
	case EncodingISO88591:
		return decodeWith(data, charmap.ISO8859_1)
	default:
		if utf8.Valid(data) {
			return string(data), nil
		}
		// Declared UTF-8 but is not; fall back rather than fail the load.
		return decodeWith(data, charmap.Windows1252)
	}
}

func decodeWith(data []byte, cm *charmap.Charmap) (string, error) {
	reader := transform.NewReader(strings.NewReader(string(data)), cm.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
