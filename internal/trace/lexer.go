package trace

import (
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeInput converts trace bytes to UTF-8. A UTF-8, UTF-16LE, or UTF-16BE
// byte order mark selects the encoding and is stripped. Without one the input
// is taken as UTF-8.
func decodeInput(data []byte) ([]byte, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return nil, err
	}
	return out, nil
}
