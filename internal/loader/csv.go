package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeCSV parses a comma-separated export into a Table. Input that is not
// valid UTF-8 is read as ISO-8859-1, which older Zillow exports use for
// names such as "Cañada Flintridge". The returned string names the encoding.
func DecodeCSV(source string, data []byte) (domain.Table, string, error) {
	encoding := "utf-8"
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return domain.Table{}, "", fmt.Errorf("%s: decode latin1: %w", source, err)
		}
		data, encoding = decoded, "latin1"
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // ragged rows are reported by the index build

	header, err := r.Read()
	if err == io.EOF {
		return domain.Table{}, "", fmt.Errorf("%s: empty file", source)
	}
	if err != nil {
		return domain.Table{}, "", fmt.Errorf("%s: read header: %w", source, err)
	}

	t := domain.Table{Source: source, Header: header}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.Table{}, "", fmt.Errorf("%s: %w", source, err)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, encoding, nil
}
