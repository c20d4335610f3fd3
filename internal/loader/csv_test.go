package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCSV_UTF8(t *testing.T) {
	data := []byte("\xEF\xBB\xBFRegionName,2000-01-31\nCañada Flintridge,900000\n")
	tbl, enc, err := DecodeCSV("cities.csv", data)
	require.NoError(t, err)

	assert.Equal(t, "utf-8", enc)
	assert.Equal(t, []string{"RegionName", "2000-01-31"}, tbl.Header, "BOM stripped")
	assert.Equal(t, "Cañada Flintridge", tbl.Rows[0][0])
}

func TestDecodeCSV_Latin1Fallback(t *testing.T) {
	// 0xF1 is ñ in ISO-8859-1 and invalid on its own in UTF-8.
	data := []byte("RegionName,2000-01-31\nCa\xF1ada Flintridge,900000\n")
	tbl, enc, err := DecodeCSV("cities.csv", data)
	require.NoError(t, err)

	assert.Equal(t, "latin1", enc)
	assert.Equal(t, "Cañada Flintridge", tbl.Rows[0][0])
}

func TestDecodeCSV_RaggedRowsKept(t *testing.T) {
	data := []byte("RegionName,X2000.01.31,X2000.02.29\nAlpine County,1\nMono County,1,2\n")
	tbl, _, err := DecodeCSV("counties.csv", data)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Len(t, tbl.Rows[0], 2)
	assert.Len(t, tbl.Rows[1], 3)
}

func TestDecodeCSV_Errors(t *testing.T) {
	_, _, err := DecodeCSV("empty.csv", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty file")

	_, _, err = DecodeCSV("quotes.csv", []byte("RegionName\n\"unterminated\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quotes.csv")
}
