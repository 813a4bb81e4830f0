package snapshot

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/equipd/snapmerge/pkg/types"
)

// marshalCSV serializes records to UTF-8 CSV: header row of field names in
// first-seen order, one row per record, no synthetic row-index column. The
// optional drop predicate excludes columns from the export.
func marshalCSV(records []*types.Record, drop func(col string) bool) ([]byte, error) {
	if len(records) == 0 {
		return nil, nil
	}

	var header []string
	seen := make(map[string]struct{})
	for _, rec := range records {
		for _, col := range rec.Fields() {
			if _, ok := seen[col]; ok {
				continue
			}
			seen[col] = struct{}{}
			if drop != nil && drop(strings.ToLower(col)) {
				continue
			}
			header = append(header, col)
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	row := make([]string, len(header))
	for _, rec := range records {
		for i, col := range header {
			row[i] = rec.Lookup(col).AsString()
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// decodeFuncs is the fallback chain for snapshot files written by older
// tooling under unknown encodings: utf-8, utf-8 with BOM, latin-1, cp1252,
// iso-8859-1, tried strictly in order. The charmap decoders accept any
// byte, so in practice the chain cannot fail past latin-1; the later
// entries stay listed so the order is explicit and testable.
var decodeFuncs = []struct {
	name   string
	decode func(data []byte) (string, bool)
}{
	{"utf-8", func(data []byte) (string, bool) {
		// A BOM prefix is valid UTF-8, so strip it here rather than let
		// it leak into the first header name.
		data = bytes.TrimPrefix(data, utf8BOM)
		if utf8.Valid(data) {
			return string(data), true
		}
		return "", false
	}},
	{"utf-8-sig", func(data []byte) (string, bool) {
		if bytes.HasPrefix(data, utf8BOM) && utf8.Valid(data[len(utf8BOM):]) {
			return string(data[len(utf8BOM):]), true
		}
		return "", false
	}},
	{"latin-1", charmapDecode(charmap.ISO8859_1)},
	{"cp1252", charmapDecode(charmap.Windows1252)},
	{"iso-8859-1", charmapDecode(charmap.ISO8859_1)},
}

func charmapDecode(cm *charmap.Charmap) func(data []byte) (string, bool) {
	return func(data []byte) (string, bool) {
		decoded, err := cm.NewDecoder().Bytes(data)
		if err != nil {
			return "", false
		}
		return string(decoded), true
	}
}

// decodeText converts raw file bytes to a UTF-8 string via the fallback
// chain. Only a file that defeats every encoding returns an error.
func decodeText(data []byte) (string, error) {
	for _, d := range decodeFuncs {
		if text, ok := d.decode(data); ok {
			return text, nil
		}
	}
	return "", fmt.Errorf("no supported encoding could decode the file")
}

// unmarshalCSV parses CSV bytes into records. Every cell is carried as a
// string value; numeric coercion is the differ's job, not the parser's.
// Short rows read as null-filled, long rows are a parse error.
func unmarshalCSV(data []byte) ([]*types.Record, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	var records []*types.Record
	for i, row := range rows[1:] {
		if len(row) > len(header) {
			return nil, fmt.Errorf("row %d has %d cells but the header has %d columns", i+2, len(row), len(header))
		}
		rec := types.NewRecord()
		for j, col := range header {
			if j < len(row) {
				rec.Set(col, types.String(row[j]))
			} else {
				rec.Set(col, types.Null())
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// syntheticIndexColumn reports whether a lowercased column name looks like
// a row index a prior serialization bug wrote into the file: the literal
// "index" or "unnamed: 0", any "unnamed:" prefix, or a bare 1–2 digit
// numeral.
func syntheticIndexColumn(col string) bool {
	if col == "index" || col == "unnamed: 0" {
		return true
	}
	if strings.HasPrefix(col, "unnamed:") {
		return true
	}
	if len(col) >= 1 && len(col) <= 2 {
		for _, r := range col {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}
	return false
}

// stripSyntheticColumns removes row-index artifacts from parsed records.
// The select-options collection keeps its "index" column: that token is its
// restore key, not an artifact.
func stripSyntheticColumns(records []*types.Record, kind types.Collection) []*types.Record {
	for _, rec := range records {
		for _, col := range rec.Fields() {
			lower := strings.ToLower(col)
			if kind == types.CollectionSelectOptions && lower == types.IndexField {
				continue
			}
			if syntheticIndexColumn(lower) {
				rec.Delete(col)
			}
		}
	}
	return records
}
