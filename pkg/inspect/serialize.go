package inspect

import (
	"bufio"
	"encoding/binary"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
)

// irapUndef is the sentinel for undefined surface nodes in Irap binary files.
const irapUndef = float32(1e30)

// exportSurface writes an Irap RMS binary surface: big-endian, with
// Fortran-style 4-byte record length markers around each record.
func exportSurface(w io.Writer, s Surface, format string) error {
	if format != "irap_binary" {
		return fmt.Errorf("no surface serializer for format %q", format)
	}
	if len(s.Values) != s.Ncol*s.Nrow {
		return fmt.Errorf("surface has %d values, expected %d", len(s.Values), s.Ncol*s.Nrow)
	}

	bw := bufio.NewWriter(w)

	xmax := s.Xori + s.Xinc*float64(s.Ncol-1)
	ymax := s.Yori + s.Yinc*float64(s.Nrow-1)

	if err := writeRecord(bw,
		int32(-996), int32(s.Nrow),
		float32(s.Xinc), float32(s.Yinc),
		float32(s.Xori), float32(xmax),
		float32(s.Yori), float32(ymax),
	); err != nil {
		return err
	}
	if err := writeRecord(bw,
		int32(s.Ncol), float32(s.Rotation),
		float32(s.Xori), float32(s.Yori),
	); err != nil {
		return err
	}
	if err := writeRecord(bw,
		int32(0), int32(0), int32(0), int32(0),
		int32(0), int32(0), int32(0),
	); err != nil {
		return err
	}

	// Values go out per row, each row as one record.
	row := make([]any, s.Ncol)
	for j := 0; j < s.Nrow; j++ {
		for i := 0; i < s.Ncol; i++ {
			v := s.Values[j*s.Ncol+i]
			if math.IsNaN(v) {
				row[i] = irapUndef
			} else {
				row[i] = float32(v)
			}
		}
		if err := writeRecord(bw, row...); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRecord(w io.Writer, fields ...any) error {
	length := int32(4 * len(fields))
	if err := binary.Write(w, binary.BigEndian, length); err != nil {
		return err
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.BigEndian, f); err != nil {
			return err
		}
	}
	return binary.Write(w, binary.BigEndian, length)
}

func exportTable(w io.Writer, t Table, format string) error {
	if format != "csv" {
		return fmt.Errorf("no table serializer for format %q", format)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row has %d cells, expected %d", len(row), len(t.Columns))
		}
		for i, cell := range row {
			record[i] = formatCell(cell)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(c), 'g', -1, 32)
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprint(c)
	}
}

// exportXYZ writes point or polygon vertices as CSV. A non-nil polyID
// column marks polygon membership per vertex. The xtgeo flavor keeps the
// xtgeo column names; the plain flavor renames them to X, Y, Z, ID.
func exportXYZ(w io.Writer, x, y, z []float64, polyID []int, xtgeoNames bool) error {
	if len(y) != len(x) || len(z) != len(x) {
		return fmt.Errorf("coordinate columns differ in length")
	}
	if polyID != nil && len(polyID) != len(x) {
		return fmt.Errorf("poly id column differs in length")
	}

	cw := csv.NewWriter(w)
	header := []string{"X", "Y", "Z"}
	if xtgeoNames {
		header = []string{"X_UTME", "Y_UTMN", "Z_TVDSS"}
	}
	if polyID != nil {
		if xtgeoNames {
			header = append(header, "POLY_ID")
		} else {
			header = append(header, "ID")
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for i := range x {
		record[0] = strconv.FormatFloat(x[i], 'f', 4, 64)
		record[1] = strconv.FormatFloat(y[i], 'f', 4, 64)
		record[2] = strconv.FormatFloat(z[i], 'f', 4, 64)
		if polyID != nil {
			record[3] = strconv.Itoa(polyID[i])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// exportCube writes a minimal SEG-Y file: empty textual header, binary
// header with sample count and IEEE float format, then one trace per
// (col,row) position with a 240-byte trace header.
func exportCube(w io.Writer, c Cube) error {
	if len(c.Values) != c.Ncol*c.Nrow*c.Nlay {
		return fmt.Errorf("cube has %d values, expected %d", len(c.Values), c.Ncol*c.Nrow*c.Nlay)
	}

	bw := bufio.NewWriter(w)

	textual := make([]byte, 3200)
	if _, err := bw.Write(textual); err != nil {
		return err
	}

	binHeader := make([]byte, 400)
	// Sample interval in microseconds, samples per trace, format code 5
	// (4-byte IEEE float).
	binary.BigEndian.PutUint16(binHeader[16:], uint16(c.Zinc*1000))
	binary.BigEndian.PutUint16(binHeader[20:], uint16(c.Nlay))
	binary.BigEndian.PutUint16(binHeader[24:], 5)
	if _, err := bw.Write(binHeader); err != nil {
		return err
	}

	traceHeader := make([]byte, 240)
	for i := 0; i < c.Ncol; i++ {
		for j := 0; j < c.Nrow; j++ {
			binary.BigEndian.PutUint32(traceHeader[188:], uint32(i+1)) // inline
			binary.BigEndian.PutUint32(traceHeader[192:], uint32(j+1)) // crossline
			binary.BigEndian.PutUint16(traceHeader[114:], uint16(c.Nlay))
			if _, err := bw.Write(traceHeader); err != nil {
				return err
			}
			base := (i*c.Nrow + j) * c.Nlay
			for k := 0; k < c.Nlay; k++ {
				if err := binary.Write(bw, binary.BigEndian, c.Values[base+k]); err != nil {
					return err
				}
			}
		}
	}
	return bw.Flush()
}

// exportGrid writes an ASCII roff file. With nil values it carries the
// grid dimensions only; with values it carries a parameter tag as well.
func exportGrid(w io.Writer, ncol, nrow, nlay int, values []float64) error {
	if values != nil && len(values) != ncol*nrow*nlay {
		return fmt.Errorf("property has %d values, expected %d", len(values), ncol*nrow*nlay)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "roff-asc")
	fmt.Fprintln(bw, "tag filedata")
	fmt.Fprintln(bw, "char filetype \"grid\"")
	fmt.Fprintln(bw, "endtag")
	fmt.Fprintln(bw, "tag dimensions")
	fmt.Fprintf(bw, "int nX %d\n", ncol)
	fmt.Fprintf(bw, "int nY %d\n", nrow)
	fmt.Fprintf(bw, "int nZ %d\n", nlay)
	fmt.Fprintln(bw, "endtag")
	if values != nil {
		fmt.Fprintln(bw, "tag parameter")
		fmt.Fprintf(bw, "array float data %d\n", len(values))
		for _, v := range values {
			fmt.Fprintf(bw, " %g\n", v)
		}
		fmt.Fprintln(bw, "endtag")
	}
	fmt.Fprintln(bw, "tag eof")
	fmt.Fprintln(bw, "endtag")
	return bw.Flush()
}

func exportDictionary(w io.Writer, d Dictionary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d.Data)
}
