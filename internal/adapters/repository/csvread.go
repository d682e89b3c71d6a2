package repository

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/kappagen/internal/domain/catalogue"
)

// table is a parsed CSV file with numeric cells addressed by column name.
type table struct {
	cols map[string]int
	rows [][]string
}

func readTable(r io.Reader, header []string) (*table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	if len(records) < 2 {
		return nil, ErrEmptyDataset
	}
	t := &table{cols: make(map[string]int, len(records[0])), rows: records[1:]}
	for i, name := range records[0] {
		t.cols[name] = i
	}
	for _, name := range header {
		if _, ok := t.cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrInvalidTable, name)
		}
	}
	return t, nil
}

func (t *table) number(row int, name string) (float64, error) {
	v, err := strconv.ParseFloat(t.rows[row][t.cols[name]], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: row %d column %s: %w", ErrInvalidTable, row, name, err)
	}
	return v, nil
}

func (t *table) integer(row int, name string) (int, error) {
	v, err := strconv.Atoi(t.rows[row][t.cols[name]])
	if err != nil {
		return 0, fmt.Errorf("%w: row %d column %s: %w", ErrInvalidTable, row, name, err)
	}
	return v, nil
}

func (t *table) galaxy(row int) (catalogue.Galaxy, error) {
	var g catalogue.Galaxy
	var err error
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"ra", &g.RA},
		{"dec", &g.Dec},
		{"redshift", &g.Redshift},
		{"size", &g.Size},
		{"apparent_mag", &g.ApparentMag},
		{"absolute_mag", &g.AbsoluteMag},
	} {
		if *f.dst, err = t.number(row, f.name); err != nil {
			return g, err
		}
	}
	g.Type, err = t.integer(row, "galaxy_type")
	return g, err
}

// ReadCatalogue reads a catalogue written by WriteCatalogue. Galaxy ids must
// run sequentially from zero.
func ReadCatalogue(r io.Reader) (catalogue.Catalogue, error) {
	t, err := readTable(r, catalogueHeader)
	if err != nil {
		return nil, err
	}
	cat := make(catalogue.Catalogue, len(t.rows))
	for i := range t.rows {
		id, err := t.integer(i, "galaxy_id")
		if err != nil {
			return nil, err
		}
		if id != i {
			return nil, fmt.Errorf("%w: row %d has galaxy_id %d", ErrInvalidTable, i, id)
		}
		if cat[i], err = t.galaxy(i); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

// ReadSpectroscopic reads a catalogue written by WriteSpectroscopic.
func ReadSpectroscopic(r io.Reader) ([]catalogue.SpecGalaxy, error) {
	t, err := readTable(r, specHeader)
	if err != nil {
		return nil, err
	}
	out := make([]catalogue.SpecGalaxy, len(t.rows))
	for i := range t.rows {
		g := &out[i]
		if g.Galaxy, err = t.galaxy(i); err != nil {
			return nil, err
		}
		if g.ZSpec, err = t.number(i, "z_spec"); err != nil {
			return nil, err
		}
		if g.ZSpecError, err = t.number(i, "z_spec_error"); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ReadPhotometric reads a catalogue written by WritePhotometric.
func ReadPhotometric(r io.Reader) ([]catalogue.PhotoGalaxy, error) {
	t, err := readTable(r, photoHeader)
	if err != nil {
		return nil, err
	}
	out := make([]catalogue.PhotoGalaxy, len(t.rows))
	for i := range t.rows {
		g := &out[i]
		if g.Galaxy, err = t.galaxy(i); err != nil {
			return nil, err
		}
		if g.ZPhoto, err = t.number(i, "z_photo"); err != nil {
			return nil, err
		}
		if g.ZPhotoError, err = t.number(i, "z_photo_error"); err != nil {
			return nil, err
		}
		if g.ZTrue, err = t.number(i, "z_true"); err != nil {
			return nil, err
		}
	}
	return out, nil
}
