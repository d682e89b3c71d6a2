package repository

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/kappagen/internal/domain/catalogue"
)

// Catalogue column layouts.
var (
	catalogueHeader = []string{"galaxy_id", "ra", "dec", "redshift", "size", "galaxy_type", "apparent_mag", "absolute_mag"}
	baseHeader      = []string{"ra", "dec", "redshift", "size", "galaxy_type", "apparent_mag", "absolute_mag"}
	specHeader      = append(append([]string{}, baseHeader...), "z_spec", "z_spec_error")
	photoHeader     = append(append([]string{}, baseHeader...), "z_photo", "z_photo_error", "z_true")
)

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func baseFields(g catalogue.Galaxy) []string {
	return []string{
		formatFloat(g.RA),
		formatFloat(g.Dec),
		formatFloat(g.Redshift),
		formatFloat(g.Size),
		strconv.Itoa(g.Type),
		formatFloat(g.ApparentMag),
		formatFloat(g.AbsoluteMag),
	}
}

// WriteCatalogue writes cat as CSV with a header and sequential galaxy ids
// starting at zero.
func WriteCatalogue(w io.Writer, cat catalogue.Catalogue) error {
	return writeRows(w, catalogueHeader, len(cat), func(i int) []string {
		return append([]string{strconv.Itoa(i)}, baseFields(cat[i])...)
	})
}

// WriteSpectroscopic writes a spectroscopic catalogue as CSV.
func WriteSpectroscopic(w io.Writer, cat []catalogue.SpecGalaxy) error {
	return writeRows(w, specHeader, len(cat), func(i int) []string {
		g := cat[i]
		return append(baseFields(g.Galaxy), formatFloat(g.ZSpec), formatFloat(g.ZSpecError))
	})
}

// WritePhotometric writes a photometric catalogue as CSV.
func WritePhotometric(w io.Writer, cat []catalogue.PhotoGalaxy) error {
	return writeRows(w, photoHeader, len(cat), func(i int) []string {
		g := cat[i]
		return append(baseFields(g.Galaxy), formatFloat(g.ZPhoto), formatFloat(g.ZPhotoError), formatFloat(g.ZTrue))
	})
}

func writeRows(w io.Writer, header []string, n int, row func(i int) []string) error {
	if n == 0 {
		return ErrEmptyDataset
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
