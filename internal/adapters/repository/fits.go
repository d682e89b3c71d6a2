package repository

import (
	"fmt"
	"io"

	"github.com/astrogo/fitsio"
	"github.com/okian/kappagen/internal/domain/healpix"
	"github.com/okian/kappagen/internal/domain/kappa"
)

// HEALPix FITS layout.
const (
	mapExtension = "xtension"
	mapColumn    = "KAPPA"
)

// MapFilename returns the conventional file name of a map.
func MapFilename(nside int, zSource float64) string {
	return fmt.Sprintf("kappa_map_nside%d_z%s.fits", nside, kappa.SourceLabel(zSource))
}

// WriteMap writes m as a HEALPix FITS file: an empty primary HDU followed by
// a binary table with one double column in RING order.
func WriteMap(w io.Writer, m kappa.Map) error {
	npix, err := healpix.NSideToNPix(m.Nside)
	if err != nil {
		return err
	}
	if len(m.Pixels) != npix {
		return fmt.Errorf("%w: %d pixels for nside %d", ErrInvalidMap, len(m.Pixels), m.Nside)
	}

	f, err := fitsio.Create(w)
	if err != nil {
		return fmt.Errorf("create fits: %w", err)
	}
	defer f.Close()

	phdu, err := fitsio.NewPrimaryHDU(nil)
	if err != nil {
		return fmt.Errorf("primary hdu: %w", err)
	}
	if err := f.Write(phdu); err != nil {
		return fmt.Errorf("write primary hdu: %w", err)
	}

	tbl, err := fitsio.NewTable(mapExtension, []fitsio.Column{{Name: mapColumn, Format: "D"}}, fitsio.BINARY_TBL)
	if err != nil {
		return fmt.Errorf("new table: %w", err)
	}
	defer tbl.Close()

	err = tbl.Header().Append(
		fitsio.Card{Name: "PIXTYPE", Value: "HEALPIX", Comment: "HEALPIX pixelisation"},
		fitsio.Card{Name: "ORDERING", Value: "RING", Comment: "Pixel ordering scheme"},
		fitsio.Card{Name: "NSIDE", Value: m.Nside, Comment: "Resolution parameter of HEALPIX"},
		fitsio.Card{Name: "FIRSTPIX", Value: 0, Comment: "First pixel # (0 based)"},
		fitsio.Card{Name: "LASTPIX", Value: npix - 1, Comment: "Last pixel # (0 based)"},
		fitsio.Card{Name: "INDXSCHM", Value: "IMPLICIT", Comment: "Indexing: IMPLICIT or EXPLICIT"},
		fitsio.Card{Name: "OBJECT", Value: "FULLSKY", Comment: "Sky coverage"},
		fitsio.Card{Name: "ZSOURCE", Value: m.ZSource, Comment: "Source redshift"},
	)
	if err != nil {
		return fmt.Errorf("map header: %w", err)
	}

	for i := range m.Pixels {
		if err := tbl.Write(&m.Pixels[i]); err != nil {
			return fmt.Errorf("write pixel %d: %w", i, err)
		}
	}
	if err := f.Write(tbl); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

// ReadMap reads a map written by WriteMap.
func ReadMap(r io.Reader) (kappa.Map, error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return kappa.Map{}, fmt.Errorf("open fits: %w", err)
	}
	defer f.Close()

	if len(f.HDUs()) < 2 {
		return kappa.Map{}, fmt.Errorf("%w: missing map extension", ErrInvalidMap)
	}
	tbl, ok := f.HDU(1).(*fitsio.Table)
	if !ok {
		return kappa.Map{}, fmt.Errorf("%w: extension is not a table", ErrInvalidMap)
	}

	hdr := tbl.Header()
	nside, err := intCard(hdr, "NSIDE")
	if err != nil {
		return kappa.Map{}, err
	}
	if err := healpix.ValidateNside(nside); err != nil {
		return kappa.Map{}, err
	}
	m := kappa.Map{Nside: nside}
	if hdr.Get("ZSOURCE") != nil {
		if m.ZSource, err = floatCard(hdr, "ZSOURCE"); err != nil {
			return kappa.Map{}, err
		}
	}

	rows, err := tbl.Read(0, tbl.NumRows())
	if err != nil {
		return kappa.Map{}, fmt.Errorf("read rows: %w", err)
	}
	defer rows.Close()

	m.Pixels = make([]float64, 0, healpix.NPix(nside))
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return kappa.Map{}, fmt.Errorf("scan pixel %d: %w", len(m.Pixels), err)
		}
		m.Pixels = append(m.Pixels, v)
	}
	if err := rows.Err(); err != nil {
		return kappa.Map{}, fmt.Errorf("read rows: %w", err)
	}
	if len(m.Pixels) != healpix.NPix(nside) {
		return kappa.Map{}, fmt.Errorf("%w: %d pixels for nside %d", ErrInvalidMap, len(m.Pixels), nside)
	}
	return m, nil
}

func intCard(hdr *fitsio.Header, name string) (int, error) {
	c := hdr.Get(name)
	if c == nil {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidMap, name)
	}
	switch v := c.Value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("%w: %s has type %T", ErrInvalidMap, name, c.Value)
	}
}

func floatCard(hdr *fitsio.Header, name string) (float64, error) {
	c := hdr.Get(name)
	if c == nil {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidMap, name)
	}
	switch v := c.Value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: %s has type %T", ErrInvalidMap, name, c.Value)
	}
}
