package service

import (
	"github.com/okian/kappagen/internal/config"
	"github.com/okian/kappagen/internal/domain/catalogue"
	"github.com/okian/kappagen/internal/domain/distribution"
)

// OptionsFromConfig translates a validated configuration into service
// options. The redshift pair keeps its fixed exp/lognormal distributions.
func OptionsFromConfig(cfg *config.Config) ([]Option, error) {
	large, err := catalogue.NewParams(
		cfg.CatalogueSize,
		cfg.CatalogueRedshiftDist,
		cfg.CatalogueSizeDist,
		cfg.CatalogueAreaDeg2,
		cfg.CatalogueSeed,
	)
	if err != nil {
		return nil, err
	}
	pair := catalogue.Params{
		N:            cfg.RedshiftCatalogueSize,
		RedshiftDist: distribution.RedshiftExponential,
		SizeDist:     distribution.SizeLogNormal,
		AreaDeg2:     cfg.RedshiftCatalogueAreaDeg2,
		Seed:         cfg.RedshiftCatalogueSeed,
	}
	if err := pair.Validate(); err != nil {
		return nil, err
	}
	return []Option{
		WithWorkers(cfg.Workers),
		WithCatalogueParams(large),
		WithRedshiftCatalogueParams(pair),
		WithMapGrid(cfg.MapNsides, cfg.MapSources),
		WithMapSeed(cfg.MapSeed),
	}, nil
}
