package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/kappagen/internal/adapters/repository"
	service "github.com/okian/kappagen/internal/app"
	"github.com/okian/kappagen/internal/config"
	"github.com/okian/kappagen/internal/verify"
	"github.com/okian/kappagen/pkg/logger"
	"github.com/okian/kappagen/pkg/metrics"
)

// cli carries state shared by the subcommands of one invocation.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	output      string
	logLevel    string
	workers     int
	metricsFile string

	cfg *config.Config
	svc *service.Service
	log logger.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "kappagen",
		Short: "Generate synthetic galaxy catalogues and weak-lensing convergence maps",
		Long: `kappagen writes the tutorial dataset: a large galaxy catalogue, a grid of
HEALPix convergence maps, and a spectroscopic/photometric catalogue pair.

Configuration is layered: defaults, then the YAML file named by
KAPPAGEN_CONFIG, then KAPPAGEN_* environment variables, then flags.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE:              c.runAll,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&c.output, "output", "o", "", "output directory (overrides output_dir)")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.IntVarP(&c.workers, "workers", "w", 0, "maps generated concurrently")
	flags.StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")

	root.AddCommand(
		&cobra.Command{
			Use:   "all",
			Short: "Generate every dataset and list the files written",
			Args:  cobra.NoArgs,
			RunE:  c.runAll,
		},
		&cobra.Command{
			Use:   "catalogue",
			Short: "Generate the large galaxy catalogue",
			Args:  cobra.NoArgs,
			RunE: c.stage(func(ctx context.Context) error {
				res, err := c.svc.GenerateLargeCatalogue(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(c.stdout, res.Path)
				return err
			}),
		},
		&cobra.Command{
			Use:   "maps",
			Short: "Generate the convergence map grid",
			Args:  cobra.NoArgs,
			RunE: c.stage(func(ctx context.Context) error {
				results, err := c.svc.GenerateKappaMaps(ctx)
				if err != nil {
					return err
				}
				for _, r := range results {
					if _, err := fmt.Fprintln(c.stdout, r.Path); err != nil {
						return err
					}
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "redshift",
			Short: "Generate the spectroscopic and photometric catalogues",
			Args:  cobra.NoArgs,
			RunE: c.stage(func(ctx context.Context) error {
				res, err := c.svc.GenerateRedshiftCatalogues(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(c.stdout, "%s\n%s\n", res.SpectroscopicPath, res.PhotometricPath)
				return err
			}),
		},
		&cobra.Command{
			Use:   "verify",
			Short: "Check the files in the output directory against the sampler invariants",
			Args:  cobra.NoArgs,
			RunE:  c.stage(c.runVerify),
		},
	)
	return root
}

// setup loads configuration, applies flags and builds the service.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if err := logger.InitWithWriter(c.stderr); err != nil {
		return err
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(c.stderr, "failed to load config: "+err.Error())
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.OutputDir = c.output
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if flags.Changed("workers") {
		cfg.Workers = c.workers
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = c.metricsFile
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(c.stderr, "invalid configuration: "+err.Error())
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	c.cfg = cfg
	c.log = logger.Named("kappagen")

	store, err := repository.NewFileStore(cfg.OutputDir, repository.WithLogger(logger.Named("repository")))
	if err != nil {
		c.log.Error(ctx, "failed to open output directory", logger.String("dir", cfg.OutputDir), logger.Error(err))
		return err
	}
	opts, err := service.OptionsFromConfig(cfg)
	if err != nil {
		c.log.Error(ctx, "invalid configuration", logger.Error(err))
		return err
	}
	c.svc, err = service.New(store, append(opts, service.WithLogger(logger.Named("service")))...)
	if err != nil {
		c.log.Error(ctx, "failed to build service", logger.Error(err))
		return err
	}
	return nil
}

func (c *cli) runAll(cmd *cobra.Command, _ []string) error {
	return c.stage(func(ctx context.Context) error {
		rep, err := c.svc.Run(ctx)
		if err != nil {
			return err
		}
		for _, f := range rep.Files {
			if _, err := fmt.Fprintln(c.stdout, f); err != nil {
				return err
			}
		}
		return nil
	})(cmd, nil)
}

func (c *cli) runVerify(ctx context.Context) error {
	v := verify.New(verify.WithLogger(logger.Named("verify")))
	rep, err := v.Dir(ctx, c.cfg.OutputDir)
	if err != nil {
		return err
	}
	for _, chk := range rep.Checks {
		line := fmt.Sprintf("ok    %-24s %s", chk.Name, chk.File)
		if !chk.OK() {
			line = fmt.Sprintf("FAIL  %-24s %s: %v", chk.Name, chk.File, chk.Err)
		}
		if _, err := fmt.Fprintln(c.stdout, line); err != nil {
			return err
		}
	}
	return rep.Err()
}

// stage wraps a generation step with the top-level error report and the
// optional metrics textfile dump.
func (c *cli) stage(fn func(ctx context.Context) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		err := fn(ctx)
		if err != nil {
			c.log.Error(ctx, "generation failed", logger.String("command", cmd.Name()), logger.Error(err))
		}
		if c.cfg.MetricsFile != "" {
			if mErr := metrics.WriteTextfile(c.cfg.MetricsFile, metrics.GetRegistry()); mErr != nil {
				c.log.Warn(ctx, "failed to write metrics textfile", logger.String("path", c.cfg.MetricsFile), logger.Error(mErr))
			}
		}
		return err
	}
}
