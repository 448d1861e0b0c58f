// Package main provides the CLI entry point for l2d.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/applied-geosolutions/lidar2dems/pkg/adapters/execrunner"
	"github.com/applied-geosolutions/lidar2dems/pkg/adapters/filesink"
	"github.com/applied-geosolutions/lidar2dems/pkg/adapters/gdalfill"
	"github.com/applied-geosolutions/lidar2dems/pkg/adapters/geosgeom"
	"github.com/applied-geosolutions/lidar2dems/pkg/adapters/logger"
	"github.com/applied-geosolutions/lidar2dems/pkg/adapters/nullsink"
	"github.com/applied-geosolutions/lidar2dems/pkg/adapters/osfilesystem"
	"github.com/applied-geosolutions/lidar2dems/pkg/adapters/sitefile"
	"github.com/applied-geosolutions/lidar2dems/pkg/config"
	"github.com/applied-geosolutions/lidar2dems/pkg/executor"
	"github.com/applied-geosolutions/lidar2dems/pkg/orchestrator"
	"github.com/applied-geosolutions/lidar2dems/pkg/pdal"
	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
	"github.com/applied-geosolutions/lidar2dems/pkg/ports"
	"github.com/applied-geosolutions/lidar2dems/pkg/stages/dem"
	"github.com/applied-geosolutions/lidar2dems/pkg/stages/gapfill"
	"github.com/applied-geosolutions/lidar2dems/pkg/stages/ground"
	"github.com/applied-geosolutions/lidar2dems/pkg/stages/merge"
	"github.com/applied-geosolutions/lidar2dems/pkg/summarizer"
)

var version = "dev"

const (
	categoryOutput  = "Output"
	categoryFilters = "Filters"
	categoryGround  = "Ground Classification"
	categoryTools   = "External Tools"
	categoryDebug   = "Debug"
	categoryLogging = "Logging"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                 "l2d",
		Usage:                l10n.T("Create elevation models from LiDAR point clouds"),
		Description:          l10n.T("l2d classifies ground points and rasterizes LAS files into DSM, DTM and density products with pdal."),
		Version:              version,
		HideVersion:          true,
		EnableBashCompletion: true,
		Flags:                globalFlags(),
		Commands: []*cli.Command{
			{
				Name:      "classify",
				Usage:     l10n.T("Merge LAS files and classify ground points"),
				ArgsUsage: "FILE...",
				Flags:     append(classifyFlags(), siteFlags()...),
				Action:    runClassify,
			},
			{
				Name:      "dems",
				Usage:     l10n.T("Create DEM products over one or more radii"),
				ArgsUsage: "DEMTYPE FILE...",
				Flags:     append(append(demFlags(), filterFlags()...), siteFlags()...),
				Action:    runDEMs,
			},
			{
				Name:      "pipeline",
				Usage:     l10n.T("Print the pdal pipeline for one DEM product without running it"),
				ArgsUsage: "DEMTYPE FILE...",
				Flags:     append(append(demFlags(), filterFlags()...), siteFlags()...),
				Action:    runPipeline,
			},
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, l10n.F("l2d version %s", version))
					return nil
				},
			},
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file")},
		&cli.StringFlag{Name: "pdal", Usage: l10n.T("Path to pdal executable (falls back to PDAL_PATH env, then PATH)"), Category: l10n.T(categoryTools)},
		&cli.StringFlag{Name: "gdalwarp", Usage: l10n.T("Path to gdalwarp executable"), Category: l10n.T(categoryTools)},
		&cli.BoolFlag{Name: "ignore-exit-code", Usage: l10n.T("Judge success by output files only, not pdal's exit status"), Category: l10n.T(categoryTools)},
		&cli.DurationFlag{Name: "timeout", Usage: l10n.T("Abort the whole run after this duration (0 = no limit)"), Category: l10n.T(categoryTools)},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: l10n.T("Print pipelines and pdal output"), Category: l10n.T(categoryDebug)},
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Save every pipeline document"), Category: l10n.T(categoryDebug)},
		&cli.StringFlag{Name: "debug-dir", Value: "./debug", Usage: l10n.T("Directory for debug output"), Category: l10n.T(categoryDebug)},
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T(categoryLogging)},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T(categoryLogging)},
	}
}

func siteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "site", Aliases: []string{"s"}, Usage: l10n.T("Site polygons (.wkt or .geojson) to crop to"), Category: l10n.T(categoryFilters)},
		&cli.Float64Flag{Name: "buffer", Value: pipeline.DefaultBuffer, Usage: l10n.T("Distance to expand site polygons by"), Category: l10n.T(categoryFilters)},
		&cli.IntFlag{Name: "decimation", Usage: l10n.T("Keep every Nth point"), Category: l10n.T(categoryFilters)},
	}
}

func classifyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Classified LAS file (required)"), Category: l10n.T(categoryOutput)},
		&cli.StringFlag{Name: "merge-path", Usage: l10n.T("Path of the intermediate merged file"), Category: l10n.T(categoryOutput)},
		&cli.BoolFlag{Name: "overwrite", Usage: l10n.T("Recreate outputs that already exist"), Category: l10n.T(categoryOutput)},
		&cli.Float64Flag{Name: "slope", Usage: l10n.T("Slope for ground classification (default: 1)"), Category: l10n.T(categoryGround)},
		&cli.Float64Flag{Name: "cellsize", Usage: l10n.T("Cell size for ground classification (default: 1)"), Category: l10n.T(categoryGround)},
		&cli.Float64Flag{Name: "maxwindowsize", Usage: l10n.T("Maximum window size (default: 10)"), Category: l10n.T(categoryGround)},
		&cli.Float64Flag{Name: "maxdistance", Usage: l10n.T("Maximum distance (default: 1)"), Category: l10n.T(categoryGround)},
		&cli.BoolFlag{Name: "approximate", Usage: l10n.T("Use approximate ground classification"), Category: l10n.T(categoryGround)},
	}
}

func demFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "outdir", Aliases: []string{"o"}, Usage: l10n.T("Output directory (default: current directory)"), Category: l10n.T(categoryOutput)},
		&cli.StringFlag{Name: "suffix", Usage: l10n.T("Suffix appended to output names"), Category: l10n.T(categoryOutput)},
		&cli.StringSliceFlag{Name: "radius", Aliases: []string{"r"}, Usage: l10n.T("Search radius, repeatable (default: 0.56)"), Category: l10n.T(categoryOutput)},
		&cli.Float64Flag{Name: "resolution", Usage: l10n.T("Output cell size (default: 0.1)"), Category: l10n.T(categoryOutput)},
		&cli.StringSliceFlag{Name: "products", Aliases: []string{"p"}, Usage: l10n.T("Products to create (den, min, max, mean, idw, stdev)"), Category: l10n.T(categoryOutput)},
		&cli.BoolFlag{Name: "gapfill", Usage: l10n.T("Gap-fill products across radii"), Category: l10n.T(categoryOutput)},
		&cli.BoolFlag{Name: "overwrite", Usage: l10n.T("Recreate outputs that already exist"), Category: l10n.T(categoryOutput)},
		&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: l10n.T("Sites processed in parallel (default: 1)"), Category: l10n.T(categoryOutput)},
		&cli.StringFlag{Name: "summary", Usage: l10n.T("Output execution summary to file (Markdown format)"), Category: l10n.T(categoryOutput)},
	}
}

func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{Name: "maxsd", Usage: l10n.T("Outlier filter standard deviation multiplier"), Category: l10n.T(categoryFilters)},
		&cli.IntFlag{Name: "outlier-mean-k", Usage: l10n.T("Neighbours considered by the outlier filter (default: 20)"), Category: l10n.T(categoryFilters)},
		&cli.Float64Flag{Name: "maxz", Usage: l10n.T("Maximum elevation"), Category: l10n.T(categoryFilters)},
		&cli.Float64Flag{Name: "maxangle", Usage: l10n.T("Maximum absolute scan angle"), Category: l10n.T(categoryFilters)},
		&cli.IntFlag{Name: "returnnum", Usage: l10n.T("Keep only this return number"), Category: l10n.T(categoryFilters)},
	}
}

// loadConfig reads --config, or the defaults, and applies every flag the user
// set on top.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if c.IsSet("pdal") {
		cfg.PDALPath = c.String("pdal")
	}
	if c.IsSet("gdalwarp") {
		cfg.GdalwarpPath = c.String("gdalwarp")
	}
	if c.Bool("ignore-exit-code") {
		cfg.TrustExitCode = false
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}

	if c.IsSet("outdir") {
		cfg.OutDir = c.String("outdir")
	}
	if c.IsSet("suffix") {
		cfg.Suffix = c.String("suffix")
	}
	if c.IsSet("radius") {
		cfg.Radii = c.StringSlice("radius")
	}
	if c.IsSet("resolution") {
		cfg.Resolution = c.Float64("resolution")
	}
	if c.IsSet("gapfill") {
		cfg.GapFill = c.Bool("gapfill")
	}
	if c.IsSet("jobs") {
		cfg.Jobs = c.Int("jobs")
	}
	if c.IsSet("buffer") {
		cfg.Buffer = c.Float64("buffer")
	}

	if c.IsSet("decimation") {
		v := c.Int("decimation")
		cfg.Filters.Decimation = &v
	}
	if c.IsSet("maxsd") {
		v := c.Float64("maxsd")
		cfg.Filters.MaxSD = &v
	}
	if c.IsSet("outlier-mean-k") {
		cfg.Filters.OutlierMeanK = c.Int("outlier-mean-k")
	}
	if c.IsSet("maxz") {
		v := c.Float64("maxz")
		cfg.Filters.MaxZ = &v
	}
	if c.IsSet("maxangle") {
		v := c.Float64("maxangle")
		cfg.Filters.MaxAngle = &v
	}
	if c.IsSet("returnnum") {
		v := c.Int("returnnum")
		cfg.Filters.ReturnNum = &v
	}

	if c.IsSet("slope") {
		cfg.Ground.Slope = c.Float64("slope")
	}
	if c.IsSet("cellsize") {
		cfg.Ground.CellSize = c.Float64("cellsize")
	}
	if c.IsSet("maxwindowsize") {
		v := c.Float64("maxwindowsize")
		cfg.Ground.MaxWindowSize = &v
	}
	if c.IsSet("maxdistance") {
		v := c.Float64("maxdistance")
		cfg.Ground.MaxDistance = &v
	}
	if c.IsSet("approximate") {
		cfg.Ground.Approximate = c.Bool("approximate")
	}

	return cfg, cfg.Validate()
}

func newLogger(c *cli.Context) ports.Logger {
	if c.Bool("quiet") {
		return logger.NewNoop()
	}
	return logger.NewWriter(ports.ParseLogLevel(c.String("log-level")), c.App.Writer, c.App.ErrWriter)
}

// withSignals returns a context cancelled on SIGINT, SIGTERM or --timeout.
func withSignals(c *cli.Context, log ports.Logger) (context.Context, context.CancelFunc) {
	parent := c.Context
	if parent == nil {
		parent = context.Background()
	}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout := c.Duration("timeout"); timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// workflow wires the adapters, stages and orchestrator for one run.
type workflow struct {
	orch  *orchestrator.Orchestrator
	fs    *osfilesystem.FileSystem
	geom  *geosgeom.Geometry
	sites *sitefile.Loader
}

func newWorkflow(c *cli.Context, cfg config.Config, log ports.Logger) (*workflow, error) {
	fs := osfilesystem.New()
	runner := execrunner.New()
	geom := geosgeom.New()

	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return nil, fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs)
	} else {
		sink = nullsink.New()
	}

	opts := cfg.ExecutorOptions()
	opts.Output = c.App.Writer
	exec := executor.New(runner, fs, sink, log, opts)
	filler := gdalfill.New(cfg.GdalwarpPath, runner, fs, log)

	orch := orchestrator.New(
		merge.NewStage(exec, fs, geom, log),
		ground.NewStage(exec, fs, log),
		dem.NewStage(exec, fs, geom, log),
		gapfill.NewStage(filler, fs, log),
		fs,
		log,
	)

	return &workflow{
		orch:  orch,
		fs:    fs,
		geom:  geom,
		sites: sitefile.New(fs),
	}, nil
}

// loadSites returns the sites of --site, or a single nil site without it.
func (w *workflow) loadSites(c *cli.Context) ([]*pipeline.Site, error) {
	path := c.String("site")
	if path == "" {
		return []*pipeline.Site{nil}, nil
	}
	sites, err := w.sites.Load(path)
	if err != nil {
		return nil, err
	}
	result := make([]*pipeline.Site, len(sites))
	for i := range sites {
		result[i] = &sites[i]
	}
	return result, nil
}

func runClassify(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit(l10n.T("At least one LAS file is required"), 2)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(c)
	ctx, cancel := withSignals(c, log)
	defer cancel()

	w, err := newWorkflow(c, cfg, log)
	if err != nil {
		return err
	}
	sites, err := w.loadSites(c)
	if err != nil {
		return err
	}
	if len(sites) != 1 {
		return fmt.Errorf("classify takes one site, %s has %d", c.String("site"), len(sites))
	}

	output := c.String("output")
	if !c.Bool("overwrite") {
		if exists, _ := w.fs.Exists(output); exists {
			log.Info("%s exists, skipping", output)
			return nil
		}
	}

	input := pipeline.DefaultClassifyInput()
	input.Filenames = c.Args().Slice()
	input.Output = output
	input.MergePath = c.String("merge-path")
	input.Params = cfg.GroundParams()
	input.Site = sites[0]
	input.Buffer = cfg.Buffer
	input.Decimation = cfg.Filters.Decimation
	input.Verbose = c.Bool("verbose")

	start := time.Now()
	_, err = w.orch.Classify(ctx, input)
	if err != nil {
		log.Error("Failed to classify: %s", err)
		return err
	}
	log.Info("Created %s in %s", output, time.Since(start).Round(time.Millisecond))
	return nil
}

// parseDEMArgs returns the DEM type and input files from DEMTYPE FILE....
func parseDEMArgs(c *cli.Context) (pipeline.DEMType, []string, error) {
	if c.NArg() < 2 {
		return "", nil, cli.Exit(l10n.T("A DEM type and at least one LAS file are required"), 2)
	}
	demType, err := pipeline.ParseDEMType(c.Args().First())
	if err != nil {
		return "", nil, cli.Exit(err.Error(), 2)
	}
	return demType, c.Args().Tail(), nil
}

// applyProducts overrides the configured products of demType with --products.
func applyProducts(c *cli.Context, cfg *config.Config, demType pipeline.DEMType) error {
	if !c.IsSet("products") {
		return nil
	}
	codes := c.StringSlice("products")
	products, err := pipeline.ParseProducts(codes)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	if err := pipeline.CheckProducts(demType, products); err != nil {
		return cli.Exit(err.Error(), 2)
	}
	if cfg.Products == nil {
		cfg.Products = make(map[string][]string)
	}
	cfg.Products[string(demType)] = codes
	return nil
}

func runDEMs(c *cli.Context) error {
	demType, files, err := parseDEMArgs(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := applyProducts(c, &cfg, demType); err != nil {
		return err
	}

	log := newLogger(c)
	ctx, cancel := withSignals(c, log)
	defer cancel()

	w, err := newWorkflow(c, cfg, log)
	if err != nil {
		return err
	}
	sites, err := w.loadSites(c)
	if err != nil {
		return err
	}
	if err := w.fs.MkdirAll(cfg.OutDir); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	start := time.Now()
	builder := summarizer.NewBuilder().WithSettings(summarizer.Settings{
		Resolution: cfg.Resolution,
		Radii:      cfg.Radii,
		GapFill:    cfg.GapFill,
		Buffer:     cfg.Buffer,
		Filters:    cfg.PipelineFilters(),
	})
	var mu sync.Mutex

	base, err := cfg.ToDEMsInput(demType, files, nil)
	if err != nil {
		return err
	}
	base.Overwrite = c.Bool("overwrite")
	base.Verbose = c.Bool("verbose")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Jobs)
	for _, site := range sites {
		input := base
		input.Site = site

		g.Go(func() error {
			if input.Site != nil {
				log.Info("Processing site %s", input.Site.Basename())
			}
			result, err := w.orch.CreateDEMs(gctx, input)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				builder.AddFailure(input, err)
				return err
			}
			builder.AddResult(input, result)
			return nil
		})
	}
	runErr := g.Wait()
	if runErr != nil {
		log.Error("Failed to create DEMs: %s", runErr)
	}

	if path := c.String("summary"); path != "" {
		summary := builder.WithDuration(time.Since(start)).Build()
		writer := summarizer.NewWriter(summarizer.NewMarkdownFormatter(), w.fs)
		if err := writer.Write(path, summary); err != nil {
			log.Warn("Failed to write summary: %s", err)
		} else {
			log.Info("Summary saved to %s", path)
		}
	}

	return runErr
}

// runPipeline prints the pipeline document of the first product at the first
// radius.
func runPipeline(c *cli.Context) error {
	demType, files, err := parseDEMArgs(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := applyProducts(c, &cfg, demType); err != nil {
		return err
	}

	w, err := newWorkflow(c, cfg, newLogger(c))
	if err != nil {
		return err
	}
	sites, err := w.loadSites(c)
	if err != nil {
		return err
	}
	input, err := cfg.ToDEMsInput(demType, files, sites[0])
	if err != nil {
		return err
	}

	products := input.Products
	if len(products) == 0 {
		products = demType.DefaultProducts()
	}
	base, err := pipeline.OutputBase(input.OutDir, input.Site, demType, input.Suffix, input.Radius)
	if err != nil {
		return err
	}
	crop, err := pdal.SitePolygon(w.geom, input.Site, input.Buffer)
	if err != nil {
		return err
	}

	p := pdal.NewDEMPipeline(pdal.DEMOptions{
		Filenames:   files,
		DEMType:     demType,
		Radius:      input.Radius,
		Resolution:  input.Resolution,
		OutputBase:  base,
		Products:    products,
		Filters:     input.Filters,
		CropPolygon: crop,
	})
	data, err := p.Indent()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}
