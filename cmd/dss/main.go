package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ironsheep/dss-annotator/internal/config"
	"github.com/ironsheep/dss-annotator/internal/imagestore"
	"github.com/ironsheep/dss-annotator/internal/kv"
	"github.com/ironsheep/dss-annotator/internal/ocr"
	"github.com/ironsheep/dss-annotator/internal/persist"
	"github.com/ironsheep/dss-annotator/internal/pipeline"
	"github.com/ironsheep/dss-annotator/internal/project"
	"github.com/ironsheep/dss-annotator/internal/render"
	"github.com/ironsheep/dss-annotator/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// fileList collects a repeatable string flag.
type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }

func (f *fileList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "dss - MCP server for annotating board images")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage: dss [options]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Options:")
	flag.PrintDefaults()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Environment variables:")
	fmt.Fprintln(out, "  DSS_LOG_LEVEL=debug    Enable debug logging")
	fmt.Fprintln(out, "  DSS_REDIS_ADDR         Override the redis address")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "This server communicates via MCP protocol over stdin/stdout.")
}

func main() {
	var (
		xmlFiles     fileList
		forceRestore bool
		configPath   string
		showVersion  bool
	)
	flag.Var(&xmlFiles, "xml-file", "project XML file to load; may be repeated")
	flag.BoolVar(&forceRestore, "force-restore", false, "restore the previous session even when --xml-file is given")
	flag.StringVar(&configPath, "config", config.GetConfigPath(), "configuration file")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("dss %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if config.Debug() {
		log.Printf("DSS Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := openStore(ctx, cfg)
	defer store.Close()

	reader := ocr.NewReader(cfg.OCR.Language)
	ingester := imagestore.Ingester{ResizeSize: cfg.Images.ResizeSize}
	library := imagestore.NewLibrary()
	renderer := render.NewRenderer(render.Sizes{
		OverviewWidth:    cfg.Render.OverviewWidth,
		OverviewHeight:   cfg.Render.OverviewHeight,
		ThumbnailHeight:  cfg.Render.ThumbnailHeight,
		DimensionsWidth:  render.DefaultSizes.DimensionsWidth,
		DimensionsHeight: render.DefaultSizes.DimensionsHeight,
		DimensionsScale:  cfg.Render.DimensionsScale,
	})

	proj := project.New(project.Options{
		Renderer:           renderer,
		Pipelines:          pipeline.NewService(store, cfg.Pipeline.Expire, reader),
		VerticalCorrection: cfg.Pipeline.VerticalCorrection,
		PipeEnv:            cfg.Pipeline.Env,
		GridSpacing:        cfg.Grid.Spacing,
	})
	defaults, err := persist.LoadDefaults(cfg.DefaultsPath())
	if err != nil {
		log.Printf("Defaults not loaded: %v", err)
	} else {
		proj.SetSavedDefaults(defaults)
	}

	items := imagestore.NewStore(store, ingester)
	panel := imagestore.NewPanel(items)
	panel.CategoryColor = proj.CategoryColor

	srv := server.New(server.Deps{
		Config:   cfg,
		Project:  proj,
		Library:  library,
		Ingester: ingester,
		Store:    items,
		Panel:    panel,
		Renderer: renderer,
		Exporter: &persist.Exporter{
			Dir:     config.ExpandHome(cfg.Export.Dir),
			Format:  cfg.Export.ImageFormat,
			KV:      store,
			Sources: library,
		},
		OCR: reader,
	})

	var sources []string
	if len(xmlFiles) == 0 || forceRestore {
		sources = append(sources, cfg.SessionPath())
	}
	sources = append(sources, xmlFiles...)
	srv.RestoreSession(ctx, persist.LoadFiles(sources))

	go panel.Run(ctx, cfg.Refresh.Interval)

	runErr := srv.Run(ctx)
	if err := srv.SaveSession(); err != nil {
		log.Printf("Session not saved: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Server error: %v", runErr)
	}
}

// openStore connects to redis, falling back to an in-process store so the
// annotator stays usable without a server.
func openStore(ctx context.Context, cfg *config.Config) kv.Store {
	dialCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	r, err := kv.NewRedis(dialCtx, kv.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Printf("Key-value store unavailable, using memory: %v", err)
		return kv.NewMemory()
	}
	return r
}
