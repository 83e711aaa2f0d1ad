// Command g3drender renders draw-list files to images.
//
//	g3drender [flags] scene.yaml dir/ ...
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"g3d-renderer/internal/batch"
	"g3d-renderer/internal/colix"
	"g3d-renderer/internal/config"
	"g3d-renderer/internal/glyph"
	"g3d-renderer/internal/raster"
	"g3d-renderer/internal/texture"
)

func main() {
	configFile := flag.String("config", "", "Path to a .json or .toml config file")
	outputDir := flag.String("output", "", "Output directory (default: renders)")
	format := flag.String("format", "", "Output format: webp, tga or png (default: webp)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	width := flag.Int("width", 0, "Frame width when the draw list has none (default: 500)")
	height := flag.Int("height", 0, "Frame height when the draw list has none (default: 500)")
	antialias := flag.Bool("aa", false, "Antialias by 2x supersampling")
	watch := flag.Bool("watch", false, "Re-render inputs when they change")
	noManifest := flag.Bool("no-manifest", false, "Skip writing manifest.json")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	if *verbose {
		raster.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: g3drender [flags] <draw list or directory>...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		OutputDir: *outputDir,
		Format:    *format,
		Workers:   *workers,
		Width:     *width,
		Height:    *height,
		Antialias: *antialias,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	glyphs, err := glyph.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading fonts: %v\n", err)
		os.Exit(1)
	}
	defer glyphs.Close()

	texIndex := texture.BuildIndex(cfg.AssetDir)
	var bg image.Image
	if cfg.BackgroundImage != "" {
		img, err := texture.Load(cfg.BackgroundImage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: background image: %v\n", err)
		} else {
			bg = img
		}
	}

	bc := batch.Config{
		Render:     cfg,
		Palette:    colix.NewTable(),
		Glyphs:     glyphs,
		Images:     texture.NewCache(texIndex),
		Background: bg,
		Progress:   2 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	jobs, err := batch.FindJobs(inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(jobs) == 0 && !*watch {
		fmt.Println("No draw lists to render.")
		os.Exit(0)
	}

	fmt.Printf("g3d software renderer → %s\n", cfg.Format)
	fmt.Printf("Draw lists: %d, Workers: %d, Assets: %d\n", len(jobs), cfg.Workers, texIndex.Len())
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	failed := render(ctx, bc, jobs, !*noManifest)

	if *watch {
		if err := watchInputs(ctx, bc, inputs); err != nil {
			fmt.Fprintf(os.Stderr, "Error: watch: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// render runs one batch, prints a summary and returns the failure count.
func render(ctx context.Context, bc batch.Config, jobs []batch.Job, manifest bool) int {
	start := time.Now()
	results := batch.Run(ctx, bc, jobs)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	var failures []batch.Result
	for _, r := range results {
		if !r.Success {
			failures = append(failures, r)
		}
	}
	fmt.Printf("Rendered: %d/%d\n", len(results)-len(failures), len(results))

	if len(failures) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failures))
		for _, e := range failures[:min(20, len(failures))] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	if manifest && len(results) > 0 {
		path := filepath.Join(bc.Render.OutputDir, "manifest.json")
		if err := os.MkdirAll(bc.Render.OutputDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else if err := batch.WriteManifest(path, results); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else {
			fmt.Printf("Manifest: %s\n", path)
		}
	}
	return len(failures)
}
