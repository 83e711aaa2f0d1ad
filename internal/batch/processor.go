package batch

import (
	"context"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"g3d-renderer/internal/colix"
	"g3d-renderer/internal/config"
	"g3d-renderer/internal/drawlist"
	"g3d-renderer/internal/postprocess"
	"g3d-renderer/internal/raster"
	"g3d-renderer/internal/sink"
	"g3d-renderer/internal/texture"
)

// Config holds the resources shared by every worker. Palette, Glyphs and
// Images must be safe for concurrent use.
type Config struct {
	Render  config.Config
	Palette *colix.Table
	Glyphs  raster.GlyphSource
	Images  texture.Resolver
	// Background, when set, is drawn behind every frame.
	Background image.Image
	// Progress is the reporting interval; zero disables it.
	Progress time.Duration
}

// Result is the outcome of one job.
type Result struct {
	Job
	Output        string
	Width, Height int
	Translucent   bool
	Success       bool
	Error         string
	Elapsed       time.Duration
}

// Run renders jobs on cfg.Render.Workers goroutines, each owning its own
// Renderer. Results are in job order. Jobs not started when ctx is done
// fail with its error.
func Run(ctx context.Context, cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()
	done := make(chan struct{})
	if cfg.Progress > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Progress)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if p := processed.Load(); p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						fmt.Printf("  [%d/%d] %.1f frames/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	workers := max(1, min(cfg.Render.Workers, total))
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := NewRenderer(&cfg.Render, cfg.Palette, cfg.Glyphs, cfg.Background)
			defer r.ReleaseBuffers()
			for idx := range jobChan {
				if err := ctx.Err(); err != nil {
					results[idx] = Result{Job: jobs[idx], Error: err.Error()}
				} else {
					results[idx] = processJob(r, cfg, jobs[idx])
				}
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)
	wg.Wait()
	close(done)

	return results
}

// NewRenderer builds a Renderer configured from c.
func NewRenderer(c *config.Config, pal *colix.Table, glyphs raster.GlyphSource, bg image.Image) *raster.Renderer {
	r := raster.New(pal, raster.WithGlyphSource(glyphs))
	if c.Lighting != nil {
		r.SetLighting(*c.Lighting)
	}
	r.SetPerspective(c.Perspective)
	r.SetGreyscaleMode(c.Greyscale)
	r.SetBackgroundTransparent(c.Transparent)
	if bg != nil {
		r.SetBackgroundImage(bg)
	}
	slab, depth := c.Slab, c.Depth
	if depth <= 0 {
		depth = math.MaxInt32
	}
	if z := c.ZShade; z != nil {
		r.SetSlabAndZShade(slab, depth, z.Slab, z.Depth, z.Power)
	} else {
		r.SetSlab(slab)
		r.SetDepth(depth)
	}
	r.SetFont(raster.Font{Face: c.FontFace, Size: c.FontSize})
	return r
}

func processJob(r *raster.Renderer, cfg Config, job Job) Result {
	start := time.Now()
	res := Result{Job: job}
	fail := func(err error) Result {
		res.Error = err.Error()
		res.Elapsed = time.Since(start)
		raster.Logger().Warn("batch: job failed", "job", job.Name, "err", err)
		return res
	}

	doc, err := drawlist.ReadFile(job.Path)
	if err != nil {
		return fail(err)
	}
	list, err := drawlist.Compile(doc, cfg.Palette, cfg.Images)
	if err != nil {
		return fail(err)
	}

	rc := &cfg.Render
	w, h := rc.Width, rc.Height
	if list.Width > 0 {
		w = list.Width
	}
	if list.Height > 0 {
		h = list.Height
	}
	bg, err := rc.BackgroundArgb()
	if err != nil {
		return fail(err)
	}
	if list.Background != 0 {
		bg = list.Background
	}
	r.SetWindowParameters(w, h, rc.Antialias)
	r.SetBackgroundArgb(bg)

	err = list.Render(r, drawlist.Options{
		TranslucentMode:      true,
		AntialiasTranslucent: rc.AntialiasTranslucent,
	})
	if err != nil {
		return fail(err)
	}
	res.Width, res.Height = w, h
	res.Translucent = r.HaveTranslucentObjects()

	img := postprocess.ToNRGBA(r.Frame())
	if rc.Fit > 0 {
		img = postprocess.Fit(img, w, h, rc.Fit)
	}

	res.Output = filepath.Join(rc.OutputDir, job.Name+rc.OutputFormat().Ext())
	if err := sink.WriteFile(res.Output, img); err != nil {
		return fail(err)
	}
	res.Success = true
	res.Elapsed = time.Since(start)
	return res
}
