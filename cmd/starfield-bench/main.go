// Command starfield-bench measures the precision of the camera-relative transform path
// against an arbitrary-precision reference, dumps the composed stage shaders and runs a
// sample scene through the engine, optionally drawing it offscreen.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	"github.com/Carmen-Shannon/starfield/common"
	"github.com/Carmen-Shannon/starfield/engine/camera"
	"github.com/Carmen-Shannon/starfield/engine/config"
	"github.com/Carmen-Shannon/starfield/engine/depth"
	"github.com/Carmen-Shannon/starfield/engine/renderer"
	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/Carmen-Shannon/starfield/engine/renderer/pipeline"
	"github.com/schollz/progressbar/v3"
)

type bench struct {
	configPath  string
	samples     int
	maxDistance float64
	tolerance   float64
	seed        int64
	dump        string
	objects     int
	frames      int
	render      bool
	software    bool
}

func newCamera(cfg config.Config) camera.Camera {
	return camera.NewCamera(cfg.CameraOptions()...)
}

func (b *bench) loadConfig() (config.Config, error) {
	if b.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(b.configPath)
}

func (b *bench) sweep(rng *rand.Rand) []sweepResult {
	mags := magnitudes(b.maxDistance)
	pb := progressbar.Default(int64(len(mags)*b.samples), "precision sweep")
	defer pb.Close()

	results := make([]sweepResult, 0, len(mags))
	for _, m := range mags {
		results = append(results, measure(rng, m, b.samples, func() { pb.Add(1) }))
	}
	return results
}

func report(results []sweepResult, tolerance float64) int {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "camera\tsamples\treduced\tfloat32 world\tresult")
	failed := 0
	for _, r := range results {
		status := "ok"
		if !r.Passed(tolerance) {
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(w, "%s\t%d\t%.3g\t%.3g\t%s\n", common.FormatAstronomicalDistance(r.Magnitude), r.Samples, r.Reduced, r.Naive, status)
	}
	w.Flush()
	return failed
}

func (b *bench) dumpShaders() error {
	if err := os.MkdirAll(b.dump, 0o755); err != nil {
		return err
	}
	set, err := pipeline.NewSet()
	if err != nil {
		return err
	}
	for _, kind := range material.AllStages() {
		path := filepath.Join(b.dump, kind.String()+".wgsl")
		if err := os.WriteFile(path, []byte(set[kind].Shader().Source()), 0o644); err != nil {
			return err
		}
	}
	log.Printf("[Bench] wrote %d stage modules to %s", len(material.AllStages()), b.dump)
	return nil
}

func (b *bench) sampleFrames(cfg config.Config, rng *rand.Rand) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var r renderer.Renderer
	if b.render {
		var err error
		r, err = renderer.NewRenderer(
			renderer.WithTargetSize(cfg.Frame.ScreenWidth, cfg.Frame.ScreenHeight),
			renderer.WithForceSoftwareRenderer(b.software),
		)
		if err != nil {
			return err
		}
		defer r.Release()
	}

	rep, err := runFrames(ctx, cfg, rng, b.objects, b.frames, r)
	if err != nil {
		return err
	}
	f := rep.First
	log.Printf("[Bench] packed %d of %d objects (%d culled) in %s: %d B transforms, %d B materials, %d/%d draws shade finite",
		f.Drawn, f.Submitted, f.Culled, f.Duration, f.TransformBytes, f.MaterialBytes, rep.Finite, rep.Draws)
	if r != nil {
		log.Printf("[Bench] rendered %d frames, %d draws in the last", rep.Frames, r.LastDrawCount())
	}
	return nil
}

func (b *bench) run() error {
	flag.StringVar(&b.configPath, "config", "", "YAML config file (defaults when empty)")
	flag.IntVar(&b.samples, "samples", 200, "random poses per camera magnitude")
	flag.Float64Var(&b.maxDistance, "max-distance", 1e13, "largest camera distance from the origin in meters")
	flag.Float64Var(&b.tolerance, "tolerance", 1e-4, "largest accepted relative clip-space error")
	flag.Int64Var(&b.seed, "seed", 1, "random seed")
	flag.StringVar(&b.dump, "dump", "", "directory to write the composed stage WGSL into")
	flag.IntVar(&b.objects, "objects", 1000, "bodies in the sample scene (0 skips it)")
	flag.IntVar(&b.frames, "frames", 1, "frames to pack of the sample scene")
	flag.BoolVar(&b.render, "render", false, "draw the sample frames with the offscreen GPU renderer")
	flag.BoolVar(&b.software, "software", false, "force the software fallback adapter when rendering")
	flag.Parse()

	if b.samples < 1 || b.maxDistance < 0 || b.tolerance <= 0 || b.objects < 0 || b.frames < 1 {
		return fmt.Errorf("invalid flags: samples %d, max-distance %g, tolerance %g, objects %d, frames %d",
			b.samples, b.maxDistance, b.tolerance, b.objects, b.frames)
	}

	cfg, err := b.loadConfig()
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(b.seed))

	state := newCamera(cfg).State()
	fc := depth.FarCoefficient(float32(state.LogDepthConstant), float32(state.Far))
	log.Printf("[Bench] camera at %s, near %s, far %s, Fcoef %.6g",
		common.FormatAstronomicalDistance(state.Position.Len()),
		common.FormatAstronomicalDistance(state.Near),
		common.FormatAstronomicalDistance(state.Far), fc)

	results := b.sweep(rng)
	failed := report(results, b.tolerance)

	if b.dump != "" {
		if err := b.dumpShaders(); err != nil {
			return fmt.Errorf("dump: %w", err)
		}
	}

	if b.objects > 0 {
		if err := b.sampleFrames(cfg, rng); err != nil {
			return fmt.Errorf("sample frames: %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d magnitudes exceeded tolerance %g", failed, len(results), b.tolerance)
	}
	return nil
}

func main() {
	b := bench{}

	if err := b.run(); err != nil {
		fmt.Fprintf(os.Stderr, "starfield-bench: %v\n", err)
		os.Exit(1)
	}
}
