// Command metaball meshes a metaball scene with marching cubes and
// writes the result as a binary STL file, optionally with a PNG
// preview render.
package main

import (
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/soypat/metaball/internal/logger"
	"github.com/soypat/metaball/render"
	"go.uber.org/zap"
)

func main() {
	var (
		scenePath   = flag.String("config", "", "YAML scene file (optional)")
		output      = flag.String("o", "metaballs.stl", "output STL path")
		preview     = flag.String("png", "", "render a PNG preview to this path")
		steps       = flag.Int("steps", 0, "override grid resolution")
		concurrency = flag.Int("concurrency", 0, "override sweep goroutine count")
		seed        = flag.Int64("seed", 0, "override random ball seed")
		logLevel    = flag.String("log-level", "", "override log level (debug|info|warn|error)")
	)
	flag.Parse()

	scene, err := LoadScene(*scenePath)
	if err != nil {
		logger.Init("info", "")
		fatal("scene load failed", err)
	}
	// Flags take priority over the scene file.
	if *steps != 0 {
		scene.Steps = *steps
	}
	if *concurrency != 0 {
		scene.Concurrency = *concurrency
	}
	if *seed != 0 {
		scene.Seed = *seed
	}
	if *logLevel != "" {
		scene.Logging.Level = *logLevel
	}
	logger.Init(scene.Logging.Level, scene.Logging.File)
	defer logger.Sync()
	log := logger.Log

	field, err := scene.Field(rand.New(rand.NewSource(scene.Seed)))
	if err != nil {
		fatal("bad scene", err)
	}
	log.Info("rebuilding",
		zap.Int("steps", scene.Steps),
		zap.Float64("bounds", scene.Bounds),
		zap.Int("balls", len(field)),
		zap.Int("concurrency", scene.Concurrency),
	)
	start := time.Now()
	mesh, err := render.Rebuild(field, scene.Grid())
	if err != nil {
		fatal("rebuild failed", err)
	}
	log.Info("rebuild done",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("triangles", mesh.Triangles()),
		zap.Int("vertices", len(mesh.Vertices)),
	)
	if mesh.Triangles() == 0 {
		log.Warn("empty mesh: surface does not intersect the sampling domain")
		logger.Sync()
		os.Exit(1)
	}

	model := make([]render.Triangle3, mesh.Triangles())
	for i := range model {
		model[i] = mesh.Triangle3(i)
	}
	fp, err := os.Create(*output)
	if err != nil {
		fatal("create STL", err)
	}
	err = render.WriteSTL(fp, model)
	fp.Close()
	if err != nil {
		fatal("write STL", err)
	}
	log.Info("wrote STL", zap.String("path", *output))

	if *preview != "" {
		if err := stlToPNG(*output, *preview); err != nil {
			fatal("preview render failed", err)
		}
		log.Info("wrote preview", zap.String("path", *preview))
	}
}

// fatal logs the error, flushes the log and exits. zap's Fatal would
// exit before the deferred Sync runs.
func fatal(msg string, err error) {
	logger.Log.Error(msg, zap.Error(err))
	logger.Sync()
	os.Exit(1)
}
