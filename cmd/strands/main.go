// Command strands runs a headless hair simulation demo: it generates a
// procedural strand grid, steps the simulation for a fixed number of frames,
// and logs per-interval performance stats. Useful for smoke-testing a machine's
// GPU stack; pass -backend cpu to run without a GPU.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/Carmen-Shannon/strands-go/engine/hair"
	"github.com/Carmen-Shannon/strands-go/engine/logger"
	"github.com/Carmen-Shannon/strands-go/engine/profiler"
	"go.uber.org/zap"
)

func main() {
	backendFlag := flag.String("backend", "gpu", "simulation backend: gpu or cpu")
	configPath := flag.String("config", "", "optional YAML config path")
	frames := flag.Int("frames", 600, "number of frames to simulate")
	strandsX := flag.Int("strands-x", 8, "strand grid width")
	strandsZ := flag.Int("strands-z", 8, "strand grid depth")
	vertices := flag.Int("vertices", 16, "vertices per strand")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	debugReadback := flag.Bool("debug-readback", false, "read diagnostic vectors back each frame (blocking GPU sync)")
	flag.Parse()

	if err := logger.Init(*logLevel, ""); err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := hair.DefaultConfig()
	if *configPath != "" {
		loaded, err := hair.LoadConfig(*configPath)
		if err != nil {
			logger.Fatal("loading config", zap.String("path", *configPath), zap.Error(err))
		}
		cfg = loaded
	}

	backendType := hair.BackendTypeGPU
	if *backendFlag == "cpu" {
		backendType = hair.BackendTypeCPU
	}

	geom, restLengths, refVectors, offsets := hair.BuildStrandGrid(*strandsX, *strandsZ, *vertices, 0.1, 0.05)

	sim := hair.NewSimulator(backendType,
		hair.WithConfig(cfg),
		hair.WithDebugReadback(*debugReadback),
		hair.WithCollider(hair.Capsule{
			PointA: [3]float32{0.35, -0.4, 0.35},
			PointB: [3]float32{0.35, -0.6, 0.35},
			Radius: 0.15,
		}),
	)
	defer sim.Release()

	if err := sim.Initialize(geom, restLengths, refVectors, offsets); err != nil {
		logger.Fatal("initializing simulator", zap.Error(err))
	}

	prof := profiler.NewProfiler()
	ctx := hair.FrameContext{DeltaTime: 1.0 / 60.0}
	for frame := range *frames {
		if err := sim.StepFrame(ctx); err != nil {
			logger.Fatal("stepping frame", zap.Int("frame", frame), zap.Error(err))
		}
		prof.RecordComputeTime(time.Duration(sim.ComputationTime() * float64(time.Millisecond)))
		prof.Tick()
	}

	tip := geom.Current[len(geom.Current)-1]
	logger.Info("simulation complete",
		zap.Int("frames", *frames),
		zap.Int("strands", (*strandsX)*(*strandsZ)),
		zap.Int("vertices_per_strand", *vertices),
		zap.Float64("last_frame_ms", sim.ComputationTime()),
		zap.Float32s("last_tip_position", []float32{tip[0], tip[1], tip[2]}),
	)
}
