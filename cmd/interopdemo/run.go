// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/gogpu/interop"
	"github.com/gogpu/interop/cu"
	"github.com/gogpu/interop/metrics"
	"github.com/gogpu/interop/render"
	"github.com/gogpu/interop/vk"

	// HAL Vulkan backend for --graphics hal.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

//go:embed kernels/points.ptx
var pointsPTX []byte

var (
	configPath string
	flags      = DefaultConfig()
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the compute-then-draw frame loop",
	Long: `run shares a point buffer between CUDA and a graphics domain and
runs frames until --frames have been presented or the process is
interrupted.

With --graphics vulkan the buffer is allocated by Vulkan and imported
into CUDA without copies. With --graphics hal the buffer lives on a
gogpu/wgpu HAL device, CUDA writes a mirror that is copied over every
frame, and the points are rendered offscreen.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runDemo(ctx, cfg)
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML configuration file")
	f.StringVar(&flags.Graphics, "graphics", flags.Graphics, "Graphics domain (vulkan, hal, hal-noop)")
	f.StringVar(&flags.Device.PCIBusID, "device", "", "PCI bus id of the GPU, for example 0000:01:00.0")
	f.Uint32Var(&flags.Grid.Size, "grid", flags.Grid.Size, "Points along each grid axis")
	f.Uint32Var(&flags.Grid.Group, "group", flags.Grid.Group, "Work-group edge length")
	f.Float32Var(&flags.Grid.Scale, "scale", flags.Grid.Scale, "Spatial scale of the wave")
	f.Uint64Var(&flags.Frames, "frames", flags.Frames, "Frames to present, 0 runs until interrupted")
	f.StringVar(&flags.Kernel.Path, "kernel", "", "PTX or cubin image (default: built-in kernel)")
	f.StringVar(&flags.Kernel.Entry, "entry", flags.Kernel.Entry, "Kernel entry point")
	f.Uint32Var(&flags.Surface.Width, "width", flags.Surface.Width, "Surface width")
	f.Uint32Var(&flags.Surface.Height, "height", flags.Surface.Height, "Surface height")
	f.StringVar(&flags.Snapshot, "snapshot", "", "Write the last frame as PNG (hal graphics only)")
	f.StringVar(&flags.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	rootCmd.AddCommand(runCmd)
}

// resolveConfig loads --config and applies the flags set on the command
// line over it.
func resolveConfig(cmd *cobra.Command) (Config, error) {
	if configPath == "" {
		return flags, nil
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	set := cmd.Flags().Changed
	if set("graphics") {
		cfg.Graphics = flags.Graphics
	}
	if set("device") {
		cfg.Device.PCIBusID = flags.Device.PCIBusID
	}
	if set("grid") {
		cfg.Grid.Size = flags.Grid.Size
	}
	if set("group") {
		cfg.Grid.Group = flags.Grid.Group
	}
	if set("scale") {
		cfg.Grid.Scale = flags.Grid.Scale
	}
	if set("frames") {
		cfg.Frames = flags.Frames
	}
	if set("kernel") {
		cfg.Kernel.Path = flags.Kernel.Path
	}
	if set("entry") {
		cfg.Kernel.Entry = flags.Kernel.Entry
	}
	if set("width") {
		cfg.Surface.Width = flags.Surface.Width
	}
	if set("height") {
		cfg.Surface.Height = flags.Surface.Height
	}
	if set("snapshot") {
		cfg.Snapshot = flags.Snapshot
	}
	if set("metrics-addr") {
		cfg.MetricsAddr = flags.MetricsAddr
	}
	return cfg, nil
}

func kernelImage(cfg Config) ([]byte, error) {
	if cfg.Kernel.Path == "" {
		return pointsPTX, nil
	}
	return os.ReadFile(cfg.Kernel.Path)
}

// graphics is the graphics side of a run.
type graphics struct {
	domain  interop.GraphicsDomain
	surface interop.Surface
	draw    interop.GraphicsPipeline
	image   func() *image.RGBA
	closers []func() error
}

func (g *graphics) close() {
	for i := len(g.closers) - 1; i >= 0; i-- {
		if err := g.closers[i](); err != nil {
			slog.Warn("graphics shutdown", "err", err)
		}
	}
}

func openGraphics(cfg Config) (*graphics, error) {
	g := &graphics{}
	if err := g.open(cfg); err != nil {
		g.close()
		return nil, err
	}
	return g, nil
}

func (g *graphics) open(cfg Config) error {
	sel := interop.DeviceID{PCIBusID: cfg.Device.PCIBusID}
	w, h := cfg.Surface.Width, cfg.Surface.Height

	if cfg.Graphics == graphicsVulkan {
		loader, err := vk.Load()
		if err != nil {
			return err
		}
		g.closers = append(g.closers, loader.Close)
		inst, err := vk.NewInstance(loader, vk.WithApplicationName("interopdemo"))
		if err != nil {
			return err
		}
		g.closers = append(g.closers, inst.Close)
		dev, err := vk.NewDevice(inst, sel)
		if err != nil {
			return err
		}
		g.closers = append(g.closers, dev.Close)
		g.domain = dev
		g.surface = newHeadlessSurface(w, h, cfg.Frames)
		g.draw = headlessPipeline{label: "points"}
		return nil
	}

	var dev *render.Device
	var err error
	if cfg.Graphics == graphicsHALNoop {
		dev, err = render.OpenNoop()
	} else {
		dev, err = render.Open(gputypes.BackendVulkan)
	}
	if err != nil {
		return err
	}
	g.closers = append(g.closers, dev.Close)
	surf, err := render.NewSurface(dev, w, h,
		render.WithFrameLimit(cfg.Frames),
		render.WithReadback(cfg.Snapshot != ""),
		render.WithClearColor(gputypes.Color{R: 0.05, G: 0.05, B: 0.08, A: 1}))
	if err != nil {
		return err
	}
	g.closers = append(g.closers, func() error { surf.Close(); return nil })
	factory := render.NewPipelineFactory(dev)
	g.closers = append(g.closers, func() error { factory.Close(); return nil })
	draw, err := factory.CreatePipeline(render.PointsPipeline(surf))
	if err != nil {
		return err
	}
	g.domain = dev
	g.surface = surf
	g.draw = draw
	g.image = surf.Image
	return nil
}

func runDemo(ctx context.Context, cfg Config) error {
	ptx, err := kernelImage(cfg)
	if err != nil {
		return fmt.Errorf("read kernel: %w", err)
	}

	gfx, err := openGraphics(cfg)
	if err != nil {
		return fmt.Errorf("open %s graphics: %w", cfg.Graphics, err)
	}
	defer gfx.close()

	api, provider, err := cu.Load()
	if err != nil {
		return fmt.Errorf("load cuda driver: %w", err)
	}
	defer provider.Close()

	// Bind CUDA to the GPU the graphics domain runs on.
	sel := gfx.domain.Device()
	if cfg.Device.PCIBusID != "" {
		sel = interop.DeviceID{PCIBusID: cfg.Device.PCIBusID}
	}
	compute, err := cu.NewContext(api, sel)
	if err != nil {
		return err
	}
	defer func() {
		if err := compute.Close(); err != nil {
			slog.Error("close cuda context", "err", err)
		}
	}()

	kernel, err := compute.LoadKernel(ptx, cfg.Kernel.Entry)
	if err != nil {
		return err
	}

	size := uint64(cfg.Grid.Size) * uint64(cfg.Grid.Size) * interop.PointStride
	res, err := interop.NewSharedResource(gfx.domain, size,
		interop.UsageStorage|interop.UsageVertex|interop.UsageInterop)
	if err != nil {
		return err
	}
	defer res.Close()
	if err := res.Share(compute); err != nil {
		return fmt.Errorf("share point buffer: %w", err)
	}

	opts := []interop.PipelineOption{interop.WithOverlay(newStatsOverlay(slog.Default(), 120))}
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		opts = append(opts, interop.WithObserver(metrics.New(reg, "interop")))
		stopMetrics, err := serveMetrics(cfg.MetricsAddr, reg)
		if err != nil {
			return err
		}
		defer stopMetrics()
	}

	pipe, err := interop.NewPipeline(interop.PipelineConfig{
		Compute:   compute,
		Graphics:  gfx.domain,
		Resource:  res,
		Kernel:    kernel,
		Surface:   gfx.surface,
		Draw:      gfx.draw,
		GridSize:  cfg.Grid.Size,
		GroupSize: cfg.Grid.Group,
	}, opts...)
	if err != nil {
		return err
	}
	defer pipe.Close()

	slog.Info("running",
		"graphics", cfg.Graphics,
		"mode", res.Mode(),
		"grid", cfg.Grid.Size,
		"groups", pipe.WorkGroups(),
		"frames", cfg.Frames)

	start := time.Now()
	err = pipe.Run(ctx, func(uint64) interop.Params {
		return interop.Params{
			Size:  cfg.Grid.Size,
			Scale: cfg.Grid.Scale,
			Time:  float32(time.Since(start).Seconds()),
		}
	})
	elapsed := time.Since(start)
	slog.Info("stopped", "frames", pipe.Frames(), "elapsed", elapsed.Round(time.Millisecond))
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		return err
	}
	if cfg.Snapshot != "" && gfx.image != nil {
		return writeSnapshot(cfg.Snapshot, gfx.image())
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server", "err", err)
		}
	}()
	slog.Info("serving metrics", "addr", ln.Addr().String())
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func writeSnapshot(path string, img *image.RGBA) error {
	if img == nil {
		return fmt.Errorf("snapshot: no frame was read back")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("snapshot: %w", err)
	}
	slog.Info("snapshot written", "path", path)
	return f.Close()
}
