// Package main walks a simulated quadruped body with the locomotion controller at the
// configured rate, taking twist commands from a watched file.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.viam.com/utils"
	"golang.org/x/sync/errgroup"

	"go.viam.com/quadruped/config"
	"go.viam.com/quadruped/control"
	"go.viam.com/quadruped/leg"
	"go.viam.com/quadruped/quadruped"
	"go.viam.com/quadruped/viz"
)

var logger = golog.NewDevelopmentLogger("walk")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string `flag:"0,required,usage=quadruped config file"`
	TwistFile  string `flag:"twist,usage=JSON file with the commanded twist; reloaded when it changes"`
	Cycles     int    `flag:"cycles,usage=stop after this many control cycles (0 runs until interrupted)"`
	PlotDir    string `flag:"plot-dir,usage=write foot height and swing path plots to this directory on exit"`
	Histogram  bool   `flag:"histogram,usage=print a cycle time histogram on exit"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	if argsParsed.Cycles < 0 {
		return errors.New("cycles must not be negative")
	}

	cfg, err := config.Read(argsParsed.ConfigFile, logger)
	if err != nil {
		return err
	}
	session := uuid.New().String()
	logger = logger.With("session", session)
	logger.Infof("loaded %s\n%s", cfg.ConfigFilePath, cfg)

	return walk(ctx, cfg, argsParsed, session, clock.New(), logger)
}

func walk(ctx context.Context, cfg *config.Config, args Arguments, session string, clk clock.Clock, logger golog.Logger) (err error) {
	ctrlCfg, err := cfg.ControllerConfig()
	if err != nil {
		return err
	}
	ctrl, err := quadruped.NewController(ctrlCfg, clk, logger, quadruped.WithSwingPreview(cfg.Control.PreviewSteps))
	if err != nil {
		return err
	}

	initial := cfg.Inputs()
	var slot quadruped.TwistSlot
	slot.Store(initial.Twist)
	body := newBody(initial.Pose)
	trace := viz.NewTrace(int(cfg.Control.FrequencyHz * 10))
	var paths [leg.Count][]r3.Vector

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	count := atomic.NewInt64(0)
	var last time.Time
	cycle := func(ctx context.Context, tick time.Time) error {
		twist := slot.LoadOr(initial.Twist)
		if !last.IsZero() {
			if err := body.advance(twist, tick.Sub(last)); err != nil {
				return err
			}
		}
		last = tick

		in := quadruped.Inputs{Pose: body.pose, Velocity: body.velocity, Twist: twist}
		cmd, err := ctrl.Cycle(in)
		trace.Record(cmd)
		for _, id := range leg.All {
			if cmd.Paths[id] != nil {
				paths[id] = cmd.Paths[id]
			}
		}
		if n := count.Inc(); args.Cycles > 0 && n >= int64(args.Cycles) {
			cancel()
		}
		return err
	}

	loop, err := control.NewLoop(logger, clk, cfg.Control.FrequencyHz, cycle)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(runCtx)
	if args.TwistFile != "" {
		watcher, err := newTwistWatcher(args.TwistFile, &slot, logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return watcher.run(gctx)
		})
	}

	ctrl.Start()
	if err := loop.Start(); err != nil {
		return err
	}
	g.Go(func() error {
		<-gctx.Done()
		loop.Stop()
		return nil
	})

	err = g.Wait()
	stats := loop.Stats()
	logger.Infow("stopped", "stats", stats.String())

	if args.Histogram && stats.Cycles > 0 {
		err = multierr.Combine(err, loop.WriteHistogram(os.Stdout, 10))
	}
	if args.PlotDir != "" {
		err = multierr.Combine(err, savePlots(args.PlotDir, session, trace, paths))
	}
	return err
}

func savePlots(dir, session string, trace *viz.Trace, paths [leg.Count][]r3.Vector) error {
	heights, err := viz.FootHeightPlot(trace)
	if err != nil {
		return err
	}
	if err := viz.SavePNG(heights, 8, 4, filepath.Join(dir, fmt.Sprintf("heights_%s.png", session))); err != nil {
		return err
	}
	swings, err := viz.SwingPathPlot(paths)
	if err != nil {
		return err
	}
	return viz.SavePNG(swings, 6, 4, filepath.Join(dir, fmt.Sprintf("swings_%s.png", session)))
}
