package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/edaniels/golog"
	"github.com/fsnotify/fsnotify"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"go.uber.org/multierr"

	"go.viam.com/quadruped/quadruped"
	"go.viam.com/quadruped/referenceframe"
)

// twistFile is the on disk form of a commanded twist.
type twistFile struct {
	Linear  []float64 `json:"linear_velocity"`
	Angular []float64 `json:"angular_velocity"`
	Frame   string    `json:"frame"`
}

func (tf twistFile) twist() (quadruped.Twist, error) {
	linear, err := vector("linear_velocity", tf.Linear)
	if err != nil {
		return quadruped.Twist{}, err
	}
	angular, err := vector("angular_velocity", tf.Angular)
	if err != nil {
		return quadruped.Twist{}, err
	}
	return quadruped.Twist{Linear: linear, Angular: angular, Frame: referenceframe.Name(tf.Frame)}, nil
}

func vector(name string, v []float64) (r3.Vector, error) {
	switch len(v) {
	case 0:
		return r3.Vector{}, nil
	case 3:
		return r3.Vector{X: v[0], Y: v[1], Z: v[2]}, nil
	default:
		return r3.Vector{}, errors.Errorf("%s must have 3 entries, got %d", name, len(v))
	}
}

// twistWatcher reloads a twist file into a slot whenever the file is written. The
// directory is watched so editors that replace the file are picked up too.
type twistWatcher struct {
	path    string
	slot    *quadruped.TwistSlot
	watcher *fsnotify.Watcher
	logger  golog.Logger
}

func newTwistWatcher(path string, slot *quadruped.TwistSlot, logger golog.Logger) (*twistWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return nil, multierr.Combine(err, watcher.Close())
	}
	tw := &twistWatcher{path: abs, slot: slot, watcher: watcher, logger: logger}
	if _, err := os.Stat(abs); err == nil {
		tw.reload()
	}
	return tw, nil
}

func (tw *twistWatcher) run(ctx context.Context) error {
	defer func() {
		if err := tw.watcher.Close(); err != nil {
			tw.logger.Debugw("closing twist watcher", "error", err)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-tw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != tw.path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			tw.reload()
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return nil
			}
			tw.logger.Warnw("twist watcher", "error", err)
		}
	}
}

func (tw *twistWatcher) reload() {
	//nolint:gosec
	data, err := os.ReadFile(tw.path)
	if err != nil {
		tw.logger.Warnw("cannot read twist file", "path", tw.path, "error", err)
		return
	}
	if len(data) == 0 {
		// writers truncate before writing; wait for the content
		return
	}
	var tf twistFile
	if err := json5.Unmarshal(data, &tf); err != nil {
		tw.logger.Warnw("cannot parse twist file", "path", tw.path, "error", err)
		return
	}
	twist, err := tf.twist()
	if err != nil {
		tw.logger.Warnw("invalid twist file", "path", tw.path, "error", err)
		return
	}
	tw.slot.Store(twist)
	tw.logger.Debugw("twist updated", "linear", twist.Linear, "angular", twist.Angular, "frame", twist.Frame)
}
