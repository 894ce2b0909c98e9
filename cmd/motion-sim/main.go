// motion-sim loads a timeline document, stages it against a demo world of
// sprites, and runs the scheduler for a fixed number of ticks. With --watch
// it re-stages the document on every edit.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goliatone/go-logger/glog"
	"github.com/jakecoffman/cp"

	"github.com/goliatone/go-motion"
	"github.com/goliatone/go-motion/timeline"
)

var cli struct {
	Timeline string  `arg:"" help:"Timeline YAML document to stage." type:"existingfile"`
	Ticks    int     `help:"Number of ticks to run." default:"600"`
	DT       float64 `help:"Seconds per tick." default:"0.016666"`
	Watch    bool    `help:"Re-stage the document when it changes on disk."`
	Level    string  `help:"Log level." default:"info"`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("motion-sim"),
		kong.Description("Run a go-motion timeline against a demo sprite world."),
	)
	kctx.FatalIfErrorf(run())
}

func run() error {
	logger := glog.NewLogger(
		glog.WithWriter(os.Stderr),
		glog.WithLevel(cli.Level),
	)

	world := motion.New(
		motion.WithLogger(logger),
		motion.WithObserver(&logObserver{logger: logger}),
	)

	targets := demoTargets()
	bctx := timeline.BuildContext{Targets: targets}

	stage := func() error {
		data, err := os.ReadFile(cli.Timeline)
		if err != nil {
			return err
		}
		set, err := timeline.Parse(data)
		if err != nil {
			return err
		}
		scenes, err := timeline.Stage(world, set, bctx)
		if err != nil {
			return err
		}
		logger.Info("staged %d scene(s) from %s", len(scenes), cli.Timeline)
		return nil
	}
	if err := stage(); err != nil {
		return err
	}

	var watcher *timeline.Watcher
	if cli.Watch {
		w, err := timeline.NewWatcher(filepath.Dir(cli.Timeline))
		if err != nil {
			return err
		}
		watcher = w
		defer watcher.Close()
	}

	dt := cli.DT
	for tick := 0; tick < cli.Ticks; tick++ {
		if watcher != nil {
			select {
			case changed := <-watcher.Events:
				if changed == cli.Timeline {
					if err := stage(); err != nil {
						logger.Warn("re-stage failed: %v", err)
					}
				}
			default:
			}
		}

		world.Update(dt)
		if cli.Watch {
			time.Sleep(time.Duration(dt * float64(time.Second)))
		}
	}

	logger.Info("finished at frame %d", world.Frame())
	reportPositions(logger)
	return nil
}

var sprites = map[string]*motion.Sprite{}

func demoEntities() map[string]*motion.Sprite {
	if len(sprites) == 0 {
		sprites["ship"] = motion.NewSprite("ship", cp.Vector{X: 16, Y: 16})
		sprites["probe"] = motion.NewSprite("probe", cp.Vector{X: 8, Y: 8})
		swarm := make([]*motion.Sprite, 3)
		for i := range swarm {
			s := motion.NewSprite(fmt.Sprintf("drone-%d", i), cp.Vector{X: 4, Y: 4})
			s.SetPosition(cp.Vector{X: float64(20 * i), Y: 0})
			sprites[s.Name] = s
			swarm[i] = s
		}
	}
	return sprites
}

func demoTargets() map[string]motion.Target {
	ents := demoEntities()
	targets := map[string]motion.Target{
		"ship":  motion.Single(ents["ship"]),
		"probe": motion.Single(ents["probe"]),
	}
	drones := []motion.Entity{}
	for i := 0; ; i++ {
		s, ok := ents[fmt.Sprintf("drone-%d", i)]
		if !ok {
			break
		}
		drones = append(drones, s)
	}
	targets["swarm"] = motion.Group(drones...)
	return targets
}

func reportPositions(logger glog.Logger) {
	for name, s := range sprites {
		pos := s.Position()
		logger.Info("%-8s pos=(%.1f, %.1f) alpha=%.2f", name, pos.X, pos.Y, s.Alpha())
	}
}

type logObserver struct {
	logger glog.Logger
}

func (o *logObserver) ActionStarted(a *motion.Action) {
	o.logger.Debug("action started tag=%q attrs=%s", a.Tag(), a.Attrs())
}

func (o *logObserver) ActionStopped(a *motion.Action) {
	o.logger.Debug("action stopped tag=%q", a.Tag())
}

func (o *logObserver) ConditionMet(a *motion.Action, data any) {
	o.logger.Debug("action finished tag=%q data=%v", a.Tag(), data)
}
