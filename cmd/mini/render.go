package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/mini"
	"github.com/vango-dev/mini/internal/config"
	"github.com/vango-dev/mini/internal/demo"
	"github.com/vango-dev/mini/internal/errors"
	"github.com/vango-dev/mini/pkg/fiber"
	"github.com/vango-dev/mini/pkg/host"
	"github.com/vango-dev/mini/pkg/idle"
	"github.com/vango-dev/mini/pkg/snapshot"
)

// maxIdlePeriods bounds a render so a budget too small to make progress
// cannot spin forever.
const maxIdlePeriods = 100000

type renderOptions struct {
	clicks   int
	budget   time.Duration
	units    int
	snapshot bool
	unmount  bool
	fibers   bool
}

func renderCmd(flags *globalFlags) *cobra.Command {
	opts := renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the demo counter into an in-memory host",
		Long: `Render the demo counter into an in-memory host using the manual
idle scheduler, optionally clicking its button, and print the committed
host tree together with the effect log.

Each idle period gets --budget of wall time, or --units units of work.
With neither, every pass runs to completion in one period.

Examples:
  mini render
  mini render --clicks 2
  mini render --units 3 --fibers
  mini render --clicks 1 --snapshot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(flags.configDir)
			if err != nil {
				return err
			}
			return runRender(cmd, cfg, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.clicks, "clicks", "n", 0, "Number of times to click the counter button")
	cmd.Flags().DurationVarP(&opts.budget, "budget", "b", 0, "Wall-clock budget of each idle period (0 = unlimited)")
	cmd.Flags().IntVarP(&opts.units, "units", "u", 0, "Units of work per idle period (overrides --budget)")
	cmd.Flags().BoolVar(&opts.snapshot, "snapshot", false, "Save a snapshot of the final tree to the configured store")
	cmd.Flags().BoolVar(&opts.unmount, "unmount", false, "Unmount the tree at the end and show the cleanups")
	cmd.Flags().BoolVar(&opts.fibers, "fibers", false, "Also print the committed fiber tree")

	return cmd
}

// renderRun is the state of one `mini render` invocation.
type renderRun struct {
	out     io.Writer
	opts    renderOptions
	app     *demo.Demo
	mem     *host.MemoryHost
	rec     *host.Recorder
	sched   *idle.Manual
	root    *mini.Root
	commits []fiber.CommitStats
}

func runRender(cmd *cobra.Command, cfg *config.Config, opts renderOptions) error {
	if opts.clicks < 0 || opts.units < 0 || opts.budget < 0 {
		return errors.Newf(errors.CategoryCLI, "--clicks, --units and --budget must not be negative")
	}

	logger := slog.Default()
	r := &renderRun{
		out:   cmd.OutOrStdout(),
		opts:  opts,
		app:   demo.New(logger),
		mem:   host.NewMemoryHost(),
		sched: idle.NewManual(),
	}
	r.rec = host.NewRecorder(r.mem)
	container := r.mem.NewContainer()

	engineOpts := append(cfg.EngineOptions(),
		mini.WithLogger(logger),
		mini.WithObserver(fiber.ObserverFuncs{
			OnCommitted: func(s fiber.CommitStats) { r.commits = append(r.commits, s) },
		}),
	)
	r.root = mini.CreateRoot(r.rec, container, r.sched, engineOpts...)

	fmt.Fprintln(r.out, titleStyle.Render("mount"))
	if err := r.root.Render(r.app.App()); err != nil {
		return err
	}
	if err := r.step(); err != nil {
		return err
	}

	for i := 1; i <= opts.clicks; i++ {
		btn := container.FindByType("button")
		if btn == nil {
			return errors.Newf(errors.CategoryCLI, "no button to click")
		}
		fmt.Fprintln(r.out, titleStyle.Render(fmt.Sprintf("click %d", i)))
		btn.Dispatch("click", nil)
		if err := r.step(); err != nil {
			return err
		}
	}

	snap := snapshot.Take("demo", container, r.root.Engine())
	fmt.Fprintln(r.out, titleStyle.Render("host tree"))
	fmt.Fprintln(r.out, hostTree(snap.Tree))
	if opts.fibers && snap.Fibers != nil {
		fmt.Fprintln(r.out, titleStyle.Render("fiber tree"))
		fmt.Fprintln(r.out, fiberTree(snap.Fibers))
	}

	if opts.snapshot {
		store, err := cfg.SnapshotStore()
		if err != nil {
			return err
		}
		id, err := store.Put(cmd.Context(), snap)
		if err != nil {
			return err
		}
		success(r.out, "snapshot %s saved", id)
	}

	if opts.unmount {
		fmt.Fprintln(r.out, titleStyle.Render("unmount"))
		if err := r.root.Unmount(); err != nil {
			return err
		}
		if err := r.step(); err != nil {
			return err
		}
	}
	return nil
}

// step runs idle periods until the engine is idle, then prints what the
// periods committed and logged.
func (r *renderRun) step() error {
	r.commits = r.commits[:0]
	r.app.ResetLog()
	r.rec.Reset()

	eng := r.root.Engine()
	periods := 0
	for eng.Busy() {
		if periods == maxIdlePeriods {
			return errors.Newf(errors.CategoryCLI, "still busy after %d idle periods; raise --budget or --units", periods)
		}
		if r.sched.Step(r.deadline()) == 0 {
			break
		}
		periods++
	}

	info(r.out, "idle periods: %d, host mutations: %d", periods, len(r.rec.Mutations()))
	for _, c := range r.commits {
		info(r.out, "commit %s", commitLine(c))
	}
	for _, line := range r.app.Log() {
		info(r.out, "effect %s", line)
	}
	return nil
}

func (r *renderRun) deadline() idle.Deadline {
	switch {
	case r.opts.units > 0:
		return idle.Countdown(r.opts.units)
	case r.opts.budget > 0:
		return idle.After(r.opts.budget)
	}
	return idle.Unlimited()
}
