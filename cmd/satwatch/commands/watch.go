package commands

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/RMahshie/satscan/internal/watch"
)

// NewWatchCommand creates the watch subcommand
func NewWatchCommand(opts *Options) *cobra.Command {
	var direct bool

	cmd := &cobra.Command{
		Use:   "watch <scanId>",
		Short: "Wait for a scan's spectrum to appear",
		Long: `Watch polls the Satscan API until the spectrum of the scan has data.

Unless --direct is given the input directory is checked first. When it is
empty the watch waits before it starts searching, giving the acquisition
process time to pick the scan up.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scanID, err := scanIDArg(args[0])
			if err != nil {
				return err
			}

			mode := watch.ModeTwoPhase
			if direct {
				mode = watch.ModeDirect
			}

			return runWatch(cmd.Context(), cmd.OutOrStdout(), opts.client(), watch.Options{
				Tick:         opts.Watch.Tick,
				InputWait:    opts.Watch.InputWait,
				PollInterval: opts.Watch.PollInterval,
			}, scanID, mode)
		},
	}

	cmd.Flags().DurationVar(&opts.Watch.PollInterval, "poll", opts.Watch.PollInterval, "interval between output polls")
	cmd.Flags().DurationVar(&opts.Watch.InputWait, "input-wait", opts.Watch.InputWait, "wait before searching when the input directory is empty")
	cmd.Flags().BoolVar(&direct, "direct", false, "skip the input check and search immediately")

	return cmd
}

// runWatch blocks until the scan's spectrum is found, the session fails or
// ctx is cancelled.
func runWatch(ctx context.Context, out io.Writer, src watch.Source, opts watch.Options, scanID int64, mode watch.Mode) error {
	printer := &eventPrinter{w: out}
	done := make(chan watch.Event, 1)

	w := watch.NewWatcher(src, watch.ObserverFunc(func(ev watch.Event) {
		printer.print(ev)

		finished := ev.Type == watch.EventFound ||
			(ev.Type == watch.EventState && ev.Session.State == watch.StateError)
		if finished {
			select {
			case done <- ev:
			default:
			}
		}
	}), opts)
	defer w.Close()

	w.Start(ctx, scanID, mode)

	select {
	case <-ctx.Done():
		w.Close()
		printer.line("Stopped")
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		return ctx.Err()
	case ev := <-done:
		if ev.Session.State == watch.StateError {
			return ev.Session.Err
		}
		renderSpectrum(out, ev.Spectrum, time.Now())
		return nil
	}
}
