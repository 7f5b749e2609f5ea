package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"calendar/src-server/ical"
	"calendar/src-server/model"
	"calendar/src-server/utils"
)

// ExportOptions holds flags for the event export command.
type ExportOptions struct {
	*RootOptions
	From   string
	To     string
	Name   string
	Output string
}

type exportResult struct {
	Events int    `json:"events"`
	Output string `json:"output"`
}

func (r exportResult) String() string {
	return fmt.Sprintf("exported %d event(s) to %s", r.Events, r.Output)
}

func newEventExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write events and their attendees as iCalendar",
		Long: `Write events, with their attendees, as an iCalendar (.ics) file.

Without --output the calendar goes to stdout and --format is ignored.
With --from and --to only events overlapping that interval are written.`,
		Example: `  calendar event export > calendar.ics
  calendar event export --from today --to "next friday" --output week.ics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("from") != cmd.Flags().Changed("to") {
				return NewExitError(ExitFailure, "--from and --to go together")
			}
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				var events []model.Event
				var err error
				if opts.From != "" || opts.To != "" {
					var from, to time.Time
					if from, err = parseInstant(as, "from", opts.From); err != nil {
						return err
					}
					if to, err = parseInstant(as, "to", opts.To); err != nil {
						return err
					}
					events, err = as.Events.FindByDateRange(ctx, from, to)
				} else {
					events, err = as.Events.FindAll(ctx)
				}
				if err != nil {
					return storeExit("failed to read events", err)
				}

				cal, err := ical.Export(ctx, opts.Name, events, as.Attendances)
				if err != nil {
					return storeExit("failed to read attendances", err)
				}

				if opts.Output == "" {
					if err := cal.Marshal(cmd.OutOrStdout(), time.Now()); err != nil {
						return WrapExitError(ExitCommandError, "failed to write calendar", err)
					}
					return nil
				}

				file, err := os.Create(opts.Output)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to create output file", err)
				}
				if err := cal.Marshal(file, time.Now()); err != nil {
					file.Close()
					return WrapExitError(ExitCommandError, "failed to write calendar", err)
				}
				if err := file.Close(); err != nil {
					return WrapExitError(ExitCommandError, "failed to write calendar", err)
				}
				return out.Success(exportResult{Events: cal.Len(), Output: opts.Output})
			})
		},
	}
	cmd.Flags().StringVar(&opts.From, "from", "", "interval start")
	cmd.Flags().StringVar(&opts.To, "to", "", "interval end")
	cmd.Flags().StringVar(&opts.Name, "name", "calendar", "calendar name")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newEventImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Create events from an iCalendar file",
		Long: `Create one event per VEVENT of an iCalendar file ("-" reads stdin).

SUMMARY becomes the name and DESCRIPTION the note. The whole file is read
before anything is written; events are then created one by one.`,
		Example: `  calendar event import holidays.ics
  curl -s https://example.com/team.ics | calendar event import -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to open calendar", err)
				}
				defer file.Close()
				r = file
			}
			parsed, err := ical.Parse(r)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to parse calendar", err)
			}

			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				for i := range parsed {
					if opts.Tidy {
						parsed[i].Name = utils.CleanupString(parsed[i].Name)
					}
					if err := as.Events.Create(ctx, &parsed[i]); err != nil {
						return storeExit(fmt.Sprintf("failed to import event %q after %d created", parsed[i].Name, i), err)
					}
				}
				out.VerboseLog("imported %d event(s) from %s", len(parsed), args[0])
				return out.Success(parsed)
			})
		},
	}
	cmd.Flags().BoolVar(&opts.Tidy, "tidy", false, "title-case names and strip a trailing period")
	return cmd
}
