package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"calendar/src-server/model"
	"calendar/src-server/utils"
)

// EventOptions holds flags shared by the event subcommands.
type EventOptions struct {
	*RootOptions
	ID      int64
	Name    string
	Start   string
	End     string
	Note    string
	Tidy    bool
	Version int64
}

// NewEventCommand creates the event command and its subcommands.
func NewEventCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Create, read, update and delete events",
		Long: `Create, read, update and delete events.

Dates accept RFC 3339 ("2024-06-01T09:00:00Z"), "2006-01-02 15:04" in
$TIMEZONE, or plain English ("tomorrow at 9am").`,
	}
	cmd.AddCommand(newEventCreateCommand(rootOpts))
	cmd.AddCommand(newEventGetCommand(rootOpts))
	cmd.AddCommand(newEventListCommand(rootOpts))
	cmd.AddCommand(newEventRangeCommand(rootOpts))
	cmd.AddCommand(newEventUpdateCommand(rootOpts))
	cmd.AddCommand(newEventDeleteCommand(rootOpts))
	cmd.AddCommand(newEventExportCommand(rootOpts))
	cmd.AddCommand(newEventImportCommand(rootOpts))
	return cmd
}

func parseInstant(as *utils.AppState, flag, value string) (time.Time, error) {
	t, err := as.Instant.Parse(value)
	if err != nil {
		return time.Time{}, WrapExitError(ExitFailure, "invalid --"+flag, err)
	}
	return t, nil
}

func eventName(opts *EventOptions) string {
	if opts.Tidy {
		return utils.CleanupString(opts.Name)
	}
	return opts.Name
}

func newEventCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		Example: `  calendar event create --name Standup --start "2024-06-03 09:00" --end "2024-06-03 09:15"
  calendar event create --name "team lunch." --tidy --start "tomorrow 12pm" --end "tomorrow 1pm"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				start, err := parseInstant(as, "start", opts.Start)
				if err != nil {
					return err
				}
				end, err := parseInstant(as, "end", opts.End)
				if err != nil {
					return err
				}
				event := &model.Event{
					Name:      eventName(opts),
					StartDate: start,
					EndDate:   end,
					Note:      opts.Note,
				}
				if err := as.Events.Create(ctx, event); err != nil {
					return storeExit("failed to create event", err)
				}
				return out.Success(event)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Name, "name", "", "event name (required)")
	cmd.Flags().StringVar(&opts.Start, "start", "", "start date (required)")
	cmd.Flags().StringVar(&opts.End, "end", "", "end date, after start (required)")
	cmd.Flags().StringVar(&opts.Note, "note", "", "free-form note")
	cmd.Flags().BoolVar(&opts.Tidy, "tidy", false, "title-case the name and strip a trailing period")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newEventGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show one event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				event, err := as.Events.GetByID(ctx, opts.ID)
				if err != nil {
					return storeExit("failed to get event", err)
				}
				return out.Success(event)
			})
		},
	}
	cmd.Flags().Int64Var(&opts.ID, "id", 0, "event id (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newEventListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventOptions{RootOptions: rootOpts}
	return &cobra.Command{
		Use:   "list",
		Short: "List every event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				events, err := as.Events.FindAll(ctx)
				if err != nil {
					return storeExit("failed to list events", err)
				}
				return out.Success(events)
			})
		},
	}
}

func newEventRangeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "range",
		Short: "List events overlapping an interval",
		Long: `List every event whose [start, end] shares at least one instant with
[--from, --to]. Both ends are inclusive: an event ending exactly at --from
is listed.`,
		Example: `  calendar event range --from "2024-06-03 00:00" --to "2024-06-03 23:59"
  calendar event range --from today --to "next friday"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				from, err := parseInstant(as, "from", opts.Start)
				if err != nil {
					return err
				}
				to, err := parseInstant(as, "to", opts.End)
				if err != nil {
					return err
				}
				events, err := as.Events.FindByDateRange(ctx, from, to)
				if err != nil {
					return storeExit("failed to find events", err)
				}
				out.VerboseLog("%d event(s) overlap %s .. %s", len(events), from.Format(time.RFC3339), to.Format(time.RFC3339))
				return out.Success(events)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Start, "from", "", "interval start (required)")
	cmd.Flags().StringVar(&opts.End, "to", "", "interval end (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newEventUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change an event",
		Long: `Change the given fields of an event; the others keep their value.

The event is read first, so the update applies to the version just read.`,
		Example: `  calendar event update --id 4 --end "2024-06-03 10:00"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				event, err := as.Events.GetByID(ctx, opts.ID)
				if err != nil {
					return storeExit("failed to read event", err)
				}
				if cmd.Flags().Changed("name") {
					event.Name = eventName(opts)
				}
				if cmd.Flags().Changed("start") {
					if event.StartDate, err = parseInstant(as, "start", opts.Start); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("end") {
					if event.EndDate, err = parseInstant(as, "end", opts.End); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("note") {
					event.Note = opts.Note
				}
				if err := as.Events.Update(ctx, event); err != nil {
					return storeExit("failed to update event", err)
				}
				return out.Success(event)
			})
		},
	}
	cmd.Flags().Int64Var(&opts.ID, "id", 0, "event id (required)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "new name")
	cmd.Flags().StringVar(&opts.Start, "start", "", "new start date")
	cmd.Flags().StringVar(&opts.End, "end", "", "new end date")
	cmd.Flags().StringVar(&opts.Note, "note", "", "new note (empty clears it)")
	cmd.Flags().BoolVar(&opts.Tidy, "tidy", false, "title-case the new name and strip a trailing period")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newEventDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an event",
		Long: `Delete an event. Without --version the version currently stored is used.

Attendances of the event are not removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				event := &model.Event{ID: opts.ID, Version: opts.Version}
				if !cmd.Flags().Changed("version") {
					current, err := as.Events.GetByID(ctx, opts.ID)
					if err != nil {
						return storeExit("failed to read event", err)
					}
					event = current
				}
				if err := as.Events.Delete(ctx, event); err != nil {
					return storeExit("failed to delete event", err)
				}
				return out.Success(deleted{Kind: "event", ID: opts.ID})
			})
		},
	}
	cmd.Flags().Int64Var(&opts.ID, "id", 0, "event id (required)")
	cmd.Flags().Int64Var(&opts.Version, "version", 0, "expected version")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
