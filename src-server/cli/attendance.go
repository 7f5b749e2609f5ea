package cli

import (
	"context"

	"github.com/spf13/cobra"

	"calendar/src-server/model"
	"calendar/src-server/utils"
)

// AttendanceOptions holds flags shared by the attendance subcommands.
type AttendanceOptions struct {
	*RootOptions
	ID           int64
	EventID      int64
	PersonID     int64
	Arrival      string
	ClearArrival bool
	Version      int64
}

// NewAttendanceCommand creates the attendance command and its subcommands.
func NewAttendanceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Record who attends which event",
	}
	cmd.AddCommand(newAttendanceCreateCommand(rootOpts))
	cmd.AddCommand(newAttendanceGetCommand(rootOpts))
	cmd.AddCommand(newAttendanceListCommand(rootOpts))
	cmd.AddCommand(newAttendanceUpdateCommand(rootOpts))
	cmd.AddCommand(newAttendanceDeleteCommand(rootOpts))
	return cmd
}

func newAttendanceCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AttendanceOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Record that a person attends an event",
		Example: `  calendar attendance create --event 4 --person 3 --arrival "2024-06-03 08:55"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				attendance := &model.Attendance{
					Event:  &model.Event{ID: opts.EventID},
					Person: &model.Person{ID: opts.PersonID},
				}
				if opts.Arrival != "" {
					arrival, err := parseInstant(as, "arrival", opts.Arrival)
					if err != nil {
						return err
					}
					attendance.PlannedArrivalTime = &arrival
				}
				if err := as.Attendances.Create(ctx, attendance); err != nil {
					return storeExit("failed to create attendance", err)
				}
				stored, err := as.Attendances.GetByID(ctx, attendance.ID)
				if err != nil {
					return storeExit("failed to read attendance", err)
				}
				return out.Success(stored)
			})
		},
	}
	cmd.Flags().Int64Var(&opts.EventID, "event", 0, "event id (required)")
	cmd.Flags().Int64Var(&opts.PersonID, "person", 0, "person id (required)")
	cmd.Flags().StringVar(&opts.Arrival, "arrival", "", "planned arrival time")
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("person")
	return cmd
}

func newAttendanceGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AttendanceOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show one attendance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				attendance, err := as.Attendances.GetByID(ctx, opts.ID)
				if err != nil {
					return storeExit("failed to get attendance", err)
				}
				return out.Success(attendance)
			})
		},
	}
	cmd.Flags().Int64Var(&opts.ID, "id", 0, "attendance id (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newAttendanceListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AttendanceOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List attendances, optionally of one event or one person",
		Example: `  calendar attendance list
  calendar attendance list --event 4
  calendar attendance list --person 3 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				var attendances []model.Attendance
				var err error
				switch {
				case cmd.Flags().Changed("event"):
					attendances, err = as.Attendances.FindByEvent(ctx, &model.Event{ID: opts.EventID})
				case cmd.Flags().Changed("person"):
					attendances, err = as.Attendances.FindByPerson(ctx, &model.Person{ID: opts.PersonID})
				default:
					attendances, err = as.Attendances.FindAll(ctx)
				}
				if err != nil {
					return storeExit("failed to list attendances", err)
				}
				return out.Success(attendances)
			})
		},
	}
	cmd.Flags().Int64Var(&opts.EventID, "event", 0, "only attendances of this event")
	cmd.Flags().Int64Var(&opts.PersonID, "person", 0, "only attendances of this person")
	cmd.MarkFlagsMutuallyExclusive("event", "person")
	return cmd
}

func newAttendanceUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AttendanceOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change an attendance",
		Long: `Change the event, the person or the planned arrival of an attendance.

The attendance is read first, so the update applies to the version just read.`,
		Example: `  calendar attendance update --id 7 --arrival "2024-06-03 09:05"
  calendar attendance update --id 7 --clear-arrival`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				attendance, err := as.Attendances.GetByID(ctx, opts.ID)
				if err != nil {
					return storeExit("failed to read attendance", err)
				}
				if cmd.Flags().Changed("event") {
					attendance.Event = &model.Event{ID: opts.EventID}
				}
				if cmd.Flags().Changed("person") {
					attendance.Person = &model.Person{ID: opts.PersonID}
				}
				switch {
				case opts.ClearArrival:
					attendance.PlannedArrivalTime = nil
				case cmd.Flags().Changed("arrival"):
					arrival, err := parseInstant(as, "arrival", opts.Arrival)
					if err != nil {
						return err
					}
					attendance.PlannedArrivalTime = &arrival
				}
				if err := as.Attendances.Update(ctx, attendance); err != nil {
					return storeExit("failed to update attendance", err)
				}
				stored, err := as.Attendances.GetByID(ctx, attendance.ID)
				if err != nil {
					return storeExit("failed to read attendance", err)
				}
				return out.Success(stored)
			})
		},
	}
	cmd.Flags().Int64Var(&opts.ID, "id", 0, "attendance id (required)")
	cmd.Flags().Int64Var(&opts.EventID, "event", 0, "new event id")
	cmd.Flags().Int64Var(&opts.PersonID, "person", 0, "new person id")
	cmd.Flags().StringVar(&opts.Arrival, "arrival", "", "new planned arrival time")
	cmd.Flags().BoolVar(&opts.ClearArrival, "clear-arrival", false, "remove the planned arrival time")
	cmd.MarkFlagsMutuallyExclusive("arrival", "clear-arrival")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newAttendanceDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AttendanceOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an attendance",
		Long:  `Delete an attendance. Without --version the version currently stored is used.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				attendance := &model.Attendance{ID: opts.ID, Version: opts.Version}
				if !cmd.Flags().Changed("version") {
					current, err := as.Attendances.GetByID(ctx, opts.ID)
					if err != nil {
						return storeExit("failed to read attendance", err)
					}
					attendance = current
				}
				if err := as.Attendances.Delete(ctx, attendance); err != nil {
					return storeExit("failed to delete attendance", err)
				}
				return out.Success(deleted{Kind: "attendance", ID: opts.ID})
			})
		},
	}
	cmd.Flags().Int64Var(&opts.ID, "id", 0, "attendance id (required)")
	cmd.Flags().Int64Var(&opts.Version, "version", 0, "expected version")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
