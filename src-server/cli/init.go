package cli

import (
	"context"

	"github.com/spf13/cobra"

	"calendar/src-server/utils"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Reset bool
}

type initResult struct {
	Database string `json:"database"`
	Reset    bool   `json:"reset"`
}

func (r initResult) String() string {
	if r.Reset {
		return "schema recreated in " + r.Database
	}
	return "schema ready in " + r.Database
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database schema",
		Long: `Create the person, event and attendance relations if they are missing.

With --reset every relation is dropped first, deleting all data.

Examples:
  calendar init --db ./calendar.db
  calendar init --db ./calendar.db --reset`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				if opts.Reset {
					if err := as.ResetSchema(ctx); err != nil {
						return WrapExitError(ExitCommandError, "failed to reset schema", err)
					}
				}
				return out.Success(initResult{Database: as.Config.GetDBPath(), Reset: opts.Reset})
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "drop every relation before creating it")

	return cmd
}
