package cli

import (
	"context"

	"github.com/spf13/cobra"

	"calendar/src-server/model"
	"calendar/src-server/utils"
)

// PersonOptions holds flags shared by the person subcommands.
type PersonOptions struct {
	*RootOptions
	ID      int64
	Name    string
	Email   string
	Note    string
	Version int64
}

// NewPersonCommand creates the person command and its subcommands.
func NewPersonCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "Create, read, update and delete people",
	}
	cmd.AddCommand(newPersonCreateCommand(rootOpts))
	cmd.AddCommand(newPersonGetCommand(rootOpts))
	cmd.AddCommand(newPersonListCommand(rootOpts))
	cmd.AddCommand(newPersonUpdateCommand(rootOpts))
	cmd.AddCommand(newPersonDeleteCommand(rootOpts))
	return cmd
}

func newPersonCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PersonOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a person",
		Example: `  calendar person create --name "Ada Lovelace" --email ada@example.com
  calendar person create --name Grace --email grace@example.com --note "prefers mornings"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				person := &model.Person{
					Name:  opts.Name,
					Email: utils.NormalizeEmail(opts.Email),
					Note:  opts.Note,
				}
				if err := as.People.Create(ctx, person); err != nil {
					return storeExit("failed to create person", err)
				}
				return out.Success(person)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Name, "name", "", "full name (required)")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&opts.Note, "note", "", "free-form note")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newPersonGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PersonOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show one person",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				person, err := as.People.GetByID(ctx, opts.ID)
				if err != nil {
					return storeExit("failed to get person", err)
				}
				return out.Success(person)
			})
		},
	}
	cmd.Flags().Int64Var(&opts.ID, "id", 0, "person id (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newPersonListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PersonOptions{RootOptions: rootOpts}
	return &cobra.Command{
		Use:   "list",
		Short: "List every person",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				people, err := as.People.FindAll(ctx)
				if err != nil {
					return storeExit("failed to list people", err)
				}
				return out.Success(people)
			})
		},
	}
}

func newPersonUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PersonOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change a person",
		Long: `Change the given fields of a person; the others keep their value.

The person is read first, so the update applies to the version just read.`,
		Example: `  calendar person update --id 3 --email ada@lovelace.org`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				person, err := as.People.GetByID(ctx, opts.ID)
				if err != nil {
					return storeExit("failed to read person", err)
				}
				if cmd.Flags().Changed("name") {
					person.Name = opts.Name
				}
				if cmd.Flags().Changed("email") {
					person.Email = utils.NormalizeEmail(opts.Email)
				}
				if cmd.Flags().Changed("note") {
					person.Note = opts.Note
				}
				if err := as.People.Update(ctx, person); err != nil {
					return storeExit("failed to update person", err)
				}
				return out.Success(person)
			})
		},
	}
	cmd.Flags().Int64Var(&opts.ID, "id", 0, "person id (required)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "new full name")
	cmd.Flags().StringVar(&opts.Email, "email", "", "new email address")
	cmd.Flags().StringVar(&opts.Note, "note", "", "new note (empty clears it)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newPersonDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PersonOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a person",
		Long: `Delete a person. Without --version the version currently stored is used.

Attendances of the person are not removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, as *utils.AppState, out *OutputFormatter) error {
				person := &model.Person{ID: opts.ID, Version: opts.Version}
				if !cmd.Flags().Changed("version") {
					current, err := as.People.GetByID(ctx, opts.ID)
					if err != nil {
						return storeExit("failed to read person", err)
					}
					person = current
				}
				if err := as.People.Delete(ctx, person); err != nil {
					return storeExit("failed to delete person", err)
				}
				return out.Success(deleted{Kind: "person", ID: opts.ID})
			})
		},
	}
	cmd.Flags().Int64Var(&opts.ID, "id", 0, "person id (required)")
	cmd.Flags().Int64Var(&opts.Version, "version", 0, "expected version")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
