package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophmarket/internal/buildinfo"
	"github.com/dmitrijs2005/gophmarket/internal/client/config"
	"github.com/dmitrijs2005/gophmarket/internal/client/services"
	"github.com/spf13/cobra"
)

// newAppFn is a test seam for NewApp.
var newAppFn = NewApp

// NewRootCmd builds the gophmarket command tree. Without a subcommand the
// interactive shell starts.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gophmarket",
		Short:         "Upload listing images and publish them to the marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runShell,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newShellCmd())
	root.AddCommand(newUploadCmd())
	root.AddCommand(newDraftsCmd())
	root.AddCommand(newPublishCmd())
	root.AddCommand(newOrphansCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// withApp loads the configuration and runs fn with a ready App.
func withApp(cmd *cobra.Command, live bool, fn func(ctx context.Context, a *App) error) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := newAppFn(ctx, cfg, cmd.OutOrStdout(), live)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Edit drafts interactively",
		Args:  cobra.NoArgs,
		RunE:  runShell,
	}
}

func runShell(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, false, func(ctx context.Context, a *App) error {
		a.println("Welcome to gophmarket (type 'help' for commands)")

		d, err := a.images.ResumeDraft(ctx)
		switch {
		case err == nil:
			a.printf("Resumed draft %s (%s) with %d image(s)\n", d.ID, d.Title, len(d.Images))
		case !errors.Is(err, services.ErrNoDraft):
			a.log.Warn(ctx, "could not resume draft", "error", err)
		}

		runREPL(ctx, a, a.status, bufio.NewScanner(cmd.InOrStdin()))
		a.Wait()
		return nil
	})
}

func newUploadCmd() *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "upload [draft-id] <file>...",
		Short: "Upload images to a draft and wait for the batch",
		Long: "Upload images to an existing draft, or to a new one when --title is set.\n" +
			"The command fails when any file could not be uploaded.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" && len(args) < 2 {
				return errors.New("upload needs a draft id and at least one file")
			}
			return withApp(cmd, isTerminal(cmd.OutOrStdout()), func(ctx context.Context, a *App) error {
				files := args
				if title != "" {
					if err := a.NewDraft(ctx, title); err != nil {
						return err
					}
				} else {
					if err := a.Open(ctx, args[0]); err != nil {
						return err
					}
					files = args[1:]
				}

				out, err := a.Upload(ctx, files)
				if err != nil {
					return err
				}
				if n := len(out.Failures); n > 0 {
					return fmt.Errorf("%d of %d uploads failed", n, len(files))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "create a new draft with this title")
	return cmd
}

func newDraftsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drafts",
		Short: "List local drafts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, false, func(ctx context.Context, a *App) error {
				return a.Drafts(ctx)
			})
		},
	}
}

func newPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <draft-id> <listing-id>",
		Short: "Write a draft's image list to a remote listing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, false, func(ctx context.Context, a *App) error {
				if err := a.Open(ctx, args[0]); err != nil {
					return err
				}
				return a.Publish(ctx, args[1])
			})
		},
	}
}

func newOrphansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orphans",
		Short: "List stored uploads no draft references any more",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, false, func(ctx context.Context, a *App) error {
				return a.Orphans(ctx)
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}
