// Command svc is the command-line client for svcd.
package main

import (
	"fmt"
	"os"
	"strings"

	"svc/internal/client"
	"svc/internal/render"
	"svc/internal/repo"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	noColor   bool
)

var rootCmd = &cobra.Command{
	Use:   "svc",
	Short: "svc is a minimal version control client",
	Long: `svc talks to a running svcd. It tracks files, records commits with
short content-derived ids, and keeps independent lines of work on branches.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func newClient() *client.Client {
	return client.New(serverURL)
}

func printer() *render.Printer {
	return render.New(os.Stdout, !noColor && !color.NoColor)
}

func init() {
	server := os.Getenv("SVC_SERVER")
	if server == "" {
		server = client.DefaultServer
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", server, "svcd address (env SVC_SERVER)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	var addCmd = &cobra.Command{
		Use:   "add <files...>",
		Short: "Start tracking files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			for _, name := range args {
				res, err := c.AddFile(cmd.Context(), name)
				if err != nil {
					return fmt.Errorf("adding %s: %w", name, err)
				}
				fmt.Printf("tracking %s [%d]\n", res.Name, res.Fingerprint)
			}
			return nil
		},
	}

	var rmCmd = &cobra.Command{
		Use:   "rm <files...>",
		Short: "Stop tracking files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			for _, name := range args {
				if _, err := c.RemoveFile(cmd.Context(), name); err != nil {
					return fmt.Errorf("removing %s: %w", name, err)
				}
				fmt.Printf("untracked %s\n", name)
			}
			return nil
		},
	}

	var statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the current branch and tracked files",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newClient().Status(cmd.Context())
			if err != nil {
				return err
			}

			yellow := color.New(color.FgYellow).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()

			fmt.Printf("On branch %s\n", st.Branch)
			switch {
			case st.Current != "":
				fmt.Printf("Current node is commit %s; check out a branch to commit\n", yellow(st.Current))
			case st.Head == "":
				fmt.Println("No commits yet")
			default:
				fmt.Printf("Head is %s\n", st.Head)
			}
			if st.Changed {
				fmt.Println(red("Changes not committed"))
			}
			fmt.Println()
			printer().Files(st.Tracked)
			if len(st.Touched) > 0 {
				fmt.Println("\nTouched on disk since last commit:")
				for _, name := range st.Touched {
					fmt.Printf("\t%s %s\n", yellow("~"), name)
				}
			}
			return nil
		},
	}

	var commitCmd = &cobra.Command{
		Use:   "commit",
		Short: "Record the tracked files",
		RunE: func(cmd *cobra.Command, args []string) error {
			message, _ := cmd.Flags().GetString("message")
			res, err := newClient().Commit(cmd.Context(), message)
			if err != nil {
				return err
			}
			if !res.Committed {
				fmt.Println("nothing to commit")
				return nil
			}
			fmt.Printf("committed %s\n", res.ID)
			return nil
		},
	}
	commitCmd.Flags().StringP("message", "m", "", "commit message")
	commitCmd.MarkFlagRequired("message")

	var showCmd = &cobra.Command{
		Use:   "show <commit>",
		Short: "Show a commit with its actions, tracked files and line diffs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := newClient().RenderCommit(cmd.Context(), args[0], !noColor && !color.NoColor)
			if err != nil {
				return err
			}
			fmt.Print(text)
			return nil
		},
	}

	var historyCmd = &cobra.Command{
		Use:   "history <commit>",
		Short: "List the ancestors of a commit, nearest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := newClient().History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}

	var logCmd = &cobra.Command{
		Use:   "log",
		Short: "List journaled commits, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := newClient().Log(cmd.Context())
			if err != nil {
				return err
			}
			printer().Log(recs)
			return nil
		},
	}

	var branchCmd = &cobra.Command{
		Use:   "branch [name]",
		Short: "List branches, or create one from head",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			if len(args) == 1 {
				if err := c.CreateBranch(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Printf("created branch %s\n", args[0])
				return nil
			}
			list, err := c.Branches(cmd.Context())
			if err != nil {
				return err
			}
			printer().Branches(list.Branches, list.Current)
			return nil
		},
	}

	var checkoutCmd = &cobra.Command{
		Use:   "checkout <branch>",
		Short: "Switch to a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newClient().Checkout(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("switched to branch %s\n", st.Branch)
			return nil
		},
	}

	var resetCmd = &cobra.Command{
		Use:   "reset <commit>",
		Short: "Point the current node at an existing commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := newClient().Reset(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("current node is now commit %s\n", args[0])
			return nil
		},
	}

	var mergeCmd = &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, _ := cmd.Flags().GetStringArray("resolve")
			resolutions, err := parseResolutions(pairs)
			if err != nil {
				return err
			}
			id, err := newClient().Merge(cmd.Context(), args[0], resolutions)
			if err != nil {
				return err
			}
			fmt.Printf("merged %s as %s\n", args[0], id)
			return nil
		},
	}
	mergeCmd.Flags().StringArray("resolve", nil, "conflict resolution as file=resolved_file (repeatable)")

	var graphCmd = &cobra.Command{
		Use:   "graph",
		Short: "Dump every node of the commit graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := newClient().Graph(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Print(text)
			return nil
		},
	}

	rootCmd.AddCommand(addCmd, rmCmd, statusCmd, commitCmd, showCmd, historyCmd, logCmd,
		branchCmd, checkoutCmd, resetCmd, mergeCmd, graphCmd)
}

func parseResolutions(pairs []string) ([]repo.Resolution, error) {
	var out []repo.Resolution
	for _, p := range pairs {
		file, resolved, ok := strings.Cut(p, "=")
		if !ok || file == "" || resolved == "" {
			return nil, fmt.Errorf("invalid resolution %q: want file=resolved_file", p)
		}
		out = append(out, repo.Resolution{FileName: file, ResolvedFile: resolved})
	}
	return out, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
		os.Exit(1)
	}
}
