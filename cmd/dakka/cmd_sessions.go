// cmd_sessions.go — `dakka sessions`: inspect and export saved timelines.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ozdemirkulaoglu/dakka/internal/state"
	"github.com/ozdemirkulaoglu/dakka/internal/store"
)

func init() {
	sessionsCmd.PersistentFlags().String("db", "", "session database (default <state root>/sessions.db)")
	sessionsExportCmd.Flags().StringP("framework", "f", "", "cypress, playwright, puppeteer, dakka or all")
	sessionsExportCmd.Flags().StringP("out", "o", "", "output directory (default <state root>/exports)")
	sessionsExportCmd.Flags().Bool("stdout", false, "print scripts instead of writing files")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsExportCmd, sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			return listSessions(cmd.Context(), st, cmd.OutOrStdout())
		})
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Print a saved session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			sess, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sess)
		})
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export <id|name>",
	Short: "Compile a saved session into test scripts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		toStdout, _ := cmd.Flags().GetBool("stdout")
		frameworks, err := frameworksFor(cfg.Framework)
		if err != nil {
			return err
		}
		return withStore(func(st *store.Store) error {
			sess, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			artifacts, err := compileAll(cmd.Context(), frameworks, sess.Timeline)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if toStdout {
				for _, art := range artifacts {
					fmt.Fprint(out, art.Script)
				}
				return nil
			}
			dir, err := resolveOutDir(cfg.OutDir)
			if err != nil {
				return err
			}
			paths, err := writeArtifacts(dir, artifacts)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(out, p)
			}
			return nil
		})
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		})
	},
}

func withStore(fn func(*store.Store) error) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func listSessions(ctx context.Context, st *store.Store, out io.Writer) error {
	list, err := st.List(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "No sessions found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTAB\tENTRIES\tCREATED")
	for _, s := range list {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			s.ID,
			s.Name,
			s.TabID,
			s.EntryCount,
			s.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}

// databasePath resolves the configured database, defaulting under the state root.
func databasePath(configured string) (string, error) {
	path := configured
	if path == "" {
		var err error
		if path, err = state.DatabaseFile(); err != nil {
			return "", err
		}
	}
	if err := state.EnsureParent(path); err != nil {
		return "", err
	}
	return path, nil
}
