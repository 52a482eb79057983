// cmd_serve.go — `dakka serve`: accept recorder messages over HTTP.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ozdemirkulaoglu/dakka/internal/recorder"
	"github.com/ozdemirkulaoglu/dakka/internal/server"
	"github.com/ozdemirkulaoglu/dakka/internal/store"
	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (default 7891)")
	serveCmd.Flags().String("db", "", "session database (default <state root>/sessions.db)")
	serveCmd.Flags().StringP("framework", "f", "", "default framework for GET /export")
	serveCmd.Flags().String("journal", "", "append applied messages to this NDJSON file")
	serveCmd.Flags().Bool("no-store", false, "disable the session database")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP endpoint the recorder extension talks to",
	Args:  cobra.NoArgs,
	// Long-running: keep a log under <state root>/logs.
	Annotations: map[string]string{annotationLogFile: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		journalPath, _ := cmd.Flags().GetString("journal")
		noStore, _ := cmd.Flags().GetBool("no-store")

		composer := recorder.NewComposer(
			recorder.WithLogger(logger.Named("recorder")),
			recorder.WithSettings(recorderSettings(cfg, false)),
		)
		opts := []server.Option{server.WithLogger(logger.Named("server"))}

		if cfg.Framework != "all" {
			f, err := types.ParseFramework(cfg.Framework)
			if err != nil {
				return err
			}
			opts = append(opts, server.WithDefaultFramework(f))
		}

		if !noStore {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			opts = append(opts, server.WithStore(st))
		}

		if journalPath != "" {
			j, err := server.OpenJournal(journalPath)
			if err != nil {
				return err
			}
			logger.Info("journaling messages", zap.String("path", j.Path()))
			opts = append(opts, server.WithJournal(j))
		}

		addr := fmt.Sprintf("127.0.0.1:%d", cfg.ServerPort)
		return server.NewServer(composer, opts...).Run(cmd.Context(), addr)
	},
}

// openStore opens the configured session database, creating its directory.
func openStore() (*store.Store, error) {
	path, err := databasePath(cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Debug("opening session database", zap.String("path", path))
	return store.Open(path)
}
