package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/SWU-Companion/internal/storage"
	"github.com/ramonehamilton/SWU-Companion/internal/version"
)

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup [name]",
		Short: "Snapshot the catalog, collection and decks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			path, err := storage.NewBackupManager(a.cfg, a.logger).Backup(cmd.Context(), name)
			if err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backups, err := storage.NewBackupManager(a.cfg, a.logger).ListBackups()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(backups) == 0 {
				fmt.Fprintln(out, "No backups found.")
				return nil
			}
			for _, b := range backups {
				fmt.Fprintf(out, "%s  %-28s %3d files  %8.1f KB\n",
					b.ModTime.Format("2006-01-02 15:04"), b.Name, b.Files, float64(b.Size)/1024)
			}
			return nil
		},
	})

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		},
	}
}
