package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "mda",
		Short:   "Messaging Data Archive - browse and search a messaging data export",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		SilenceUsage: true,
	}

	f := rootCmd.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "Config file (default ~/.config/mda/config.toml)")
	f.StringVar(&a.dumpPath, "dump", "", "Export zip, or a directory holding exports")
	f.StringVar(&a.timezone, "tz", "", "IANA time zone for local times (e.g. Europe/Paris)")
	f.StringVar(&a.dbPath, "db", "", "Search index path")
	f.StringVar(&a.logLevel, "log-level", "", "Log level (debug/info/warn/error)")

	rootCmd.AddCommand(listCmd(a))
	rootCmd.AddCommand(showCmd(a))
	rootCmd.AddCommand(indexCmd(a))
	rootCmd.AddCommand(searchCmd(a))
	rootCmd.AddCommand(extractCmd(a))
	rootCmd.AddCommand(openCmd(a))
	rootCmd.AddCommand(doctorCmd(a))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
