package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/warmans/demonlist/cmd/cmd/bot"
	"github.com/warmans/demonlist/cmd/cmd/levels"
	"github.com/warmans/demonlist/cmd/cmd/placeholder"
	"github.com/warmans/demonlist/cmd/cmd/record"
	"github.com/warmans/demonlist/cmd/cmd/serve"
)

var (
	rootCmd = &cobra.Command{
		Use:   "demonlist",
		Short: "ranked level list site and tools",
	}
)

// Execute executes the root command.
func Execute(logger *slog.Logger) error {
	rootCmd.AddCommand(serve.NewServeCommand(logger))
	rootCmd.AddCommand(bot.NewBotCommand(logger))
	rootCmd.AddCommand(levels.NewCheckCommand(logger))
	rootCmd.AddCommand(levels.NewRandomCommand(logger))
	rootCmd.AddCommand(record.NewSubmitCommand(logger))
	rootCmd.AddCommand(placeholder.NewPlaceholderCommand(logger))
	return rootCmd.Execute()
}
