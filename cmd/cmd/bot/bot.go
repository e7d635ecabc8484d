package bot

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
	"github.com/warmans/demonlist/pkg/content"
	"github.com/warmans/demonlist/pkg/discord"
	"github.com/warmans/demonlist/pkg/discord/command"
	"github.com/warmans/demonlist/pkg/flag"
)

func NewBotCommand(logger *slog.Logger) *cobra.Command {

	var discordToken string
	var contentDir string
	var contentURL string
	var siteURL string

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "start the discord bot",
		RunE: func(cmd *cobra.Command, args []string) error {

			logger.Info("Creating discord session...")
			if discordToken == "" {
				return fmt.Errorf("discord token is required")
			}
			session, err := discordgo.New("Bot " + discordToken)
			if err != nil {
				return fmt.Errorf("failed to create discord session: %w", err)
			}

			src, err := content.NewSource(contentDir, contentURL, nil)
			if err != nil {
				return err
			}

			logger.Info("Starting bot...")
			bot, err := discord.NewBot(
				logger,
				session,
				command.NewDemonlistCommand(logger, content.NewCached(src), siteURL),
			)
			if err != nil {
				return fmt.Errorf("failed to create bot: %w", err)
			}

			if err = bot.Start(); err != nil {
				return fmt.Errorf("failed to start bot: %w", err)
			}
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt)
			<-stop

			logger.Info("Gracefully shutting down")
			if err = bot.Close(); err != nil {
				return fmt.Errorf("failed to gracefully shutdown bot: %w", err)
			}
			return nil
		},
	}

	flag.StringVarEnv(cmd.Flags(), &discordToken, "", "discord-token", "", "discord auth token")
	flag.StringVarEnv(cmd.Flags(), &contentDir, "", "content-dir", "./data", "directory containing _list.json and the level files")
	flag.StringVarEnv(cmd.Flags(), &contentURL, "", "content-url", "", "base URL to fetch the list from instead of content-dir")
	flag.StringVarEnv(cmd.Flags(), &siteURL, "", "site-url", "", "public URL of the site, used to link levels")

	envErr := flag.Parse()
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return envErr
	}

	return cmd
}
