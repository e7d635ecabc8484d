package record

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
	"github.com/warmans/demonlist/pkg/content"
	"github.com/warmans/demonlist/pkg/flag"
	"github.com/warmans/demonlist/pkg/submit"
)

func NewSubmitCommand(logger *slog.Logger) *cobra.Command {

	var contentDir string
	var contentURL string
	var webhookURL string
	var webhookUsername string
	var timeout time.Duration

	form := submit.Form{}
	var percentage string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "send a record to the moderators",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := content.NewSource(contentDir, contentURL, nil)
			if err != nil {
				return err
			}
			var notifier submit.Notifier = submit.DisabledNotifier{}
			if webhookURL != "" {
				session, err := discordgo.New("")
				if err != nil {
					return fmt.Errorf("failed to create discord session: %w", err)
				}
				notifier, err = submit.NewDiscordNotifier(session, webhookURL, webhookUsername)
				if err != nil {
					return err
				}
			}
			form.Percentage = submit.ParsePercentage(percentage)

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			res := submit.NewSubmitter(logger, src, notifier).Submit(ctx, &submit.Attempts{}, &form)
			if res.Status != submit.StatusSent {
				return fmt.Errorf("submission %s: %s", res.Status, res.Message)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", res.Message, res.ID)
			return nil
		},
	}

	flag.StringVarEnv(cmd.Flags(), &contentDir, "", "content-dir", "./data", "directory containing _list.json and the level files")
	flag.StringVarEnv(cmd.Flags(), &contentURL, "", "content-url", "", "base URL to fetch the list from instead of content-dir")
	flag.StringVarEnv(cmd.Flags(), &webhookURL, "", "webhook-url", "", "discord webhook receiving submissions")
	flag.StringVarEnv(cmd.Flags(), &webhookUsername, "", "webhook-username", "Demonlist", "name shown on submission messages")
	flag.DurationVarEnv(cmd.Flags(), &timeout, "", "timeout", time.Second*30, "")

	cmd.Flags().StringVar(&form.LevelID, "level", "", "level stem")
	cmd.Flags().StringVar(&form.Holder, "holder", "", "record holder")
	cmd.Flags().StringVar(&percentage, "percent", "100", "percentage reached")
	cmd.Flags().StringVar(&form.Footage, "footage", "", "link to the record video")
	cmd.Flags().StringVar(&form.RawFootage, "raw", "", "link to raw footage")
	cmd.Flags().StringVar(&form.Notes, "notes", "", "")

	envErr := flag.Parse()
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return envErr
	}

	return cmd
}
