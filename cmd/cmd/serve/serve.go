package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
	"github.com/warmans/demonlist/pkg/content"
	"github.com/warmans/demonlist/pkg/flag"
	"github.com/warmans/demonlist/pkg/session"
	"github.com/warmans/demonlist/pkg/site"
	"github.com/warmans/demonlist/pkg/submit"
	"github.com/warmans/demonlist/pkg/thumbnail"
	"github.com/warmans/demonlist/pkg/web"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func NewServeCommand(logger *slog.Logger) *cobra.Command {

	var addr string
	var contentDir string
	var contentURL string
	var assetsDir string
	var siteConfig string
	var webhookURL string
	var webhookUsername string
	var probeThumbnails bool
	var watchContent bool
	var sessionTTL time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the demonlist site",
		RunE: func(cmd *cobra.Command, args []string) error {

			siteCfg, err := site.Load(siteConfig)
			if err != nil {
				return err
			}

			src, err := content.NewSource(contentDir, contentURL, nil)
			if err != nil {
				return err
			}
			cached := content.NewCached(src)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if watchContent && contentURL == "" {
				watcher, err := content.NewWatcher(logger, contentDir, cached, content.DefaultDebounce)
				if err != nil {
					return err
				}
				if err := watcher.Start(ctx); err != nil {
					return err
				}
				defer func() {
					if err := watcher.Stop(); err != nil {
						logger.Error("Failed to stop watcher", slog.String("err", err.Error()))
					}
				}()
			}

			var notifier submit.Notifier = submit.DisabledNotifier{}
			if webhookURL != "" {
				discordSession, err := discordgo.New("")
				if err != nil {
					return fmt.Errorf("failed to create discord session: %w", err)
				}
				notifier, err = submit.NewDiscordNotifier(discordSession, webhookURL, webhookUsername)
				if err != nil {
					return err
				}
			} else {
				logger.Warn("No webhook configured, record submissions will be rejected")
			}

			resolver := thumbnail.NewResolver(logger, thumbnail.Config{AssetsDir: assetsDir, Probe: probeThumbnails}, nil)
			sessions := session.NewStore(sessionTTL)

			srv, err := web.NewServer(
				logger,
				web.Config{AssetsDir: assetsDir, Site: siteCfg},
				cached,
				resolver,
				submit.NewSubmitter(logger, cached, notifier),
				sessions,
			)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			eg, egCtx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				logger.Info("Starting server", slog.String("addr", addr))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			eg.Go(func() error {
				sessions.Run(egCtx, time.Minute)
				return nil
			})
			eg.Go(func() error {
				<-egCtx.Done()
				logger.Info("Gracefully shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			})
			return eg.Wait()
		},
	}

	flag.StringVarEnv(cmd.Flags(), &addr, "", "addr", ":8080", "listen address")
	flag.StringVarEnv(cmd.Flags(), &contentDir, "", "content-dir", "./data", "directory containing _list.json and the level files")
	flag.StringVarEnv(cmd.Flags(), &contentURL, "", "content-url", "", "base URL to fetch the list from instead of content-dir")
	flag.StringVarEnv(cmd.Flags(), &assetsDir, "", "assets-dir", "./assets", "directory served under /assets/")
	flag.StringVarEnv(cmd.Flags(), &siteConfig, "", "site-config", "", "optional YAML file with the site title and guidelines")
	flag.StringVarEnv(cmd.Flags(), &webhookURL, "", "webhook-url", "", "discord webhook receiving record submissions")
	flag.StringVarEnv(cmd.Flags(), &webhookUsername, "", "webhook-username", "Demonlist", "name shown on submission messages")
	flag.BoolVarEnv(cmd.Flags(), &probeThumbnails, "", "probe-thumbnails", true, "check video thumbnails and fall back to lower resolutions")
	flag.BoolVarEnv(cmd.Flags(), &watchContent, "", "watch", true, "reload the list when content-dir changes")
	flag.DurationVarEnv(cmd.Flags(), &sessionTTL, "", "session-ttl", session.DefaultTTL, "idle time before a visitor session is dropped")

	envErr := flag.Parse()
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return envErr
	}

	return cmd
}
