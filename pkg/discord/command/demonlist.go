package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/warmans/demonlist/pkg/content"
	"github.com/warmans/demonlist/pkg/discord"
	"github.com/warmans/demonlist/pkg/leaderboard"
	"github.com/warmans/demonlist/pkg/packs"
	"github.com/warmans/demonlist/pkg/score"
	"github.com/warmans/demonlist/pkg/thumbnail"
	"github.com/warmans/demonlist/pkg/util"
)

const (
	demonlistCommand = "demonlist"
	fetchTimeout     = 10 * time.Second
	minSimilarity    = 0.75
	maxChoices       = 25
	defaultTop       = 10
	maxTop           = 50
	maxRecordLines   = 30
)

const (
	DemonlistCmdLevel  string = "level"
	DemonlistCmdTop    string = "top"
	DemonlistCmdPlayer string = "player"
)

const demonlistActionRecords = "records"

func NewDemonlistCommand(logger *slog.Logger, src content.Source, siteURL string) *Demonlist {
	return &Demonlist{logger: logger, src: src, siteURL: strings.TrimRight(siteURL, "/")}
}

type Demonlist struct {
	logger  *slog.Logger
	src     content.Source
	siteURL string
}

func (c *Demonlist) Prefix() string {
	return "dmn"
}

func (c *Demonlist) RootCommand() string {
	return demonlistCommand
}

func (c *Demonlist) Description() string {
	return "Demonlist levels and standings"
}

func (c *Demonlist) AutoCompleteHandlers() discord.InteractionHandlers {
	return discord.InteractionHandlers{
		DemonlistCmdLevel: c.autocompleteLevel,
	}
}

func (c *Demonlist) ButtonHandlers() discord.InteractionHandlers {
	return discord.InteractionHandlers{
		demonlistActionRecords: c.showRecords,
	}
}

func (c *Demonlist) CommandHandlers() discord.InteractionHandlers {
	return discord.InteractionHandlers{
		DemonlistCmdLevel:  c.showLevel,
		DemonlistCmdTop:    c.showTop,
		DemonlistCmdPlayer: c.showPlayer,
	}
}

func (c *Demonlist) SubCommands() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Name:        DemonlistCmdLevel,
			Description: "Show a level.",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:         "name",
					Description:  "Level name",
					Type:         discordgo.ApplicationCommandOptionString,
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        DemonlistCmdTop,
			Description: "Show the top of the leaderboard.",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "count",
					Description: "Number of players",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    false,
				},
			},
		},
		{
			Name:        DemonlistCmdPlayer,
			Description: "Show a player's standing.",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "name",
					Description: "Player name",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
			},
		},
	}
}

func (c *Demonlist) fetch() ([]content.Entry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()
	entries, err := c.src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch list: %w", err)
	}
	return entries, nil
}

func (c *Demonlist) showLevel(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	entries, err := c.fetch()
	if err != nil {
		return err
	}
	data, err := c.levelResponse(entries, stringOption(i, "name"))
	if err != nil {
		return err
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func (c *Demonlist) autocompleteLevel(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	entries, err := c.fetch()
	if err != nil {
		return err
	}
	query := stringOption(i, "name")
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: levelChoices(entries, query),
		},
	})
}

func (c *Demonlist) showTop(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	count := defaultTop
	if opt, ok := subCommandOptions(i)["count"]; ok {
		count = int(opt.IntValue())
	}
	entries, resolved, err := c.standings()
	if err != nil {
		return err
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: topResponse(leaderboard.Build(entries, resolved), count),
	})
}

func (c *Demonlist) showPlayer(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	entries, resolved, err := c.standings()
	if err != nil {
		return err
	}
	data, err := playerResponse(leaderboard.Build(entries, resolved), stringOption(i, "name"))
	if err != nil {
		return err
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func (c *Demonlist) showRecords(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	_, _, data, err := discord.DecodeCustomID(i.MessageComponentData().CustomID)
	if err != nil {
		return err
	}
	if len(data) != 1 {
		return fmt.Errorf("records button is missing the level")
	}
	entries, err := c.fetch()
	if err != nil {
		return err
	}
	lvl, err := content.FindLevel(entries, data[0])
	if err != nil {
		return err
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: recordsText(lvl),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func (c *Demonlist) standings() ([]content.Entry, []packs.Pack, error) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()
	entries, err := c.src.Fetch(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch list: %w", err)
	}
	defs, err := c.src.Packs(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch packs: %w", err)
	}
	return entries, packs.Resolve(defs, entries), nil
}

func (c *Demonlist) levelResponse(entries []content.Entry, query string) (*discordgo.InteractionResponseData, error) {
	lvl := matchLevel(entries, query)
	if lvl == nil {
		return nil, fmt.Errorf("%w: %s", content.ErrLevelNotFound, query)
	}
	listLength := content.RankedCount(entries)

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s - %s", score.RankLabel(lvl.Rank), lvl.Name),
		Description: fmt.Sprintf("by %s, verified by %s", lvl.Author, lvl.Verifier),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Requirement", Value: score.FormatPercent(lvl.PercentToQualify) + "%", Inline: true},
			{Name: "Records", Value: fmt.Sprintf("%d", len(lvl.Records)), Inline: true},
		},
	}
	if text := score.ScoreText(lvl, listLength); text != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Points", Value: text})
	}
	if lvl.ID != 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Level ID", Value: fmt.Sprintf("%d", lvl.ID), Inline: true})
	}
	if c.siteURL != "" {
		embed.URL = fmt.Sprintf("%s/?level=%s", c.siteURL, lvl.Key())
	}
	if candidates := thumbnail.YouTubeCandidates("", lvl.Verification); len(candidates) > 0 {
		// hqdefault exists for every video
		embed.Image = &discordgo.MessageEmbedImage{URL: candidates[len(candidates)-3]}
	}

	buttons := []discordgo.MessageComponent{
		discordgo.Button{
			Label:    "Records",
			Style:    discordgo.SecondaryButton,
			CustomID: discord.EncodeCustomID(c.Prefix(), demonlistActionRecords, lvl.Key()),
			Disabled: len(lvl.Records) == 0,
		},
	}
	if lvl.Verification != "" {
		buttons = append(buttons, discordgo.Button{
			Label: "Verification",
			Style: discordgo.LinkButton,
			URL:   lvl.Verification,
		})
	}
	return &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}},
	}, nil
}

// matchLevel finds a level by exact stem first, then by fuzzy name.
func matchLevel(entries []content.Entry, query string) *content.Level {
	if lvl, err := content.FindLevel(entries, strings.TrimSpace(query)); err == nil {
		return lvl
	}
	levels, names := loadedLevels(entries)
	if idx := util.BestMatch(query, names, minSimilarity); idx >= 0 {
		return levels[idx]
	}
	return nil
}

func levelChoices(entries []content.Entry, query string) []*discordgo.ApplicationCommandOptionChoice {
	levels, names := loadedLevels(entries)
	query = util.SimplifyName(query)

	choices := []*discordgo.ApplicationCommandOptionChoice{}
	for k, lvl := range levels {
		if len(choices) >= maxChoices {
			break
		}
		if query == "" || strings.Contains(util.SimplifyName(names[k]), query) || util.RoughlyMatches(names[k], query) {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  fmt.Sprintf("%s %s", score.RankLabel(lvl.Rank), lvl.Name),
				Value: lvl.Key(),
			})
		}
	}
	return choices
}

func loadedLevels(entries []content.Entry) ([]*content.Level, []string) {
	levels := make([]*content.Level, 0, len(entries))
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Err != nil || e.Level == nil {
			continue
		}
		levels = append(levels, e.Level)
		names = append(names, e.Level.Name)
	}
	return levels, names
}

func topResponse(rows []leaderboard.Row, count int) *discordgo.InteractionResponseData {
	if count <= 0 {
		count = defaultTop
	}
	if count > maxTop {
		count = maxTop
	}
	text := leaderboard.Render(rows, count)
	if text == "" {
		text = "No records yet."
	}
	return &discordgo.InteractionResponseData{
		Content: fmt.Sprintf("```\n%s```", text),
	}
}

func playerResponse(rows []leaderboard.Row, name string) (*discordgo.InteractionResponseData, error) {
	row, ok := leaderboard.Find(rows, name)
	if !ok {
		return nil, fmt.Errorf("no player named %s", name)
	}
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "**#%d %s** with %.2f points\n", row.Position, row.User, row.Total)
	fmt.Fprintf(sb, "%d verified, %d completed, %d in progress\n", len(row.Verified), len(row.Completed), len(row.Progressed))
	if len(row.Packs) > 0 {
		fmt.Fprintf(sb, "Packs: %s\n", strings.Join(row.Packs, ", "))
	}
	return &discordgo.InteractionResponseData{Content: sb.String()}, nil
}

func recordsText(lvl *content.Level) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "**%s** records (%s%% or better to qualify)\n", lvl.Name, score.FormatPercent(lvl.PercentToQualify))
	for k, r := range lvl.Records {
		if k >= maxRecordLines {
			fmt.Fprintf(sb, "...and %d more\n", len(lvl.Records)-k)
			break
		}
		user := r.User
		if user == "" {
			user = "-"
		}
		fmt.Fprintf(sb, "%s %s%%", user, score.FormatPercent(r.Progress()))
		if r.Link != "" {
			fmt.Fprintf(sb, " <%s>", r.Link)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func subCommandOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := map[string]*discordgo.ApplicationCommandInteractionDataOption{}
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return out
	}
	for _, o := range data.Options[0].Options {
		out[o.Name] = o
	}
	return out
}

func stringOption(i *discordgo.InteractionCreate, name string) string {
	if o, ok := subCommandOptions(i)[name]; ok && o.Type == discordgo.ApplicationCommandOptionString {
		return o.StringValue()
	}
	return ""
}
