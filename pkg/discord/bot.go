package discord

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
)

type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate) error

type InteractionHandlers map[string]InteractionHandler

// Command is a top level slash command. Sub commands are dispatched by name, buttons by the
// action encoded in their custom ID.
type Command interface {
	Prefix() string
	RootCommand() string
	Description() string
	SubCommands() []*discordgo.ApplicationCommandOption
	CommandHandlers() InteractionHandlers
	AutoCompleteHandlers() InteractionHandlers
	ButtonHandlers() InteractionHandlers
}

func NewBot(logger *slog.Logger, session *discordgo.Session, commands ...Command) (*Bot, error) {
	seenRoot := map[string]struct{}{}
	seenPrefix := map[string]struct{}{}
	for _, c := range commands {
		if _, ok := seenRoot[c.RootCommand()]; ok {
			return nil, fmt.Errorf("duplicate command: %s", c.RootCommand())
		}
		if _, ok := seenPrefix[c.Prefix()]; ok {
			return nil, fmt.Errorf("duplicate command prefix: %s", c.Prefix())
		}
		seenRoot[c.RootCommand()] = struct{}{}
		seenPrefix[c.Prefix()] = struct{}{}
	}
	return &Bot{
		logger:   logger,
		session:  session,
		commands: commands,
	}, nil
}

type Bot struct {
	logger          *slog.Logger
	session         *discordgo.Session
	commands        []Command
	createdCommands []*discordgo.ApplicationCommand
}

func (b *Bot) Start() error {
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.logger.Info("Logged in", slog.String("user", s.State.User.Username))
	})
	b.session.AddHandler(b.handleInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	var err error
	b.createdCommands, err = b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, "", ApplicationCommands(b.commands...))
	if err != nil {
		return fmt.Errorf("cannot register commands: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	// cleanup commands
	for _, cmd := range b.createdCommands {
		err := b.session.ApplicationCommandDelete(b.session.State.User.ID, "", cmd.ID)
		if err != nil {
			return fmt.Errorf("cannot delete %s command: %w", cmd.Name, err)
		}
	}
	return b.session.Close()
}

// ApplicationCommands is the registration payload for the given commands.
func ApplicationCommands(commands ...Command) []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, 0, len(commands))
	for _, c := range commands {
		out = append(out, &discordgo.ApplicationCommand{
			Name:        c.RootCommand(),
			Description: c.Description(),
			Type:        discordgo.ChatApplicationCommand,
			Options:     c.SubCommands(),
		})
	}
	return out
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand, discordgo.InteractionApplicationCommandAutocomplete:
		data := i.ApplicationCommandData()
		cmd := b.commandByRoot(data.Name)
		if cmd == nil || len(data.Options) == 0 {
			b.respondError(s, i, fmt.Errorf("unknown command: %s", data.Name))
			return
		}
		handlers := cmd.CommandHandlers()
		if i.Type == discordgo.InteractionApplicationCommandAutocomplete {
			handlers = cmd.AutoCompleteHandlers()
		}
		sub := data.Options[0].Name
		h, ok := handlers[sub]
		if !ok {
			b.respondError(s, i, fmt.Errorf("unknown sub command: %s %s", data.Name, sub))
			return
		}
		if err := h(s, i); err != nil {
			b.respondError(s, i, err, slog.String("command", data.Name), slog.String("sub", sub))
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		prefix, action, _, err := DecodeCustomID(customID)
		if err != nil {
			b.respondError(s, i, err)
			return
		}
		cmd := b.commandByPrefix(prefix)
		if cmd == nil {
			b.respondError(s, i, fmt.Errorf("unknown customID format: %s", customID))
			return
		}
		h, ok := cmd.ButtonHandlers()[action]
		if !ok {
			b.respondError(s, i, fmt.Errorf("unknown customID format: %s", customID))
			return
		}
		if err := h(s, i); err != nil {
			b.respondError(s, i, err, slog.String("custom_id", customID))
		}
	}
}

func (b *Bot) commandByRoot(name string) Command {
	for _, c := range b.commands {
		if c.RootCommand() == name {
			return c
		}
	}
	return nil
}

func (b *Bot) commandByPrefix(prefix string) Command {
	for _, c := range b.commands {
		if strings.EqualFold(c.Prefix(), prefix) {
			return c
		}
	}
	return nil
}

func (b *Bot) respondError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, logCtx ...any) {
	b.logger.Error("Error response was sent: "+err.Error(), logCtx...)
	if i.Type == discordgo.InteractionApplicationCommandAutocomplete {
		return
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("Request failed with error: %s", err.Error()),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Error("failed to respond", slog.String("err", err.Error()))
		return
	}
}
