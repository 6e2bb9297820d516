package bot

import (
	"context"
	"fmt"
	"strconv"

	"tokentrackr/internal/common"
	"tokentrackr/internal/rsi"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Number of awards listed by the tokens command
const recentAwards = 5

type Scraper interface {
	Lookup(ctx context.Context, handle string) (rsi.Profile, error)
}

type Bot struct {
	token         string
	guildId       string
	database      DatabaseBot
	scraper       Scraper
	lookupLimiter *common.RateLimiter
}

// Create the bot with everything the commands need.
// An empty guild id registers the commands globally.
// A nil limiter does not throttle lookups
func CreateBot(token string, guildId string, database DatabaseBot, scraper Scraper, lookupLimiter *common.RateLimiter) Bot {
	return Bot{
		token:         token,
		guildId:       guildId,
		database:      database,
		scraper:       scraper,
		lookupLimiter: lookupLimiter,
	}
}

// Serve commands until the context is done
func (bot *Bot) Run(ctx context.Context) error {
	// Create session
	discord, err := discordgo.New("Bot " + bot.token)
	if err != nil {
		return fmt.Errorf("could not create discord session: %w", err)
	}
	discord.Identify.Intents = discordgo.IntentsGuilds

	// Event handlers
	discord.AddHandler(bot.Ready)
	discord.AddHandler(func(discord *discordgo.Session, interaction *discordgo.InteractionCreate) {
		bot.Receive(ctx, discord, interaction)
	})

	// Open session
	if err := discord.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	defer discord.Close()

	log.Info().Msg("Bot is running")
	<-ctx.Done()
	log.Info().Msg("Shutting down")
	return nil
}

func (bot *Bot) Ready(discord *discordgo.Session, ready *discordgo.Ready) {

	log.Info().Msg(fmt.Sprintf("Logged in as %s", ready.User.Username))

	// Sync the slash commands
	registered, err := discord.ApplicationCommandBulkOverwrite(ready.User.ID, bot.guildId, CommandDefinitions())
	if err != nil {
		log.Error().Err(err).Msg("Failed to sync commands")
		return
	}
	log.Info().Msg(fmt.Sprintf("Synced %d command(s)", len(registered)))
}

func (bot *Bot) Receive(ctx context.Context, discord *discordgo.Session, interaction *discordgo.InteractionCreate) {

	// Only slash commands are handled
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}
	user := invoker(interaction.Interaction)
	if user == nil {
		log.Warn().Msg("Ignoring interaction without a user")
		return
	}

	data := interaction.ApplicationCommandData()
	log.Debug().Msg(fmt.Sprintf("Received command %s from %s", data.Name, user.Username))
	parseResult := Parse(data)
	if parseResult.parseid != PARSEID_OK {
		log.Info().Msg(fmt.Sprintf("Wrong input for %s. Reason: %s", data.Name, parseResult.errorMessage))
		sendResponses(discord, interaction.Interaction, InputNotValid(parseResult.errorMessage), false)
		return
	}

	// Lookups answer late, everything else right away
	if parseResult.command == COMMAND_LOOKUP {
		switch arguments := parseResult.arguments.(type) {
		default:
			panic(fmt.Sprintf("unexpected type of lookup arguments %T", arguments))
		case LookupArguments:
			bot.receiveLookup(ctx, discord, interaction.Interaction, arguments)
		}
		return
	}
	sendResponses(discord, interaction.Interaction, bot.Dispatch(user, parseResult), false)
}

// Run the handler of an immediate command
func (bot *Bot) Dispatch(user *discordgo.User, parseResult ParseResult) []Response {

	switch parseResult.command {
	case COMMAND_HELLO:
		return bot.hello(user)
	case COMMAND_AWARD_TOKEN:
		switch arguments := parseResult.arguments.(type) {
		default:
			panic(fmt.Sprintf("unexpected type of award arguments %T", arguments))
		case AwardTokenArguments:
			return bot.awardToken(user, arguments)
		}
	case COMMAND_LOG_KILL:
		switch arguments := parseResult.arguments.(type) {
		default:
			panic(fmt.Sprintf("unexpected type of kill arguments %T", arguments))
		case LogKillArguments:
			return bot.logKill(user, arguments)
		}
	case COMMAND_KILL_STATS:
		return bot.killStats()
	case COMMAND_TOKENS:
		switch arguments := parseResult.arguments.(type) {
		default:
			panic(fmt.Sprintf("unexpected type of tokens arguments %T", arguments))
		case TokensArguments:
			return bot.tokens(user, arguments)
		}
	case COMMAND_HELP:
		return HelpMessage()
	default:
		panic(fmt.Sprintf("Command %d is not one of the immediate ones", parseResult.command))
	}
}

func (bot *Bot) receiveLookup(ctx context.Context, discord *discordgo.Session, interaction *discordgo.Interaction, arguments LookupArguments) {

	if throttled := bot.throttleLookup(); throttled != nil {
		sendResponses(discord, interaction, throttled, false)
		return
	}

	// The scrape takes longer than discord waits for an answer
	err := discord.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Error().Err(err).Msg("Could not defer lookup response")
		return
	}
	sendResponses(discord, interaction, bot.lookup(ctx, arguments), true)
}

func sendResponses(discord *discordgo.Session, interaction *discordgo.Interaction, responses []Response, deferred bool) {
	for index, response := range responses {
		if index == 0 && !deferred {
			response.Respond(discord, interaction)
		} else {
			response.Followup(discord, interaction)
		}
	}
}

func (bot *Bot) hello(user *discordgo.User) []Response {
	return Hello(user.Username)
}

func (bot *Bot) awardToken(user *discordgo.User, arguments AwardTokenArguments) []Response {

	if err := bot.database.RecordTokenAward(arguments.RecipientId, user.Username, arguments.Reason); err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Could not award token to %d", arguments.RecipientId))
		return SaveFailed()
	}
	log.Info().Msg(fmt.Sprintf("%s awarded a token to %d", user.Username, arguments.RecipientId))
	return TokenAwarded(arguments.RecipientId, user.Username, arguments.Reason)
}

func (bot *Bot) logKill(user *discordgo.User, arguments LogKillArguments) []Response {

	if arguments.ShipKilled == "" || arguments.PilotKilled == "" {
		return KillFieldsRequired()
	}
	killerId, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("User id %s is not a snowflake", user.ID))
		return SaveFailed()
	}

	if err := bot.database.RecordKill(killerId, arguments.ShipKilled, arguments.PilotKilled); err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Could not log kill of %s", user.Username))
		return SaveFailed()
	}
	log.Info().Msg(fmt.Sprintf("Kill logged for %s", user.Username))
	return KillLogged(user.Username, arguments.ShipKilled, arguments.PilotKilled)
}

func (bot *Bot) killStats() []Response {

	stats, err := bot.database.KillStats()
	if err != nil {
		log.Error().Err(err).Msg("Could not read kill stats")
		return ReadFailed()
	}
	return KillStats(stats)
}

func (bot *Bot) tokens(user *discordgo.User, arguments TokensArguments) []Response {

	// Default to the invoking user
	userId := arguments.UserId
	if userId == 0 {
		var err error
		if userId, err = strconv.ParseInt(user.ID, 10, 64); err != nil {
			log.Error().Msg(fmt.Sprintf("User id %s is not a snowflake", user.ID))
			return ReadFailed()
		}
	}

	count, err := bot.database.TokenCount(userId)
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Could not count tokens of %d", userId))
		return ReadFailed()
	}
	awards, err := bot.database.TokenAwards(userId, recentAwards)
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Could not read tokens of %d", userId))
		return ReadFailed()
	}
	return TokenSummary(userId, count, awards)
}

// Nil if the lookup may go ahead
func (bot *Bot) throttleLookup() []Response {
	if bot.lookupLimiter == nil {
		return nil
	}
	if analysis := bot.lookupLimiter.Allow(); !analysis.Allowed() {
		return LookupThrottled(analysis.Wait())
	}
	return nil
}

func (bot *Bot) lookup(ctx context.Context, arguments LookupArguments) []Response {

	profile, err := bot.scraper.Lookup(ctx, arguments.Handle)
	if err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Error during lookup of %s", arguments.Handle))
		return LookupFailed()
	}
	return Profile(profile)
}

// Guild interactions carry the member, direct messages the user
func invoker(interaction *discordgo.Interaction) *discordgo.User {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User
	}
	return interaction.User
}
