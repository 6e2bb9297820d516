package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const (
	COMMAND_HELLO       = iota
	COMMAND_AWARD_TOKEN = iota
	COMMAND_LOG_KILL    = iota
	COMMAND_KILL_STATS  = iota
	COMMAND_LOOKUP      = iota
	COMMAND_TOKENS      = iota
	COMMAND_HELP        = iota
)

var commands map[string]int = map[string]int{
	"hello":       COMMAND_HELLO,
	"award_token": COMMAND_AWARD_TOKEN,
	"logkill":     COMMAND_LOG_KILL,
	"killstats":   COMMAND_KILL_STATS,
	"lookup":      COMMAND_LOOKUP,
	"tokens":      COMMAND_TOKENS,
	"help":        COMMAND_HELP,
}

const (
	PARSEID_OK                     = iota
	PARSEID_COMMAND_NOT_RECOGNISED = iota
	PARSEID_MISSING_FIELDS         = iota
	PARSEID_NOT_A_USER             = iota
)

var errorMessages map[int]string = map[int]string{
	PARSEID_COMMAND_NOT_RECOGNISED: "Command `%s` not recognised",
	PARSEID_MISSING_FIELDS:         "%s required.",
	PARSEID_NOT_A_USER:             "`%s` is not a valid user",
}

type AwardTokenArguments struct {
	RecipientId int64
	Reason      string
}

type LogKillArguments struct {
	ShipKilled  string
	PilotKilled string
}

type LookupArguments struct {
	Handle string
}

// A zero user id means the invoking user
type TokensArguments struct {
	UserId int64
}

type ParseResult struct {
	command      int
	parseid      int
	errorMessage string
	arguments    interface{}
}

func Parse(data discordgo.ApplicationCommandInteractionData) ParseResult {

	command, ok := commands[data.Name]
	if !ok {
		parseid := PARSEID_COMMAND_NOT_RECOGNISED
		return ParseResult{parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], data.Name)}
	}
	options := optionMap(data.Options)

	switch command {
	case COMMAND_AWARD_TOKEN:
		// /award_token <user> <reason>
		recipient, reason := options["user"], stringOption(options["reason"])
		if recipient == nil || reason == "" {
			return missingFields(command, "'user'", "'reason'")
		}
		recipientId, err := parseUserId(userOption(recipient))
		if err != nil {
			return notAUser(command, userOption(recipient))
		}
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: AwardTokenArguments{recipientId, reason}}
	case COMMAND_LOG_KILL:
		// /logkill <ship_killed> <pilot_killed>
		// Emptiness is checked by the handler, right before the insert
		ship, pilot := stringOption(options["ship_killed"]), stringOption(options["pilot_killed"])
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: LogKillArguments{ship, pilot}}
	case COMMAND_LOOKUP:
		// /lookup <rsi_handle>
		handle := strings.TrimSpace(stringOption(options["rsi_handle"]))
		if handle == "" {
			return missingFields(command, "'rsi_handle'")
		}
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: LookupArguments{handle}}
	case COMMAND_TOKENS:
		// /tokens [user]
		var arguments TokensArguments
		if user, ok := options["user"]; ok {
			userId, err := parseUserId(userOption(user))
			if err != nil {
				return notAUser(command, userOption(user))
			}
			arguments.UserId = userId
		}
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: arguments}
	default:
		// Commands without arguments
		return ParseResult{command: command, parseid: PARSEID_OK}
	}
}

func missingFields(command int, fields ...string) ParseResult {
	log.Debug().Msg(fmt.Sprintf("Missing fields %v", fields))
	parseid := PARSEID_MISSING_FIELDS
	return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], fieldList(fields))}
}

// 'a' is / Both 'a' and 'b' are
func fieldList(fields []string) string {
	if len(fields) == 1 {
		return fields[0] + " is"
	}
	return fmt.Sprintf("Both %s are", strings.Join(fields, " and "))
}

func notAUser(command int, value string) ParseResult {
	parseid := PARSEID_NOT_A_USER
	return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], value)}
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	result := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, option := range options {
		result[option.Name] = option
	}
	return result
}

func stringOption(option *discordgo.ApplicationCommandInteractionDataOption) string {
	if option == nil {
		return ""
	}
	value, _ := option.Value.(string)
	return value
}

// User options carry the snowflake of the user as a string
func userOption(option *discordgo.ApplicationCommandInteractionDataOption) string {
	return stringOption(option)
}

func parseUserId(snowflake string) (int64, error) {
	return strconv.ParseInt(snowflake, 10, 64)
}
