package bot

import (
	"fmt"
	"math"
	"time"

	"tokentrackr/internal/rsi"

	"github.com/bwmarrin/discordgo"
)

// Use "gold" color for the bot
const color int = 0xd4af37

// Discord rejects messages longer than this
const maxMessageLength = 2000

func Hello(name string) []Response {
	return []Response{ResponseString{fmt.Sprintf("Hello, %s!", name)}}
}

func InputNotValid(errorMessage string) []Response {
	return []Response{ResponseString{fmt.Sprintf("Input not valid: \n> %s", errorMessage)}}
}

func HelpMessage() []Response {

	embed := discordgo.MessageEmbed{Title: "Commands available", Color: color}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`/award_token <user> <reason>`",
		Value:  "Award a token to a member of the community",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`/tokens [user]`",
		Value:  "Show how many tokens a member has received and why",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`/logkill <ship_killed> <pilot_killed>`",
		Value:  "Log a kill in the kill log",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`/killstats`",
		Value:  "Print the number of kills per pilot and ship",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`/lookup <rsi_handle>`",
		Value:  "Look up an RSI citizen profile",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`/hello`",
		Value:  "Say hello to the bot",
		Inline: false,
	})
	return []Response{ResponseEmbed{embed}}
}

func TokenAwarded(recipientId int64, awardedBy string, reason string) []Response {
	return []Response{ResponseString{fmt.Sprintf("Token awarded to <@%d> by %s: %s", recipientId, awardedBy, reason)}}
}

func TokenSummary(userId int64, count int, awards []TokenAward) []Response {

	if count == 0 {
		return []Response{ResponseString{fmt.Sprintf("<@%d> has not received any tokens yet.", userId)}}
	}
	embed := discordgo.MessageEmbed{
		Title:       "Tokens",
		Description: fmt.Sprintf("<@%d> has received %d %s", userId, count, plural(count, "token", "tokens")),
		Color:       color,
	}
	for _, award := range awards {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("From %s, %s", award.AwardedBy, award.Timestamp.Format(time.DateOnly)),
			Value:  award.Reason,
			Inline: false,
		})
	}
	return []Response{ResponseEmbed{embed}}
}

func KillFieldsRequired() []Response {
	return []Response{ResponseString{"Both 'ship_killed' and 'pilot_killed' are required."}}
}

func KillLogged(killer string, shipKilled string, pilotKilled string) []Response {
	return []Response{ResponseString{fmt.Sprintf("Kill logged: %s killed %s in their %s.", killer, pilotKilled, shipKilled)}}
}

func NoKillData() []Response {
	return []Response{ResponseString{"No kill data available."}}
}

// One block per stat, split in as many messages as needed
func KillStats(stats []KillStat) []Response {

	if len(stats) == 0 {
		return NoKillData()
	}
	responses := []Response{}
	content := "Kill Stats:\n"
	blocks := 0
	for _, stat := range stats {
		block := KillStatBlock(stat)
		// Never send a message without any stat in it
		if blocks > 0 && len(content)+len(block) > maxMessageLength {
			responses = append(responses, ResponseString{content})
			content = ""
			blocks = 0
		}
		content += block
		blocks++
	}
	return append(responses, ResponseString{content})
}

func KillStatBlock(stat KillStat) string {
	return fmt.Sprintf("User ID: %d\n  Ship: %s\n  Pilot: %s\n  Kills: %d\n\n", stat.KillerId, stat.ShipKilled, stat.PilotKilled, stat.Kills)
}

func Profile(profile rsi.Profile) []Response {
	content := fmt.Sprintf("**RSI Handle:** %s\n", profile.Handle)
	content += fmt.Sprintf("Bio: %s\n", profile.Bio)
	content += fmt.Sprintf("Avatar: %s\n", profile.AvatarURL)
	content += fmt.Sprintf("[Profile Link](%s)", profile.SourceURL)
	return []Response{ResponseString{content}}
}

func LookupFailed() []Response {
	return []Response{ResponseString{"An error occurred while fetching the profile. Please try again later."}}
}

func LookupThrottled(wait time.Duration) []Response {
	return []Response{ResponseString{fmt.Sprintf("Too many lookups right now, try again in %ds.", int(math.Ceil(wait.Seconds())))}}
}

func SaveFailed() []Response {
	return []Response{ResponseString{"Something went wrong while saving, please try again later."}}
}

func ReadFailed() []Response {
	return []Response{ResponseString{"Something went wrong while reading the records, please try again later."}}
}

func plural(count int, singular string, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}
