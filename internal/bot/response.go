package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

type ResponseString struct {
	string
}
type ResponseEmbed struct {
	discordgo.MessageEmbed
}

// A response is either the first answer to an interaction
// or a followup message once the interaction has been answered or deferred
type Response interface {
	Respond(discord *discordgo.Session, interaction *discordgo.Interaction)
	Followup(discord *discordgo.Session, interaction *discordgo.Interaction)
}

func (response ResponseString) Respond(discord *discordgo.Session, interaction *discordgo.Interaction) {
	respond(discord, interaction, &discordgo.InteractionResponseData{Content: response.string})
}

func (response ResponseString) Followup(discord *discordgo.Session, interaction *discordgo.Interaction) {
	followup(discord, interaction, &discordgo.WebhookParams{Content: response.string})
}

func (response ResponseEmbed) Respond(discord *discordgo.Session, interaction *discordgo.Interaction) {
	respond(discord, interaction, &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{&response.MessageEmbed}})
}

func (response ResponseEmbed) Followup(discord *discordgo.Session, interaction *discordgo.Interaction) {
	followup(discord, interaction, &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{&response.MessageEmbed}})
}

func respond(discord *discordgo.Session, interaction *discordgo.Interaction, data *discordgo.InteractionResponseData) {
	err := discord.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Error().Err(err).Msg("Could not respond to interaction")
	}
}

func followup(discord *discordgo.Session, interaction *discordgo.Interaction, params *discordgo.WebhookParams) {
	if _, err := discord.FollowupMessageCreate(interaction, true, params); err != nil {
		log.Error().Err(err).Msg("Could not send followup message")
	}
}
