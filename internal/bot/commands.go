package bot

import "github.com/bwmarrin/discordgo"

// Longest ship or pilot name accepted, so that stats fit in a message
const maxNameLength = 100

// Slash commands as registered in discord
func CommandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "hello",
			Description: "Say hello to the bot",
		},
		{
			Name:        "award_token",
			Description: "Award a token to a member of the community",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The member receiving the token",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Why the token is awarded",
					Required:    true,
				},
			},
		},
		{
			Name:        "tokens",
			Description: "Show the tokens awarded to a member",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The member to look at (yourself by default)",
					Required:    false,
				},
			},
		},
		{
			Name:        "logkill",
			Description: "Log a kill",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "ship_killed",
					Description: "The name of the ship killed",
					Required:    true,
					MaxLength:   maxNameLength,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "pilot_killed",
					Description: "The name of the pilot killed",
					Required:    true,
					MaxLength:   maxNameLength,
				},
			},
		},
		{
			Name:        "killstats",
			Description: "Show kill statistics",
		},
		{
			Name:        "lookup",
			Description: "Look up an RSI user profile by RSI Handle",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "rsi_handle",
					Description: "The RSI handle of the citizen",
					Required:    true,
				},
			},
		},
		{
			Name:        "help",
			Description: "Print the usage of the different commands",
		},
	}
}
