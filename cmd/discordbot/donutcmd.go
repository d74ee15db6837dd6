/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mikeb26/donuts/donut"
	"github.com/mikeb26/donuts/history"
	"github.com/mikeb26/donuts/roster"
)

type DonutSubCommand string

const (
	DonutAboutCmd    DonutSubCommand = "about"
	DonutHelpCmd     DonutSubCommand = "help"
	DonutCapacityCmd DonutSubCommand = "capacity"
	DonutPairCmd     DonutSubCommand = "pair"
)

// Discord caps the rounds a single preview can show
const maxPreviewMeets = 12

// capacity must answer within discord's 3s interaction deadline
const maxCapacityParticipants = 500

var donutSubCmdHdlrs = map[DonutSubCommand]CmdHandler{
	DonutAboutCmd:    donutAboutCmdHandler,
	DonutHelpCmd:     donutHelpCmdHandler,
	DonutCapacityCmd: donutCapacityCmdHandler,
	DonutPairCmd:     donutPairCmdHandler,
}

func donutCommand() *discordgo.ApplicationCommand {
	broadcastOpt := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        "broadcast",
		Description: "Share with the rest of the channel instead of only to you (default is false)",
		Required:    false,
	}

	return &discordgo.ApplicationCommand{
		Name:        string(DonutCmd),
		Description: "Donut pairing commands; try /donut help to start",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(DonutHelpCmd),
				Description: "Show usage for donut",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(DonutAboutCmd),
				Description: "Show information about donuts",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(DonutCapacityCmd),
				Description: "Show how many rounds a group size supports",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "participants",
						Description: "Number of participants",
						Required:    true,
					},
					broadcastOpt,
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(DonutPairCmd),
				Description: "Preview pairings for a roster web page",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "roster",
						Description: "URL of a page listing the participants",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "meets",
						Description: "Number of rounds to schedule",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "seed",
						Description: "Seed for the initial shuffle (default is 1)",
						Required:    false,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "selector",
						Description: "CSS selector for the names on the page",
						Required:    false,
					},
					broadcastOpt,
				},
			},
		},
	}
}

func donutCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	data := inter.ApplicationCommandData()
	hdlr := donutHelpCmdHandler
	if len(data.Options) > 0 {
		if subName := data.Options[0].Name; subName != "" {
			h, ok := donutSubCmdHdlrs[DonutSubCommand(subName)]
			if ok {
				hdlr = h
			}
		}
	}
	return hdlr(ctx, inter)
}

// subCmdOptions returns the options of the invoked subcommand by name
func subCmdOptions(
	inter *discordgo.Interaction) map[string]*discordgo.ApplicationCommandInteractionDataOption {

	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	data := inter.ApplicationCommandData()
	if len(data.Options) > 0 {
		for _, opt := range data.Options[0].Options {
			opts[opt.Name] = opt
		}
	}

	return opts
}

func newEphemeralResponse() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}
}

func applyBroadcast(resp *discordgo.InteractionResponse,
	opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {

	if opt, ok := opts["broadcast"]; ok && opt.BoolValue() {
		resp.Data.Flags = 0
	}
}

//go:embed about.txt
var aboutText string

func donutAboutCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newEphemeralResponse()
	resp.Data.Content = truncateContent(aboutText)

	return resp
}

//go:embed help.md
var helpText string

func donutHelpCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newEphemeralResponse()
	resp.Data.Content = truncateContent(helpText)

	return resp
}

func donutCapacityCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newEphemeralResponse()
	opts := subCmdOptions(inter)
	opt, ok := opts["participants"]
	if !ok {
		resp.Data.Content = "Please provide the number of participants."
		log.Printf("discordbot.capacity: %v", resp.Data.Content)
		return resp
	}
	n := int(opt.IntValue())
	if n > maxCapacityParticipants {
		resp.Data.Content = fmt.Sprintf("Please provide at most %d participants.",
			maxCapacityParticipants)
		log.Printf("discordbot.capacity: %v", resp.Data.Content)
		return resp
	}

	capacity, err := donut.Capacity(donut.Identity(n))
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Cannot pair %d participants: %v", n, err)
		log.Printf("discordbot.capacity: %v", resp.Data.Content)
		return resp
	}
	resp.Data.Content = fmt.Sprintf("%d participants can meet for %d rounds before anyone meets twice.",
		n, capacity)
	applyBroadcast(resp, opts)

	return resp
}

// donutPairCmdHandler handles the /donut pair command to preview pairings
// for a roster page
func donutPairCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newEphemeralResponse()
	opts := subCmdOptions(inter)
	rosterOpt, okRoster := opts["roster"]
	meetsOpt, okMeets := opts["meets"]
	if !okRoster || !okMeets {
		resp.Data.Content = "Please provide a roster URL and number of meets."
		log.Printf("discordbot.pair: %v", resp.Data.Content)
		return resp
	}
	url := strings.TrimSpace(rosterOpt.StringValue())
	meets := int(meetsOpt.IntValue())
	// enforce bounds
	if meets <= 0 {
		meets = 1
	} else if meets > maxPreviewMeets {
		meets = maxPreviewMeets
	}
	seed := int64(1) // default
	if opt, ok := opts["seed"]; ok {
		seed = opt.IntValue()
	}
	selector := roster.DefaultSelector
	if opt, ok := opts["selector"]; ok && opt.StringValue() != "" {
		selector = opt.StringValue()
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		resp.Data.Content = "Please provide an http(s) roster URL."
		log.Printf("discordbot.pair: %v", resp.Data.Content)
		return resp
	}

	names, err := roster.FetchPage(ctx, rosterClient, url, selector)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error fetching roster %v: %v", url, err)
		log.Printf("discordbot.pair: %v", resp.Data.Content)
		return resp
	}
	if len(names) > maxCapacityParticipants {
		resp.Data.Content = fmt.Sprintf("Roster %v lists %d participants; at most %d are supported.",
			url, len(names), maxCapacityParticipants)
		log.Printf("discordbot.pair: %v", resp.Data.Content)
		return resp
	}

	v, err := historyValidator(ctx, names)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error loading meeting history: %v", err)
		log.Printf("discordbot.pair: %v", resp.Data.Content)
		return resp
	}

	sched, err := donut.PlanWithValidator(v,
		roster.Arrangement(len(names), seed), meets)
	if errors.Is(err, donut.ErrScheduleInfeasible) {
		resp.Data.Content = fmt.Sprintf("%d rounds for %d participants would repeat a pairing; lower the number of meets.",
			meets, len(names))
		log.Printf("discordbot.pair: %v: %v", resp.Data.Content, err)
		return resp
	} else if err != nil {
		resp.Data.Content = fmt.Sprintf("Cannot pair roster %v: %v", url, err)
		log.Printf("discordbot.pair: %v", resp.Data.Content)
		return resp
	}

	// Wrap output in code block for monospace formatting in Discord
	resp.Data.Content = fmt.Sprintf("```\n%s```",
		truncateContent(donut.BuildScheduleOutput(sched, names, nil)))
	applyBroadcast(resp, opts)

	return resp
}

// historyValidator returns a validator seeded with the configured meeting
// history, or a fresh one when no history is configured.
func historyValidator(ctx context.Context,
	names []string) (*donut.Validator, error) {

	if cfg == nil || cfg.HistoryURI == "" {
		return donut.NewValidator(), nil
	}
	store, err := history.Open(ctx, cfg.HistoryURI)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	seen, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	return seen.Validator(names), nil
}

// https://discord.com/developers/docs/resources/channel#start-thread-in-forum-or-media-channel-forum-and-media-thread-message-params-object
// limits messages to 2k characters
func truncateContent(s string) string {
	const MsgLimit = 1988 // keep space for newlines and markdown
	runes := []rune(s)
	if len(runes) > MsgLimit {
		s = fmt.Sprintf("%v...", string(runes[:MsgLimit]))
	}
	return s
}
