/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func newDonutInteraction(sub string,
	opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {

	return &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{
			Name: string(DonutCmd),
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{
					Name:    sub,
					Type:    discordgo.ApplicationCommandOptionSubCommand,
					Options: opts,
				},
			},
		},
	}
}

func intOpt(name string, v int) *discordgo.ApplicationCommandInteractionDataOption {
	// discord delivers integer options as json numbers
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(v),
	}
}

func stringOpt(name string, v string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: v,
	}
}

func boolOpt(name string, v bool) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionBoolean,
		Value: v,
	}
}

func TestDonutHelpCmdHandler(t *testing.T) {
	ctx := context.Background()

	// no subcommand falls back to help
	inter := &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    string(DonutCmd),
			Options: []*discordgo.ApplicationCommandInteractionDataOption{},
		},
	}
	resp := donutCmdHandler(ctx, inter)
	if resp == nil || resp.Data == nil {
		t.Fatal("Expected non-nil response")
	}
	if resp.Type != discordgo.InteractionResponseChannelMessageWithSource {
		t.Errorf("Expected response type %v, got %v",
			discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	}
	if resp.Data.Content != helpText {
		t.Errorf("Expected help text, got %q", resp.Data.Content)
	}
	if resp.Data.Flags != discordgo.MessageFlagsEphemeral {
		t.Errorf("Expected ephemeral response")
	}

	resp = donutCmdHandler(ctx, newDonutInteraction(string(DonutAboutCmd)))
	if resp.Data.Content != aboutText {
		t.Errorf("Expected about text, got %q", resp.Data.Content)
	}
}

func TestDonutCapacityCmdHandler(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		opts      []*discordgo.ApplicationCommandInteractionDataOption
		want      string
		ephemeral bool
	}{
		{
			name:      "even",
			opts:      []*discordgo.ApplicationCommandInteractionDataOption{intOpt("participants", 6)},
			want:      "6 participants can meet for 5 rounds",
			ephemeral: true,
		},
		{
			name: "broadcast",
			opts: []*discordgo.ApplicationCommandInteractionDataOption{
				intOpt("participants", 4), boolOpt("broadcast", true)},
			want:      "4 participants can meet for 3 rounds",
			ephemeral: false,
		},
		{
			name:      "degenerate",
			opts:      []*discordgo.ApplicationCommandInteractionDataOption{intOpt("participants", 1)},
			want:      "Cannot pair 1 participants",
			ephemeral: true,
		},
		{
			name:      "negative",
			opts:      []*discordgo.ApplicationCommandInteractionDataOption{intOpt("participants", -1)},
			want:      "Cannot pair -1 participants",
			ephemeral: true,
		},
		{
			name: "over limit",
			opts: []*discordgo.ApplicationCommandInteractionDataOption{
				intOpt("participants", maxCapacityParticipants+1)},
			want:      "Please provide at most 500 participants.",
			ephemeral: true,
		},
		{
			name:      "missing",
			want:      "Please provide the number of participants.",
			ephemeral: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inter := newDonutInteraction(string(DonutCapacityCmd), tc.opts...)
			resp := donutCmdHandler(ctx, inter)
			if resp == nil || resp.Data == nil {
				t.Fatal("Expected non-nil response")
			}
			if !strings.HasPrefix(resp.Data.Content, tc.want) {
				t.Errorf("Expected content to start with %q, got %q", tc.want,
					resp.Data.Content)
			}
			ephemeral := resp.Data.Flags == discordgo.MessageFlagsEphemeral
			if ephemeral != tc.ephemeral {
				t.Errorf("Expected ephemeral=%v, got flags %v", tc.ephemeral,
					resp.Data.Flags)
			}
		})
	}
}

func TestDonutPairCmdHandler(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter,
		r *http.Request) {

		fmt.Fprint(w, `<html><body><table>
<tr><td>Ann</td><td>1</td></tr>
<tr><td>Bob</td><td>2</td></tr>
<tr><td>Cat</td><td>3</td></tr>
<tr><td>Dan</td><td>4</td></tr>
</table></body></html>`)
	}))
	defer server.Close()

	savedClient := rosterClient
	rosterClient = server.Client()
	defer func() { rosterClient = savedClient }()

	inter := newDonutInteraction(string(DonutPairCmd),
		stringOpt("roster", server.URL), intOpt("meets", 3))
	resp := donutCmdHandler(ctx, inter)
	if resp == nil || resp.Data == nil {
		t.Fatal("Expected non-nil response")
	}
	content := resp.Data.Content
	if !strings.HasPrefix(content, "```\n") || !strings.HasSuffix(content, "```") {
		t.Errorf("Expected a code block, got %q", content)
	}
	for _, want := range []string{"Round 1", "Round 2", "Round 3", "Ann", "Dan"} {
		if !strings.Contains(content, want) {
			t.Errorf("Expected %q in %q", want, content)
		}
	}
	if strings.Contains(content, "Round 4") {
		t.Errorf("Expected only 3 rounds, got %q", content)
	}

	// 4 participants cannot meet 4 times without a repeat
	inter = newDonutInteraction(string(DonutPairCmd),
		stringOpt("roster", server.URL), intOpt("meets", 4))
	resp = donutCmdHandler(ctx, inter)
	if !strings.Contains(resp.Data.Content, "would repeat a pairing") {
		t.Errorf("Expected infeasible response, got %q", resp.Data.Content)
	}

	inter = newDonutInteraction(string(DonutPairCmd),
		stringOpt("roster", "ftp://example.com"), intOpt("meets", 1))
	resp = donutCmdHandler(ctx, inter)
	if resp.Data.Content != "Please provide an http(s) roster URL." {
		t.Errorf("Expected URL rejection, got %q", resp.Data.Content)
	}

	inter = newDonutInteraction(string(DonutPairCmd), intOpt("meets", 1))
	resp = donutCmdHandler(ctx, inter)
	if resp.Data.Content != "Please provide a roster URL and number of meets." {
		t.Errorf("Expected missing option response, got %q", resp.Data.Content)
	}
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()

	resp := dispatch(ctx, &discordgo.Interaction{Type: discordgo.InteractionPing})
	if resp == nil || resp.Type != discordgo.InteractionResponsePong {
		t.Errorf("Expected pong, got %v", resp)
	}

	resp = dispatch(ctx, &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{Name: "chess"},
	})
	if resp == nil || resp.Data == nil ||
		resp.Data.Content != "unknown command 'chess'" {
		t.Errorf("Expected unknown command response, got %v", resp)
	}

	resp = dispatch(ctx, &discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{},
	})
	if resp != nil {
		t.Errorf("Expected nil response for a component interaction, got %v", resp)
	}
}

func TestTruncateContent(t *testing.T) {
	short := "hello"
	if got := truncateContent(short); got != short {
		t.Errorf("truncateContent(%q) = %q", short, got)
	}
	long := strings.Repeat("é", 3000)
	got := []rune(truncateContent(long))
	if len(got) != 1991 || string(got[1988:]) != "..." {
		t.Errorf("Expected 1988 runes plus ellipsis, got %v runes", len(got))
	}
}

func TestDonutCommandHash(t *testing.T) {
	h1, err := cmdHash(donutCommand())
	if err != nil {
		t.Fatalf("cmdHash returned error: %v", err)
	}
	h2, _ := cmdHash(donutCommand())
	if h1 != h2 || len(h1) != 64 {
		t.Errorf("Expected a stable sha256 hex digest, got %v and %v", h1, h2)
	}
}
