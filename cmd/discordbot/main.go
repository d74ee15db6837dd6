/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"

	"github.com/mikeb26/donuts/internal"
	"github.com/mikeb26/donuts/internal/config"
)

var (
	cfg          *config.Config
	client       *discordgo.Session
	botPubKey    ed25519.PublicKey
	rosterClient = http.DefaultClient
)

type TopLevelCommand string

const (
	DonutCmd TopLevelCommand = "donut"
)

type CmdHandler func(ctx context.Context,
	i *discordgo.Interaction) *discordgo.InteractionResponse

var topLevelCmdHdlrs = map[TopLevelCommand]CmdHandler{
	DonutCmd: donutCmdHandler,
}

func interactionHandler(w http.ResponseWriter, r *http.Request) {
	if !discordgo.VerifyInteraction(r, botPubKey) {
		log.Printf("discordbot.int: failed to verify")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("discordbot.int: failed to read request body: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var inter discordgo.Interaction
	if err := inter.UnmarshalJSON(body); err != nil {
		log.Printf("discordbot.int: failed to unmarshal interaction: err:%v body:%v",
			err, body)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	resp := dispatch(r.Context(), &inter)
	if resp == nil {
		log.Printf("discordbot.int: unimplemented interation type %v: inter:%v",
			inter.Type, inter)
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	rawResp, err := json.Marshal(resp)
	if err != nil {
		log.Printf("discordbot.int: failed to marshal resp: err:%v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if _, err = w.Write(rawResp); err != nil {
		log.Printf("discordbot.int: failed to write resp: err:%v", err)
	}
}

// dispatch returns the response to inter, or nil for interaction types the
// bot does not handle.
func dispatch(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	switch inter.Type {
	case discordgo.InteractionPing:
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponsePong,
		}
	case discordgo.InteractionApplicationCommand:
		name := inter.ApplicationCommandData().Name
		hdlr, ok := topLevelCmdHdlrs[TopLevelCommand(name)]
		if !ok {
			return &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: &discordgo.InteractionResponseData{
					Content: fmt.Sprintf("unknown command '%v'", name),
					Flags:   discordgo.MessageFlagsEphemeral,
				},
			}
		}
		return hdlr(ctx, inter)
	}

	return nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func newRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/DiscordBot/Interaction", interactionHandler).
		Methods(http.MethodPost)
	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)

	return r
}

func initBot(ctx context.Context) {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))

	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("discordbot.init: invalid configuration: %v", err)
	}
	if err := cfg.RequireDiscord(); err != nil {
		log.Fatalf("discordbot.init: %v", err)
	}

	pubKeyBytes, err := hex.DecodeString(cfg.DiscordPublicKey)
	if err != nil {
		log.Fatalf("discordbot.init: Failed to parse public key: %v", err)
	}
	botPubKey = ed25519.PublicKey(pubKeyBytes)

	client, err = discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatalf("dicordbot.init: Failed to initialize discord client: %v", err)
	}

	rosterClient = internal.NewCachedHttpClient(ctx, cfg.CacheBucket,
		internal.RosterCacheMaxAge)
}

func cmdHash(cmd *discordgo.ApplicationCommand) (string, error) {
	cmdJson, err := json.Marshal(cmd)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(cmdJson)

	return hex.EncodeToString(hash[:]), nil
}

func shouldUpdateCmdRegistration(cmd *discordgo.ApplicationCommand) bool {
	hexString, err := cmdHash(cmd)
	if err != nil {
		log.Printf("discordbot.reg: failed to marshal cmd: %v", err)
		return false
	}

	shouldUpdate := (hexString != cfg.DonutCmdHash)
	if shouldUpdate {
		log.Printf("discordbot.reg: updating cmd reg; please set DONUTS_CMD_HASH to %v",
			hexString)
	}

	return shouldUpdate
}

func registerSlashCommands() {
	donutCmd := donutCommand()

	if cfg.DonutCmdID == "" {
		cmd, err := client.ApplicationCommandCreate(cfg.DiscordAppID, "", donutCmd)
		if err != nil {
			log.Printf("discordbot.reg: failed to register %v: %v", donutCmd.Name,
				err)
			return
		}

		log.Printf("discordbot.reg: registered %v(cmdID:%v); please set DONUTS_CMD_ID",
			cmd.Name, cmd.ID)
	} else if shouldUpdateCmdRegistration(donutCmd) {
		cmd, err := client.ApplicationCommandEdit(cfg.DiscordAppID, "",
			cfg.DonutCmdID, donutCmd)
		if err != nil {
			log.Printf("discordbot.reg: failed to update %v: %v", donutCmd.Name,
				err)
			return
		}

		log.Printf("discordbot.reg: updated %v(cmdID:%v)", cmd.Name, cmd.ID)
	}
}

func main() {
	ctx := context.Background()
	initBot(ctx)

	go registerSlashCommands()

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	log.Printf("discordbot.main: starting server on %v%v", hostname,
		cfg.ListenAddr)

	if err := http.ListenAndServe(cfg.ListenAddr, newRouter()); err != nil {
		log.Fatalf("discordbot.main: Serve failed: %v", err)
	}

	log.Printf("discordbot.main: exiting")
}
