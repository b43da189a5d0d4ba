// Package main provides the CLI entry point for xmeta.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/exyezed/xmeta/internal/accounts"
	"github.com/exyezed/xmeta/internal/config"
	"github.com/exyezed/xmeta/internal/extract"
	"github.com/exyezed/xmeta/internal/twitter"
	"github.com/exyezed/xmeta/pkg/filesystem"
	"github.com/exyezed/xmeta/pkg/preview"
)

// CLI structure
var CLI struct {
	Config    string `help:"Configuration file path" default:"config.yaml"`
	Debug     bool   `help:"Enable debug logging" default:"false"`
	AuthToken string `help:"x.com auth_token session cookie" short:"t"`
	Output    string `help:"Output JSON file path" short:"o"`
	JSON      bool   `help:"Print raw JSON instead of a formatted summary"`

	// Unset flags fall back to the config file values; the defaults below are
	// "not given" sentinels resolved through config.ResolveTimeline.
	Timeline struct {
		Username  string `arg:"" help:"Account to extract: handle, @handle, profile URL or id:<rest_id>"`
		Type      string `help:"Timeline variant: media, timeline, tweets, with_replies"`
		BatchSize int    `help:"Items per page, 0 fetches everything" short:"b" default:"-1"`
		Page      int    `help:"Zero-based page number" short:"p" default:"0"`
		MediaType string `help:"Media type filter: all, image, video, gif" short:"m"`
		Retweets  *bool  `help:"Include retweets" negatable:""`
	} `cmd:"timeline" help:"Extract media metadata from a user timeline."`

	Daterange struct {
		Username    string `arg:"" help:"Account to extract: handle, @handle, profile URL or id:<rest_id>"`
		StartDate   string `help:"Start date (YYYY-MM-DD)" short:"s" required:""`
		EndDate     string `help:"End date (YYYY-MM-DD)" short:"e" required:""`
		MediaFilter string `help:"Extra search query clause" short:"f"`
	} `cmd:"daterange" help:"Extract media metadata from a date range search."`

	Preview struct {
		Username  string `arg:"" help:"Account to extract: handle, @handle, profile URL or id:<rest_id>"`
		Type      string `help:"Timeline variant: media, timeline, tweets, with_replies"`
		BatchSize int    `help:"Items to fetch" short:"b" default:"-1"`
		Page      int    `help:"Zero-based page number" short:"p" default:"0"`
		MediaType string `help:"Media type filter: all, image, video, gif" short:"m"`
		Retweets  *bool  `help:"Include retweets" negatable:""`
	} `cmd:"preview" help:"Extract a timeline page and browse it interactively."`

	Auth struct {
		SetToken struct {
			Token string `arg:"" help:"auth_token session cookie value"`
		} `cmd:"set-token" help:"Store the auth token in the config file."`
	} `cmd:"auth" help:"Manage stored credentials."`

	Accounts struct {
		List struct{} `cmd:"list" help:"List saved account snapshots."`

		Get struct {
			Username string `arg:"" help:"Saved account username"`
		} `cmd:"get" help:"Print the saved snapshot of one account."`

		Delete struct {
			Username string `arg:"" help:"Saved account username"`
		} `cmd:"delete" help:"Delete the saved snapshot of one account."`

		Export struct {
			Username string `arg:"" help:"Saved account username"`
			Dir      string `help:"Output directory" default:"."`
		} `cmd:"export" help:"Export the saved snapshot of one account to a JSON file."`

		Clear struct{} `cmd:"clear" help:"Delete all saved account snapshots."`
	} `cmd:"accounts" help:"Manage saved account snapshots."`
}

func main() {
	// Parse CLI with Kong YAML configuration file loading
	ctx := kong.Parse(&CLI,
		kong.Configuration(kongyaml.Loader, "config.yaml", "~/.xmeta/config.yaml"),
	)

	// Configure logging level based on debug flag
	if CLI.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	} else {
		slog.SetLogLoggerLevel(slog.LevelWarn)
	}

	cfg, err := config.LoadConfig(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "path", CLI.Config, "error", err)
		os.Exit(1)
	}

	authToken := CLI.AuthToken
	if authToken == "" {
		authToken = cfg.Auth.Token
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	service := extract.NewService(twitter.New())

	switch ctx.Command() {
	case "timeline <username>":
		req := timelineRequest(cfg, authToken, CLI.Timeline.Username,
			CLI.Timeline.Type, CLI.Timeline.BatchSize, CLI.Timeline.Page,
			CLI.Timeline.MediaType, CLI.Timeline.Retweets)
		fmt.Printf("Info: Extracting from %s (%s timeline)...\n", req.Username, req.TimelineType)
		resp := service.Timeline(runCtx, req)
		finishExtraction(resp, cfg)

	case "daterange <username>":
		fmt.Printf("Info: Searching %s from %s to %s...\n",
			CLI.Daterange.Username, CLI.Daterange.StartDate, CLI.Daterange.EndDate)
		resp := service.DateRange(runCtx, extract.DateRangeRequest{
			Username:    CLI.Daterange.Username,
			AuthToken:   authToken,
			StartDate:   CLI.Daterange.StartDate,
			EndDate:     CLI.Daterange.EndDate,
			MediaFilter: cfg.ResolveMediaFilter(CLI.Daterange.MediaFilter),
		})
		finishExtraction(resp, cfg)

	case "preview <username>":
		req := timelineRequest(cfg, authToken, CLI.Preview.Username,
			CLI.Preview.Type, CLI.Preview.BatchSize, CLI.Preview.Page,
			CLI.Preview.MediaType, CLI.Preview.Retweets)
		resp := service.Timeline(runCtx, req)
		if !resp.OK() {
			slog.Error("Extraction failed", "error", resp.Err)
			os.Exit(1)
		}
		if err := preview.Run(resp.Result.Timeline, resp.Result.AccountInfo.Nick); err != nil {
			slog.Error("Preview failed", "error", err)
			os.Exit(1)
		}

	case "auth set-token <token>":
		cfg.Auth.Token = CLI.Auth.SetToken.Token
		if err := config.SaveConfig(cfg, CLI.Config); err != nil {
			slog.Error("Failed to save configuration", "path", CLI.Config, "error", err)
			os.Exit(1)
		}
		fmt.Println("Success: Auth token saved")

	case "accounts list":
		listAccounts(cfg)

	case "accounts get <username>":
		getAccount(cfg, CLI.Accounts.Get.Username)

	case "accounts delete <username>":
		deleteAccount(cfg, CLI.Accounts.Delete.Username)

	case "accounts export <username>":
		exportAccount(cfg, CLI.Accounts.Export.Username, CLI.Accounts.Export.Dir)

	case "accounts clear":
		clearAccounts(cfg)

	default:
		panic(ctx.Command())
	}
}

// timelineRequest merges timeline flags with the configured defaults and
// validates the enum-valued options, exiting on an unknown value whether it
// came from a flag or the config file.
func timelineRequest(cfg *config.Config, authToken, username, kind string, batchSize, page int, mediaType string, retweets *bool) extract.TimelineRequest {
	k, batch, media, rt := cfg.ResolveTimeline(kind, batchSize, mediaType, retweets)

	timelineType := extract.TimelineKind(k)
	if !timelineType.Valid() {
		slog.Error("Invalid timeline type", "type", k)
		os.Exit(1)
	}
	filter := extract.MediaType(media)
	if !filter.Valid() {
		slog.Error("Invalid media type", "media_type", media)
		os.Exit(1)
	}

	return extract.TimelineRequest{
		Username:     username,
		AuthToken:    authToken,
		TimelineType: timelineType,
		BatchSize:    batch,
		Page:         page,
		MediaType:    filter,
		Retweets:     rt,
	}
}

// finishExtraction renders an extraction response, persists it, and exits
// non-zero when the response carries an error.
func finishExtraction(resp *extract.Response, cfg *config.Config) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		os.Exit(1)
	}

	if CLI.Output != "" {
		if err := filesystem.EnsureDirectoryExists(CLI.Output); err != nil {
			slog.Error("Failed to create output directory", "path", CLI.Output, "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(CLI.Output, data, 0644); err != nil {
			slog.Error("Failed to save output file", "path", CLI.Output, "error", err)
			os.Exit(1)
		}
		fmt.Printf("Success: Results saved to: %s\n", CLI.Output)
	}

	if CLI.JSON {
		fmt.Println(string(data))
	} else {
		fmt.Print(preview.FormatSummary(resp))
	}

	if !resp.OK() {
		os.Exit(1)
	}

	saveSnapshot(cfg, resp, data)
}

// saveSnapshot records a successful extraction in the account store. Store
// failures are logged and otherwise ignored, the extraction itself succeeded.
func saveSnapshot(cfg *config.Config, resp *extract.Response, data []byte) {
	account := resp.Result.AccountInfo
	if account == nil || account.Nick == "" {
		return
	}

	store, err := openStore(cfg)
	if err != nil {
		slog.Warn("Failed to open account store", "error", err)
		return
	}
	defer store.Close()

	rec := accounts.Record{
		Username:     account.Nick,
		Name:         account.Name,
		ProfileImage: account.ProfileImage,
		TotalMedia:   resp.Result.TotalURLs,
		ResponseJSON: string(data),
	}
	if err := store.Save(rec); err != nil {
		slog.Warn("Failed to save account snapshot", "username", account.Nick, "error", err)
		return
	}
	slog.Debug("Saved account snapshot", "username", account.Nick, "total_media", rec.TotalMedia)
}

func openStore(cfg *config.Config) (*accounts.Store, error) {
	path := cfg.Database.Path
	if path == "" {
		path = accounts.DefaultPath()
	}
	return accounts.Open(path)
}

// mustOpenStore opens the account store for the accounts subcommands, where a
// missing store is a hard failure.
func mustOpenStore(cfg *config.Config) *accounts.Store {
	store, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to open account store", "error", err)
		os.Exit(1)
	}
	return store
}

func listAccounts(cfg *config.Config) {
	store := mustOpenStore(cfg)
	defer store.Close()

	summaries, err := store.List()
	if err != nil {
		slog.Error("Failed to list accounts", "error", err)
		os.Exit(1)
	}

	if len(summaries) == 0 {
		fmt.Println("No saved accounts")
		return
	}

	for _, s := range summaries {
		fmt.Printf("@%-20s %-30s %6d media  fetched %s\n", s.Username, s.Name, s.TotalMedia, s.LastFetched)
	}
}

func getAccount(cfg *config.Config, username string) {
	store := mustOpenStore(cfg)
	defer store.Close()

	rec, err := store.Get(username)
	if err != nil {
		slog.Error("Failed to fetch account", "username", username, "error", err)
		os.Exit(1)
	}

	if CLI.JSON {
		fmt.Println(rec.ResponseJSON)
		return
	}

	var resp extract.Response
	if err := json.Unmarshal([]byte(rec.ResponseJSON), &resp); err != nil {
		slog.Error("Failed to decode saved snapshot", "username", username, "error", err)
		os.Exit(1)
	}
	fmt.Print(preview.FormatSummary(&resp))
}

func deleteAccount(cfg *config.Config, username string) {
	store := mustOpenStore(cfg)
	defer store.Close()

	if err := store.Delete(username); err != nil {
		slog.Error("Failed to delete account", "username", username, "error", err)
		os.Exit(1)
	}
	fmt.Printf("Success: Deleted account: %s\n", username)
}

func exportAccount(cfg *config.Config, username, dir string) {
	store := mustOpenStore(cfg)
	defer store.Close()

	path, err := store.Export(username, dir)
	if err != nil {
		slog.Error("Failed to export account", "username", username, "error", err)
		os.Exit(1)
	}
	fmt.Printf("Success: Results saved to: %s\n", path)
}

func clearAccounts(cfg *config.Config) {
	store := mustOpenStore(cfg)
	defer store.Close()

	deleted, err := store.Clear()
	if err != nil {
		slog.Error("Failed to clear accounts", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Success: Deleted %d saved accounts\n", deleted)
}
