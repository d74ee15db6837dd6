/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mikeb26/donuts/donut"
	"github.com/mikeb26/donuts/history"
	"github.com/mikeb26/donuts/internal"
	"github.com/mikeb26/donuts/internal/config"
	"github.com/mikeb26/donuts/roster"
)

//go:embed help.txt
var helpText string

// cmdHandler defines the signature for command handler functions.
type cmdHandler func(ctx context.Context, cfg *config.Config, args []string)

// commands maps command names to their respective handler functions.
var commands = map[string]cmdHandler{
	"help":    handleHelp,
	"pair":    handlePair,
	"check":   handleCheck,
	"history": handleHistory,
}

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("donuts: invalid configuration: %v", err)
	}
	cmd := os.Args[1]
	if handler, ok := commands[cmd]; ok {
		handler(ctx, cfg, os.Args[2:])
	} else {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Printf("%v", helpText)
}

func handleHelp(ctx context.Context, cfg *config.Config, args []string) {
	usage()
}

// pairOpts holds the parsed flags of the pair command
type pairOpts struct {
	sources  []string
	selector string
	out      string
	meets    int
	seed     int64
	shuffle  bool
	start    time.Time
	every    int
	history  string
	exclude  []string
	dryRun   bool
}

func splitSources(in string) []string {
	var sources []string
	for _, s := range strings.Split(in, ",") {
		if s = strings.TrimSpace(s); s != "" {
			sources = append(sources, s)
		}
	}
	return sources
}

func loadRoster(ctx context.Context, cfg *config.Config, sources []string,
	selector string) ([]string, error) {

	client := http.DefaultClient
	for _, s := range sources {
		if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
			client = internal.NewCachedHttpClient(ctx, cfg.CacheBucket,
				internal.RosterCacheMaxAge)
			break
		}
	}

	return roster.Load(ctx, client, sources, selector)
}

// exclusionValidator returns a validator in which members of each group
// listed in the exclude files have already met.
func exclusionValidator(seen *history.History, names []string,
	exclude []string) (*donut.Validator, error) {

	v := seen.Validator(names)
	for _, path := range exclude {
		groups, err := roster.LoadGroups(path)
		if err != nil {
			return nil, err
		}
		history.SeedGroups(v, names, groups)
	}

	return v, nil
}

func initialArrangement(n int, seed int64, shuffle bool) donut.Arrangement {
	if !shuffle {
		return donut.Identity(n)
	}
	return roster.Arrangement(n, seed)
}

func handlePair(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("pair", flag.ExitOnError)
	in := fs.String("in", "names.csv", "Comma separated roster files or URLs")
	selector := fs.String("selector", roster.DefaultSelector,
		"CSS selector for names on roster web pages")
	out := fs.String("out", "pairings.csv", "Output CSV file")
	meets := fs.Int("meets", cfg.DefaultMeets, "Number of rounds to schedule")
	seed := fs.Int64("seed", cfg.DefaultSeed, "Seed for the initial shuffle")
	shuffle := fs.Bool("shuffle", true, "Shuffle the roster before pairing")
	start := fs.String("start", "", "Date of the first round")
	every := fs.Int("every", 7, "Days between rounds")
	hist := fs.String("history", cfg.HistoryURI, "Meeting history location")
	exclude := fs.String("exclude", "",
		"Comma separated CSV files of groups never paired together")
	dryRun := fs.Bool("dryrun", false, "Print pairings without writing anything")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *meets <= 0 {
		fmt.Fprintln(os.Stderr, "Please provide a positive --meets count.")
		fs.Usage()
		os.Exit(1)
	}
	startDate, err := internal.ParseDateOrZero(*start)
	if err != nil {
		log.Fatalf("Error parsing --start %q: %v", *start, err)
	}

	opts := pairOpts{
		sources:  splitSources(*in),
		selector: *selector,
		out:      *out,
		meets:    *meets,
		seed:     *seed,
		shuffle:  *shuffle,
		start:    startDate,
		every:    *every,
		history:  *hist,
		exclude:  splitSources(*exclude),
		dryRun:   *dryRun,
	}
	if err := runPair(ctx, cfg, opts); err != nil {
		if errors.Is(err, donut.ErrScheduleInfeasible) {
			fmt.Fprintf(os.Stderr, "Contains duplicates: %v\n", err)
			fmt.Fprintln(os.Stderr, "Lower the number of meets. Aborting...")
			os.Exit(2)
		}
		log.Fatalf("Error generating pairings: %v", err)
	}
}

func runPair(ctx context.Context, cfg *config.Config, opts pairOpts) error {
	names, err := loadRoster(ctx, cfg, opts.sources, opts.selector)
	if err != nil {
		return err
	}

	var store history.Store
	seen := history.New()
	if opts.history != "" {
		store, err = history.Open(ctx, opts.history)
		if err != nil {
			return err
		}
		defer store.Close()
		seen, err = store.Load(ctx)
		if err != nil {
			return err
		}
	}

	v, err := exclusionValidator(seen, names, opts.exclude)
	if err != nil {
		return err
	}
	initial := initialArrangement(len(names), opts.seed, opts.shuffle)
	sched, err := donut.PlanWithValidator(v, initial, opts.meets)
	if err != nil {
		return err
	}

	dates := internal.RoundDates(opts.start, opts.every, len(sched))
	fmt.Print(donut.BuildScheduleOutput(sched, names, dates))
	if opts.dryRun {
		return nil
	}

	if err := writeCSVFile(opts.out, sched, names, dates); err != nil {
		return err
	}
	log.Printf("donuts.pair: wrote %v rounds for %v participants to %v",
		len(sched), len(names), opts.out)

	if store != nil {
		seen.RecordSchedule(names, sched)
		if err := store.Save(ctx, seen); err != nil {
			return err
		}
		log.Printf("donuts.pair: recorded %v meetings in %v",
			len(seen.Pairs()), opts.history)
	}

	return nil
}

// writeCSVFile writes to a temporary file next to path and renames it into
// place so a failure never leaves a partial pairings file behind.
func writeCSVFile(path string, sched donut.Schedule, names []string,
	dates []time.Time) error {

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pairings-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := donut.WriteCSV(tmp, sched, names, dates); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing pairings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

func handleCheck(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	participants := fs.Int("participants", 0, "Number of participants")
	in := fs.String("in", "", "Comma separated roster files or URLs to count")
	selector := fs.String("selector", roster.DefaultSelector,
		"CSS selector for names on roster web pages")
	meets := fs.Int("meets", 0, "Number of rounds to check")
	seed := fs.Int64("seed", cfg.DefaultSeed, "Seed for the initial shuffle")
	shuffle := fs.Bool("shuffle", true, "Shuffle before pairing")
	exclude := fs.String("exclude", "",
		"Comma separated CSV files of groups never paired together")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *exclude != "" && *in == "" {
		fmt.Fprintln(os.Stderr, "--exclude requires an --in roster.")
		fs.Usage()
		os.Exit(1)
	}

	n := *participants
	var names []string
	if *in != "" {
		var err error
		names, err = loadRoster(ctx, cfg, splitSources(*in), *selector)
		if err != nil {
			log.Fatalf("Error loading roster: %v", err)
		}
		n = len(names)
	}
	newValidator := func() *donut.Validator {
		v, err := exclusionValidator(history.New(), names,
			splitSources(*exclude))
		if err != nil {
			log.Fatalf("Error loading exclusions: %v", err)
		}
		return v
	}

	initial := initialArrangement(n, *seed, *shuffle)
	capacity, err := donut.CapacityWithValidator(newValidator(), initial)
	if err != nil {
		log.Fatalf("Error checking %v participants: %v", n, err)
	}
	fmt.Printf("Participants: %d\n", n)
	fmt.Printf("Rounds before a repeat: %d (round-robin limit %d)\n", capacity,
		donut.MaxRounds(n))

	if *meets > 0 {
		if _, err := donut.PlanWithValidator(newValidator(), initial,
			*meets); err != nil {
			fmt.Printf("%d rounds: not possible: %v\n", *meets, err)
			os.Exit(2)
		}
		fmt.Printf("%d rounds: ok\n", *meets)
	}
}

func handleHistory(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	hist := fs.String("history", cfg.HistoryURI, "Meeting history location")
	imp := fs.String("import", "", "History location to merge into --history")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *hist == "" {
		fmt.Fprintln(os.Stderr, "Please provide a --history location.")
		fs.Usage()
		os.Exit(1)
	}

	store, err := history.Open(ctx, *hist)
	if err != nil {
		log.Fatalf("Error opening history %v: %v", *hist, err)
	}
	defer store.Close()
	seen, err := store.Load(ctx)
	if err != nil {
		log.Fatalf("Error loading history %v: %v", *hist, err)
	}

	if *imp != "" {
		other, err := history.Open(ctx, *imp)
		if err != nil {
			log.Fatalf("Error opening history %v: %v", *imp, err)
		}
		defer other.Close()
		otherSeen, err := other.Load(ctx)
		if err != nil {
			log.Fatalf("Error loading history %v: %v", *imp, err)
		}
		seen.Merge(otherSeen)
		if err := store.Save(ctx, seen); err != nil {
			log.Fatalf("Error saving history %v: %v", *hist, err)
		}
		log.Printf("donuts.history: merged %v into %v", *imp, *hist)
	}

	fmt.Print(buildHistoryOutput(seen))
}

func buildHistoryOutput(seen *history.History) string {
	var people []string
	for name := range seen.Seen {
		people = append(people, name)
	}
	if len(people) == 0 {
		return "No meetings recorded\n"
	}
	sort.Strings(people)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Runs: %d", seen.Runs))
	if !seen.Updated.IsZero() {
		sb.WriteString(fmt.Sprintf(" (last %s)", seen.Updated.Format("2006-01-02")))
	}
	sb.WriteString("\n\n")

	maxN := len("Name")
	for _, p := range people {
		if l := len(p); l > maxN {
			maxN = l
		}
	}
	sb.WriteString(fmt.Sprintf("%-*s  %s\n", maxN, "Name", "Met"))
	for _, p := range people {
		var met []string
		for other := range seen.Seen[p] {
			met = append(met, other)
		}
		sort.Strings(met)
		sb.WriteString(fmt.Sprintf("%-*s  %s\n", maxN, p, strings.Join(met, ", ")))
	}

	return sb.String()
}
