/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mikeb26/donuts/internal"
	"github.com/mikeb26/donuts/internal/config"
	"github.com/mikeb26/donuts/roster"
)

// this program exists just to seed the http cache with roster pages so the
// discord bot does not have to fetch them while answering an interaction

var pause = 2 * time.Second // avoid pegging roster hosts

func seed(ctx context.Context, out io.Writer, client *http.Client,
	urls []string, selector string) int {

	seeded := 0
	for idx, url := range urls {
		if idx > 0 {
			time.Sleep(pause)
		}
		names, err := roster.FetchPage(ctx, client, url, selector)
		if err != nil {
			// best effort
			fmt.Fprintf(out, "skipped %v: %v\n", url, err)
			continue
		}

		seeded++
		fmt.Fprintf(out, "seeded %v names from %v\n", len(names), url)
	}

	return seeded
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %v <rosterURL> [<rosterURL>...]\n",
			os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	client := internal.NewCachedHttpClient(ctx, cfg.CacheBucket,
		internal.RosterCacheMaxAge)
	if seed(ctx, os.Stdout, client, os.Args[1:], roster.DefaultSelector) == 0 {
		os.Exit(1)
	}
}
