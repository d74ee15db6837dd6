/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mikeb26/donuts/donut"
	"github.com/mikeb26/donuts/internal"
	"golang.org/x/sync/errgroup"
)

// DefaultSelector picks the first cell of every table row
const DefaultSelector = "table tr td:first-child"

// ReadCSV returns the first column of every record in r. There is no
// header row.
func ReadCSV(r io.Reader) ([]string, error) {
	csvReader := csv.NewReader(r)
	// rows may carry extra columns such as email or team
	csvReader.FieldsPerRecord = -1
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to parse roster as CSV: %w", err)
	}

	names := make([]string, 0, len(records))
	for _, record := range records {
		if len(record) == 0 {
			continue
		}
		names = append(names, record[0])
	}

	return Normalize(names), nil
}

// LoadFile reads a CSV roster from path
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read roster %v: %w", path, err)
	}
	defer f.Close()

	names, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}

	return names, nil
}

// LoadGroups reads a CSV file where each record lists the members of one
// group, e.g. a family, who must never be paired together. Records with
// fewer than 2 distinct names are dropped.
func LoadGroups(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read groups %v: %w", path, err)
	}
	defer f.Close()

	return ReadGroups(f)
}

// ReadGroups is LoadGroups for an io.Reader
func ReadGroups(r io.Reader) ([][]string, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to parse groups as CSV: %w", err)
	}

	var groups [][]string
	for _, record := range records {
		if members := Normalize(record); len(members) > 1 {
			groups = append(groups, members)
		}
	}

	return groups, nil
}

// FetchPage extracts the text of every element matching selector from the
// HTML page at url. An empty selector means DefaultSelector.
func FetchPage(ctx context.Context, client *http.Client, url string,
	selector string) ([]string, error) {

	if selector == "" {
		selector = DefaultSelector
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", internal.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d fetching %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}

	var names []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		names = append(names, s.Text())
	})

	return Normalize(names), nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") ||
		strings.HasPrefix(source, "https://")
}

// Load reads every source concurrently and merges the names in source
// order, dropping later duplicates. Sources starting with http:// or
// https:// are fetched with client and scraped with selector; anything else
// is a CSV file path.
func Load(ctx context.Context, client *http.Client, sources []string,
	selector string) ([]string, error) {

	if len(sources) == 0 {
		return nil, errors.New("no roster sources given")
	}

	results := make([][]string, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for idx, source := range sources {
		idx, source := idx, source
		g.Go(func() error {
			var names []string
			var err error
			if isURL(source) {
				names, err = FetchPage(ctx, client, source, selector)
			} else {
				names, err = LoadFile(source)
			}
			if err != nil {
				return err
			}
			results[idx] = names
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []string
	for _, names := range results {
		merged = append(merged, names...)
	}

	return Normalize(merged), nil
}

// Normalize trims whitespace from names and drops blank and duplicate
// entries, keeping the first occurrence of each name.
func Normalize(names []string) []string {
	seen := make(map[string]bool, len(names))
	ret := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.Join(strings.Fields(name), " ")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		ret = append(ret, name)
	}

	return ret
}

// Arrangement returns a seeded shuffle of participants 0..n-1 to start the
// rotation from. The same seed always yields the same arrangement. A
// negative n yields an empty arrangement.
func Arrangement(n int, seed int64) donut.Arrangement {
	if n < 0 {
		n = 0
	}
	rng := rand.New(rand.NewSource(seed))
	a := make(donut.Arrangement, n)
	for i, p := range rng.Perm(n) {
		a[i] = donut.Participant(p)
	}

	return a
}
