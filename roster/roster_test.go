/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package roster

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mikeb26/donuts/donut"
)

func TestReadCSV(t *testing.T) {
	in := "Ann,ann@example.com\n Bob \n\nCat,team-a,extra\nAnn\n\"Dan  Lee\"\n"
	names, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV returned error: %v", err)
	}
	want := []string{"Ann", "Bob", "Cat", "Dan Lee"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("ReadCSV mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"blanks", []string{"", "  ", "\t"}, []string{}},
		{"duplicates keep first", []string{"b", "a", "b", " a "}, []string{"b", "a"}},
		{"inner whitespace", []string{"Mary   Ann\n Smith"}, []string{"Mary Ann Smith"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if diff := cmp.Diff(c.want, Normalize(c.in)); diff != "" {
				t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

const rosterPage = `<html><body>
<table id="members">
<thead><tr><th>Name</th><th>Team</th></tr></thead>
<tbody>
<tr><td>Ann <b>Archer</b></td><td>Sales</td></tr>
<tr><td>Bob Baker</td><td>Eng</td></tr>
<tr><td>  </td><td>Eng</td></tr>
</tbody>
</table>
<ul class="guests"><li>Cat Cole</li><li>Dan Dorn</li></ul>
</body></html>`

func newRosterServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter,
		r *http.Request) {

		switch r.URL.Path {
		case "/roster":
			fmt.Fprint(w, rosterPage)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestFetchPage(t *testing.T) {
	srv := newRosterServer(t)
	ctx := context.Background()

	names, err := FetchPage(ctx, srv.Client(), srv.URL+"/roster", "")
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"Ann Archer", "Bob Baker"}, names); diff != "" {
		t.Errorf("FetchPage mismatch (-want +got):\n%s", diff)
	}

	names, err = FetchPage(ctx, srv.Client(), srv.URL+"/roster", "ul.guests li")
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"Cat Cole", "Dan Dorn"}, names); diff != "" {
		t.Errorf("FetchPage mismatch (-want +got):\n%s", diff)
	}

	if _, err := FetchPage(ctx, srv.Client(), srv.URL+"/missing", ""); err == nil {
		t.Errorf("expected an error for a missing page")
	}
}

func TestLoad(t *testing.T) {
	srv := newRosterServer(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "names.csv")
	if err := os.WriteFile(path, []byte("Eve Ellis\nBob Baker\n"), 0644); err != nil {
		t.Fatalf("failed to write roster: %v", err)
	}

	names, err := Load(context.Background(), srv.Client(),
		[]string{path, srv.URL + "/roster"}, "")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := []string{"Eve Ellis", "Bob Baker", "Ann Archer"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}

	_, err = Load(context.Background(), srv.Client(),
		[]string{path, filepath.Join(dir, "missing.csv")}, "")
	if err == nil {
		t.Errorf("expected an error for a missing roster file")
	}

	if _, err := Load(context.Background(), srv.Client(), nil, ""); err == nil {
		t.Errorf("expected an error without sources")
	}
}

func TestArrangement(t *testing.T) {
	a := Arrangement(12, 7)
	b := Arrangement(12, 7)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different arrangements:\n%s", diff)
	}

	sorted := append(donut.Arrangement(nil), a...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if diff := cmp.Diff(donut.Identity(12), sorted); diff != "" {
		t.Errorf("arrangement is not a permutation:\n%s", diff)
	}

	if _, err := donut.Generate(a, 3); err != nil {
		t.Errorf("shuffled arrangement rejected by the scheduler: %v", err)
	}

	if got := Arrangement(-1, 7); len(got) != 0 {
		t.Errorf("Arrangement(-1) = %v; want empty", got)
	}
}

func TestReadGroups(t *testing.T) {
	in := "Ann,Bob\nCat\n Dan , Eve ,Dan,Fay\nGus,\n"
	groups, err := ReadGroups(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadGroups returned error: %v", err)
	}
	want := [][]string{{"Ann", "Bob"}, {"Dan", "Eve", "Fay"}}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Errorf("ReadGroups mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadGroups(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Errorf("expected an error for a missing groups file")
	}
}
