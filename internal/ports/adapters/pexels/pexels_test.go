package pexels

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSearch_FiltersAndLimits(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "k" {
			t.Errorf("missing api key header")
		}
		if r.URL.Query().Get("orientation") != "landscape" {
			t.Errorf("expected landscape orientation")
		}
		q := r.URL.Query().Get("query")
		queries = append(queries, q)
		if strings.HasPrefix(q, "broken") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		slug := strings.ReplaceAll(q, " ", "-")
		fmt.Fprintf(w, `{"videos":[
			{"duration":5,"video_files":[{"link":"https://v/%[1]s/short","width":1920,"height":1080}]},
			{"duration":20,"video_files":[{"link":"https://v/%[1]s/sd","width":960,"height":540},{"link":"https://v/%[1]s/hd","width":1920,"height":1080,"quality":"hd"}]},
			{"duration":15,"video_files":[{"link":"https://v/%[1]s/sd2","width":1280,"height":720}]},
			{"duration":12,"video_files":[{"link":"https://v/%[1]s/4k","width":3840,"height":2160,"quality":"uhd"}]}
		]}`, slug)
	}))
	defer srv.Close()

	c := New("k", nil).WithBaseURL(srv.URL)
	c.Intn = func(int) int { return 0 }

	recs, err := c.Search(context.Background(), []string{"robot arm", "broken", "city night"}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(recs), recs)
	}
	if recs[0].URL != "https://v/robot-arm-cinematic/hd" || recs[0].Style != "cinematic" || recs[0].Page != 1 {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
	if recs[1].Quality != "uhd" || recs[1].Width != 3840 {
		t.Fatalf("unexpected second record: %+v", recs[1])
	}
	if recs[2].Keyword != "city night" {
		t.Fatalf("broken keyword should be skipped: %+v", recs[2])
	}
	for _, r := range recs {
		if r.Width < 1920 || r.DurationSec < 10 {
			t.Fatalf("record below HD filter: %+v", r)
		}
	}
	if queries[0] != "robot arm cinematic" {
		t.Fatalf("expected styled query, got %q", queries[0])
	}
}

func TestSearch_UnstyledTopUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		if strings.Contains(q, " ") {
			fmt.Fprint(w, `{"videos":[]}`)
			return
		}
		fmt.Fprintf(w, `{"videos":[{"duration":30,"video_files":[{"link":"https://v/%s","width":1920,"height":1080}]}]}`, q)
	}))
	defer srv.Close()

	c := New("k", nil).WithBaseURL(srv.URL)
	c.Intn = func(int) int { return 0 }
	recs, err := c.Search(context.Background(), []string{"servers"}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(recs) != 1 || recs[0].Style != "standard" {
		t.Fatalf("expected one standard record, got %+v", recs)
	}
}

func TestSearch_RequiresKey(t *testing.T) {
	if _, err := New("", nil).Search(context.Background(), []string{"x"}, 1); err == nil {
		t.Fatalf("expected missing key error")
	}
}
