package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joywithwealth/jwwblog/consent"
	"github.com/joywithwealth/jwwblog/content"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "jwwblog dev\n", out.String())
}

func TestScaffoldPost(t *testing.T) {
	dir := t.TempDir()
	data := postData{
		Slug:    "saving-early",
		Title:   "Saving Early",
		Date:    "2024-03-01",
		Author:  "Joy With Wealth",
		Excerpt: "Why time matters.",
		Tags:    []string{"Savings"},
	}

	created, err := scaffoldPost(dir, data)
	require.NoError(t, err)
	mdPath := filepath.Join(dir, "blog", "posts", "saving-early", "markdown.md")
	assert.Equal(t, []string{mdPath}, created)

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(md), "---\ntitle: \"Saving Early\"\n"))
	assert.Contains(t, string(md), "  - \"Savings\"\n---\n")
	assert.Contains(t, string(md), "Why time matters.")

	raw, err := os.ReadFile(filepath.Join(dir, "blog", "posts.json"))
	require.NoError(t, err)
	var posts []content.Post
	require.NoError(t, json.Unmarshal(raw, &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "saving-early", posts[0].Slug)
	assert.Equal(t, []string{"Savings"}, posts[0].Tags)
}

func TestScaffoldPostPrependsAndRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	_, err := scaffoldPost(dir, postData{Slug: "first", Title: "First", Date: "2024-01-01"})
	require.NoError(t, err)
	_, err = scaffoldPost(dir, postData{Slug: "second", Title: "Second", Date: "2024-02-01"})
	require.NoError(t, err)

	posts, err := readIndex(filepath.Join(dir, "blog", "posts.json"))
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].Slug)
	assert.Equal(t, "first", posts[1].Slug)
	assert.NotNil(t, posts[1].Tags)

	_, err = scaffoldPost(dir, postData{Slug: "first", Title: "Again"})
	assert.Error(t, err)
}

func TestToTitle(t *testing.T) {
	assert.Equal(t, "Saving Early", toTitle("saving-early"))
	assert.Equal(t, "Budget", toTitle("budget"))
}

func TestWriteSummary(t *testing.T) {
	var out bytes.Buffer
	cmd := consentStatsCmd()
	cmd.SetOut(&out)

	s := &consent.Summary{
		Period:    "2024-01-01 to 2024-01-31",
		Total:     4,
		Accepted:  3,
		Essential: 1,
		Daily:     []consent.DayCount{{Date: "2024-01-02", Accepted: 3, Essential: 1}},
	}
	require.NoError(t, writeSummary(cmd, s))
	assert.Contains(t, out.String(), "3 (75.0%)")
	assert.Contains(t, out.String(), "2024-01-02")
}

func TestWriteRecords(t *testing.T) {
	var out bytes.Buffer
	cmd := consentRecentCmd()
	cmd.SetOut(&out)

	records := []consent.Record{{
		Choice:      consent.ChoiceEssential,
		Device:      "Mobile",
		VisitorHash: "abcd1234abcd1234",
		Path:        "/blog/",
		DecidedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}}
	require.NoError(t, writeRecords(cmd, records))
	assert.Contains(t, out.String(), "2024-01-02T03:04:05Z")
	assert.Contains(t, out.String(), "abcd1234abcd1234")
}
