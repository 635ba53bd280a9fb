package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/cobra"

	"github.com/joywithwealth/jwwblog"
	"github.com/joywithwealth/jwwblog/content"
	"github.com/joywithwealth/jwwblog/scaffold"
)

// postData holds the template variables passed to every post template.
type postData struct {
	Slug    string
	Title   string
	Date    string
	Author  string
	Excerpt string
	Tags    []string
}

func newCmd() *cobra.Command {
	var (
		dir     string
		title   string
		author  string
		excerpt string
		tags    []string
	)
	cmd := &cobra.Command{
		Use:   "new <slug>",
		Short: "Scaffold a post and add it to the post index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := args[0]
			if jwwblog.Slugify(slug) != slug {
				return fmt.Errorf("slug %q is not URL-safe, try %q", slug, jwwblog.Slugify(slug))
			}
			if dir == "" {
				dir = jwwblog.EnvOr("CONTENT_DIR", "content")
			}
			if title == "" {
				title = toTitle(slug)
			}
			if author == "" {
				author = jwwblog.EnvOr("SITE_AUTHOR", "Joy With Wealth")
			}
			if excerpt == "" {
				excerpt = "A short introduction to " + title + "."
			}
			data := postData{
				Slug:    slug,
				Title:   title,
				Date:    time.Now().Format("2006-01-02"),
				Author:  author,
				Excerpt: excerpt,
				Tags:    cleanTags(tags),
			}
			created, err := scaffoldPost(dir, data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range created {
				fmt.Fprintf(out, "  created %s\n", p)
			}
			fmt.Fprintf(out, "  updated %s\n", filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(content.IndexPath, "/"))))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "content directory (default $CONTENT_DIR or ./content)")
	cmd.Flags().StringVar(&title, "title", "", "post title (default derived from the slug)")
	cmd.Flags().StringVar(&author, "author", "", "post author")
	cmd.Flags().StringVar(&excerpt, "excerpt", "", "card excerpt")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "post tag, repeatable")
	return cmd
}

// scaffoldPost writes the post templates into dir/blog/posts/<slug>/ and
// prepends the post to the index. It refuses to touch an existing post.
func scaffoldPost(dir string, data postData) ([]string, error) {
	postDir := filepath.Join(dir, "blog", "posts", data.Slug)
	if _, err := os.Stat(postDir); err == nil {
		return nil, fmt.Errorf("post directory %q already exists", postDir)
	}

	indexPath := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(content.IndexPath, "/")))
	posts, err := readIndex(indexPath)
	if err != nil {
		return nil, err
	}
	if _, ok := content.Lookup(posts, data.Slug); ok {
		return nil, fmt.Errorf("post %q is already in %s", data.Slug, indexPath)
	}

	var created []string
	err = fs.WalkDir(scaffold.Templates, scaffold.PostRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(scaffold.PostRoot, path)
		if err != nil {
			return err
		}
		outPath := strings.TrimSuffix(filepath.Join(postDir, relPath), ".tmpl")
		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		src, err := scaffold.Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tmpl, err := template.New(filepath.Base(path)).Parse(string(src))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()
		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("execute template %s: %w", path, err)
		}
		created = append(created, outPath)
		return nil
	})
	if err != nil {
		return nil, err
	}

	tags := data.Tags
	if tags == nil {
		tags = []string{}
	}
	post := content.Post{
		Slug:        data.Slug,
		Title:       data.Title,
		Date:        data.Date,
		Author:      data.Author,
		ReadingTime: 1,
		Excerpt:     data.Excerpt,
		Tags:        tags,
	}
	if err := writeIndex(indexPath, append([]content.Post{post}, posts...)); err != nil {
		return nil, err
	}
	return created, nil
}

func readIndex(path string) ([]content.Post, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var posts []content.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return posts, nil
}

func writeIndex(path string, posts []content.Post) error {
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func cleanTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// toTitle converts a hyphenated slug to a title-case string.
// e.g. "saving-early" -> "Saving Early"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
