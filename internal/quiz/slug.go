package quiz

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	defaultSlug = "quiz"
	maxSlugLen  = 180
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	nonWord    = regexp.MustCompile(`[^\w-]+`)
	hyphenRuns = regexp.MustCompile(`-{2,}`)
)

// Slugify turns a title into a URL path segment.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = whitespace.ReplaceAllString(s, "-")
	s = nonWord.ReplaceAllString(s, "")
	s = hyphenRuns.ReplaceAllString(s, "-")
	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
	}
	s = strings.Trim(s, "-")
	if s == "" {
		return defaultSlug
	}
	return s
}

// nextFreeSlug returns base, or base-N with the smallest N >= 2 not yet taken.
func nextFreeSlug(ctx context.Context, repo Repository, base string) (string, error) {
	taken, err := repo.SlugsLike(ctx, base)
	if err != nil {
		return "", err
	}

	used := make(map[string]struct{}, len(taken))
	for _, s := range taken {
		used[s] = struct{}{}
	}
	if _, ok := used[base]; !ok {
		return base, nil
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, ok := used[candidate]; !ok {
			return candidate, nil
		}
	}
}

func quizURL(slug string) string {
	return fmt.Sprintf("/quiz/%s/", slug)
}
