// Package posts holds the domain rules for blog posts: slug derivation and
// uniqueness, field validation, and the access policy for post mutation.
// Everything here is pure or read-only; persistence lives in internal/store.
package posts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// MaxSlugLen bounds slugs (and therefore titles) at 86 characters.
const MaxSlugLen = 86

var (
	// ErrSlugEmpty is returned when a title normalizes to nothing.
	ErrSlugEmpty = errors.New("slug must not be empty")

	// ErrSlugFormat is returned when a slug does not match the required pattern.
	ErrSlugFormat = errors.New("slug must contain only lowercase alphanumeric characters and single hyphens, and must not start or end with a hyphen")

	// ErrSlugTooLong is returned when a slug exceeds MaxSlugLen.
	ErrSlugTooLong = fmt.Errorf("slug must be at most %d characters", MaxSlugLen)

	// ErrSlugReserved is returned when a slug collides with an application route.
	ErrSlugReserved = errors.New("slug is reserved")

	// reservedSlugs are slug values that conflict with application routes and
	// MUST NOT be accepted.
	reservedSlugs = map[string]bool{
		"admin":   true,
		"api":     true,
		"auth":    true,
		"metrics": true,
		"posts":   true,
		"static":  true,
	}
)

// ValidateSlug checks that slug conforms to the required format and is not
// reserved. It does NOT check uniqueness; that is the slug index's job at
// generation time and the database's job at insert time.
func ValidateSlug(slug string) error {
	if slug == "" {
		return ErrSlugEmpty
	}
	if len(slug) > MaxSlugLen {
		return ErrSlugTooLong
	}
	if !validSlugShape(slug) {
		return ErrSlugFormat
	}
	if reservedSlugs[slug] {
		return fmt.Errorf("%w: %q", ErrSlugReserved, slug)
	}
	return nil
}

// validSlugShape reports whether s is lowercase alphanumerics separated by
// single hyphens, with no leading or trailing hyphen.
func validSlugShape(s string) bool {
	if strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") || strings.Contains(s, "--") {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}

// Normalize converts a post title to its slug base: lowercased, with every
// character that is not a letter or digit dropped, and runs of whitespace or
// hyphens collapsed to a single hyphen. Normalize never rejects its input:
// an unusable title yields "" and the caller's validation catches it.
func Normalize(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), "-")
}

// SlugIndex is the storage view the generator needs: an existence check for
// the common no-collision case, and the numeric suffixes already in use for a
// base when it collides. *store.PostStore satisfies it.
type SlugIndex interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
	SlugSuffixes(ctx context.Context, base string) ([]int, error)
}

// Generator derives unique slugs from post titles.
type Generator struct {
	index SlugIndex
}

func NewGenerator(index SlugIndex) *Generator {
	return &Generator{index: index}
}

// Generate normalizes title, validates the result, and resolves it to a slug
// not currently in use. The returned slug is still only probably free: two
// concurrent calls can both see a free candidate, and the unique index on the
// slug column settles the race at insert time.
func (g *Generator) Generate(ctx context.Context, title string) (string, error) {
	base := Normalize(title)
	if err := ValidateSlug(base); err != nil {
		return "", err
	}
	return g.Unique(ctx, base)
}

// Unique returns base unchanged when it is free. On collision it returns
// "base-n" for the smallest n >= 2 not already in use. The bare base counts
// as the implicit first occupant; there is no "-1" form.
//
// The probe deliberately fills gaps rather than taking max+1: deleting
// "post-3" out of {post, post-2, post-3, post-4} frees 3 for the next
// collision on "post".
//
// Suffixing never pushes the slug past MaxSlugLen: a base too long to carry
// "-n" is trimmed (at a hyphen boundary where one exists) before suffixing.
// The trim point shifts when n gains a digit, and each trimmed base carries
// its own suffix set.
func (g *Generator) Unique(ctx context.Context, base string) (string, error) {
	taken, err := g.index.SlugExists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	var (
		cur  string
		used map[int]bool
	)
	for n := 2; ; n++ {
		b := trimForSuffix(base, n)
		if b != cur {
			cur = b
			suffixes, err := g.index.SlugSuffixes(ctx, cur)
			if err != nil {
				return "", err
			}
			used = make(map[int]bool, len(suffixes))
			for _, s := range suffixes {
				used[s] = true
			}
		}
		if !used[n] {
			return fmt.Sprintf("%s-%d", cur, n), nil
		}
	}
}

// trimForSuffix shortens base so that "base-n" fits in MaxSlugLen. The cut
// falls back to the last hyphen when it would otherwise split a word; a
// single unbroken word is cut mid-run.
func trimForSuffix(base string, n int) string {
	limit := MaxSlugLen - 1 - len(strconv.Itoa(n))
	if len(base) <= limit {
		return base
	}
	cut := base[:limit]
	if base[limit] != '-' {
		if i := strings.LastIndexByte(cut, '-'); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, "-")
}

// NeedsRegeneration reports whether a post's slug must be rebuilt after its
// title changed. The slug is kept when the new title normalizes to the slug's
// base, or when the slug is a numbered variant of that base, so that
// punctuation-only edits don't re-slug the post and break inbound links.
func NeedsRegeneration(oldSlug, newTitle string) bool {
	base := Normalize(newTitle)
	if base == "" {
		return true
	}
	if oldSlug == base {
		return false
	}
	suffix, ok := strings.CutPrefix(oldSlug, base+"-")
	if !ok || suffix == "" {
		return true
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return true
		}
	}
	return false
}
