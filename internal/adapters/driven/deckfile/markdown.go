package deckfile

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/pacer/internal/core/domain"
)

// Markdown decks follow the Marp convention: optional YAML front matter,
// then slides separated by lines holding only "---".
//
//	---
//	id: quarterly-review
//	owner: alice
//	---
//
//	# Introduction
//	<!-- id: intro -->
//	<!-- duration: 3 -->
//	- Welcome
//	- Agenda
//
//	---
//
//	# Results
//
// The first heading of a slide is its title and every other non-empty line
// is one content fragment, with Markdown formatting stripped. Slides without
// an id directive are numbered s1, s2, ... by position among non-empty
// slides, so inserting a slide shifts the ids of the slides after it.

var (
	directive    = regexp.MustCompile(`<!--\s*([A-Za-z_]+)\s*:\s*(.*?)\s*-->`)
	htmlComment  = regexp.MustCompile(`(?s)<!--.*?-->`)
	codeBlock    = regexp.MustCompile("(?s)```.*?```")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	heading      = regexp.MustCompile(`^#{1,6}\s+(.*)$`)
	blockquote   = regexp.MustCompile(`^>\s*`)
	listMarker   = regexp.MustCompile(`^[-*+]\s+`)
	numberedList = regexp.MustCompile(`^\d+\.\s+`)
	emphasis     = strings.NewReplacer("**", "", "__", "", "*", "", "~~", "")
)

// frontMatter is the deck-level metadata of a Markdown deck. Other keys,
// such as Marp themes, are ignored.
type frontMatter struct {
	ID    string `yaml:"id"`
	Owner string `yaml:"owner"`
}

func decodeMarkdown(r io.Reader) (*domain.SourceDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	var doc domain.SourceDocument
	body, front, ok := splitFrontMatter(text)
	if ok {
		var meta frontMatter
		if err := yaml.Unmarshal([]byte(front), &meta); err != nil {
			return nil, fmt.Errorf("front matter: %w", err)
		}
		doc.ID = meta.ID
		doc.OwnerID = meta.Owner
	}

	doc.Slides = make([]domain.Slide, 0)
	for _, block := range splitSlides(body) {
		slide, empty, err := parseSlide(block, len(doc.Slides)+1)
		if err != nil {
			return nil, err
		}
		if !empty {
			doc.Slides = append(doc.Slides, slide)
		}
	}
	return &doc, nil
}

// splitFrontMatter separates a leading "---" delimited block from the body.
func splitFrontMatter(text string) (body, front string, ok bool) {
	trimmed := strings.TrimLeft(text, "\n")
	if !strings.HasPrefix(trimmed, "---\n") {
		return text, "", false
	}
	rest := trimmed[len("---\n"):]
	lines := strings.Split(rest, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			return strings.Join(lines[i+1:], "\n"), strings.Join(lines[:i], "\n"), true
		}
	}
	return text, "", false
}

// splitSlides cuts the body at separator lines outside fenced code.
func splitSlides(body string) []string {
	var (
		slides  []string
		current []string
		fenced  bool
	)
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			fenced = !fenced
		}
		if !fenced && trimmed == "---" {
			slides = append(slides, strings.Join(current, "\n"))
			current = nil
			continue
		}
		current = append(current, line)
	}
	return append(slides, strings.Join(current, "\n"))
}

// parseSlide reads one slide. empty reports a block with nothing on it.
func parseSlide(block string, position int) (slide domain.Slide, empty bool, err error) {
	slide.ID = "s" + strconv.Itoa(position)
	slide.Content = make([]string, 0)

	hasDirective := false
	for _, m := range directive.FindAllStringSubmatch(block, -1) {
		hasDirective = true
		switch strings.ToLower(m[1]) {
		case "id":
			slide.ID = m[2]
		case "duration":
			minutes, err := parseMinutes(m[2])
			if err != nil {
				return domain.Slide{}, false, fmt.Errorf("slide %s: %w", slide.ID, err)
			}
			slide.DurationMinutes = minutes
		}
	}

	block = htmlComment.ReplaceAllString(block, "")
	block = codeBlock.ReplaceAllString(block, "")

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := heading.FindStringSubmatch(line); m != nil && slide.Title == "" {
			slide.Title = stripInline(m[1])
			continue
		}
		if text := stripLine(line); text != "" {
			slide.Content = append(slide.Content, text)
		}
	}

	empty = !hasDirective && slide.Title == "" && len(slide.Content) == 0
	return slide, empty, nil
}

// parseMinutes accepts "3", "2.5" and "3m".
func parseMinutes(v string) (float64, error) {
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "m"))
	minutes, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	return minutes, nil
}

// stripLine removes block-level markers, then inline formatting.
func stripLine(line string) string {
	line = blockquote.ReplaceAllString(line, "")
	line = listMarker.ReplaceAllString(line, "")
	line = numberedList.ReplaceAllString(line, "")
	if m := heading.FindStringSubmatch(line); m != nil {
		line = m[1]
	}
	return stripInline(line)
}

// stripInline removes images, link targets, code ticks and emphasis.
func stripInline(s string) string {
	s = images.ReplaceAllString(s, "")
	s = links.ReplaceAllString(s, "$1")
	s = inlineCode.ReplaceAllString(s, "$1")
	s = emphasis.Replace(s)
	return strings.TrimSpace(s)
}
