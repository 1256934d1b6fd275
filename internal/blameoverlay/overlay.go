// Package blameoverlay re-emits the output of a raw `git blame` invocation
// with the author and author-mail fields swapped for AI-attributed lines,
// leaving every other token — SHAs, filenames, line numbers, timestamps,
// boundary markers — exactly as Git produced them (spec.md §4.6).
//
// It never re-derives blame itself: the wrapper always runs the real `git
// blame` first and hands its stdout, verbatim, to Apply alongside the
// AuthorshipLog for the commit being blamed.
package blameoverlay

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jensroland/git-ai/internal/agentid"
	"github.com/jensroland/git-ai/internal/authorshiplog"
)

// Format identifies which of Git's blame output modes is being overlaid.
type Format int

const (
	FormatDefault Format = iota
	FormatPorcelain
	FormatLinePorcelain
	FormatIncremental
)

// LineResolver answers, for one final line number, who authored it: the
// human sentinel (pass the underlying blame through unchanged) or an AI
// agent (substitute the display name into author/author-mail).
type LineResolver struct {
	authors map[int]string // final line -> author id ("<human>" or a PromptID)
	prompts map[agentid.PromptID]authorshiplog.PromptRecord
}

// NewLineResolver builds a resolver from one file's attestation and the
// commit's prompts table.
func NewLineResolver(att authorshiplog.FileAttestation, prompts map[agentid.PromptID]authorshiplog.PromptRecord) *LineResolver {
	authors := make(map[int]string)
	for _, a := range att.Attributions {
		for line := a.Range.Lo; line <= a.Range.Hi; line++ {
			authors[line] = a.AuthorID
		}
	}
	return &LineResolver{authors: authors, prompts: prompts}
}

// resolve returns (displayName, email, isAI) for a final line number.
// email is synthesized since AI sessions have no real mailbox; the
// reserved ".invalid" TLD documents that deliberately.
func (r *LineResolver) resolve(line int) (name, email string, isAI bool) {
	id, ok := r.authors[line]
	if !ok || id == agentid.HumanAuthorID {
		return "", "", false
	}
	rec := r.prompts[agentid.PromptID(id)]
	name = rec.AgentID.DisplayName()
	email = fmt.Sprintf("<%s@ai.invalid>", sanitizeLocalPart(rec.AgentID.Tool))
	return name, email, true
}

func sanitizeLocalPart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "agent"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Apply rewrites raw git-blame output according to format, substituting
// author/author-mail for lines resolve identifies as AI-attributed. It
// never reorders lines or fabricates SHAs (spec.md §4.6).
func Apply(raw string, format Format, resolve *LineResolver) (string, error) {
	switch format {
	case FormatPorcelain, FormatLinePorcelain, FormatIncremental:
		return applyHeaderBlockFormat(raw, resolve)
	default:
		return applyDefaultFormat(raw, resolve)
	}
}

// headerLineRe matches a blame group's leading line: "<sha> <orig> <final> [<size>]".
var headerLineRe = regexp.MustCompile(`^([0-9a-f]{40}) (\d+) (\d+)(?: (\d+))?$`)

// applyHeaderBlockFormat drives --porcelain, --line-porcelain and
// --incremental alike: all three share the same header-line shape and the
// same metadata key set, differing only in whether metadata repeats for a
// commit already seen (porcelain: no; line-porcelain/incremental: yes) and
// whether a tab-prefixed content line follows the metadata (porcelain and
// line-porcelain: yes; incremental: no). Apply doesn't need to tell those
// cases apart — it tracks "current final line" from the most recent header
// and rewrites whatever author/author-mail lines actually appear before the
// next header, which is exactly the set Git itself chose to print.
func applyHeaderBlockFormat(raw string, resolve *LineResolver) (string, error) {
	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var out strings.Builder
	currentLine := 0
	isAI := false
	var aiName, aiEmail string

	for scanner.Scan() {
		line := scanner.Text()

		if m := headerLineRe.FindStringSubmatch(line); m != nil {
			final, err := strconv.Atoi(m[3])
			if err != nil {
				return "", fmt.Errorf("blameoverlay: malformed header line %q: %w", line, err)
			}
			currentLine = final
			aiName, aiEmail, isAI = resolve.resolve(currentLine)
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		switch {
		case isAI && strings.HasPrefix(line, "author-mail "):
			out.WriteString("author-mail ")
			out.WriteString(aiEmail)
			out.WriteByte('\n')
		case isAI && strings.HasPrefix(line, "author "):
			out.WriteString("author ")
			out.WriteString(aiName)
			out.WriteByte('\n')
		default:
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("blameoverlay: scan: %w", err)
	}
	return strings.TrimSuffix(out.String(), "\n") + trailingNewline(raw), nil
}

// defaultLineRe matches one line of `git blame`'s default human-readable
// format: an optional boundary marker, the abbreviated (or full, with -l)
// SHA, then "(<author> <date> <tz> <lineno>)" followed by the content.
// The author field is matched non-greedily up to the first ISO date, which
// is distinctive enough to anchor on even though author names may contain
// spaces.
var defaultLineRe = regexp.MustCompile(`^(\^?[0-9a-f]{4,40}\s+(?:\S+\s+)?)\((.*?)(\s+\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2}\s+[+-]\d{4}\s+\d+)\)(.*)$`)

// applyDefaultFormat handles plain `git blame` output (no --porcelain
// variant). Per spec.md §4.6 this mode shows only an author name, never a
// separate mail field, so only that name is substituted for AI lines.
func applyDefaultFormat(raw string, resolve *LineResolver) (string, error) {
	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var out strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		m := defaultLineRe.FindStringSubmatch(line)
		if m == nil {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		prefix, author, tail, content := m[1], m[2], m[3], m[4]
		finalLine, err := strconv.Atoi(strings.TrimSpace(tail[strings.LastIndex(tail, " ")+1:]))
		if err != nil {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		name, _, isAI := resolve.resolve(finalLine)
		if isAI {
			author = padLike(author, name)
		}

		out.WriteString(prefix)
		out.WriteByte('(')
		out.WriteString(author)
		out.WriteString(tail)
		out.WriteByte(')')
		out.WriteString(content)
		out.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("blameoverlay: scan: %w", err)
	}
	return strings.TrimSuffix(out.String(), "\n") + trailingNewline(raw), nil
}

// padLike right-pads replacement to the original field's width so the
// date/tz/lineno columns it precedes stay aligned, matching how Git
// itself pads author names to the widest name in the blamed range. A
// replacement at least as wide as the original is returned unchanged.
func padLike(original, replacement string) string {
	width := len(original)
	if len(replacement) >= width {
		return replacement
	}
	return replacement + strings.Repeat(" ", width-len(replacement))
}

func trailingNewline(raw string) string {
	if strings.HasSuffix(raw, "\n") {
		return "\n"
	}
	return ""
}
