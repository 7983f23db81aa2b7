package subtitles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var markupPattern = regexp.MustCompile(`<[^>]+>|\{\\[^}]*\}`)

// ParseFile reads and parses an SRT file.
func ParseFile(path string) (List, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open srt: %w", err)
	}
	defer file.Close()
	entries, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}

// Parse reads SRT cues from r. Cues with empty text after markup removal are
// skipped; malformed timestamps or inverted windows are errors.
func Parse(r io.Reader) (List, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var entries List
	var block []string
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		entry, ok, err := parseBlock(block)
		block = block[:0]
		if err != nil {
			return err
		}
		if ok {
			entries = append(entries, entry)
		}
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		block = append(block, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no subtitle cues found")
	}
	return entries, nil
}

func parseBlock(lines []string) (Entry, bool, error) {
	// Strip a UTF-8 BOM from the very first cue number.
	lines[0] = strings.TrimPrefix(lines[0], "\uFEFF")

	timingLine := -1
	for i, line := range lines {
		if strings.Contains(line, "-->") {
			timingLine = i
			break
		}
	}
	if timingLine < 0 {
		return Entry{}, false, fmt.Errorf("cue without timing line: %q", strings.Join(lines, " "))
	}

	index := 0
	if timingLine > 0 {
		parsed, err := strconv.Atoi(strings.TrimSpace(lines[timingLine-1]))
		if err != nil {
			return Entry{}, false, fmt.Errorf("invalid cue number %q", lines[timingLine-1])
		}
		index = parsed
	}

	start, end, err := parseTiming(lines[timingLine])
	if err != nil {
		return Entry{}, false, fmt.Errorf("cue %d: %w", index, err)
	}
	if end <= start {
		return Entry{}, false, fmt.Errorf("cue %d: end %s not after start %s", index, end, start)
	}

	text := cleanText(lines[timingLine+1:])
	if text == "" {
		return Entry{}, false, nil
	}

	return Entry{Index: index, Start: start, End: end, Text: text}, true, nil
}

func parseTiming(line string) (time.Duration, time.Duration, error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	start, err := parseTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	// Position hints after the end timestamp (X1: etc.) are ignored.
	endText := strings.Fields(strings.TrimSpace(parts[1]))
	if len(endText) == 0 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	end, err := parseTimestamp(endText[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseTimestamp(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	// Normalize period to comma (SRT standard uses comma for milliseconds).
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if hours < 0 || minutes < 0 || seconds < 0 || millis < 0 {
		return 0, fmt.Errorf("negative timestamp %q", value)
	}
	total := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond
	return total, nil
}

func cleanText(lines []string) string {
	joined := strings.Join(lines, " ")
	joined = markupPattern.ReplaceAllString(joined, "")
	return strings.Join(strings.Fields(joined), " ")
}
