package jsonpatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

const (
	colorClose   = "\x1b[0m"
	colorNeutral = "\x1b[37m"
	colorAdd     = "\x1b[32m"
	colorRemove  = "\x1b[31m"
	colorReplace = "\x1b[34m"
	colorMove    = "\x1b[33m"
)

var opSymbols = map[Op]string{
	Add:     "+",
	Remove:  "-",
	Replace: "~",
	Move:    ">",
	Copy:    "=",
	Test:    "?",
}

// FormatPrettyString is a convenience wrapper that outputs to a string instead
// of an io.Writer
func FormatPrettyString(patch Patch, colorTTY bool) (string, error) {
	buf := &bytes.Buffer{}
	if err := FormatPretty(buf, patch, colorTTY); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatPretty writes a text report of patch to w, one operation per line.
// If colorTTY is true it will add
// green "+" for adds
// red "-" for removes
// blue "~" for replaces
// yellow ">" for moves
func FormatPretty(w io.Writer, patch Patch, colorTTY bool) error {
	var colorMap map[Op]string
	if colorTTY {
		colorMap = map[Op]string{
			Add:     colorAdd,
			Remove:  colorRemove,
			Replace: colorReplace,
			Move:    colorMove,
			Copy:    colorMove,
			Test:    colorNeutral,
		}
	}

	closeColor := ""
	if colorTTY {
		closeColor = colorClose
	}

	for _, op := range patch {
		symbol, ok := opSymbols[op.Op]
		if !ok {
			return fmt.Errorf("unsupported patch operation: %s", op.Op)
		}

		var line string
		switch op.Op {
		case Remove:
			line = fmt.Sprintf("%s %s", symbol, displayPath(op.Path))
		case Move, Copy:
			line = fmt.Sprintf("%s %s -> %s", symbol, displayPath(op.From), displayPath(op.Path))
		default:
			data, err := json.Marshal(op.Value)
			if err != nil {
				return err
			}
			line = fmt.Sprintf("%s %s: %s", symbol, displayPath(op.Path), data)
		}

		if _, err := fmt.Fprintf(w, "%s%s%s\n", colorMap[op.Op], line, closeColor); err != nil {
			return err
		}
	}
	return nil
}

// displayPath shows the root pointer, which is the empty string, as "/".
func displayPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

// FormatStats prints a one-line summary of a diff's stats, optionally with
// ANSI colors.
func FormatStats(st *Stats, color bool) string {
	if st == nil {
		return "<nil>"
	}

	var addColor, removeColor, replaceColor, moveColor, neutralColor, closeColor string
	if color {
		addColor = colorAdd
		removeColor = colorRemove
		replaceColor = colorReplace
		moveColor = colorMove
		neutralColor = colorNeutral
		closeColor = colorClose
	}

	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "%s%d %s.%s", neutralColor, st.Operations(), plural(st.Operations(), "operation"), closeColor)
	fmt.Fprintf(buf, " %s%d %s.%s", addColor, st.Adds, plural(st.Adds, "add"), closeColor)
	fmt.Fprintf(buf, " %s%d %s.%s", removeColor, st.Removes, plural(st.Removes, "remove"), closeColor)
	fmt.Fprintf(buf, " %s%d %s.%s", replaceColor, st.Replaces, plural(st.Replaces, "replace"), closeColor)
	if st.Moves > 0 {
		fmt.Fprintf(buf, " %s%d %s.%s", moveColor, st.Moves, plural(st.Moves, "move"), closeColor)
	}
	if st.Degraded > 0 {
		fmt.Fprintf(buf, " %s%d degraded %s.%s", removeColor, st.Degraded, plural(st.Degraded, "array"), closeColor)
	}
	buf.WriteRune('\n')
	return buf.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
