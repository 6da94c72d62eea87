package main

import (
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"golang.org/x/net/html"
)

// readClipboardText returns the clipboard as plain text. Rich text copied
// from word processors and browsers is reduced to its words.
func readClipboardText() (string, error) {
	raw, err := readClipboard()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(cleanClipboardText(raw)), nil
}

func readClipboard() (string, error) {
	if runtime.GOOS == "darwin" {
		if out, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(out), nil
		}
	}
	return clipboard.ReadAll()
}

func writeClipboardText(text string) error {
	return clipboard.WriteAll(text)
}

func isRTF(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), `{\rtf`)
}

func isHTML(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if !strings.HasPrefix(t, "<") {
		return false
	}
	for _, tag := range []string{"<html", "<body", "<div", "<p>", "<p ", "<span", "<meta"} {
		if strings.Contains(t, tag) {
			return true
		}
	}
	return false
}

// cleanClipboardText converts rich text to plain text, normalises line
// endings and drops control characters other than tab and newline.
func cleanClipboardText(text string) string {
	switch {
	case isRTF(text):
		text = rtfText(text)
	case isHTML(text):
		text = htmlText(text)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r >= ' ' {
			return r
		}
		return -1
	}, text)
}

// htmlText keeps the text nodes of a document, breaking lines at block
// elements. Scripts and styles are skipped.
func htmlText(doc string) string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return doc
	}
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head":
				return
			case "br":
				b.WriteByte('\n')
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteByte('\n')
			}
		}
	}
	walk(root)
	return b.String()
}

// rtf destinations whose content is metadata, not document text.
var rtfSkipGroups = map[string]bool{
	"fonttbl": true, "colortbl": true, "stylesheet": true, "info": true,
	"pict": true, "header": true, "footer": true, "*": true,
}

// rtfText extracts the visible text of an RTF document. Hex escapes are
// read as Windows-1252, which covers the Latin accents case notes use.
func rtfText(doc string) string {
	var b strings.Builder
	// depth at which a skipped group started, or -1
	skipFrom := -1
	depth := 0
	groupStart := false

	for i := 0; i < len(doc); i++ {
		ch := doc[i]
		switch ch {
		case '{':
			depth++
			groupStart = true
			continue
		case '}':
			if depth == skipFrom {
				skipFrom = -1
			}
			depth--
			continue
		case '\r', '\n':
			continue
		}
		if ch != '\\' {
			groupStart = false
			if skipFrom < 0 {
				b.WriteByte(ch)
			}
			continue
		}

		if i+1 >= len(doc) {
			break
		}
		next := doc[i+1]
		switch {
		case next == '\\' || next == '{' || next == '}':
			if skipFrom < 0 {
				b.WriteByte(next)
			}
			i++
		case next == '\'' && i+3 < len(doc):
			if v, err := strconv.ParseUint(doc[i+2:i+4], 16, 8); err == nil && skipFrom < 0 {
				b.WriteRune(cp1252(byte(v)))
			}
			i += 3
		case next == '*':
			if groupStart && skipFrom < 0 {
				skipFrom = depth
			}
			i++
		case isLetter(next):
			j := i + 1
			for j < len(doc) && isLetter(doc[j]) {
				j++
			}
			word := doc[i+1 : j]
			for j < len(doc) && (doc[j] == '-' || (doc[j] >= '0' && doc[j] <= '9')) {
				j++
			}
			if j < len(doc) && doc[j] == ' ' {
				j++
			}
			i = j - 1

			if groupStart && rtfSkipGroups[word] && skipFrom < 0 {
				skipFrom = depth
			}
			if skipFrom < 0 {
				switch word {
				case "par", "line":
					b.WriteByte('\n')
				case "tab":
					b.WriteByte('\t')
				}
			}
		default:
			i++
		}
		groupStart = false
	}
	return b.String()
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// cp1252 maps a Windows-1252 byte to its rune. Only the 0x80-0x9f block
// differs from Latin-1; the punctuation used in prose is mapped.
func cp1252(c byte) rune {
	switch c {
	case 0x91, 0x92:
		return '\''
	case 0x93, 0x94:
		return '"'
	case 0x96, 0x97:
		return '-'
	case 0x85:
		return '…'
	}
	return rune(c)
}
