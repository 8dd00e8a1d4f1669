// Package textsplit breaks document text into overlapping chunks for
// embedding. Splitting is recursive: paragraphs first, then lines, then
// sentences, then words, falling back to a hard rune cut, so chunk
// boundaries land on the most natural break available.
package textsplit

import "strings"

var defaultSeparators = []string{"\n\n", "\n", ". ", " "}

// Split returns chunks of at most size runes. Consecutive chunks share up
// to overlap trailing runes of the previous chunk so context survives chunk
// boundaries. overlap must be smaller than size; out-of-range values are
// clamped the same way the ingestion config validates them.
func Split(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return merge(fragment(text, size, defaultSeparators), size, overlap)
}

// fragment cuts text into pieces no longer than size runes, preferring the
// earliest separator in seps that applies.
func fragment(text string, size int, seps []string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if runeLen(text) <= size {
		return []string{text}
	}
	if len(seps) == 0 {
		return hardCut(text, size)
	}

	parts := strings.SplitAfter(text, seps[0])
	if len(parts) == 1 {
		return fragment(text, size, seps[1:])
	}
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if runeLen(p) <= size {
			out = append(out, p)
		} else {
			out = append(out, fragment(p, size, seps[1:])...)
		}
	}
	return out
}

// merge packs fragments into chunks up to size runes, carrying trailing
// fragments totalling at most overlap runes into the next chunk. The carry
// shrinks further when needed so the next fragment still fits within size.
func merge(fragments []string, size, overlap int) []string {
	var chunks []string
	var window []string
	total := 0
	fresh := 0 // fragments added since the last flush

	flush := func(retain bool) {
		chunk := strings.TrimSpace(strings.Join(window, ""))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if !retain {
			window, total, fresh = nil, 0, 0
			return
		}
		kept := 0
		start := len(window)
		for start > 0 {
			l := runeLen(window[start-1])
			if kept+l > overlap {
				break
			}
			kept += l
			start--
		}
		window = append([]string(nil), window[start:]...)
		total = kept
		fresh = 0
	}

	for _, f := range fragments {
		l := runeLen(f)
		if total+l > size && fresh > 0 {
			flush(true)
		}
		// After a flush the window holds only already-emitted overlap;
		// drop from the front until the new fragment fits.
		for len(window) > 0 && total+l > size {
			total -= runeLen(window[0])
			window = window[1:]
		}
		window = append(window, f)
		total += l
		fresh++
	}
	if fresh > 0 {
		flush(false)
	}
	return chunks
}

func hardCut(text string, size int) []string {
	runes := []rune(text)
	var out []string
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
	}
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}
