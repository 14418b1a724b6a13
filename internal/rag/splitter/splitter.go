package splitter

import (
	"strings"
	"unicode/utf8"
)

// DefaultSeparators are tried in order, from the boundary that keeps the most meaning
// (paragraph) down to a hard character cut.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Span is a chunk of the source text. Start and End are byte offsets, Length is in runes.
type Span struct {
	Start  int
	End    int
	Length int
}

type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

func New(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize < 1 {
		chunkSize = 1
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize - 1
	}
	return &Splitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap, separators: DefaultSeparators}
}

// Split returns overlapping spans of at most chunkSize runes that cover the whole text.
// Consecutive spans share at most chunkOverlap runes.
func (s *Splitter) Split(text string) []Span {
	if text == "" {
		return nil
	}
	return s.merge(s.pieces(text, 0, len(text), s.separators))
}

// Chunks is Split returning the chunk strings.
func (s *Splitter) Chunks(text string) []string {
	spans := s.Split(text)
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = text[sp.Start:sp.End]
	}
	return out
}

// pieces cuts text[start:end] into contiguous pieces no longer than chunkSize, using the
// first separator that occurs and recursing into pieces that are still too long.
// Separators stay attached to the piece they terminate.
func (s *Splitter) pieces(text string, start, end int, separators []string) []Span {
	n := utf8.RuneCountInString(text[start:end])
	if n <= s.chunkSize {
		return []Span{{Start: start, End: end, Length: n}}
	}

	for i, sep := range separators {
		if sep == "" {
			break
		}
		if !strings.Contains(text[start:end], sep) {
			continue
		}

		rest := separators[i+1:]
		var out []Span
		for pos := start; pos < end; {
			pieceEnd := end
			if idx := strings.Index(text[pos:end], sep); idx >= 0 {
				pieceEnd = pos + idx + len(sep)
			}
			out = append(out, s.pieces(text, pos, pieceEnd, rest)...)
			pos = pieceEnd
		}
		return out
	}
	return runes(text, start, end)
}

func runes(text string, start, end int) []Span {
	out := make([]Span, 0, end-start)
	for pos := start; pos < end; {
		_, size := utf8.DecodeRuneInString(text[pos:end])
		out = append(out, Span{Start: pos, End: pos + size, Length: 1})
		pos += size
	}
	return out
}

func (s *Splitter) merge(pieces []Span) []Span {
	var chunks []Span
	window := make([]Span, 0, len(pieces))
	total := 0

	emit := func() {
		chunks = append(chunks, Span{Start: window[0].Start, End: window[len(window)-1].End, Length: total})
	}

	for _, p := range pieces {
		if total+p.Length > s.chunkSize && len(window) > 0 {
			emit()
			for len(window) > 0 && (total > s.chunkOverlap || total+p.Length > s.chunkSize) {
				total -= window[0].Length
				window = window[1:]
			}
		}
		window = append(window, p)
		total += p.Length
	}
	if len(window) > 0 {
		emit()
	}
	return chunks
}
