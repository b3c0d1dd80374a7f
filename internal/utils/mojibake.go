package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const (
	// DefaultCJKWeight rewards each ideograph found in a candidate
	DefaultCJKWeight = 5
	// DefaultMarkerWeight penalises each mojibake marker found in a candidate
	DefaultMarkerWeight = 3
	// DefaultMarkers are the Latin-1/CP1252 characters that show up when UTF-8 lead bytes are misread
	DefaultMarkers = "ÃÂåæçèéäï¼½¾¿â€"
)

// DefaultEncodings is the order legacy encodings are tried in
var DefaultEncodings = []string{"latin1", "cp1252"}

var legacyEncodings = map[string]encoding.Encoding{
	"latin1":       charmap.ISO8859_1,
	"latin-1":      charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso8859-1":    charmap.ISO8859_1,
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
}

// RepairOptions tunes the mojibake scoring heuristic
type RepairOptions struct {
	CJKWeight    int
	MarkerWeight int
	Markers      string
	Encodings    []string
}

// DefaultRepairOptions returns the stock weights, markers and encodings
func DefaultRepairOptions() RepairOptions {
	return RepairOptions{
		CJKWeight:    DefaultCJKWeight,
		MarkerWeight: DefaultMarkerWeight,
		Markers:      DefaultMarkers,
		Encodings:    DefaultEncodings,
	}
}

type legacyEncoding struct {
	name string
	enc  encoding.Encoding
}

// Repairer picks the most plausible reading of text that may have been
// UTF-8 decoded as a single-byte Western encoding
type Repairer struct {
	cjkWeight    int
	markerWeight int
	markers      map[rune]struct{}
	encodings    []legacyEncoding
	logger       *zap.Logger
}

// candidate is the outcome of one re-encoding attempt
type candidate struct {
	text   string
	source string
	ok     bool
}

// NewRepairer creates a Repairer; unknown encoding names are rejected
func NewRepairer(opts RepairOptions, logger *zap.Logger) (*Repairer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	names := opts.Encodings
	if len(names) == 0 {
		names = DefaultEncodings
	}
	encodings := make([]legacyEncoding, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		enc, ok := legacyEncodings[key]
		if !ok {
			return nil, fmt.Errorf("unsupported legacy encoding: %s", name)
		}
		encodings = append(encodings, legacyEncoding{name: key, enc: enc})
	}

	markers := make(map[rune]struct{})
	for _, r := range opts.Markers {
		markers[r] = struct{}{}
	}

	return &Repairer{
		cjkWeight:    opts.CJKWeight,
		markerWeight: opts.MarkerWeight,
		markers:      markers,
		encodings:    encodings,
		logger:       logger,
	}, nil
}

// Repair trims text and returns the highest scoring candidate reading.
// Ties keep the earliest candidate, so the input wins unless a re-decoding
// scores strictly better.
func (r *Repairer) Repair(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	best := text
	bestScore := r.Score(text)
	for _, enc := range r.encodings {
		c := r.reencode(text, enc)
		if !c.ok {
			continue
		}
		if score := r.Score(c.text); score > bestScore {
			best, bestScore = c.text, score
		}
	}

	if best != text {
		r.logger.Debug("Repaired mis-decoded text",
			zap.Int("original_size", len(text)),
			zap.Int("repaired_size", len(best)),
			zap.Int("score", bestScore))
	}
	return best
}

// Score rates how much text looks like intact CJK rather than mojibake
func (r *Repairer) Score(text string) int {
	cjk, markers := 0, 0
	for _, ch := range text {
		if isCJK(ch) {
			cjk++
		}
		if _, ok := r.markers[ch]; ok {
			markers++
		}
	}
	return r.cjkWeight*cjk - r.markerWeight*markers
}

// reencode turns text back into the bytes a legacy decoder would have read
// and reinterprets them as UTF-8
func (r *Repairer) reencode(text string, enc legacyEncoding) candidate {
	raw, err := enc.enc.NewEncoder().String(text)
	if err != nil {
		r.logger.Debug("Candidate dropped, not representable",
			zap.String("encoding", enc.name), zap.Error(err))
		return candidate{source: enc.name}
	}
	if !utf8.ValidString(raw) {
		r.logger.Debug("Candidate dropped, not valid UTF-8", zap.String("encoding", enc.name))
		return candidate{source: enc.name}
	}
	return candidate{text: raw, source: enc.name, ok: true}
}

func isCJK(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

var defaultRepairer, _ = NewRepairer(DefaultRepairOptions(), nil)

// RepairText runs the default repairer
func RepairText(text string) string {
	return defaultRepairer.Repair(text)
}
