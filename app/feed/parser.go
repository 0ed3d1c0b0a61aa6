package feed

import (
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rsxml/app/charset"
	"github.com/lysyi3m/rsxml/app/sax"
)

type Parser struct {
	lookahead int
}

type Option func(*Parser)

// WithLookahead bounds how many start and end tags flavor sniffing may
// inspect before giving up on the document.
func WithLookahead(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.lookahead = n
		}
	}
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{lookahead: DefaultLookahead}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run decodes data, optionally guided by a charset hint, and extracts the
// feed it holds. Recoverable problems are returned as warnings alongside
// the feed. A non-nil error means no feed was extracted.
func (p *Parser) Run(data []byte, hintedEncoding string) (*ParsedFeed, []Warning, error) {
	normalized, err := charset.Normalize(data, hintedEncoding)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to normalize encoding: %w", err)
	}

	x := newExtractor(p.lookahead)
	if err := sax.ParseWithOptions(normalized.Data, x, sax.Options{Transcoded: true}); err != nil && x.err == nil {
		// Fatal engine errors are already recorded as warnings.
		slog.Debug("Feed document ended early", "error", err)
	}

	x.inputOffsets(normalized)

	if x.err != nil {
		return nil, x.warnings, x.err
	}
	if x.flavor == 0 {
		return nil, x.warnings, &Error{Kind: NotAFeed}
	}

	feed := x.feed
	feed.Encoding = normalized.Encoding

	slog.Debug("Parsed feed",
		"flavor", feed.Flavor,
		"encoding", feed.Encoding,
		"encoding_source", normalized.Source,
		"articles", len(feed.Articles),
		"warnings", len(x.warnings))

	return &feed, x.warnings, nil
}

// inputOffsets moves warning and error offsets from the decoded UTF-8 buffer
// back onto the caller's bytes.
func (x *extractor) inputOffsets(normalized *charset.Result) {
	offsets := make([]int, 0, len(x.warnings)+1)
	for _, w := range x.warnings {
		offsets = append(offsets, w.ByteOffset)
	}
	if x.err != nil {
		offsets = append(offsets, x.err.Offset)
	}

	normalized.InputOffsets(offsets)

	for i := range x.warnings {
		x.warnings[i].ByteOffset = offsets[i]
	}
	if x.err != nil {
		x.err.Offset = offsets[len(x.warnings)]
	}
}

// Parse runs a parser with default options.
func Parse(data []byte, hintedEncoding string) (*ParsedFeed, []Warning, error) {
	return NewParser().Run(data, hintedEncoding)
}
