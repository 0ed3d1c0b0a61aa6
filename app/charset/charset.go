// Package charset converts raw documents to UTF-8 before they reach the XML
// engine.
package charset

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"github.com/lysyi3m/rsxml/app/sax"
)

type Source string

const (
	SourceBOM         Source = "bom"
	SourceHint        Source = "hint"
	SourceDeclaration Source = "declaration"
	SourceDetected    Source = "detected"
	SourceDefault     Source = "default"
)

type Result struct {
	Data     []byte
	Encoding string
	Source   Source

	input []byte // bytes that were decoded into Data
	enc   encoding.Encoding
	skip  int // length of a stripped byte order mark
}

type byteOrder struct {
	mark []byte
	name string
	enc  encoding.Encoding
}

// Longer marks first: the UTF-32LE mark starts with the UTF-16LE one.
var byteOrders = []byteOrder{
	{[]byte{0x00, 0x00, 0xFE, 0xFF}, "utf-32be", utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)},
	{[]byte{0xFF, 0xFE, 0x00, 0x00}, "utf-32le", utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)},
	{[]byte{0xEF, 0xBB, 0xBF}, "utf-8", unicode.UTF8},
	{[]byte{0xFE, 0xFF}, "utf-16be", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)},
	{[]byte{0xFF, 0xFE}, "utf-16le", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)},
}

// '<' or '<?' laid out in each wide encoding, for input without a mark.
var widePrefixes = []byteOrder{
	{[]byte{0x00, 0x00, 0x00, '<'}, "utf-32be", utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)},
	{[]byte{'<', 0x00, 0x00, 0x00}, "utf-32le", utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)},
	{[]byte{0x00, '<', 0x00, '?'}, "utf-16be", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)},
	{[]byte{'<', 0x00, '?', 0x00}, "utf-16le", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)},
}

// Normalize returns data as UTF-8. The encoding is taken from the first
// usable source: byte order mark, the caller's hint, the XML declaration,
// and finally statistical detection. A hint or declaration is skipped when
// the bytes contradict it, such as a UTF-8 label on invalid UTF-8 or a
// UTF-16 label on 8-bit text.
func Normalize(data []byte, hint string) (*Result, error) {
	for _, bo := range byteOrders {
		if bytes.HasPrefix(data, bo.mark) {
			res, err := transcode(bo.enc, bo.name, data[len(bo.mark):], SourceBOM)
			if res != nil {
				res.skip = len(bo.mark)
			}
			return res, err
		}
	}
	for _, wp := range widePrefixes {
		if bytes.HasPrefix(data, wp.mark) {
			return transcode(wp.enc, wp.name, data, SourceDetected)
		}
	}

	if enc, name, ok := usable(hint, data); ok {
		return transcode(enc, name, data, SourceHint)
	}
	if enc, name, ok := usable(sax.DeclaredEncoding(data), data); ok {
		return transcode(enc, name, data, SourceDeclaration)
	}

	if utf8.Valid(data) {
		return &Result{Data: data, Encoding: "utf-8", Source: SourceDefault}, nil
	}
	return detect(data)
}

// Lookup resolves an encoding label using the WHATWG label table.
func Lookup(label string) (encoding.Encoding, string, bool) {
	label = strings.TrimSpace(strings.Trim(strings.TrimSpace(label), `"'`))
	if label == "" {
		return nil, "", false
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, "", false
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return nil, "", false
	}
	return enc, name, true
}

func usable(label string, data []byte) (encoding.Encoding, string, bool) {
	enc, name, ok := Lookup(label)
	if !ok {
		return nil, "", false
	}
	switch {
	case name == "utf-8" && !utf8.Valid(data):
		return nil, "", false
	case strings.HasPrefix(name, "utf-16") && bytes.IndexByte(data, 0) < 0:
		return nil, "", false
	}
	return enc, name, true
}

func detect(data []byte) (*Result, error) {
	if best, err := chardet.NewTextDetector().DetectBest(data); err == nil {
		if enc, name, ok := Lookup(best.Charset); ok && name != "utf-8" {
			return transcode(enc, name, data, SourceDetected)
		}
	}
	return transcode(charmap.Windows1252, "windows-1252", data, SourceDefault)
}

func transcode(enc encoding.Encoding, name string, data []byte, source Source) (*Result, error) {
	if name == "utf-8" {
		return &Result{Data: data, Encoding: name, Source: source}, nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s input: %w", name, err)
	}
	return &Result{Data: out, Encoding: name, Source: source, input: data, enc: enc}, nil
}

// InputOffsets rewrites offsets into Data, in place, as offsets into the
// document given to Normalize. Offsets need not be sorted and should fall on
// character boundaries. The input is decoded once, up to the largest offset.
func (r *Result) InputOffsets(offsets []int) {
	if r.enc == nil {
		for i := range offsets {
			offsets[i] += r.skip
		}
		return
	}

	order := make([]int, len(offsets))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(offsets[a], offsets[b])
	})

	dec := r.enc.NewDecoder()
	buf := make([]byte, 4096)
	in, out := 0, 0
	for _, i := range order {
		target := min(offsets[i], len(r.Data))
		for out < target && in < len(r.input) {
			// Limiting dst to the distance left keeps whole runes from
			// stepping past the target.
			nDst, nSrc, _ := dec.Transform(buf[:min(len(buf), target-out)], r.input[in:], true)
			if nDst == 0 && nSrc == 0 {
				break
			}
			in += nSrc
			out += nDst
		}
		offsets[i] = r.skip + in
	}
}
