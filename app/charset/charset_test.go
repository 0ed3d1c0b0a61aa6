package charset

import (
	"testing"
	"unicode/utf8"
)

func TestNormalizeUTF8(t *testing.T) {
	input := []byte(`<?xml version="1.0" encoding="utf-8"?><a>café</a>`)
	result, err := Normalize(input, "")
	if err != nil {
		t.Fatalf("Failed to normalize: %v", err)
	}
	if result.Encoding != "utf-8" {
		t.Errorf("Expected utf-8, got: %s", result.Encoding)
	}
	if string(result.Data) != string(input) {
		t.Errorf("Expected data unchanged, got: %q", result.Data)
	}
}

func TestNormalizeByteOrderMarks(t *testing.T) {
	result, err := Normalize([]byte("\xef\xbb\xbf<a/>"), "")
	if err != nil {
		t.Fatalf("Failed to normalize: %v", err)
	}
	if string(result.Data) != "<a/>" || result.Source != SourceBOM {
		t.Errorf("Expected BOM stripped, got: %q (%s)", result.Data, result.Source)
	}

	result, err = Normalize([]byte("\xff\xfe<\x00a\x00/\x00>\x00"), "")
	if err != nil {
		t.Fatalf("Failed to normalize: %v", err)
	}
	if string(result.Data) != "<a/>" {
		t.Errorf("Expected UTF-16LE decoded, got: %q", result.Data)
	}
	if result.Encoding != "utf-16le" {
		t.Errorf("Expected utf-16le, got: %s", result.Encoding)
	}

	result, err = Normalize([]byte("\x00<\x00?\x00x\x00m\x00l"), "")
	if err != nil {
		t.Fatalf("Failed to normalize: %v", err)
	}
	if string(result.Data) != "<?xml" || result.Source != SourceDetected {
		t.Errorf("Expected UTF-16BE without mark detected, got: %q (%s)", result.Data, result.Source)
	}
}

func TestNormalizeDeclaration(t *testing.T) {
	input := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><a>caf\xe9</a>")
	result, err := Normalize(input, "")
	if err != nil {
		t.Fatalf("Failed to normalize: %v", err)
	}
	if result.Source != SourceDeclaration {
		t.Errorf("Expected declaration source, got: %s", result.Source)
	}
	if result.Encoding != "windows-1252" {
		t.Errorf("Expected windows-1252 for ISO-8859-1 label, got: %s", result.Encoding)
	}
	if string(result.Data) != `<?xml version="1.0" encoding="ISO-8859-1"?><a>café</a>` {
		t.Errorf("Expected transcoded text, got: %q", result.Data)
	}
}

func TestNormalizeHint(t *testing.T) {
	input := []byte("<a>\xcf\xf0\xe8\xe2\xe5\xf2</a>")
	result, err := Normalize(input, "windows-1251")
	if err != nil {
		t.Fatalf("Failed to normalize: %v", err)
	}
	if string(result.Data) != "<a>Привет</a>" {
		t.Errorf("Expected Cyrillic text, got: %q", result.Data)
	}
	if result.Source != SourceHint {
		t.Errorf("Expected hint source, got: %s", result.Source)
	}
}

func TestNormalizeSkipsContradictedLabels(t *testing.T) {
	// UTF-8 hint on Latin-1 bytes falls through to the declaration.
	input := []byte("<?xml version=\"1.0\" encoding=\"iso-8859-1\"?><a>\xe9</a>")
	result, err := Normalize(input, "utf-8")
	if err != nil {
		t.Fatalf("Failed to normalize: %v", err)
	}
	if result.Source != SourceDeclaration {
		t.Errorf("Expected declaration source, got: %s", result.Source)
	}

	// UTF-16 declaration on 8-bit text is a common lie.
	input = []byte(`<?xml version="1.0" encoding="UTF-16"?><a>x</a>`)
	result, err = Normalize(input, "")
	if err != nil {
		t.Fatalf("Failed to normalize: %v", err)
	}
	if result.Encoding != "utf-8" || string(result.Data) != string(input) {
		t.Errorf("Expected UTF-16 label ignored, got: %s %q", result.Encoding, result.Data)
	}
}

func TestNormalizeDetectsInvalidUTF8(t *testing.T) {
	input := []byte("<rss><channel><title>Caf\xe9 cr\xe8me br\xfbl\xe9e \xe0 la fran\xe7aise</title></channel></rss>")
	result, err := Normalize(input, "")
	if err != nil {
		t.Fatalf("Failed to normalize: %v", err)
	}
	if !utf8.Valid(result.Data) {
		t.Errorf("Expected valid UTF-8 output, got: %q", result.Data)
	}
	if result.Encoding == "utf-8" {
		t.Error("Expected a non UTF-8 encoding to be chosen")
	}
}

func TestLookup(t *testing.T) {
	if _, name, ok := Lookup(" \"UTF8\" "); !ok || name != "utf-8" {
		t.Errorf("Expected utf-8, got: %q (%v)", name, ok)
	}
	if _, _, ok := Lookup("no-such-charset"); ok {
		t.Error("Expected unknown label to fail")
	}
	if _, _, ok := Lookup(""); ok {
		t.Error("Expected empty label to fail")
	}
}

func TestInputOffsets(t *testing.T) {
	input := []byte("\xff\xfe<\x00a\x00>\x00\xe9\x00<\x00/\x00a\x00>\x00")
	result, err := Normalize(input, "")
	if err != nil {
		t.Fatalf("Failed to normalize: %v", err)
	}
	if string(result.Data) != "<a>é</a>" {
		t.Fatalf("Expected UTF-16LE decoded, got: %q", result.Data)
	}

	offsets := []int{5, 0, 3}
	result.InputOffsets(offsets)
	expected := []int{12, 2, 8}
	for i := range expected {
		if offsets[i] != expected[i] {
			t.Errorf("Expected offset %d to map to %d, got: %d", i, expected[i], offsets[i])
		}
	}

	result, err = Normalize([]byte("\xef\xbb\xbf<a>é</a>"), "")
	if err != nil {
		t.Fatalf("Failed to normalize: %v", err)
	}
	offsets = []int{5}
	result.InputOffsets(offsets)
	if offsets[0] != 8 {
		t.Errorf("Expected BOM length added, got: %d", offsets[0])
	}
}
