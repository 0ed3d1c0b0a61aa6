package feed

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func hasWarning(warnings []Warning, kind WarningKind) bool {
	for _, w := range warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

func countWarnings(warnings []Warning, kind WarningKind) int {
	n := 0
	for _, w := range warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

const rss2Data = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <language>en-us</language>
    <lastBuildDate>Mon, 03 Jul 2023 12:00:00 GMT</lastBuildDate>
    <image>
      <url>https://example.com/icon.png</url>
      <title>Test Feed</title>
      <link>https://example.com</link>
    </image>
    <item>
      <title>Test Item 1</title>
      <link>https://example.com/item1</link>
      <description>Test Item 1 Description</description>
      <guid>item-1</guid>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
      <author>test@example.com (Test Author)</author>
      <category>Technology</category>
      <category>Programming</category>
    </item>
    <item>
      <title>Test Item 2</title>
      <link>https://example.com/item2</link>
      <description>Test Item 2 Description</description>
      <guid>item-2</guid>
      <pubDate>Mon, 03 Jul 2023 11:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func TestParseRSS2(t *testing.T) {
	parser := NewParser()
	feed, warnings, err := parser.Run([]byte(rss2Data), "")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got: %v", warnings)
	}

	if feed.Flavor != FlavorRSS || feed.Version != "2.0" {
		t.Errorf("Expected rss 2.0, got: %s %s", feed.Flavor, feed.Version)
	}
	if feed.Title != "Test Feed" {
		t.Errorf("Expected title 'Test Feed', got: %s", feed.Title)
	}
	if feed.Link != "https://example.com" {
		t.Errorf("Expected link 'https://example.com', got: %s", feed.Link)
	}
	if feed.Description != "Test Description" {
		t.Errorf("Expected description 'Test Description', got: %s", feed.Description)
	}
	if feed.Language != "en-us" {
		t.Errorf("Expected language 'en-us', got: %s", feed.Language)
	}
	if feed.IconURL != "https://example.com/icon.png" {
		t.Errorf("Expected icon URL 'https://example.com/icon.png', got: %s", feed.IconURL)
	}
	if feed.Encoding != "utf-8" {
		t.Errorf("Expected utf-8 encoding, got: %s", feed.Encoding)
	}
	expectedUpdated := time.Date(2023, 7, 3, 12, 0, 0, 0, time.UTC)
	if feed.Updated == nil || !feed.Updated.Equal(expectedUpdated) {
		t.Errorf("Expected updated %v, got: %v", expectedUpdated, feed.Updated)
	}

	if len(feed.Articles) != 2 {
		t.Fatalf("Expected 2 articles, got: %d", len(feed.Articles))
	}

	article := feed.Articles[0]
	if article.Title != "Test Item 1" {
		t.Errorf("Expected title 'Test Item 1', got: %s", article.Title)
	}
	if article.Link != "https://example.com/item1" {
		t.Errorf("Expected link 'https://example.com/item1', got: %s", article.Link)
	}
	if article.ID != "item-1" {
		t.Errorf("Expected ID 'item-1', got: %s", article.ID)
	}
	if article.Body != "Test Item 1 Description" {
		t.Errorf("Expected description body, got: %s", article.Body)
	}
	if len(article.Categories) != 2 {
		t.Errorf("Expected 2 categories, got: %d", len(article.Categories))
	}
	if len(article.Authors) != 1 || article.Authors[0] != (Author{Name: "Test Author", Email: "test@example.com"}) {
		t.Errorf("Expected parsed author, got: %+v", article.Authors)
	}
	expectedPublished := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	if article.Published == nil || !article.Published.Equal(expectedPublished) {
		t.Errorf("Expected published %v, got: %v", expectedPublished, article.Published)
	}
	if feed.Articles[1].ID != "item-2" {
		t.Errorf("Expected ID 'item-2', got: %s", feed.Articles[1].ID)
	}
}

func TestParseRSS2MatchesGofeed(t *testing.T) {
	reference, err := gofeed.NewParser().ParseString(rss2Data)
	if err != nil {
		t.Fatalf("Failed to parse with gofeed: %v", err)
	}

	feed, _, err := Parse([]byte(rss2Data), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if feed.Title != reference.Title {
		t.Errorf("Expected title %q, got: %q", reference.Title, feed.Title)
	}
	if len(feed.Articles) != len(reference.Items) {
		t.Fatalf("Expected %d articles, got: %d", len(reference.Items), len(feed.Articles))
	}
	for i, item := range reference.Items {
		article := feed.Articles[i]
		if article.ID != item.GUID {
			t.Errorf("Article %d: expected ID %q, got: %q", i, item.GUID, article.ID)
		}
		if article.Link != item.Link {
			t.Errorf("Article %d: expected link %q, got: %q", i, item.Link, article.Link)
		}
		if item.PublishedParsed == nil || article.Published == nil || !item.PublishedParsed.Equal(*article.Published) {
			t.Errorf("Article %d: expected published %v, got: %v", i, item.PublishedParsed, article.Published)
		}
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xml:lang="en">
  <title>Test Atom Feed</title>
  <subtitle>All about tests</subtitle>
  <link href="https://example.com"/>
  <link rel="self" href="https://example.com/atom.xml"/>
  <updated>2023-07-03T12:00:00Z</updated>
  <author>
    <name>Test Author</name>
    <email>author@example.com</email>
  </author>
  <id>urn:uuid:1234567890</id>
  <logo>https://example.com/logo.png</logo>
  <icon>https://example.com/favicon.ico</icon>
  <entry>
    <title>Test Entry</title>
    <link href="https://example.com/entry1"/>
    <link rel="enclosure" type="audio/mpeg" length="1234" href="https://example.com/entry1.mp3"/>
    <id>urn:uuid:entry-1</id>
    <updated>2023-07-03T10:00:00Z</updated>
    <summary>Short summary</summary>
    <content type="html">&lt;p&gt;Test content&lt;/p&gt;</content>
    <category term="go"/>
  </entry>
</feed>`

	feed, warnings, err := NewParser().Run([]byte(atomData), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if feed.Flavor != FlavorAtom || feed.Version != "1.0" {
		t.Errorf("Expected atom 1.0, got: %s %s", feed.Flavor, feed.Version)
	}
	if feed.Title != "Test Atom Feed" {
		t.Errorf("Expected title 'Test Atom Feed', got: %s", feed.Title)
	}
	if feed.Description != "All about tests" {
		t.Errorf("Expected subtitle as description, got: %s", feed.Description)
	}
	if feed.Link != "https://example.com" {
		t.Errorf("Expected link 'https://example.com', got: %s", feed.Link)
	}
	if feed.FeedURL != "https://example.com/atom.xml" {
		t.Errorf("Expected self link as feed URL, got: %s", feed.FeedURL)
	}
	if feed.Language != "en" {
		t.Errorf("Expected language from xml:lang, got: %s", feed.Language)
	}
	if feed.IconURL != "https://example.com/favicon.ico" {
		t.Errorf("Expected icon to win over logo, got: %s", feed.IconURL)
	}
	if !hasWarning(warnings, WarnIgnoredElement) {
		t.Errorf("Expected feed id to be reported as ignored, got: %v", warnings)
	}

	if len(feed.Articles) != 1 {
		t.Fatalf("Expected 1 article, got: %d", len(feed.Articles))
	}

	article := feed.Articles[0]
	if article.Title != "Test Entry" {
		t.Errorf("Expected title 'Test Entry', got: %s", article.Title)
	}
	if article.Link != "https://example.com/entry1" {
		t.Errorf("Expected link 'https://example.com/entry1', got: %s", article.Link)
	}
	if article.ID != "urn:uuid:entry-1" {
		t.Errorf("Expected ID 'urn:uuid:entry-1', got: %s", article.ID)
	}
	if article.Body != "<p>Test content</p>" {
		t.Errorf("Expected content to win over summary, got: %s", article.Body)
	}
	if len(article.Enclosures) != 1 || article.Enclosures[0] != (Enclosure{URL: "https://example.com/entry1.mp3", MIMEType: "audio/mpeg", Length: 1234}) {
		t.Errorf("Expected enclosure link, got: %+v", article.Enclosures)
	}
	if len(article.Categories) != 1 || article.Categories[0] != "go" {
		t.Errorf("Expected category 'go', got: %v", article.Categories)
	}
	if len(article.Authors) != 1 || article.Authors[0].Name != "Test Author" {
		t.Errorf("Expected feed author to be inherited, got: %+v", article.Authors)
	}
	updated := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	if article.Published == nil || !article.Published.Equal(updated) {
		t.Errorf("Expected published to fall back to updated, got: %v", article.Published)
	}
}

func TestParseAtomXHTMLContent(t *testing.T) {
	data := `<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>tag:example.com,2024:1</id>
    <title type="xhtml"><div xmlns="http://www.w3.org/1999/xhtml">Fish &amp; Chips</div></title>
    <content type="xhtml">
      <div xmlns="http://www.w3.org/1999/xhtml"><p>Hello <b>world</b> &amp; more<br/></p></div>
    </content>
  </entry>
</feed>`

	feed, _, err := Parse([]byte(data), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(feed.Articles) != 1 {
		t.Fatalf("Expected 1 article, got: %d", len(feed.Articles))
	}

	article := feed.Articles[0]
	if article.Title != "Fish &amp; Chips" {
		t.Errorf("Expected escaped xhtml title, got: %s", article.Title)
	}
	if article.Body != "<p>Hello <b>world</b> &amp; more<br></p>" {
		t.Errorf("Expected serialized xhtml body, got: %s", article.Body)
	}
}

func TestParseAtom03(t *testing.T) {
	data := `<?xml version="1.0"?>
<feed version="0.3" xmlns="http://purl.org/atom/ns#">
  <title>Old Feed</title>
  <tagline>Legacy</tagline>
  <modified>2004-01-02T03:04:05Z</modified>
  <entry>
    <title>Entry</title>
    <id>tag:example.com,2004:1</id>
    <issued>2004-01-02T03:04:05Z</issued>
    <content type="text/html" mode="base64">PHA+aGk8L3A+</content>
  </entry>
</feed>`

	feed, _, err := Parse([]byte(data), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if feed.Flavor != FlavorAtom || feed.Version != "0.3" {
		t.Errorf("Expected atom 0.3, got: %s %s", feed.Flavor, feed.Version)
	}
	if feed.Description != "Legacy" {
		t.Errorf("Expected tagline as description, got: %s", feed.Description)
	}
	if feed.Updated == nil {
		t.Error("Expected modified date to be parsed")
	}
	if len(feed.Articles) != 1 {
		t.Fatalf("Expected 1 article, got: %d", len(feed.Articles))
	}
	if feed.Articles[0].Body != "<p>hi</p>" {
		t.Errorf("Expected base64 content decoded, got: %s", feed.Articles[0].Body)
	}
	if feed.Articles[0].Published == nil {
		t.Error("Expected issued date as published")
	}
}

func TestParseRDF(t *testing.T) {
	data := `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns="http://purl.org/rss/1.0/"
         xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel rdf:about="https://example.com/rss">
    <title>RDF Feed</title>
    <link>https://example.com/</link>
    <description>An RSS 1.0 feed</description>
    <dc:language>en</dc:language>
    <items>
      <rdf:Seq>
        <rdf:li rdf:resource="https://example.com/a"/>
      </rdf:Seq>
    </items>
  </channel>
  <image rdf:about="https://example.com/logo.png">
    <url>https://example.com/logo.png</url>
  </image>
  <item rdf:about="https://example.com/a">
    <title>First</title>
    <link>https://example.com/a</link>
    <dc:creator>Jane</dc:creator>
    <dc:date>2024-01-02T03:04:05Z</dc:date>
  </item>
</rdf:RDF>`

	feed, warnings, err := Parse([]byte(data), "")
	if err != nil {
		t.Fatalf("Expected RDF to be accepted, got: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got: %v", warnings)
	}
	if feed.Flavor != FlavorRDF || feed.Version != "1.0" {
		t.Errorf("Expected rdf 1.0, got: %s %s", feed.Flavor, feed.Version)
	}
	if feed.Title != "RDF Feed" || feed.Language != "en" {
		t.Errorf("Expected channel metadata, got: %q %q", feed.Title, feed.Language)
	}
	if feed.IconURL != "https://example.com/logo.png" {
		t.Errorf("Expected image URL, got: %s", feed.IconURL)
	}
	if len(feed.Articles) != 1 {
		t.Fatalf("Expected 1 article, got: %d", len(feed.Articles))
	}

	article := feed.Articles[0]
	if article.ID != "https://example.com/a" {
		t.Errorf("Expected rdf:about as ID, got: %s", article.ID)
	}
	if len(article.Authors) != 1 || article.Authors[0].Name != "Jane" {
		t.Errorf("Expected dc:creator author, got: %+v", article.Authors)
	}
	expected := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if article.Published == nil || !article.Published.Equal(expected) {
		t.Errorf("Expected published %v, got: %v", expected, article.Published)
	}
}

func TestContentPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		item     string
		expected string
	}{
		{
			name:     "content after description",
			item:     `<description>short</description><content:encoded><![CDATA[<p>long</p>]]></content:encoded>`,
			expected: "<p>long</p>",
		},
		{
			name:     "content before description",
			item:     `<content:encoded><![CDATA[<p>long</p>]]></content:encoded><description>short</description>`,
			expected: "<p>long</p>",
		},
		{
			name:     "description promoted",
			item:     `<description>short</description>`,
			expected: "short",
		},
		{
			name:     "empty content ignored",
			item:     `<content:encoded>  </content:encoded><description>short</description>`,
			expected: "short",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := `<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/"><channel><item><guid>1</guid>` +
				tt.item + `</item></channel></rss>`
			feed, _, err := Parse([]byte(data), "")
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if len(feed.Articles) != 1 {
				t.Fatalf("Expected 1 article, got: %d", len(feed.Articles))
			}
			if feed.Articles[0].Body != tt.expected {
				t.Errorf("Expected body %q, got: %q", tt.expected, feed.Articles[0].Body)
			}
		})
	}
}

func TestGUIDFallback(t *testing.T) {
	data := `<rss version="2.0"><channel>
  <item><link>https://example.com/a</link><title>Linked</title></item>
  <item><title>Dated</title><pubDate>Tue, 02 Jan 2024 03:04:05 GMT</pubDate></item>
  <item><description>Only a body</description></item>
  <item><guid isPermaLink="true">https://example.com/perma</guid></item>
</channel></rss>`

	first, _, err := Parse([]byte(data), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	second, _, err := Parse([]byte(data), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(first.Articles) != 4 {
		t.Fatalf("Expected 4 articles, got: %d", len(first.Articles))
	}

	seen := make(map[string]bool)
	for i, article := range first.Articles {
		if article.ID == "" {
			t.Errorf("Article %d: expected non-empty ID", i)
		}
		if article.ID != second.Articles[i].ID {
			t.Errorf("Article %d: expected stable ID, got: %s and %s", i, article.ID, second.Articles[i].ID)
		}
		if seen[article.ID] {
			t.Errorf("Article %d: expected distinct ID, got duplicate %s", i, article.ID)
		}
		seen[article.ID] = true
	}

	if first.Articles[0].ID != "https://example.com/a" {
		t.Errorf("Expected link as ID, got: %s", first.Articles[0].ID)
	}
	if first.Articles[1].ID != digest("Dated|2024-01-02T03:04:05Z") {
		t.Errorf("Expected title and date digest, got: %s", first.Articles[1].ID)
	}
	if first.Articles[3].Link != "https://example.com/perma" {
		t.Errorf("Expected permalink guid as link, got: %s", first.Articles[3].Link)
	}
}

func TestOrderPreservation(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<rss version="2.0"><channel>`)
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "<item><guid>%d</guid></item>", i)
	}
	b.WriteString(`</channel></rss>`)

	feed, _, err := Parse([]byte(b.String()), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(feed.Articles) != 20 {
		t.Fatalf("Expected 20 articles, got: %d", len(feed.Articles))
	}
	for i, article := range feed.Articles {
		if article.ID != fmt.Sprint(i) {
			t.Errorf("Expected article %d in position %d, got: %s", i, i, article.ID)
		}
	}
}

func TestMalformedItemResilience(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<rss version="2.0"><channel><title>Broken</title>`)
	for i := 1; i <= 5; i++ {
		title := fmt.Sprintf("Item %d", i)
		if i == 3 {
			title = "Fish &amp Chips"
		}
		fmt.Fprintf(&b, "<item><guid>%d</guid><title>%s</title></item>", i, title)
	}
	b.WriteString(`</channel></rss>`)

	feed, warnings, err := Parse([]byte(b.String()), "")
	if err != nil {
		t.Fatalf("Expected recoverable parse, got: %v", err)
	}
	if len(feed.Articles) != 5 {
		t.Fatalf("Expected 5 articles, got: %d", len(feed.Articles))
	}
	if len(warnings) == 0 {
		t.Error("Expected at least one warning")
	}
	if !hasWarning(warnings, WarnUnknownEntity) {
		t.Errorf("Expected unknown entity warning, got: %v", warnings)
	}
	if feed.Articles[2].Title != "Fish &amp Chips" {
		t.Errorf("Expected literal text kept, got: %s", feed.Articles[2].Title)
	}
}

func TestTagMismatchRecovery(t *testing.T) {
	data := `<rss version="2.0"><channel><title>T</title>
<item><title>One <b>bold</title><guid>1</guid></item>
<item><title>Two</title><guid>2</guid></item>
</channel></rss>`

	feed, warnings, err := Parse([]byte(data), "")
	if err != nil {
		t.Fatalf("Expected recoverable parse, got: %v", err)
	}
	if !hasWarning(warnings, WarnTagMismatch) {
		t.Errorf("Expected tag mismatch warning, got: %v", warnings)
	}
	if len(feed.Articles) != 2 {
		t.Fatalf("Expected 2 articles, got: %d", len(feed.Articles))
	}
	if feed.Articles[1].ID != "2" || feed.Articles[1].Title != "Two" {
		t.Errorf("Expected second item intact, got: %+v", feed.Articles[1])
	}
}

func TestTruncatedDocument(t *testing.T) {
	data := `<rss version="2.0"><channel>
<item><guid>1</guid><title>Complete</title></item>
<item><guid>2</guid><title>Cut off`

	feed, warnings, err := Parse([]byte(data), "")
	if err != nil {
		t.Fatalf("Expected truncation to be recoverable, got: %v", err)
	}
	if len(feed.Articles) != 1 || feed.Articles[0].ID != "1" {
		t.Errorf("Expected only the complete article, got: %+v", feed.Articles)
	}
	if !hasWarning(warnings, WarnTruncatedDocument) {
		t.Errorf("Expected truncated document warning, got: %v", warnings)
	}
}

func TestUnparseableDate(t *testing.T) {
	data := `<rss version="2.0"><channel><item><guid>1</guid><pubDate>sometime soon</pubDate></item></channel></rss>`

	feed, warnings, err := Parse([]byte(data), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if feed.Articles[0].Published != nil {
		t.Errorf("Expected absent date, got: %v", feed.Articles[0].Published)
	}
	if !hasWarning(warnings, WarnUnparseableDate) {
		t.Errorf("Expected unparseable date warning, got: %v", warnings)
	}
}

func TestWarningOffsetsIndexInput(t *testing.T) {
	doc := `<rss version="2.0"><channel><title>Привет</title><item><guid>1</guid><pubDate>sometime soon</pubDate></item></channel></rss>`
	prefix := doc[:strings.Index(doc, "<pubDate>")]

	cp1251, err := charmap.Windows1251.NewEncoder().Bytes([]byte(doc))
	if err != nil {
		t.Fatalf("Failed to encode windows-1251 document: %v", err)
	}
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(doc))
	if err != nil {
		t.Fatalf("Failed to encode utf-16 document: %v", err)
	}

	tests := []struct {
		name     string
		data     []byte
		hint     string
		expected int
	}{
		{"utf-8", []byte(doc), "", len(prefix)},
		{"utf-8 with bom", append([]byte("\xef\xbb\xbf"), doc...), "", 3 + len(prefix)},
		{"windows-1251", cp1251, "windows-1251", bytes.Index(cp1251, []byte("<pubDate>"))},
		{"utf-16le", utf16, "", 2 + 2*utf8.RuneCountInString(prefix)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed, warnings, err := Parse(tt.data, tt.hint)
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if feed.Title != "Привет" {
				t.Errorf("Expected decoded title, got: %s", feed.Title)
			}

			var found bool
			for _, w := range warnings {
				if w.Kind != WarnUnparseableDate {
					continue
				}
				found = true
				if w.ByteOffset != tt.expected {
					t.Errorf("Expected offset %d, got: %d", tt.expected, w.ByteOffset)
				}
			}
			if !found {
				t.Errorf("Expected unparseable date warning, got: %v", warnings)
			}
		})
	}
}

func TestIgnoredElementsWarnOnce(t *testing.T) {
	data := `<rss version="2.0" xmlns:slash="http://purl.org/rss/1.0/modules/slash/"><channel>
<item><guid>1</guid><slash:comments>3</slash:comments></item>
<item><guid>2</guid><slash:comments>5</slash:comments></item>
</channel></rss>`

	_, warnings, err := Parse([]byte(data), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if n := countWarnings(warnings, WarnIgnoredElement); n != 1 {
		t.Errorf("Expected 1 ignored element warning, got: %d (%v)", n, warnings)
	}
}

func TestMediaAndEnclosures(t *testing.T) {
	data := `<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/"><channel>
<link>https://example.com/blog/</link>
<item>
  <guid>1</guid>
  <link>/posts/1</link>
  <enclosure url="audio/1.mp3" type="audio/mpeg" length="100"/>
  <media:content url="audio/1.mp3" fileSize="100"/>
  <media:group>
    <media:content url="https://cdn.example.com/1.jpg" medium="image" type="image/jpeg"/>
  </media:group>
  <media:thumbnail url="https://cdn.example.com/thumb.jpg"/>
</item>
</channel></rss>`

	feed, _, err := Parse([]byte(data), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	article := feed.Articles[0]
	if article.Link != "https://example.com/posts/1" {
		t.Errorf("Expected resolved link, got: %s", article.Link)
	}
	if len(article.Enclosures) != 2 {
		t.Fatalf("Expected 2 enclosures, got: %+v", article.Enclosures)
	}
	if article.Enclosures[0] != (Enclosure{URL: "https://example.com/blog/audio/1.mp3", MIMEType: "audio/mpeg", Length: 100}) {
		t.Errorf("Expected resolved enclosure, got: %+v", article.Enclosures[0])
	}
	if article.ImageURL != "https://cdn.example.com/thumb.jpg" {
		t.Errorf("Expected thumbnail to win, got: %s", article.ImageURL)
	}
}

func TestParseEncodingHint(t *testing.T) {
	data := []byte("<rss version=\"2.0\"><channel><title>\xcf\xf0\xe8\xe2\xe5\xf2</title></channel></rss>")

	feed, _, err := Parse(data, "windows-1251")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if feed.Title != "Привет" {
		t.Errorf("Expected decoded title, got: %s", feed.Title)
	}
	if feed.Encoding != "windows-1251" {
		t.Errorf("Expected windows-1251, got: %s", feed.Encoding)
	}
}

func TestParseRejectsNonFeeds(t *testing.T) {
	tests := []struct {
		name string
		data string
		kind ErrorKind
	}{
		{"html", `<html><head><title>x</title></head><body></body></html>`, NotAFeed},
		{"plain text", "invalid xml", NotAFeed},
		{"empty", "", NotAFeed},
		{"opml", `<opml version="2.0"><body/></opml>`, UnsupportedFlavor},
		{"foreign atom", `<feed xmlns="urn:example:not-atom"><title>x</title></feed>`, UnsupportedFlavor},
		{"rdf without channel", `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"><foo/></rdf:RDF>`, NotAFeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed, _, err := Parse([]byte(tt.data), "")
			if feed != nil {
				t.Errorf("Expected no feed, got: %+v", feed)
			}
			var feedErr *Error
			if !errors.As(err, &feedErr) {
				t.Fatalf("Expected *Error, got: %v", err)
			}
			if feedErr.Kind != tt.kind {
				t.Errorf("Expected %s, got: %s", tt.kind, feedErr.Kind)
			}
		})
	}

	_, _, err := Parse([]byte(`<html></html>`), "")
	if !errors.Is(err, ErrNotAFeed) {
		t.Errorf("Expected ErrNotAFeed, got: %v", err)
	}
}

func TestLookaheadBound(t *testing.T) {
	data := []byte(`<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns="http://purl.org/rss/1.0/">
<a/><b/><c/><channel><title>Late</title></channel></rdf:RDF>`)

	if _, _, err := NewParser(WithLookahead(4)).Run(data, ""); !errors.Is(err, ErrNotAFeed) {
		t.Errorf("Expected NotAFeed with short lookahead, got: %v", err)
	}

	feed, _, err := NewParser().Run(data, "")
	if err != nil {
		t.Fatalf("Expected default lookahead to reach channel, got: %v", err)
	}
	if feed.Title != "Late" {
		t.Errorf("Expected title 'Late', got: %s", feed.Title)
	}
}

func TestParseAuthor(t *testing.T) {
	tests := []struct {
		input    string
		expected Author
	}{
		{"test@example.com (Test Author)", Author{Name: "Test Author", Email: "test@example.com"}},
		{"Test Author <test@example.com>", Author{Name: "Test Author", Email: "test@example.com"}},
		{"mailto:test@example.com", Author{Email: "test@example.com"}},
		{"Test Author", Author{Name: "Test Author"}},
		{"Team (Editors)", Author{Name: "Team (Editors)"}},
		{"", Author{}},
	}

	for _, tt := range tests {
		if got := parseAuthor(tt.input); got != tt.expected {
			t.Errorf("parseAuthor(%q): expected %+v, got: %+v", tt.input, tt.expected, got)
		}
	}
}

func TestAuthorString(t *testing.T) {
	tests := []struct {
		author   Author
		expected string
	}{
		{Author{Name: "John Doe", Email: "john@example.com"}, "john@example.com (John Doe)"},
		{Author{Name: "John Doe"}, "John Doe"},
		{Author{Email: "john@example.com"}, "john@example.com"},
		{Author{URL: "https://example.com/john"}, "https://example.com/john"},
	}

	for _, tt := range tests {
		if got := tt.author.String(); got != tt.expected {
			t.Errorf("Expected %q, got: %q", tt.expected, got)
		}
	}
}

func TestRanked(t *testing.T) {
	var r ranked[string]
	if r.set() {
		t.Error("Expected empty ranked value to be unset")
	}
	r.offer("summary", bodySummary)
	r.offer("content", bodyContent)
	r.offer("other summary", bodySummary)
	r.offer("other content", bodyContent)
	if r.value != "content" {
		t.Errorf("Expected first highest-ranked value, got: %s", r.value)
	}
}
