package htmlmeta

type Metadata struct {
	BaseURL     string     `json:"base_url,omitempty"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	FeedLinks   []FeedLink `json:"feed_links,omitempty"`
	Icons       []Icon     `json:"icons,omitempty"`
	OpenGraph   OpenGraph  `json:"open_graph"`
	Twitter     Twitter    `json:"twitter"`
}

type FeedLink struct {
	Title string `json:"title,omitempty"`
	Type  string `json:"type"`
	URL   string `json:"url"`
}

type Icon struct {
	Rel   string `json:"rel"`
	Sizes string `json:"sizes,omitempty"`
	URL   string `json:"url"`
}

type OpenGraph struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	URL         string `json:"url,omitempty"`
	Image       string `json:"image,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
}

type Twitter struct {
	Card        string `json:"card,omitempty"`
	Site        string `json:"site,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Link is an anchor found in the page body.
type Link struct {
	URL   string `json:"url"`
	Text  string `json:"text,omitempty"`
	Title string `json:"title,omitempty"`
}

// FaviconURL returns the first icon declared with rel "icon" or
// "shortcut icon", falling back to any icon.
func (m *Metadata) FaviconURL() string {
	for _, icon := range m.Icons {
		if icon.Rel == "icon" || icon.Rel == "shortcut icon" {
			return icon.URL
		}
	}
	if len(m.Icons) > 0 {
		return m.Icons[0].URL
	}
	return ""
}
