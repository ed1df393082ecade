package models

// Competitor is one competing company surfaced by market research.
type Competitor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
}

// MarketSize holds the sizing figures for the pitch's market.
type MarketSize struct {
	Overall    string `json:"overall"`
	Growth     string `json:"growth,omitempty"`
	Projection string `json:"projection,omitempty"`
}

// MarketSizeSources holds per-figure source links.
type MarketSizeSources struct {
	Overall    string `json:"overall,omitempty"`
	Growth     string `json:"growth,omitempty"`
	Projection string `json:"projection,omitempty"`
}

// MarketTrend is one trend called out by the research.
type MarketTrend struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// MarketResearch is the research result for a pitch context. The
// MarketSizeSource string is the older single-source field some
// responses still carry; MarketSizeSources supersedes it.
type MarketResearch struct {
	Competitors       []Competitor       `json:"competitors"`
	MarketSize        MarketSize         `json:"market_size"`
	MarketSizeSources *MarketSizeSources `json:"market_size_sources,omitempty"`
	MarketSizeSource  string             `json:"market_size_source,omitempty"`
	Trends            []MarketTrend      `json:"trends"`
	TrendsSource      string             `json:"trends_source,omitempty"`
	GrowthCalculation string             `json:"growth_calculation,omitempty"`
	Summary           string             `json:"summary"`
}
