package torn

// Wire types of the Torn API v2 payloads consumed by the sync engine.

// ChainStatus is the current chain as reported by /faction/chain.
type ChainStatus struct {
	ID      int64 `json:"id"`
	Current int64 `json:"current"`
	Max     int64 `json:"max"`
	Timeout int64 `json:"timeout"`
	Start   int64 `json:"start"`
	End     int64 `json:"end"`
}

// InProgress reports whether the chain is still being built. The API keeps
// end at zero until the chain drops or caps.
func (s *ChainStatus) InProgress() bool {
	return s != nil && s.End == 0
}

type chainStatusEnvelope struct {
	Chain *ChainStatus `json:"chain"`
}

// Attacker is one member's row in a chain report.
type Attacker struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name,omitempty"`
	Attacks int64   `json:"attacks"`
	Respect float64 `json:"respect"`
}

// ChainReport is the per-member breakdown from /faction/{id}/chainreport.
type ChainReport struct {
	ChainID   int64      `json:"chain_id"`
	Start     int64      `json:"start"`
	End       int64      `json:"end"`
	Attackers []Attacker `json:"attackers"`
}

type chainReportEnvelope struct {
	ChainReport *ChainReport `json:"chainreport"`
}

// NewsItem is one raw armory feed entry. ID may be empty on some historical
// rows; callers derive a fallback id in that case.
type NewsItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// NewsPage is a newest-first page of the armory feed. Prev is an opaque
// link to the next-older page, passed back verbatim as the cursor.
type NewsPage struct {
	Items []NewsItem
	Prev  string
}

type pageLinks struct {
	Next string `json:"next"`
	Prev string `json:"prev"`
}

type pageMetadata struct {
	Links pageLinks `json:"links"`
}

type newsEnvelope struct {
	News     []NewsItem   `json:"news"`
	Metadata pageMetadata `json:"_metadata"`
}

// ChainSummary is one row of the historical chain list.
type ChainSummary struct {
	ID      int64   `json:"id"`
	Chain   int64   `json:"chain"`
	Respect float64 `json:"respect"`
	Start   int64   `json:"start"`
	End     int64   `json:"end"`
}

// ChainListPage is one page of /faction/chains, oldest cursor in Prev.
type ChainListPage struct {
	Chains []ChainSummary
	Prev   string
}

type chainListEnvelope struct {
	Chains   []ChainSummary `json:"chains"`
	Metadata pageMetadata   `json:"_metadata"`
}
