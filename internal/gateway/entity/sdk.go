package entity

import "fmt"

// SdkID identifies an SDK in the installation dataset.
type SdkID int

// Sdk is immutable reference data seeded outside the gateway.
type Sdk struct {
	ID   SdkID  `json:"id"`
	Name string `json:"name"`
}

// App is the drill-down payload for a single app.
type App struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	SellerName      string `json:"seller_name"`
	ArtworkLargeURL string `json:"artwork_large_url"`
}

// ChurnEdge is a directed transition count between two SDKs.
// From == To is a retention edge, anything else a migration edge.
type ChurnEdge struct {
	From  SdkID `json:"from_sdk"`
	To    SdkID `json:"to_sdk"`
	Count int   `json:"count"`
}

func (e ChurnEdge) IsRetention() bool {
	return e.From == e.To
}

// NormalizedChurnEdge carries the edge's share of its row.
type NormalizedChurnEdge struct {
	ChurnEdge
	Normal float64 `json:"normal"`
}

// Pair is an ordered (from, to) transition.
type Pair struct {
	From SdkID
	To   SdkID
}

func (p Pair) String() string {
	return fmt.Sprintf("%d/%d", p.From, p.To)
}

func (p Pair) IsRetention() bool {
	return p.From == p.To
}
