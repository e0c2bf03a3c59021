package protocol

// RUN (client -> server): request one simulated run.
type RunMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	ID              string  `json:"id,omitempty"`
	Strategy        string  `json:"strategy"`
	Horizon         float64 `json:"horizon"`
	BaseRate        float64 `json:"base_rate,omitempty"`
}

// RUN_STARTED (server -> client): the request was accepted and points
// for this run_id follow.
type RunStartedMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	AckFor          string   `json:"ack_for,omitempty"`
	RunID           string   `json:"run_id"`
	Strategy        string   `json:"strategy"`
	Horizon         float64  `json:"horizon"`
	BaseRate        float64  `json:"base_rate"`
	CatalogDigest   string   `json:"catalog_digest"`
	Items           []string `json:"items"`
}

// POINT (server -> client): one history event. Seq 0 is the run-start
// sentinel with an empty item.
type PointMsg struct {
	Type  string  `json:"type"`
	RunID string  `json:"run_id"`
	Seq   int     `json:"seq"`
	Time  float64 `json:"time"`
	Item  string  `json:"item,omitempty"`
	Cost  float64 `json:"cost"`
	Total float64 `json:"total"`
}

type ItemCount struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// RESULT (server -> client): terminal state of a finished run.
type ResultMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	RunID           string      `json:"run_id"`
	Strategy        string      `json:"strategy"`
	Elapsed         float64     `json:"elapsed"`
	Balance         float64     `json:"balance"`
	Total           float64     `json:"total"`
	Rate            float64     `json:"rate"`
	Events          int         `json:"events"`
	Purchases       []ItemCount `json:"purchases,omitempty"`
}

// ERROR (server -> client): the request named by ack_for was rejected,
// or the run named by run_id was aborted.
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          string `json:"ack_for,omitempty"`
	RunID           string `json:"run_id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
