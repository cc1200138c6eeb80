package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome is the terminal state of an ingestion
type Outcome uint8

const (
	OutcomeUnknown Outcome = iota
	// AcceptNew means no song with the fingerprint existed and a new song
	// was inserted
	AcceptNew
	// ReplaceOrphan means a song with the fingerprint existed but its file
	// was missing, the new file and metadata replaced the old ones
	ReplaceOrphan
	// UpdateMetadata means a song with the fingerprint existed with different
	// metadata, the metadata was updated and the file left alone
	UpdateMetadata
	// RejectDuplicate means an identical song already exists, nothing changed
	RejectDuplicate
)

func (o Outcome) String() string {
	switch o {
	case AcceptNew:
		return "ACCEPT_NEW"
	case ReplaceOrphan:
		return "REPLACE_ORPHAN"
	case UpdateMetadata:
		return "UPDATE_METADATA"
	case RejectDuplicate:
		return "REJECT_DUPLICATE"
	}
	return "UNKNOWN"
}

// MarshalText implements encoding.TextMarshaler
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

var outcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "kotone",
	Subsystem: "ingest",
	Name:      "outcomes_total",
	Help:      "Amount of ingestions, by outcome",
}, []string{"outcome"})
