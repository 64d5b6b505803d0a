package domain

import "time"

// ArmedEntry is one [price, intent] pair in the persisted state record. The
// armed mapping is serialized as an explicit list so the record layout does
// not depend on map key encoding.
type ArmedEntry struct {
	Price  int64       `json:"price"` // micros, tick-rounded
	Intent OrderIntent `json:"intent"`
}

// StateRecord is the single serialized snapshot of engine state handed to the
// persistence adapter. On load the record is accepted only if SavedAt falls
// within the staleness window; otherwise the engine starts from defaults.
type StateRecord struct {
	Armed    []ArmedEntry `json:"armed"`
	Trades   []Trade      `json:"trades"`
	Settings Settings     `json:"settings"`
	SavedAt  time.Time    `json:"saved_at"`
}
