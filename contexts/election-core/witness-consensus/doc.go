// Package witnessconsensus implements the witness-consensus and tally engine
// inside the election-core context.
//
// The module owns submission intake and validation, per-station
// majority-agreement detection under per-station locks, tally aggregation
// over verified stations, and tally-update broadcasting through the event
// bus. It keeps business rules in domain/application layers and isolates
// infrastructure concerns behind ports and adapters.
package witnessconsensus
