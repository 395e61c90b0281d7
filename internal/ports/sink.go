package ports

// ResultSink consumes the dispatcher's per-item telemetry and confirmed hits.
//
// ItemSeen and PossibleMatch are counters; they cannot fail. Match receives
// the incoming item, the evicted occupant, and their shared fingerprint. A
// Match error (e.g. a failed database write) is surfaced to the caller.
type ResultSink[T any] interface {
	ItemSeen()
	PossibleMatch()
	Match(incoming, occupant T, fp Fingerprint) error
}

// Tester decides whether two texts whose fingerprints collided are a
// genuine hit. It must be total over its inputs. Implementations may keep
// scratch state, so a Tester is not safe for concurrent use.
type Tester interface {
	IsMatch(a, b string) bool
}
