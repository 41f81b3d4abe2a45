package docid

// Generator mints new document identities.
//
// The document repository takes a Generator at construction time so tests
// can substitute a deterministic implementation.
type Generator interface {
	// NewID returns a fresh, collision-resistant document ID.
	NewID() ID
}

// UUIDGenerator is the production Generator, backed by random UUIDs.
type UUIDGenerator struct{}

// NewID implements Generator.
func (UUIDGenerator) NewID() ID {
	return New()
}

// SequenceGenerator is a deterministic Generator for tests. It returns the
// configured IDs in order and panics when exhausted.
type SequenceGenerator struct {
	IDs  []ID
	next int
}

// NewID implements Generator.
func (g *SequenceGenerator) NewID() ID {
	if g.next >= len(g.IDs) {
		panic("docid: sequence generator exhausted")
	}
	id := g.IDs[g.next]
	g.next++
	return id
}
