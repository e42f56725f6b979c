package storage

// Sequenced records expose the integer their id was allocated from.
type Sequenced interface {
	Sequence() (int, error)
}

// NextID returns the last record's sequence plus one, or 1 for an empty
// collection. Ids of earlier records are not inspected.
func NextID[T Sequenced](records []T) (int, error) {
	if len(records) == 0 {
		return 1, nil
	}
	last, err := records[len(records)-1].Sequence()
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}
