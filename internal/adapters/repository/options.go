package repository

// CatalogOption applies a configuration option to the Catalog.
type CatalogOption func(*Catalog)

// WithCapacityCheck rejects seeds whose roster already exceeds capacity.
func WithCapacityCheck(enabled bool) CatalogOption {
	return func(c *Catalog) {
		c.checkCapacity = enabled
	}
}

// JournalOption applies a configuration option to the Journal.
type JournalOption func(*Journal)

// WithJournalSize bounds how many changes the journal retains.
func WithJournalSize(size int) JournalOption {
	return func(j *Journal) {
		if size > 0 {
			j.size = size
		}
	}
}
