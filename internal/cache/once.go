package cache

// Once remembers which keys have been seen. It is safe for concurrent use.
type Once struct {
	seen Cache
}

// NewOnce creates an empty Once set
func NewOnce() *Once {
	return &Once{seen: NewMemoryCache(0, 0)}
}

// First reports true the first time key is passed and false afterwards
func (o *Once) First(key string) bool {
	return o.seen.Add(key, "")
}

// Seen returns how many distinct keys have been passed
func (o *Once) Seen() int {
	return o.seen.Len()
}
