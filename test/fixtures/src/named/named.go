package named

// Store is a tiny key mirror used to exercise method weaving.
type Store struct{}

//metricweave:instrument
func (s *Store) Get(key string) (value string, err error) {
	value = key
	return
}
