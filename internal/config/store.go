package config

// Store supplies string-valued settings by key.
type Store interface {
	Get(key, def string) string
}

// MapStore serves settings from an in-memory map.
type MapStore map[string]string

func (m MapStore) Get(key, def string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return def
}

// Layered consults each store in order; the first non-empty value wins.
type Layered []Store

func (l Layered) Get(key, def string) string {
	for _, s := range l {
		if s == nil {
			continue
		}
		if v := s.Get(key, ""); v != "" {
			return v
		}
	}
	return def
}
