package persona

import "strings"

// Store exposes persona retrieval for services and HTTP handlers.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
	ResolveName(name string) (Persona, bool)
}

// MemoryStore implements Store with an in-memory slice; personas are
// immutable and loaded at startup.
type MemoryStore struct {
	items []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	return &MemoryStore{items: append([]Persona(nil), items...)}
}

// List returns the predefined persona list.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// FindByID looks up a persona by identifier.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Persona{}, false
}

// ResolveName matches a display name, real name, or alias, ignoring case.
func (s *MemoryStore) ResolveName(name string) (Persona, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Persona{}, false
	}
	for _, item := range s.items {
		if strings.ToLower(item.Name) == needle || strings.ToLower(item.RealName) == needle {
			return item, true
		}
		for _, alias := range item.Aliases {
			if strings.ToLower(alias) == needle {
				return item, true
			}
		}
	}
	return Persona{}, false
}
