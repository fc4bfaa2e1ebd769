package view

// The With* methods implement the update protocol for list screens: any
// change to a filter dimension resets the page to 0 so the user never lands
// on an out-of-range empty page. Specs are values; every update returns a
// copy with its own Filters map.

// NewSpec returns a spec showing the first page with no active predicates.
func NewSpec(size int) Spec {
	if size <= 0 {
		size = 1
	}
	return Spec{Filters: map[string]string{}, SortOrder: SortAsc, Size: size}
}

func (s Spec) clone() Spec {
	filters := make(map[string]string, len(s.Filters))
	for k, v := range s.Filters {
		filters[k] = v
	}
	s.Filters = filters
	return s
}

// WithSearch sets the free-text search and resets the page.
func (s Spec) WithSearch(search string) Spec {
	c := s.clone()
	c.Search = search
	c.Page = 0
	return c
}

// WithFilter sets one filter dimension ("all" or "" deactivates it) and
// resets the page.
func (s Spec) WithFilter(name, value string) Spec {
	c := s.clone()
	c.Filters[name] = value
	c.Page = 0
	return c
}

// WithSort sets the sort key and direction and resets the page.
func (s Spec) WithSort(field, order string) Spec {
	c := s.clone()
	c.SortBy = field
	if order != SortDesc {
		order = SortAsc
	}
	c.SortOrder = order
	c.Page = 0
	return c
}

// ToggleSort flips direction when the field is already active, otherwise
// sorts ascending by the new field.
func (s Spec) ToggleSort(field string) Spec {
	order := SortAsc
	if s.SortBy == field && s.SortOrder == SortAsc {
		order = SortDesc
	}
	return s.WithSort(field, order)
}

// WithPage moves to a page, clamped to [0, totalPages-1].
func (s Spec) WithPage(page, totalPages int) Spec {
	c := s.clone()
	if totalPages <= 0 {
		c.Page = 0
		return c
	}
	if page < 0 {
		page = 0
	}
	if page > totalPages-1 {
		page = totalPages - 1
	}
	c.Page = page
	return c
}

// Normalize guards against an invalid size reaching Derive.
func (s Spec) Normalize(defaultSize int) Spec {
	c := s.clone()
	if c.Size <= 0 {
		if defaultSize <= 0 {
			defaultSize = 1
		}
		c.Size = defaultSize
	}
	if c.Page < 0 {
		c.Page = 0
	}
	if c.SortOrder != SortDesc {
		c.SortOrder = SortAsc
	}
	return c
}
