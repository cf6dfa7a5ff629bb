package food

import "fmt"

// Catalog is an immutable, ordered table of food records indexed by ID.
// It is safe to share between goroutines once built.
type Catalog struct {
	records []Record
	index   map[string]int
}

// NewCatalog validates records and builds the index. Row order is kept.
func NewCatalog(records []Record) (*Catalog, error) {
	c := &Catalog{
		records: make([]Record, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.index[r.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
		}
		c.index[r.ID] = len(c.records)
		c.records = append(c.records, r)
	}
	return c, nil
}

// view builds a catalog from records already known to be valid and unique
func view(records []Record) *Catalog {
	c := &Catalog{
		records: records,
		index:   make(map[string]int, len(records)),
	}
	for i, r := range records {
		c.index[r.ID] = i
	}
	return c
}

// Len returns the number of records
func (c *Catalog) Len() int {
	return len(c.records)
}

// IsEmpty reports whether no record survived loading or filtering
func (c *Catalog) IsEmpty() bool {
	return len(c.records) == 0
}

// Lookup returns the record with the given ID
func (c *Catalog) Lookup(id string) (Record, bool) {
	i, ok := c.index[id]
	if !ok {
		return Record{}, false
	}
	return c.records[i], true
}

// Contains reports whether id is in the catalog
func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// At returns the record at row position i
func (c *Catalog) At(i int) Record {
	return c.records[i]
}

// Records returns a copy of all records in catalog order
func (c *Catalog) Records() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Where returns a new catalog holding the records that satisfy keep
func (c *Catalog) Where(keep func(Record) bool) *Catalog {
	out := make([]Record, 0, len(c.records))
	for _, r := range c.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return view(out)
}
