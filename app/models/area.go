package models

import "time"

// Area is one canonical directory entry: a named geographic area with a
// stable identifier, its parent region and the id of the top-level country
// group it belongs to. Seq records the position the entry was loaded at;
// resolution tie-breaks depend on it, so the loader must assign it in a
// stable order.
type Area struct {
	Name         string `json:"name" bson:"name"`
	ID           string `json:"id" bson:"id"`
	ParentRegion string `json:"parent_region" bson:"parent_region"`
	RootGroupID  string `json:"root_group_id" bson:"root_group_id"`
	Seq          int    `json:"seq" bson:"seq"`
}

// Directory is the canonical reference set, keyed by entry name. It is
// immutable after loading; a reload produces a fresh Directory and callers
// swap the pointer. Iteration order is the load order (Area.Seq).
type Directory struct {
	byName   map[string]Area
	names    []string
	version  string
	loadedAt time.Time
}

// NewDirectory creates an empty directory snapshot tagged with a version.
func NewDirectory(version string) *Directory {
	return &Directory{
		byName:   make(map[string]Area),
		names:    make([]string, 0),
		version:  version,
		loadedAt: time.Now(),
	}
}

// Add inserts an entry. A repeated name keeps its first position but takes
// the latest entry data, matching the upstream tree walk where the last
// occurrence of a name wins.
func (d *Directory) Add(a Area) {
	if prev, ok := d.byName[a.Name]; ok {
		a.Seq = prev.Seq
		d.byName[a.Name] = a
		return
	}
	a.Seq = len(d.names)
	d.byName[a.Name] = a
	d.names = append(d.names, a.Name)
}

// Get returns the entry for a canonical name.
func (d *Directory) Get(name string) (Area, bool) {
	a, ok := d.byName[name]
	return a, ok
}

// Names returns all entry names in load order. The returned slice is shared;
// callers must not mutate it.
func (d *Directory) Names() []string {
	return d.names
}

// Len returns the number of entries.
func (d *Directory) Len() int {
	return len(d.byName)
}

// Version returns the snapshot version tag.
func (d *Directory) Version() string {
	return d.version
}

// LoadedAt returns when the snapshot was built.
func (d *Directory) LoadedAt() time.Time {
	return d.loadedAt
}

// Subset returns a new directory restricted to entries under the given root
// group, preserving relative order. Used to derive the domestic subset the
// resolver operates on.
func (d *Directory) Subset(rootGroupID string) *Directory {
	sub := NewDirectory(d.version + ":" + rootGroupID)
	sub.loadedAt = d.loadedAt
	for _, name := range d.names {
		a := d.byName[name]
		if a.RootGroupID == rootGroupID {
			sub.Add(a)
		}
	}
	return sub
}
