package entities

import (
	"errors"
)

// Common errors
var (
	ErrCraftNotFound    = errors.New("craft not found")
	ErrInvalidFilename  = errors.New("invalid upload filename")
	ErrUploadTooLarge   = errors.New("upload exceeds size limit")
	ErrUploadNotFound   = errors.New("upload not found")
	ErrInvalidCraftData = errors.New("invalid craft data")
)

// Craft represents a stored craft record
type Craft struct {
	ID          *int64   `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string   `json:"name" yaml:"name"`
	Image       string   `json:"image" yaml:"image"`
	Description string   `json:"description" yaml:"description"`
	Supplies    []string `json:"supplies" yaml:"supplies"`
}

// HasID reports whether the craft carries the given id
func (c *Craft) HasID(id int64) bool {
	return c.ID != nil && *c.ID == id
}

// Clone returns a deep copy of the craft
func (c Craft) Clone() Craft {
	out := c
	if c.ID != nil {
		id := *c.ID
		out.ID = &id
	}
	if c.Supplies != nil {
		out.Supplies = make([]string, len(c.Supplies))
		copy(out.Supplies, c.Supplies)
	}
	return out
}

// NextID returns max(existing ids) + 1, or 1 when no craft carries an id
func NextID(crafts []Craft) int64 {
	var max int64
	for _, c := range crafts {
		if c.ID != nil && *c.ID > max {
			max = *c.ID
		}
	}
	return max + 1
}

// IndexOf returns the position of the first craft with the given id, or -1
func IndexOf(crafts []Craft, id int64) int {
	for i := range crafts {
		if crafts[i].HasID(id) {
			return i
		}
	}
	return -1
}

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 {
	return &v
}
