package bytedata

import (
	"fmt"
	"io"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// StringCache is a bidirectional string to id table used to encode repeated
// strings as 4-byte ids. Once assigned, an id must never change for the
// lifetime of the cache.
type StringCache interface {
	// Intern returns the id of s, assigning the next free id on first use.
	Intern(s string) int32

	// Lookup resolves id back to its string.
	Lookup(id int32) (string, error)
}

// MapCache is an in-memory StringCache. Ids are assigned sequentially from
// zero. It is safe for concurrent use.
type MapCache struct {
	mu      sync.RWMutex
	ids     map[string]int32
	strings []string
}

var (
	_ StringCache           = &MapCache{}
	_ msgpack.CustomEncoder = &MapCache{}
	_ msgpack.CustomDecoder = &MapCache{}
)

// NewStringCache creates an empty MapCache.
func NewStringCache() *MapCache {
	return &MapCache{ids: make(map[string]int32)}
}

func (c *MapCache) Intern(s string) int32 {
	c.mu.RLock()
	id, ok := c.ids[s]
	c.mu.RUnlock()
	if ok {
		return id
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.ids[s]; ok {
		return id
	}
	if c.ids == nil {
		c.ids = make(map[string]int32)
	}
	id = int32(len(c.strings))
	c.ids[s] = id
	c.strings = append(c.strings, s)
	return id
}

func (c *MapCache) Lookup(id int32) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id < 0 || int(id) >= len(c.strings) {
		return "", fmt.Errorf("%w: %d", ErrUnknownStringId, id)
	}
	return c.strings[id], nil
}

// Len returns the number of interned strings.
func (c *MapCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.strings)
}

// Strings returns the interned strings indexed by id.
func (c *MapCache) Strings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.strings...)
}

// EncodeMsgpack writes the table as a msgpack array in id order.
func (c *MapCache) EncodeMsgpack(enc *msgpack.Encoder) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return enc.Encode(c.strings)
}

// DecodeMsgpack replaces the table with a snapshot written by EncodeMsgpack.
func (c *MapCache) DecodeMsgpack(dec *msgpack.Decoder) error {
	var strs []string
	if err := dec.Decode(&strs); err != nil {
		return err
	}
	ids := make(map[string]int32, len(strs))
	for i, s := range strs {
		if _, ok := ids[s]; ok {
			return fmt.Errorf("bytedata: string cache snapshot repeats %q", s)
		}
		ids[s] = int32(i)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = ids
	c.strings = strs
	return nil
}

// WriteTo writes a msgpack snapshot of the cache to w.
func (c *MapCache) WriteTo(w io.Writer) (int64, error) {
	data, err := msgpack.Marshal(c)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ReadStringCache restores a cache from a snapshot written by WriteTo.
func ReadStringCache(r io.Reader) (*MapCache, error) {
	c := NewStringCache()
	if err := msgpack.NewDecoder(r).Decode(c); err != nil {
		return nil, fmt.Errorf("bytedata: read string cache: %w", err)
	}
	return c, nil
}
