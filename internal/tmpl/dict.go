package tmpl

// KV is one entry of an ordered mapping.
type KV struct {
	Key   string
	Value any
}

// Dict is a mapping that keeps insertion order. Use it where attribute or
// style order matters; plain Go maps are expanded in sorted key order.
type Dict []KV

// Get returns the value for key.
func (d Dict) Get(key string) (any, bool) {
	for _, kv := range d {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Set assigns key, keeping the position of an existing entry.
func (d Dict) Set(key string, value any) Dict {
	for i := range d {
		if d[i].Key == key {
			d[i].Value = value
			return d
		}
	}
	return append(d, KV{Key: key, Value: value})
}

// Keys returns the keys in order.
func (d Dict) Keys() []string {
	keys := make([]string, len(d))
	for i, kv := range d {
		keys[i] = kv.Key
	}
	return keys
}
