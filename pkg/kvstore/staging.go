package kvstore

// change is a staged write; deleted marks a staged EraseKey.
type change struct {
	value   string
	deleted bool
}

// staging buffers writes between Commit calls.
type staging map[string]change

func (s staging) lookup(key string) (string, bool, bool) {
	c, ok := s[key]
	if !ok {
		return "", false, false
	}
	return c.value, !c.deleted, true
}

func (s staging) set(key, value string) {
	s[key] = change{value: value}
}

func (s staging) erase(key string) {
	s[key] = change{deleted: true}
}

func (s staging) apply(dst map[string]string) {
	for k, c := range s {
		if c.deleted {
			delete(dst, k)
			continue
		}
		dst[k] = c.value
	}
}
