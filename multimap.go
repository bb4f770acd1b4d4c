package ecs

// multiMap is a map[K][]V with order-preserving add/remove, used by the
// reference index to track every (referrer, component) pair pointing at a
// given target entity (spec §3 "Reference index").
type multiMap[K comparable, V comparable] map[K][]V

func (m multiMap[K, V]) add(key K, value V) {
	for _, v := range m[key] {
		if v == value {
			return
		}
	}
	m[key] = append(m[key], value)
}

func (m multiMap[K, V]) remove(key K, value V) {
	values, ok := m[key]
	if !ok {
		return
	}
	for i, v := range values {
		if v == value {
			values = append(values[:i], values[i+1:]...)
			break
		}
	}
	if len(values) == 0 {
		delete(m, key)
		return
	}
	m[key] = values
}

func (m multiMap[K, V]) each(key K, fn func(V)) {
	for _, v := range m[key] {
		fn(v)
	}
}
