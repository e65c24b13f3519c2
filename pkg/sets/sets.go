/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package sets

import (
	"sort"
)

type Set map[string]struct{}

func NewSet() Set {
	return make(Set)
}

func NewSetByKeys(keys ...string) Set {
	set := NewSet()
	set.Insert(keys...)
	return set
}

func (s Set) Insert(keys ...string) Set {
	for _, key := range keys {
		s[key] = struct{}{}
	}
	return s
}

func (s Set) Delete(keys ...string) Set {
	for _, key := range keys {
		delete(s, key)
	}
	return s
}

func (s Set) Has(key string) bool {
	if s == nil {
		return false
	}
	_, ok := s[key]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

func (s Set) Clone() Set {
	result := make(Set, len(s))
	for key := range s {
		result.Insert(key)
	}
	return result
}

func (s Set) UnsortedList() []string {
	result := make([]string, 0, len(s))
	for key := range s {
		result = append(result, key)
	}
	return result
}

// List returns the keys in sorted order.
func (s Set) List() []string {
	result := s.UnsortedList()
	sort.Strings(result)
	return result
}
