// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package knowledge

import (
	"strings"

	hberr "github.com/prmsu-dev/handbook/pkg/errors"
)

// Topic is one named fact in the handbook.
type Topic struct {
	Key  string `yaml:"key" json:"key" doc:"Topic identifier"`
	Fact string `yaml:"fact" json:"fact" doc:"Canonical fact text"`
}

// Store is the immutable set of handbook topics. It is safe for concurrent
// use by any number of readers; nothing mutates it after NewStore returns.
type Store struct {
	topics []Topic
	index  map[string]int
}

// NewStore validates and copies topics into a Store. Keys must be unique and
// non-blank, and every topic must carry a fact.
func NewStore(topics []Topic) (*Store, error) {
	s := &Store{
		topics: make([]Topic, 0, len(topics)),
		index:  make(map[string]int, len(topics)),
	}

	for i, t := range topics {
		key := strings.TrimSpace(t.Key)
		if key == "" {
			return nil, hberr.Errorf(hberr.CodeKnowledgeTopicInvalid, "topic #%d has an empty key", i)
		}
		if strings.TrimSpace(t.Fact) == "" {
			return nil, hberr.New(hberr.CodeKnowledgeTopicInvalid, "topic has an empty fact", hberr.FieldTopic(key))
		}
		if _, dup := s.index[key]; dup {
			return nil, hberr.New(hberr.CodeKnowledgeTopicInvalid, "duplicate topic key", hberr.FieldTopic(key))
		}
		s.index[key] = len(s.topics)
		s.topics = append(s.topics, Topic{Key: key, Fact: t.Fact})
	}

	return s, nil
}

// Fact returns the fact text for key.
func (s *Store) Fact(key string) (string, bool) {
	i, ok := s.index[key]
	if !ok {
		return "", false
	}
	return s.topics[i].Fact, true
}

// Lookup is Fact with a coded not-found error, for callers that report to users.
func (s *Store) Lookup(key string) (Topic, error) {
	i, ok := s.index[key]
	if !ok {
		return Topic{}, hberr.New(hberr.CodeKnowledgeTopicNotFound, "topic not found", hberr.FieldTopic(key))
	}
	return s.topics[i], nil
}

// Has reports whether key names a topic.
func (s *Store) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Keys returns topic keys in declaration order.
func (s *Store) Keys() []string {
	keys := make([]string, len(s.topics))
	for i, t := range s.topics {
		keys[i] = t.Key
	}
	return keys
}

// Topics returns a copy of all topics in declaration order.
func (s *Store) Topics() []Topic {
	out := make([]Topic, len(s.topics))
	copy(out, s.topics)
	return out
}

// Len returns the number of topics.
func (s *Store) Len() int {
	return len(s.topics)
}
