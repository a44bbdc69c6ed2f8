package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	// PostKeyPrefix prefixes every stored post, followed by its slug.
	PostKeyPrefix = "post:"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

func postKey(slug string) []byte {
	return []byte(PostKeyPrefix + slug)
}

// SlugFromKey strips the post prefix from a stored key.
func SlugFromKey(key string) string {
	return strings.TrimPrefix(key, PostKeyPrefix)
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}
