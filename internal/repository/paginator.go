package repository

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidPaginationToken is returned when a pagination token cannot be decoded.
	ErrInvalidPaginationToken = errors.New("token is invalid")
)

// Paginator represents the position after the last history row of a page.
type Paginator struct {
	LastID        string
	LastTimestamp time.Time
}

// Encode encodes the paginator state into a base64-encoded token.
func (t Paginator) Encode() string {
	key := fmt.Sprintf("%s,%s", t.LastTimestamp.Format(time.RFC3339Nano), t.LastID)
	return base64.StdEncoding.EncodeToString([]byte(key))
}

// DecodePageToken decodes a base64-encoded pagination token into a Paginator.
func DecodePageToken(encodedToken string) (*Paginator, error) {
	bytes, err := base64.StdEncoding.DecodeString(encodedToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 token: %w", err)
	}
	decodedStr := string(bytes)
	tokenParts := strings.SplitN(decodedStr, ",", 2)
	expectedTokenParts := 2
	if len(tokenParts) != expectedTokenParts || tokenParts[1] == "" {
		return nil, fmt.Errorf("invalid token format: %w", ErrInvalidPaginationToken)
	}

	timestamp, err := time.Parse(time.RFC3339Nano, tokenParts[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse token timestamp: %w", err)
	}

	return &Paginator{
		LastID:        tokenParts[1],
		LastTimestamp: timestamp,
	}, nil
}
