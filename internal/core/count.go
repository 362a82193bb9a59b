package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Count is a non-negative counter. It decodes from JSON numbers and numeric strings.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*c = 0
			return nil
		}
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %s", ErrInvalidCount, raw)
	}

	*c = NewCount(int(f))
	return nil
}

// NewCount clamps n at zero.
func NewCount(n int) Count {
	return Count(max(n, 0))
}

// Add returns c+delta clamped at zero.
func (c Count) Add(delta int) Count {
	return NewCount(int(c) + delta)
}
