package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cart maps a stringified product id to its quantity. Only non-zero
// quantities need to be stored.
type Cart map[string]int

// Dense returns a copy with every slot "0".."slots-1" present, zero-filled,
// plus any stored slot outside that range.
func (c Cart) Dense(slots int) map[string]int {
	out := make(map[string]int, slots+len(c))
	for i := 0; i < slots; i++ {
		out[strconv.Itoa(i)] = 0
	}
	for k, v := range c {
		if v < 0 {
			v = 0
		}
		out[k] = v
	}
	return out
}

// CartKey is the cartData key for a product id.
func CartKey(itemID int64) string {
	return strconv.FormatInt(itemID, 10)
}

// FlexInt decodes from a JSON number or a numeric string, since storefront
// clients send ids both ways.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}

	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		var fl float64
		if ferr := json.Unmarshal(b, &fl); ferr != nil || fl != float64(int64(fl)) {
			return fmt.Errorf("not an integer: %s", b)
		}
		n = int64(fl)
	}
	*f = FlexInt(n)
	return nil
}

// FlexFloat decodes a price from a JSON number or a numeric string, since
// admin forms post prices as text. It reads the same way from CSV.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return f.UnmarshalCSV(s)
	}

	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	*f = FlexFloat(n)
	return nil
}

func (f *FlexFloat) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return fmt.Errorf("not a number: %q", s)
	}
	*f = FlexFloat(n)
	return nil
}
