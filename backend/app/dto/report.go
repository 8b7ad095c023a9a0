package dto

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// Report is one telemetry object as sent by an agent. Every field is optional.
type Report struct {
	Name       *string `json:"name"`
	IP         *string `json:"ip"`
	Dia        FlexInt `json:"dia"`
	Mode       *string `json:"mode"`
	Game       *string `json:"game"`
	Msg        *string `json:"msg"`
	GameServer *string `json:"game_server"`
}

// FlexInt accepts a JSON number or a numeric string. Anything else decodes as 0.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := strings.Trim(string(b), `"`)
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = FlexInt(n)
		return nil
	}
	// Floats outside the int64 range, NaN and Inf have no integer value.
	if fl, err := strconv.ParseFloat(s, 64); err == nil && fl >= math.MinInt64 && fl < math.MaxInt64 {
		*f = FlexInt(int64(fl))
		return nil
	}
	*f = 0
	return nil
}

// Or returns *p, or def when the field was absent.
func Or(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
