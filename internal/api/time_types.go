package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// FlexTime is a timestamp clients may send as an RFC 3339 string, or as epoch
// milliseconds either as a number or a numeric string. It is held in UTC and
// marshals back to RFC 3339.
type FlexTime struct {
	time.Time
}

// ParseFlexTime parses the string forms FlexTime accepts.
func ParseFlexTime(s string) (FlexTime, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return FlexTime{Time: t.UTC()}, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return FlexTime{Time: time.UnixMilli(ms).UTC()}, nil
	}
	return FlexTime{}, fmt.Errorf("cannot parse time string: %s", s)
}

// UnmarshalJSON handles flexible time parsing from JSON.
func (ft *FlexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseFlexTime(s)
		if err != nil {
			return err
		}
		*ft = parsed
		return nil
	}

	// Some encoders send large integers as floats.
	var ms float64
	if err := json.Unmarshal(data, &ms); err == nil {
		ft.Time = time.UnixMilli(int64(ms)).UTC()
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexTime", string(data))
}

// MarshalJSON outputs time in RFC3339 format.
func (ft FlexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(ft.Format(time.RFC3339Nano))
}

// Schema describes the accepted forms for the OpenAPI document and for
// request validation.
func (FlexTime) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{
		Description: "RFC 3339 timestamp or epoch milliseconds",
		OneOf: []*huma.Schema{
			{Type: huma.TypeString},
			{Type: huma.TypeNumber},
		},
	}
}
