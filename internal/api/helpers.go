package api

import (
	"strings"

	"github.com/modelshare/modelshare-server/internal/service"
)

// StatusBody carries the business outcome every success response reports.
type StatusBody struct {
	Status service.Status `json:"status" doc:"ok, or a business outcome such as \"User doesn't exist\""`
}

// StatusOutput is a response with nothing but the outcome.
type StatusOutput struct {
	Body StatusBody
}

func statusOutput(status service.Status) *StatusOutput {
	return &StatusOutput{Body: StatusBody{Status: status}}
}

// FieldOutput reports a single document field under its own name.
type FieldOutput struct {
	Body map[string]any
}

func fieldOutput(status service.Status, name string, value any) *FieldOutput {
	body := map[string]any{"status": status}
	if status.OK() {
		body[name] = value
	}
	return &FieldOutput{Body: body}
}

// PageParams are the pagination query parameters of every listing.
type PageParams struct {
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Documents to skip"`
	Limit  int `query:"limit" minimum:"0" maximum:"1000" default:"0" doc:"Maximum documents to return, 0 for all"`
}

// pick returns the first non-empty value. Parameters are looked up in the
// path, then the body, then the query string.
func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// splitList splits a comma-separated query value, dropping empty items.
func splitList(v string) []string {
	var out []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
