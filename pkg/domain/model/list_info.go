package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// Sort orders accepted by the ticketing API
const (
	SortDesc = "desc"
	SortAsc  = "asc"
)

// SearchCriteria is a single server-side filter of a list query
type SearchCriteria struct {
	Field     string `json:"field"`
	Condition string `json:"condition"`
	Value     string `json:"value"`
}

// ListInfo is the structured list query of the ticketing API
type ListInfo struct {
	RowCount       int             `json:"row_count"`
	StartIndex     int             `json:"start_index"`
	SortField      string          `json:"sort_field"`
	SortOrder      string          `json:"sort_order"`
	SearchCriteria *SearchCriteria `json:"search_criteria,omitempty"`
	FieldsRequired []string        `json:"fields_required,omitempty"`
}

// NewListInfo builds the newest-first query, filtered by requester email when email is not empty
func NewListInfo(rowCount int, fields []string, email string) ListInfo {
	info := ListInfo{
		RowCount:       rowCount,
		StartIndex:     1,
		SortField:      "created_time",
		SortOrder:      SortDesc,
		FieldsRequired: fields,
	}
	if email != "" {
		info.SearchCriteria = &SearchCriteria{
			Field:     "requester.email_id",
			Condition: "is",
			Value:     email,
		}
	}
	return info
}

// InputData returns the JSON carried by the input_data query parameter
func (x ListInfo) InputData() (string, error) {
	raw, err := json.Marshal(struct {
		ListInfo ListInfo `json:"list_info"`
	}{ListInfo: x})
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal list_info")
	}
	return string(raw), nil
}
