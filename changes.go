package sofa

import (
	"bytes"
	"context"
	"net/http"
)

// SequenceID is a CouchDB update sequence. On the wire it may be a number
// (1.x) or a string (2.x+); it is normalized to a string here.
type SequenceID string

// UnmarshalJSON satisfies the json.Unmarshaler interface.
func (id *SequenceID) UnmarshalJSON(data []byte) error {
	*id = SequenceID(bytes.Trim(data, `"`))
	return nil
}

// Change is one entry of a database's change feed.
type Change struct {
	ID      string     `json:"id"`
	Seq     SequenceID `json:"seq"`
	Deleted bool       `json:"deleted"`
	Changes []struct {
		Rev string `json:"rev"`
	} `json:"changes"`
}

// ChangesResult is the decoded body of a normal (non-continuous) changes
// feed.
type ChangesResult struct {
	Results []Change   `json:"results"`
	LastSeq SequenceID `json:"last_seq"`
}

// Changes fetches the database's change feed. Only the normal feed is
// supported; continuous feeds hold the connection open, which does not fit
// the one-request-per-call model used here.
func (db *DB) Changes(ctx context.Context, opts map[string]interface{}) (*ChangesResult, error) {
	params, err := optionsToParams(opts)
	if err != nil {
		return nil, err
	}
	result := new(ChangesResult)
	if _, err := db.client.DoJSON(ctx, http.MethodGet, db.path("_changes", params), nil, result); err != nil {
		return nil, err
	}
	return result, nil
}
