package sofa

import (
	"context"
	"net/http"

	"github.com/sofadb/sofa/chttp"
)

// BulkResult is the per-document outcome of a BulkDocs call.
type BulkResult struct {
	OK     bool   `json:"ok"`
	ID     string `json:"id"`
	Rev    string `json:"rev"`
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// BulkDocs stores a batch of documents in one request. With allOrNothing
// set, the server applies the batch transactionally where supported. Results
// are returned in document order; successfully written map payloads and
// MetaSetter implementations receive their new _id and _rev.
func (db *DB) BulkDocs(ctx context.Context, docs []interface{}, allOrNothing bool) ([]BulkResult, error) {
	if len(docs) == 0 {
		return nil, missingArg("docs")
	}
	body := struct {
		Docs         []interface{} `json:"docs"`
		AllOrNothing bool          `json:"all_or_nothing,omitempty"`
	}{
		Docs:         docs,
		AllOrNothing: allOrNothing,
	}
	var results []BulkResult
	opts := &chttp.Options{JSON: body}
	if _, err := db.client.DoJSON(ctx, http.MethodPost, db.path("_bulk_docs", nil), opts, &results); err != nil {
		return nil, err
	}
	for i, result := range results {
		if i >= len(docs) {
			break
		}
		if result.Error == "" && result.Rev != "" {
			setDocMeta(docs[i], result.ID, result.Rev)
		}
	}
	return results, nil
}
