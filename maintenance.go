package sofa

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sofadb/sofa/chttp"
)

// PurgeResult is the server's response to a single _purge call.
type PurgeResult struct {
	PurgeSeq json.RawMessage     `json:"purge_seq"`
	Purged   map[string][]string `json:"purged"`
}

// Purge walks the change feed, bounded by the client's purge limit, and
// issues one _purge call per deletion tombstone, returning the responses
// keyed by each entry's sequence number.
//
// Purge semantics are implementation-defined on the server side, and this
// costs one HTTP round trip per tombstone; both are documented limitations,
// not bugs. An error part-way through returns the results accumulated so
// far alongside the error.
func (db *DB) Purge(ctx context.Context) (map[string]*PurgeResult, error) {
	changes, err := db.Changes(ctx, map[string]interface{}{
		"limit": db.client.purgeLimit,
		"since": 0,
	})
	if err != nil {
		return nil, err
	}
	results := make(map[string]*PurgeResult)
	for _, change := range changes.Results {
		if !change.Deleted {
			continue
		}
		revs := make([]string, 0, len(change.Changes))
		for _, ch := range change.Changes {
			revs = append(revs, ch.Rev)
		}
		opts := &chttp.Options{JSON: map[string][]string{change.ID: revs}}
		result := new(PurgeResult)
		if _, err := db.client.DoJSON(ctx, http.MethodPost, db.path("_purge", nil), opts, result); err != nil {
			return results, err
		}
		results[string(change.Seq)] = result
	}
	return results, nil
}

// CompactOptions control what a Compact pass includes.
type CompactOptions struct {
	// Purge removes deletion tombstones before compacting.
	Purge bool

	// Views runs a view index cleanup, then compacts the view index of every
	// design document in the database.
	Views bool
}

// CompactResult aggregates the responses of a Compact pass, keyed "purge",
// "view_compact", "<design>_compact" per design document, and "compact".
type CompactResult map[string]interface{}

type okResult struct {
	OK bool `json:"ok"`
}

// Compact triggers a database compaction pass, optionally purging tombstones
// and compacting view indexes first. Compaction itself runs asynchronously on
// the server; the responses report acceptance, not completion.
func (db *DB) Compact(ctx context.Context, opts CompactOptions) (CompactResult, error) {
	result := CompactResult{}
	if opts.Purge {
		purged, err := db.Purge(ctx)
		if err != nil {
			return result, err
		}
		result["purge"] = purged
	}
	if opts.Views {
		var cleanup okResult
		if _, err := db.client.DoJSON(ctx, http.MethodPost, db.path("_view_cleanup", nil), nil, &cleanup); err != nil {
			return result, err
		}
		result["view_compact"] = cleanup.OK
		ddocs, err := db.DesignDocs(ctx)
		if err != nil {
			return result, err
		}
		for _, ddoc := range ddocs {
			name := strings.TrimPrefix(ddoc, "_design/")
			var compacted okResult
			if _, err := db.client.DoJSON(ctx, http.MethodPost, db.path("_compact/"+name, nil), nil, &compacted); err != nil {
				return result, err
			}
			result[name+"_compact"] = compacted.OK
		}
	}
	var compacted okResult
	if _, err := db.client.DoJSON(ctx, http.MethodPost, db.path("_compact", nil), nil, &compacted); err != nil {
		return result, err
	}
	result["compact"] = compacted.OK
	return result, nil
}

// DesignDocs returns the ids of the database's design documents, with an
// _all_docs range scan over the _design/ namespace.
func (db *DB) DesignDocs(ctx context.Context) ([]string, error) {
	result, err := db.AllDocs(ctx, map[string]interface{}{
		"startkey": "_design/",
		"endkey":   "_design0",
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}
