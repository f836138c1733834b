package sofa

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/sofadb/sofa/chttp"
)

// ViewRow is one row of a view result: a key, a value, the owning document's
// id, and, when the view was queried with include_docs, the full document.
type ViewRow struct {
	ID    string                 `json:"id"`
	Key   interface{}            `json:"key"`
	Value interface{}            `json:"value"`
	Doc   map[string]interface{} `json:"doc,omitempty"`
}

// ViewResult is the raw result of a view query, rows in server order.
type ViewResult struct {
	TotalRows int64     `json:"total_rows"`
	Offset    int64     `json:"offset"`
	Rows      []ViewRow `json:"rows"`
}

// splitDDoc splits a "designDoc/name" pair on the first slash, after
// stripping any leading slash. Input with no slash yields an incomplete
// target; that is a caller error, not validated here.
func splitDDoc(s string) (ddoc, name string) {
	parts := strings.SplitN(strings.TrimPrefix(s, "/"), "/", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// View queries the named view ("design/view"). When opts carries a "keys"
// option, the query is issued as a POST with the keys in the request body.
func (db *DB) View(ctx context.Context, view string, opts map[string]interface{}) (*ViewResult, error) {
	if view == "" {
		return nil, missingArg("view")
	}
	ddoc, name := splitDDoc(view)
	return db.viewQuery(ctx, "_design/"+chttp.EncodeDocID(ddoc)+"/_view/"+chttp.EncodeDocID(name), opts)
}

// AllDocs queries the database's _all_docs index.
func (db *DB) AllDocs(ctx context.Context, opts map[string]interface{}) (*ViewResult, error) {
	return db.viewQuery(ctx, "_all_docs", opts)
}

func (db *DB) viewQuery(ctx context.Context, path string, opts map[string]interface{}) (*ViewResult, error) {
	method := http.MethodGet
	var chttpOpts *chttp.Options
	if keys, ok := opts["keys"]; ok {
		rest := make(map[string]interface{}, len(opts)-1)
		for k, v := range opts {
			if k != "keys" {
				rest[k] = v
			}
		}
		opts = rest
		method = http.MethodPost
		chttpOpts = &chttp.Options{JSON: map[string]interface{}{"keys": keys}}
	}
	params, err := optionsToParams(opts)
	if err != nil {
		return nil, err
	}
	result := new(ViewResult)
	if _, err := db.client.DoJSON(ctx, method, db.path(path, params), chttpOpts, result); err != nil {
		return nil, err
	}
	return result, nil
}

// List runs the named list function ("design/list") over a view, returning
// the rendered output and its content type verbatim.
func (db *DB) List(ctx context.Context, list, view string, opts map[string]interface{}) ([]byte, string, error) {
	if list == "" {
		return nil, "", missingArg("list")
	}
	if view == "" {
		return nil, "", missingArg("view")
	}
	ddoc, name := splitDDoc(list)
	path := "_design/" + chttp.EncodeDocID(ddoc) + "/_list/" + chttp.EncodeDocID(name) + "/" + chttp.EncodeDocID(view)
	return db.render(ctx, path, opts)
}

// render fetches a server-rendered resource, returning the raw content and
// the response content type.
func (db *DB) render(ctx context.Context, path string, opts map[string]interface{}) ([]byte, string, error) {
	params, err := optionsToParams(opts)
	if err != nil {
		return nil, "", err
	}
	resp, err := db.client.DoReq(ctx, http.MethodGet, db.path(path, params), &chttp.Options{Accept: "*/*"})
	if err != nil {
		return nil, "", err
	}
	if respErr := chttp.ResponseError(resp); respErr != nil {
		return nil, "", respErr
	}
	defer func() { _ = resp.Body.Close() }()
	content, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	ctype, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return content, ctype, nil
}

// Map reshapes the result into a keyed mapping, in server order. A row's full
// document is preferred over its value. Rows with neither are skipped. A row
// whose key is absent or falsy lands on a zero-based sequential counter. An
// array key builds a nested mapping, one level per key element, the final
// element being the leaf key.
//
// Rows with colliding keys overwrite earlier ones: last write wins. This
// matches the server's row order semantics for grouped results, and is kept
// as observed behavior; see TestViewMapCollision.
//
// A result with no rows returns nil, distinct from an empty map.
func (r *ViewResult) Map() map[string]interface{} {
	if len(r.Rows) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(r.Rows))
	counter := 0
	for _, row := range r.Rows {
		var value interface{}
		switch {
		case row.Doc != nil:
			value = row.Doc
		case row.Value != nil:
			value = row.Value
		default:
			continue
		}
		if segs, ok := row.Key.([]interface{}); ok {
			insertNested(out, segs, value)
			continue
		}
		if falsyKey(row.Key) {
			out[strconv.Itoa(counter)] = value
			counter++
			continue
		}
		out[keyString(row.Key)] = value
	}
	return out
}

// Slice reshapes the result into an ordered list, in server order. A row's
// full document is pushed when present; an object value gets the row's id
// injected under "id" and is pushed; any other row, such as a reduce row with
// a scalar value, is pushed whole. Duplicate keys are preserved naturally.
//
// A result with no rows returns nil.
func (r *ViewResult) Slice() []interface{} {
	if len(r.Rows) == 0 {
		return nil
	}
	out := make([]interface{}, 0, len(r.Rows))
	for _, row := range r.Rows {
		switch {
		case row.Doc != nil:
			out = append(out, row.Doc)
		default:
			if value, ok := row.Value.(map[string]interface{}); ok {
				value["id"] = row.ID
				out = append(out, value)
				continue
			}
			out = append(out, row)
		}
	}
	return out
}

// KeyMap reshapes the result as Map does, for results of a bulk-keys (POST)
// query, with two differences: the row's id is always injected into object
// values, with no preference for the full document, and there is no counter
// fallback. Rows without a key collapse onto the empty key, overwriting one
// another; that quirk is kept as documented behavior.
//
// A result with no rows returns nil.
func (r *ViewResult) KeyMap() map[string]interface{} {
	if len(r.Rows) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(r.Rows))
	for _, row := range r.Rows {
		value := row.Value
		if m, ok := value.(map[string]interface{}); ok {
			m["id"] = row.ID
		}
		if value == nil {
			continue
		}
		if segs, ok := row.Key.([]interface{}); ok {
			insertNested(out, segs, value)
			continue
		}
		var key string
		if !falsyKey(row.Key) {
			key = keyString(row.Key)
		}
		out[key] = value
	}
	return out
}

// insertNested upserts value into m at the path named by segs, creating
// intermediate maps lazily. The final segment is the leaf key. A non-map
// value sitting at an intermediate level is displaced.
func insertNested(m map[string]interface{}, segs []interface{}, value interface{}) {
	if len(segs) == 0 {
		return
	}
	cur := m
	for _, seg := range segs[:len(segs)-1] {
		k := keyString(seg)
		next, ok := cur[k].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			cur[k] = next
		}
		cur = next
	}
	cur[keyString(segs[len(segs)-1])] = value
}

// falsyKey reports whether a view key is absent or falsy: JSON null, the
// empty string, zero, or false.
func falsyKey(k interface{}) bool {
	switch t := k.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case float64:
		return t == 0
	case bool:
		return !t
	}
	return false
}

// keyString renders a view key element as a map key. Strings are used
// directly; other scalars take their JSON form.
func keyString(k interface{}) string {
	switch t := k.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	}
	enc, _ := json.Marshal(k)
	return string(enc)
}
