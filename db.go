package sofa

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/sofadb/sofa/chttp"
)

// DB is a handle to a single database on the server.
type DB struct {
	client *Client
	name   string
}

// Name returns the database name.
func (db *DB) Name() string {
	return db.name
}

// Client returns the parent client.
func (db *DB) Client() *Client {
	return db.client
}

func (db *DB) path(path string, query url.Values) string {
	u, _ := url.Parse(db.name + "/" + strings.TrimPrefix(path, "/"))
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// writeResult is the server's response to a document write.
type writeResult struct {
	OK  bool   `json:"ok"`
	ID  string `json:"id"`
	Rev string `json:"rev"`
}

// Get fetches the requested document. The returned bytes are the document
// body exactly as the server sent it.
func (db *DB) Get(ctx context.Context, docID string, opts map[string]interface{}) (json.RawMessage, error) {
	if docID == "" {
		return nil, missingArg("docID")
	}
	params, err := optionsToParams(opts)
	if err != nil {
		return nil, err
	}
	resp, err := db.client.DoReq(ctx, http.MethodGet, db.path(chttp.EncodeDocID(docID), params), nil)
	if err != nil {
		return nil, err
	}
	if respErr := chttp.ResponseError(resp); respErr != nil {
		return nil, respErr
	}
	defer func() { _ = resp.Body.Close() }()
	doc := &bytes.Buffer{}
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return doc.Bytes(), nil
}

// GetInto fetches the requested document and decodes it into dst.
func (db *DB) GetInto(ctx context.Context, docID string, opts map[string]interface{}, dst interface{}) error {
	raw, err := db.Get(ctx, docID, opts)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &Error{HTTPStatus: http.StatusBadGateway, Err: err}
	}
	return nil
}

// Rev returns the most current revision of the requested document, with a
// HEAD request.
func (db *DB) Rev(ctx context.Context, docID string) (string, error) {
	if docID == "" {
		return "", missingArg("docID")
	}
	res, err := db.client.DoError(ctx, http.MethodHead, db.path(chttp.EncodeDocID(docID), nil), nil)
	if err != nil {
		return "", err
	}
	return chttp.GetRev(res)
}

// Put stores doc. A document carrying an _id is written to its own path;
// without one, the server assigns the id. On success, map payloads and
// MetaSetter implementations have the new _id and _rev written back into the
// caller's document.
//
// A write that omits _rev when the target already exists is rejected by the
// server with a conflict; this library does not resolve such conflicts.
func (db *DB) Put(ctx context.Context, doc interface{}) (id, rev string, err error) {
	if doc == nil {
		return "", "", missingArg("doc")
	}
	docID, _, err := docMeta(doc)
	if err != nil {
		return "", "", err
	}
	body, err := toJSON(doc)
	if err != nil {
		return "", "", err
	}
	opts := &chttp.Options{Body: body}
	var result writeResult
	if docID == "" {
		_, err = db.client.DoJSON(ctx, http.MethodPost, db.name, opts, &result)
	} else {
		_, err = db.client.DoJSON(ctx, http.MethodPut, db.path(chttp.EncodeDocID(docID), nil), opts, &result)
	}
	if err != nil {
		return "", "", err
	}
	setDocMeta(doc, result.ID, result.Rev)
	return result.ID, result.Rev, nil
}

// Delete removes the document. When rev is empty, the current revision is
// fetched with one extra HEAD request first; deleting a missing document
// fails with a NotFound error without issuing the DELETE. The lookup and the
// delete are not atomic: a concurrent write in between surfaces as a 409
// from the server.
func (db *DB) Delete(ctx context.Context, docID, rev string) (string, error) {
	if docID == "" {
		return "", missingArg("docID")
	}
	if rev == "" {
		var err error
		if rev, err = db.Rev(ctx, docID); err != nil {
			return "", err
		}
	}
	query := url.Values{}
	query.Add("rev", rev)
	resp, err := db.client.DoReq(ctx, http.MethodDelete, db.path(chttp.EncodeDocID(docID), query), nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	return chttp.GetRev(resp)
}

// Update is a Put that refuses to create: the target document must already
// exist, and its current revision is resolved with a HEAD request before the
// write. A missing target fails without writing, preventing accidental
// creation.
func (db *DB) Update(ctx context.Context, doc interface{}) (string, error) {
	if doc == nil {
		return "", missingArg("doc")
	}
	docID, _, err := docMeta(doc)
	if err != nil {
		return "", err
	}
	if docID == "" {
		return "", missingArg("docID")
	}
	rev, err := db.Rev(ctx, docID)
	if err != nil {
		return "", err
	}
	body, err := toMap(doc)
	if err != nil {
		return "", err
	}
	body["_id"] = docID
	body["_rev"] = rev
	_, newRev, err := db.Put(ctx, body)
	if err != nil {
		return "", err
	}
	setDocMeta(doc, docID, newRev)
	return newRev, nil
}

// Copy duplicates the source document as a brand-new, server-named document,
// by fetching it and writing its fields back without _id and _rev. The
// server's native COPY method is deliberately not used, as it requires the
// caller to pre-choose a destination name; callers that want it can issue it
// through chttp.Options.Destination.
func (db *DB) Copy(ctx context.Context, sourceID string) (id, rev string, err error) {
	if sourceID == "" {
		return "", "", missingArg("sourceID")
	}
	doc := map[string]interface{}{}
	if err := db.GetInto(ctx, sourceID, nil, &doc); err != nil {
		return "", "", err
	}
	delete(doc, "_id")
	delete(doc, "_rev")
	return db.Put(ctx, doc)
}

// Show applies the named show function ("design/show") to a document, or to
// no document when docID is empty, and returns the rendered output and its
// content type verbatim.
func (db *DB) Show(ctx context.Context, show, docID string, opts map[string]interface{}) ([]byte, string, error) {
	if show == "" {
		return nil, "", missingArg("show")
	}
	ddoc, name := splitDDoc(show)
	path := "_design/" + chttp.EncodeDocID(ddoc) + "/_show/" + chttp.EncodeDocID(name)
	if docID != "" {
		path += "/" + chttp.EncodeDocID(docID)
	}
	return db.render(ctx, path, opts)
}
