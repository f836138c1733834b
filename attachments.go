package sofa

import (
	"context"
	"io"
	"io/ioutil"
	"mime"
	"net/http"
	"net/url"

	"github.com/sofadb/sofa/chttp"
)

// Attachment is a named binary payload attached to a document revision.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// PutAttachment uploads the supplied content as an attachment to the
// specified document revision. The content is sent verbatim with the given
// content type.
func (db *DB) PutAttachment(ctx context.Context, docID, rev, filename, contentType string, body io.Reader) (string, error) {
	if docID == "" {
		return "", missingArg("docID")
	}
	if filename == "" {
		return "", missingArg("filename")
	}
	if contentType == "" {
		return "", missingArg("contentType")
	}
	query := url.Values{}
	if rev != "" {
		query.Add("rev", rev)
	}
	opts := &chttp.Options{
		Body:        body,
		ContentType: contentType,
	}
	var result writeResult
	_, err := db.client.DoJSON(ctx, http.MethodPut, db.path(chttp.EncodeDocID(docID)+"/"+filename, query), opts, &result)
	if err != nil {
		return "", err
	}
	return result.Rev, nil
}

// GetAttachment fetches an attachment's raw content and content type. A body
// that is not JSON is never an error here; the response is returned exactly
// as the server sent it.
func (db *DB) GetAttachment(ctx context.Context, docID, filename string) (*Attachment, error) {
	if docID == "" {
		return nil, missingArg("docID")
	}
	if filename == "" {
		return nil, missingArg("filename")
	}
	opts := &chttp.Options{Accept: "*/*"}
	resp, err := db.client.DoReq(ctx, http.MethodGet, db.path(chttp.EncodeDocID(docID)+"/"+filename, nil), opts)
	if err != nil {
		return nil, err
	}
	if respErr := chttp.ResponseError(resp); respErr != nil {
		return nil, respErr
	}
	defer func() { _ = resp.Body.Close() }()
	content, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	ctype, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return &Attachment{
		Filename:    filename,
		ContentType: ctype,
		Content:     content,
	}, nil
}

// DeleteAttachment removes an attachment from the document. When rev is
// empty, the document's current revision is fetched first, as for Delete.
func (db *DB) DeleteAttachment(ctx context.Context, docID, rev, filename string) (string, error) {
	if docID == "" {
		return "", missingArg("docID")
	}
	if filename == "" {
		return "", missingArg("filename")
	}
	if rev == "" {
		var err error
		if rev, err = db.Rev(ctx, docID); err != nil {
			return "", err
		}
	}
	query := url.Values{}
	query.Add("rev", rev)
	var result writeResult
	_, err := db.client.DoJSON(ctx, http.MethodDelete, db.path(chttp.EncodeDocID(docID)+"/"+filename, query), nil, &result)
	if err != nil {
		return "", err
	}
	return result.Rev, nil
}
