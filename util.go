package sofa

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/icza/dyno"
)

// toJSON converts a string, []byte, or json.RawMessage, which are assumed to
// hold JSON text already, into an io.Reader of that text. Any other type is
// JSON marshaled.
func toJSON(i interface{}) (io.Reader, error) {
	switch t := i.(type) {
	case string:
		return strings.NewReader(t), nil
	case []byte:
		return bytes.NewReader(t), nil
	case json.RawMessage:
		return bytes.NewReader(t), nil
	default:
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(i); err != nil {
			return nil, &Error{HTTPStatus: http.StatusBadRequest, Err: err}
		}
		return buf, nil
	}
}

// toMap normalizes an arbitrary document payload into a map, for inspection
// of the reserved fields. Map payloads are returned as-is, so mutations are
// visible to the caller; everything else round-trips through encoding/json.
func toMap(i interface{}) (map[string]interface{}, error) {
	switch t := i.(type) {
	case map[string]interface{}:
		return t, nil
	case map[interface{}]interface{}:
		if m, ok := dyno.ConvertMapI2MapS(t).(map[string]interface{}); ok {
			return m, nil
		}
	}
	var data []byte
	switch t := i.(type) {
	case string:
		data = []byte(t)
	case []byte:
		data = t
	case json.RawMessage:
		data = t
	default:
		var err error
		if data, err = json.Marshal(i); err != nil {
			return nil, &Error{HTTPStatus: http.StatusBadRequest, Err: err}
		}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &Error{HTTPStatus: http.StatusBadRequest, Err: err}
	}
	return m, nil
}

// docMeta extracts the reserved _id and _rev fields from an arbitrary
// document payload. Absent fields are returned as empty strings.
func docMeta(doc interface{}) (id, rev string, err error) {
	if setter, ok := doc.(MetaGetter); ok {
		id, rev = setter.IDRev()
		return id, rev, nil
	}
	m, err := toMap(doc)
	if err != nil {
		return "", "", err
	}
	id, _ = dyno.GetString(m, "_id")
	rev, _ = dyno.GetString(m, "_rev")
	return id, rev, nil
}

// setDocMeta writes the server-assigned id and revision back into the
// caller's document, where the payload permits it: map payloads are updated
// in place, and MetaSetter implementations are called. Other payload types
// are left untouched; callers rely on the returned values instead.
func setDocMeta(doc interface{}, id, rev string) {
	switch t := doc.(type) {
	case MetaSetter:
		t.SetIDRev(id, rev)
	case map[string]interface{}:
		if id != "" {
			_ = dyno.Set(t, id, "_id")
		}
		if rev != "" {
			_ = dyno.Set(t, rev, "_rev")
		}
	}
}
