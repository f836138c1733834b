package sofa

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// optionsToParams converts a view/query option map into URL query parameters.
// Any option whose key contains "key" (key, keys, startkey, endkey,
// start_key, end_key) carries a JSON value, and is JSON-encoded before the
// query escaping, per the server's view query convention. All other values
// are stringified as-is.
func optionsToParams(opts ...map[string]interface{}) (url.Values, error) {
	params := url.Values{}
	for _, optsSet := range opts {
		for key, i := range optsSet {
			if strings.Contains(key, "key") {
				enc, err := json.Marshal(i)
				if err != nil {
					return nil, &Error{HTTPStatus: http.StatusBadRequest, Err: err}
				}
				params.Add(key, string(enc))
				continue
			}
			var values []string
			switch v := i.(type) {
			case string:
				values = []string{v}
			case []string:
				values = v
			case bool:
				values = []string{fmt.Sprintf("%t", v)}
			case int, uint, uint8, uint16, uint32, uint64, int8, int16, int32, int64:
				values = []string{fmt.Sprintf("%d", v)}
			case float32, float64:
				values = []string{fmt.Sprintf("%v", v)}
			default:
				return nil, &Error{HTTPStatus: http.StatusBadRequest, Err: fmt.Errorf("sofa: invalid type %T for option %q", i, key)}
			}
			for _, value := range values {
				params.Add(key, value)
			}
		}
	}
	return params, nil
}
