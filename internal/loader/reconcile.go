package loader

import (
	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/honeybadger-loader/internal/dto"
)

// Keys involved in the web environment relocation.
const (
	webEnvironmentKey = "web_environment"
	requestKey        = "request"
	cgiDataKey        = "cgi_data"
)

// treeAPI keeps numbers as json.Number so values survive the round trip
// through the generic tree untouched.
var treeAPI = json.Config{
	UseNumber:              true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// Reconcile parses a Read API notice and decodes it into a ReportedError
// after moving the web environment under request.cgi_data.
func Reconcile(raw []byte) (*dto.ReportedError, error) {
	const op = "reconcile"

	var tree map[string]interface{}
	if err := treeAPI.Unmarshal(raw, &tree); err != nil {
		return nil, newError(KindMalformedResponse, op, err)
	}
	if tree == nil {
		return nil, errorf(KindMalformedResponse, op, "response is not a JSON object")
	}

	if err := ReconcileTree(tree); err != nil {
		return nil, err
	}

	patched, err := treeAPI.Marshal(tree)
	if err != nil {
		return nil, newError(KindMalformedResponse, op, err)
	}

	var report dto.ReportedError
	if err := treeAPI.Unmarshal(patched, &report); err != nil {
		return nil, newError(KindMalformedResponse, op, err)
	}
	return &report, nil
}

// ReconcileTree sets request.cgi_data to a copy of web_environment in place.
// web_environment is kept. Running it again overwrites the previous copy.
func ReconcileTree(tree map[string]interface{}) error {
	const op = "reconcile tree"

	env, ok := tree[webEnvironmentKey].(map[string]interface{})
	if !ok {
		return errorf(KindMalformedResponse, op, "%q is missing or not an object", webEnvironmentKey)
	}
	request, ok := tree[requestKey].(map[string]interface{})
	if !ok {
		return errorf(KindMalformedResponse, op, "%q is missing or not an object", requestKey)
	}

	request[cgiDataKey] = deepCopy(env)
	return nil
}

// deepCopy clones maps and slices of a decoded JSON tree. Scalars are shared.
func deepCopy(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
