package auth

import (
	"github.com/tidwall/gjson"

	"github.com/fivetwenty-io/superset-client/internal/constants"
)

// ExtractCSRFToken pulls the csrf_token string out of a token endpoint body.
// The body must be a JSON object and the field must be a JSON string; an
// empty string is accepted. Any other defined value, such as a number or
// null, is rejected rather than counted as a token.
func ExtractCSRFToken(body []byte) (string, bool) {
	if !gjson.ValidBytes(body) {
		return "", false
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return "", false
	}

	field := root.Get(constants.CSRFTokenField)
	if field.Type != gjson.String {
		return "", false
	}

	return field.Str, true
}
