package util

import "encoding/json"

// ConvertStructToJson renders a value as a JSON string, or "{}" when it
// cannot be encoded. Meant for queue payloads and log detail fields where
// an encoding failure should not abort the caller.
func ConvertStructToJson(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
