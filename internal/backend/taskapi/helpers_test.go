package taskapi_test

import "encoding/json"

func jsonDecode(body string, out any) error {
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(body), out)
}
