package records

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed sample.json
var sampleJSON []byte

// Sample returns a fresh copy of the bundled demo record set.
func Sample() []Record {
	var out []Record
	if err := json.Unmarshal(sampleJSON, &out); err != nil {
		panic(fmt.Sprintf("records: bundled sample is invalid: %v", err))
	}
	return out
}
