package comparer

import (
	"encoding/json"
	"reflect"

	"github.com/google/go-cmp/cmp"

	"debategraph/src/domain"
)

// PropertiesSemantic compara Properties pelo conteúdo JSON, ignorando
// diferenças de tipo concreto (ex.: []string vs []interface{}) que um
// round-trip de serialização introduz.
func PropertiesSemantic() cmp.Option {
	return cmp.Comparer(func(x, y domain.Properties) bool {
		if len(x) == 0 && len(y) == 0 {
			return true
		}

		xJSON, err := json.Marshal(x)
		if err != nil {
			return false
		}
		yJSON, err := json.Marshal(y)
		if err != nil {
			return false
		}

		var xObj, yObj interface{}
		if err := json.Unmarshal(xJSON, &xObj); err != nil {
			return false
		}
		if err := json.Unmarshal(yJSON, &yObj); err != nil {
			return false
		}

		return reflect.DeepEqual(xObj, yObj)
	})
}
