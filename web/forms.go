package web

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// decodeForm copies the submitted fields into the mapstructure tagged input struct out. Fields missing from the
// form are left untouched, so pointer fields of out stay nil for a partial update.
func decodeForm(form url.Values, out interface{}) error {
	raw := make(map[string]interface{}, len(form))
	for k, v := range form {
		if len(v) > 0 {
			raw[k] = v[0]
		}
	}
	err := mapstructure.WeakDecode(raw, out)
	if err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, err)
	}
	return nil
}

// idVar returns the numeric route variable name. Ids that do not fit are reported as not found.
func (rc *RequestContext) idVar(name string) (uint, error) {
	id, err := strconv.ParseUint(rc.Vars[name], 10, 0)
	if err != nil || id == 0 {
		return 0, errNoRoute
	}
	return uint(id), nil
}
