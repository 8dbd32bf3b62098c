package manifest

import (
	"fmt"
	"os"
)

func Template() string {
	return manifestTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("manifest already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(manifestTemplate), 0o600)
}

const manifestTemplate = `[[components]]
name = "pages/index/index"
owner_id = 1
wxs = ["wxsA"]
renderjs = ["chart"]

[components.wxs_modules]
wxsA = "m1"

[components.renderjs_modules]
chart = "r1"

[[components]]
name = "components/list/list"
owner_id = 2
wxs = ["fmt"]

[components.wxs_modules]
fmt = "m2"
`
