// Package guard flips the application into test mode for any test binary
// that imports it, keeping runtime side effects out of unit tests.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("NORDVARE_TEST_MODE") == "" {
			_ = os.Setenv("NORDVARE_TEST_MODE", "1")
		}
	})
}
