// Package guard flips the process into test mode when imported by tests.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("CMS_TEST_MODE") == "" {
			_ = os.Setenv("CMS_TEST_MODE", "1")
		}
	})
}
