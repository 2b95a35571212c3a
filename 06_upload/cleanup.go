package upload

import "os"

// Cleanup removes each path. Missing files and any other removal errors are
// ignored, so it is safe to call more than once.
func Cleanup(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		_ = os.Remove(p)
	}
}
