//go:build windows

package pathguard

// ACL inspection is not performed; existence is checked by the caller.
func checkWritableByOthers(string) error {
	return nil
}
