package utils

import "io"

// DrainAndClose discards what is left of an HTTP body, up to 64 KiB, then
// closes it so the underlying connection can be reused. Errors are ignored.
func DrainAndClose(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 64<<10))
	_ = rc.Close()
}
