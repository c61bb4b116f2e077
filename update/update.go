// Package update performs a best-effort check for a newer release. The check
// runs in the background with a short timeout and never blocks or fails the
// encode flow.
package update

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Version is the running release, overridable at link time.
var Version = "1.2.0"

const checkTimeout = 3 * time.Second

// Check fetches the published version string from url and reports a notice
// when it is newer than the running build. Any failure returns an empty
// string; an unreachable endpoint is not worth bothering the user about.
func Check(ctx context.Context, url string, log zerolog.Logger) string {
	if url == "" {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("update check failed")
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return ""
	}
	latest := strings.TrimSpace(string(body))
	if latest == "" || !IsNewer(latest, Version) {
		return ""
	}
	log.Info().Str("latest", latest).Str("current", Version).Msg("newer version available")
	return "Update available: v" + latest + " (running v" + Version + ")"
}

// IsNewer reports whether a is a strictly newer dotted version than b.
// Malformed components compare as zero.
func IsNewer(a, b string) bool {
	as := strings.Split(strings.TrimPrefix(a, "v"), ".")
	bs := strings.Split(strings.TrimPrefix(b, "v"), ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av != bv {
			return av > bv
		}
	}
	return false
}
