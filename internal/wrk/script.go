package wrk

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// doneFunction is appended to every script handed to wrk. It prints the run
// summary as JSON behind a "JSON" marker so the executor can split it off
// the rest of wrk's textual output. The emitted field names are the stored
// result contract; do not rename them.
const doneFunction = `
-- The done() function is called at the end of wrk execution and emits the
-- summary as JSON behind a "JSON" marker so the harness can parse it.
done = function(summary, latency, requests)
    local errors = summary.errors.connect
        + summary.errors.read
        + summary.errors.write
        + summary.errors.status
        + summary.errors.timeout
    io.write("JSON")
    io.write(string.format(
        [[{
    "requests": %d,
    "errors": %d,
    "successes": %d,
    "requests_per_sec": %d,
    "avg_latency_ms": %.2f,
    "min_latency_ms": %.2f,
    "max_latency_ms": %.2f,
    "stdev_latency_ms": %.2f,
    "transfer_mb": %d,
    "errors_connect": %d,
    "errors_read": %d,
    "errors_write": %d,
    "errors_status": %d,
    "errors_timeout": %d
}
]],
        summary.requests,
        errors,
        summary.requests - errors,
        summary.requests / (summary.duration / 1000000),
        (latency.mean / 1000),
        (latency.min / 1000),
        (latency.max / 1000),
        (latency.stdev / 1000),
        (summary.bytes / 1048576),
        summary.errors.connect,
        summary.errors.read,
        summary.errors.write,
        summary.errors.status,
        summary.errors.timeout
    ))
end
`

// Request shapes the HTTP request wrk issues on every connection.
type Request struct {
	Method  string
	Body    string
	Headers map[string]string
}

// renderScript writes the Lua script for one run to a temp file and returns
// its path plus a cleanup func. With a user script the user's code is taken
// verbatim and only done() is appended; the user script must not define its
// own done(). Otherwise a request() function is generated from req.
func renderScript(uri string, req Request, userScript string) (string, func(), error) {
	var buf strings.Builder
	if userScript != "" {
		data, err := os.ReadFile(userScript)
		if err != nil {
			return "", nil, fmt.Errorf("reading user script %s: %w", userScript, err)
		}
		buf.Write(data)
	} else {
		buf.WriteString(requestFunction(uri, req))
	}
	buf.WriteString(doneFunction)

	tmp, err := os.CreateTemp("", "wrkbench-*.lua")
	if err != nil {
		return "", nil, fmt.Errorf("creating script file: %w", err)
	}
	if _, err := tmp.WriteString(buf.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("writing script file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("closing script file: %w", err)
	}
	path := tmp.Name()
	return path, func() { os.Remove(path) }, nil
}

func requestFunction(uri string, req Request) string {
	method := req.Method
	if method == "" {
		method = "GET"
	}

	var headers strings.Builder
	keys := make([]string, 0, len(req.Headers))
	for k := range req.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&headers, "    wrk.headers[%q] = %q\n", k, req.Headers[k])
	}

	return fmt.Sprintf(`
-- The request() function is called by wrk on every request and configures
-- method, headers and body.
request = function()
    wrk.method = %q
    wrk.body = %q
%s    return wrk.format(%q, %q)
end
`, method, req.Body, headers.String(), method, uri)
}
