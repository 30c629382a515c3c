package oracle

import (
	"fmt"
	"net/url"
	"strings"
)

const defaultBaseURL = "https://openrouter.ai"

var defaultAllowedHosts = map[string]struct{}{
	"openrouter.ai":     {},
	"api.openrouter.ai": {},
}

func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return strings.TrimRight(baseURL, "/")
}

// ValidateBaseURL enforces https, a host in the allowed set, and no
// userinfo, query, or fragment on the oracle's endpoint. The allowed set
// is the built-in defaults plus any extra hostnames in allowedHosts, so
// configuring a proxy never locks out the default endpoints.
func ValidateBaseURL(baseURL string, allowedHosts []string) error {
	baseURL = normalizeBaseURL(baseURL)

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid oracle base URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid oracle base URL %q: absolute URL with host is required", baseURL)
	}
	if u.User != nil {
		return fmt.Errorf("invalid oracle base URL %q: userinfo is not allowed", baseURL)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("invalid oracle base URL %q: query and fragment are not allowed", baseURL)
	}

	if strings.ToLower(u.Scheme) != "https" {
		return fmt.Errorf("invalid oracle base URL %q: https is required", baseURL)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("invalid oracle base URL %q: host is required", baseURL)
	}

	allowed := normalizeAllowedHosts(allowedHosts)
	if _, ok := allowed[host]; !ok {
		return fmt.Errorf("invalid oracle base URL %q: host %q is not in the allowed host set", baseURL, host)
	}
	return nil
}

// normalizeAllowedHosts merges the extra hostnames into the default
// allowlist, stripping scheme prefixes, ports, and stray slashes.
func normalizeAllowedHosts(allowedHosts []string) map[string]struct{} {
	out := make(map[string]struct{}, len(defaultAllowedHosts)+len(allowedHosts))
	for h := range defaultAllowedHosts {
		out[h] = struct{}{}
	}
	for _, h := range allowedHosts {
		v := strings.ToLower(strings.TrimSpace(h))
		v = strings.TrimPrefix(v, "http://")
		v = strings.TrimPrefix(v, "https://")
		v = strings.Trim(v, "/")
		if v == "" {
			continue
		}
		if i := strings.Index(v, ":"); i >= 0 {
			v = v[:i]
		}
		out[v] = struct{}{}
	}
	return out
}
