package httpclient

import "crypto/tls"

func tlsConfig(insecure bool) *tls.Config {
	if !insecure {
		return nil
	}
	return &tls.Config{InsecureSkipVerify: true} //nolint:gosec // user opted in via -k/--insecure
}
