package transport

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// HeaderLogging returns a middleware that logs request and response lines
// plus their headers at debug level. Bodies are never logged. Values of the
// headers named in redact are replaced with "██".
func HeaderLogging(logger *zerolog.Logger, redact ...string) Middleware {
	hidden := make(map[string]bool, len(redact))
	for _, h := range redact {
		hidden[http.CanonicalHeaderKey(h)] = true
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if logger == nil || logger.GetLevel() > zerolog.DebugLevel {
				return next.RoundTrip(req)
			}

			logger.Debug().
				Str("method", req.Method).
				Str("url", req.URL.String()).
				Dict("headers", headerDict(req.Header, hidden)).
				Msg("--> request")

			start := time.Now()
			resp, err := next.RoundTrip(req)
			elapsed := time.Since(start)
			if err != nil {
				logger.Debug().
					Err(err).
					Str("url", req.URL.String()).
					Dur("elapsed", elapsed).
					Msg("<-- HTTP FAILED")
				return nil, err
			}

			logger.Debug().
				Int("status", resp.StatusCode).
				Str("url", req.URL.String()).
				Dur("elapsed", elapsed).
				Dict("headers", headerDict(resp.Header, hidden)).
				Msg("<-- response")
			return resp, nil
		})
	}
}

func headerDict(h http.Header, hidden map[string]bool) *zerolog.Event {
	d := zerolog.Dict()
	for name, values := range h {
		if hidden[name] {
			d.Str(name, "██")
			continue
		}
		d.Str(name, strings.Join(values, ", "))
	}
	return d
}
