package webd

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	ghandlers "github.com/gorilla/handlers"
)

func permissiveCorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Add("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func contentTypeMiddlewareFunc(contentType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", contentType)
			next.ServeHTTP(w, r)
		})
	}
}

const commonLogTime = "02/Jan/2006:15:04:05 -0700"

// remoteHost is the client host followed by any X-Forwarded-For hops.
func remoteHost(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		host = req.RemoteAddr
	}
	for _, v := range req.Header.Values("X-Forwarded-For") {
		host += "->" + v
	}
	return host
}

// buildCommonLogLine builds a log entry for req in Apache Common Log Format.
func buildCommonLogLine(req *http.Request, u url.URL, ts time.Time, status int, size int) []byte {
	username := "-"
	if u.User != nil {
		if name := u.User.Username(); name != "" {
			username = name
		}
	}
	uri := req.RequestURI
	if req.ProtoMajor == 2 && req.Method == http.MethodConnect {
		uri = req.Host
	}
	if uri == "" {
		uri = u.RequestURI()
	}
	// Escape like a Go string literal, without the surrounding quotes.
	quoted := strconv.Quote(uri)
	uri = quoted[1 : len(quoted)-1]

	return fmt.Appendf(nil, `%s - %s [%s] "%s %s %s" %d %d`,
		remoteHost(req), username, ts.Format(commonLogTime),
		req.Method, uri, req.Proto, status, size)
}

func writeLog(w io.Writer, p ghandlers.LogFormatterParams) {
	buf := buildCommonLogLine(p.Request, p.URL, p.TimeStamp, p.StatusCode, p.Size)
	buf = append(buf, '\n')
	_, _ = w.Write(buf)
}

// accessLog receives one Common Log Format line per request.
var accessLog io.Writer = os.Stdout

func loggingMiddleware(next http.Handler) http.Handler {
	return ghandlers.CustomLoggingHandler(accessLog, next, writeLog)
}
