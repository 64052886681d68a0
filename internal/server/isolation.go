package server

import "net/http"

// Cross-origin isolation headers. Browsers require both on every
// response before enabling SharedArrayBuffer and friends.
const (
	openerPolicyHeader   = "Cross-Origin-Opener-Policy"
	openerPolicyValue    = "same-origin"
	embedderPolicyHeader = "Cross-Origin-Embedder-Policy"
	embedderPolicyValue  = "require-corp"
)

// crossOriginIsolation injects the COOP and COEP headers on every
// response the wrapped handler produces, error responses included.
func crossOriginIsolation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(openerPolicyHeader, openerPolicyValue)
		w.Header().Set(embedderPolicyHeader, embedderPolicyValue)
		next.ServeHTTP(w, r)
	})
}
