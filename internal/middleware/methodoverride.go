package middleware

import (
	"mime"
	"net/http"
	"strings"
)

// MethodOverrideParam is the query or form field HTML forms use to tunnel
// PUT, PATCH and DELETE through a POST.
const MethodOverrideParam = "_method"

var overridable = map[string]bool{
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// MethodOverride rewrites a POST into the method named by _method. The query
// string is checked first; urlencoded bodies are checked second. Multipart
// bodies are never parsed here, so upload forms must carry _method in their
// action URL. Unknown values are ignored.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if m := overrideMethod(r); m != "" {
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func overrideMethod(r *http.Request) string {
	m := strings.ToUpper(r.URL.Query().Get(MethodOverrideParam))
	if m == "" && isURLEncoded(r) {
		m = strings.ToUpper(r.PostFormValue(MethodOverrideParam))
	}
	if overridable[m] {
		return m
	}
	return ""
}

func isURLEncoded(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "application/x-www-form-urlencoded"
}
