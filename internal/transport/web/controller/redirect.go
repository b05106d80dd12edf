package controller

import (
	"net/http"
	"net/url"
	"strings"
)

const xmlHTTPRequest = "XMLHttpRequest"

func isAJAX(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == xmlHTTPRequest
}

// redirectTarget resolves where a successful rate/unrate form post should
// send the browser: the "next" form field, then the "next" query parameter,
// then the Referer, then "/". An unsafe target is an error, never silently
// rewritten.
func redirectTarget(r *http.Request) (string, bool) {
	target := r.PostFormValue("next")
	if target == "" {
		target = r.URL.Query().Get("next")
	}
	if target == "" {
		target = r.Referer()
	}

	if target != "" && !isSafeRedirect(target, r.Host) {
		return "", false
	}
	if target == "" {
		target = "/"
	}
	return target, true
}

// isSafeRedirect accepts same-site relative targets and absolute http(s)
// targets pointing back at this host. Everything else, including
// scheme-relative URLs to other hosts and non-http schemes, is rejected.
func isSafeRedirect(target, host string) bool {
	if strings.HasPrefix(target, "///") {
		return false
	}

	u, err := url.Parse(target)
	if err != nil {
		return false
	}

	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Scheme != "" && u.Host == "" {
		return false
	}
	if u.Host != "" && u.Host != host {
		return false
	}

	return true
}
