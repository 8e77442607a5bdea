// Package jarfile is a cookie jar that can be read from and written to the
// Netscape cookies.txt format used by curl's --cookie-jar.
//
// Unlike net/http/cookiejar, every stored cookie can be enumerated, which is
// what saving the jar back to disk needs.
package jarfile

import (
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Entry is one stored cookie. Domain never has a leading dot; HostOnly
// tells whether the cookie is sent to subdomains too. A zero Expires marks a
// session cookie.
type Entry struct {
	Domain   string
	HostOnly bool
	Path     string
	Secure   bool
	HTTPOnly bool
	Expires  time.Time
	Name     string
	Value    string
}

func (e Entry) expired(now time.Time) bool {
	return !e.Expires.IsZero() && !e.Expires.After(now)
}

func (e Entry) sameKey(o Entry) bool {
	return e.Domain == o.Domain && e.Path == o.Path && e.Name == o.Name
}

func (e Entry) domainMatch(host string) bool {
	if e.HostOnly {
		return host == e.Domain
	}
	return host == e.Domain || strings.HasSuffix(host, "."+e.Domain)
}

func (e Entry) pathMatch(path string) bool {
	if path == "" {
		path = "/"
	}
	if path == e.Path {
		return true
	}
	if !strings.HasPrefix(path, e.Path) {
		return false
	}
	return strings.HasSuffix(e.Path, "/") || path[len(e.Path)] == '/'
}

// Jar implements http.CookieJar. It is safe for concurrent use.
type Jar struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

func New() *Jar {
	return &Jar{now: time.Now}
}

// Set stores e, replacing a cookie with the same domain, path and name.
func (j *Jar) Set(e Entry) {
	e.Domain = strings.ToLower(strings.TrimPrefix(e.Domain, "."))
	if e.Path == "" {
		e.Path = "/"
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.set(e)
}

func (j *Jar) set(e Entry) {
	for i, existing := range j.entries {
		if existing.sameKey(e) {
			j.entries[i] = e
			return
		}
	}
	j.entries = append(j.entries, e)
}

func (j *Jar) remove(e Entry) {
	for i, existing := range j.entries {
		if existing.sameKey(e) {
			j.entries = append(j.entries[:i], j.entries[i+1:]...)
			return
		}
	}
}

// Len returns the number of stored cookies, expired ones included.
func (j *Jar) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// Entries returns a snapshot sorted by domain, path and name.
func (j *Jar) Entries() []Entry {
	j.mu.Lock()
	entries := append([]Entry(nil), j.entries...)
	j.mu.Unlock()

	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].Domain != entries[b].Domain {
			return entries[a].Domain < entries[b].Domain
		}
		if entries[a].Path != entries[b].Path {
			return entries[a].Path < entries[b].Path
		}
		return entries[a].Name < entries[b].Name
	})
	return entries
}

// SetCookies stores the cookies of a response from u. Cookies whose Domain
// attribute does not cover u, or names a public suffix, are ignored.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	host := canonicalHost(u.Host)
	if host == "" {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.now()

	for _, c := range cookies {
		e := Entry{
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
			Name:     c.Name,
			Value:    c.Value,
		}

		domain, hostOnly, ok := cookieDomain(host, c.Domain)
		if !ok {
			continue
		}
		e.Domain, e.HostOnly = domain, hostOnly

		if e.Path == "" || !strings.HasPrefix(e.Path, "/") {
			e.Path = defaultPath(u.Path)
		}

		switch {
		case c.MaxAge < 0:
			j.remove(e)
			continue
		case c.MaxAge > 0:
			e.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		case !c.Expires.IsZero():
			e.Expires = c.Expires
		}
		if e.expired(now) {
			j.remove(e)
			continue
		}
		j.set(e)
	}
}

// Cookies returns the cookies to send to u, longest path first.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	host := canonicalHost(u.Host)
	if host == "" {
		return nil
	}
	secure := u.Scheme == "https"

	j.mu.Lock()
	now := j.now()
	var matched []Entry
	for _, e := range j.entries {
		if e.expired(now) || (e.Secure && !secure) {
			continue
		}
		if e.domainMatch(host) && e.pathMatch(u.Path) {
			matched = append(matched, e)
		}
	}
	j.mu.Unlock()

	sort.SliceStable(matched, func(a, b int) bool {
		return len(matched[a].Path) > len(matched[b].Path)
	})

	cookies := make([]*http.Cookie, 0, len(matched))
	for _, e := range matched {
		cookies = append(cookies, &http.Cookie{Name: e.Name, Value: e.Value})
	}
	return cookies
}

func canonicalHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	return strings.ToLower(strings.Trim(host, "[]"))
}

func cookieDomain(host, attr string) (domain string, hostOnly bool, ok bool) {
	attr = strings.ToLower(strings.TrimPrefix(attr, "."))
	if attr == "" || attr == host {
		return host, attr == "", true
	}
	if net.ParseIP(host) != nil {
		return "", false, false
	}
	if !strings.HasSuffix(host, "."+attr) {
		return "", false, false
	}
	if suffix, _ := publicsuffix.PublicSuffix(attr); suffix == attr {
		return "", false, false
	}
	return attr, false, true
}

func defaultPath(path string) string {
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return "/"
	}
	return path[:i]
}
