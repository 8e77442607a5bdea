package addr

import "strings"

// Change describes one field replacement applied by URL.Update or Build.
type Change func(*URL)

// Update returns a copy of u with changes applied in order. Fields that no
// change mentions keep the value they have in u.
func (u URL) Update(changes ...Change) URL {
	out := u
	for _, change := range changes {
		change(&out)
	}
	// A path after an authority is always absolute.
	if out.authority() != "" && out.path != "" && !strings.HasPrefix(out.path, "/") {
		out.path = "/" + out.path
	}
	return out
}

// Build constructs a URL from scratch.
func Build(changes ...Change) URL {
	return URL{}.Update(changes...)
}

func WithScheme(scheme string) Change {
	return func(u *URL) { u.scheme = strings.ToLower(scheme) }
}

func WithHostname(hostname string) Change {
	return func(u *URL) { u.hostname = strings.ToLower(hostname) }
}

func WithPort(port int) Change {
	return func(u *URL) { u.port, u.hasPort = port, true }
}

func WithoutPort() Change {
	return func(u *URL) { u.port, u.hasPort = 0, false }
}

// WithPath sets the decoded path.
func WithPath(path string) Change {
	return func(u *URL) { u.path = path }
}

// WithFragment sets the decoded fragment.
func WithFragment(fragment string) Change {
	return func(u *URL) { u.fragment = fragment }
}

// WithUser sets both the user name and the password of the userinfo.
func WithUser(username, password string) Change {
	return func(u *URL) {
		u.username, u.hasUser = username, true
		u.password, u.hasPassword = password, true
	}
}

// WithUsername sets a userinfo that carries no password.
func WithUsername(username string) Change {
	return func(u *URL) {
		u.username, u.hasUser = username, true
		u.password, u.hasPassword = "", false
	}
}

// WithoutUser drops the userinfo.
func WithoutUser() Change {
	return func(u *URL) {
		u.username, u.hasUser = "", false
		u.password, u.hasPassword = "", false
	}
}

// WithQuery merges single values into the query. A key already present has
// its whole list replaced by the new value; other keys are left untouched.
func WithQuery(query map[string]string) Change {
	return WithQueryValues(FromMap(query))
}

// WithQueryValues merges query into the existing query, replacing the list
// of every key it names.
func WithQueryValues(query Values) Change {
	return func(u *URL) { u.query = u.query.Merge(query) }
}

// WithParams merges single values into the ';' parameters, with the same
// replacement rule as WithQuery.
func WithParams(params map[string]string) Change {
	return WithParamsValues(FromMap(params))
}

func WithParamsValues(params Values) Change {
	return func(u *URL) { u.params = u.params.Merge(params) }
}

// WithoutQuery removes the given keys from the query, or the whole query
// when no key is given.
func WithoutQuery(names ...string) Change {
	return func(u *URL) {
		if len(names) == 0 {
			u.query = Values{}
			return
		}
		for _, name := range names {
			u.query = u.query.Without(name)
		}
	}
}
