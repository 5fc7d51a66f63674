// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package web

import (
	"fmt"
	"net/url"
	"strings"
)

// Route names accepted by Reverse.
const (
	IndexRoute  = "polls:index"
	DetailRoute = "polls:detail"
)

// route binds a name to a ServeMux pattern. path is the pattern without the
// method and is the template Reverse fills in. A trailing {$} anchors the
// match to the exact path and reverses to nothing.
type route struct {
	name   string
	method string
	path   string
}

func (r route) pattern() string {
	return r.method + " " + r.path
}

var routes = []route{
	{name: IndexRoute, method: "GET", path: "/polls/{$}"},
	{name: DetailRoute, method: "GET", path: "/polls/{id}/{$}"},
}

// routeByName and routeByPattern index routes for Reverse and for metrics
// labelling.
var (
	routeByName    = map[string]route{}
	routeByPattern = map[string]string{}
)

func init() {
	for _, r := range routes {
		routeByName[r.name] = r
		routeByPattern[r.pattern()] = r.name
	}
}

// Reverse returns the URL path for a named route, substituting args for the
// route's wildcards in order.
func Reverse(name string, args ...any) (string, error) {
	r, ok := routeByName[name]
	if !ok {
		return "", fmt.Errorf("no route named %q", name)
	}

	segments := strings.Split(r.path, "/")
	next := 0
	for i, seg := range segments {
		if seg == "{$}" {
			segments[i] = ""
			continue
		}
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		if next >= len(args) {
			return "", fmt.Errorf("route %q: missing value for %s", name, seg)
		}
		segments[i] = url.PathEscape(fmt.Sprint(args[next]))
		next++
	}
	if next != len(args) {
		return "", fmt.Errorf("route %q takes %d arguments, got %d", name, next, len(args))
	}
	return strings.Join(segments, "/"), nil
}

// MustReverse is like Reverse but panics on error. Use it only with
// constant names and arguments.
func MustReverse(name string, args ...any) string {
	u, err := Reverse(name, args...)
	if err != nil {
		panic(err)
	}
	return u
}

// RouteName returns the route name registered for a ServeMux pattern, or ""
// for patterns that are not named routes.
func RouteName(pattern string) string {
	return routeByPattern[pattern]
}
