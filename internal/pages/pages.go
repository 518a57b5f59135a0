// Package pages holds the dashboard's navigation table: the URL paths the
// single-page app answers and the redirects in front of them.
//
// Route table:
//
//	/               → 302 /dashboard
//	/dashboard      → Dashboard
//	/analytics      → Analytics
//	/keywords       → Keywords
//	/notifications  → Notifications
//	/reports        → Reports
//	/settings       → Settings
package pages

import "strings"

// Route maps one URL path to a named page.
type Route struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Redirect sends From to To.
type Redirect struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Home is where the root path lands.
const Home = "/dashboard"

var routes = []Route{
	{Path: "/dashboard", Name: "Dashboard", Title: "仪表盘"},
	{Path: "/analytics", Name: "Analytics", Title: "数据分析"},
	{Path: "/keywords", Name: "Keywords", Title: "关键词管理"},
	{Path: "/notifications", Name: "Notifications", Title: "通知"},
	{Path: "/reports", Name: "Reports", Title: "报告"},
	{Path: "/settings", Name: "Settings", Title: "设置"},
}

var redirects = []Redirect{
	{From: "/", To: Home},
}

// Routes returns a copy of the page table in navigation order.
func Routes() []Route {
	return append([]Route(nil), routes...)
}

// Redirects returns a copy of the redirect table.
func Redirects() []Redirect {
	return append([]Redirect(nil), redirects...)
}

// Match is the outcome of Resolve. Exactly one of Route and RedirectTo is
// set when Found is true.
type Match struct {
	Found      bool
	Route      Route
	RedirectTo string
}

// Resolve looks up path. A trailing slash is ignored except on the root.
func Resolve(path string) Match {
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	for _, r := range redirects {
		if r.From == path {
			return Match{Found: true, RedirectTo: r.To}
		}
	}
	for _, r := range routes {
		if r.Path == path {
			return Match{Found: true, Route: r}
		}
	}
	return Match{}
}

// ByName returns the route with the given name.
func ByName(name string) (Route, bool) {
	for _, r := range routes {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return Route{}, false
}
