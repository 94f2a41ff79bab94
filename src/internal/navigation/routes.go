package navigation

import "strings"

// View names of the client routes
const (
	ViewHome        = "Home"
	ViewLogin       = "Login"
	ViewPollsList   = "PollsListPage"
	ViewPollResults = "PollResults"
	ViewUnknown     = ""
)

// Route maps a client path to the view that renders it.
type Route struct {
	Name       string
	Path       string
	RedirectTo string
	Props      bool
}

var Routes = []Route{
	{Name: ViewHome, Path: "/", RedirectTo: ViewPollsList},
	{Name: ViewLogin, Path: "/account/login"},
	{Name: ViewPollsList, Path: "/polls"},
	{Name: ViewPollResults, Path: "/polls/:id/results", Props: true},
}

func routeByName(name string) (Route, bool) {
	for _, r := range Routes {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// PathFor builds the absolute path of a named view under basePath.
func PathFor(basePath, name string, params map[string]string) string {
	route, ok := routeByName(name)
	if !ok {
		return joinPath(basePath, "/")
	}

	segments := strings.Split(route.Path, "/")
	for i, segment := range segments {
		if strings.HasPrefix(segment, ":") {
			segments[i] = params[segment[1:]]
		}
	}
	return joinPath(basePath, strings.Join(segments, "/"))
}

func joinPath(basePath, path string) string {
	base := strings.TrimRight(basePath, "/")
	if path == "/" {
		return base + "/"
	}
	return base + path
}
