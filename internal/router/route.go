package router

import (
	"net/url"
	"strings"
)

type Route int

const (
	Home Route = iota
	Auth
	Attendees
	Dashboard
	Chat
	NotFound
)

// Routes lists the navigable routes in menu order.
func Routes() []Route {
	return []Route{Home, Auth, Attendees, Dashboard, Chat}
}

func (r Route) String() string {
	switch r {
	case Home:
		return "home"
	case Auth:
		return "auth"
	case Attendees:
		return "attendees"
	case Dashboard:
		return "dashboard"
	case Chat:
		return "chat"
	default:
		return "not-found"
	}
}

func (r Route) Title() string {
	switch r {
	case Home:
		return "Home"
	case Auth:
		return "Account"
	case Attendees:
		return "Attendees"
	case Dashboard:
		return "Dashboard"
	case Chat:
		return "Messages"
	default:
		return "Not found"
	}
}

func (r Route) Path() string {
	switch r {
	case Home:
		return "/"
	case Auth:
		return "/auth"
	case Attendees:
		return "/attendees"
	case Dashboard:
		return "/dashboard"
	case Chat:
		return "/messages"
	default:
		return "/404"
	}
}

var locations = map[string]Route{
	"/":          Home,
	"/home":      Home,
	"/auth":      Auth,
	"/attendees": Attendees,
	"/dashboard": Dashboard,
	"/messages":  Chat,
	"/chat":      Chat,
}

// Parse maps a location such as "/dashboard?x=1" to its route. Unknown locations map
// to NotFound. A leading "#" is accepted for hash-style locations.
func Parse(location string) Route {
	location = strings.TrimSpace(location)
	location = strings.TrimPrefix(location, "#")
	if parsed, err := url.Parse(location); err == nil {
		location = parsed.Path
	}
	if location == "" {
		location = "/"
	}
	if !strings.HasPrefix(location, "/") {
		location = "/" + location
	}
	if len(location) > 1 {
		location = strings.TrimRight(location, "/")
		if location == "" {
			location = "/"
		}
	}

	if route, ok := locations[strings.ToLower(location)]; ok {
		return route
	}
	return NotFound
}
