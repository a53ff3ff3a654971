// Package api wires the wildlife catalogue's HTTP surface: server-rendered
// pages (home, species search, favourites, about), account registration and
// login with cookie sessions, and the JSON APIs consumed by the pages.
package api
