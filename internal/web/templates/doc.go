// Package templates holds the HTML components of the pole map UI.
//
// Components are written in .templ files; the *_templ.go files are produced
// from them by `templ generate` and must not be edited by hand. Parameter
// types and small formatting helpers live in plain Go next to them.
package templates
