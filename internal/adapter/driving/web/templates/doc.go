// Package templates holds the layout and shared templ components.
package templates
