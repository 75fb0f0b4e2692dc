// Package partials holds the htmx fragments that fill data-bound regions.
package partials
