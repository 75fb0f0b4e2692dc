// Package pages holds the full-page components. Each page renders its
// static chrome and leaves data-bound regions to partial requests.
package pages
