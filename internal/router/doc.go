// Package router implements path template compilation and ordered
// route resolution.
//
// A template is a slash-separated path whose segments are either
// literals or single placeholders of the form {name}. Templates compile
// to anchored regular expressions with named capture groups, so a match
// yields the placeholder values directly. Paths and templates are
// normalized before comparison: a trailing slash never distinguishes
// two routes.
//
// The Table stores routes in registration order and resolves requests
// by scanning that order. The first template that matches the path owns
// the request; the method then selects between a matched resolution and
// a method-not-allowed resolution. Registering the same template twice
// is rejected non-fatally and the first registration wins.
package router
