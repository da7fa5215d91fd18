// Package router provides route template compilation and first-match
// request resolution for the dispatch engine.
package router

import (
	"regexp"
	"strings"

	"github.com/vyrodovalexey/avembed/internal/util"
)

// identifierPattern matches a valid placeholder name.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// segment is one parsed element of a route template.
type segment struct {
	value     string
	isParam   bool
	paramName string
}

// CompiledTemplate is a route template compiled into a matcher that
// tests request paths and extracts named path parameters.
type CompiledTemplate struct {
	template   string
	paramNames []string
	segments   []segment
	regex      *regexp.Regexp
}

// CompileTemplate compiles a path template containing literal segments
// and {name} placeholder segments. It fails if a placeholder segment is
// malformed or if two placeholders share a name.
func CompileTemplate(template string) (*CompiledTemplate, error) {
	normalized := NormalizePath(template)

	segments, err := parseTemplate(template, normalized)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(segments))
	seen := make(map[string]bool, len(segments))

	var pattern strings.Builder
	pattern.WriteString("^")

	for _, seg := range segments {
		if seg.isParam {
			if seen[seg.paramName] {
				return nil, util.NewTemplateError(template,
					"duplicate placeholder name "+seg.paramName)
			}
			seen[seg.paramName] = true
			names = append(names, seg.paramName)

			pattern.WriteString("/(?P<")
			pattern.WriteString(seg.paramName)
			pattern.WriteString(">[^/]+)")
		} else {
			pattern.WriteString("/")
			pattern.WriteString(regexp.QuoteMeta(seg.value))
		}
	}

	if len(segments) == 0 {
		// Root template matches only the root path.
		pattern.WriteString("/")
	}
	pattern.WriteString("$")

	regex, err := regexp.Compile(pattern.String())
	if err != nil {
		return nil, util.NewTemplateError(template, err.Error())
	}

	return &CompiledTemplate{
		template:   normalized,
		paramNames: names,
		segments:   segments,
		regex:      regex,
	}, nil
}

// parseTemplate splits a template into literal and placeholder segments,
// validating each placeholder.
func parseTemplate(original, normalized string) ([]segment, error) {
	parts := strings.Split(strings.Trim(normalized, "/"), "/")
	segments := make([]segment, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			continue
		}

		if strings.ContainsAny(part, "{}") {
			if !strings.HasPrefix(part, "{") || !strings.HasSuffix(part, "}") {
				return nil, util.NewTemplateError(original,
					"malformed placeholder segment "+part)
			}
			name := part[1 : len(part)-1]
			if !identifierPattern.MatchString(name) {
				return nil, util.NewTemplateError(original,
					"placeholder name "+name+" is not an identifier")
			}
			segments = append(segments, segment{
				value:     part,
				isParam:   true,
				paramName: name,
			})
		} else {
			segments = append(segments, segment{value: part})
		}
	}

	return segments, nil
}

// Match tests a request path against the compiled template. On success
// it returns the captured placeholder values keyed by name. Matching is
// anchored to the full path; placeholder segments capture one-or-more
// non-delimiter characters.
func (t *CompiledTemplate) Match(path string) (params map[string]string, matched bool) {
	matches := t.regex.FindStringSubmatch(NormalizePath(path))
	if matches == nil {
		return nil, false
	}

	params = make(map[string]string, len(t.paramNames))
	for i, name := range t.regex.SubexpNames() {
		if i > 0 && name != "" && i < len(matches) {
			params[name] = matches[i]
		}
	}

	return params, true
}

// Template returns the normalized template string.
func (t *CompiledTemplate) Template() string {
	return t.template
}

// ParamNames returns the placeholder names in declaration order.
func (t *CompiledTemplate) ParamNames() []string {
	names := make([]string, len(t.paramNames))
	copy(names, t.paramNames)
	return names
}

// HasParams returns true if the template declares any placeholders.
func (t *CompiledTemplate) HasParams() bool {
	return len(t.paramNames) > 0
}

// NormalizePath normalizes a template or request path: leading delimiter
// enforced, trailing delimiters stripped, empty segments dropped. A
// template and a request path both with or without a trailing separator
// therefore match consistently.
func NormalizePath(path string) string {
	parts := strings.Split(path, "/")
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return "/" + strings.Join(kept, "/")
}
