// Package servicedef contains the declarative format for describing mock handlers as static
// data, so that a baseline handler set can be written in YAML or JSON rather than in code.
package servicedef

import (
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"
)

// HandlerSet is the top-level document of a handler definition file.
type HandlerSet struct {
	Handlers []HandlerDef `yaml:"handlers" json:"handlers"`
}

// HandlerDef describes one mock handler.
//
// Exactly one of URL and Pattern must be set. When the handler runs, the fields listed in
// Require are checked in order, and the first one missing from the request body produces a
// 400 response with the message "<field> required". Otherwise the response has Status
// (default 200) and Body, with any fields listed in Echo copied into it from the request
// body.
type HandlerDef struct {
	Name    string              `yaml:"name,omitempty" json:"name,omitempty"`
	Method  string              `yaml:"method" json:"method"`
	URL     string              `yaml:"url,omitempty" json:"url,omitempty"`
	Pattern string              `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Status  int                 `yaml:"status,omitempty" json:"status,omitempty"`
	Body    ldvalue.Value       `yaml:"-" json:"body,omitempty"`
	Require []string            `yaml:"require,omitempty" json:"require,omitempty"`
	Echo    []string            `yaml:"echo,omitempty" json:"echo,omitempty"`
	DelayMS ldvalue.OptionalInt `yaml:"-" json:"delayMs,omitempty"`
}

type handlerDefYAML struct {
	Name    string      `yaml:"name"`
	Method  string      `yaml:"method"`
	URL     string      `yaml:"url"`
	Pattern string      `yaml:"pattern"`
	Status  int         `yaml:"status"`
	Body    interface{} `yaml:"body"`
	Require []string    `yaml:"require"`
	Echo    []string    `yaml:"echo"`
	DelayMS *int        `yaml:"delayMs"`
}

// UnmarshalYAML decodes a HandlerDef, converting the free-form body into a JSON value.
func (d *HandlerDef) UnmarshalYAML(node *yaml.Node) error {
	var raw handlerDefYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*d = HandlerDef{
		Name:    raw.Name,
		Method:  raw.Method,
		URL:     raw.URL,
		Pattern: raw.Pattern,
		Status:  raw.Status,
		Body:    ldvalue.CopyArbitraryValue(raw.Body),
		Require: raw.Require,
		Echo:    raw.Echo,
	}
	if raw.DelayMS != nil {
		d.DelayMS = ldvalue.NewOptionalInt(*raw.DelayMS)
	}
	return nil
}
