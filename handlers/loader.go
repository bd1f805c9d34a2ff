// Package handlers turns declarative handler definitions into interceptor rules, and provides
// the default baseline rules shared by the login scenarios.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/launchdarkly/http-mock-contract-tests/interceptor"
	"github.com/launchdarkly/http-mock-contract-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"
)

// Load parses a handler definition document, in YAML or JSON, and returns its rules in
// declaration order.
func Load(data []byte) ([]interceptor.HandlerRule, error) {
	var set servicedef.HandlerSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("malformed handler definitions: %w", err)
	}
	if len(set.Handlers) == 0 {
		return nil, errors.New("handler definitions contain no handlers")
	}
	rules := make([]interceptor.HandlerRule, 0, len(set.Handlers))
	for i, def := range set.Handlers {
		rule, err := Rule(def)
		if err != nil {
			return nil, fmt.Errorf("handler %d: %w", i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// LoadFile reads and parses a handler definition file.
func LoadFile(path string) ([]interceptor.HandlerRule, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rules, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// Rule converts a single definition into a HandlerRule.
func Rule(def servicedef.HandlerDef) (interceptor.HandlerRule, error) {
	method, err := interceptor.ParseMethod(def.Method)
	if err != nil {
		return interceptor.HandlerRule{}, err
	}

	var matcher interceptor.URLMatcher
	switch {
	case def.URL != "" && def.Pattern != "":
		return interceptor.HandlerRule{}, errors.New("only one of url and pattern may be set")
	case def.URL != "":
		matcher = interceptor.Exact(def.URL)
	case def.Pattern != "":
		if matcher, err = interceptor.Pattern(def.Pattern); err != nil {
			return interceptor.HandlerRule{}, err
		}
	default:
		return interceptor.HandlerRule{}, errors.New("one of url or pattern is required")
	}

	if def.Status != 0 && (def.Status < 100 || def.Status > 599) {
		return interceptor.HandlerRule{}, fmt.Errorf("invalid status %d", def.Status)
	}
	if def.DelayMS.IsDefined() && def.DelayMS.IntValue() < 0 {
		return interceptor.HandlerRule{}, fmt.Errorf("invalid delayMs %d", def.DelayMS.IntValue())
	}
	if len(def.Echo) > 0 && def.Body.Type() != ldvalue.ObjectType && !def.Body.IsNull() {
		return interceptor.HandlerRule{}, errors.New("echo requires the body to be an object")
	}

	var resolver interceptor.Resolver = definedResolver{def}.resolve
	if def.DelayMS.IsDefined() {
		resolver = interceptor.Delayed(time.Duration(def.DelayMS.IntValue())*time.Millisecond, resolver)
	}

	rule := interceptor.NewRule(method, matcher, resolver)
	if def.Name != "" {
		rule = rule.Named(def.Name)
	}
	return rule, nil
}

type definedResolver struct {
	def servicedef.HandlerDef
}

func (r definedResolver) resolve(_ context.Context, req interceptor.Request) (interceptor.ResponseDescriptor, error) {
	for _, field := range r.def.Require {
		if !req.HasField(field) {
			return interceptor.Message(http.StatusBadRequest, field+" required"), nil
		}
	}

	status := r.def.Status
	if status == 0 {
		status = http.StatusOK
	}
	if len(r.def.Echo) == 0 {
		return interceptor.JSON(status, r.def.Body), nil
	}

	b := ldvalue.ObjectBuild()
	for _, k := range r.def.Body.Keys() {
		b = b.Set(k, r.def.Body.GetByKey(k))
	}
	for _, field := range r.def.Echo {
		if v := req.Field(field); !v.IsNull() {
			b = b.Set(field, v)
		}
	}
	return interceptor.JSON(status, b.Build()), nil
}
