package builtin

import (
	"fmt"
)

// readString pops a string option. A missing required option is an error.
func readString(processorType string, config map[string]any, key string, required bool) (string, error) {
	v, ok := config[key]
	delete(config, key)
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("[%s] required property [%s] is missing", processorType, key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("[%s] property [%s] isn't a string, but of type [%T]", processorType, key, v)
	}
	if required && s == "" {
		return "", fmt.Errorf("[%s] required property [%s] is empty", processorType, key)
	}
	return s, nil
}

// readBool pops a boolean option, falling back to def when absent.
func readBool(processorType string, config map[string]any, key string, def bool) (bool, error) {
	v, ok := config[key]
	delete(config, key)
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("[%s] property [%s] isn't a boolean, but of type [%T]", processorType, key, v)
	}
	return b, nil
}

// readObject pops an arbitrary option value.
func readObject(processorType string, config map[string]any, key string) (any, error) {
	v, ok := config[key]
	delete(config, key)
	if !ok {
		return nil, fmt.Errorf("[%s] required property [%s] is missing", processorType, key)
	}
	return v, nil
}
