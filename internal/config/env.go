package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Env is a namespaced view over environment variables, e.g. Env{}.Prefix("INSIGHTS_")
type Env struct{ prefix string }

// Prefix returns a child view with an additional prefix
func (e Env) Prefix(p string) Env { return Env{prefix: e.prefix + p} }

func (e Env) key(k string) string { return e.prefix + k }

func (e Env) lookup(k string) string {
	return strings.TrimSpace(os.Getenv(e.key(k)))
}

// String returns the value or def if missing/empty
func (e Env) String(k, def string) string {
	if v := e.lookup(k); v != "" {
		return v
	}
	return def
}

// Bool returns the parsed value or def if missing/empty
func (e Env) Bool(k string, def bool) (bool, error) {
	s := e.lookup(k)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def, fmt.Errorf("env %s: invalid bool %q", e.key(k), s)
	}
	return v, nil
}

// Duration returns the parsed value or def if missing/empty. A bare "0" is accepted.
func (e Env) Duration(k string, def time.Duration) (time.Duration, error) {
	s := e.lookup(k)
	if s == "" {
		return def, nil
	}
	if s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def, fmt.Errorf("env %s: invalid duration %q (e.g. 30s, 168h)", e.key(k), s)
	}
	if d < 0 {
		return def, fmt.Errorf("env %s: negative duration %q", e.key(k), s)
	}
	return d, nil
}
