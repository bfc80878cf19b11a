package paramstore

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Env resolves parameters from environment variables, using the parameter
// name as the variable name. It is the local-development counterpart to
// Client.
type Env struct {
	lookup func(string) (string, bool)
}

func NewEnv() *Env {
	return &Env{lookup: os.LookupEnv}
}

func (e *Env) GetParameter(_ context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("paramstore: name is required")
	}
	lookup := e.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("paramstore: environment variable %q is not set", name)
	}
	return v, nil
}
