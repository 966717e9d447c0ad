// Package endpoints serves parameter declarations over HTTP. An endpoints
// file lists routes, each with its own declaration block, plus seed records
// for the models those blocks look up:
//
//	models:
//	  User:
//	    - {name: Cam Saul}
//	endpoints:
//	  - path: /users
//	    methods: [GET]
//	    params:
//	      user_ids: int
//	      user_ids__many: true
//	      owner: {model: User}
//	      owner__field: name
//
// Every endpoint echoes its validated arguments, which makes a file a quick
// way to try declarations against real HTTP clients.
package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/restparams/params"
)

// ErrInvalidFile indicates a malformed endpoints file.
var ErrInvalidFile = errors.New("invalid endpoints file")

// File is a parsed endpoints file.
type File struct {
	Models    map[string][]map[string]any `yaml:"models"`
	Endpoints []Endpoint                  `yaml:"endpoints"`
}

// Endpoint is one route of an endpoints file. Params is kept as a node so
// that declaration order survives decoding.
type Endpoint struct {
	Path    string    `yaml:"path"`
	Name    string    `yaml:"name"`
	Methods []string  `yaml:"methods"`
	Params  yaml.Node `yaml:"params"`
}

var knownMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// Parse decodes and checks an endpoints file. Endpoint names default to the
// path with slashes turned into underscores.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	if len(f.Endpoints) == 0 {
		return nil, fmt.Errorf("%w: no endpoints", ErrInvalidFile)
	}

	names := make(map[string]bool, len(f.Endpoints))
	for i := range f.Endpoints {
		ep := &f.Endpoints[i]
		if !strings.HasPrefix(ep.Path, "/") {
			return nil, fmt.Errorf("%w: endpoint %d: path %q must start with /", ErrInvalidFile, i, ep.Path)
		}
		if ep.Name == "" {
			ep.Name = nameFromPath(ep.Path)
		}
		if names[ep.Name] {
			return nil, fmt.Errorf("%w: duplicate endpoint name %q", ErrInvalidFile, ep.Name)
		}
		names[ep.Name] = true

		for j, m := range ep.Methods {
			m = strings.ToUpper(m)
			if !slices.Contains(knownMethods, m) {
				return nil, fmt.Errorf("%w: endpoint %s: unknown method %q", ErrInvalidFile, ep.Name, ep.Methods[j])
			}
			ep.Methods[j] = m
		}
	}
	return &f, nil
}

// Load reads and parses an endpoints file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("reading endpoints file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// models builds one in-memory store per model named in the file.
func (f *File) models() map[string]params.Model {
	models := make(map[string]params.Model, len(f.Models))
	for name, records := range f.Models {
		models[name] = params.Model{Name: name, Store: params.NewMemoryStore(records...)}
	}
	return models
}

// declarations converts the endpoint's params block. A missing block
// declares no parameters.
func (ep *Endpoint) declarations(models map[string]params.Model) (params.Declarations, error) {
	if ep.Params.Kind == 0 {
		return params.Declarations{}, nil
	}
	decls, err := params.MappingDeclarations(&ep.Params, models)
	if err != nil {
		return nil, fmt.Errorf("endpoint %s: %w", ep.Name, err)
	}
	return decls, nil
}

func nameFromPath(path string) string {
	name := strings.Trim(path, "/")
	if name == "" {
		return "root"
	}
	return strings.ReplaceAll(name, "/", "_")
}
