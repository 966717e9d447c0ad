package params

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/restparams/paramerrors"
)

// ParseYAML reads declarations from a YAML mapping, preserving key order:
//
//	my_int: int
//	my_int__lt: 100
//	color: [red, green]
//	user: {model: User}
//	user__field: name
//
// Bare keys take a type name (int, float, str, bool), a sequence of
// options, or a {model: Name} mapping resolved through models. Modifier keys
// take plain YAML values. The result still has to go through Compile.
func ParseYAML(data []byte, models map[string]Model) (Declarations, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &paramerrors.ConfigError{Message: "parsing declarations", Cause: err}
	}
	if doc.Kind == 0 {
		return Declarations{}, nil
	}
	return MappingDeclarations(&doc, models)
}

// ParseYAMLFile reads declarations from a YAML file. See ParseYAML.
func ParseYAMLFile(path string, models map[string]Model) (Declarations, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("restparams: reading %s: %w", path, err)
	}
	decls, err := ParseYAML(data, models)
	if err != nil {
		return nil, fmt.Errorf("restparams: %s: %w", path, err)
	}
	return decls, nil
}

// MappingDeclarations converts a YAML mapping node (or a document wrapping
// one) into declarations. It lets other file formats embed a declaration
// block.
func MappingDeclarations(node *yaml.Node, models map[string]Model) (Declarations, error) {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return Declarations{}, nil
		}
		node = node.Content[0]
	}
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return Declarations{}, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, &paramerrors.ConfigError{Message: fmt.Sprintf("line %d: declarations must be a mapping", node.Line)}
	}

	decls := make(Declarations, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		key := keyNode.Value

		var (
			value any
			err   error
		)
		if isBareKey(key) {
			value, err = yamlKind(key, valNode, models)
		} else {
			err = valNode.Decode(&value)
		}
		if err != nil {
			return nil, &paramerrors.ConfigError{Key: key, Message: fmt.Sprintf("line %d", valNode.Line), Cause: err}
		}
		decls = append(decls, D(key, value))
	}
	return decls, nil
}

func isBareKey(key string) bool {
	return !strings.Contains(key, modifierSeparator)
}

// yamlKind converts the value of a bare key into a type marker, option list
// or model descriptor.
func yamlKind(key string, node *yaml.Node, models map[string]Model) (any, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Value {
		case "int":
			return Int, nil
		case "float":
			return Float, nil
		case "str", "string":
			return String, nil
		case "bool":
			return Bool, nil
		}
		return nil, fmt.Errorf("unknown type %q for %s", node.Value, key)

	case yaml.SequenceNode:
		var options []any
		if err := node.Decode(&options); err != nil {
			return nil, err
		}
		return Options(options), nil

	case yaml.MappingNode:
		var ref struct {
			Model string `yaml:"model"`
		}
		if err := node.Decode(&ref); err != nil {
			return nil, err
		}
		if ref.Model == "" {
			return nil, fmt.Errorf("mapping for %s must name a model", key)
		}
		model, ok := models[ref.Model]
		if !ok {
			return nil, fmt.Errorf("unknown model %q for %s", ref.Model, key)
		}
		if model.Name == "" {
			model.Name = ref.Model
		}
		return model, nil
	}
	return nil, fmt.Errorf("unsupported value for %s", key)
}
