package commands

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/restparams/internal/cliutil"
	"github.com/erraggy/restparams/internal/envutil"
	"github.com/erraggy/restparams/params"
)

type checkFlags struct {
	decl       string
	records    string
	method     string
	get        []string
	post       []string
	body       string
	format     string
	strictBool bool
}

func newCheckCommand(a *app) *cobra.Command {
	flags := &checkFlags{}
	cmd := &cobra.Command{
		Use:   "check --decl <file> [flags]",
		Short: "Validate one request against a declarations file",
		Long: `Validate one request against a declarations file and print the validated
arguments. A rejected request prints the error envelope a handler would send
and exits with status 1.

Records for {model: Name} params are read from a YAML file mapping model
names to lists of records. Records without an id get sequential ids from 1.`,
		Example: `  restparams check --decl params.yaml --get user_ids=1,2,3
  restparams check --decl params.yaml --method POST --body '{"count": 3}'
  restparams check --decl params.yaml --records users.yaml --get owner="Cam Saul"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, a, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.decl, "decl", "", "declarations YAML file")
	f.StringVar(&flags.records, "records", "", "YAML file of seed records keyed by model name")
	f.StringVarP(&flags.method, "method", "X", http.MethodGet, "request method")
	f.StringArrayVar(&flags.get, "get", nil, "query value as key=value (repeatable)")
	f.StringArrayVar(&flags.post, "post", nil, "body value as key=value (repeatable)")
	f.StringVar(&flags.body, "body", "", "JSON object body; --post values override its keys")
	f.StringVarP(&flags.format, "format", "f", FormatJSON, "output format: json or yaml")
	f.BoolVar(&flags.strictBool, "strict-bool", envutil.Bool("RESTPARAMS_STRICT_BOOL", false), "parse bool params strictly (env RESTPARAMS_STRICT_BOOL)")
	_ = cmd.MarkFlagRequired("decl")
	return cmd
}

func runCheck(cmd *cobra.Command, a *app, flags *checkFlags) error {
	if err := ValidateOutputFormat(flags.format); err != nil {
		return err
	}

	models, err := loadRecords(flags.records)
	if err != nil {
		return err
	}
	decls, err := params.ParseYAMLFile(flags.decl, models)
	if err != nil {
		return err
	}
	p, err := params.New(decls,
		params.WithLogger(params.NewSlogAdapter(a.logger)),
		params.WithHandlerName("check"),
		params.WithStrictBool(flags.strictBool),
	)
	if err != nil {
		return err
	}

	req, err := buildRequest(flags)
	if err != nil {
		return err
	}
	result, err := p.Validate(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !result.Valid {
		if err := OutputStructured(out, params.ErrorBody{Error: result.Rejection.Error()}, flags.format); err != nil {
			return err
		}
		return ErrRejected
	}
	return OutputStructured(out, result.Args, flags.format)
}

func buildRequest(flags *checkFlags) (*params.Request, error) {
	get, err := cliutil.KeyValues(flags.get)
	if err != nil {
		return nil, fmt.Errorf("--get: %w", err)
	}
	postValues, err := cliutil.KeyValues(flags.post)
	if err != nil {
		return nil, fmt.Errorf("--post: %w", err)
	}

	post := map[string]any{}
	if flags.body != "" {
		dec := json.NewDecoder(bytes.NewReader([]byte(flags.body)))
		dec.UseNumber()
		if err := dec.Decode(&post); err != nil {
			return nil, fmt.Errorf("--body: %w", err)
		}
		if post == nil {
			post = map[string]any{}
		}
	}
	for k, v := range postValues {
		post[k] = v
	}
	return params.NewRequest(strings.ToUpper(flags.method), get, post), nil
}

// loadRecords reads a records file into one in-memory store per model. An
// empty path yields no models.
func loadRecords(path string) (map[string]params.Model, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	var records map[string][]map[string]any
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing records %s: %w", path, err)
	}

	models := make(map[string]params.Model, len(records))
	for name, rs := range records {
		models[name] = params.Model{Name: name, Store: params.NewMemoryStore(rs...)}
	}
	return models, nil
}
