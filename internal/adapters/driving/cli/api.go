package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"golang.org/x/term"
)

const projectPlaceholder = ":project"

var apiCmd = &cobra.Command{
	Use:   "api <endpoint>",
	Short: "Make an authenticated GitLab API request",
	Long: `Send a request to the GitLab REST API and print the response.

The endpoint may be given with or without the /api/v4/ prefix. The
placeholder :project is replaced by the URL-encoded project from --project
or the configured default.

Fields given with -f (string) or -F (typed JSON value) are merged into the
request body. A request with a body defaults to POST.

Examples:
  gitlab api /user
  gitlab api /projects/:project/merge_requests -q '#.title'
  gitlab api /projects/:project/issues -f title="Broken build" -F confidential=true
  gitlab api -X PUT /projects/:project -d '{"description":"new"}'`,
	Args: cobra.ExactArgs(1),
	RunE: runAPI,
}

// Flags for api.
var (
	apiMethod    string
	apiData      string
	apiRawFields []string
	apiFields    []string
	apiQuery     string
	apiProject   string
)

func init() {
	apiCmd.Flags().StringVarP(&apiMethod, "method", "X", "", "HTTP method: GET, POST, PUT, DELETE or PATCH")
	apiCmd.Flags().StringVarP(&apiData, "data", "d", "", "JSON request body")
	apiCmd.Flags().StringArrayVarP(&apiRawFields, "raw-field", "f", nil, "add a string field: key=value")
	apiCmd.Flags().StringArrayVarP(&apiFields, "field", "F", nil, "add a typed field: key=<JSON value>")
	apiCmd.Flags().StringVarP(&apiQuery, "query", "q", "", "print only the value at this gjson path")
	apiCmd.Flags().StringVarP(&apiProject, "project", "p", "", "project for the :project placeholder")

	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}
	if newAPIClient == nil {
		return errors.New("API client not configured")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	endpoint := args[0]
	if strings.Contains(endpoint, projectPlaceholder) {
		project, err := cfg.ResolveProject(apiProject)
		if err != nil {
			return err
		}
		endpoint = strings.ReplaceAll(endpoint, projectPlaceholder, encodedProject(project))
	}

	body, err := buildRequestBody(apiData, apiRawFields, apiFields)
	if err != nil {
		return err
	}

	method := strings.ToUpper(apiMethod)
	if method == "" {
		method = http.MethodGet
		if body != nil {
			method = http.MethodPost
		}
	}

	ctx := cmd.Context()
	if err := authService.EnsureFresh(ctx, cfg); err != nil {
		return err
	}
	token, err := authService.CurrentBearerToken(cfg)
	if err != nil {
		return err
	}

	client := newAPIClient(cfg.HostOrDefault(), token)
	resp, err := client.Raw(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	return writeResponse(cmd.OutOrStdout(), resp, apiQuery)
}

// encodedProject escapes a project path for use as a single URL segment,
// e.g. group/project becomes group%2Fproject.
func encodedProject(project string) string {
	return url.PathEscape(project)
}

// buildRequestBody merges --data with -f and -F fields. Returns nil when
// there is nothing to send.
func buildRequestBody(data string, rawFields, fields []string) ([]byte, error) {
	if data == "" && len(rawFields) == 0 && len(fields) == 0 {
		return nil, nil
	}

	body := []byte(`{}`)
	if data != "" {
		if !gjson.Valid(data) {
			return nil, errors.New("invalid JSON in --data")
		}
		body = []byte(data)
	}

	var err error
	for _, kv := range rawFields {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field format: %s (expected key=value)", kv)
		}
		if body, err = sjson.SetBytes(body, key, value); err != nil {
			return nil, fmt.Errorf("set field %s: %w", key, err)
		}
	}
	for _, kv := range fields {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field format: %s (expected key=value)", kv)
		}
		// Values that are not valid JSON are sent as strings.
		if gjson.Valid(value) {
			body, err = sjson.SetRawBytes(body, key, []byte(value))
		} else {
			body, err = sjson.SetBytes(body, key, value)
		}
		if err != nil {
			return nil, fmt.Errorf("set field %s: %w", key, err)
		}
	}
	return body, nil
}

// writeResponse prints resp, optionally narrowed to a gjson path. JSON is
// pretty-printed, and colored when w is a terminal.
func writeResponse(w io.Writer, resp []byte, query string) error {
	if query != "" {
		if !gjson.ValidBytes(resp) {
			return errors.New("response is not JSON; cannot apply --query")
		}
		result := gjson.GetBytes(resp, query)
		if !result.Exists() {
			return nil
		}
		if result.Type == gjson.String {
			_, err := fmt.Fprintln(w, result.String())
			return err
		}
		resp = []byte(result.Raw)
	}

	if !gjson.ValidBytes(resp) {
		_, err := w.Write(resp)
		return err
	}

	out := pretty.Pretty(resp)
	if isTerminal(w) {
		out = pretty.Color(out, nil)
	}
	_, err := w.Write(out)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
