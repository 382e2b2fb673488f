package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/superset-client/internal/constants"
	"github.com/fivetwenty-io/superset-client/pkg/superset"
)

type requestFlags struct {
	headers []string
	parse   string
	login   bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "extra request header as NAME=VALUE (repeatable)")
	cmd.Flags().StringVar(&f.parse, "parse", string(superset.ParseJSON), "response parsing: json, text or raw")
	cmd.Flags().BoolVar(&f.login, "login", false, "log in with username and password before the request")
}

func (f *requestFlags) requestConfig(endpoint string) (*superset.RequestConfig, error) {
	headers, err := parseKeyValues(f.headers)
	if err != nil {
		return nil, err
	}

	parse := superset.ParseMethod(f.parse)

	switch parse {
	case superset.ParseJSON, superset.ParseText, superset.ParseRaw:
	default:
		return nil, fmt.Errorf("%w: %q", superset.ErrInvalidParseMethod, f.parse)
	}

	return &superset.RequestConfig{
		Endpoint:    endpoint,
		Headers:     headers,
		ParseMethod: parse,
	}, nil
}

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	flags := &requestFlags{}

	cmd := &cobra.Command{
		Use:   "get ENDPOINT",
		Short: "Send a GET request",
		Long:  "Send an authenticated GET request to an endpoint relative to the Superset host",
		Example: `  superset get api/v1/chart/
  superset get api/v1/dashboard/1 --output yaml
  superset get health --parse text`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.requestConfig(args[0])
			if err != nil {
				return err
			}

			return runRequest(cmd, req, flags.login, false)
		},
	}

	flags.register(cmd)

	return cmd
}

// NewPostCommand creates the post command.
func NewPostCommand() *cobra.Command {
	var (
		fields      []string
		jsonBody    string
		noStringify bool
	)

	flags := &requestFlags{}

	cmd := &cobra.Command{
		Use:   "post ENDPOINT",
		Short: "Send a POST request",
		Long: `Send an authenticated POST request to an endpoint relative to the Superset host.

Form fields are sent as multipart/form-data. Each value is JSON-encoded unless
--no-stringify is given. A --json body is sent as application/json instead.`,
		Example: `  superset post api/v1/chart/data --json '{"queries": []}'
  superset post superset/explore_json/ --field form_data='{"viz_type": "table"}' --no-stringify`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.requestConfig(args[0])
			if err != nil {
				return err
			}

			if jsonBody != "" && len(fields) > 0 {
				return constants.ErrMixedPayload
			}

			if jsonBody != "" {
				var body interface{}

				err = json.Unmarshal([]byte(jsonBody), &body)
				if err != nil {
					return fmt.Errorf("%w: %w", constants.ErrInvalidJSONBody, err)
				}

				req.JSONPayload = body
			}

			if len(fields) > 0 {
				values, err := parseKeyValues(fields)
				if err != nil {
					return err
				}

				req.Payload = make(map[string]interface{}, len(values))
				for key, value := range values {
					req.Payload[key] = value
				}

				req.Stringify = superset.BoolPtr(!noStringify)
			}

			return runRequest(cmd, req, flags.login, true)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringArrayVarP(&fields, "field", "F", nil, "form field as NAME=VALUE (repeatable)")
	cmd.Flags().StringVar(&jsonBody, "json", "", "JSON request body")
	cmd.Flags().BoolVar(&noStringify, "no-stringify", false, "send form values verbatim instead of JSON-encoded")

	return cmd
}

func runRequest(cmd *cobra.Command, req *superset.RequestConfig, login, post bool) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	client, err := newClient()
	if err != nil {
		return err
	}

	err = authenticate(ctx, cmd, client, login)
	if err != nil {
		return err
	}

	var resp *superset.Response

	if post {
		resp, err = client.Post(ctx, req)
	} else {
		resp, err = client.Get(ctx, req)
	}

	if err != nil {
		printFailure(cmd, "%s", client.ResolveURL(req.Host, req.Endpoint, req.URL))

		return err
	}

	return renderResponse(cmd.OutOrStdout(), resp, req.ParseMethod)
}
