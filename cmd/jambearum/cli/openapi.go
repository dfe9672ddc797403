package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/desajambearum/jambearum/internal/openapi"
)

func newOpenAPICmd() *cobra.Command {
	var (
		outputFile string
		baseURL    string
	)

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Generate the OpenAPI document",
		Long: `Generate the OpenAPI 3.1 document describing the public and admin JSON API.
The same document is served by a running server at /openapi.json.`,
		Example: `  jambearum openapi                                  # print to stdout
  jambearum openapi -o openapi.json                  # write to file
  jambearum openapi --base-url https://jambearum.desa.id`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpenAPI(cmd.OutOrStdout(), baseURL, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write document to file instead of stdout")
	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:3000", "Server URL listed in the document")

	return cmd
}

func runOpenAPI(out io.Writer, baseURL, outputFile string) error {
	doc := openapi.Generate(baseURL, versionString())

	jsonBytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal openapi: %w", err)
	}

	if outputFile == "" {
		_, err := fmt.Fprintln(out, string(jsonBytes))
		return err
	}
	if err := os.WriteFile(outputFile, append(jsonBytes, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", outputFile, err)
	}
	fmt.Fprintf(out, "Wrote %s\n", outputFile)
	return nil
}
