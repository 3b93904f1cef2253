package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ericfitz/personnel/api"
	"github.com/ericfitz/personnel/api/fieldschema"
	"github.com/spf13/cobra"
)

var validateSource string

// validationResult is one line of validate output
type validationResult struct {
	Index  int                      `json:"index"`
	Valid  bool                     `json:"valid"`
	Errors []fieldschema.FieldError `json:"field_errors,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate <file.json>",
	Short: "Validate flat employee records against the current schema",
	Long: `Validate reads a JSON object, or an array of objects, and checks each
record against the composed schema without writing anything. The command
fails when any record is invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := fieldschema.ParseSource(validateSource)
		if err != nil {
			return err
		}
		records, err := readRecords(args[0])
		if err != nil {
			return err
		}

		gormDB, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() { _ = gormDB.Close() }()

		schema := api.NewSchemaService(api.NewGormFieldDefinitionStore(gormDB.DB()), api.NewGormFormStore(gormDB.DB()))
		employees := api.NewEmployeeService(api.NewGormEmployeeStore(gormDB.DB()), schema, nil, nil)

		results := make([]validationResult, 0, len(records))
		invalid := 0
		for i, rec := range records {
			res := validationResult{Index: i, Valid: true}
			if _, err := employees.Validate(cmd.Context(), source, rec); err != nil {
				var valErr *fieldschema.ValidationError
				if !errors.As(err, &valErr) {
					return err
				}
				res.Valid = false
				res.Errors = valErr.Errors
				invalid++
			}
			results = append(results, res)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return err
			}
		} else {
			for _, res := range results {
				if res.Valid {
					fmt.Fprintf(out, "record %d: ok\n", res.Index)
					continue
				}
				fmt.Fprintf(out, "record %d: %d error(s)\n", res.Index, len(res.Errors))
				for _, fe := range res.Errors {
					fmt.Fprintf(out, "  %s: %s %s\n", fe.Field, fe.Code, fe.Message)
				}
			}
		}
		if invalid > 0 {
			return fmt.Errorf("%d of %d record(s) failed validation", invalid, len(records))
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSource, "source", string(fieldschema.SourceRegistry), "schema source: registry or form")
}

// readRecords decodes one object or an array of objects, keeping numbers exact
func readRecords(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if len(data) > 0 && data[0] == '[' {
		var records []map[string]any
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return records, nil
	}
	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return []map[string]any{record}, nil
}
