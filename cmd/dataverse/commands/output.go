package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/dataverse/internal/constants"
	"github.com/fivetwenty-io/dataverse/pkg/dataverse"
)

// outputFormat returns the configured output format, defaulting to table.
func outputFormat() string {
	format := strings.ToLower(viper.GetString(keyOutput))
	if !isValidOutput(format) {
		return constants.FormatTable
	}

	return format
}

// headerTitle turns a config or column key such as "tenant_id" into "Tenant Id".
func headerTitle(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(out io.Writer, format string, v interface{}) error {
	if format == constants.FormatYAML {
		encoder := yaml.NewEncoder(out)

		err := encoder.Encode(v)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}

		return encoder.Close()
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// outputRecord renders one record. The table form lists every field.
func outputRecord(out io.Writer, record dataverse.Record) error {
	format := outputFormat()
	if format != constants.FormatTable {
		return writeStructured(out, format, record)
	}

	table := tablewriter.NewWriter(out)
	table.Header("Field", "Value")

	for _, key := range sortedKeys(record) {
		err := table.Append([]string{key, formatValue(record[key])})
		if err != nil {
			return fmt.Errorf("failed to append record row: %w", err)
		}
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// outputRecords renders a query result. The table form uses columns when
// given, otherwise every non-annotation field seen in the result.
func outputRecords(out io.Writer, records []dataverse.Record, columns []string) error {
	format := outputFormat()
	if format != constants.FormatTable {
		return writeStructured(out, format, records)
	}

	if len(columns) == 0 {
		columns = recordColumns(records)
	}

	if len(columns) == 0 {
		_, _ = fmt.Fprintln(out, "No records found")

		return nil
	}

	header := make([]any, len(columns))
	for i, column := range columns {
		header[i] = column
	}

	table := tablewriter.NewWriter(out)
	table.Header(header...)

	for _, record := range records {
		row := make([]string, len(columns))
		for i, column := range columns {
			row[i] = formatValue(record[column])
		}

		err := table.Append(row)
		if err != nil {
			return fmt.Errorf("failed to append record row: %w", err)
		}
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	_, _ = fmt.Fprintf(out, "%d record(s)\n", len(records))

	return nil
}

// recordColumns collects the field names of records, skipping OData
// annotations such as "@odata.etag".
func recordColumns(records []dataverse.Record) []string {
	seen := make(map[string]struct{})

	for _, record := range records {
		for key := range record {
			if strings.HasPrefix(key, "@") {
				continue
			}

			seen[key] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}

	sort.Strings(columns)

	return columns
}

func sortedKeys(record dataverse.Record) []string {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// formatValue renders a decoded JSON value for a table cell.
func formatValue(value interface{}) string {
	var text string

	switch v := value.(type) {
	case nil:
		return ""
	case string:
		text = v
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		text = strconv.FormatBool(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			text = fmt.Sprintf("%v", v)
		} else {
			text = string(encoded)
		}
	}

	if len(text) > constants.StringTruncationLength {
		return text[:constants.StringTruncationLength-3] + "..."
	}

	return text
}
