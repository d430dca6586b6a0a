package client

import (
	"strings"

	"github.com/google/uuid"

	"github.com/fivetwenty-io/dataverse/pkg/dataverse"
)

// FormatKey renders a record id for use inside "<set>(<key>)". GUIDs in any
// form uuid.Parse accepts ("{...}", "urn:uuid:...", bare hex) are normalised
// to the canonical lowercase form; anything else, such as an alternate key
// "accountnumber='A-1'", is used verbatim.
func FormatKey(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", dataverse.NewValidationError(dataverse.ErrRecordIDRequired, "record id is required")
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return id, nil //nolint:nilerr // non-GUID keys pass through
	}

	return parsed.String(), nil
}
