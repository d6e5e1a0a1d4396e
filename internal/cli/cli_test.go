package cli

import (
	"testing"

	"org-registry/internal/shared/database/migrate"

	"github.com/stretchr/testify/assert"
)

func TestFormatPending_UpToDate(t *testing.T) {
	assert.Equal(t, "Schema is up to date\n", formatPending(nil, false))
	assert.Equal(t, "Schema is up to date\n", formatPending(nil, true))
}

func TestFormatPending_ListsVersionAndName(t *testing.T) {
	pending := []migrate.Migration{
		{Version: 1, Name: "create_organizations", UpSQL: "CREATE TABLE organizations (id UUID);\n"},
		{Version: 2, Name: "add_organization_type", UpSQL: "ALTER TABLE organizations\nADD COLUMN organization_type TEXT;\n"},
	}

	out := formatPending(pending, false)
	assert.Equal(t, "0001 create_organizations\n0002 add_organization_type\n", out)
}

func TestFormatPending_VerboseIncludesSQL(t *testing.T) {
	pending := []migrate.Migration{
		{Version: 2, Name: "add_organization_type", UpSQL: "ALTER TABLE organizations\nADD COLUMN organization_type TEXT;\n"},
	}

	out := formatPending(pending, true)
	assert.Contains(t, out, "0002 add_organization_type\n")
	assert.Contains(t, out, "    ALTER TABLE organizations\n")
	assert.Contains(t, out, "    ADD COLUMN organization_type TEXT;\n")
}

func TestPendingCommand_HasVerboseFlag(t *testing.T) {
	cmd := New().rootCmd
	pending, _, err := cmd.Find([]string{"pending"})
	assert.NoError(t, err)
	assert.NotNil(t, pending.Flags().Lookup("verbose"))
}
