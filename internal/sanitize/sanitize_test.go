package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Acme":            "acme",
		"  Sales Team ":   "sales-team",
		"Field Sales Rep": "field-sales-rep",
		"":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slug(in), "input %q", in)
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "sales_rep", Key("Sales_Rep"))
	assert.Equal(t, "edit-posts", Key("edit-posts!"))
	assert.Equal(t, "readonly", Key("read only"))
	assert.Equal(t, "", Key("  "))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Sales Rep", Humanize("sales_rep"))
	assert.Equal(t, "Manager", Humanize("manager"))
}
