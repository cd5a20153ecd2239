package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, Validate(testContext()))
	})

	t.Run("digest image is valid", func(t *testing.T) {
		ctx := testContext()
		ctx.Values.Image.Version = "sha256:" + strings.Repeat("0", 64)
		require.NoError(t, Validate(ctx))
	})

	t.Run("upper case release name rejected", func(t *testing.T) {
		ctx := testContext()
		ctx.Release.Name = "Observability"
		err := Validate(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fullname")
		assert.NotContains(t, err.Error(), LabelInstance, "upper case is allowed in label values")
	})

	t.Run("dotted service account name rejected", func(t *testing.T) {
		ctx := testContext()
		ctx.Values.ServiceAccount.Name = "mcp.reader"
		err := Validate(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "serviceAccountName")
	})

	t.Run("missing image version rejected", func(t *testing.T) {
		ctx := testContext()
		ctx.Chart.AppVersion = ""
		err := Validate(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a valid reference")
	})
}
