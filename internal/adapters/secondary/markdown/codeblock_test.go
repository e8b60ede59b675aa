package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yuin/goldmark/ast"
)

func TestWriteAttributes(t *testing.T) {
	t.Run("source line is written", func(t *testing.T) {
		node := ast.NewFencedCodeBlock(nil)
		node.SetAttributeString(SourceLineAttr, []byte("7"))

		var out strings.Builder
		writeAttributes(&out, node)
		assert.Equal(t, ` data-source-line="7"`, out.String())
	})

	t.Run("no attributes writes nothing", func(t *testing.T) {
		var out strings.Builder
		writeAttributes(&out, ast.NewFencedCodeBlock(nil))
		assert.Empty(t, out.String())
	})
}
